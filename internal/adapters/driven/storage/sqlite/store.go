// Package sqlite persists processed datasets in a local SQLite
// database so runs can be listed and re-exported later.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
)

// Store is a SQLite-backed dataset store. Datasets are kept whole as a
// JSON payload with a few denormalised columns for listing.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.DatasetStore = (*Store)(nil)

// NewStore opens (or creates) the dataset database under dataDir.
// If dataDir is empty, defaults to ~/.hydroprep/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hydroprep", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "datasets.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			chunk_count INTEGER NOT NULL DEFAULT 0,
			qa_count INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating datasets table: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save stores or replaces a dataset.
func (s *Store) Save(ctx context.Context, dataset *domain.Dataset) error {
	if dataset == nil || dataset.ID == "" {
		return domain.ErrInvalidInput
	}

	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("marshalling dataset: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO datasets (id, name, description, chunk_count, qa_count, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			chunk_count = excluded.chunk_count,
			qa_count = excluded.qa_count,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, dataset.ID, dataset.Name, dataset.Description,
		len(dataset.Chunks), len(dataset.QAPairs), string(payload),
		dataset.CreatedAt, dataset.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	return nil
}

// Get loads a dataset by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM datasets WHERE id = ?
	`, id)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning dataset: %w", err)
	}

	var dataset domain.Dataset
	if err := json.Unmarshal([]byte(payload), &dataset); err != nil {
		return nil, fmt.Errorf("unmarshaling dataset: %w", err)
	}
	return &dataset, nil
}

// List returns summaries of all stored datasets, newest first.
func (s *Store) List(ctx context.Context) ([]driven.DatasetSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, chunk_count, qa_count, created_at
		FROM datasets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var summaries []driven.DatasetSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sm driven.DatasetSummary
		var createdAt sql.NullTime
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.ChunkCount, &sm.QACount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dataset summary: %w", err)
		}
		if createdAt.Valid {
			sm.CreatedAt = createdAt.Time
		}
		summaries = append(summaries, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}

	return summaries, nil
}
