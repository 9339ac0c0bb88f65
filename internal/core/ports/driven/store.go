package driven

import (
	"context"
	"time"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// DatasetSummary is a stored run's listing entry.
type DatasetSummary struct {
	ID         string
	Name       string
	ChunkCount int
	QACount    int
	CreatedAt  time.Time
}

// DatasetStore persists processed datasets across runs.
type DatasetStore interface {
	// Save stores or replaces a dataset.
	Save(ctx context.Context, dataset *domain.Dataset) error

	// Get loads a dataset by ID; domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*domain.Dataset, error)

	// List returns summaries of all stored datasets, newest first.
	List(ctx context.Context) ([]DatasetSummary, error)

	// Close releases the underlying resources.
	Close() error
}

// Checkpointer persists in-flight chunk snapshots for crash
// diagnostics and manual resumption.
//
// Checkpoints are a reduced projection: chunk id, content and
// extension bag only. Loading one does NOT restore processing history
// or source metadata.
type Checkpointer interface {
	// Save writes a snapshot of the batch for the named stage.
	Save(skillName string, chunks []*domain.Chunk, index int) error

	// Load reconstructs chunks from a checkpoint file.
	Load(path string) ([]*domain.Chunk, error)

	// Cleanup removes checkpoint files older than the given age and
	// returns how many were removed.
	Cleanup(olderThan time.Duration) (int, error)
}

// DatasetExporter serialises a dataset to the final export format.
type DatasetExporter interface {
	Export(dataset *domain.Dataset, path string) error
}
