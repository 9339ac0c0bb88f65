package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// checkpointFile is the on-disk checkpoint layout. Chunks are reduced
// to id, content and extension bag; history and source metadata are
// intentionally dropped.
type checkpointFile struct {
	SkillName  string            `json:"skill_name"`
	Index      int               `json:"index"`
	Timestamp  string            `json:"timestamp"`
	ChunkCount int               `json:"chunk_count"`
	Chunks     []checkpointChunk `json:"chunks"`
}

type checkpointChunk struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	ExtraData map[string]any `json:"extra_data"`
}

// Checkpointer writes periodic chunk snapshots into a directory so an
// interrupted run can be inspected or resumed by hand.
type Checkpointer struct {
	dir string
}

var _ driven.Checkpointer = (*Checkpointer)(nil)

// NewCheckpointer creates a Checkpointer rooted at dir, creating the
// directory if needed.
func NewCheckpointer(dir string) (*Checkpointer, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: checkpoint directory is required", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return &Checkpointer{dir: dir}, nil
}

// Dir returns the checkpoint directory.
func (c *Checkpointer) Dir() string {
	return c.dir
}

// Save writes a snapshot of the batch for the named stage. The file
// name encodes the stage, batch index and wall time.
func (c *Checkpointer) Save(skillName string, chunks []*domain.Chunk, index int) error {
	ts := time.Now().Format("20060102_150405")
	cp := checkpointFile{
		SkillName:  skillName,
		Index:      index,
		Timestamp:  ts,
		ChunkCount: len(chunks),
		Chunks:     make([]checkpointChunk, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		cp.Chunks = append(cp.Chunks, checkpointChunk{
			ID:        chunk.ID,
			Content:   chunk.Content,
			ExtraData: chunk.Extra,
		})
	}

	path := filepath.Join(c.dir, fmt.Sprintf("%s_%d_%s.json", skillName, index, ts))
	if err := SaveJSON(path, cp); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	logger.Debug("checkpoint saved: %s (%d chunks)", path, len(chunks))
	return nil
}

// Load reconstructs chunks from a checkpoint file. Only id, content
// and the extension bag survive the round trip.
func (c *Checkpointer) Load(path string) ([]*domain.Chunk, error) {
	var cp checkpointFile
	if err := LoadJSON(path, &cp); err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}

	chunks := make([]*domain.Chunk, 0, len(cp.Chunks))
	for _, cc := range cp.Chunks {
		chunk := domain.NewChunk(cc.Content, domain.DataTypeText, domain.LanguageAuto)
		chunk.ID = cc.ID
		if cc.ExtraData != nil {
			chunk.Extra = cc.ExtraData
		}
		chunks = append(chunks, chunk)
	}
	logger.Info("loaded checkpoint %s: %d chunks from stage %q", path, len(chunks), cp.SkillName)
	return chunks, nil
}

// Cleanup removes checkpoint files older than the given age, judged by
// file modification time, and returns how many were removed.
func (c *Checkpointer) Cleanup(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("reading checkpoint directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("removing stale checkpoint %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("removed %d stale checkpoint(s)", removed)
	}
	return removed, nil
}
