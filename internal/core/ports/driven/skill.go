package driven

import (
	"context"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// Skill is the single-chunk transform contract every pipeline stage
// implements. Implementations mutate the chunk's content and
// extension bag in place and return it on success.
//
// Returning an error that wraps domain.ErrSkipped marks a designed
// rejection (duplicate, low quality): the batch runner records the
// chunk as skipped, not failed. Any other error marks a failure; the
// runner retains the chunk unmodified with a failed history record.
// Implementations must not append history records themselves; the
// batch runner owns the history.
type Skill interface {
	// Name identifies the stage in history records and reports.
	Name() string

	// ProcessSingle transforms one chunk.
	ProcessSingle(ctx context.Context, chunk *domain.Chunk) (*domain.Chunk, error)

	// Params is a snapshot of the stage's active configuration,
	// recorded with every history entry.
	Params() map[string]any
}
