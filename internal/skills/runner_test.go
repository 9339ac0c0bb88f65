package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
)

// stubSkill upper-cases content, skips chunks marked "dup" and fails
// chunks marked "bad".
type stubSkill struct{}

func (stubSkill) Name() string           { return "stub" }
func (stubSkill) Params() map[string]any { return map[string]any{"mode": "test"} }

func (stubSkill) ProcessSingle(_ context.Context, chunk *domain.Chunk) (*domain.Chunk, error) {
	switch chunk.Content {
	case "dup":
		return nil, fmt.Errorf("%w: duplicate content", domain.ErrSkipped)
	case "bad":
		return nil, errors.New("boom")
	}
	chunk.Content = strings.ToUpper(chunk.Content)
	return chunk, nil
}

func newChunks(contents ...string) []*domain.Chunk {
	chunks := make([]*domain.Chunk, 0, len(contents))
	for _, c := range contents {
		chunks = append(chunks, domain.NewChunk(c, domain.DataTypeText, domain.LanguageEnglish))
	}
	return chunks
}

func TestRunnerProcessBatch(t *testing.T) {
	runner := NewRunner(stubSkill{})
	chunks := newChunks("one", "dup", "bad", "two")

	out := runner.ProcessBatch(context.Background(), chunks)
	require.Len(t, out, 4)

	// Order and identity preserved, one history record each.
	for i, chunk := range out {
		assert.Same(t, chunks[i], chunk)
		require.Len(t, chunk.History, 1)
		assert.Equal(t, "stub", chunk.History[0].Skill)
		assert.Equal(t, map[string]any{"mode": "test"}, chunk.History[0].Params)
	}

	assert.Equal(t, "ONE", out[0].Content)
	assert.Equal(t, domain.StatusCompleted, out[0].LatestStatus())

	// Skip retains content, records the reason and does not fail.
	assert.Equal(t, "dup", out[1].Content)
	assert.Equal(t, domain.StatusSkipped, out[1].LatestStatus())
	assert.Contains(t, out[1].History[0].Error, "duplicate")

	// Failure retains the chunk and does not abort the batch.
	assert.Equal(t, "bad", out[2].Content)
	assert.Equal(t, domain.StatusFailed, out[2].LatestStatus())
	assert.Equal(t, "TWO", out[3].Content)
}

func TestRunnerMonitoring(t *testing.T) {
	runner := NewRunner(stubSkill{})
	runner.ProcessBatch(context.Background(), newChunks("one", "bad", "dup", "two"))

	info := runner.Monitoring()
	assert.EqualValues(t, 4, info.ProcessedCount)
	assert.EqualValues(t, 1, info.FailedCount)
	assert.InDelta(t, 75.0, info.SuccessRate, 0.001)
	assert.GreaterOrEqual(t, info.TotalDuration, 0.0)

	runner.Reset()
	info = runner.Monitoring()
	assert.Zero(t, info.ProcessedCount)
	assert.Zero(t, info.SuccessRate)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("stub"))

	r.Register("stub", func(cfg map[string]any) (driven.Skill, error) {
		return stubSkill{}, nil
	})
	require.True(t, r.Has("stub"))

	skill, err := r.Build("stub", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", skill.Name())

	_, err = r.Build("missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistryOrderIsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	builder := func(cfg map[string]any) (driven.Skill, error) { return stubSkill{}, nil }
	r.Register("b", builder)
	r.Register("a", builder)
	r.Register("b", builder) // re-registration keeps the original slot

	assert.Equal(t, []string{"b", "a"}, r.Names())
}

func TestDefaultRegistryOrder(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"cleaner", "enhancer", "evaluator"}, r.Names())
}
