// Package skills provides the batch-execution harness the pipeline
// stages run under, plus a registry for building stages from
// configuration.
package skills

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driving"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// Runner applies a skill's single-chunk transform uniformly across a
// batch, isolating per-chunk failures and recording timing and
// outcome in each chunk's history.
//
// The monitoring counters are cumulative across batches and reset
// only by an explicit Reset call. ProcessBatch itself is
// single-threaded; callers may run independent batches on separate
// goroutines (the counters are atomic).
type Runner struct {
	skill driven.Skill

	processedCount atomic.Int64
	failedCount    atomic.Int64
	totalNanos     atomic.Int64
}

// NewRunner wraps a skill in the batch-execution harness.
func NewRunner(skill driven.Skill) *Runner {
	return &Runner{skill: skill}
}

// Name returns the wrapped skill's name.
func (r *Runner) Name() string {
	return r.skill.Name()
}

// Skill returns the wrapped skill.
func (r *Runner) Skill() driven.Skill {
	return r.skill
}

// ProcessBatch transforms every chunk in order. The output has the
// same length and order as the input; every chunk gains exactly one
// history record. A chunk failure never aborts the batch: the failing
// chunk is retained unmodified with a failed record.
func (r *Runner) ProcessBatch(ctx context.Context, chunks []*domain.Chunk) []*domain.Chunk {
	logger.Debug("%s: processing batch of %d chunks", r.skill.Name(), len(chunks))
	batchStart := time.Now()

	out := make([]*domain.Chunk, 0, len(chunks))
	failed := 0

	for _, chunk := range chunks {
		start := time.Now()
		processed, err := r.skill.ProcessSingle(ctx, chunk)
		end := time.Now()

		record := domain.ProcessRecord{
			Skill:     r.skill.Name(),
			StartedAt: start,
			EndedAt:   end,
			Duration:  end.Sub(start),
			Params:    r.skill.Params(),
		}

		switch {
		case err == nil:
			record.Status = domain.StatusCompleted
			processed.AddRecord(record)
			out = append(out, processed)
		case errors.Is(err, domain.ErrSkipped):
			record.Status = domain.StatusSkipped
			record.Error = err.Error()
			chunk.AddRecord(record)
			out = append(out, chunk)
		default:
			logger.Error("%s: chunk %s failed: %v", r.skill.Name(), chunk.ID, err)
			record.Status = domain.StatusFailed
			record.Error = err.Error()
			chunk.AddRecord(record)
			out = append(out, chunk)
			failed++
		}
	}

	r.processedCount.Add(int64(len(chunks)))
	r.failedCount.Add(int64(failed))
	r.totalNanos.Add(time.Since(batchStart).Nanoseconds())

	logger.Debug("%s: batch done, %d/%d succeeded", r.skill.Name(), len(chunks)-failed, len(chunks))
	return out
}

// Monitoring returns the cumulative counters.
func (r *Runner) Monitoring() driving.MonitoringInfo {
	processed := r.processedCount.Load()
	failed := r.failedCount.Load()
	totalSeconds := float64(r.totalNanos.Load()) / float64(time.Second)

	info := driving.MonitoringInfo{
		ProcessedCount: processed,
		FailedCount:    failed,
		TotalDuration:  totalSeconds,
	}
	if processed > 0 {
		info.SuccessRate = float64(processed-failed) / float64(processed) * 100
		info.AverageDuration = totalSeconds / float64(processed)
	}
	return info
}

// Reset zeroes the monitoring counters.
func (r *Runner) Reset() {
	r.processedCount.Store(0)
	r.failedCount.Store(0)
	r.totalNanos.Store(0)
}
