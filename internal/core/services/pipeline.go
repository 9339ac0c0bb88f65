// Package services contains the pipeline controller: the state machine
// that parses input files, drives the stage sequence over batches and
// assembles the final dataset.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/BaoyingShan0/OpenHydrology/internal/config"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driving"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
	"github.com/BaoyingShan0/OpenHydrology/internal/parsers"
	"github.com/BaoyingShan0/OpenHydrology/internal/skills"
)

// runState is the controller's phase within a run.
type runState string

const (
	stateInit       runState = "INIT"
	stateParsing    runState = "PARSING"
	stateProcessing runState = "PROCESSING"
	stateSaving     runState = "SAVING"
	stateDone       runState = "DONE"
	stateFailed     runState = "FAILED"
)

// Error handling policies for file-level parse failures.
const (
	ErrorHandlingSkip  = "skip"
	ErrorHandlingStop  = "stop"
	ErrorHandlingRetry = "retry"
)

// parseRetries is the attempt count under the retry policy.
const parseRetries = 3

// checkpointInterval: a sequential checkpoint is written every
// interval×batch-size chunks.
const checkpointInterval = 5

// PipelineService orchestrates parsing, the stage sequence and saving.
// A service processes one run at a time; statistics accumulate across
// runs until ResetStatistics.
type PipelineService struct {
	name    string
	cfg     *config.Config
	parsers *parsers.Registry
	runners []*skills.Runner

	checkpointer driven.Checkpointer
	exporter     driven.DatasetExporter
	store        driven.DatasetStore

	batchSize     int
	maxWorkers    int
	parallel      bool
	checkpointing bool
	errorHandling string

	mu    sync.Mutex
	state runState
	stats driving.Statistics
}

var _ driving.Pipeline = (*PipelineService)(nil)

// Option customises a PipelineService.
type Option func(*PipelineService)

// WithCheckpointer sets the checkpoint writer. Without one,
// checkpointing is disabled regardless of configuration.
func WithCheckpointer(cp driven.Checkpointer) Option {
	return func(p *PipelineService) { p.checkpointer = cp }
}

// WithExporter sets the dataset exporter used when an output path is
// given.
func WithExporter(e driven.DatasetExporter) Option {
	return func(p *PipelineService) { p.exporter = e }
}

// WithDatasetStore sets an optional store; every completed run's
// dataset is persisted to it.
func WithDatasetStore(s driven.DatasetStore) Option {
	return func(p *PipelineService) { p.store = s }
}

// NewPipeline builds a pipeline controller from configuration. The
// stage sequence is the registry's registration order, filtered to the
// stages whose config section has enabled=true.
func NewPipeline(cfg *config.Config, registry *skills.Registry, opts ...Option) (*PipelineService, error) {
	parserRegistry, err := parsers.FromConfig(cfg.Section("parser"))
	if err != nil {
		return nil, fmt.Errorf("building parsers: %w", err)
	}

	p := &PipelineService{
		name:          "hydroprep",
		cfg:           cfg,
		parsers:       parserRegistry,
		batchSize:     cfg.GetInt("pipeline.batch_size"),
		maxWorkers:    cfg.GetInt("pipeline.max_workers"),
		parallel:      cfg.GetBool("pipeline.parallel_processing"),
		checkpointing: cfg.GetBool("pipeline.checkpoint_enabled"),
		errorHandling: cfg.GetString("pipeline.error_handling"),
		state:         stateInit,
	}
	if p.batchSize <= 0 {
		p.batchSize = 100
	}
	if p.maxWorkers <= 0 {
		p.maxWorkers = 1
	}
	switch p.errorHandling {
	case ErrorHandlingSkip, ErrorHandlingStop, ErrorHandlingRetry:
	case "":
		p.errorHandling = ErrorHandlingSkip
	default:
		return nil, fmt.Errorf("%w: unknown error_handling %q", domain.ErrConfiguration, p.errorHandling)
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.checkpointer == nil {
		p.checkpointing = false
	}

	for _, name := range registry.Names() {
		if !cfg.GetBool(name + ".enabled") {
			logger.Info("stage %q disabled by configuration", name)
			continue
		}
		skill, err := registry.Build(name, cfg.Section(name))
		if err != nil {
			return nil, fmt.Errorf("building stage %q: %w", name, err)
		}
		p.runners = append(p.runners, skills.NewRunner(skill))
	}

	return p, nil
}

// SupportedFormats lists the parseable file extensions.
func (p *PipelineService) SupportedFormats() []string {
	return p.parsers.SupportedFormats()
}

// SkillNames returns the active stage names in execution order.
func (p *PipelineService) SkillNames() []string {
	names := make([]string, 0, len(p.runners))
	for _, r := range p.runners {
		names = append(names, r.Name())
	}
	return names
}

// ProcessFiles runs the full pipeline over the given files.
func (p *PipelineService) ProcessFiles(ctx context.Context, paths []string, outputPath string) *domain.Result {
	start := time.Now()
	p.setState(stateParsing)
	logger.Info("pipeline run started: %d file(s)", len(paths))

	chunks, err := p.parseFiles(ctx, paths)
	if err != nil {
		return p.fail(start, err)
	}

	return p.processChunks(ctx, chunks, outputPath, start)
}

// ProcessDirectory runs the pipeline over every supported file in a
// directory. File discovery failures are fatal; per-file parse
// failures follow the error handling policy.
func (p *PipelineService) ProcessDirectory(ctx context.Context, dir string, recursive bool, outputPath string) *domain.Result {
	paths, err := p.parsers.ListFiles(dir, recursive)
	if err != nil {
		return p.fail(time.Now(), fmt.Errorf("scanning %s: %w", dir, err))
	}
	if len(paths) == 0 {
		logger.Warn("no supported files found in %s", dir)
	}
	return p.ProcessFiles(ctx, paths, outputPath)
}

// parseFiles accumulates chunks from all files in input order. A file
// failure is skipped, retried or aborts the run per the configured
// policy.
func (p *PipelineService) parseFiles(ctx context.Context, paths []string) ([]*domain.Chunk, error) {
	var all []*domain.Chunk

	for _, path := range paths {
		p.mu.Lock()
		p.stats.TotalFiles++
		p.mu.Unlock()

		chunks, err := p.parseWithPolicy(ctx, path)
		if err != nil {
			p.mu.Lock()
			p.stats.FailedFiles++
			p.mu.Unlock()

			if p.errorHandling == ErrorHandlingStop {
				return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrRunAborted, path, err)
			}
			logger.Warn("skipping %s: %v", path, err)
			continue
		}

		p.mu.Lock()
		p.stats.ProcessedFiles++
		p.stats.TotalChunks += len(chunks)
		p.mu.Unlock()
		all = append(all, chunks...)
	}

	logger.Info("parsed %d chunk(s) from %d file(s)", len(all), len(paths))
	return all, nil
}

func (p *PipelineService) parseWithPolicy(ctx context.Context, path string) ([]*domain.Chunk, error) {
	attempts := 1
	if p.errorHandling == ErrorHandlingRetry {
		attempts = parseRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		chunks, err := p.parsers.ParseFile(ctx, path)
		if err == nil {
			return chunks, nil
		}
		lastErr = err
		if i < attempts-1 {
			logger.Debug("retrying %s (attempt %d/%d): %v", path, i+2, attempts, err)
		}
	}
	return nil, lastErr
}

// processChunks drives the stage sequence, assembles the dataset and
// saves it.
func (p *PipelineService) processChunks(ctx context.Context, chunks []*domain.Chunk, outputPath string, start time.Time) *domain.Result {
	p.setState(stateProcessing)

	for _, runner := range p.runners {
		if p.parallel && p.maxWorkers > 1 {
			var err error
			chunks, err = p.runStageParallel(ctx, runner, chunks)
			if err != nil {
				return p.fail(start, err)
			}
		} else {
			chunks = p.runStageSequential(ctx, runner, chunks)
		}
	}

	failed := 0
	for _, chunk := range chunks {
		if chunk.LatestStatus() == domain.StatusFailed {
			failed++
		}
	}
	p.mu.Lock()
	p.stats.ProcessedChunks += len(chunks) - failed
	p.stats.FailedChunks += failed
	p.mu.Unlock()

	p.setState(stateSaving)
	dataset := p.assembleDataset(chunks)

	if outputPath != "" && p.exporter != nil {
		if err := p.exporter.Export(dataset, outputPath); err != nil {
			return p.fail(start, err)
		}
	}
	if p.store != nil {
		if err := p.store.Save(ctx, dataset); err != nil {
			return p.fail(start, fmt.Errorf("persisting dataset: %w", err))
		}
	}

	duration := time.Since(start)
	p.mu.Lock()
	p.stats.TotalSeconds += duration.Seconds()
	stats := p.stats
	p.mu.Unlock()
	p.setState(stateDone)
	logger.Info("pipeline run done in %.2fs: %d chunk(s), %d failed", duration.Seconds(), len(chunks), failed)

	return &domain.Result{
		Success:  true,
		Data:     dataset,
		Duration: duration,
		Metadata: statsMap(stats),
	}
}

// runStageSequential processes batches one after another, writing a
// checkpoint every checkpointInterval batches.
func (p *PipelineService) runStageSequential(ctx context.Context, runner *skills.Runner, chunks []*domain.Chunk) []*domain.Chunk {
	out := make([]*domain.Chunk, 0, len(chunks))
	for i := 0; i < len(chunks); i += p.batchSize {
		end := i + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		out = append(out, runner.ProcessBatch(ctx, chunks[i:end])...)

		if p.checkpointing && i%(p.batchSize*checkpointInterval) == 0 {
			if err := p.checkpointer.Save(runner.Name(), out, i); err != nil {
				logger.Warn("checkpoint for %s at %d failed: %v", runner.Name(), i, err)
			}
		}
	}
	return out
}

// runStageParallel partitions the chunk list into batches and submits
// each to a fixed-size worker pool. Results are merged in submission
// order so the output order equals the input order. A panicking batch
// re-emits its original chunks marked failed rather than dropping
// them; under the stop policy the first such failure aborts the run.
func (p *PipelineService) runStageParallel(ctx context.Context, runner *skills.Runner, chunks []*domain.Chunk) ([]*domain.Chunk, error) {
	numBatches := (len(chunks) + p.batchSize - 1) / p.batchSize
	if numBatches <= 1 {
		return p.runStageSequential(ctx, runner, chunks), nil
	}

	pool, err := ants.NewPool(p.maxWorkers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	results := make([][]*domain.Chunk, numBatches)
	batchErrs := make([]error, numBatches)
	var wg sync.WaitGroup

	for b := 0; b < numBatches; b++ {
		startIdx := b * p.batchSize
		endIdx := startIdx + p.batchSize
		if endIdx > len(chunks) {
			endIdx = len(chunks)
		}
		batch := chunks[startIdx:endIdx]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					batchErrs[b] = fmt.Errorf("batch %d panicked in stage %s: %v", b, runner.Name(), r)
					results[b] = markBatchFailed(runner.Name(), batch, r)
				}
			}()
			results[b] = runner.ProcessBatch(ctx, batch)
		})
		if submitErr != nil {
			wg.Done()
			batchErrs[b] = fmt.Errorf("submitting batch %d: %w", b, submitErr)
			results[b] = markBatchFailed(runner.Name(), batch, submitErr)
		}
	}
	wg.Wait()

	out := make([]*domain.Chunk, 0, len(chunks))
	for b := 0; b < numBatches; b++ {
		if batchErrs[b] != nil {
			logger.Error("%v", batchErrs[b])
			if p.errorHandling == ErrorHandlingStop {
				return nil, fmt.Errorf("%w: %v", domain.ErrRunAborted, batchErrs[b])
			}
		}
		out = append(out, results[b]...)
	}
	return out, nil
}

// markBatchFailed gives every chunk of a lost batch a failed history
// record so no chunk silently disappears from the merged output.
func markBatchFailed(skillName string, batch []*domain.Chunk, cause any) []*domain.Chunk {
	now := time.Now()
	for _, chunk := range batch {
		chunk.AddRecord(domain.ProcessRecord{
			Skill:     skillName,
			StartedAt: now,
			EndedAt:   now,
			Status:    domain.StatusFailed,
			Error:     fmt.Sprintf("batch failure: %v", cause),
		})
	}
	return batch
}

// assembleDataset folds the processed chunks into a dataset record,
// hoisting generated QA pairs out of each chunk's extension bag.
func (p *PipelineService) assembleDataset(chunks []*domain.Chunk) *domain.Dataset {
	name := "processed_data_" + time.Now().Format("20060102_150405")
	dataset := domain.NewDataset(name, "hydrology training data")
	dataset.Metadata["pipeline"] = p.name
	dataset.Metadata["skills"] = p.SkillNames()

	for _, chunk := range chunks {
		dataset.AddChunk(chunk)
		if qa, ok := chunk.Extra[domain.KeyGeneratedQA].([]domain.QAPair); ok {
			for _, pair := range qa {
				dataset.AddQAPair(pair)
			}
		}
	}
	return dataset
}

// Report returns the current processing report.
func (p *PipelineService) Report() driving.Report {
	p.mu.Lock()
	stats := p.stats
	p.mu.Unlock()

	skillStats := make(map[string]driving.MonitoringInfo, len(p.runners))
	for _, r := range p.runners {
		skillStats[r.Name()] = r.Monitoring()
	}

	return driving.Report{
		Skills:     p.SkillNames(),
		Statistics: stats,
		Config: map[string]any{
			"batch_size":          p.batchSize,
			"max_workers":         p.maxWorkers,
			"checkpoint_enabled":  p.checkpointing,
			"error_handling":      p.errorHandling,
			"parallel_processing": p.parallel,
		},
		SkillStats: skillStats,
	}
}

// ResetStatistics zeroes the run counters and every stage's monitoring
// counters.
func (p *PipelineService) ResetStatistics() {
	p.mu.Lock()
	p.stats = driving.Statistics{}
	p.mu.Unlock()
	for _, r := range p.runners {
		r.Reset()
	}
}

// LoadCheckpoint reconstructs chunks from a checkpoint file.
func (p *PipelineService) LoadCheckpoint(path string) ([]*domain.Chunk, error) {
	if p.checkpointer == nil {
		return nil, fmt.Errorf("%w: no checkpointer configured", domain.ErrConfiguration)
	}
	return p.checkpointer.Load(path)
}

// CleanupCheckpoints removes checkpoint files older than the given age.
func (p *PipelineService) CleanupCheckpoints(olderThan time.Duration) (int, error) {
	if p.checkpointer == nil {
		return 0, nil
	}
	return p.checkpointer.Cleanup(olderThan)
}

func (p *PipelineService) setState(s runState) {
	p.mu.Lock()
	prev := p.state
	p.state = s
	p.mu.Unlock()
	logger.Debug("pipeline state: %s -> %s", prev, s)
}

// State returns the controller's current phase.
func (p *PipelineService) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.state)
}

// fail converts an error into a structured failure result carrying the
// partial statistics accumulated so far.
func (p *PipelineService) fail(start time.Time, err error) *domain.Result {
	p.setState(stateFailed)
	logger.Error("pipeline run failed: %v", err)

	duration := time.Since(start)
	p.mu.Lock()
	p.stats.TotalSeconds += duration.Seconds()
	stats := p.stats
	p.mu.Unlock()

	return &domain.Result{
		Success:  false,
		Error:    err.Error(),
		Duration: duration,
		Metadata: statsMap(stats),
	}
}

func statsMap(s driving.Statistics) map[string]any {
	return map[string]any{
		"total_files":      s.TotalFiles,
		"processed_files":  s.ProcessedFiles,
		"failed_files":     s.FailedFiles,
		"total_chunks":     s.TotalChunks,
		"processed_chunks": s.ProcessedChunks,
		"failed_chunks":    s.FailedChunks,
		"total_time":       s.TotalSeconds,
	}
}
