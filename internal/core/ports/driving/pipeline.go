package driving

import (
	"context"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// MonitoringInfo is a stage's cumulative batch statistics.
type MonitoringInfo struct {
	ProcessedCount  int64   `json:"processed_count"`
	FailedCount     int64   `json:"failed_count"`
	SuccessRate     float64 `json:"success_rate"`
	AverageDuration float64 `json:"average_processing_time"`
	TotalDuration   float64 `json:"total_processing_time"`
}

// Statistics are the pipeline controller's cumulative run counters.
type Statistics struct {
	TotalFiles      int     `json:"total_files"`
	ProcessedFiles  int     `json:"processed_files"`
	FailedFiles     int     `json:"failed_files"`
	TotalChunks     int     `json:"total_chunks"`
	ProcessedChunks int     `json:"processed_chunks"`
	FailedChunks    int     `json:"failed_chunks"`
	TotalSeconds    float64 `json:"total_time"`
}

// Report is the processing report returned after (or instead of) a run.
type Report struct {
	Skills     []string                  `json:"skills"`
	Statistics Statistics                `json:"statistics"`
	Config     map[string]any            `json:"config"`
	SkillStats map[string]MonitoringInfo `json:"skill_statistics"`
}

// Pipeline orchestrates parsing, the stage sequence and saving.
type Pipeline interface {
	// ProcessFiles runs the full pipeline over the given files. The
	// result is structured, never an error, except under the stop
	// error-handling policy where the underlying failure surfaces.
	ProcessFiles(ctx context.Context, paths []string, outputPath string) *domain.Result

	// ProcessDirectory runs the pipeline over every supported file in
	// a directory.
	ProcessDirectory(ctx context.Context, dir string, recursive bool, outputPath string) *domain.Result

	// Report returns the current processing report.
	Report() Report

	// SupportedFormats lists the parseable file extensions.
	SupportedFormats() []string
}
