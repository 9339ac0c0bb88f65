// Package evaluator scores chunks on completeness, relevance,
// consistency and diversity. Scoring is advisory: low-quality chunks
// are annotated with warnings and suggestions but never dropped from
// the batch. Explicit filtering is a separate, caller-driven step.
package evaluator

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

var _ driven.Skill = (*Evaluator)(nil)

// defaultWeights are the per-metric weights. The overall score is
// renormalised over the active metrics, so disabling a metric
// redistributes its weight instead of deflating the score.
var defaultWeights = map[string]float64{
	"completeness": 0.25,
	"relevance":    0.30,
	"consistency":  0.20,
	"diversity":    0.25,
}

// Config holds the evaluator settings.
type Config struct {
	// Metrics lists the enabled quality metrics. Required, must be
	// non-empty.
	Metrics []string

	// MinQualityScore is the overall score below which chunks get a
	// quality warning.
	MinQualityScore float64

	// MinRelevanceScore is the relevance threshold used by the
	// improvement suggestions.
	MinRelevanceScore float64
}

// DefaultConfig returns the evaluator defaults.
func DefaultConfig() Config {
	return Config{
		Metrics:           []string{"completeness", "relevance", "consistency", "diversity"},
		MinQualityScore:   0.7,
		MinRelevanceScore: 0.6,
	}
}

// FromConfig builds an evaluator from a configuration section.
func FromConfig(section map[string]any) (*Evaluator, error) {
	cfg := DefaultConfig()
	if v, ok := section["quality_metrics"]; ok {
		cfg.Metrics = cast.ToStringSlice(v)
	} else {
		return nil, fmt.Errorf("%w: evaluator requires quality_metrics", domain.ErrConfiguration)
	}
	if thresholds, ok := section["thresholds"]; ok {
		t := cast.ToStringMap(thresholds)
		if v, ok := t["min_quality_score"]; ok {
			cfg.MinQualityScore = cast.ToFloat64(v)
		}
		if v, ok := t["min_relevance_score"]; ok {
			cfg.MinRelevanceScore = cast.ToFloat64(v)
		}
	}
	return New(cfg)
}

type evaluationRecord struct {
	ChunkID   string
	Timestamp time.Time
	Scores    map[string]float64
}

// Evaluator is the quality-scoring stage. The evaluation log is
// cumulative instance state; access is serialised so batches may run
// concurrently.
type Evaluator struct {
	cfg     Config
	metrics map[string]struct{}

	mu           sync.Mutex
	history      []evaluationRecord
	distribution map[string][]float64
}

// New creates an evaluator. At least one metric must be enabled.
func New(cfg Config) (*Evaluator, error) {
	if len(cfg.Metrics) == 0 {
		return nil, fmt.Errorf("%w: evaluator requires at least one quality metric", domain.ErrConfiguration)
	}
	if cfg.MinQualityScore <= 0 {
		cfg.MinQualityScore = 0.7
	}
	if cfg.MinRelevanceScore <= 0 {
		cfg.MinRelevanceScore = 0.6
	}

	metrics := make(map[string]struct{}, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		metrics[m] = struct{}{}
	}

	return &Evaluator{
		cfg:          cfg,
		metrics:      metrics,
		distribution: make(map[string][]float64),
	}, nil
}

// Name returns the stage name.
func (e *Evaluator) Name() string {
	return "evaluator"
}

// Params returns the active configuration snapshot.
func (e *Evaluator) Params() map[string]any {
	return map[string]any{
		"quality_metrics":     e.cfg.Metrics,
		"min_quality_score":   e.cfg.MinQualityScore,
		"min_relevance_score": e.cfg.MinRelevanceScore,
	}
}

// ProcessSingle scores one chunk and annotates it with the score,
// improvement suggestions and, below the threshold, a warning.
func (e *Evaluator) ProcessSingle(_ context.Context, chunk *domain.Chunk) (*domain.Chunk, error) {
	if strings.TrimSpace(chunk.Content) == "" {
		logger.Warn("evaluator: chunk %s has empty content", chunk.ID)
		return chunk, nil
	}

	score := e.Evaluate(chunk)
	chunk.Extra[domain.KeyQualityScore] = score

	e.record(chunk.ID, score)

	if suggestions := e.suggestions(chunk, score); len(suggestions) > 0 {
		chunk.Extra[domain.KeySuggestions] = suggestions
	}

	if score.Overall < e.cfg.MinQualityScore {
		chunk.Extra[domain.KeyQualityWarning] = true
		logger.Warn("evaluator: chunk %s scored %.3f, below threshold %.2f", chunk.ID, score.Overall, e.cfg.MinQualityScore)
	}

	logger.Debug("evaluator: chunk %s scored %.3f", chunk.ID, score.Overall)
	return chunk, nil
}

// Evaluate computes the four-dimension quality score of a chunk. All
// sub-scores and the overall score lie in [0,1].
func (e *Evaluator) Evaluate(chunk *domain.Chunk) domain.QualityScore {
	content := chunk.Content
	scores := make(map[string]float64, len(e.metrics))

	if _, ok := e.metrics["completeness"]; ok {
		scores["completeness"] = e.scoreCompleteness(content, chunk)
	}
	if _, ok := e.metrics["relevance"]; ok {
		scores["relevance"] = e.scoreRelevance(content)
	}
	if _, ok := e.metrics["consistency"]; ok {
		scores["consistency"] = e.scoreConsistency(content)
	}
	if _, ok := e.metrics["diversity"]; ok {
		scores["diversity"] = e.scoreDiversity(content)
	}

	details := make(map[string]any, len(scores)+1)
	for metric, value := range scores {
		details[metric] = value
	}
	details["number_count"] = len(numberPattern.FindAllString(content, -1))

	return domain.QualityScore{
		Overall:      overallScore(scores),
		Completeness: scores["completeness"],
		Relevance:    scores["relevance"],
		Consistency:  scores["consistency"],
		Diversity:    scores["diversity"],
		Details:      details,
	}
}

// overallScore is the weighted mean over the active metrics,
// renormalised by the sum of their weights.
func overallScore(scores map[string]float64) float64 {
	overall := 0.0
	totalWeight := 0.0
	for metric, score := range scores {
		weight, ok := defaultWeights[metric]
		if !ok {
			weight = 0.25
		}
		overall += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return overall / totalWeight
}

func (e *Evaluator) record(chunkID string, score domain.QualityScore) {
	scores := map[string]float64{
		"overall":      score.Overall,
		"completeness": score.Completeness,
		"relevance":    score.Relevance,
		"consistency":  score.Consistency,
		"diversity":    score.Diversity,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, evaluationRecord{
		ChunkID:   chunkID,
		Timestamp: time.Now(),
		Scores:    scores,
	})
	for metric, value := range scores {
		e.distribution[metric] = append(e.distribution[metric], value)
	}
}

// suggestions derives threshold-triggered improvement hints.
func (e *Evaluator) suggestions(chunk *domain.Chunk, score domain.QualityScore) []string {
	var suggestions []string
	content := chunk.Content

	if score.Completeness < 0.7 {
		if len([]rune(content)) < 100 {
			suggestions = append(suggestions, "内容较短，建议增加更多详细信息")
		}
		if !digitPattern.MatchString(content) {
			suggestions = append(suggestions, "缺少具体数据，建议添加相关数值信息")
		}
		if extraLen(chunk.Extra[domain.KeyExtractedTerms]) == 0 {
			suggestions = append(suggestions, "缺少专业术语，建议增加水利专业概念")
		}
	}

	if score.Relevance < e.cfg.MinRelevanceScore {
		suggestions = append(suggestions, "水利相关性较弱，建议增加专业领域内容")
		if score.Relevance < 0.4 {
			suggestions = append(suggestions, "建议明确阐述与水利领域的关联性")
		}
	}

	if score.Consistency < 0.7 {
		suggestions = append(suggestions, "内容一致性有待改善，建议检查术语使用和逻辑结构")
	}

	if score.Diversity < 0.6 {
		suggestions = append(suggestions, "表达较为单一，建议丰富词汇和句式")
		if score.Diversity < 0.4 {
			suggestions = append(suggestions, "建议从多个角度展开描述，增加信息层次")
		}
	}

	return suggestions
}

// extraLen returns the length of a slice-valued extension entry,
// whatever its element type. Checkpoint reloads turn typed slices
// into []any, so the element type cannot be assumed.
func extraLen(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return rv.Len()
	}
	return 0
}

// FilterByQuality returns the chunks whose overall score meets the
// threshold, in their original order. A non-positive minScore falls
// back to the configured threshold. Unscored chunks are excluded.
func (e *Evaluator) FilterByQuality(chunks []*domain.Chunk, minScore float64) []*domain.Chunk {
	if minScore <= 0 {
		minScore = e.cfg.MinQualityScore
	}

	filtered := make([]*domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		score, ok := chunk.Extra[domain.KeyQualityScore].(domain.QualityScore)
		if ok && score.Overall >= minScore {
			filtered = append(filtered, chunk)
		}
	}
	return filtered
}

// Report summarises the evaluation log: per-metric statistics, the
// overall quality distribution and threshold compliance.
func (e *Evaluator) Report() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := map[string]any{"total_evaluated": len(e.history)}
	if len(e.history) == 0 {
		return report
	}

	for _, metric := range []string{"overall", "completeness", "relevance", "consistency", "diversity"} {
		scores := e.distribution[metric]
		if len(scores) == 0 {
			continue
		}
		report[metric+"_stats"] = summarise(scores)
	}

	overall := e.distribution["overall"]
	report["quality_distribution"] = bucketScores(overall)

	qualified := 0
	for _, s := range overall {
		if s >= e.cfg.MinQualityScore {
			qualified++
		}
	}
	report["threshold_compliance"] = map[string]any{
		"threshold":      e.cfg.MinQualityScore,
		"qualified":      qualified,
		"qualified_rate": float64(qualified) / float64(len(overall)),
	}

	return report
}

func summarise(scores []float64) map[string]float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	mean := 0.0
	for _, s := range sorted {
		mean += s
	}
	mean /= float64(len(sorted))

	variance := 0.0
	for _, s := range sorted {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(sorted))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return map[string]float64{
		"mean":   mean,
		"std":    math.Sqrt(variance),
		"min":    sorted[0],
		"max":    sorted[len(sorted)-1],
		"median": median,
	}
}

func bucketScores(scores []float64) map[string]int {
	distribution := map[string]int{"excellent": 0, "good": 0, "fair": 0, "poor": 0}
	for _, s := range scores {
		switch {
		case s >= 0.8:
			distribution["excellent"]++
		case s >= 0.6:
			distribution["good"]++
		case s >= 0.4:
			distribution["fair"]++
		default:
			distribution["poor"]++
		}
	}
	return distribution
}

// Reset clears the evaluation log.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
	e.distribution = make(map[string][]float64)
	logger.Info("evaluator: evaluation log reset")
}

// Statistics reports the evaluation log size and vocabulary sizes.
func (e *Evaluator) Statistics() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return map[string]any{
		"evaluation_history_count": len(e.history),
		"quality_metrics_count":    len(e.metrics),
		"hydro_keywords_count":     len(hydroKeywords),
	}
}
