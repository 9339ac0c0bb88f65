package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Dataset is the assembled output of a pipeline run: the ordered
// chunks that passed through plus the aggregated QA pairs. It grows
// monotonically via the Add methods.
type Dataset struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Chunks      []*Chunk       `json:"chunks"`
	QAPairs     []QAPair       `json:"qa_pairs"`
	Quality     *QualityScore  `json:"quality_score,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Metadata    map[string]any `json:"metadata"`
}

// NewDataset creates an empty dataset with a fresh identity.
func NewDataset(name, description string) *Dataset {
	now := time.Now()
	return &Dataset{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    make(map[string]any),
	}
}

// AddChunk appends a chunk and bumps the update timestamp.
func (d *Dataset) AddChunk(chunk *Chunk) {
	d.Chunks = append(d.Chunks, chunk)
	d.UpdatedAt = time.Now()
}

// AddQAPair appends a QA pair and bumps the update timestamp.
func (d *Dataset) AddQAPair(qa QAPair) {
	d.QAPairs = append(d.QAPairs, qa)
	d.UpdatedAt = time.Now()
}

// Statistics summarises the dataset: totals, per-type and per-language
// breakdowns, character counts.
func (d *Dataset) Statistics() map[string]any {
	dataTypes := make(map[string]int)
	languages := make(map[string]int)
	totalChars := 0

	for _, chunk := range d.Chunks {
		dataTypes[string(chunk.DataType)]++
		languages[string(chunk.Language)]++
		totalChars += utf8.RuneCountInString(chunk.Content)
	}

	avgLength := 0.0
	if len(d.Chunks) > 0 {
		avgLength = float64(totalChars) / float64(len(d.Chunks))
	}

	return map[string]any{
		"total_chunks":         len(d.Chunks),
		"total_qa_pairs":       len(d.QAPairs),
		"data_types":           dataTypes,
		"languages":            languages,
		"total_characters":     totalChars,
		"average_chunk_length": avgLength,
	}
}

// Result is the structured outcome of a pipeline run. Failed runs
// still carry whatever partial statistics were accumulated.
type Result struct {
	Success  bool           `json:"success"`
	Data     *Dataset       `json:"data,omitempty"`
	Error    string         `json:"error_message,omitempty"`
	Duration time.Duration  `json:"processing_time"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
