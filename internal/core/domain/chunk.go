package domain

import (
	"time"

	"github.com/google/uuid"
)

// DataType classifies the origin of a chunk's content.
type DataType string

const (
	DataTypePDF      DataType = "pdf"
	DataTypeText     DataType = "text"
	DataTypeTable    DataType = "table"
	DataTypeJSON     DataType = "json"
	DataTypeCSV      DataType = "csv"
	DataTypeMarkdown DataType = "markdown"
)

// Language tags the dominant language of a chunk.
type Language string

const (
	LanguageChinese Language = "zh"
	LanguageEnglish Language = "en"
	LanguageAuto    Language = "auto"
)

// Status is the outcome of one processing step.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// SourceMetadata describes the file a chunk was extracted from.
// Chunks hold a shared read-only reference to it and never mutate it.
type SourceMetadata struct {
	// Path is the absolute path of the source file.
	Path string `json:"file_path"`

	// Name is the base file name.
	Name string `json:"file_name"`

	// Size is the file size in bytes.
	Size int64 `json:"file_size"`

	// Type is the lower-cased file extension including the dot.
	Type string `json:"file_type"`

	// Encoding is the detected text encoding, empty if unknown.
	Encoding string `json:"encoding,omitempty"`

	// Hash is the hex digest of the file content.
	Hash string `json:"hash_value,omitempty"`

	// CreatedAt and ModifiedAt come from the file system.
	CreatedAt  time.Time `json:"created_at,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// ProcessRecord is one entry in a chunk's processing history.
type ProcessRecord struct {
	// Skill is the name of the stage that produced this record.
	Skill string `json:"processor_name"`

	// StartedAt and EndedAt bound the transform's wall time.
	StartedAt time.Time `json:"start_time"`
	EndedAt   time.Time `json:"end_time"`

	// Duration is EndedAt minus StartedAt.
	Duration time.Duration `json:"processing_time"`

	// Status is the outcome of the transform.
	Status Status `json:"status"`

	// Error carries the failure or skip reason, empty on success.
	Error string `json:"error_message,omitempty"`

	// Params is a snapshot of the stage's active configuration.
	Params map[string]any `json:"parameters,omitempty"`
}

// Chunk is the atomic unit of text flowing through the pipeline.
// Stages mutate Content and Extra in place and append to History;
// Identity, DataType, Language and Source are read-only after creation.
type Chunk struct {
	// ID is the unique identifier, assigned at creation.
	ID string `json:"id"`

	// Content is the text payload. Stages may rewrite it.
	Content string `json:"content"`

	// DataType classifies how the content was extracted.
	DataType DataType `json:"data_type"`

	// Language is the language tag set at ingestion.
	Language Language `json:"language"`

	// Source points at the originating file's metadata, may be nil.
	Source *SourceMetadata `json:"source_metadata,omitempty"`

	// History is the append-only sequence of per-stage outcomes.
	// It is never reordered or truncated.
	History []ProcessRecord `json:"process_metadata,omitempty"`

	// Extra is the open key-value side channel for stage-derived
	// artifacts. Each stage owns the keys it writes; no stage deletes
	// another stage's keys.
	Extra map[string]any `json:"extra_data"`
}

// Extension bag keys shared between stages and the controller.
const (
	KeyCleaned          = "cleaned"
	KeyOriginalLength   = "original_length"
	KeyCleanedLength    = "cleaned_length"
	KeyCleaningRatio    = "cleaning_ratio"
	KeyDuplicate        = "duplicate"
	KeyExtractedTerms   = "extracted_terms"
	KeyGeneratedQA      = "generated_qa"
	KeyDomainTags       = "domain_tags"
	KeyEnhanced         = "enhanced"
	KeyOriginalContent  = "original_content"
	KeyEnriched         = "knowledge_enriched"
	KeyQualityScore     = "quality_score"
	KeySuggestions      = "improvement_suggestions"
	KeyQualityWarning   = "quality_warning"
)

// NewChunk creates a chunk with a fresh identity and an empty
// extension bag.
func NewChunk(content string, dataType DataType, language Language) *Chunk {
	return &Chunk{
		ID:       uuid.New().String(),
		Content:  content,
		DataType: dataType,
		Language: language,
		Extra:    make(map[string]any),
	}
}

// AddRecord appends a processing record to the chunk's history.
func (c *Chunk) AddRecord(record ProcessRecord) {
	c.History = append(c.History, record)
}

// LatestStatus returns the status of the most recent history entry,
// or StatusPending when the chunk has not been processed yet.
func (c *Chunk) LatestStatus() Status {
	if len(c.History) == 0 {
		return StatusPending
	}
	return c.History[len(c.History)-1].Status
}
