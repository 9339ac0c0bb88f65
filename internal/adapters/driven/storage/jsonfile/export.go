package jsonfile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// exportFile is the final training-data layout. Chunk processing
// history is dropped; source metadata is reduced to the fields a
// downstream consumer needs to trace provenance.
type exportFile struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Statistics  map[string]any `json:"statistics"`
	Chunks      []exportChunk  `json:"chunks"`
	QAPairs     []exportQAPair `json:"qa_pairs"`
	Metadata    map[string]any `json:"metadata"`
}

type exportChunk struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	DataType       string         `json:"data_type"`
	Language       string         `json:"language"`
	SourceMetadata *exportSource  `json:"source_metadata"`
	ExtraData      map[string]any `json:"extra_data"`
}

type exportSource struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

type exportQAPair struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Context    string  `json:"context"`
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
}

// Exporter writes datasets to their final JSON form.
type Exporter struct{}

var _ driven.DatasetExporter = (*Exporter)(nil)

// NewExporter creates a dataset exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export serialises the dataset to path. A missing or foreign
// extension gets ".json" appended rather than rejected.
func (e *Exporter) Export(dataset *domain.Dataset, path string) error {
	if dataset == nil {
		return fmt.Errorf("%w: dataset is nil", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		path += ".json"
	}

	out := exportFile{
		ID:          dataset.ID,
		Name:        dataset.Name,
		Description: dataset.Description,
		CreatedAt:   dataset.CreatedAt,
		UpdatedAt:   dataset.UpdatedAt,
		Statistics:  dataset.Statistics(),
		Chunks:      make([]exportChunk, 0, len(dataset.Chunks)),
		QAPairs:     make([]exportQAPair, 0, len(dataset.QAPairs)),
		Metadata:    dataset.Metadata,
	}

	for _, chunk := range dataset.Chunks {
		ec := exportChunk{
			ID:        chunk.ID,
			Content:   chunk.Content,
			DataType:  string(chunk.DataType),
			Language:  string(chunk.Language),
			ExtraData: chunk.Extra,
		}
		if chunk.Source != nil {
			ec.SourceMetadata = &exportSource{
				FilePath: chunk.Source.Path,
				FileName: chunk.Source.Name,
				FileType: chunk.Source.Type,
			}
		}
		out.Chunks = append(out.Chunks, ec)
	}

	for _, qa := range dataset.QAPairs {
		out.QAPairs = append(out.QAPairs, exportQAPair{
			Question:   qa.Question,
			Answer:     qa.Answer,
			Context:    qa.Context,
			Domain:     qa.Domain,
			Confidence: qa.Confidence,
		})
	}

	if err := SaveJSON(path, out); err != nil {
		return fmt.Errorf("exporting dataset: %w", err)
	}
	logger.Info("exported dataset %q to %s (%d chunks, %d qa pairs)",
		dataset.Name, path, len(out.Chunks), len(out.QAPairs))
	return nil
}
