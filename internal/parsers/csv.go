package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// CSVParser emits one chunk per data row, rendered as
// "column: value | column: value" against the header row.
type CSVParser struct{}

// NewCSV creates a CSV parser.
func NewCSV() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Extensions() []string {
	return []string{"csv"}
}

func (p *CSVParser) Parse(_ context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error) {
	text, encoding, err := readTextFile(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	var chunks []*domain.Chunk
	for rowNumber, record := range records[1:] {
		var cells []string
		for i, value := range record {
			value = strings.TrimSpace(value)
			if value == "" || i >= len(header) {
				continue
			}
			cells = append(cells, header[i]+": "+value)
		}
		if len(cells) == 0 {
			continue
		}

		content := strings.Join(cells, " | ")
		chunk := domain.NewChunk(content, domain.DataTypeCSV, detectLanguage(content))
		chunk.Source = source
		chunk.Extra["file_type"] = "csv"
		chunk.Extra["row_number"] = rowNumber
		chunk.Extra["encoding"] = encoding
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
