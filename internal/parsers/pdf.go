package parsers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// PDFParser emits one chunk per page. Pages that fail text extraction
// are logged and skipped rather than failing the whole document.
type PDFParser struct {
	minTextLength int
}

// NewPDF creates a PDF parser.
func NewPDF(minTextLength int) *PDFParser {
	return &PDFParser{minTextLength: minTextLength}
}

func (p *PDFParser) Extensions() []string {
	return []string{"pdf"}
}

func (p *PDFParser) Parse(ctx context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var chunks []*domain.Chunk

	for pageNumber := 1; pageNumber <= totalPages; pageNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNumber)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("parsers: %s page %d extraction failed: %v", path, pageNumber, err)
			continue
		}

		trimmed := strings.TrimSpace(text)
		if len([]rune(trimmed)) < p.minTextLength {
			continue
		}

		chunk := domain.NewChunk(trimmed, domain.DataTypePDF, detectLanguage(trimmed))
		chunk.Source = source
		chunk.Extra["file_type"] = "pdf"
		chunk.Extra["page_number"] = pageNumber
		chunk.Extra["total_pages"] = totalPages
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
