package parsers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// TextParser parses plain text files into a single chunk, later split
// by the registry when oversized.
type TextParser struct {
	minTextLength int
}

// NewText creates a plain text parser.
func NewText(minTextLength int) *TextParser {
	return &TextParser{minTextLength: minTextLength}
}

func (p *TextParser) Extensions() []string {
	return []string{"txt", "text"}
}

func (p *TextParser) Parse(_ context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error) {
	text, encoding, err := readTextFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < p.minTextLength {
		return nil, nil
	}

	chunk := domain.NewChunk(trimmed, domain.DataTypeText, detectLanguage(trimmed))
	chunk.Source = source
	chunk.Extra["file_type"] = "text"
	chunk.Extra["encoding"] = encoding
	return []*domain.Chunk{chunk}, nil
}

// MarkdownParser parses markdown files. The raw markup is kept; noise
// removal is the cleaner's job.
type MarkdownParser struct {
	minTextLength int
}

// NewMarkdown creates a markdown parser.
func NewMarkdown(minTextLength int) *MarkdownParser {
	return &MarkdownParser{minTextLength: minTextLength}
}

func (p *MarkdownParser) Extensions() []string {
	return []string{"md", "markdown"}
}

func (p *MarkdownParser) Parse(_ context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error) {
	text, encoding, err := readTextFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < p.minTextLength {
		return nil, nil
	}

	chunk := domain.NewChunk(trimmed, domain.DataTypeMarkdown, detectLanguage(trimmed))
	chunk.Source = source
	chunk.Extra["file_type"] = "markdown"
	chunk.Extra["encoding"] = encoding
	return []*domain.Chunk{chunk}, nil
}

// readTextFile reads a file as UTF-8, falling back to GBK and then to
// a byte-preserving Latin-1 interpretation.
func readTextFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	text, encoding := decodeBytes(data)
	return text, encoding, nil
}

func decodeBytes(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
		return string(decoded), "gbk"
	}

	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), "latin-1"
}

// detectEncoding names the encoding of a file without keeping its
// decoded content.
func detectEncoding(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	_, encoding := decodeBytes(data)
	return encoding
}
