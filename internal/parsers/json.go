package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// JSONParser walks a JSON document and emits one chunk per string
// leaf that meets the minimum length, tagged with its dotted path.
type JSONParser struct {
	minTextLength int
}

// NewJSON creates a JSON parser.
func NewJSON(minTextLength int) *JSONParser {
	return &JSONParser{minTextLength: minTextLength}
}

func (p *JSONParser) Extensions() []string {
	return []string{"json"}
}

func (p *JSONParser) Parse(_ context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var chunks []*domain.Chunk
	p.walk(document, "", source, &chunks)
	return chunks, nil
}

func (p *JSONParser) walk(node any, path string, source *domain.SourceMetadata, out *[]*domain.Chunk) {
	switch value := node.(type) {
	case map[string]any:
		// Sorted keys keep chunk order deterministic across runs.
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			p.walk(value[key], childPath, source, out)
		}
	case []any:
		for i, item := range value {
			p.walk(item, fmt.Sprintf("%s[%d]", path, i), source, out)
		}
	case string:
		trimmed := strings.TrimSpace(value)
		if len([]rune(trimmed)) < p.minTextLength {
			return
		}
		chunk := domain.NewChunk(trimmed, domain.DataTypeJSON, detectLanguage(trimmed))
		chunk.Source = source
		chunk.Extra["file_type"] = "json"
		chunk.Extra["json_path"] = path
		*out = append(*out, chunk)
	}
}
