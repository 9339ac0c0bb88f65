package driven

import (
	"context"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// Parser converts one file format into chunks.
type Parser interface {
	// Extensions returns the lower-cased extensions (without dot)
	// this parser handles.
	Extensions() []string

	// Parse reads the file and returns its chunks in document order.
	// The source metadata is shared read-only across the chunks.
	Parse(ctx context.Context, path string, source *domain.SourceMetadata) ([]*domain.Chunk, error)
}

// ParserRegistry is the parsing collaborator consumed by the pipeline
// controller.
type ParserRegistry interface {
	// ParseFile parses a single file, returning a descriptive error
	// for unreadable or unsupported files.
	ParseFile(ctx context.Context, path string) ([]*domain.Chunk, error)

	// ParseDirectory parses every supported file under path. Per-file
	// failures are logged and skipped, never abort the walk.
	ParseDirectory(ctx context.Context, path string, recursive bool) ([]*domain.Chunk, error)

	// ListFiles returns the supported file paths under path in walk
	// order, without parsing them.
	ListFiles(path string, recursive bool) ([]string, error)

	// SupportedFormats returns the sorted set of supported extensions.
	SupportedFormats() []string
}
