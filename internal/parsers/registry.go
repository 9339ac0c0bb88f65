// Package parsers turns raw files into chunks. One parser per file
// format; the registry owns format dispatch, source metadata and the
// splitting of oversized texts.
package parsers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
	"github.com/BaoyingShan0/OpenHydrology/internal/textutil"
)

var _ driven.ParserRegistry = (*Registry)(nil)

// Config holds the parsing settings.
type Config struct {
	// SupportedFormats lists the enabled extensions. Required, must
	// be non-empty.
	SupportedFormats []string

	// ChunkSize is the maximum chunk length in runes before
	// splitting.
	ChunkSize int

	// Overlap is the rune overlap between consecutive split chunks.
	Overlap int

	// MinTextLength is the minimum rune length for a chunk to be
	// emitted.
	MinTextLength int

	// EncodingDetection enables source encoding detection.
	EncodingDetection bool
}

// DefaultConfig returns the parsing defaults.
func DefaultConfig() Config {
	return Config{
		SupportedFormats:  []string{"pdf", "txt", "json", "csv", "md"},
		ChunkSize:         1000,
		Overlap:           100,
		MinTextLength:     10,
		EncodingDetection: true,
	}
}

// FromConfig builds a registry from a configuration section.
func FromConfig(section map[string]any) (*Registry, error) {
	cfg := DefaultConfig()
	if v, ok := section["supported_formats"]; ok {
		cfg.SupportedFormats = cast.ToStringSlice(v)
	} else {
		return nil, fmt.Errorf("%w: parser requires supported_formats", domain.ErrConfiguration)
	}
	if text, ok := section["text_settings"]; ok {
		t := cast.ToStringMap(text)
		if v, ok := t["chunk_size"]; ok {
			cfg.ChunkSize = cast.ToInt(v)
		}
		if v, ok := t["overlap"]; ok {
			cfg.Overlap = cast.ToInt(v)
		}
		if v, ok := t["encoding_detection"]; ok {
			cfg.EncodingDetection = cast.ToBool(v)
		}
	}
	if v, ok := section["min_text_length"]; ok {
		cfg.MinTextLength = cast.ToInt(v)
	}
	return New(cfg)
}

// Registry dispatches files to format parsers.
type Registry struct {
	cfg     Config
	parsers map[string]driven.Parser
}

// New creates a registry with the built-in parsers, filtered to the
// configured formats.
func New(cfg Config) (*Registry, error) {
	if len(cfg.SupportedFormats) == 0 {
		return nil, fmt.Errorf("%w: parser requires at least one supported format", domain.ErrConfiguration)
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = 100
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 10
	}

	enabled := make(map[string]struct{}, len(cfg.SupportedFormats))
	for _, format := range cfg.SupportedFormats {
		enabled[strings.ToLower(format)] = struct{}{}
	}

	r := &Registry{
		cfg:     cfg,
		parsers: make(map[string]driven.Parser),
	}
	for _, p := range []driven.Parser{
		NewText(cfg.MinTextLength),
		NewMarkdown(cfg.MinTextLength),
		NewJSON(cfg.MinTextLength),
		NewCSV(),
		NewPDF(cfg.MinTextLength),
	} {
		for _, ext := range p.Extensions() {
			if _, ok := enabled[ext]; ok {
				r.parsers[ext] = p
			}
		}
	}

	return r, nil
}

// Register adds or replaces the parser for its extensions.
func (r *Registry) Register(p driven.Parser) {
	for _, ext := range p.Extensions() {
		r.parsers[strings.ToLower(ext)] = p
	}
}

// SupportedFormats returns the sorted registered extensions.
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// ParseFile parses one file and splits oversized chunks.
func (r *Registry) ParseFile(ctx context.Context, path string) ([]*domain.Chunk, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	parser, ok := r.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	source, err := r.sourceMetadata(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	logger.Debug("parsers: parsing %s", path)
	chunks, err := parser.Parse(ctx, path, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	chunks = r.splitLarge(chunks)
	logger.Info("parsers: %s yielded %d chunks", path, len(chunks))
	return chunks, nil
}

// ListFiles walks the directory and returns the supported file paths
// in walk order.
func (r *Registry) ListFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, path)
	}

	var files []string
	err = filepath.WalkDir(path, func(entry string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("parsers: skipping %s: %v", entry, walkErr)
			return nil
		}
		if d.IsDir() {
			if !recursive && entry != path {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry)), ".")
		if _, ok := r.parsers[ext]; ok {
			files = append(files, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ParseDirectory walks the directory and parses every supported file.
// Per-file failures are logged and skipped.
func (r *Registry) ParseDirectory(ctx context.Context, path string, recursive bool) ([]*domain.Chunk, error) {
	files, err := r.ListFiles(path, recursive)
	if err != nil {
		return nil, err
	}

	var all []*domain.Chunk
	for _, file := range files {
		chunks, parseErr := r.ParseFile(ctx, file)
		if parseErr != nil {
			logger.Error("parsers: %s failed: %v", file, parseErr)
			continue
		}
		all = append(all, chunks...)
	}

	logger.Info("parsers: directory %s yielded %d chunks", path, len(all))
	return all, nil
}

func (r *Registry) sourceMetadata(path string) (*domain.SourceMetadata, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	hash, err := fileHash(path)
	if err != nil {
		return nil, err
	}

	source := &domain.SourceMetadata{
		Path:       absolute,
		Name:       filepath.Base(path),
		Size:       info.Size(),
		Type:       strings.ToLower(filepath.Ext(path)),
		Hash:       hash,
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
	}
	if r.cfg.EncodingDetection {
		source.Encoding = detectEncoding(path)
	}
	return source, nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// splitLarge splits every chunk longer than the configured size at
// the nearest sentence or line boundary, with overlap between the
// pieces, preserving document order.
func (r *Registry) splitLarge(chunks []*domain.Chunk) []*domain.Chunk {
	splitSeps := []string{"\n\n", "\n", "。", ". ", "！", "？", "? "}

	var result []*domain.Chunk
	for _, chunk := range chunks {
		runes := []rune(chunk.Content)
		if len(runes) <= r.cfg.ChunkSize {
			result = append(result, chunk)
			continue
		}

		totalChunks := (len(runes) + r.cfg.ChunkSize - 1) / r.cfg.ChunkSize
		start := 0
		chunkNum := 0

		for start < len(runes) {
			end := start + r.cfg.ChunkSize
			if end < len(runes) {
				for _, sep := range splitSeps {
					if pos := lastIndexRunes(runes, []rune(sep), start, end); pos > start {
						end = pos + len([]rune(sep))
						break
					}
				}
			} else {
				end = len(runes)
			}

			piece := strings.TrimSpace(string(runes[start:end]))
			if len([]rune(piece)) >= r.cfg.MinTextLength {
				sub := domain.NewChunk(piece, chunk.DataType, chunk.Language)
				sub.Source = chunk.Source
				for key, value := range chunk.Extra {
					sub.Extra[key] = value
				}
				sub.Extra["chunk_number"] = chunkNum
				sub.Extra["total_chunks"] = totalChunks
				result = append(result, sub)
			}

			next := end
			if end < len(runes) {
				next = end - r.cfg.Overlap
			}
			if next <= start {
				next = end
			}
			start = next
			chunkNum++
		}
	}
	return result
}

// lastIndexRunes returns the rune index of the last occurrence of sep
// within runes[start:end), or -1.
func lastIndexRunes(runes, sep []rune, start, end int) int {
	for i := end - len(sep); i >= start; i-- {
		match := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// detectLanguage classifies text by script.
func detectLanguage(text string) domain.Language {
	if textutil.ContainsHan(text) {
		return domain.LanguageChinese
	}
	if strings.IndexFunc(text, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0 {
		return domain.LanguageEnglish
	}
	return domain.LanguageAuto
}
