package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

func TestDefaults(t *testing.T) {
	cfg, err := New("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.GetInt("pipeline.batch_size"))
	assert.Equal(t, "skip", cfg.GetString("pipeline.error_handling"))
	assert.True(t, cfg.GetBool("cleaner.enabled"))
	assert.Equal(t, 0.85, cfg.GetFloat("cleaner.similarity_threshold"))
	assert.Equal(t,
		[]string{"completeness", "relevance", "consistency", "diversity"},
		cfg.GetStringSlice("evaluator.quality_metrics"))
	assert.Equal(t, 1000, cfg.GetInt("parser.text_settings.chunk_size"))
}

func TestGetWithDefault(t *testing.T) {
	cfg, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.Get("nonexistent.key", "fallback"))
	assert.Equal(t, 100, cfg.Get("pipeline.batch_size", 0))
}

func TestSetOverrides(t *testing.T) {
	cfg, err := New("")
	require.NoError(t, err)

	cfg.Set("pipeline.batch_size", 7)
	assert.Equal(t, 7, cfg.GetInt("pipeline.batch_size"))
}

func TestSection(t *testing.T) {
	cfg, err := New("")
	require.NoError(t, err)

	section := cfg.Section("cleaner")
	assert.Equal(t, true, section["enabled"])
	assert.NotEmpty(t, section["min_text_length"])
}

func TestFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
global:
  max_workers: 2
parser:
  supported_formats: [txt]
cleaner:
  min_text_length: 20
enhancer:
  max_qa_pairs: 3
evaluator:
  quality_metrics: [relevance]
pipeline:
  batch_size: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.GetInt("pipeline.batch_size"))
	assert.Equal(t, 20, cfg.GetInt("cleaner.min_text_length"))
	// Keys the file omits fall back to defaults.
	assert.Equal(t, "skip", cfg.GetString("pipeline.error_handling"))
}

func TestMissingFileIsFatal(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMissingSectionIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global:\n  max_workers: 2\n"), 0o644))

	_, err := New(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMalformedFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global: [unterminated"), 0o644))

	_, err := New(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
