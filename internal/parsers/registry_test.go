package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(DefaultConfig())
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRequiresFormats(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSupportedFormats(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"csv", "json", "md", "pdf", "txt"}, r.SupportedFormats())
}

func TestParseTextFile(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "本流域水文监测数据显示，汛期水位持续上涨。")

	chunks, err := r.ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, domain.DataTypeText, chunk.DataType)
	assert.Equal(t, domain.LanguageChinese, chunk.Language)
	assert.Equal(t, "text", chunk.Extra["file_type"])

	require.NotNil(t, chunk.Source)
	assert.Equal(t, "report.txt", chunk.Source.Name)
	assert.Equal(t, ".txt", chunk.Source.Type)
	assert.NotEmpty(t, chunk.Source.Hash)
	assert.Equal(t, "utf-8", chunk.Source.Encoding)
}

func TestParseTextFileTooShort(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "tiny.txt", "短文本")

	chunks, err := r.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestParseGBKEncodedFile(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("水文监测站记录了本次降雨过程的完整数据。"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "gbk.txt")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	r := newTestRegistry(t)
	chunks, err := r.ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Contains(t, chunks[0].Content, "水文监测站")
	assert.Equal(t, "gbk", chunks[0].Extra["encoding"])
}

func TestParseJSONFile(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "data.json", `{
		"report": {
			"summary": "本流域水文监测数据显示水位持续上涨。",
			"count": 3
		},
		"notes": ["短", "汛期水库调度预案已经启动，防洪形势平稳。"]
	}`)

	chunks, err := r.ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	paths := []string{
		chunks[0].Extra["json_path"].(string),
		chunks[1].Extra["json_path"].(string),
	}
	assert.Contains(t, paths, "report.summary")
	assert.Contains(t, paths, "notes[1]")
	for _, chunk := range chunks {
		assert.Equal(t, domain.DataTypeJSON, chunk.DataType)
	}
}

func TestParseCSVFile(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "stations.csv", "站名,水位,流量\n宜昌站,12.5,1000\n汉口站,,800\n")

	chunks, err := r.ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "站名: 宜昌站 | 水位: 12.5 | 流量: 1000", chunks[0].Content)
	assert.Equal(t, "站名: 汉口站 | 流量: 800", chunks[1].Content)
	assert.Equal(t, 0, chunks[0].Extra["row_number"])
	assert.Equal(t, 1, chunks[1].Extra["row_number"])
}

func TestParseUnsupportedFormat(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.ParseFile(context.Background(), "document.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestSplitLargeTexts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 100
	cfg.Overlap = 10
	r, err := New(cfg)
	require.NoError(t, err)

	sentence := "水文监测数据显示水位持续上涨，流量明显增大。"
	dir := t.TempDir()
	path := writeFile(t, dir, "long.txt", strings.Repeat(sentence, 20))

	chunks, parseErr := r.ParseFile(context.Background(), path)
	require.NoError(t, parseErr)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Extra["chunk_number"])
		assert.LessOrEqual(t, len([]rune(chunk.Content)), cfg.ChunkSize)
		assert.GreaterOrEqual(t, len([]rune(chunk.Content)), cfg.MinTextLength)
	}
}

func TestParseDirectory(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", "本流域水文监测数据显示，汛期水位持续上涨。")
	writeFile(t, dir, "broken.json", "{not valid json")
	writeFile(t, dir, "ignored.docx", "unsupported")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "b.md", "# 防洪调度\n\n水库群联合调度提升了流域防洪能力。")

	t.Run("recursive", func(t *testing.T) {
		chunks, err := r.ParseDirectory(context.Background(), dir, true)
		require.NoError(t, err)
		assert.Len(t, chunks, 2)
	})

	t.Run("non-recursive", func(t *testing.T) {
		chunks, err := r.ParseDirectory(context.Background(), dir, false)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := r.ParseDirectory(context.Background(), filepath.Join(dir, "a.txt"), false)
		require.Error(t, err)
	})
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, domain.LanguageChinese, detectLanguage("水文监测"))
	assert.Equal(t, domain.LanguageEnglish, detectLanguage("river discharge"))
	assert.Equal(t, domain.LanguageAuto, detectLanguage("12345"))
}
