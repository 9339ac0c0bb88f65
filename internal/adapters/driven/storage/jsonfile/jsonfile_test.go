package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

func TestSaveAndLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	in := map[string]any{"name": "长江流域", "count": 3}
	require.NoError(t, SaveJSON(path, in))

	// HTML escaping is off so Chinese and angle brackets stay literal.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "长江流域")

	var out map[string]any
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, "长江流域", out["name"])
	assert.EqualValues(t, 3, out["count"])
}

func TestLoadJSONMissingFile(t *testing.T) {
	var out map[string]any
	err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"), &out)
	assert.Error(t, err)
}

func TestCheckpointerSaveLoad(t *testing.T) {
	dir := t.TempDir()
	cp, err := NewCheckpointer(dir)
	require.NoError(t, err)

	chunk := domain.NewChunk("降雨径流关系分析", domain.DataTypeText, domain.LanguageChinese)
	chunk.Extra["cleaned"] = true
	chunk.AddRecord(domain.ProcessRecord{Skill: "cleaner", Status: domain.StatusCompleted})

	require.NoError(t, cp.Save("cleaner", []*domain.Chunk{chunk}, 5))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "cleaner_5_")

	loaded, err := cp.Load(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	// Only id, content and extra survive the round trip.
	assert.Equal(t, chunk.ID, loaded[0].ID)
	assert.Equal(t, chunk.Content, loaded[0].Content)
	assert.Equal(t, true, loaded[0].Extra["cleaned"])
	assert.Empty(t, loaded[0].History)
	assert.Nil(t, loaded[0].Source)
}

func TestCheckpointerRequiresDir(t *testing.T) {
	_, err := NewCheckpointer("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCheckpointerCleanup(t *testing.T) {
	dir := t.TempDir()
	cp, err := NewCheckpointer(dir)
	require.NoError(t, err)

	stale := filepath.Join(dir, "cleaner_0_20240101_000000.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(dir, "enhancer_0_20260101_000000.json")
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0o644))

	// Non-json files are never touched.
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(other, old, old))

	removed, err := cp.Cleanup(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestExporter(t *testing.T) {
	ds := domain.NewDataset("processed_data_20260830", "hydrology training data")
	ds.Metadata["pipeline"] = "hydroprep"

	chunk := domain.NewChunk("水库调度规程", domain.DataTypeText, domain.LanguageChinese)
	chunk.Source = &domain.SourceMetadata{
		Path: "/data/rules.txt",
		Name: "rules.txt",
		Type: ".txt",
		Size: 120,
	}
	ds.AddChunk(chunk)
	ds.AddChunk(domain.NewChunk("orphan chunk", domain.DataTypeText, domain.LanguageEnglish))
	ds.AddQAPair(domain.QAPair{
		Question:   "什么是水库调度？",
		Answer:     "按规程控制水库蓄泄的过程。",
		Domain:     "水利工程",
		Confidence: 0.8,
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "out") // no extension on purpose
	require.NoError(t, NewExporter().Export(ds, path))

	var out exportFile
	require.NoError(t, LoadJSON(path+".json", &out))

	assert.Equal(t, ds.ID, out.ID)
	assert.Equal(t, ds.Name, out.Name)
	require.Len(t, out.Chunks, 2)
	require.NotNil(t, out.Chunks[0].SourceMetadata)
	assert.Equal(t, "rules.txt", out.Chunks[0].SourceMetadata.FileName)
	assert.Nil(t, out.Chunks[1].SourceMetadata)
	require.Len(t, out.QAPairs, 1)
	assert.Equal(t, "水利工程", out.QAPairs[0].Domain)
	assert.EqualValues(t, 2, out.Statistics["total_chunks"])
}

func TestExporterNilDataset(t *testing.T) {
	err := NewExporter().Export(nil, filepath.Join(t.TempDir(), "x.json"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
