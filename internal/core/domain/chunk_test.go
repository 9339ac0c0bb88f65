package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunk(t *testing.T) {
	chunk := NewChunk("降雨量统计", DataTypeText, LanguageChinese)

	assert.NotEmpty(t, chunk.ID)
	assert.Equal(t, "降雨量统计", chunk.Content)
	assert.Equal(t, DataTypeText, chunk.DataType)
	assert.Equal(t, LanguageChinese, chunk.Language)
	assert.NotNil(t, chunk.Extra)
	assert.Empty(t, chunk.History)

	other := NewChunk("x", DataTypeText, LanguageAuto)
	assert.NotEqual(t, chunk.ID, other.ID)
}

func TestChunkHistoryAppendOnly(t *testing.T) {
	chunk := NewChunk("text", DataTypeText, LanguageAuto)
	assert.Equal(t, StatusPending, chunk.LatestStatus())

	chunk.AddRecord(ProcessRecord{Skill: "cleaner", Status: StatusCompleted})
	chunk.AddRecord(ProcessRecord{Skill: "enhancer", Status: StatusSkipped})

	require.Len(t, chunk.History, 2)
	assert.Equal(t, "cleaner", chunk.History[0].Skill)
	assert.Equal(t, StatusSkipped, chunk.LatestStatus())
}

func TestDatasetGrowsMonotonically(t *testing.T) {
	ds := NewDataset("run", "desc")
	assert.NotEmpty(t, ds.ID)

	before := ds.UpdatedAt
	time.Sleep(time.Millisecond)
	ds.AddChunk(NewChunk("a", DataTypeText, LanguageChinese))
	assert.True(t, ds.UpdatedAt.After(before))

	ds.AddQAPair(QAPair{Question: "q", Answer: "a"})
	assert.Len(t, ds.Chunks, 1)
	assert.Len(t, ds.QAPairs, 1)
}

func TestDatasetStatistics(t *testing.T) {
	ds := NewDataset("run", "")
	ds.AddChunk(NewChunk("四个字符", DataTypePDF, LanguageChinese))
	ds.AddChunk(NewChunk("六六六六六六", DataTypeText, LanguageChinese))
	ds.AddQAPair(QAPair{Question: "q", Answer: "a"})

	stats := ds.Statistics()
	assert.Equal(t, 2, stats["total_chunks"])
	assert.Equal(t, 1, stats["total_qa_pairs"])
	assert.Equal(t, 10, stats["total_characters"])
	assert.Equal(t, 5.0, stats["average_chunk_length"])
	assert.Equal(t, map[string]int{"pdf": 1, "text": 1}, stats["data_types"])
	assert.Equal(t, map[string]int{"zh": 2}, stats["languages"])
}

func TestDatasetStatisticsEmpty(t *testing.T) {
	stats := NewDataset("empty", "").Statistics()
	assert.Equal(t, 0, stats["total_chunks"])
	assert.Equal(t, 0.0, stats["average_chunk_length"])
}
