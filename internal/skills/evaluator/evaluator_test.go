package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func chunkWith(content string) *domain.Chunk {
	return domain.NewChunk(content, domain.DataTypeText, domain.LanguageChinese)
}

func TestNewRequiresMetrics(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestFromConfig(t *testing.T) {
	t.Run("missing quality_metrics", func(t *testing.T) {
		_, err := FromConfig(map[string]any{})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("thresholds", func(t *testing.T) {
		e, err := FromConfig(map[string]any{
			"quality_metrics": []string{"relevance"},
			"thresholds": map[string]any{
				"min_quality_score": 0.5,
			},
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.5, e.cfg.MinQualityScore, 1e-9)
	})
}

func TestEvaluateScoreBounds(t *testing.T) {
	e := newTestEvaluator(t)

	contents := []string{
		"短文本",
		"流域降雨径流关系研究表明，通过水文监测与预报调度管理可以有效提高防洪能力。采用数据统计方法，结合工程措施与生态保护技术，水库运行管理水平不断提升，灌溉供水保障率达到95%。",
		"this text has nothing to do with the domain at all",
		"",
	}

	for _, content := range contents {
		score := e.Evaluate(chunkWith(content))
		for name, value := range map[string]float64{
			"overall":      score.Overall,
			"completeness": score.Completeness,
			"relevance":    score.Relevance,
			"consistency":  score.Consistency,
			"diversity":    score.Diversity,
		} {
			assert.GreaterOrEqual(t, value, 0.0, "%s for %q", name, content)
			assert.LessOrEqual(t, value, 1.0, "%s for %q", name, content)
		}
	}
}

func TestRelevanceIncreasesWithDomainKeywords(t *testing.T) {
	e := newTestEvaluator(t)

	plain := "这是一段关于普通话题的文字，没有特别的内容。"
	enriched := plain + "水文监测与降雨预报支撑水库防洪调度。"

	assert.Greater(t, e.scoreRelevance(enriched), e.scoreRelevance(plain))
}

func TestConsistencySynonymPenalty(t *testing.T) {
	e := newTestEvaluator(t)

	consistent := "降雨，过程。降雨，过程。"
	mixed := "降雨，降水。降雨，降水。"

	assert.Less(t, e.scoreConsistency(mixed), e.scoreConsistency(consistent))
}

func TestCompletenessRewardsExtractedTerms(t *testing.T) {
	e := newTestEvaluator(t)
	content := "水位持续上涨，流量达到1200立方米每秒。"

	bare := chunkWith(content)
	annotated := chunkWith(content)
	annotated.Extra[domain.KeyExtractedTerms] = []any{"水位", "流量"}

	assert.Greater(t, e.scoreCompleteness(content, annotated), e.scoreCompleteness(content, bare))
}

func TestOverallRenormalisation(t *testing.T) {
	e, err := New(Config{Metrics: []string{"relevance"}})
	require.NoError(t, err)

	score := e.Evaluate(chunkWith("水文监测与降雨预报支撑水库防洪调度。"))
	assert.InDelta(t, score.Relevance, score.Overall, 1e-9)
}

func TestProcessSingle(t *testing.T) {
	t.Run("annotates score", func(t *testing.T) {
		e := newTestEvaluator(t)
		chunk := chunkWith("流域降雨径流关系研究，水文监测数据显示水位上涨。")

		got, err := e.ProcessSingle(context.Background(), chunk)
		require.NoError(t, err)

		score, ok := got.Extra[domain.KeyQualityScore].(domain.QualityScore)
		require.True(t, ok)
		assert.GreaterOrEqual(t, score.Overall, 0.0)
		assert.Contains(t, score.Details, "number_count")
	})

	t.Run("low quality gets warning and suggestions", func(t *testing.T) {
		e := newTestEvaluator(t)
		chunk := chunkWith("完全无关的一句话。")

		got, err := e.ProcessSingle(context.Background(), chunk)
		require.NoError(t, err)

		assert.Equal(t, true, got.Extra[domain.KeyQualityWarning])
		assert.NotEmpty(t, got.Extra[domain.KeySuggestions])
	})

	t.Run("empty content passes through", func(t *testing.T) {
		e := newTestEvaluator(t)
		chunk := chunkWith("   ")

		got, err := e.ProcessSingle(context.Background(), chunk)
		require.NoError(t, err)
		assert.NotContains(t, got.Extra, domain.KeyQualityScore)
	})
}

func TestFilterByQuality(t *testing.T) {
	e := newTestEvaluator(t)

	scored := func(overall float64) *domain.Chunk {
		c := chunkWith("内容")
		c.Extra[domain.KeyQualityScore] = domain.QualityScore{Overall: overall}
		return c
	}

	high := scored(0.9)
	low := scored(0.3)
	mid := scored(0.6)
	unscored := chunkWith("未评分")

	filtered := e.FilterByQuality([]*domain.Chunk{high, low, mid, unscored}, 0.5)
	require.Len(t, filtered, 2)
	assert.Same(t, high, filtered[0])
	assert.Same(t, mid, filtered[1])
}

func TestReport(t *testing.T) {
	e := newTestEvaluator(t)

	t.Run("empty log", func(t *testing.T) {
		report := e.Report()
		assert.Equal(t, 0, report["total_evaluated"])
	})

	t.Run("after evaluations", func(t *testing.T) {
		for _, content := range []string{
			"流域降雨径流关系研究，水文监测数据显示水位上涨至12.5m。",
			"完全无关的一句话。",
		} {
			_, err := e.ProcessSingle(context.Background(), chunkWith(content))
			require.NoError(t, err)
		}

		report := e.Report()
		assert.Equal(t, 2, report["total_evaluated"])

		stats, ok := report["overall_stats"].(map[string]float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, stats["max"], stats["min"])
		assert.GreaterOrEqual(t, stats["mean"], stats["min"])

		distribution, ok := report["quality_distribution"].(map[string]int)
		require.True(t, ok)
		total := 0
		for _, n := range distribution {
			total += n
		}
		assert.Equal(t, 2, total)

		compliance, ok := report["threshold_compliance"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 0.7, compliance["threshold"].(float64), 1e-9)
	})
}

func TestReset(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.ProcessSingle(context.Background(), chunkWith("水文监测数据。"))
	require.NoError(t, err)

	e.Reset()
	assert.Equal(t, 0, e.Report()["total_evaluated"])
}

func TestEvaluateQAPairs(t *testing.T) {
	e := newTestEvaluator(t)

	t.Run("empty", func(t *testing.T) {
		result := e.EvaluateQAPairs(nil)
		assert.Equal(t, 0, result["total_pairs"])
	})

	t.Run("scores pairs", func(t *testing.T) {
		pairs := []domain.QAPair{
			{
				Question:   "什么是降雨径流关系？",
				Answer:     "降雨径流关系描述流域降雨量与产生的径流量之间的响应规律，是水文预报的基础。",
				Context:    "流域降雨径流关系研究",
				Confidence: 0.8,
			},
			{
				Question: "嗯？",
				Answer:   "不知道。",
			},
		}

		result := e.EvaluateQAPairs(pairs)
		assert.Equal(t, 2, result["total_pairs"])

		scores, ok := result["scores"].([]float64)
		require.True(t, ok)
		require.Len(t, scores, 2)
		assert.Greater(t, scores[0], scores[1])
		for _, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	})
}
