package evaluator

import (
	"strings"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/textutil"
)

var interrogativeWords = []string{"什么", "如何", "为什么", "怎样", "请", "解释"}

// EvaluateQAPairs scores a set of question/answer pairs and returns
// the aggregate: pair count, mean quality, a quality distribution and
// the individual scores.
func (e *Evaluator) EvaluateQAPairs(pairs []domain.QAPair) map[string]any {
	if len(pairs) == 0 {
		return map[string]any{
			"total_pairs":     0,
			"average_quality": 0.0,
			"distribution":    map[string]int{},
		}
	}

	scores := make([]float64, len(pairs))
	sum := 0.0
	for i, pair := range pairs {
		scores[i] = evaluateQAQuality(pair)
		sum += scores[i]
	}

	return map[string]any{
		"total_pairs":     len(pairs),
		"average_quality": sum / float64(len(scores)),
		"distribution":    bucketScores(scores),
		"scores":          scores,
	}
}

// evaluateQAQuality scores one pair on question shape, answer shape,
// answer information content and question/context overlap, scaled by
// the generator's confidence.
func evaluateQAQuality(pair domain.QAPair) float64 {
	score := 0.0

	questionLength := len([]rune(pair.Question))
	switch {
	case questionLength >= 10 && questionLength <= 50:
		score += 0.2
	case questionLength < 10:
		score += 0.1
	default:
		score += 0.15
	}
	if containsAny(pair.Question, interrogativeWords) {
		score += 0.2
	}

	answerLength := len([]rune(pair.Answer))
	switch {
	case answerLength >= 20 && answerLength <= 200:
		score += 0.2
	case answerLength < 20:
		score += 0.1
	default:
		score += 0.15
	}
	if digitPattern.MatchString(pair.Answer) {
		score += 0.1
	}
	if isHydroWord(pair.Answer) {
		score += 0.1
	}

	if pair.Context != "" && pair.Question != "" {
		contextWords := wordSet(pair.Context)
		questionWords := wordSet(pair.Question)
		if len(questionWords) > 0 {
			overlap := 0
			for w := range questionWords {
				if _, ok := contextWords[w]; ok {
					overlap++
				}
			}
			score += minFloat(0.2, float64(overlap)/float64(len(questionWords)))
		}
	}

	if pair.Confidence > 0 {
		score *= pair.Confidence
	}

	return minFloat(1, score)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range textutil.Tokenize(strings.ToLower(text)) {
		set[word] = struct{}{}
	}
	return set
}
