package enhancer

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
)

// QAGenerator produces question/answer pairs for a chunk. Generators
// run in order; the enhancer concatenates and truncates their output.
type QAGenerator interface {
	Name() string
	Generate(chunk *domain.Chunk, terms []Term) []domain.QAPair
}

// qaCategories lists the template categories in a fixed order so
// random selection is reproducible under a seeded source.
var qaCategories = []string{"定义型", "原理型", "应用型", "计算型", "比较型"}

var qaTemplates = map[string][]string{
	"定义型": {
		"什么是%s？",
		"%s的定义是什么？",
		"请解释一下%s的含义。",
	},
	"原理型": {
		"%s的原理是什么？",
		"%s是如何工作的？",
		"请说明%s的工作机制。",
	},
	"应用型": {
		"%s在实际中有什么应用？",
		"%s的主要用途是什么？",
		"如何应用%s解决实际问题？",
	},
	"计算型": {
		"如何计算%s？",
		"%s的计算公式是什么？",
		"请说明%s的计算方法。",
	},
	"比较型": {
		"%s和%s有什么区别？",
		"%s与%s相比有什么优势？",
		"请比较%s和%s的特点。",
	},
}

var defaultAnswers = map[string]string{
	"定义型": "%s是水利领域的重要概念，具体定义需要结合专业文献确定。",
	"原理型": "%s的工作原理涉及多个水利专业知识点，需要详细分析。",
	"应用型": "%s在水利工程中有重要应用，具体应用场景需要根据实际情况确定。",
	"计算型": "%s的计算方法需要参考相关的水利计算规范和手册。",
	"比较型": "%s与其他概念的比较需要从多个维度进行分析。",
}

// templateGenerator fills category templates with extracted terms and
// answers them from the surrounding text.
type templateGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (g *templateGenerator) Name() string { return "template" }

func (g *templateGenerator) Generate(chunk *domain.Chunk, terms []Term) []domain.QAPair {
	var pairs []domain.QAPair

	limit := len(terms)
	if limit > 3 {
		limit = 3
	}

	for _, info := range terms[:limit] {
		category, template := g.pick()

		// Comparison questions need a second term.
		if category == "比较型" && len(terms) < 2 {
			category = "定义型"
			template = qaTemplates[category][0]
		}

		var question string
		if category == "比较型" {
			other := g.pickOther(terms, info.Term)
			question = fmt.Sprintf(template, info.Term, other)
		} else {
			question = fmt.Sprintf(template, info.Term)
		}

		answer := answerForTerm(info.Term, chunk.Content, category)
		if answer == "" {
			continue
		}

		pairs = append(pairs, domain.QAPair{
			Question:   question,
			Answer:     answer,
			Context:    contextSnippet(chunk.Content),
			Domain:     determineDomain(info.Term),
			Confidence: 0.8,
		})
	}

	return pairs
}

func (g *templateGenerator) pick() (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	category := qaCategories[g.rng.Intn(len(qaCategories))]
	templates := qaTemplates[category]
	return category, templates[g.rng.Intn(len(templates))]
}

func (g *templateGenerator) pickOther(terms []Term, exclude string) string {
	candidates := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Term != exclude {
			candidates = append(candidates, t.Term)
		}
	}
	if len(candidates) == 0 {
		return exclude
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return candidates[g.rng.Intn(len(candidates))]
}

// answerForTerm extracts the longest window around an occurrence of
// the term, falling back to a category default when the term is
// absent or every window is too short.
func answerForTerm(term, content, category string) string {
	runes := []rune(content)
	termRunes := []rune(term)

	var best []rune
	for _, pos := range runeIndexAll(runes, termRunes) {
		start := pos - 100
		if start < 0 {
			start = 0
		}
		end := pos + len(termRunes) + 100
		if end > len(runes) {
			end = len(runes)
		}
		window := runes[start:end]
		if len(window) > 20 && len(window) > len(best) {
			best = window
		}
	}

	if best != nil {
		return string(best)
	}
	if format, ok := defaultAnswers[category]; ok {
		return fmt.Sprintf(format, term)
	}
	return fmt.Sprintf("关于%s的详细信息需要进一步分析。", term)
}

// runeIndexAll returns the starting rune indices of every occurrence
// of needle in haystack, overlapping occurrences included.
func runeIndexAll(haystack, needle []rune) []int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return nil
	}
	var positions []int
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			positions = append(positions, i)
		}
	}
	return positions
}

// contextSnippet truncates content to the first 200 runes.
func contextSnippet(content string) string {
	runes := []rune(content)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return content
}

// modelGenerator is the slot for a learned question generator. No
// local inference backend is wired, so it produces nothing.
type modelGenerator struct{}

func (modelGenerator) Name() string { return "model" }

func (modelGenerator) Generate(*domain.Chunk, []Term) []domain.QAPair { return nil }

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:km|mm|m|℃|%|万|亿|吨|立方米)`)

// contentGenerator turns measured values in the text into
// data-interpretation questions.
type contentGenerator struct{}

func (contentGenerator) Name() string { return "content" }

func (contentGenerator) Generate(chunk *domain.Chunk, _ []Term) []domain.QAPair {
	runes := []rune(chunk.Content)

	matches := numberPattern.FindAllString(chunk.Content, -1)
	if len(matches) > 2 {
		matches = matches[:2]
	}

	var pairs []domain.QAPair
	for _, num := range matches {
		positions := runeIndexAll(runes, []rune(num))
		if len(positions) == 0 {
			continue
		}
		pos := positions[0]

		start := pos - 50
		if start < 0 {
			start = 0
		}
		end := pos + len([]rune(num)) + 50
		if end > len(runes) {
			end = len(runes)
		}
		sentence := string(runes[start:end])

		pairs = append(pairs, domain.QAPair{
			Question:   fmt.Sprintf("文中提到的%s这个数据代表什么含义？", num),
			Answer:     fmt.Sprintf("根据原文内容，%s", sentence),
			Context:    sentence,
			Domain:     "数据",
			Confidence: 0.7,
		})
	}

	return pairs
}
