package evaluator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/textutil"
)

var (
	digitPattern    = regexp.MustCompile(`\d+`)
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	wordPattern     = regexp.MustCompile(`[\p{Han}a-zA-Z0-9_]+`)
	latinPattern    = regexp.MustCompile(`[a-zA-Z]`)
	termPattern     = regexp.MustCompile(`[\p{Han}]{2,}|[a-zA-Z]{2,}`)
	descPunctuation = regexp.MustCompile(`[，。！？；：“”‘’（）【】,.!?;:()]`)
)

// scoreCompleteness combines length, structural signals and word
// density. The chunk supplies previously extracted terms.
func (e *Evaluator) scoreCompleteness(content string, chunk *domain.Chunk) float64 {
	length := float64(len([]rune(content)))
	score := minFloat(1, length/200) * 0.3

	structural := 0.0
	if digitPattern.MatchString(content) {
		structural += 0.2
	}
	if extraLen(chunk.Extra[domain.KeyExtractedTerms]) >= 2 {
		structural += 0.3
	}
	if containsAny(content, explanatoryWords) {
		structural += 0.2
	}
	if containsAny(content, applicationWords) {
		structural += 0.3
	}
	score += structural * 0.4

	words := float64(len(wordPattern.FindAllString(content, -1)))
	score += minFloat(1, words/50) * 0.3

	return minFloat(1, score)
}

// scoreRelevance combines keyword coverage, the domain word ratio and
// sub-domain pattern hits. Adding hydrology keywords to a text never
// lowers its relevance.
func (e *Evaluator) scoreRelevance(content string) float64 {
	lower := strings.ToLower(content)
	matched := 0
	for _, keyword := range hydroKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched++
		}
	}
	score := float64(matched) / float64(len(hydroKeywords)) * 0.4

	words := textutil.Tokenize(content)
	if len(words) > 0 {
		hydroCount := 0
		for _, word := range words {
			if isHydroWord(word) {
				hydroCount++
			}
		}
		ratio := float64(hydroCount) / float64(len(words))
		score += minFloat(1, ratio*5) * 0.3
	}

	domainScore := 0.0
	for _, pattern := range domainPatterns {
		if pattern.MatchString(content) {
			domainScore += 0.25
		}
	}
	score += domainScore * 0.3

	return minFloat(1, score)
}

// scoreConsistency starts from a 0.8 base, rewards a coherent
// language mix and penalises terms used alongside their synonyms or
// abbreviations.
func (e *Evaluator) scoreConsistency(content string) float64 {
	score := 0.8

	hanChars := 0
	for _, r := range content {
		if unicode.Is(unicode.Han, r) {
			hanChars++
		}
	}
	latinChars := len(latinPattern.FindAllString(content, -1))
	if total := hanChars + latinChars; total > 0 {
		ratio := float64(hanChars) / float64(total)
		switch {
		case ratio > 0.2 && ratio < 0.8:
			score += 0.1
		case ratio > 0.9 || ratio < 0.1:
			score += 0.05
		}
	}

	frequency := make(map[string]int)
	for _, term := range termPattern.FindAllString(content, -1) {
		frequency[term]++
	}

	inconsistencies := 0
	for term, count := range frequency {
		if count >= 2 && len(termVariations(term, content)) > 1 {
			inconsistencies++
		}
	}
	score -= minFloat(0.3, float64(inconsistencies)*0.1)

	return clamp01(score)
}

// scoreDiversity combines vocabulary ratio, sentence length variance,
// topic spread and information type spread.
func (e *Evaluator) scoreDiversity(content string) float64 {
	score := 0.0

	words := textutil.Tokenize(strings.ToLower(content))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[word] = struct{}{}
		}
		score += float64(len(unique)) / float64(len(words)) * 0.3
	}

	sentences := textutil.Sentences(content)
	if len(sentences) > 1 {
		lengths := make([]float64, len(sentences))
		maxLength := 0.0
		for i, s := range sentences {
			lengths[i] = float64(len([]rune(s)))
			if lengths[i] > maxLength {
				maxLength = lengths[i]
			}
		}
		if maxLength > 0 {
			normalized := variance(lengths) / (maxLength * maxLength)
			score += minFloat(1, normalized*10) * 0.2
		}
	}

	topics := 0
	for _, keywords := range topicKeywords {
		if containsAny(content, keywords) {
			topics++
		}
	}
	score += float64(topics) / float64(len(topicKeywords)) * 0.3

	infoTypes := 0
	if numberPattern.MatchString(content) {
		infoTypes++
	}
	if descPunctuation.MatchString(content) {
		infoTypes++
	}
	if containsAny(content, causalWords) {
		infoTypes++
	}
	if containsAny(content, logicalWords) {
		infoTypes++
	}
	score += float64(infoTypes) / 4 * 0.2

	return minFloat(1, score)
}

// isHydroWord reports whether the word overlaps the hydrology
// vocabulary in either containment direction.
func isHydroWord(word string) bool {
	lower := strings.ToLower(word)
	for _, keyword := range hydroKeywords {
		kw := strings.ToLower(keyword)
		if strings.Contains(lower, kw) || strings.Contains(kw, lower) {
			return true
		}
	}
	return false
}

// termVariations returns the distinct surface forms of a term found
// in the content: the term itself, its first-plus-last-rune
// abbreviation, and any registered synonyms.
func termVariations(term, content string) []string {
	seen := map[string]struct{}{term: {}}

	runes := []rune(term)
	if len(runes) > 2 {
		abbreviation := string(runes[0]) + string(runes[len(runes)-1])
		if abbreviation != term && strings.Contains(content, abbreviation) {
			seen[abbreviation] = struct{}{}
		}
	}

	if synonyms, ok := synonymPairs[term]; ok {
		for _, synonym := range synonyms {
			if strings.Contains(content, synonym) {
				seen[synonym] = struct{}{}
			}
		}
	} else {
		for canonical, synonyms := range synonymPairs {
			for _, synonym := range synonyms {
				if term == synonym && strings.Contains(content, canonical) {
					seen[canonical] = struct{}{}
				}
			}
		}
	}

	variations := make([]string, 0, len(seen))
	for v := range seen {
		variations = append(variations, v)
	}
	return variations
}

func containsAny(content string, words []string) bool {
	for _, word := range words {
		if strings.Contains(content, word) {
			return true
		}
	}
	return false
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
