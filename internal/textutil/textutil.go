// Package textutil provides language detection, tokenization and
// dictionary-based word segmentation shared by the pipeline stages.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{Han}]+|[a-zA-Z]+`)
	sentencePattern = regexp.MustCompile(`[。！？.!?]+`)
)

// ContainsHan reports whether the text contains at least one
// Chinese (Han) character.
func ContainsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// HanRatio returns the fraction of Han characters among the Han and
// Latin letters in the text, or 0 when there are none.
func HanRatio(text string) float64 {
	han, latin := 0, 0
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			latin++
		}
	}
	total := han + latin
	if total == 0 {
		return 0
	}
	return float64(han) / float64(total)
}

// Tokenize splits text into runs of Han characters and runs of Latin
// letters, discarding everything else.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Sentences splits text on Chinese and Western sentence terminators,
// dropping empty fragments.
func Sentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// UniqueRunes counts the distinct runes in the text.
func UniqueRunes(text string) int {
	seen := make(map[rune]struct{})
	for _, r := range text {
		seen[r] = struct{}{}
	}
	return len(seen)
}
