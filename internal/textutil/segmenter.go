package textutil

import "unicode"

// Token is one segmented word with a coarse part-of-speech tag.
type Token struct {
	// Text is the token surface form.
	Text string

	// POS is "term" for dictionary hits, "x" for punctuation and
	// symbols, "n" otherwise.
	POS string
}

// Segmenter splits Chinese text into words by forward maximum
// matching against a term dictionary, with single-character fallback.
// There is no statistical model behind it; unknown character runs
// come out one rune at a time, Latin/digit runs come out whole.
//
// A nil *Segmenter is valid and segments nothing: callers treat its
// absence as a pass-through, not a failure.
type Segmenter struct {
	dict       map[string]struct{}
	maxWordLen int
}

// NewSegmenter builds a segmenter over the given dictionary terms.
func NewSegmenter(terms []string) *Segmenter {
	s := &Segmenter{
		dict:       make(map[string]struct{}, len(terms)),
		maxWordLen: 1,
	}
	s.AddTerms(terms...)
	return s
}

// AddTerms extends the dictionary.
func (s *Segmenter) AddTerms(terms ...string) {
	for _, term := range terms {
		if term == "" {
			continue
		}
		s.dict[term] = struct{}{}
		if n := len([]rune(term)); n > s.maxWordLen {
			s.maxWordLen = n
		}
	}
}

// Segment splits text into tokens. Returns nil on a nil segmenter.
func (s *Segmenter) Segment(text string) []Token {
	if s == nil {
		return nil
	}

	runes := []rune(text)
	var tokens []Token

	for i := 0; i < len(runes); {
		r := runes[i]

		// Latin letters and digits come out as whole runs.
		if isLatinOrDigit(r) {
			j := i
			for j < len(runes) && isLatinOrDigit(runes[j]) {
				j++
			}
			tokens = append(tokens, Token{Text: string(runes[i:j]), POS: "n"})
			i = j
			continue
		}

		// Forward maximum matching against the dictionary.
		matched := false
		for length := min(s.maxWordLen, len(runes)-i); length >= 2; length-- {
			candidate := string(runes[i : i+length])
			if _, ok := s.dict[candidate]; ok {
				tokens = append(tokens, Token{Text: candidate, POS: "term"})
				i += length
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		pos := "n"
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			pos = "x"
		}
		tokens = append(tokens, Token{Text: string(r), POS: pos})
		i++
	}

	return tokens
}

func isLatinOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
