// Package cleaner normalises chunk text, strips noise and flags
// duplicate or low-quality content. Rejection is advisory: rejected
// chunks stay in the batch, marked skipped, and are never removed.
package cleaner

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/spf13/cast"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
	"github.com/BaoyingShan0/OpenHydrology/internal/textutil"
)

// Ensure Cleaner implements the interface.
var _ driven.Skill = (*Cleaner)(nil)

// DefaultSimilarityThreshold is the character-set Jaccard similarity
// above which a chunk counts as a near-duplicate.
const DefaultSimilarityThreshold = 0.85

// Config holds the cleaner settings, read once at construction.
type Config struct {
	// MinTextLength is the minimum cleaned length (in runes) for a
	// chunk to pass the quality gate. Required, must be positive.
	MinTextLength int

	// RemoveDuplicates enables the duplicate gate.
	RemoveDuplicates bool

	// NormalizeWhitespace enables whitespace collapsing.
	NormalizeWhitespace bool

	// RemoveSpecialChars strips characters outside the allow-list
	// (CJK, word characters, whitespace, common punctuation).
	RemoveSpecialChars bool

	// SimilarityThreshold overrides DefaultSimilarityThreshold when
	// positive.
	SimilarityThreshold float64
}

// DefaultConfig returns the cleaner defaults.
func DefaultConfig() Config {
	return Config{
		MinTextLength:       10,
		RemoveDuplicates:    true,
		NormalizeWhitespace: true,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// FromConfig builds a cleaner from a configuration section.
func FromConfig(section map[string]any) (*Cleaner, error) {
	cfg := DefaultConfig()
	if v, ok := section["min_text_length"]; ok {
		cfg.MinTextLength = cast.ToInt(v)
	} else {
		return nil, fmt.Errorf("%w: cleaner requires min_text_length", domain.ErrConfiguration)
	}
	if v, ok := section["remove_duplicates"]; ok {
		cfg.RemoveDuplicates = cast.ToBool(v)
	}
	if v, ok := section["normalize_whitespace"]; ok {
		cfg.NormalizeWhitespace = cast.ToBool(v)
	}
	if v, ok := section["remove_special_chars"]; ok {
		cfg.RemoveSpecialChars = cast.ToBool(v)
	}
	if v, ok := section["similarity_threshold"]; ok {
		cfg.SimilarityThreshold = cast.ToFloat64(v)
	}
	return New(cfg)
}

// Cleaner is the text-normalisation stage. The duplicate registry is
// cumulative instance state shared across batches; access to it is
// serialised so batches may run concurrently.
type Cleaner struct {
	cfg       Config
	segmenter *textutil.Segmenter

	mu        sync.Mutex
	protected map[string]struct{}

	regMu        sync.Mutex
	seenHashes   map[string]struct{}
	seenContents map[string]string
}

// New creates a cleaner. MinTextLength must be positive.
func New(cfg Config) (*Cleaner, error) {
	if cfg.MinTextLength <= 0 {
		return nil, fmt.Errorf("%w: cleaner min_text_length must be positive", domain.ErrConfiguration)
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}

	protected := make(map[string]struct{}, len(protectedTerms))
	for _, term := range protectedTerms {
		protected[term] = struct{}{}
	}

	return &Cleaner{
		cfg:          cfg,
		segmenter:    textutil.NewSegmenter(protectedTerms),
		protected:    protected,
		seenHashes:   make(map[string]struct{}),
		seenContents: make(map[string]string),
	}, nil
}

// Name returns the stage name.
func (c *Cleaner) Name() string {
	return "cleaner"
}

// Params returns the active configuration snapshot.
func (c *Cleaner) Params() map[string]any {
	return map[string]any{
		"min_text_length":      c.cfg.MinTextLength,
		"remove_duplicates":    c.cfg.RemoveDuplicates,
		"normalize_whitespace": c.cfg.NormalizeWhitespace,
		"remove_special_chars": c.cfg.RemoveSpecialChars,
		"similarity_threshold": c.cfg.SimilarityThreshold,
	}
}

// ProcessSingle cleans one chunk in place. Empty chunks and chunks
// failing the quality gate pass through unmodified; duplicates return
// a wrapped domain.ErrSkipped with their original content intact.
func (c *Cleaner) ProcessSingle(_ context.Context, chunk *domain.Chunk) (*domain.Chunk, error) {
	original := chunk.Content
	if strings.TrimSpace(original) == "" {
		logger.Warn("cleaner: chunk %s has empty content", chunk.ID)
		return chunk, nil
	}

	cleaned := c.basicClean(original)
	cleaned = c.languageClean(cleaned, chunk.Language)
	cleaned = c.advancedClean(cleaned)

	if !c.qualityCheck(cleaned) {
		logger.Warn("cleaner: chunk %s failed quality check", chunk.ID)
		return chunk, nil
	}

	if c.cfg.RemoveDuplicates && c.isDuplicate(cleaned, chunk.ID) {
		// Duplicates keep their original, uncleaned content: they are
		// flagged, not rewritten.
		chunk.Extra[domain.KeyDuplicate] = true
		return chunk, fmt.Errorf("%w: duplicate content", domain.ErrSkipped)
	}

	chunk.Content = cleaned
	chunk.Extra[domain.KeyCleaned] = true
	chunk.Extra[domain.KeyOriginalLength] = len([]rune(original))
	chunk.Extra[domain.KeyCleanedLength] = len([]rune(cleaned))
	chunk.Extra[domain.KeyCleaningRatio] = float64(len([]rune(cleaned))) / float64(len([]rune(original)))

	return chunk, nil
}

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	urlPattern         = regexp.MustCompile(`https?://[^\s]+`)
	emailPattern       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	punctRunPattern    = regexp.MustCompile(`[.!?]{3,}`)
	digitLetterPattern = regexp.MustCompile(`(\d)([a-zA-Z])`)
	spaceRunPattern    = regexp.MustCompile(`[ \t]+`)
	lineEdgePattern    = regexp.MustCompile(` *\n *`)
	blankLinePattern   = regexp.MustCompile(`\n{2,}`)
)

// fullWidthPunct maps full-width Chinese punctuation to ASCII.
// Applied before punctuation-run collapsing so basicClean stays
// idempotent for Chinese exclamation and question runs.
var fullWidthPunct = strings.NewReplacer(
	"，", ",", "。", ".", "！", "!", "？", "?",
	"；", ";", "：", ":", "（", "(", "）", ")",
	"【", "[", "】", "]", "《", "<", "》", ">",
	"“", `"`, "”", `"`, "‘", "'", "’", "'",
)

// basicClean applies the fixed normalisation rules. It is a fixed
// point: cleaning already-cleaned text yields the same text.
func (c *Cleaner) basicClean(text string) string {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")

	cleaned = htmlTagPattern.ReplaceAllString(cleaned, "")
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = emailPattern.ReplaceAllString(cleaned, "")

	if textutil.ContainsHan(cleaned) {
		cleaned = fullWidthPunct.Replace(cleaned)
	}

	cleaned = punctRunPattern.ReplaceAllString(cleaned, "...")
	cleaned = digitLetterPattern.ReplaceAllString(cleaned, "$1 $2")

	if c.cfg.NormalizeWhitespace {
		cleaned = spaceRunPattern.ReplaceAllString(cleaned, " ")
		cleaned = lineEdgePattern.ReplaceAllString(cleaned, "\n")
		cleaned = blankLinePattern.ReplaceAllString(cleaned, "\n")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// sentence-ending punctuation kept as single tokens during Chinese
// cleaning. Both forms appear because full-width mapping only runs
// when Han characters are present.
var sentenceEnders = map[string]struct{}{
	".": {}, "!": {}, "?": {}, ";": {}, ":": {},
	"。": {}, "！": {}, "？": {}, "；": {}, "：": {},
}

func (c *Cleaner) languageClean(text string, language domain.Language) string {
	switch {
	case language == domain.LanguageChinese:
		return c.chineseClean(text)
	case language == domain.LanguageEnglish:
		return c.englishClean(text)
	case textutil.ContainsHan(text):
		// Auto-detected mixed text: Chinese rules, then English rules.
		return c.englishClean(c.chineseClean(text))
	default:
		return c.englishClean(text)
	}
}

// chineseClean segments the text and drops single isolated
// punctuation tokens, keeping protected terms verbatim. A nil
// segmenter is a graceful no-op.
func (c *Cleaner) chineseClean(text string) string {
	tokens := c.segmenter.Segment(text)
	if tokens == nil {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, token := range tokens {
		if _, ok := c.protected[token.Text]; ok {
			b.WriteString(token.Text)
			continue
		}
		if len([]rune(token.Text)) > 1 {
			b.WriteString(token.Text)
			continue
		}
		if _, ok := sentenceEnders[token.Text]; ok {
			b.WriteString(token.Text)
			continue
		}
		if token.POS != "x" {
			b.WriteString(token.Text)
		}
	}
	return b.String()
}

// englishClean drops stop-words and pure-punctuation tokens.
func (c *Cleaner) englishClean(text string) string {
	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))

	for _, field := range fields {
		lower := strings.ToLower(strings.TrimFunc(field, unicode.IsPunct))
		if lower == "" {
			continue
		}
		if _, stop := englishStopWords[lower]; stop {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

var (
	allowListPattern    = regexp.MustCompile(`[^\p{Han}\w\s.,;:!?()\[\]{}"'-]`)
	spaceBeforePunct    = regexp.MustCompile(` +([.,;:!?])`)
	spaceAfterPunct     = regexp.MustCompile(`([.,;:!?]) +`)
	thousandsSeparator  = regexp.MustCompile(`(\d),(\d{3})`)
	spaceAfterOpenParen = regexp.MustCompile(`\( +`)
	spaceBeforeClose    = regexp.MustCompile(` +\)`)
)

// advancedClean optionally strips out-of-allow-list characters, then
// applies the fixed error-correction rules.
func (c *Cleaner) advancedClean(text string) string {
	if c.cfg.RemoveSpecialChars {
		text = allowListPattern.ReplaceAllString(text, "")
	}

	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = spaceAfterPunct.ReplaceAllString(text, "$1 ")
	text = thousandsSeparator.ReplaceAllString(text, "$1$2")
	text = spaceAfterOpenParen.ReplaceAllString(text, "(")
	text = spaceBeforeClose.ReplaceAllString(text, ")")

	return strings.TrimSpace(text)
}

// domainChars are the single characters whose presence marks text as
// plausibly hydrology-related.
var domainChars = []rune{'水', '文', '雨', '河', '湖', '库', '坝', '防', '洪', '涝'}

// qualityCheck gates degenerate and off-domain text. Long, lexically
// diverse text passes even without domain characters.
func (c *Cleaner) qualityCheck(text string) bool {
	trimmed := strings.TrimSpace(text)
	length := len([]rune(trimmed))

	if length < c.cfg.MinTextLength {
		return false
	}

	unique := textutil.UniqueRunes(text)
	if unique < 5 && length > 20 {
		return false
	}

	for _, dc := range domainChars {
		if strings.ContainsRune(text, dc) {
			return true
		}
	}
	return length > 100 && unique > 30
}

// isDuplicate checks the cleaned text against the registry of
// previously seen chunks and registers it when new.
func (c *Cleaner) isDuplicate(text, chunkID string) bool {
	sum := md5.Sum([]byte(text))
	hash := hex.EncodeToString(sum[:])

	c.regMu.Lock()
	defer c.regMu.Unlock()

	if _, seen := c.seenHashes[hash]; seen {
		return true
	}
	for _, existing := range c.seenContents {
		if jaccardSimilarity(text, existing) > c.cfg.SimilarityThreshold {
			return true
		}
	}

	c.seenHashes[hash] = struct{}{}
	c.seenContents[chunkID] = text
	return false
}

// jaccardSimilarity is the character-set Jaccard similarity of the
// lower-cased texts.
func jaccardSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := runeSet(strings.ToLower(a))
	setB := runeSet(strings.ToLower(b))

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// Statistics reports the cleaner's registry sizes.
func (c *Cleaner) Statistics() map[string]any {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{
		"duplicate_hashes_detected": len(c.seenHashes),
		"contents_stored":           len(c.seenContents),
		"protected_terms_count":     len(c.protected),
	}
}

// ResetDuplicateTracker clears the duplicate registry.
func (c *Cleaner) ResetDuplicateTracker() {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.seenHashes = make(map[string]struct{})
	c.seenContents = make(map[string]string)
	logger.Info("cleaner: duplicate tracker reset")
}

// AddProtectedTerms extends the set of terms kept verbatim during
// Chinese cleaning.
func (c *Cleaner) AddProtectedTerms(terms ...string) {
	c.mu.Lock()
	for _, term := range terms {
		c.protected[term] = struct{}{}
	}
	c.mu.Unlock()
	c.segmenter.AddTerms(terms...)
}
