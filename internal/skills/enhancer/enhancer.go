// Package enhancer enriches chunks with extracted domain terms,
// generated question/answer pairs, inline term explanations and
// sub-domain tags. Enhancement is additive: the chunk's text is only
// changed by knowledge enrichment, which records the original.
package enhancer

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cast"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
	"github.com/BaoyingShan0/OpenHydrology/internal/textutil"
)

var _ driven.Skill = (*Enhancer)(nil)

// Term is one extracted domain term with its classification.
type Term struct {
	Term       string         `json:"term"`
	Type       string         `json:"type"`
	Confidence float64        `json:"confidence"`
	POS        string         `json:"pos,omitempty"`
	Aliases    []string       `json:"aliases,omitempty"`
	EntityInfo map[string]any `json:"entity_info,omitempty"`
}

// Config holds the enhancer settings.
type Config struct {
	EnableQAGeneration        bool
	EnableTermExtraction      bool
	EnableKnowledgeEnrichment bool

	// MaxQAPairs caps the pairs kept per chunk.
	MaxQAPairs int
}

// DefaultConfig returns the enhancer defaults.
func DefaultConfig() Config {
	return Config{
		EnableQAGeneration:        true,
		EnableTermExtraction:      true,
		EnableKnowledgeEnrichment: true,
		MaxQAPairs:                5,
	}
}

// FromConfig builds an enhancer from a configuration section.
func FromConfig(section map[string]any) (*Enhancer, error) {
	cfg := DefaultConfig()
	if v, ok := section["enable_qa_generation"]; ok {
		cfg.EnableQAGeneration = cast.ToBool(v)
	}
	if v, ok := section["enable_term_extraction"]; ok {
		cfg.EnableTermExtraction = cast.ToBool(v)
	}
	if v, ok := section["enable_knowledge_enrichment"]; ok {
		cfg.EnableKnowledgeEnrichment = cast.ToBool(v)
	}
	if v, ok := section["max_qa_pairs"]; ok {
		cfg.MaxQAPairs = cast.ToInt(v)
	}
	return New(cfg), nil
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithRand sets the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(e *Enhancer) { e.rng = rng }
}

// WithKnowledgeBase replaces the built-in knowledge base.
func WithKnowledgeBase(kb *domain.KnowledgeBase) Option {
	return func(e *Enhancer) { e.kb = kb }
}

// Enhancer is the enrichment stage.
type Enhancer struct {
	cfg        Config
	kb         *domain.KnowledgeBase
	rng        *rand.Rand
	segmenter  *textutil.Segmenter
	generators []QAGenerator

	generatedQA    atomic.Int64
	extractedTerms atomic.Int64
}

// New creates an enhancer with the built-in knowledge base.
func New(cfg Config, opts ...Option) *Enhancer {
	if cfg.MaxQAPairs <= 0 {
		cfg.MaxQAPairs = 5
	}

	e := &Enhancer{
		cfg: cfg,
		kb:  DefaultKnowledgeBase(),
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.segmenter = textutil.NewSegmenter(e.vocabulary())
	e.generators = []QAGenerator{
		&templateGenerator{rng: e.rng},
		modelGenerator{},
		contentGenerator{},
	}

	logger.Info("enhancer: initialised with %d terms, %d entities", e.kb.TermCount(), e.kb.EntityCount())
	return e
}

// vocabulary collects every term, alias and entity id for the
// segmentation dictionary.
func (e *Enhancer) vocabulary() []string {
	var vocab []string
	for _, term := range e.kb.Terms() {
		vocab = append(vocab, term)
		if aliases, ok := e.kb.Term(term); ok {
			vocab = append(vocab, aliases...)
		}
	}
	vocab = append(vocab, e.kb.Entities()...)
	return vocab
}

// Name returns the stage name.
func (e *Enhancer) Name() string {
	return "enhancer"
}

// Params returns the active configuration snapshot.
func (e *Enhancer) Params() map[string]any {
	return map[string]any{
		"enable_qa_generation":        e.cfg.EnableQAGeneration,
		"enable_term_extraction":      e.cfg.EnableTermExtraction,
		"enable_knowledge_enrichment": e.cfg.EnableKnowledgeEnrichment,
		"max_qa_pairs":                e.cfg.MaxQAPairs,
	}
}

// ProcessSingle enriches one chunk in place.
func (e *Enhancer) ProcessSingle(_ context.Context, chunk *domain.Chunk) (*domain.Chunk, error) {
	if strings.TrimSpace(chunk.Content) == "" {
		logger.Warn("enhancer: chunk %s has empty content", chunk.ID)
		return chunk, nil
	}

	var terms []Term
	if e.cfg.EnableTermExtraction {
		terms = e.ExtractTerms(chunk.Content, chunk.Language)
		if len(terms) > 0 {
			chunk.Extra[domain.KeyExtractedTerms] = terms
			e.extractedTerms.Add(int64(len(terms)))
			logger.Debug("enhancer: chunk %s yielded %d terms", chunk.ID, len(terms))
		}
	}

	if e.cfg.EnableQAGeneration {
		pairs := e.generateQAPairs(chunk, terms)
		if len(pairs) > 0 {
			chunk.Extra[domain.KeyGeneratedQA] = pairs
			e.generatedQA.Add(int64(len(pairs)))
			logger.Debug("enhancer: chunk %s yielded %d qa pairs", chunk.ID, len(pairs))
		}
	}

	if e.cfg.EnableKnowledgeEnrichment {
		enriched := e.enrichContent(chunk.Content, terms)
		if enriched != chunk.Content {
			chunk.Extra[domain.KeyOriginalContent] = chunk.Content
			chunk.Extra[domain.KeyEnriched] = true
			chunk.Content = enriched
		}
	}

	if tags := AssignDomainTags(chunk.Content); len(tags) > 0 {
		chunk.Extra[domain.KeyDomainTags] = tags
	}
	chunk.Extra[domain.KeyEnhanced] = true

	return chunk, nil
}

// ExtractTerms extracts the domain terms of the text, deduplicated
// keep-first with single-character terms dropped.
func (e *Enhancer) ExtractTerms(text string, language domain.Language) []Term {
	var terms []Term

	switch {
	case language == domain.LanguageChinese,
		language == domain.LanguageAuto && textutil.ContainsHan(text):
		terms = e.extractChineseTerms(text)
		if language == domain.LanguageAuto {
			terms = append(terms, extractEnglishTerms(text)...)
		}
	case language == domain.LanguageEnglish:
		terms = extractEnglishTerms(text)
	default:
		terms = extractEnglishTerms(text)
	}

	seen := make(map[string]struct{}, len(terms))
	unique := terms[:0]
	for _, t := range terms {
		if len([]rune(t.Term)) <= 1 {
			continue
		}
		if _, dup := seen[t.Term]; dup {
			continue
		}
		seen[t.Term] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

func (e *Enhancer) extractChineseTerms(text string) []Term {
	var terms []Term

	for _, token := range e.segmenter.Segment(text) {
		word := token.Text
		if aliases, ok := e.kb.Term(word); ok {
			terms = append(terms, Term{
				Term:       word,
				Type:       "专业术语",
				Confidence: 0.9,
				POS:        token.POS,
				Aliases:    aliases,
			})
			continue
		}
		if attrs, ok := e.kb.Entity(word); ok {
			terms = append(terms, Term{
				Term:       word,
				Type:       "实体",
				Confidence: 0.95,
				EntityInfo: attrs,
			})
			continue
		}
		if n := len([]rune(word)); n >= 2 && n <= 4 && isHydroWord(word) {
			terms = append(terms, Term{
				Term:       word,
				Type:       "疑似专业术语",
				Confidence: 0.7,
				POS:        token.POS,
			})
		}
	}
	return terms
}

var englishWordPattern = regexp.MustCompile(`\b[a-zA-Z]+\b`)

func extractEnglishTerms(text string) []Term {
	var terms []Term
	for _, word := range englishWordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := englishHydroTerms[word]; ok {
			terms = append(terms, Term{
				Term:       word,
				Type:       "English专业术语",
				Confidence: 0.8,
			})
		}
	}
	return terms
}

// isHydroWord reports whether the word contains any hydrology
// indicator character.
func isHydroWord(word string) bool {
	for _, indicator := range hydroIndicators {
		if strings.ContainsRune(word, indicator) {
			return true
		}
	}
	return false
}

// generateQAPairs runs the generators in order and truncates to the
// configured cap.
func (e *Enhancer) generateQAPairs(chunk *domain.Chunk, terms []Term) []domain.QAPair {
	var pairs []domain.QAPair
	for _, gen := range e.generators {
		pairs = append(pairs, gen.Generate(chunk, terms)...)
	}
	if len(pairs) > e.cfg.MaxQAPairs {
		pairs = pairs[:e.cfg.MaxQAPairs]
	}
	return pairs
}

// enrichContent inlines short explanations after known terms. Already
// annotated occurrences are left alone.
func (e *Enhancer) enrichContent(content string, terms []Term) string {
	for _, info := range terms {
		if info.Type != "专业术语" {
			continue
		}
		explanation, ok := termExplanations[info.Term]
		if !ok || !strings.Contains(content, info.Term) {
			continue
		}
		annotated := info.Term + "（" + explanation + "）"
		if strings.Contains(content, annotated) {
			continue
		}
		content = strings.ReplaceAll(content, info.Term, annotated)
	}
	return content
}

// AssignDomainTags returns the sub-domain tags whose keywords appear
// in the content.
func AssignDomainTags(content string) []string {
	var tags []string
	// Fixed iteration order keeps the tag list stable.
	for _, tag := range []string{"水资源", "水文学", "水工程", "水环境", "防洪", "灌溉"} {
		for _, keyword := range domainKeywords[tag] {
			if strings.Contains(content, keyword) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

// GetKnowledgeBase returns the live knowledge base.
func (e *Enhancer) GetKnowledgeBase() *domain.KnowledgeBase {
	return e.kb
}

// UpdateKnowledgeBase adds terms and entities, extending the
// segmentation dictionary to match.
func (e *Enhancer) UpdateKnowledgeBase(terms []string, entities map[string]map[string]any) {
	for _, term := range terms {
		e.kb.AddTerm(term)
	}
	for id, attrs := range entities {
		e.kb.AddEntity(id, attrs)
	}
	e.segmenter.AddTerms(terms...)
	for id := range entities {
		e.segmenter.AddTerms(id)
	}
	logger.Info("enhancer: knowledge base extended by %d terms, %d entities", len(terms), len(entities))
}

// Statistics reports cumulative enhancement counters.
func (e *Enhancer) Statistics() map[string]any {
	return map[string]any{
		"generated_qa_count":      e.generatedQA.Load(),
		"extracted_terms_count":   e.extractedTerms.Load(),
		"knowledge_base_terms":    e.kb.TermCount(),
		"knowledge_base_entities": e.kb.EntityCount(),
	}
}
