package domain

// QAPair is a generated question/answer pair. Pairs are created only
// by the enhancer and copied verbatim into the final dataset.
type QAPair struct {
	// Question is the generated question text.
	Question string `json:"question"`

	// Answer is the generated answer text.
	Answer string `json:"answer"`

	// Context is an optional snippet the pair was derived from.
	Context string `json:"context,omitempty"`

	// Difficulty is an optional label: easy, medium or hard.
	Difficulty string `json:"difficulty,omitempty"`

	// Domain is the hydrology sub-domain the pair belongs to.
	Domain string `json:"domain,omitempty"`

	// Confidence is the generator's confidence in [0,1], 0 if unset.
	Confidence float64 `json:"confidence,omitempty"`

	// Metadata holds generator-specific key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// QualityScore is a four-dimension quality assessment. It is immutable
// once attached to a chunk; rescoring produces a replacement.
type QualityScore struct {
	Overall      float64 `json:"overall_score"`
	Completeness float64 `json:"completeness_score"`
	Relevance    float64 `json:"relevance_score"`
	Consistency  float64 `json:"consistency_score"`
	Diversity    float64 `json:"diversity_score"`

	// Details holds the intermediate signals behind the sub-scores.
	Details map[string]any `json:"details,omitempty"`
}
