package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeBaseTerms(t *testing.T) {
	kb := NewKnowledgeBase()
	assert.Equal(t, 0, kb.TermCount())

	kb.AddTerm("降雨", "降水", "雨量")
	aliases, ok := kb.Term("降雨")
	require.True(t, ok)
	assert.Equal(t, []string{"降水", "雨量"}, aliases)

	_, ok = kb.Term("未知")
	assert.False(t, ok)

	// Re-adding overwrites the alias list.
	kb.AddTerm("降雨", "降水")
	aliases, _ = kb.Term("降雨")
	assert.Equal(t, []string{"降水"}, aliases)
	assert.Equal(t, 1, kb.TermCount())
}

func TestKnowledgeBaseEntities(t *testing.T) {
	kb := NewKnowledgeBase()
	kb.AddEntity("长江", map[string]any{"type": "河流", "length": "6300km"})

	attrs, ok := kb.Entity("长江")
	require.True(t, ok)
	assert.Equal(t, "河流", attrs["type"])
	assert.Equal(t, 1, kb.EntityCount())
	assert.Equal(t, []string{"长江"}, kb.Entities())
}

func TestKnowledgeBaseRelationships(t *testing.T) {
	kb := NewKnowledgeBase()
	kb.AddRelationship("三峡", "位于", "长江")
	kb.AddRelationship("降雨", "产生", "径流")

	rels := kb.Relationships()
	require.Len(t, rels, 2)
	assert.Equal(t, Relationship{Subject: "三峡", Relation: "位于", Object: "长江"}, rels[0])

	// The returned slice is a copy.
	rels[0].Subject = "mutated"
	assert.Equal(t, "三峡", kb.Relationships()[0].Subject)
}
