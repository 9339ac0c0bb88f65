package domain

import "sync"

// Relationship is a (subject, relation, object) triple.
type Relationship struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

// KnowledgeBase maps domain terms to aliases, entities to attributes,
// and holds an ordered list of relationship triples. Updates are
// additive; nothing is ever deleted. Safe for concurrent use.
type KnowledgeBase struct {
	mu            sync.RWMutex
	terms         map[string][]string
	entities      map[string]map[string]any
	relationships []Relationship
}

// NewKnowledgeBase creates an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		terms:    make(map[string][]string),
		entities: make(map[string]map[string]any),
	}
}

// AddTerm registers a term with its aliases. Re-adding a term
// overwrites its alias list.
func (kb *KnowledgeBase) AddTerm(term string, aliases ...string) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.terms[term] = aliases
}

// AddEntity registers an entity with its attributes. Re-adding an
// entity overwrites its attribute map.
func (kb *KnowledgeBase) AddEntity(id string, attrs map[string]any) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.entities[id] = attrs
}

// AddRelationship appends a triple.
func (kb *KnowledgeBase) AddRelationship(subject, relation, object string) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.relationships = append(kb.relationships, Relationship{
		Subject:  subject,
		Relation: relation,
		Object:   object,
	})
}

// Term returns the aliases of a term and whether it is known.
func (kb *KnowledgeBase) Term(term string) ([]string, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	aliases, ok := kb.terms[term]
	return aliases, ok
}

// Entity returns the attributes of an entity and whether it is known.
func (kb *KnowledgeBase) Entity(id string) (map[string]any, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	attrs, ok := kb.entities[id]
	return attrs, ok
}

// Terms returns a copy of all registered term names.
func (kb *KnowledgeBase) Terms() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	terms := make([]string, 0, len(kb.terms))
	for term := range kb.terms {
		terms = append(terms, term)
	}
	return terms
}

// Entities returns a copy of all registered entity ids.
func (kb *KnowledgeBase) Entities() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	ids := make([]string, 0, len(kb.entities))
	for id := range kb.entities {
		ids = append(ids, id)
	}
	return ids
}

// Relationships returns a copy of the triple list.
func (kb *KnowledgeBase) Relationships() []Relationship {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]Relationship, len(kb.relationships))
	copy(out, kb.relationships)
	return out
}

// TermCount returns the number of registered terms.
func (kb *KnowledgeBase) TermCount() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.terms)
}

// EntityCount returns the number of registered entities.
func (kb *KnowledgeBase) EntityCount() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.entities)
}
