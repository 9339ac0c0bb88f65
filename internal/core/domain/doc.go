// Package domain defines the core entities of the hydrology data
// preparation pipeline.
//
// This package is the innermost layer of the hexagonal architecture.
// It defines the fundamental types:
//
//   - Chunk: the atomic unit of text flowing through the pipeline,
//     with its processing history and extension bag
//   - QAPair: a generated question/answer pair
//   - QualityScore: a four-dimension quality assessment
//   - KnowledgeBase: term, entity and relationship tables
//   - Dataset: the assembled training-data output of a run
//
// # Import Rules
//
//   - Can Import: standard library and github.com/google/uuid only
//   - Cannot Import: any other internal/ package
package domain
