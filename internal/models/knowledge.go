package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeEntry is one curated question/answer record of the portfolio
// knowledge base. Question is unique and serves as the natural key for
// change detection during sync.
type KnowledgeEntry struct {
	ID         uuid.UUID `db:"id"`
	Question   string    `db:"question"`
	AnswerKo   string    `db:"answer_ko"`
	AnswerJa   string    `db:"answer_ja"`
	Tags       []string  `db:"tags"`
	ImagePaths []string  `db:"image_paths"`
	Embedding  []float32 `db:"embedding"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SearchCandidate is a scored nearest-neighbor result. Similarity is
// cosine similarity on a 0..1 scale, derived from pgvector's cosine
// distance. Candidates are computed per query and never persisted.
type SearchCandidate struct {
	Entry      KnowledgeEntry
	Similarity float64
}
