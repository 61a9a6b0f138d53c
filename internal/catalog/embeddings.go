package catalog

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryEmbedding stores one leaf category's representative embedding,
// used only as a fallback when the LLM-driven "deepen" step fails.
type CategoryEmbedding struct {
	CategorySlug string          `gorm:"primaryKey"`
	Embedding    pgvector.Vector `gorm:"type:vector(1536)"`
}

func (CategoryEmbedding) TableName() string { return "category_embeddings" }

// embeddingStore wraps the pgvector-backed nearest-neighbor lookup used
// by the Query Planner's deepen fallback.
type embeddingStore struct {
	db *gorm.DB
}

func newEmbeddingStore(db *gorm.DB) *embeddingStore {
	return &embeddingStore{db: db}
}

// nearestLeaf finds the category_embeddings row with the smallest cosine
// distance to the query embedding, using pgvector's `<=>` similarity
// ordering operator.
func (s *embeddingStore) nearestLeaf(ctx context.Context, embedding []float32) (string, bool) {
	if s.db == nil || len(embedding) == 0 {
		return "", false
	}

	var row CategoryEmbedding
	err := s.db.WithContext(ctx).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(embedding)},
		}}).
		Limit(1).
		First(&row).Error
	if err != nil {
		return "", false
	}
	return row.CategorySlug, true
}
