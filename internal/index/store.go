package index

import (
	"context"

	"docqa/internal/models"
)

// Record is one vector row ready for storage.
type Record struct {
	ID        string
	Content   string
	File      string
	Page      int
	Embedding []float32
}

// VectorStore is the contract both backends (chromem, postgres/pgvector)
// implement. The collection is created lazily by Init, which is idempotent.
type VectorStore interface {
	// Init ensures the collection exists with the given vector width.
	Init(ctx context.Context, dim int) error

	// Upsert adds records without deduplication and returns the
	// post-insert total vector count.
	Upsert(ctx context.Context, recs []Record) (int, error)

	// Search returns the nearest documents in store order.
	Search(ctx context.Context, vector []float32, topK int) ([]models.Document, error)

	// DeleteByFile removes every vector whose metadata file matches.
	// False when the collection is absent or the operation failed;
	// never panics past its boundary.
	DeleteByFile(ctx context.Context, file string) bool
}

// Embedder is satisfied by langchaingo's embeddings.EmbedderImpl.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
