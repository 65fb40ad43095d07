package index

import (
	"context"

	"docqa/internal/models"
)

// Retriever embeds a question and runs a fixed top-K nearest-neighbor
// search over the whole collection. Scores stay inside the store layer.
type Retriever struct {
	embedder Embedder
	store    VectorStore
	topK     int
}

func NewRetriever(embedder Embedder, store VectorStore, topK int) *Retriever {
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.Document, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.store.Search(ctx, vec, r.topK)
}
