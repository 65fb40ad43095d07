package index

import (
	"context"

	"github.com/rs/zerolog/log"

	"docqa/internal/helper"
	"docqa/internal/models"
)

// Indexer embeds normalized documents and upserts them into the store.
type Indexer struct {
	embedder Embedder
	store    VectorStore
	dim      int
}

func NewIndexer(embedder Embedder, store VectorStore, dim int) *Indexer {
	return &Indexer{embedder: embedder, store: store, dim: dim}
}

// IndexDocuments embeds each document and upserts the batch. Returns the
// post-insert total vector count. Upserts do not deduplicate: re-ingesting
// a file without deleting it first leaves duplicate entries.
func (ix *Indexer) IndexDocuments(ctx context.Context, docs []models.Document) (int, error) {
	if err := ix.store.Init(ctx, ix.dim); err != nil {
		return 0, &models.IndexInitError{Reason: "vector store unavailable", Err: err}
	}

	recs := make([]Record, 0, len(docs))
	for _, doc := range docs {
		vec, err := ix.embedder.EmbedQuery(ctx, doc.Content)
		if err != nil {
			return 0, &models.IndexInitError{Reason: "embedding model unavailable", Err: err}
		}
		if len(vec) != ix.dim {
			return 0, &models.IndexInitError{
				Reason: "embedding width does not match collection width",
			}
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return 0, err
		}
		recs = append(recs, Record{
			ID:        id,
			Content:   doc.Content,
			File:      doc.Metadata.File,
			Page:      doc.Metadata.Page,
			Embedding: vec,
		})
	}

	count, err := ix.store.Upsert(ctx, recs)
	if err != nil {
		return 0, &models.IndexInitError{Reason: "vector store upsert failed", Err: err}
	}
	log.Info().Int("total", count).Int("added", len(recs)).Msg("Indexed documents")
	return count, nil
}
