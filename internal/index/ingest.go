package index

import (
	"context"

	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/parser"
)

// Service runs the ingestion path for one file: extract, normalize, index.
// Batch isolation (one file's failure not blocking others) lives at the
// caller.
type Service struct {
	indexer *Indexer
	cfg     *config.Config
}

func NewService(indexer *Indexer, cfg *config.Config) *Service {
	return &Service{indexer: indexer, cfg: cfg}
}

// IndexDocument ingests one document and returns its chunk count.
func (s *Service) IndexDocument(ctx context.Context, fileName string, data []byte) (int, error) {
	chunks, err := parser.Extract(fileName, data, s.cfg)
	if err != nil {
		return 0, err
	}

	docs := parser.BuildDocuments(chunks)
	total, err := s.indexer.IndexDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	log.Info().Str("file", fileName).Int("chunks", len(chunks)).Int("total_vectors", total).Msg("Ingested file")
	return len(chunks), nil
}

// DeleteFile removes every indexed vector for the file.
func (s *Service) DeleteFile(ctx context.Context, fileName string) bool {
	return s.indexer.store.DeleteByFile(ctx, fileName)
}
