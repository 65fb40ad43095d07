package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"docqa/internal/helper"
	"docqa/internal/index"
	"docqa/internal/models"
)

const compress = false

// VectorDBManager encapsulates the chromem-go database operations and
// implements the index.VectorStore contract.
type VectorDBManager struct {
	db             *chromem.DB
	collection     *chromem.Collection
	collectionName string
	dbPath         string
	dim            int
}

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		if err := helper.CreateFolder(dbPath); err != nil {
			return nil, fmt.Errorf("failed to create database folder: %v", err)
		}
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	return &VectorDBManager{
		db:             db,
		collectionName: collectionName,
		dbPath:         dbPath,
	}, nil
}

// Init creates or reads the collection. Idempotent; safe to call per
// operation. The declared vector width is enforced on every upsert.
func (m *VectorDBManager) Init(ctx context.Context, dim int) error {
	c, err := m.db.GetOrCreateCollection(m.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	m.dim = dim
	return nil
}

// Upsert adds the records and returns the post-insert total count.
func (m *VectorDBManager) Upsert(ctx context.Context, recs []index.Record) (int, error) {
	if m.collection == nil {
		return 0, fmt.Errorf("collection not initialized")
	}

	docs := make([]chromem.Document, 0, len(recs))
	for _, rec := range recs {
		if m.dim != 0 && len(rec.Embedding) != m.dim {
			return 0, fmt.Errorf("embedding width %d does not match collection width %d", len(rec.Embedding), m.dim)
		}
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Content:   rec.Content,
			Embedding: rec.Embedding,
			Metadata: map[string]string{
				"file": rec.File,
				"page": strconv.Itoa(rec.Page),
			},
		})
	}

	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("failed to add documents: %v", err)
	}
	return m.collection.Count(), nil
}

// Search runs a nearest-neighbor query and returns documents in result
// order. topK is clamped to the collection size. The collection is resolved
// lazily so queries reach persisted vectors without a prior ingest in this
// process.
func (m *VectorDBManager) Search(ctx context.Context, vector []float32, topK int) ([]models.Document, error) {
	c := m.collection
	if c == nil {
		var err error
		c, err = m.db.GetOrCreateCollection(m.collectionName, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create/get collection: %v", err)
		}
		m.collection = c
	}

	if n := c.Count(); topK > n {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := c.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	docs := make([]models.Document, 0, len(results))
	for _, res := range results {
		page, _ := strconv.Atoi(res.Metadata["page"])
		docs = append(docs, models.Document{
			Content: res.Content,
			Metadata: models.Metadata{
				File: res.Metadata["file"],
				Page: page,
			},
		})
	}
	return docs, nil
}

// DeleteByFile removes every vector whose metadata file matches. Returns
// false when the collection does not exist or the delete fails.
func (m *VectorDBManager) DeleteByFile(ctx context.Context, file string) bool {
	c := m.db.GetCollection(m.collectionName, nil)
	if c == nil {
		log.Info().Str("collection", m.collectionName).Msg("Collection does not exist")
		return false
	}

	if err := c.Delete(ctx, map[string]string{"file": file}, nil); err != nil {
		log.Error().Err(err).Str("file", file).Msg("Error deleting vectors")
		return false
	}
	return true
}
