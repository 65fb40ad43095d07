package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docqa/internal/config"
	"docqa/internal/index"
	"docqa/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Content       string `bun:"content,notnull"`
	File          string `bun:"file,notnull"`
	Page          int    `bun:"page,notnull"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Store is the postgres/pgvector backend of the index.VectorStore contract.
type Store struct {
	db  *bun.DB
	dim int
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Init creates the documents table with a fixed-width vector column.
// Idempotent.
func (s *Store) Init(ctx context.Context, dim int) error {
	_, err := s.db.NewRaw(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			file TEXT NOT NULL,
			page INTEGER NOT NULL,
			embedding vector(%d) NOT NULL
		)`, dim)).Exec(ctx)
	if err != nil {
		return err
	}
	s.dim = dim
	return nil
}

func (s *Store) Upsert(ctx context.Context, recs []index.Record) (int, error) {
	for _, rec := range recs {
		if s.dim != 0 && len(rec.Embedding) != s.dim {
			return 0, fmt.Errorf("embedding width %d does not match column width %d", len(rec.Embedding), s.dim)
		}
		_, err := s.db.NewRaw(
			`INSERT INTO documents (content, file, page, embedding) VALUES (?, ?, ?, ?::vector)`,
			rec.Content, rec.File, rec.Page, vectorLiteral(rec.Embedding),
		).Exec(ctx)
		if err != nil {
			return 0, err
		}
	}
	return s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]models.Document, error) {
	var rows []Document
	err := s.db.NewRaw(
		`SELECT content, file, page FROM documents ORDER BY embedding <=> ?::vector LIMIT ?`,
		vectorLiteral(vector), topK,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.Document{
			Content:  row.Content,
			Metadata: models.Metadata{File: row.File, Page: row.Page},
		})
	}
	return docs, nil
}

func (s *Store) DeleteByFile(ctx context.Context, file string) bool {
	_, err := s.db.NewDelete().Model((*Document)(nil)).Where("file = ?", file).Exec(ctx)
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("Error deleting vectors")
		return false
	}
	return true
}

// vectorLiteral renders the pgvector input format, e.g. [0.1,0.2].
func vectorLiteral(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
