package index

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/config"
	"docqa/internal/models"
)

func serviceConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestIndexDocumentPlainText(t *testing.T) {
	upserted := 0
	store := &mockStore{upsertFn: func(_ context.Context, recs []Record) (int, error) {
		upserted = len(recs)
		return len(recs), nil
	}}
	ix := NewIndexer(fixedEmbedder([]float32{1, 0, 0}), store, 3)
	svc := NewService(ix, serviceConfig())

	chunks, err := svc.IndexDocument(context.Background(), "notes.txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if chunks != 1 {
		t.Errorf("chunks = %d, want 1", chunks)
	}
	if upserted != 1 {
		t.Errorf("upserted %d records, want 1", upserted)
	}
}

func TestIndexDocumentExtractionFailure(t *testing.T) {
	store := &mockStore{upsertFn: func(_ context.Context, _ []Record) (int, error) {
		t.Fatal("Upsert must not run when extraction fails")
		return 0, nil
	}}
	ix := NewIndexer(fixedEmbedder([]float32{1}), store, 1)
	svc := NewService(ix, serviceConfig())

	_, err := svc.IndexDocument(context.Background(), "empty.txt", []byte("   \n  "))

	var exErr *models.ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("error = %v, want ExtractionError", err)
	}
}

func TestDeleteFileDelegatesToStore(t *testing.T) {
	var deleted string
	store := &mockStore{deleteFn: func(_ context.Context, file string) bool {
		deleted = file
		return true
	}}
	ix := NewIndexer(fixedEmbedder([]float32{1}), store, 1)
	svc := NewService(ix, serviceConfig())

	if !svc.DeleteFile(context.Background(), "a.pdf") {
		t.Error("DeleteFile = false, want true")
	}
	if deleted != "a.pdf" {
		t.Errorf("deleted %q", deleted)
	}
}
