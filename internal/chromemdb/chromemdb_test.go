package chromemdb

import (
	"context"
	"testing"

	"docqa/internal/index"
)

func newTestManager(t *testing.T) *VectorDBManager {
	t.Helper()
	m, err := NewVectorDBManager("", "docs", true)
	if err != nil {
		t.Fatalf("NewVectorDBManager: %v", err)
	}
	return m
}

func seedRecords() []index.Record {
	return []index.Record{
		{ID: "a-1", Content: "alpha one", File: "a.pdf", Page: 1, Embedding: []float32{1, 0, 0}},
		{ID: "a-2", Content: "alpha two", File: "a.pdf", Page: 2, Embedding: []float32{0, 1, 0}},
		{ID: "b-1", Content: "beta one", File: "b.pdf", Page: 1, Embedding: []float32{0, 0, 1}},
	}
}

func TestUpsertReturnsTotalCount(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}

	count, err := m.Upsert(ctx, seedRecords())
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// upserts do not deduplicate
	count, err = m.Upsert(ctx, []index.Record{
		{ID: "a-1-dup", Content: "alpha one", File: "a.pdf", Page: 1, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4 after duplicate ingest", count)
	}
}

func TestUpsertRejectsWidthMismatch(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err := m.Upsert(ctx, []index.Record{
		{ID: "x", Content: "x", File: "x.pdf", Page: 1, Embedding: []float32{1, 0}},
	})
	if err == nil {
		t.Fatal("expected a width mismatch error")
	}
}

func TestSearchReturnsNearestWithMetadata(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := m.Upsert(ctx, seedRecords()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// topK above the collection size is clamped, not an error
	docs, err := m.Search(ctx, []float32{1, 0, 0}, 6)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	if docs[0].Content != "alpha one" {
		t.Errorf("nearest = %q, want %q", docs[0].Content, "alpha one")
	}
	if docs[0].Metadata.File != "a.pdf" || docs[0].Metadata.Page != 1 {
		t.Errorf("metadata = %+v", docs[0].Metadata)
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}

	docs, err := m.Search(ctx, []float32{1, 0, 0}, 6)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents from an empty collection", len(docs))
	}
}

func TestSearchWithoutPriorInit(t *testing.T) {
	m := newTestManager(t)

	// query path must not depend on the ingestion path having run first
	docs, err := m.Search(context.Background(), []float32{1, 0, 0}, 6)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents from a fresh store", len(docs))
	}
}

func TestSearchSeesPersistedVectorsAfterReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewVectorDBManager(dir, "docs", false)
	if err != nil {
		t.Fatalf("NewVectorDBManager: %v", err)
	}
	if err := a.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := a.Upsert(ctx, seedRecords()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// reopen the same path and query without any ingest on this manager
	b, err := NewVectorDBManager(dir, "docs", false)
	if err != nil {
		t.Fatalf("NewVectorDBManager: %v", err)
	}
	docs, err := b.Search(ctx, []float32{1, 0, 0}, 6)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents after reopen, want 3", len(docs))
	}
	if docs[0].Content != "alpha one" {
		t.Errorf("nearest = %q, want %q", docs[0].Content, "alpha one")
	}
}

func TestDeleteByFileRemovesOnlyThatFile(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := m.Upsert(ctx, seedRecords()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if !m.DeleteByFile(ctx, "a.pdf") {
		t.Fatal("DeleteByFile returned false")
	}

	docs, err := m.Search(ctx, []float32{0, 0, 1}, 6)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents after delete, want 1", len(docs))
	}
	if docs[0].Metadata.File != "b.pdf" {
		t.Errorf("surviving document is %q, want b.pdf", docs[0].Metadata.File)
	}
}

func TestDeleteByFileIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// no vectors for the file: trivially succeeds
	if !m.DeleteByFile(ctx, "never-ingested.pdf") {
		t.Error("DeleteByFile on an unknown file should be a successful no-op")
	}
}

func TestDeleteByFileMissingCollection(t *testing.T) {
	m := newTestManager(t)
	// Init never called, so the collection does not exist
	if m.DeleteByFile(context.Background(), "a.pdf") {
		t.Error("DeleteByFile on a missing collection should return false")
	}
}
