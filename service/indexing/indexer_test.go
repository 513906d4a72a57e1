package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"servicedesk-backend/apperr"
	"servicedesk-backend/model"
	"servicedesk-backend/service/vectorindex"
)

type fakeIndexStore struct {
	articles map[uint]*model.KnowledgeArticle
	records  map[uint]*model.KnowledgeArticleIndex
}

func newFakeIndexStore() *fakeIndexStore {
	return &fakeIndexStore{
		articles: make(map[uint]*model.KnowledgeArticle),
		records:  make(map[uint]*model.KnowledgeArticleIndex),
	}
}

func (s *fakeIndexStore) GetArticle(id uint) (*model.KnowledgeArticle, error) {
	article, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (s *fakeIndexStore) GetArticleIndex(articleID uint) (*model.KnowledgeArticleIndex, error) {
	record, ok := s.records[articleID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *fakeIndexStore) SaveArticleIndex(index *model.KnowledgeArticleIndex) error {
	copied := *index
	s.records[index.ArticleID] = &copied
	return nil
}

func (s *fakeIndexStore) ListArticlesByStatus(status model.ArticleStatus) ([]model.KnowledgeArticle, error) {
	var result []model.KnowledgeArticle
	for _, article := range s.articles {
		if article.Status == status {
			result = append(result, *article)
		}
	}
	return result, nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) ModelName() string { return "test-embedding" }

type fakeVectorIndex struct {
	ensureErr error
	upsertErr error
	upserts   []vectorindex.Payload
}

func (v *fakeVectorIndex) EnsureCollection(ctx context.Context, dim int) error {
	return v.ensureErr
}

func (v *fakeVectorIndex) Upsert(ctx context.Context, vector []float32, payload vectorindex.Payload) error {
	if v.upsertErr != nil {
		return v.upsertErr
	}
	v.upserts = append(v.upserts, payload)
	return nil
}

func (v *fakeVectorIndex) CollectionName() string { return "test_collection" }

func normalizedArticle(id uint) *model.KnowledgeArticle {
	return &model.KnowledgeArticle{
		ID:                id,
		Title:             "打印机脱机处理",
		Status:            model.StatusNormalized,
		NormalizedContent: "重启打印后台处理程序服务",
	}
}

func TestIndexArticle(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = normalizedArticle(1)
	embedder := &fakeEmbedder{}
	vectors := &fakeVectorIndex{}
	idx := newIndexer(store, embedder, vectors)

	if err := idx.IndexArticle(context.Background(), 1); err != nil {
		t.Fatalf("IndexArticle() error = %v", err)
	}

	record := store.records[1]
	if record == nil {
		t.Fatal("index record not saved")
	}
	if record.ContentHash != ContentHash("重启打印后台处理程序服务") {
		t.Errorf("content hash = %s, want hash of normalized content", record.ContentHash)
	}
	if record.EmbeddingModel != "test-embedding" || record.CollectionName != "test_collection" {
		t.Errorf("record = %+v, want embedder and collection recorded", record)
	}
	if record.IndexedAt == nil || record.LastError != nil {
		t.Errorf("record = %+v, want indexed_at set and last_error cleared", record)
	}
	if len(vectors.upserts) != 1 || vectors.upserts[0].ArticleID != 1 {
		t.Errorf("upserts = %+v, want one upsert for article 1", vectors.upserts)
	}
}

// 内容、模型、集合都没变时重复触发不应再调用向量化
func TestIndexArticleIdempotent(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = normalizedArticle(1)
	embedder := &fakeEmbedder{}
	vectors := &fakeVectorIndex{}
	idx := newIndexer(store, embedder, vectors)

	ctx := context.Background()
	if err := idx.IndexArticle(ctx, 1); err != nil {
		t.Fatalf("IndexArticle() error = %v", err)
	}
	if err := idx.IndexArticle(ctx, 1); err != nil {
		t.Fatalf("IndexArticle() second call error = %v", err)
	}

	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1", embedder.calls)
	}
	if len(vectors.upserts) != 1 {
		t.Errorf("upsert called %d times, want 1", len(vectors.upserts))
	}
}

// 内容变化后摘要失配，必须重新向量化
func TestIndexArticleReindexesOnContentChange(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = normalizedArticle(1)
	embedder := &fakeEmbedder{}
	vectors := &fakeVectorIndex{}
	idx := newIndexer(store, embedder, vectors)

	ctx := context.Background()
	if err := idx.IndexArticle(ctx, 1); err != nil {
		t.Fatalf("IndexArticle() error = %v", err)
	}

	store.articles[1].NormalizedContent = "更新后的处理步骤"
	if err := idx.IndexArticle(ctx, 1); err != nil {
		t.Fatalf("IndexArticle() after change error = %v", err)
	}

	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want 2", embedder.calls)
	}
}

// 上次失败留有last_error时即便摘要相同也要重试
func TestIndexArticleRetriesAfterFailure(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = normalizedArticle(1)
	embedder := &fakeEmbedder{}
	vectors := &fakeVectorIndex{upsertErr: errors.New("milvus unavailable")}
	idx := newIndexer(store, embedder, vectors)

	ctx := context.Background()
	err := idx.IndexArticle(ctx, 1)
	if err == nil {
		t.Fatal("IndexArticle() should propagate upsert failure")
	}

	record := store.records[1]
	if record == nil || record.LastError == nil {
		t.Fatalf("record = %+v, want last_error persisted", record)
	}
	if !strings.Contains(*record.LastError, "milvus unavailable") {
		t.Errorf("last_error = %q, want upsert failure message", *record.LastError)
	}
	if record.IndexedAt != nil {
		t.Error("indexed_at should stay unset after failure")
	}

	vectors.upsertErr = nil
	if err := idx.IndexArticle(ctx, 1); err != nil {
		t.Fatalf("IndexArticle() retry error = %v", err)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want retry after failure", embedder.calls)
	}
	if record := store.records[1]; record.LastError != nil || record.IndexedAt == nil {
		t.Errorf("record = %+v, want last_error cleared after successful retry", record)
	}
}

func TestIndexArticleValidation(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1, Status: model.StatusDraft, NormalizedContent: "x"}
	store.articles[2] = &model.KnowledgeArticle{ID: 2, Status: model.StatusNormalized, NormalizedContent: ""}
	idx := newIndexer(store, &fakeEmbedder{}, &fakeVectorIndex{})

	ctx := context.Background()

	if err := idx.IndexArticle(ctx, 99); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing article error = %v, want not found", err)
	}
	if err := idx.IndexArticle(ctx, 1); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("draft article error = %v, want validation", err)
	}
	if err := idx.IndexArticle(ctx, 2); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty content error = %v, want validation", err)
	}
}

// 单篇失败不应中断整批重建
func TestRebuildAllIsolatesFailures(t *testing.T) {
	store := newFakeIndexStore()
	store.articles[1] = normalizedArticle(1)
	store.articles[2] = &model.KnowledgeArticle{ID: 2, Status: model.StatusNormalized, NormalizedContent: ""}
	store.articles[3] = normalizedArticle(3)
	idx := newIndexer(store, &fakeEmbedder{}, &fakeVectorIndex{})

	result, err := idx.RebuildAll(context.Background())
	if err != nil {
		t.Fatalf("RebuildAll() error = %v", err)
	}

	if result.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", result.Indexed)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "article 2") {
		t.Errorf("Errors = %v, want one error for article 2", result.Errors)
	}
}

func TestContentHashStable(t *testing.T) {
	if ContentHash("abc") != ContentHash("abc") {
		t.Error("ContentHash() should be deterministic")
	}
	if ContentHash("abc") == ContentHash("abd") {
		t.Error("ContentHash() should differ for different content")
	}
	if len(ContentHash("abc")) != 64 {
		t.Errorf("ContentHash() length = %d, want 64 hex chars", len(ContentHash("abc")))
	}
}
