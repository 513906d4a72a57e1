package indexing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/service/embedding"
	"servicedesk-backend/service/vectorindex"
)

const rebuildErrorLimit = 10

// Store 索引流水线需要的文章和索引记录读写能力
type Store interface {
	GetArticle(id uint) (*model.KnowledgeArticle, error)
	GetArticleIndex(articleID uint) (*model.KnowledgeArticleIndex, error)
	SaveArticleIndex(index *model.KnowledgeArticleIndex) error
	ListArticlesByStatus(status model.ArticleStatus) ([]model.KnowledgeArticle, error)
}

// VectorIndex 索引流水线需要的向量库能力
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dim int) error
	Upsert(ctx context.Context, vector []float32, payload vectorindex.Payload) error
	CollectionName() string
}

type daoStore struct{}

func (daoStore) GetArticle(id uint) (*model.KnowledgeArticle, error) {
	return dao.GetArticleByID(id)
}

func (daoStore) GetArticleIndex(articleID uint) (*model.KnowledgeArticleIndex, error) {
	return dao.GetArticleIndexByArticleID(articleID)
}

func (daoStore) SaveArticleIndex(index *model.KnowledgeArticleIndex) error {
	return dao.SaveArticleIndex(index)
}

func (daoStore) ListArticlesByStatus(status model.ArticleStatus) ([]model.KnowledgeArticle, error) {
	return dao.ListArticlesByStatus(status)
}

// Indexer 索引流水线：向量化规范化文本并写入向量库，内容摘要不变时跳过
type Indexer struct {
	store    Store
	embedder embedding.Embedder
	vectors  VectorIndex
}

func NewIndexer(embedder embedding.Embedder, vectors VectorIndex) *Indexer {
	return newIndexer(daoStore{}, embedder, vectors)
}

func newIndexer(store Store, embedder embedding.Embedder, vectors VectorIndex) *Indexer {
	return &Indexer{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
	}
}

// ContentHash 规范化文本的摘要，用于判断是否需要重新向量化
func ContentHash(normalizedContent string) string {
	sum := sha256.Sum256([]byte(normalizedContent))
	return hex.EncodeToString(sum[:])
}

// IndexArticle 为单篇文章建立向量索引
// 模型、集合、内容摘要均未变化且上次无错误时为幂等空操作；
// 外部调用失败时把错误记录到索引记录并向调用方返回
func (idx *Indexer) IndexArticle(ctx context.Context, articleID uint) error {
	article, err := idx.store.GetArticle(articleID)
	if err != nil {
		return err
	}
	if article == nil {
		return apperr.NotFound("article %d not found", articleID)
	}
	if article.Status != model.StatusNormalized {
		return apperr.Validation("article %d has status %s, requires normalized", articleID, article.Status)
	}
	if article.NormalizedContent == "" {
		return apperr.Validation("article %d has empty normalized content", articleID)
	}

	hash := ContentHash(article.NormalizedContent)
	embeddingModel := idx.embedder.ModelName()
	collection := idx.vectors.CollectionName()

	record, err := idx.store.GetArticleIndex(articleID)
	if err != nil {
		return err
	}
	if record != nil &&
		record.ContentHash == hash &&
		record.EmbeddingModel == embeddingModel &&
		record.CollectionName == collection &&
		record.LastError == nil {
		return nil
	}

	if record == nil {
		record = &model.KnowledgeArticleIndex{ArticleID: articleID}
	}
	record.EmbeddingModel = embeddingModel
	record.CollectionName = collection
	record.ContentHash = hash

	if err := idx.runPipeline(ctx, article); err != nil {
		errText := err.Error()
		record.LastError = &errText
		if saveErr := idx.store.SaveArticleIndex(record); saveErr != nil {
			slog.Error("Failed to save article index record",
				"article_id", articleID,
				"err", saveErr,
			)
		}
		return err
	}

	now := time.Now()
	record.IndexedAt = &now
	record.LastError = nil
	return idx.store.SaveArticleIndex(record)
}

func (idx *Indexer) runPipeline(ctx context.Context, article *model.KnowledgeArticle) error {
	vector, err := idx.embedder.EmbedQuery(ctx, article.NormalizedContent)
	if err != nil {
		return err
	}

	if err := idx.vectors.EnsureCollection(ctx, len(vector)); err != nil {
		return err
	}

	return idx.vectors.Upsert(ctx, vector, vectorindex.Payload{
		ArticleID:       article.ID,
		EquipmentIDs:    article.EquipmentIDs,
		ConfidenceScore: article.ConfidenceScore,
		Status:          article.Status,
		UpdatedAt:       article.UpdatedAt,
	})
}

type RebuildResult struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// RebuildAll 重建所有已规范化文章的索引
// 逐篇处理，单篇失败不中断整批，返回汇总计数和前若干条错误
func (idx *Indexer) RebuildAll(ctx context.Context) (*RebuildResult, error) {
	articles, err := idx.store.ListArticlesByStatus(model.StatusNormalized)
	if err != nil {
		return nil, err
	}

	result := &RebuildResult{}
	for _, article := range articles {
		if err := idx.IndexArticle(ctx, article.ID); err != nil {
			result.Failed++
			if len(result.Errors) < rebuildErrorLimit {
				result.Errors = append(result.Errors, fmt.Sprintf("article %d: %v", article.ID, err))
			}
			slog.Error("Failed to index article during rebuild",
				"article_id", article.ID,
				"err", err,
			)
			continue
		}
		result.Indexed++
	}
	return result, nil
}

// TriggerIndex 异步触发单篇索引，供规范化确认后调用
func (idx *Indexer) TriggerIndex(articleID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := idx.IndexArticle(ctx, articleID); err != nil {
			slog.Error("Failed to index article after confirm",
				"article_id", articleID,
				"err", err,
			)
		}
	}()
}
