package article

import (
	"context"
	"log/slog"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/service/keywords"
	"servicedesk-backend/service/vectorindex"
)

// Store 文章服务需要的持久层能力
type Store interface {
	CreateArticle(article *model.KnowledgeArticle) error
	GetArticle(id uint) (*model.KnowledgeArticle, error)
	SaveArticle(article *model.KnowledgeArticle) error
	DeleteArticle(id uint) error
	AppendFeedback(articleID uint, userEmail string, helped bool) error
	GetTicket(id uint) (*model.Ticket, error)
}

// VectorIndex 文章服务需要的向量库能力，均为尽力而为调用
type VectorIndex interface {
	UpdatePayload(ctx context.Context, payload vectorindex.Payload) error
	Delete(ctx context.Context, articleID uint) error
}

type daoStore struct{}

func (daoStore) CreateArticle(article *model.KnowledgeArticle) error {
	return dao.CreateArticle(article)
}

func (daoStore) GetArticle(id uint) (*model.KnowledgeArticle, error) {
	return dao.GetArticleByID(id)
}

func (daoStore) SaveArticle(article *model.KnowledgeArticle) error {
	return dao.UpdateArticle(article)
}

func (daoStore) DeleteArticle(id uint) error {
	return dao.DeleteArticle(id)
}

func (daoStore) AppendFeedback(articleID uint, userEmail string, helped bool) error {
	return dao.AppendFeedback(articleID, userEmail, helped)
}

func (daoStore) GetTicket(id uint) (*model.Ticket, error) {
	return dao.GetTicketByID(id)
}

// Service 文章生命周期服务
type Service struct {
	store   Store
	vectors VectorIndex
}

func NewService(vectors VectorIndex) *Service {
	return newService(daoStore{}, vectors)
}

func newService(store Store, vectors VectorIndex) *Service {
	return &Service{
		store:   store,
		vectors: vectors,
	}
}

type CreateParams struct {
	Title        string
	Summary      string
	RawContent   string
	ArticleType  string
	Category     string
	Difficulty   string
	Tags         []string
	EquipmentIDs []uint
	Author       string
}

func (s *Service) Create(params CreateParams) (*model.KnowledgeArticle, error) {
	if params.Title == "" {
		return nil, apperr.Validation("article title is empty")
	}

	article := &model.KnowledgeArticle{
		Title:              params.Title,
		Summary:            params.Summary,
		RawContent:         params.RawContent,
		Status:             model.StatusDraft,
		Source:             model.SourceManual,
		ArticleType:        params.ArticleType,
		Category:           params.Category,
		Difficulty:         params.Difficulty,
		Tags:               params.Tags,
		EquipmentIDs:       params.EquipmentIDs,
		Author:             params.Author,
		LastEditor:         params.Author,
		Keywords:           keywords.Extract(params.Title+" "+params.RawContent, 0),
		ReadingTimeMinutes: keywords.ReadingTimeMinutes(params.RawContent),
	}
	if params.RawContent != "" {
		article.Status = model.StatusUnprocessed
	}

	if err := s.store.CreateArticle(article); err != nil {
		return nil, err
	}
	return article, nil
}

// CreateFromTicket 从已关闭的工单创建文章
func (s *Service) CreateFromTicket(ticketID uint, author string) (*model.KnowledgeArticle, error) {
	ticket, err := s.store.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket %d not found", ticketID)
	}
	if ticket.Status != model.TicketStatusClosed {
		return nil, apperr.Validation("ticket %d has status %s, requires closed", ticketID, ticket.Status)
	}

	rawContent := ticket.Description
	article := &model.KnowledgeArticle{
		Title:              ticket.Title,
		RawContent:         rawContent,
		Status:             model.StatusUnprocessed,
		Source:             model.SourceTicket,
		OriginTicketID:     &ticket.ID,
		Author:             author,
		LastEditor:         author,
		Keywords:           keywords.Extract(ticket.Title+" "+rawContent, 0),
		ReadingTimeMinutes: keywords.ReadingTimeMinutes(rawContent),
	}
	if ticket.EquipmentID != nil {
		article.EquipmentIDs = []uint{*ticket.EquipmentID}
	}

	if err := s.store.CreateArticle(article); err != nil {
		return nil, err
	}
	return article, nil
}

type PatchParams struct {
	Title             *string
	Summary           *string
	RawContent        *string
	NormalizedContent *string
	ArticleType       *string
	Category          *string
	Difficulty        *string
	Tags              []string
	EquipmentIDs      []uint
	LinkedArticleIDs  []uint
	IsTypical         *bool
	Pinned            *bool
	Featured          *bool
	Editor            string
}

func (s *Service) Patch(id uint, params PatchParams) (*model.KnowledgeArticle, error) {
	article, err := s.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", id)
	}

	if params.Title != nil {
		article.Title = *params.Title
	}
	if params.Summary != nil {
		article.Summary = *params.Summary
	}
	if params.RawContent != nil {
		article.RawContent = *params.RawContent
	}
	if params.NormalizedContent != nil {
		if article.Status != model.StatusNormalized && article.Status != model.StatusPublished {
			return nil, apperr.Validation("article %d has status %s, normalized content is not editable", id, article.Status)
		}
		article.NormalizedContent = *params.NormalizedContent
	}
	if params.ArticleType != nil {
		article.ArticleType = *params.ArticleType
	}
	if params.Category != nil {
		article.Category = *params.Category
	}
	if params.Difficulty != nil {
		article.Difficulty = *params.Difficulty
	}
	if params.Tags != nil {
		article.Tags = params.Tags
	}
	if params.EquipmentIDs != nil {
		article.EquipmentIDs = params.EquipmentIDs
	}
	if params.LinkedArticleIDs != nil {
		article.LinkedArticleIDs = params.LinkedArticleIDs
	}
	if params.IsTypical != nil {
		article.IsTypical = *params.IsTypical
	}
	if params.Pinned != nil {
		article.Pinned = *params.Pinned
	}
	if params.Featured != nil {
		article.Featured = *params.Featured
	}
	if params.Editor != "" {
		article.LastEditor = params.Editor
	}

	article.Keywords = keywords.Extract(article.Title+" "+article.RawContent+" "+article.NormalizedContent, 0)

	if err := s.store.SaveArticle(article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *Service) Archive(id uint) (*model.KnowledgeArticle, error) {
	article, err := s.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", id)
	}

	article.Status = model.StatusArchived
	if err := s.store.SaveArticle(article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *Service) Publish(id uint) (*model.KnowledgeArticle, error) {
	article, err := s.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", id)
	}
	if article.Status != model.StatusNormalized {
		return nil, apperr.Validation("article %d has status %s, requires normalized", id, article.Status)
	}

	now := time.Now()
	article.Status = model.StatusPublished
	article.PublishedAt = &now
	if err := s.store.SaveArticle(article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete 删除文章，级联删除索引和反馈记录，向量删除为尽力而为
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteArticle(id); err != nil {
		return err
	}

	if err := s.vectors.Delete(ctx, id); err != nil {
		slog.Error("Failed to delete article from vector index",
			"article_id", id,
			"err", err,
		)
	}
	return nil
}

// Feedback 追加反馈并调整计数和置信分
// 之后把新置信分推送到向量库元数据（不重新向量化），推送失败不影响反馈结果
func (s *Service) Feedback(ctx context.Context, articleID uint, userEmail string, helped bool) (*model.KnowledgeArticle, error) {
	article, err := s.store.GetArticle(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", articleID)
	}

	if err := s.store.AppendFeedback(articleID, userEmail, helped); err != nil {
		return nil, err
	}

	article, err = s.store.GetArticle(articleID)
	if err != nil {
		return nil, err
	}
	// 两次读之间文章可能被并发删除
	if article == nil {
		return nil, apperr.NotFound("article %d not found", articleID)
	}

	if err := s.vectors.UpdatePayload(ctx, vectorindex.Payload{
		ArticleID:       article.ID,
		EquipmentIDs:    article.EquipmentIDs,
		ConfidenceScore: article.ConfidenceScore,
		Status:          article.Status,
		UpdatedAt:       article.UpdatedAt,
	}); err != nil {
		slog.Error("Failed to push confidence score to vector index",
			"article_id", articleID,
			"err", err,
		)
	}

	return article, nil
}
