package suggestion

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/service/embedding"
	"servicedesk-backend/service/llm"
)

const (
	purposeSuggestion = "ticket_suggestion"

	defaultTopK = 5

	// 每篇文章进入上下文的最大字符数
	contextCharBudget = 2000
	truncationMarker  = "…[truncated]"
)

//go:embed prompts/suggestion_system.txt
var suggestionSystemPrompt string

// Store 建议服务需要的持久层能力
type Store interface {
	GetTicket(id uint) (*model.Ticket, error)
	ListArticlesByIDs(ids []uint) ([]model.KnowledgeArticle, error)
	CreateSuggestionLog(log *model.TicketSuggestionLog) error
	UpdateSuggestionLog(log *model.TicketSuggestionLog) error
}

// VectorSearcher 建议服务需要的向量检索能力
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, topK int, equipmentID *uint) ([]uint, error)
}

type daoStore struct{}

func (daoStore) GetTicket(id uint) (*model.Ticket, error) {
	return dao.GetTicketByID(id)
}

func (daoStore) ListArticlesByIDs(ids []uint) ([]model.KnowledgeArticle, error) {
	return dao.ListArticlesByIDs(ids)
}

func (daoStore) CreateSuggestionLog(log *model.TicketSuggestionLog) error {
	return dao.CreateTicketSuggestionLog(log)
}

func (daoStore) UpdateSuggestionLog(log *model.TicketSuggestionLog) error {
	return dao.UpdateTicketSuggestionLog(log)
}

// Service 工单建议服务：向量检索相关文章后让大模型基于文章合成建议
type Service struct {
	store    Store
	embedder embedding.Embedder
	vectors  VectorSearcher
	llm      llm.Generator
}

func NewService(embedder embedding.Embedder, vectors VectorSearcher, generator llm.Generator) *Service {
	return newService(daoStore{}, embedder, vectors, generator)
}

func newService(store Store, embedder embedding.Embedder, vectors VectorSearcher, generator llm.Generator) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		llm:      generator,
	}
}

type Suggestion struct {
	ArticleID     uint     `json:"article_id"`
	Title         string   `json:"title"`
	WhyRelevant   string   `json:"why_relevant"`
	SolutionSteps []string `json:"solution_steps"`
}

type Result struct {
	RawResponse string       `json:"raw_response"`
	Suggestions []Suggestion `json:"suggestions"`
	ArticleIDs  []uint       `json:"article_ids"`
}

// Suggest 为工单生成基于知识库的建议
// 合成开始前先写建议日志，结束后回填结果和耗时；
// 大模型返回的JSON解析失败时返回空建议列表和原始文本，不视为调用失败
func (s *Service) Suggest(ctx context.Context, ticketID uint, topK int) (*Result, error) {
	ticket, err := s.store.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket %d not found", ticketID)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	query := strings.TrimSpace(ticket.Title + "\n" + ticket.Description)

	suggestionLog := &model.TicketSuggestionLog{
		TicketID: ticketID,
		Query:    query,
		Model:    s.llm.ModelName(),
	}
	if err := s.store.CreateSuggestionLog(suggestionLog); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.retrieveAndSynthesize(ctx, query, topK, ticket.EquipmentID, suggestionLog)
	suggestionLog.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		suggestionLog.Error = err.Error()
	} else {
		suggestionLog.Success = true
		suggestionLog.Response = result.RawResponse
	}
	if updateErr := s.store.UpdateSuggestionLog(suggestionLog); updateErr != nil {
		slog.Error("Failed to update ticket suggestion log",
			"ticket_id", ticketID,
			"err", updateErr,
		)
	}

	return result, err
}

func (s *Service) retrieveAndSynthesize(ctx context.Context, query string, topK int, equipmentID *uint, suggestionLog *model.TicketSuggestionLog) (*Result, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	retrieved, err := s.vectors.Search(ctx, vector, topK, equipmentID)
	if err != nil {
		return nil, err
	}

	articleIDs := dedupPreservingOrder(retrieved)
	suggestionLog.ArticleIDs = articleIDs

	articles, err := s.loadNormalizedArticles(articleIDs)
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		return &Result{
			Suggestions: []Suggestion{},
			ArticleIDs:  articleIDs,
		}, nil
	}

	userPrompt := buildUserPrompt(query, articles)
	raw, err := s.llm.Generate(ctx, purposeSuggestion, suggestionSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RawResponse: raw,
		ArticleIDs:  articleIDs,
	}

	var parsed struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		slog.Warn("Failed to parse suggestion response as json",
			"ticket_id", suggestionLog.TicketID,
			"err", err,
		)
		result.Suggestions = []Suggestion{}
		return result, nil
	}

	result.Suggestions = parsed.Suggestions
	if result.Suggestions == nil {
		result.Suggestions = []Suggestion{}
	}
	return result, nil
}

// loadNormalizedArticles 按检索排名顺序返回状态为normalized的文章
func (s *Service) loadNormalizedArticles(articleIDs []uint) ([]model.KnowledgeArticle, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}

	articles, err := s.store.ListArticlesByIDs(articleIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.KnowledgeArticle, len(articles))
	for _, article := range articles {
		if article.Status == model.StatusNormalized {
			byID[article.ID] = article
		}
	}

	ordered := make([]model.KnowledgeArticle, 0, len(byID))
	for _, id := range articleIDs {
		if article, ok := byID[id]; ok {
			ordered = append(ordered, article)
		}
	}
	return ordered, nil
}

func buildUserPrompt(query string, articles []model.KnowledgeArticle) string {
	var b strings.Builder
	b.WriteString("工单内容：\n")
	b.WriteString(query)
	b.WriteString("\n\n可用的知识库文章：\n")
	for _, article := range articles {
		fmt.Fprintf(&b, "\n--- 文章 id=%d 置信分=%d ---\n标题：%s\n内容：\n%s\n",
			article.ID, article.ConfidenceScore, article.Title,
			truncate(article.NormalizedContent, contextCharBudget),
		)
	}
	return b.String()
}

func dedupPreservingOrder(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	deduped := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	return deduped
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}
