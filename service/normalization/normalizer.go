package normalization

import (
	"context"
	_ "embed"
	"regexp"
	"strings"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/service/keywords"
	"servicedesk-backend/service/llm"
)

const purposeNormalize = "normalize"

//go:embed prompts/normalize_system.txt
var normalizeSystemPrompt string

// Store 规范化服务需要的文章读写能力
type Store interface {
	GetArticle(id uint) (*model.KnowledgeArticle, error)
	SaveArticle(article *model.KnowledgeArticle) error
}

// IndexTrigger 确认规范化后异步触发索引，失败不影响确认结果
type IndexTrigger interface {
	TriggerIndex(articleID uint)
}

type daoStore struct{}

func (daoStore) GetArticle(id uint) (*model.KnowledgeArticle, error) {
	return dao.GetArticleByID(id)
}

func (daoStore) SaveArticle(article *model.KnowledgeArticle) error {
	return dao.UpdateArticle(article)
}

// Service 规范化服务，preview计算不落库，confirm落库
type Service struct {
	llm     llm.Generator
	store   Store
	trigger IndexTrigger
}

func NewService(generator llm.Generator, trigger IndexTrigger) *Service {
	return newService(generator, daoStore{}, trigger)
}

func newService(generator llm.Generator, store Store, trigger IndexTrigger) *Service {
	return &Service{
		llm:     generator,
		store:   store,
		trigger: trigger,
	}
}

type PreviewResult struct {
	NormalizedText string `json:"normalized_text"`
	VersionPreview int    `json:"normalization_version_preview"`
}

// Preview 调用大模型生成规范化文本，不修改文章
func (s *Service) Preview(ctx context.Context, articleID uint) (*PreviewResult, error) {
	article, err := s.store.GetArticle(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", articleID)
	}
	if strings.TrimSpace(article.RawContent) == "" {
		return nil, apperr.Validation("article %d has empty raw content", articleID)
	}

	input := StripMarkup(article.RawContent)
	normalized, err := s.llm.Generate(ctx, purposeNormalize, normalizeSystemPrompt, input)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		NormalizedText: normalized,
		VersionPreview: article.NormalizationVersion + 1,
	}, nil
}

// Confirm 持久化规范化文本，版本+1，状态转为normalized，
// 重新提取关键词后异步触发索引
func (s *Service) Confirm(ctx context.Context, articleID uint, normalizedText string, by model.NormalizedBy) (*model.KnowledgeArticle, error) {
	if strings.TrimSpace(normalizedText) == "" {
		return nil, apperr.Validation("normalized text is empty")
	}

	article, err := s.store.GetArticle(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article %d not found", articleID)
	}

	article.NormalizedContent = normalizedText
	article.NormalizedBy = by
	article.NormalizationVersion++
	article.Status = model.StatusNormalized
	article.Keywords = keywords.Extract(article.Title+" "+normalizedText, 0)
	article.ReadingTimeMinutes = keywords.ReadingTimeMinutes(normalizedText)

	if err := s.store.SaveArticle(article); err != nil {
		return nil, err
	}

	// 索引失败记录在索引记录上，不影响确认结果
	if s.trigger != nil {
		s.trigger.TriggerIndex(article.ID)
	}

	return article, nil
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]+>`)
	codeFenceRegex  = regexp.MustCompile("(?s)```[a-zA-Z]*\n?|```")
	mdHeadingRegex  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasisRegex = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	mdLinkRegex     = regexp.MustCompile(`\[([^]]*)]\([^)]*\)`)
)

// StripMarkup 去掉常见的Markdown/HTML标记，发送给大模型前调用
func StripMarkup(text string) string {
	text = codeFenceRegex.ReplaceAllString(text, "")
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = mdHeadingRegex.ReplaceAllString(text, "")
	text = mdLinkRegex.ReplaceAllString(text, "$1")
	text = mdEmphasisRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
