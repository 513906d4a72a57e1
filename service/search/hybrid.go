package search

import (
	"context"
	"log/slog"
	"strings"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
)

// Mode 检索策略
// hybrid：先全文检索，零结果时降级为子串检索（默认）
type Mode string

const (
	ModeHybrid   Mode = "hybrid"
	ModeFulltext Mode = "fulltext"
	ModeKeyword  Mode = "keyword"
)

// Store 混合检索需要的持久层能力
type Store interface {
	SearchFulltext(q string, filter dao.SearchFilter, limit, offset int) ([]dao.RankedArticle, int64, error)
	SearchKeyword(q string, filter dao.SearchFilter, limit, offset int) ([]dao.RankedArticle, int64, error)
	LogQuery(sq *model.SearchQuery) error
	TitlesByPrefix(q string, limit int) ([]string, error)
	KeywordsMatching(q string, limit int) ([]string, error)
	PopularQueries(days, limit int) ([]dao.PopularQuery, error)
}

type daoStore struct{}

func (daoStore) SearchFulltext(q string, filter dao.SearchFilter, limit, offset int) ([]dao.RankedArticle, int64, error) {
	return dao.SearchArticlesFulltext(q, filter, limit, offset)
}

func (daoStore) SearchKeyword(q string, filter dao.SearchFilter, limit, offset int) ([]dao.RankedArticle, int64, error) {
	return dao.SearchArticlesKeyword(q, filter, limit, offset)
}

func (daoStore) LogQuery(sq *model.SearchQuery) error {
	return dao.CreateSearchQuery(sq)
}

func (daoStore) TitlesByPrefix(q string, limit int) ([]string, error) {
	return dao.ListArticleTitlesByPrefix(q, limit)
}

func (daoStore) KeywordsMatching(q string, limit int) ([]string, error) {
	return dao.ListKeywordsMatching(q, limit)
}

func (daoStore) PopularQueries(days, limit int) ([]dao.PopularQuery, error) {
	return dao.ListPopularQueries(days, limit)
}

// Service 混合检索服务
type Service struct {
	store Store
}

func NewService() *Service {
	return newService(daoStore{})
}

func newService(store Store) *Service {
	return &Service{store: store}
}

// Result search_type 标明实际产生结果的策略，是接口契约的一部分
type Result struct {
	Items      []dao.RankedArticle `json:"items"`
	Total      int64               `json:"total"`
	Query      string              `json:"query"`
	SearchType model.SearchType    `json:"search_type"`
}

// Search 执行检索并异步记录搜索日志
// hybrid模式下仅当全文检索零结果时降级为子串检索
func (s *Service) Search(ctx context.Context, q string, mode Mode, filter dao.SearchFilter, limit, offset int, userEmail string) (*Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("search query is empty")
	}
	if limit <= 0 {
		limit = 20
	}

	result := &Result{Query: q}

	switch mode {
	case ModeKeyword:
		items, total, err := s.store.SearchKeyword(q, filter, limit, offset)
		if err != nil {
			return nil, err
		}
		result.Items, result.Total, result.SearchType = items, total, model.SearchTypeKeyword
	case ModeFulltext:
		items, total, err := s.store.SearchFulltext(q, filter, limit, offset)
		if err != nil {
			return nil, err
		}
		result.Items, result.Total, result.SearchType = items, total, model.SearchTypeFulltext
	default:
		items, total, err := s.store.SearchFulltext(q, filter, limit, offset)
		if err != nil {
			return nil, err
		}
		result.Items, result.Total, result.SearchType = items, total, model.SearchTypeFulltext

		if total == 0 {
			items, total, err = s.store.SearchKeyword(q, filter, limit, offset)
			if err != nil {
				return nil, err
			}
			result.Items, result.Total, result.SearchType = items, total, model.SearchTypeKeyword
		}
	}

	if result.Items == nil {
		result.Items = []dao.RankedArticle{}
	}

	// 日志失败不影响检索结果
	go s.logQuery(q, len(result.Items), result.SearchType, userEmail)

	return result, nil
}

func (s *Service) logQuery(q string, resultCount int, searchType model.SearchType, userEmail string) {
	err := s.store.LogQuery(&model.SearchQuery{
		Query:       q,
		ResultCount: resultCount,
		SearchType:  searchType,
		UserEmail:   userEmail,
	})
	if err != nil {
		slog.Error("Failed to log search query", "query", q, "err", err)
	}
}

// Autocomplete 标题和关键词的前缀/子串补全，大小写不敏感去重
func (s *Service) Autocomplete(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	titles, err := s.store.TitlesByPrefix(q, limit)
	if err != nil {
		return nil, err
	}
	kws, err := s.store.KeywordsMatching(q, limit)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(q)
	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)
	for _, candidate := range append(titles, kws...) {
		if !strings.Contains(strings.ToLower(candidate), lowered) {
			continue
		}
		key := strings.ToLower(candidate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, candidate)
		if len(suggestions) >= limit {
			break
		}
	}
	return suggestions, nil
}

// Popular 最近days天的热门搜索词
func (s *Service) Popular(ctx context.Context, days, limit int) ([]dao.PopularQuery, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 10
	}
	return s.store.PopularQueries(days, limit)
}
