package dao

import (
	"servicedesk-backend/model"

	"gorm.io/gorm"
)

const fulltextColumns = "title, summary, raw_content, normalized_content"

type SearchFilter struct {
	Status      model.ArticleStatus
	Category    string
	ArticleType string
	Difficulty  string

	// 取交集：文章必须包含列出的每个标签
	Tags []string
}

// RankedArticle 带相关度评分的搜索结果行
type RankedArticle struct {
	model.KnowledgeArticle
	Rank float64 `gorm:"column:relevance" json:"rank"`
}

func applySearchFilter(query *gorm.DB, filter SearchFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ArticleType != "" {
		query = query.Where("article_type = ?", filter.ArticleType)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	for _, tag := range filter.Tags {
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	}
	return query
}

// SearchArticlesFulltext 全文检索，按相关度降序
func SearchArticlesFulltext(q string, filter SearchFilter, limit, offset int) ([]RankedArticle, int64, error) {
	match := "MATCH(" + fulltextColumns + ") AGAINST (? IN NATURAL LANGUAGE MODE)"

	base := applySearchFilter(DB.Model(&model.KnowledgeArticle{}), filter).
		Where(match, q)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []RankedArticle
	if err := base.
		Select("*, "+match+" AS relevance", q).
		Order("relevance DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// SearchArticlesKeyword 子串匹配检索，按更新时间降序，相关度固定为0
func SearchArticlesKeyword(q string, filter SearchFilter, limit, offset int) ([]RankedArticle, int64, error) {
	pattern := "%" + q + "%"
	base := applySearchFilter(DB.Model(&model.KnowledgeArticle{}), filter).
		Where("title LIKE ? OR summary LIKE ? OR raw_content LIKE ? OR normalized_content LIKE ?",
			pattern, pattern, pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []RankedArticle
	if err := base.
		Select("*, 0 AS relevance").
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ListArticleTitlesByPrefix 标题前缀/子串匹配，供自动补全
func ListArticleTitlesByPrefix(q string, limit int) ([]string, error) {
	var titles []string
	if err := DB.Model(&model.KnowledgeArticle{}).
		Where("title LIKE ?", "%"+q+"%").
		Order("views DESC").
		Limit(limit).
		Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// ListKeywordsMatching 在提取的关键词中做子串匹配，供自动补全
func ListKeywordsMatching(q string, limit int) ([]string, error) {
	var rows []model.KnowledgeArticle
	if err := DB.Model(&model.KnowledgeArticle{}).
		Select("keywords").
		Where("JSON_SEARCH(LOWER(keywords), 'one', LOWER(?)) IS NOT NULL", "%"+q+"%").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var keywords []string
	for _, row := range rows {
		keywords = append(keywords, row.Keywords...)
	}
	return keywords, nil
}

func CreateSearchQuery(sq *model.SearchQuery) error {
	return DB.Create(sq).Error
}

type PopularQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// ListPopularQueries 最近days天内的热门搜索词
func ListPopularQueries(days, limit int) ([]PopularQuery, error) {
	var results []PopularQuery
	if err := DB.Model(&model.SearchQuery{}).
		Select("query, COUNT(*) AS count").
		Where("created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)", days).
		Group("query").
		Order("count DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
