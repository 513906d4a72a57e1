package model

import "time"

type SearchType string

const (
	SearchTypeFulltext SearchType = "fulltext"
	SearchTypeKeyword  SearchType = "keyword"
)

// SearchQuery 搜索日志，用于搜索分析，只追加
type SearchQuery struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	Query       string     `gorm:"not null" json:"query"`
	ResultCount int        `gorm:"not null" json:"result_count"`
	SearchType  SearchType `gorm:"not null" json:"search_type"`
	UserEmail   string     `json:"user_email"`
}

func (SearchQuery) TableName() string {
	return "search_query"
}
