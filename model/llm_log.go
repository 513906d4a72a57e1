package model

import "time"

// LLMRequestLog 大模型调用日志，每次调用（成功或失败）都写一条
type LLMRequestLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	Purpose    string    `gorm:"not null;index" json:"purpose"`
	Model      string    `gorm:"not null" json:"model"`
	Request    string    `gorm:"type:text" json:"request"`
	Response   string    `gorm:"type:text" json:"response"`
	Success    bool      `gorm:"not null" json:"success"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	DurationMS int64     `gorm:"not null" json:"duration_ms"`
}

func (LLMRequestLog) TableName() string {
	return "llm_request_log"
}

// TicketSuggestionLog 工单建议调用日志
// 检索开始前先落库，结束后回填结果，进程中途崩溃也可还原每次调用
type TicketSuggestionLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	TicketID uint   `gorm:"not null;index" json:"ticket_id"`
	Query    string `gorm:"type:text;not null" json:"query"`
	Model    string `json:"model"`

	// 检索命中的文章id，保持排名顺序
	ArticleIDs []uint `gorm:"type:json;serializer:json" json:"article_ids"`

	Response   string `gorm:"type:text" json:"response"`
	Success    bool   `gorm:"not null;default:false" json:"success"`
	Error      string `gorm:"type:text" json:"error,omitempty"`
	DurationMS int64  `gorm:"not null;default:0" json:"duration_ms"`
}

func (TicketSuggestionLog) TableName() string {
	return "ticket_suggestion_log"
}
