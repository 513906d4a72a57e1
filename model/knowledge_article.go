package model

import "time"

type ArticleStatus string

const (
	StatusDraft       ArticleStatus = "draft"
	StatusUnprocessed ArticleStatus = "unprocessed"
	StatusNormalized  ArticleStatus = "normalized"
	StatusPublished   ArticleStatus = "published"
	StatusArchived    ArticleStatus = "archived"
)

type ArticleSource string

const (
	SourceManual ArticleSource = "manual"
	SourceTicket ArticleSource = "ticket"
)

type NormalizedBy string

const (
	NormalizedByLLM  NormalizedBy = "llm"
	NormalizedByUser NormalizedBy = "user"
)

// KnowledgeArticle 知识库文章
// 在 title/summary/raw_content/normalized_content 上建立全文索引，支持排序检索
type KnowledgeArticle struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Title   string `gorm:"not null;index:idx_fulltext_article,class:FULLTEXT,option:WITH PARSER ngram" json:"title"`
	Summary string `gorm:"type:text;index:idx_fulltext_article,class:FULLTEXT,option:WITH PARSER ngram" json:"summary"`

	Status ArticleStatus `gorm:"not null;default:draft;index" json:"status"`
	Source ArticleSource `gorm:"not null;default:manual" json:"source"`

	RawContent        string `gorm:"type:text;index:idx_fulltext_article,class:FULLTEXT,option:WITH PARSER ngram" json:"raw_content"`
	NormalizedContent string `gorm:"type:text;index:idx_fulltext_article,class:FULLTEXT,option:WITH PARSER ngram" json:"normalized_content"`

	// 每次确认规范化时 +1，只增不减
	NormalizationVersion int          `gorm:"not null;default:0" json:"normalization_version"`
	NormalizedBy         NormalizedBy `json:"normalized_by,omitempty"`

	// 仅当 source=ticket 时设置，且要求来源工单已关闭
	OriginTicketID *uint `json:"origin_ticket_id,omitempty"`

	EquipmentIDs     []uint   `gorm:"type:json;serializer:json" json:"equipment_ids"`
	LinkedArticleIDs []uint   `gorm:"type:json;serializer:json" json:"linked_article_ids"`
	Tags             []string `gorm:"type:json;serializer:json" json:"tags"`

	// 词频提取结果，供搜索自动补全使用
	Keywords []string `gorm:"type:json;serializer:json" json:"keywords"`

	// 随反馈 ±1 的有符号计数
	ConfidenceScore int  `gorm:"not null;default:0" json:"confidence_score"`
	IsTypical       bool `gorm:"not null;default:false" json:"is_typical"`

	ArticleType string `gorm:"index" json:"article_type"`
	Category    string `gorm:"index" json:"category"`
	Difficulty  string `json:"difficulty"`

	Author     string `json:"author"`
	LastEditor string `json:"last_editor"`

	Views           int `gorm:"not null;default:0" json:"views"`
	HelpfulCount    int `gorm:"not null;default:0" json:"helpful_count"`
	NotHelpfulCount int `gorm:"not null;default:0" json:"not_helpful_count"`

	Pinned   bool `gorm:"not null;default:false" json:"pinned"`
	Featured bool `gorm:"not null;default:false" json:"featured"`

	ReadingTimeMinutes int `gorm:"not null;default:0" json:"reading_time_minutes"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func (KnowledgeArticle) TableName() string {
	return "knowledge_article"
}

// KnowledgeArticleIndex 文章的向量索引记录，与文章1:1
// content_hash 记录上次成功入库时 normalized_content 的摘要，
// 模型、集合、摘要均未变化且无错误时重建索引为幂等空操作
type KnowledgeArticleIndex struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	ArticleID      uint   `gorm:"not null;uniqueIndex" json:"article_id"`
	EmbeddingModel string `gorm:"not null" json:"embedding_model"`
	CollectionName string `gorm:"not null" json:"collection_name"`
	ContentHash    string `gorm:"not null" json:"content_hash"`

	// 为空表示从未成功入库
	IndexedAt *time.Time `json:"indexed_at,omitempty"`
	LastError *string    `gorm:"type:text" json:"last_error,omitempty"`
}

func (KnowledgeArticleIndex) TableName() string {
	return "knowledge_article_index"
}

// KnowledgeArticleFeedback 文章反馈，只追加不修改
type KnowledgeArticleFeedback struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index:idx_article_created" json:"created_at"`
	ArticleID uint      `gorm:"not null;index:idx_article_created" json:"article_id"`
	UserEmail string    `gorm:"not null" json:"user_email"`
	Helped    bool      `gorm:"not null" json:"helped"`
}

func (KnowledgeArticleFeedback) TableName() string {
	return "knowledge_article_feedback"
}
