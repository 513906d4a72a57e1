package request

type CreateArticleRequest struct {
	Title        string   `json:"title" binding:"required"`
	Summary      string   `json:"summary"`
	RawContent   string   `json:"raw_content"`
	ArticleType  string   `json:"article_type"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
	Tags         []string `json:"tags"`
	EquipmentIDs []uint   `json:"equipment_ids"`
}

type PatchArticleRequest struct {
	Title             *string  `json:"title"`
	Summary           *string  `json:"summary"`
	RawContent        *string  `json:"raw_content"`
	NormalizedContent *string  `json:"normalized_content"`
	ArticleType       *string  `json:"article_type"`
	Category          *string  `json:"category"`
	Difficulty        *string  `json:"difficulty"`
	Tags              []string `json:"tags"`
	EquipmentIDs      []uint   `json:"equipment_ids"`
	LinkedArticleIDs  []uint   `json:"linked_article_ids"`
	IsTypical         *bool    `json:"is_typical"`
	Pinned            *bool    `json:"pinned"`
	Featured          *bool    `json:"featured"`
}

type ConfirmNormalizationRequest struct {
	NormalizedText string `json:"normalized_text" binding:"required"`

	// llm 或 user，默认 llm
	NormalizedBy string `json:"normalized_by"`
}

type FeedbackRequest struct {
	Helped *bool `json:"helped" binding:"required"`
}

type CreateCredentialRequest struct {
	EntityKind     string `json:"entity_kind" binding:"required"`
	EntityID       string `json:"entity_id" binding:"required"`
	Username       string `json:"username"`
	Secret         string `json:"secret" binding:"required"`
	MasterPassword string `json:"master_password" binding:"required"`
}

type UpdateCredentialRequest struct {
	Username       string `json:"username"`
	Secret         string `json:"secret"`
	MasterPassword string `json:"master_password"`
}

type RevealCredentialRequest struct {
	MasterPassword string `json:"master_password" binding:"required"`
}

type SuggestionRequest struct {
	TopK int `json:"top_k"`
}
