package response

import (
	"time"

	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/service/suggestion"
)

type ListArticlesResponse struct {
	Items []model.KnowledgeArticle `json:"items"`
	Total int64                    `json:"total"`
}

type SearchResponse struct {
	Items      []dao.RankedArticle `json:"items"`
	Total      int64               `json:"total"`
	Query      string              `json:"query"`
	SearchType model.SearchType    `json:"search_type"`
}

type AutocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

type PopularQueriesResponse struct {
	Queries []dao.PopularQuery `json:"queries"`
}

type RebuildIndexResponse struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

type CredentialResponse struct {
	ID         string    `json:"id"`
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListCredentialsResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

type RevealCredentialResponse struct {
	Secret string `json:"secret"`
}

type SuggestionResponse struct {
	RawResponse string                  `json:"raw_response"`
	Suggestions []suggestion.Suggestion `json:"suggestions"`
	ArticleIDs  []uint                  `json:"article_ids"`
}

type DownloadLinkResponse struct {
	URL string `json:"url"`
}
