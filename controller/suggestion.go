package controller

import (
	"net/http"

	"servicedesk-backend/request"
	"servicedesk-backend/response"
	"servicedesk-backend/service/suggestion"

	"github.com/gin-gonic/gin"
)

type SuggestionController struct {
	suggestions *suggestion.Service
}

func NewSuggestionController(suggestions *suggestion.Service) *SuggestionController {
	return &SuggestionController{suggestions: suggestions}
}

func (ctl *SuggestionController) Suggest(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// 请求体可省略，top_k走默认值
	var req request.SuggestionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := ctl.suggestions.Suggest(c.Request.Context(), ticketID, req.TopK)
	if err != nil {
		abortWithError(c, ErrTicketSuggestions, err)
		return
	}

	articleIDs := result.ArticleIDs
	if articleIDs == nil {
		articleIDs = []uint{}
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.SuggestionResponse{
			RawResponse: result.RawResponse,
			Suggestions: result.Suggestions,
			ArticleIDs:  articleIDs,
		},
	})
}
