package controller

import (
	"net/http"
	"strconv"
	"strings"

	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/response"
	"servicedesk-backend/service/search"

	"github.com/gin-gonic/gin"
)

type SearchController struct {
	search *search.Service
}

func NewSearchController(searchService *search.Service) *SearchController {
	return &SearchController{search: searchService}
}

func (ctl *SearchController) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	mode := search.ModeHybrid
	switch c.Query("type") {
	case string(search.ModeFulltext):
		mode = search.ModeFulltext
	case string(search.ModeKeyword):
		mode = search.ModeKeyword
	}

	filter := dao.SearchFilter{
		Status:      model.ArticleStatus(c.Query("status")),
		Category:    c.Query("category"),
		ArticleType: c.Query("article_type"),
		Difficulty:  c.Query("difficulty"),
	}
	if tags := c.Query("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	result, err := ctl.search.Search(c.Request.Context(), c.Query("q"), mode, filter, limit, offset, c.GetString("email"))
	if err != nil {
		abortWithError(c, ErrSearchArticles, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.SearchResponse{
			Items:      result.Items,
			Total:      result.Total,
			Query:      result.Query,
			SearchType: result.SearchType,
		},
	})
}

func (ctl *SearchController) Autocomplete(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	suggestions, err := ctl.search.Autocomplete(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		abortWithError(c, ErrAutocomplete, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.AutocompleteResponse{
			Suggestions: suggestions,
		},
	})
}

func (ctl *SearchController) Popular(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	queries, err := ctl.search.Popular(c.Request.Context(), days, limit)
	if err != nil {
		abortWithError(c, ErrPopularQueries, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.PopularQueriesResponse{
			Queries: queries,
		},
	})
}
