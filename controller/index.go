package controller

import (
	"net/http"

	"servicedesk-backend/response"
	"servicedesk-backend/service/indexing"

	"github.com/gin-gonic/gin"
)

type IndexController struct {
	indexer *indexing.Indexer
}

func NewIndexController(indexer *indexing.Indexer) *IndexController {
	return &IndexController{indexer: indexer}
}

func (ctl *IndexController) IndexArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctl.indexer.IndexArticle(c.Request.Context(), id); err != nil {
		abortWithError(c, ErrIndexArticle, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func (ctl *IndexController) Rebuild(c *gin.Context) {
	result, err := ctl.indexer.RebuildAll(c.Request.Context())
	if err != nil {
		abortWithError(c, ErrRebuildIndex, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.RebuildIndexResponse{
			Indexed: result.Indexed,
			Failed:  result.Failed,
			Errors:  errs,
		},
	})
}
