package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/request"
	"servicedesk-backend/response"
	"servicedesk-backend/service/article"
	"servicedesk-backend/service/normalization"

	"github.com/gin-gonic/gin"
)

type ArticleController struct {
	articles   *article.Service
	normalizer *normalization.Service
}

func NewArticleController(articles *article.Service, normalizer *normalization.Service) *ArticleController {
	return &ArticleController{
		articles:   articles,
		normalizer: normalizer,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		slog.Error(ErrParseRequest.Error(), "param", name, "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return 0, false
	}
	return uint(id), true
}

func (ctl *ArticleController) Create(c *gin.Context) {
	var req request.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	created, err := ctl.articles.Create(article.CreateParams{
		Title:        req.Title,
		Summary:      req.Summary,
		RawContent:   req.RawContent,
		ArticleType:  req.ArticleType,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Tags:         req.Tags,
		EquipmentIDs: req.EquipmentIDs,
		Author:       c.GetString("email"),
	})
	if err != nil {
		abortWithError(c, ErrCreateArticle, err)
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: created,
	})
}

func (ctl *ArticleController) CreateFromTicket(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "ticket_id")
	if !ok {
		return
	}

	created, err := ctl.articles.CreateFromTicket(ticketID, c.GetString("email"))
	if err != nil {
		abortWithError(c, ErrCreateArticle, err)
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: created,
	})
}

func (ctl *ArticleController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := dao.GetArticleByID(id)
	if err != nil {
		abortWithError(c, ErrGetArticle, err)
		return
	}
	if found == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrGetArticle.Error(),
		})
		return
	}

	if err := dao.IncrementArticleViews(id); err != nil {
		slog.Error("Failed to increment article views", "article_id", id, "err", err)
	}

	c.JSON(http.StatusOK, response.Response{
		Data: found,
	})
}

func (ctl *ArticleController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	articles, total, err := dao.ListArticles(dao.ArticleListFilter{
		Status:      model.ArticleStatus(c.Query("status")),
		Category:    c.Query("category"),
		ArticleType: c.Query("type"),
		Difficulty:  c.Query("difficulty"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		abortWithError(c, ErrListArticles, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.ListArticlesResponse{
			Items: articles,
			Total: total,
		},
	})
}

func (ctl *ArticleController) Patch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.PatchArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	updated, err := ctl.articles.Patch(id, article.PatchParams{
		Title:             req.Title,
		Summary:           req.Summary,
		RawContent:        req.RawContent,
		NormalizedContent: req.NormalizedContent,
		ArticleType:       req.ArticleType,
		Category:          req.Category,
		Difficulty:        req.Difficulty,
		Tags:              req.Tags,
		EquipmentIDs:      req.EquipmentIDs,
		LinkedArticleIDs:  req.LinkedArticleIDs,
		IsTypical:         req.IsTypical,
		Pinned:            req.Pinned,
		Featured:          req.Featured,
		Editor:            c.GetString("email"),
	})
	if err != nil {
		abortWithError(c, ErrUpdateArticle, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: updated,
	})
}

func (ctl *ArticleController) Archive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	archived, err := ctl.articles.Archive(id)
	if err != nil {
		abortWithError(c, ErrArchiveArticle, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: archived,
	})
}

func (ctl *ArticleController) Publish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	published, err := ctl.articles.Publish(id)
	if err != nil {
		abortWithError(c, ErrPublishArticle, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: published,
	})
}

func (ctl *ArticleController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctl.articles.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, ErrDeleteArticle, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func (ctl *ArticleController) Feedback(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	updated, err := ctl.articles.Feedback(c.Request.Context(), id, c.GetString("email"), *req.Helped)
	if err != nil {
		abortWithError(c, ErrArticleFeedback, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: updated,
	})
}

func (ctl *ArticleController) NormalizePreview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	preview, err := ctl.normalizer.Preview(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, ErrNormalizePreview, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: preview,
	})
}

func (ctl *ArticleController) NormalizeConfirm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.ConfirmNormalizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	normalizedBy := model.NormalizedByLLM
	if req.NormalizedBy == string(model.NormalizedByUser) {
		normalizedBy = model.NormalizedByUser
	}

	confirmed, err := ctl.normalizer.Confirm(c.Request.Context(), id, req.NormalizedText, normalizedBy)
	if err != nil {
		abortWithError(c, ErrNormalizeConfirm, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: confirmed,
	})
}
