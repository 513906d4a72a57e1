package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"servicedesk-backend/apperr"
	"servicedesk-backend/response"

	"github.com/gin-gonic/gin"
)

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrCreateArticle   = errors.New("failed to create article")
	ErrGetArticle      = errors.New("failed to get article")
	ErrListArticles    = errors.New("failed to list articles")
	ErrUpdateArticle   = errors.New("failed to update article")
	ErrDeleteArticle   = errors.New("failed to delete article")
	ErrArchiveArticle  = errors.New("failed to archive article")
	ErrPublishArticle  = errors.New("failed to publish article")
	ErrArticleFeedback = errors.New("failed to record article feedback")

	ErrNormalizePreview = errors.New("failed to preview normalization")
	ErrNormalizeConfirm = errors.New("failed to confirm normalization")

	ErrSearchArticles = errors.New("failed to search articles")
	ErrAutocomplete   = errors.New("failed to autocomplete")
	ErrPopularQueries = errors.New("failed to get popular queries")

	ErrIndexArticle = errors.New("failed to index article")
	ErrRebuildIndex = errors.New("failed to rebuild index")

	ErrCreateCredential = errors.New("failed to create credential")
	ErrListCredentials  = errors.New("failed to list credentials")
	ErrRevealCredential = errors.New("failed to reveal credential")
	ErrUpdateCredential = errors.New("failed to update credential")
	ErrDeleteCredential = errors.New("failed to delete credential")

	ErrTicketSuggestions = errors.New("failed to generate ticket suggestions")

	ErrGetDownloadLink = errors.New("failed to get download link")
	ErrGetUploadPolicy = errors.New("failed to get upload policy")
)

// abortWithError 按错误分类映射HTTP状态码，未分类的错误只返回兜底文案
func abortWithError(c *gin.Context, fallback error, err error) {
	slog.Error(fallback.Error(), "err", err)

	status := http.StatusInternalServerError
	msg := fallback.Error()

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case apperr.KindAuthorization:
		status = http.StatusForbidden
		msg = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case apperr.KindUpstream:
		status = http.StatusBadGateway
		msg = err.Error()
	case apperr.KindConfiguration:
		status = http.StatusInternalServerError
		msg = err.Error()
	}

	c.AbortWithStatusJSON(status, response.Response{
		Msg: msg,
	})
}
