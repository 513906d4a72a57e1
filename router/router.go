package router

import (
	"servicedesk-backend/controller"
	"servicedesk-backend/middleware"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Article    *controller.ArticleController
	Search     *controller.SearchController
	Index      *controller.IndexController
	Credential *controller.CredentialController
	Suggestion *controller.SuggestionController
	Attachment *controller.AttachmentController
}

func Register(ctls Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		articles := api.Group("/articles")
		{
			articles.GET("", ctls.Article.List)
			articles.POST("", ctls.Article.Create)
			articles.POST("/from-ticket/:ticket_id", ctls.Article.CreateFromTicket)
			articles.GET("/:id", ctls.Article.Get)
			articles.PATCH("/:id", ctls.Article.Patch)
			articles.DELETE("/:id", ctls.Article.Delete)
			articles.POST("/:id/normalize/preview", ctls.Article.NormalizePreview)
			articles.POST("/:id/normalize/confirm", ctls.Article.NormalizeConfirm)
			articles.POST("/:id/publish", ctls.Article.Publish)
			articles.POST("/:id/archive", ctls.Article.Archive)
			articles.POST("/:id/feedback", ctls.Article.Feedback)
			articles.GET("/:id/attachments/download-link", ctls.Attachment.GetDownloadLink)
			articles.GET("/:id/attachments/upload-policy", ctls.Attachment.GetUploadPolicy)
		}

		search := api.Group("/search")
		{
			search.GET("", ctls.Search.Search)
			search.GET("/autocomplete", ctls.Search.Autocomplete)
			search.GET("/popular", ctls.Search.Popular)
		}

		index := api.Group("/index")
		{
			index.POST("/rebuild", ctls.Index.Rebuild)
			index.POST("/article/:id", ctls.Index.IndexArticle)
		}

		credentials := api.Group("/credentials")
		{
			credentials.GET("", ctls.Credential.List)
			credentials.POST("", ctls.Credential.Create)
			credentials.POST("/:id/reveal", ctls.Credential.Reveal)
			credentials.PUT("/:id", ctls.Credential.Update)
			credentials.DELETE("/:id", ctls.Credential.Delete)
		}

		api.POST("/tickets/:id/suggestions", ctls.Suggestion.Suggest)
	}

	return r
}
