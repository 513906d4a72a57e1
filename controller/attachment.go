package controller

import (
	"net/http"

	"servicedesk-backend/response"
	"servicedesk-backend/service/attachment"

	"github.com/gin-gonic/gin"
)

type AttachmentController struct {
	attachments *attachment.Service
}

func NewAttachmentController(attachments *attachment.Service) *AttachmentController {
	return &AttachmentController{attachments: attachments}
}

func (ctl *AttachmentController) GetDownloadLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	url, err := ctl.attachments.PresignDownloadURL(c.Request.Context(), id, c.Query("file-name"))
	if err != nil {
		abortWithError(c, ErrGetDownloadLink, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.DownloadLinkResponse{
			URL: url,
		},
	})
}

func (ctl *AttachmentController) GetUploadPolicy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: ctl.attachments.UploadPolicyFor(id),
	})
}
