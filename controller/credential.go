package controller

import (
	"log/slog"
	"net/http"

	"servicedesk-backend/model"
	"servicedesk-backend/request"
	"servicedesk-backend/response"
	"servicedesk-backend/service/vault"

	"github.com/gin-gonic/gin"
)

type CredentialController struct {
	vault *vault.Vault
}

func NewCredentialController(credentialVault *vault.Vault) *CredentialController {
	return &CredentialController{vault: credentialVault}
}

func toCredentialResponse(credential model.Credential) response.CredentialResponse {
	return response.CredentialResponse{
		ID:         credential.ID,
		EntityKind: credential.EntityRef.EntityKind,
		EntityID:   credential.EntityRef.EntityID,
		Username:   credential.Username,
		CreatedAt:  credential.CreatedAt,
	}
}

func (ctl *CredentialController) Create(c *gin.Context) {
	var req request.CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	credential, err := ctl.vault.Create(c.GetString("email"), model.EntityRef{
		EntityKind: req.EntityKind,
		EntityID:   req.EntityID,
	}, req.Username, req.Secret, req.MasterPassword)
	if err != nil {
		abortWithError(c, ErrCreateCredential, err)
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: toCredentialResponse(*credential),
	})
}

func (ctl *CredentialController) List(c *gin.Context) {
	credentials, err := ctl.vault.List(c.GetString("email"), c.Query("entity_kind"), c.Query("entity_id"))
	if err != nil {
		abortWithError(c, ErrListCredentials, err)
		return
	}

	resp := response.ListCredentialsResponse{
		Credentials: make([]response.CredentialResponse, 0, len(credentials)),
	}
	for _, credential := range credentials {
		resp.Credentials = append(resp.Credentials, toCredentialResponse(credential))
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func (ctl *CredentialController) Reveal(c *gin.Context) {
	var req request.RevealCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	secret, err := ctl.vault.Reveal(c.GetString("email"), c.Param("id"), req.MasterPassword)
	if err != nil {
		abortWithError(c, ErrRevealCredential, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.RevealCredentialResponse{
			Secret: secret,
		},
	})
}

func (ctl *CredentialController) Update(c *gin.Context) {
	var req request.UpdateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	err := ctl.vault.Update(c.GetString("email"), c.Param("id"), req.Username, req.Secret, req.MasterPassword)
	if err != nil {
		abortWithError(c, ErrUpdateCredential, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func (ctl *CredentialController) Delete(c *gin.Context) {
	if err := ctl.vault.Delete(c.GetString("email"), c.Param("id")); err != nil {
		abortWithError(c, ErrDeleteCredential, err)
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}
