package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/adapter/http/helper"
	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

// AvatarHandler serves avatar upload and removal for the authenticated
// account, plus the public fetch endpoint.
type AvatarHandler struct {
	svc        port.AccountService
	transcoder port.AvatarTranscoder
}

func NewAvatarHandler(svc port.AccountService, transcoder port.AvatarTranscoder) *AvatarHandler {
	return &AvatarHandler{
		svc:        svc,
		transcoder: transcoder,
	}
}

func (h *AvatarHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	fileHeader, err := c.FormFile("avatar")

	if err != nil {
		helper.SendBadRequestError(c, "avatar", "Please provide an avatar file")
		return
	}

	if fileHeader.Size > domain.AvatarMaxBytes {
		helper.SendBadRequestError(c, "avatar", "Avatar must be at most 1000000 bytes")
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		helper.SendBadRequestError(c, "avatar", "Please provide an avatar file")
		return
	}

	defer file.Close()

	data, err := io.ReadAll(file)

	if err != nil {
		helper.SendBadRequestError(c, "avatar", "Please provide an avatar file")
		return
	}

	if err := h.svc.SetAvatar(ctx, user, data); err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, nil, "Avatar uploaded")
}

func (h *AvatarHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	if err := h.svc.RemoveAvatar(ctx, user); err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, nil, "Avatar removed")
}

// Fetch serves the stored avatar as a raw image. The endpoint is
// public, it backs <img> tags on profile pages.
func (h *AvatarHandler) Fetch(c *gin.Context) {
	ctx := c.Request.Context()

	data, err := h.svc.AvatarByUUID(ctx, c.Param("uuid"))

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	c.Data(http.StatusOK, h.transcoder.ContentType(), data)
}
