package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/adapter/http/helper"
	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/core/model/response"
	"taskapp/internal/core/port"
)

// AccountHandler serves the authenticated account endpoints under
// /users/me.
type AccountHandler struct {
	svc port.AccountService
}

func NewAccountHandler(svc port.AccountService) *AccountHandler {
	return &AccountHandler{
		svc: svc,
	}
}

func (h *AccountHandler) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

func (h *AccountHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	// Raw fields, not a typed struct: unknown keys must be rejected
	// wholesale, which a struct bind would silently drop.
	var updates map[string]json.RawMessage

	if err := c.ShouldBindJSON(&updates); err != nil {
		helper.SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	updated, err := h.svc.Update(ctx, user, updates)

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserResponse(updated))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	if err := h.svc.Delete(ctx, user); err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

func (h *AccountHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	if err := h.svc.Logout(ctx, user, middleware.CurrentToken(c)); err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, nil, "Logged out")
}

func (h *AccountHandler) LogoutAll(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	if err := h.svc.LogoutAll(ctx, user); err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, nil, "Logged out from all sessions")
}
