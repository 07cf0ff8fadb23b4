package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/auth"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/util"
)

// Register creates an account and returns a token for it
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !util.BindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		util.RespondWithAPIError(c, authError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges a username and password for a token
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !util.BindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		util.RespondWithAPIError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's user record
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	user, err := h.store.Users.Get(c.Request.Context(), identity.ID)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, user)
}

func authError(err error) *apperrors.APIError {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return apperrors.Conflict(err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.Unauthenticated("invalid username or password")
	case errors.Is(err, auth.ErrInactiveUser):
		return apperrors.Forbidden(err.Error())
	default:
		return apperrors.FromError(err, "user")
	}
}
