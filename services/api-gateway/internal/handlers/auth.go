package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(c *clients.Clients, timeout time.Duration) *AuthHandler {
	return &AuthHandler{base: newBase(c, timeout)}
}

// Register always creates a FAN account. Celebrities are promoted through an
// approved application and admins by another admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Auth.Register(ctx, &authv1.RegisterRequest{Email: in.Email, Password: in.Password, Name: in.Name})
	if err != nil {
		writeErr(c, err)
		return
	}
	if _, err := h.c.User.SyncFromAuth(ctx, &userv1.SyncFromAuthRequest{
		Id:    res.User.Id,
		Email: res.User.Email,
		Name:  res.User.Name,
		Role:  auth.RoleFan,
	}); err != nil {
		// GetMe recreates the profile on first use.
		log.Printf("[gateway] sync profile for %s: %v", res.User.Id, err)
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Auth.Login(ctx, &authv1.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Auth.Refresh(ctx, &authv1.RefreshRequest{RefreshToken: in.RefreshToken})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
