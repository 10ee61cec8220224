package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
)

type UserHandler struct {
	base
}

func NewUserHandler(c *clients.Clients, timeout time.Duration) *UserHandler {
	return &UserHandler{base: newBase(c, timeout)}
}

// GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.GetMe(ctx, &userv1.GetMeRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var in struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		AvatarURL string `json:"avatar_url"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.UpdateUser(ctx, &userv1.UpdateUserRequest{
		Name: in.Name, Phone: in.Phone, AvatarUrl: in.AvatarURL,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/users?page=&page_size=&q=&role=
func (h *UserHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.ListUsers(ctx, &userv1.ListUsersRequest{
		Page:     page,
		PageSize: size,
		Query:    c.Query("q"),
		Role:     c.Query("role"),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.GetUser(ctx, &userv1.GetUserRequest{Id: c.Param("id")})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/admin/users/:id {role?, active?}. The account in auth-service is
// changed first so a deactivated user cannot log in even if the profile
// update fails.
func (h *UserHandler) AdminUpdate(c *gin.Context) {
	var in struct {
		Role   string `json:"role"`
		Active *bool  `json:"active"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if in.Role == "" && in.Active == nil {
		badRequest(c, "nothing to update")
		return
	}
	id := c.Param("id")
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	if _, err := h.c.Auth.UpdateAccount(ctx, &authv1.UpdateAccountRequest{Id: id, Role: in.Role, Active: in.Active}); err != nil {
		writeErr(c, err)
		return
	}
	res, err := h.c.User.AdminUpdateUser(ctx, &userv1.AdminUpdateUserRequest{Id: id, Role: in.Role, Active: in.Active})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
