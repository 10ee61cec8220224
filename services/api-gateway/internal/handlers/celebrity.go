package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

type CelebrityHandler struct {
	base
}

func NewCelebrityHandler(c *clients.Clients, timeout time.Duration) *CelebrityHandler {
	return &CelebrityHandler{base: newBase(c, timeout)}
}

// GET /api/celebrities?q=&category=&vip=true
func (h *CelebrityHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.ListCelebrities(ctx, &celebrityv1.ListCelebritiesRequest{
		Page:     page,
		PageSize: size,
		Query:    c.Query("q"),
		Category: c.Query("category"),
		VipOnly:  c.Query("vip") == "true",
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/celebrities/:ref where ref is an id or a slug.
func (h *CelebrityHandler) Get(c *gin.Context) {
	ref := c.Param("ref")
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.GetCelebrity(ctx, &celebrityv1.GetCelebrityRequest{Id: ref})
	if err != nil {
		res, err = h.c.Celebrity.GetCelebrity(ctx, &celebrityv1.GetCelebrityRequest{Slug: ref})
	}
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.Celebrity.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "celebrity not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/celebrity/profile
func (h *CelebrityHandler) MyProfile(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := myCelebrity(ctx, h.c, middlewares.Caller(c).ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, celebrityv1.CelebrityResponse{Celebrity: celeb})
}

// PUT /api/celebrity/profile
func (h *CelebrityHandler) UpdateProfile(c *gin.Context) {
	var in celebrityv1.UpdateProfileRequest
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.UpdateProfile(ctx, &in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/celebrities lists active and inactive records.
func (h *CelebrityHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.ListCelebrities(ctx, &celebrityv1.ListCelebritiesRequest{
		Page:            page,
		PageSize:        size,
		Query:           c.Query("q"),
		Category:        c.Query("category"),
		VipOnly:         c.Query("vip") == "true",
		IncludeInactive: true,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/admin/celebrities
func (h *CelebrityHandler) Create(c *gin.Context) {
	var in celebrityv1.CreateCelebrityRequest
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.CreateCelebrity(ctx, &in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PATCH /api/admin/celebrities/:id {is_vip?, active?}
func (h *CelebrityHandler) SetTier(c *gin.Context) {
	var in struct {
		IsVIP  *bool `json:"is_vip"`
		Active *bool `json:"active"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if in.IsVIP == nil && in.Active == nil {
		badRequest(c, "nothing to update")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.SetTier(ctx, &celebrityv1.SetTierRequest{Id: c.Param("id"), IsVip: in.IsVIP, Active: in.Active})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// myCelebrity resolves the celebrity record owned by userID.
func myCelebrity(ctx context.Context, c *clients.Clients, userID string) (*celebrityv1.Celebrity, error) {
	res, err := c.Celebrity.GetByUser(ctx, &celebrityv1.GetByUserRequest{UserId: userID})
	if err != nil {
		return nil, err
	}
	return res.Celebrity, nil
}
