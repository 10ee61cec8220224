package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

type AdminHandler struct {
	base
}

func NewAdminHandler(c *clients.Clients, timeout time.Duration) *AdminHandler {
	return &AdminHandler{base: newBase(c, timeout)}
}

// GET /api/admin/stats gathers the dashboard counters from every backend.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	users, err := h.c.User.GetUserStats(ctx, &userv1.GetUserStatsRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	orders, err := h.c.Book.GetStats(ctx, &bookingv1.GetStatsRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	tickets, err := h.c.Support.GetStats(ctx, &supportv1.GetStatsRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	celebs, err := h.c.Celebrity.GetStats(ctx, &celebrityv1.GetStatsRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users_by_role":        users.ByRole,
		"total_users":          users.Total,
		"active_users":         users.Active,
		"orders_by_status":     orders.OrdersByStatus,
		"total_orders":         orders.TotalOrders,
		"gross_revenue":        orders.GrossRevenue,
		"platform_revenue":     orders.PlatformRevenue,
		"celebrity_revenue":    orders.CelebrityRevenue,
		"tips":                 orders.Tips,
		"open_tickets":         tickets.Open,
		"tickets_by_status":    tickets.ByStatus,
		"celebrities":          celebs.Celebrities,
		"active_celebrities":   celebs.ActiveCelebrities,
		"vip_celebrities":      celebs.VipCelebrities,
		"pending_applications": celebs.PendingApplications,
	})
}

// GET /api/settings and GET /api/admin/settings
func (h *AdminHandler) Settings(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.GetSettings(ctx, &userv1.GetSettingsRequest{})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/admin/settings {"settings": {key: value}}
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var in userv1.UpdateSettingsRequest
	if !bindJSON(c, &in) {
		return
	}
	if len(in.Settings) == 0 {
		badRequest(c, "settings are required")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.User.UpdateSettings(ctx, &in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/celebrity-applications. Refused with 403 while the platform is
// not taking applications.
func (h *AdminHandler) SubmitApplication(c *gin.Context) {
	var in celebrityv1.SubmitApplicationRequest
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	if st, err := h.c.User.GetSettings(ctx, &userv1.GetSettingsRequest{}); err == nil {
		if open, perr := strconv.ParseBool(st.Settings[userv1.SettingApplicationsOpen]); perr == nil && !open {
			c.JSON(http.StatusForbidden, gin.H{"error": "applications are closed"})
			return
		}
	} else {
		log.Printf("[gateway] read settings: %v", err)
	}
	res, err := h.c.Celebrity.SubmitApplication(ctx, &in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/celebrity-applications lists the caller's own applications.
func (h *AdminHandler) MyApplications(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.ListApplications(ctx, &celebrityv1.ListApplicationsRequest{
		Page:     page,
		PageSize: size,
		UserId:   middlewares.Caller(c).ID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/applications?status=
func (h *AdminHandler) Applications(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.ListApplications(ctx, &celebrityv1.ListApplicationsRequest{
		Page:     page,
		PageSize: size,
		Status:   strings.ToUpper(c.Query("status")),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/admin/applications/:id {approve, note?}
// Approval creates the celebrity record, then promotes the applicant's
// account and profile to CELEBRITY.
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	var in struct {
		Approve *bool  `json:"approve" binding:"required"`
		Note    string `json:"note"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Celebrity.ReviewApplication(ctx, &celebrityv1.ReviewApplicationRequest{
		Id:      c.Param("id"),
		Approve: *in.Approve,
		Note:    in.Note,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	if !*in.Approve || res.Application.UserId == "" {
		c.JSON(http.StatusOK, res)
		return
	}

	uid := res.Application.UserId
	if _, err := h.c.Auth.UpdateAccount(ctx, &authv1.UpdateAccountRequest{Id: uid, Role: auth.RoleCelebrity}); err != nil {
		log.Printf("[gateway] promote account %s: %v", uid, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "application approved but the account could not be promoted: " + err.Error(), "application": res.Application})
		return
	}
	if _, err := h.c.User.AdminUpdateUser(ctx, &userv1.AdminUpdateUserRequest{Id: uid, Role: auth.RoleCelebrity}); err != nil {
		log.Printf("[gateway] promote profile %s: %v", uid, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "application approved but the profile could not be promoted: " + err.Error(), "application": res.Application})
		return
	}
	c.JSON(http.StatusOK, res)
}
