package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

type BookingHandler struct {
	base
}

func NewBookingHandler(c *clients.Clients, timeout time.Duration) *BookingHandler {
	return &BookingHandler{base: newBase(c, timeout)}
}

// GET /api/orders?status=
func (h *BookingHandler) MyOrders(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.ListOrders(ctx, &bookingv1.ListOrdersRequest{
		Page:       page,
		PageSize:   size,
		CustomerId: middlewares.Caller(c).ID,
		Status:     strings.ToUpper(c.Query("status")),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/orders/:id answers 404 for somebody else's order.
func (h *BookingHandler) MyOrder(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.GetOrder(ctx, &bookingv1.GetOrderRequest{Id: c.Param("id")})
	if err != nil {
		writeErr(c, err)
		return
	}
	if res.Order.CustomerId != middlewares.Caller(c).ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/orders/:id/review {approve, feedback?}
func (h *BookingHandler) Review(c *gin.Context) {
	var in struct {
		Approve  *bool  `json:"approve" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.ReviewVideo(ctx, &bookingv1.ReviewVideoRequest{
		Id:         c.Param("id"),
		CustomerId: middlewares.Caller(c).ID,
		Approve:    *in.Approve,
		Feedback:   in.Feedback,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/celebrity/booking-requests?status=
func (h *BookingHandler) Requests(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := myCelebrity(ctx, h.c, middlewares.Caller(c).ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	res, err := h.c.Book.ListOrders(ctx, &bookingv1.ListOrdersRequest{
		Page:        page,
		PageSize:    size,
		CelebrityId: celeb.Id,
		Status:      strings.ToUpper(c.Query("status")),
		PaidOnly:    true,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/celebrity/booking-requests/:id {action: accept|decline, reason?}
func (h *BookingHandler) Respond(c *gin.Context) {
	var in struct {
		Action string `json:"action" binding:"required"`
		Reason string `json:"reason"`
	}
	if !bindJSON(c, &in) {
		return
	}
	action := strings.ToLower(strings.TrimSpace(in.Action))
	if action != bookingv1.ActionAccept && action != bookingv1.ActionDecline {
		badRequest(c, "action must be accept or decline")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := myCelebrity(ctx, h.c, middlewares.Caller(c).ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	res, err := h.c.Book.RespondToRequest(ctx, &bookingv1.RespondToRequestRequest{
		Id:          c.Param("id"),
		CelebrityId: celeb.Id,
		Action:      action,
		Reason:      in.Reason,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/celebrity/booking-requests/:id/video {video_url}
func (h *BookingHandler) Deliver(c *gin.Context) {
	var in struct {
		VideoURL string `json:"video_url" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := myCelebrity(ctx, h.c, middlewares.Caller(c).ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	res, err := h.c.Book.DeliverVideo(ctx, &bookingv1.DeliverVideoRequest{
		Id:          c.Param("id"),
		CelebrityId: celeb.Id,
		VideoUrl:    in.VideoURL,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/celebrity/earnings
func (h *BookingHandler) Earnings(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := myCelebrity(ctx, h.c, middlewares.Caller(c).ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	res, err := h.c.Book.GetEarnings(ctx, &bookingv1.GetEarningsRequest{CelebrityId: celeb.Id})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/bookings?status=&customer_id=&celebrity_id=
func (h *BookingHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.ListOrders(ctx, &bookingv1.ListOrdersRequest{
		Page:        page,
		PageSize:    size,
		CustomerId:  c.Query("customer_id"),
		CelebrityId: c.Query("celebrity_id"),
		Status:      strings.ToUpper(c.Query("status")),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/bookings/:id
func (h *BookingHandler) AdminGet(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.GetOrder(ctx, &bookingv1.GetOrderRequest{Id: c.Param("id")})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/admin/bookings/:id {status: CANCELLED|COMPLETED, reason?}
func (h *BookingHandler) AdminUpdate(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if !bindJSON(c, &in) {
		return
	}
	st := strings.ToUpper(strings.TrimSpace(in.Status))
	if st != bookingv1.StatusCancelled && st != bookingv1.StatusCompleted {
		badRequest(c, "status must be CANCELLED or COMPLETED")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Book.UpdateStatus(ctx, &bookingv1.UpdateStatusRequest{Id: c.Param("id"), Status: st, Reason: in.Reason})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
