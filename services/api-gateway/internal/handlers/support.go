package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

type SupportHandler struct {
	base
}

func NewSupportHandler(c *clients.Clients, timeout time.Duration) *SupportHandler {
	return &SupportHandler{base: newBase(c, timeout)}
}

// POST /api/support. Anonymous callers are welcome; a signed-in caller is
// linked to the ticket.
func (h *SupportHandler) Create(c *gin.Context) {
	var in supportv1.CreateTicketRequest
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Support.CreateTicket(ctx, &in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ticket_number": res.Ticket.TicketNumber,
		"status":        res.Ticket.Status,
		"ticket":        res.Ticket,
	})
}

// GET /api/support?ticketNumber=&email=
func (h *SupportHandler) Lookup(c *gin.Context) {
	number := strings.TrimSpace(c.Query("ticketNumber"))
	email := strings.TrimSpace(c.Query("email"))
	if number == "" || email == "" {
		badRequest(c, "ticketNumber and email are required")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Support.LookupTicket(ctx, &supportv1.LookupTicketRequest{TicketNumber: number, Email: email})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/support?status=&priority=&q=
func (h *SupportHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Support.ListTickets(ctx, &supportv1.ListTicketsRequest{
		Page:     page,
		PageSize: size,
		Status:   strings.ToUpper(c.Query("status")),
		Priority: strings.ToLower(c.Query("priority")),
		Query:    c.Query("q"),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/admin/support/:id/responses {message}
func (h *SupportHandler) Respond(c *gin.Context) {
	var in struct {
		Message string `json:"message" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Support.RespondToTicket(ctx, &supportv1.RespondToTicketRequest{
		Id:         c.Param("id"),
		AuthorName: middlewares.CallerName(c),
		Message:    in.Message,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PATCH /api/admin/support/:id {status?, priority?}
func (h *SupportHandler) Update(c *gin.Context) {
	var in struct {
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if in.Status == "" && in.Priority == "" {
		badRequest(c, "nothing to update")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Support.UpdateTicketStatus(ctx, &supportv1.UpdateTicketStatusRequest{
		Id:       c.Param("id"),
		Status:   strings.ToUpper(in.Status),
		Priority: in.Priority,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
