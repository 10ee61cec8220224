package handlers

import (
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/pricing"
	"github.com/kiaorakahi/marketplace/pkg/wizard"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/idempotency"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

type PaymentHandler struct {
	checkout
	idem *idempotency.Store
}

func NewPaymentHandler(c *clients.Clients, cfg config.App, idem *idempotency.Store) *PaymentHandler {
	return &PaymentHandler{checkout: checkout{base: newBase(c, cfg.UpstreamTimeout), cfg: cfg}, idem: idem}
}

type bookingDetails struct {
	RecipientName string `json:"recipient_name"`
	Occasion      string `json:"occasion"`
	Message       string `json:"message"`
	Instructions  string `json:"instructions"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ServiceType   string `json:"service_type"`
}

type createIntentBody struct {
	CelebrityID string             `json:"celebrity_id" binding:"required"`
	Amount      int64              `json:"amount"`
	TipAmount   int64              `json:"tip_amount"`
	Booking     bookingDetails     `json:"booking"`
	Lines       []wizard.Line      `json:"lines"`
	Split       *pricing.Breakdown `json:"split"`
}

// addOnCodes picks the add-ons out of client-side summary lines.
func addOnCodes(lines []wizard.Line) []string {
	var codes []string
	for _, l := range lines {
		switch l.Code {
		case "video", "tip", "":
		default:
			codes = append(codes, l.Code)
		}
	}
	return codes
}

// POST /api/create-payment-intent
// The order is priced again from the celebrity's current price and the add-on
// catalogue. A client amount that disagrees is rejected.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var in createIntentBody
	if !bindJSON(c, &in) {
		return
	}
	if err := pricing.Validate(in.Amount, in.TipAmount); err != nil {
		badRequest(c, err.Error())
		return
	}
	b := in.Booking
	form := wizard.Form{
		RecipientName: strings.TrimSpace(b.RecipientName),
		Occasion:      strings.TrimSpace(b.Occasion),
		Message:       strings.TrimSpace(b.Message),
		Instructions:  strings.TrimSpace(b.Instructions),
		ServiceType:   b.ServiceType,
		AddOns:        addOnCodes(in.Lines),
		TipAmount:     in.TipAmount,
		Email:         strings.TrimSpace(b.Email),
		Phone:         strings.TrimSpace(b.Phone),
	}
	if form.RecipientName == "" || form.Occasion == "" || form.Message == "" {
		writeWizardErr(c, wizard.ErrIncomplete)
		return
	}
	if !wizard.ValidEmail(form.Email) || !wizard.ValidPhone(form.Phone) {
		writeWizardErr(c, wizard.ErrContact)
		return
	}

	caller := middlewares.Caller(c)
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	scoped := caller.ID + ":" + key
	if key != "" {
		prev, err := h.idem.Begin(scoped)
		if errors.Is(err, idempotency.ErrInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if prev != nil {
			c.JSON(prev.Status, prev.Body)
			return
		}
	}
	finished := false
	defer func() {
		if key != "" && !finished {
			h.idem.Abandon(scoped)
		}
	}()

	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	if !h.bookingsOpen(ctx) {
		writeWizardErr(c, errBookingsPaused)
		return
	}
	celeb, err := h.bookableCelebrity(ctx, in.CelebrityID)
	if err != nil {
		writeErr(c, err)
		return
	}
	w := h.newWizard(celeb, nil)
	if err := w.Update(form); err != nil {
		writeWizardErr(c, err)
		return
	}
	q := w.Quote()
	if q.Total != in.Amount {
		badRequest(c, fmt.Sprintf("amount %d does not match the order total %d", in.Amount, q.Total))
		return
	}
	if in.Split != nil && (in.Split.CelebrityShare != q.Split.CelebrityShare || in.Split.TotalPlatformShare != q.Split.TotalPlatformShare) {
		log.Printf("[gateway] client split differs for celebrity %s: client=%d/%d server=%d/%d", celeb.Id,
			in.Split.CelebrityShare, in.Split.TotalPlatformShare, q.Split.CelebrityShare, q.Split.TotalPlatformShare)
	}

	var intent wizard.Intent
	var prev *paymentv1.Intent
	if key != "" {
		if prev, err = h.intentByKey(ctx, scoped); err != nil {
			writeErr(c, err)
			return
		}
	}
	switch {
	case prev != nil && prev.Amount != q.Total:
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency key was used for a different payment"})
		return
	case prev != nil:
		intent = wizard.Intent{ClientSecret: prev.ClientSecret, OrderID: prev.OrderId, OrderNumber: prev.OrderNumber, Amount: prev.Amount}
	default:
		if intent, _, err = h.placeOrder(ctx, caller, celeb, q, form, idemKey(key, scoped)); err != nil {
			writeErr(c, err)
			return
		}
	}
	resp := gin.H{
		"client_secret": intent.ClientSecret,
		"order_id":      intent.OrderID,
		"order_number":  intent.OrderNumber,
		"amount":        intent.Amount,
		"currency":      h.cfg.Currency,
		"lines":         q.Lines,
		"split":         q.Split,
	}
	if key != "" {
		h.idem.Finish(scoped, idempotency.Result{Status: http.StatusOK, Body: resp})
		finished = true
	}
	c.JSON(http.StatusOK, resp)
}

func idemKey(key, scoped string) string {
	if key == "" {
		return ""
	}
	return scoped
}

// POST /api/payments/confirm {client_secret, card_token}
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var in struct {
		ClientSecret string `json:"client_secret" binding:"required"`
		CardToken    string `json:"card_token" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	if err := h.ownIntent(c, in.ClientSecret); err != nil {
		return
	}
	res, err := h.confirm(ctx, in.ClientSecret, in.CardToken)
	if err != nil {
		writeErr(c, err)
		return
	}
	body := gin.H{"status": res.Intent.Status, "order_number": res.Intent.OrderNumber}
	switch {
	case res.AuthorizeUri != "":
		body["authorize_uri"] = res.AuthorizeUri
		c.JSON(http.StatusAccepted, body)
	case res.Intent.Status == intentSucceeded:
		c.JSON(http.StatusOK, body)
	default:
		body["error"] = strings.TrimSpace(res.Intent.FailureCode + " " + res.Intent.FailureMessage)
		c.JSON(http.StatusPaymentRequired, body)
	}
}

// GET /api/payments/status?client_secret=
func (h *PaymentHandler) Status(c *gin.Context) {
	secret := c.Query("client_secret")
	if secret == "" {
		badRequest(c, "client_secret is required")
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Pay.GetIntent(ctx, &paymentv1.GetIntentRequest{ClientSecret: secret})
	if err != nil {
		writeErr(c, err)
		return
	}
	if res.Intent.CustomerId != middlewares.Caller(c).ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ownIntent answers 404 unless the caller created the intent.
func (h *PaymentHandler) ownIntent(c *gin.Context, secret string) error {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	res, err := h.c.Pay.GetIntent(ctx, &paymentv1.GetIntentRequest{ClientSecret: secret})
	if err != nil {
		writeErr(c, err)
		return err
	}
	if res.Intent.CustomerId != middlewares.Caller(c).ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return errors.New("not owner")
	}
	return nil
}

// GET /payments/return is where the issuer sends the browser after 3-D Secure.
func (h *PaymentHandler) Return(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, `<html><body>
<h3>Payment submitted</h3>
<p>Reference: %s</p>
<p>Your order updates as soon as the card issuer confirms the charge.</p>
</body></html>`, html.EscapeString(c.Query("charge_id")))
}
