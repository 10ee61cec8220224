package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/wizard"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/drafts"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

// DraftHandler drives the booking wizard on the server, one draft per
// booking in progress.
type DraftHandler struct {
	checkout
	store *drafts.Store
}

func NewDraftHandler(c *clients.Clients, cfg config.App, store *drafts.Store) *DraftHandler {
	return &DraftHandler{checkout: checkout{base: newBase(c, cfg.UpstreamTimeout), cfg: cfg}, store: store}
}

// POST /api/drafts {celebrity_id}
func (h *DraftHandler) Create(c *gin.Context) {
	var in struct {
		CelebrityID string `json:"celebrity_id" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	celeb, err := h.bookableCelebrity(ctx, in.CelebrityID)
	if err != nil {
		writeErr(c, err)
		return
	}
	caller := middlewares.Caller(c)
	w := h.newWizard(celeb, &draftPayments{k: h.checkout, customer: caller, celeb: celeb})
	d := h.store.Create(caller.ID, celeb.Id, w)
	c.JSON(http.StatusCreated, d.View())
}

func (h *DraftHandler) draft(c *gin.Context) (*drafts.Draft, bool) {
	d, err := h.store.Get(c.Param("id"), middlewares.Caller(c).ID)
	if errors.Is(err, drafts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return d, true
}

// GET /api/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	if d, ok := h.draft(c); ok {
		c.JSON(http.StatusOK, d.View())
	}
}

// PUT /api/drafts/:id replaces the form.
func (h *DraftHandler) Update(c *gin.Context) {
	var f wizard.Form
	if !bindJSON(c, &f) {
		return
	}
	h.run(c, func(w *wizard.Wizard) error { return w.Update(f) })
}

// POST /api/drafts/:id/next
func (h *DraftHandler) Next(c *gin.Context) {
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	h.run(c, func(w *wizard.Wizard) error { return w.Next(ctx) })
}

// POST /api/drafts/:id/back
func (h *DraftHandler) Back(c *gin.Context) {
	h.run(c, func(w *wizard.Wizard) error { return w.Back() })
}

// POST /api/drafts/:id/confirm {card_token}
func (h *DraftHandler) Confirm(c *gin.Context) {
	var in struct {
		CardToken string `json:"card_token" binding:"required"`
	}
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	h.run(c, func(w *wizard.Wizard) error { return w.Confirm(ctx, in.CardToken) })
}

// POST /api/drafts/:id/dismiss-error
func (h *DraftHandler) DismissError(c *gin.Context) {
	h.run(c, func(w *wizard.Wizard) error {
		w.DismissError()
		return nil
	})
}

// DELETE /api/drafts/:id
func (h *DraftHandler) Cancel(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	ctx, cancel := h.rpcCtx(c)
	defer cancel()
	_ = d.Do(func(w *wizard.Wizard) error {
		w.Abandon(ctx)
		return nil
	})
	if err := h.store.Cancel(c.Param("id"), middlewares.Caller(c).ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) run(c *gin.Context, fn func(w *wizard.Wizard) error) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	if err := d.Do(fn); err != nil {
		writeWizardErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d.View())
}
