package httpx

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiaorakahi/marketplace/services/payment-service/internal/processor"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/service"
)

type WebhookServer struct {
	proc processor.Processor
	svc  *service.PaymentSvc
}

func NewWebhookServer(p processor.Processor, svc *service.PaymentSvc) *WebhookServer {
	return &WebhookServer{proc: p, svc: svc}
}

type incomingEvent struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

func (s *WebhookServer) Register(r gin.IRouter) {
	r.POST("/webhooks/omise", s.Handle)
}

// Handle trusts nothing in the body but the event id: the event itself is
// fetched back from the processor.
func (s *WebhookServer) Handle(c *gin.Context) {
	var inc incomingEvent
	if err := c.ShouldBindJSON(&inc); err != nil || inc.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ev, err := s.proc.VerifyEvent(c.Request.Context(), inc.ID)
	if err != nil {
		log.Printf("[webhook] verify event %s: %v", inc.ID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := s.svc.ApplyWebhook(c.Request.Context(), ev)
	if err != nil {
		// non-2xx makes the processor retry delivery
		log.Printf("[webhook] apply %s key=%s: %v", ev.ID, ev.Key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retry"})
		return
	}
	if p != nil {
		log.Printf("[webhook] %s intent=%s status=%s", ev.Key, p.ID, p.Status)
	} else {
		log.Printf("[webhook] skip %s key=%s", ev.ID, ev.Key)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
