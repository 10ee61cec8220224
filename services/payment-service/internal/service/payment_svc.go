package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/processor"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/repository"
)

type PaymentSvc struct {
	repo *repository.IntentRepo
	proc processor.Processor
	pub  mq.EventPublisher
}

func NewPaymentSvc(r *repository.IntentRepo, p processor.Processor, pub mq.EventPublisher) *PaymentSvc {
	return &PaymentSvc{repo: r, proc: p, pub: pub}
}

type CreateIntentInput struct {
	OrderID        string
	OrderNumber    string
	CustomerID     string
	CustomerEmail  string
	Amount         int64
	Currency       string
	IdempotencyKey string
}

// CreateIntent opens a payment intent for an order. A repeated idempotency
// key returns the intent it created the first time when customer and amount
// match, even if the retry arrives with a fresh order.
func (s *PaymentSvc) CreateIntent(ctx context.Context, in CreateIntentInput) (*domain.PaymentIntent, error) {
	if in.OrderID == "" || in.Amount <= 0 {
		return nil, fmt.Errorf("%w: order_id and a positive amount are required", domain.ErrInvalid)
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", domain.ErrInvalid)
	}

	if in.IdempotencyKey != "" {
		prev, err := s.repo.ByIdempotencyKey(ctx, in.IdempotencyKey)
		switch {
		case err == nil:
			if prev.CustomerID != in.CustomerID || prev.Amount != in.Amount {
				return nil, fmt.Errorf("%w: idempotency key reused for a different payment", domain.ErrConflict)
			}
			return prev, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	p := &domain.PaymentIntent{
		ID:            uuid.NewString(),
		OrderID:       in.OrderID,
		OrderNumber:   in.OrderNumber,
		CustomerID:    in.CustomerID,
		CustomerEmail: in.CustomerEmail,
		Amount:        in.Amount,
		Currency:      currency,
		Status:        domain.StatusRequiresPayment,
	}
	p.ClientSecret = clientSecret(p.ID)
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		p.IdempotencyKey = &key
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[payment] intent %s for order %s amount=%d %s", p.ID, p.OrderNumber, p.Amount, p.Currency)
	return p, nil
}

// clientSecret follows the pi_<id>_secret_<random> shape browsers expect.
func clientSecret(id string) string {
	return "pi_" + strings.ReplaceAll(id, "-", "") + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

type ConfirmInput struct {
	ClientSecret string
	CardToken    string
	ReturnURI    string
}

// Confirm charges the card for the intent. A declined card is not an error:
// the returned intent is failed and can be confirmed again with another card.
// A pending charge returns the 3-D Secure authorize URI and settles through
// the webhook.
func (s *PaymentSvc) Confirm(ctx context.Context, in ConfirmInput) (*domain.PaymentIntent, string, error) {
	if in.ClientSecret == "" || in.CardToken == "" {
		return nil, "", fmt.Errorf("%w: client_secret and card_token are required", domain.ErrInvalid)
	}
	p, err := s.repo.ByClientSecret(ctx, in.ClientSecret)
	if err != nil {
		return nil, "", err
	}
	p, err = s.repo.Transition(ctx, p.ID, func(p *domain.PaymentIntent) error {
		if !p.Payable() {
			return fmt.Errorf("%w: intent is %s", domain.ErrConflict, p.Status)
		}
		p.Status = domain.StatusProcessing
		p.FailureCode, p.FailureMessage = "", ""
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	ch, chargeErr := s.proc.CreateCharge(ctx, processor.ChargeRequest{
		Amount:    p.Amount,
		Currency:  p.Currency,
		CardToken: in.CardToken,
		ReturnURI: in.ReturnURI,
		Metadata: map[string]string{
			"intent_id":    p.ID,
			"order_id":     p.OrderID,
			"order_number": p.OrderNumber,
		},
	})
	if chargeErr != nil {
		log.Printf("[payment] charge intent=%s: %v", p.ID, chargeErr)
		p, err = s.repo.Transition(ctx, p.ID, func(p *domain.PaymentIntent) error {
			p.Status = domain.StatusFailed
			p.FailureCode = "create_charge_error"
			p.FailureMessage = chargeErr.Error()
			return nil
		})
		if err != nil {
			return nil, "", err
		}
		s.publish(ctx, events.RKPaymentFailed, p)
		return nil, "", fmt.Errorf("%w: %v", domain.ErrProcessor, chargeErr)
	}

	p, err = s.settle(ctx, p.ID, ch)
	if err != nil {
		return nil, "", err
	}
	if ch.Status == processor.ChargePending {
		return p, ch.AuthorizeURI, nil
	}
	return p, "", nil
}

// settle records the outcome of a charge and publishes it once.
func (s *PaymentSvc) settle(ctx context.Context, intentID string, ch *processor.Charge) (*domain.PaymentIntent, error) {
	var key string
	p, err := s.repo.Transition(ctx, intentID, applyCharge(ch, &key))
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.publish(ctx, key, p)
	}
	return p, nil
}

// applyCharge folds a charge outcome into the intent and stores in key the
// event to publish, if any. Settled intents stay settled.
func applyCharge(ch *processor.Charge, key *string) func(*domain.PaymentIntent) error {
	return func(p *domain.PaymentIntent) error {
		*key = ""
		if p.Status == domain.StatusSucceeded || p.Status == domain.StatusRefunded {
			return nil
		}
		if ch.Status == processor.ChargeFailed && p.Status == domain.StatusFailed && p.ChargeID == ch.ID {
			return nil
		}
		p.ChargeID = ch.ID
		switch ch.Status {
		case processor.ChargeSuccessful:
			p.Status = domain.StatusSucceeded
			p.FailureCode, p.FailureMessage = "", ""
			*key = events.RKPaymentPaid
		case processor.ChargeFailed:
			p.Status = domain.StatusFailed
			p.FailureCode, p.FailureMessage = ch.FailureCode, ch.FailureMessage
			*key = events.RKPaymentFailed
		default:
			p.Status = domain.StatusProcessing
		}
		return nil
	}
}

// ApplyWebhook settles the intent behind a verified processor event. Events
// other than charge.complete are ignored and a replayed event id is a no-op.
func (s *PaymentSvc) ApplyWebhook(ctx context.Context, ev *processor.Event) (*domain.PaymentIntent, error) {
	if ev.Key != processor.EventChargeComplete || ev.Charge == nil {
		return nil, nil
	}
	p, err := s.intentForCharge(ctx, ev.Charge)
	if err != nil {
		return nil, err
	}
	var key string
	p, applied, err := s.repo.TransitionOnce(ctx, p.ID, ev.ID, ev.Key, applyCharge(ev.Charge, &key))
	if err != nil {
		return nil, err
	}
	if applied && key != "" {
		s.publish(ctx, key, p)
	}
	return p, nil
}

func (s *PaymentSvc) intentForCharge(ctx context.Context, ch *processor.Charge) (*domain.PaymentIntent, error) {
	p, err := s.repo.ByChargeID(ctx, ch.ID)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return p, err
	}
	id := ch.Metadata["intent_id"]
	if id == "" {
		return nil, err
	}
	return s.repo.ByID(ctx, id)
}

// RefundOrder refunds the captured payment of a cancelled order. For orders
// not paid yet it cancels the open intents instead, so their client secrets
// can no longer be charged. eventID makes redelivery harmless.
func (s *PaymentSvc) RefundOrder(ctx context.Context, orderID, eventID string) (*domain.PaymentIntent, error) {
	p, err := s.repo.PaidForOrder(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		n, err := s.repo.CancelOpen(ctx, orderID)
		if n > 0 {
			log.Printf("[payment] order %s cancelled before payment, %d intent(s) closed", orderID, n)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	done, err := s.repo.Consumed(ctx, eventID)
	if err != nil || done {
		return nil, err
	}
	refundID, err := s.proc.Refund(ctx, p.ChargeID, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: refund %s: %v", domain.ErrProcessor, p.ChargeID, err)
	}
	p, applied, err := s.repo.TransitionOnce(ctx, p.ID, eventID, events.RKBookingCancelled, func(p *domain.PaymentIntent) error {
		p.Status = domain.StatusRefunded
		p.RefundID = refundID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applied {
		s.publish(ctx, events.RKPaymentRefunded, p)
	}
	return p, nil
}

func (s *PaymentSvc) Get(ctx context.Context, clientSecret, orderID, idemKey string) (*domain.PaymentIntent, error) {
	switch {
	case clientSecret != "":
		return s.repo.ByClientSecret(ctx, clientSecret)
	case orderID != "":
		return s.repo.LatestForOrder(ctx, orderID)
	case idemKey != "":
		return s.repo.ByIdempotencyKey(ctx, idemKey)
	}
	return nil, fmt.Errorf("%w: client_secret, order_id or idempotency_key is required", domain.ErrInvalid)
}

func (s *PaymentSvc) GetCharge(ctx context.Context, chargeID string) (*processor.Charge, error) {
	ch, err := s.proc.RetrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessor, err)
	}
	return ch, nil
}

func (s *PaymentSvc) publish(ctx context.Context, key string, p *domain.PaymentIntent) {
	err := s.pub.PublishJSON(ctx, key, events.Payment{
		IntentID:       p.ID,
		OrderID:        p.OrderID,
		OrderNumber:    p.OrderNumber,
		CustomerID:     p.CustomerID,
		CustomerEmail:  p.CustomerEmail,
		ChargeID:       p.ChargeID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		FailureCode:    p.FailureCode,
		FailureMessage: p.FailureMessage,
	})
	if err != nil {
		log.Printf("[payment] publish %s intent=%s: %v", key, p.ID, err)
	}
}
