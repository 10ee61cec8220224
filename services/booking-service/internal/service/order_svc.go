package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/pricing"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/repository"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type OrderSvc struct {
	repo *repository.OrderRepo
	pub  mq.EventPublisher
	now  func() time.Time
}

func NewOrderSvc(r *repository.OrderRepo, pub mq.EventPublisher) *OrderSvc {
	return &OrderSvc{repo: r, pub: pub, now: time.Now}
}

type CreateInput struct {
	CelebrityID     string
	CelebrityUserID string
	CustomerID      string
	CustomerEmail   string
	CustomerPhone   string
	ServiceType     string
	RecipientName   string
	Occasion        string
	Message         string
	Instructions    string
	Amount          int64
	TipAmount       int64
	Currency        string
	IsVIP           bool
	Lines           []domain.Line
}

// Create stores a PENDING_PAYMENT order. The split is always recomputed here
// from amount, tip and tier.
func (s *OrderSvc) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if in.CelebrityID == "" || in.CustomerID == "" {
		return nil, fmt.Errorf("%w: celebrity and customer are required", domain.ErrInvalid)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalid)
	}
	if err := pricing.Validate(in.Amount, in.TipAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	if strings.TrimSpace(in.RecipientName) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: recipient and message are required", domain.ErrInvalid)
	}
	var sum int64
	for _, l := range in.Lines {
		sum += l.Amount
	}
	if len(in.Lines) > 0 && sum != in.Amount {
		return nil, fmt.Errorf("%w: lines add up to %d, amount is %d", domain.ErrInvalid, sum, in.Amount)
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = "nzd"
	}

	split := pricing.Split(in.Amount, in.TipAmount, in.IsVIP)
	o := &domain.Order{
		CelebrityID:     in.CelebrityID,
		CelebrityUserID: in.CelebrityUserID,
		CustomerID:      in.CustomerID,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ServiceType:     in.ServiceType,
		RecipientName:   strings.TrimSpace(in.RecipientName),
		Occasion:        in.Occasion,
		Message:         in.Message,
		Instructions:    in.Instructions,
		Amount:          in.Amount,
		TipAmount:       in.TipAmount,
		Currency:        currency,
		IsVIP:           in.IsVIP,
		Lines:           datatypes.JSONSlice[domain.Line](in.Lines),
		Split:           datatypes.NewJSONType(split),
		CelebrityShare:  split.CelebrityShare,
		PlatformShare:   split.TotalPlatformShare,
		Status:          domain.StatusPendingPayment,
		ApprovalStatus:  domain.ApprovalNone,
	}
	if err := s.repo.Create(ctx, o, s.nextNumber); err != nil {
		return nil, err
	}
	s.publish(ctx, events.RKBookingCreated, o)
	return o, nil
}

// nextNumber draws ORD-<yyyymmdd>-<6 alphanumerics>.
func (s *OrderSvc) nextNumber() string {
	var b strings.Builder
	b.WriteString("ORD-")
	b.WriteString(s.now().UTC().Format("20060102"))
	b.WriteByte('-')
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteByte(numberAlphabet[n.Int64()])
	}
	return b.String()
}

// Respond records the celebrity's answer to a PENDING request. Declining
// cancels the order, which refunds the customer downstream.
func (s *OrderSvc) Respond(ctx context.Context, id, celebrityID, action, reason string) (*domain.Order, error) {
	if action != "accept" && action != "decline" {
		return nil, fmt.Errorf("%w: action must be accept or decline", domain.ErrInvalid)
	}
	o, err := s.repo.Transition(ctx, id, func(o *domain.Order) error {
		if o.CelebrityID != celebrityID {
			return domain.ErrForbidden
		}
		if o.Status != domain.StatusPending {
			return fmt.Errorf("%w: order is %s", domain.ErrConflict, o.Status)
		}
		if action == "accept" {
			o.Status = domain.StatusAccepted
			return nil
		}
		o.Status = domain.StatusCancelled
		o.CancelReason = strings.TrimSpace(reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if o.Status == domain.StatusAccepted {
		s.publish(ctx, events.RKBookingAccepted, o)
	} else {
		s.publish(ctx, events.RKBookingCancelled, o)
	}
	return o, nil
}

func (s *OrderSvc) Deliver(ctx context.Context, id, celebrityID, videoURL string) (*domain.Order, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, fmt.Errorf("%w: video_url is required", domain.ErrInvalid)
	}
	o, err := s.repo.Transition(ctx, id, func(o *domain.Order) error {
		if o.CelebrityID != celebrityID {
			return domain.ErrForbidden
		}
		if o.Status != domain.StatusAccepted {
			return fmt.Errorf("%w: order is %s", domain.ErrConflict, o.Status)
		}
		now := s.now().UTC()
		o.Status = domain.StatusDelivered
		o.ApprovalStatus = domain.ApprovalPending
		o.VideoURL = videoURL
		o.DeliveredAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.RKBookingDelivered, o)
	return o, nil
}

// Review lets the customer approve the delivered video, completing the
// order, or reject it, sending it back to the celebrity.
func (s *OrderSvc) Review(ctx context.Context, id, customerID string, approve bool, feedback string) (*domain.Order, error) {
	o, err := s.repo.Transition(ctx, id, func(o *domain.Order) error {
		if o.CustomerID != customerID {
			return domain.ErrForbidden
		}
		if o.Status != domain.StatusDelivered || o.ApprovalStatus != domain.ApprovalPending {
			return fmt.Errorf("%w: no video awaiting review", domain.ErrConflict)
		}
		o.Feedback = strings.TrimSpace(feedback)
		if approve {
			now := s.now().UTC()
			o.Status = domain.StatusCompleted
			o.ApprovalStatus = domain.ApprovalApproved
			o.CompletedAt = &now
			return nil
		}
		o.Status = domain.StatusAccepted
		o.ApprovalStatus = domain.ApprovalRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	if approve {
		s.publish(ctx, events.RKBookingCompleted, o)
	} else {
		s.publish(ctx, events.RKBookingVideoRejected, o)
	}
	return o, nil
}

// SetStatus is the admin override: cancel any open order or complete a paid one.
func (s *OrderSvc) SetStatus(ctx context.Context, id, status, reason string) (*domain.Order, error) {
	if status != domain.StatusCancelled && status != domain.StatusCompleted {
		return nil, fmt.Errorf("%w: status must be CANCELLED or COMPLETED", domain.ErrInvalid)
	}
	o, err := s.repo.Transition(ctx, id, func(o *domain.Order) error {
		if o.Terminal() {
			return fmt.Errorf("%w: order is already %s", domain.ErrConflict, o.Status)
		}
		if status == domain.StatusCompleted {
			if o.Status == domain.StatusPendingPayment {
				return fmt.Errorf("%w: order is unpaid", domain.ErrConflict)
			}
			now := s.now().UTC()
			o.CompletedAt = &now
			if o.ApprovalStatus == domain.ApprovalPending {
				o.ApprovalStatus = domain.ApprovalApproved
			}
		} else {
			o.CancelReason = strings.TrimSpace(reason)
		}
		o.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	if o.Status == domain.StatusCancelled {
		s.publish(ctx, events.RKBookingCancelled, o)
	} else {
		s.publish(ctx, events.RKBookingCompleted, o)
	}
	return o, nil
}

// MarkPaid applies a payment.paid event. Replays of eventID are no-ops. A
// payment for an order cancelled before it was paid publishes
// booking.cancelled again so payment-service refunds it.
func (s *OrderSvc) MarkPaid(ctx context.Context, orderID, paymentID, eventID string) (*domain.Order, error) {
	o, outcome, err := s.repo.MarkPaidIfNotProcessed(ctx, orderID, paymentID, eventID, events.RKPaymentPaid)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case repository.PaidApplied:
		s.publish(ctx, events.RKBookingRequested, o)
	case repository.PaidAfterCancel:
		log.Printf("[booking] order %s paid after cancellation, requesting refund of %s", o.OrderNumber, paymentID)
		s.publish(ctx, events.RKBookingCancelled, o)
	}
	return o, nil
}

// CancelUnpaid lets a customer drop an order they have not paid for.
func (s *OrderSvc) CancelUnpaid(ctx context.Context, id, customerID, reason string) (*domain.Order, error) {
	o, err := s.repo.Transition(ctx, id, func(o *domain.Order) error {
		if o.CustomerID != customerID {
			return domain.ErrForbidden
		}
		if o.Status != domain.StatusPendingPayment {
			return fmt.Errorf("%w: order is %s", domain.ErrConflict, o.Status)
		}
		o.Status = domain.StatusCancelled
		o.CancelReason = strings.TrimSpace(reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.RKBookingCancelled, o)
	return o, nil
}

func (s *OrderSvc) Get(ctx context.Context, id, number string) (*domain.Order, error) {
	if id != "" {
		return s.repo.ByID(ctx, id)
	}
	if number != "" {
		return s.repo.ByNumber(ctx, number)
	}
	return nil, fmt.Errorf("%w: id or order_number is required", domain.ErrInvalid)
}

func (s *OrderSvc) List(ctx context.Context, page, size int32, f repository.Filter) ([]domain.Order, int64, error) {
	return s.repo.List(ctx, page, size, f)
}

func (s *OrderSvc) Earnings(ctx context.Context, celebrityID string) (domain.Earnings, error) {
	if celebrityID == "" {
		return domain.Earnings{}, fmt.Errorf("%w: celebrity_id is required", domain.ErrInvalid)
	}
	return s.repo.Earnings(ctx, celebrityID)
}

func (s *OrderSvc) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

// publish is best effort: the write has committed already.
func (s *OrderSvc) publish(ctx context.Context, key string, o *domain.Order) {
	err := s.pub.PublishJSON(ctx, key, events.Order{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		CelebrityID:     o.CelebrityID,
		CelebrityUserID: o.CelebrityUserID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		PaymentID:       o.PaymentID,
		Reason:          o.CancelReason,
		VideoURL:        o.VideoURL,
	})
	if err != nil {
		log.Printf("[booking] publish %s order=%s: %v", key, o.ID, err)
	}
}
