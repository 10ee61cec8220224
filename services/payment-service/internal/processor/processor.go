// Package processor abstracts the card processor payment-service charges
// through. The Omise client is the production implementation; Mock serves
// PAYMENT_MOCK_MODE and tests.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	ChargeSuccessful = "successful"
	ChargeFailed     = "failed"
	ChargePending    = "pending"

	EventChargeComplete = "charge.complete"
)

var ErrUnknownEvent = errors.New("unknown processor event")

type ChargeRequest struct {
	Amount    int64
	Currency  string
	CardToken string
	ReturnURI string
	Metadata  map[string]string
}

type Charge struct {
	ID             string
	Status         string
	Amount         int64
	Currency       string
	AuthorizeURI   string
	FailureCode    string
	FailureMessage string
	Metadata       map[string]string
}

// Event is a processor webhook event after verification with the processor.
type Event struct {
	ID     string
	Key    string
	Charge *Charge
}

type Processor interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error)
	Refund(ctx context.Context, chargeID string, amount int64) (string, error)
	VerifyEvent(ctx context.Context, eventID string) (*Event, error)
}

// Mock decides outcomes from the card token: tok_fail declines, tok_3ds
// waits for authorisation, anything else succeeds.
type Mock struct {
	mu      sync.Mutex
	charges map[string]*Charge
	Refunds []string
	Err     error
}

func NewMock() *Mock {
	return &Mock{charges: map[string]*Charge{}}
}

func (m *Mock) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ch := &Charge{
		ID:       "chrg_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Amount:   req.Amount,
		Currency: req.Currency,
		Metadata: req.Metadata,
	}
	switch req.CardToken {
	case "tok_fail":
		ch.Status = ChargeFailed
		ch.FailureCode = "insufficient_fund"
		ch.FailureMessage = "insufficient funds in the account"
	case "tok_3ds":
		ch.Status = ChargePending
		ch.AuthorizeURI = "https://pay.mock.local/authorize/" + ch.ID
	default:
		ch.Status = ChargeSuccessful
	}
	m.mu.Lock()
	m.charges[ch.ID] = ch
	m.mu.Unlock()
	return ch, nil
}

func (m *Mock) RetrieveCharge(_ context.Context, chargeID string) (*Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("charge %s not found", chargeID)
	}
	cp := *ch
	return &cp, nil
}

// Complete settles a pending charge, as the cardholder finishing 3-D Secure would.
func (m *Mock) Complete(chargeID string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, found := m.charges[chargeID]; found {
		ch.Status = ChargeSuccessful
		if !ok {
			ch.Status = ChargeFailed
			ch.FailureCode = "failed_processing"
		}
	}
}

func (m *Mock) Refund(_ context.Context, chargeID string, _ int64) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charges[chargeID]; !ok {
		return "", fmt.Errorf("charge %s not found", chargeID)
	}
	m.Refunds = append(m.Refunds, chargeID)
	return "rfnd_mock_" + chargeID, nil
}

// VerifyEvent accepts ids of the form evt_<charge id>.
func (m *Mock) VerifyEvent(ctx context.Context, eventID string) (*Event, error) {
	chargeID, ok := strings.CutPrefix(eventID, "evt_")
	if !ok {
		return nil, ErrUnknownEvent
	}
	ch, err := m.RetrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEvent, err)
	}
	return &Event{ID: eventID, Key: EventChargeComplete, Charge: ch}, nil
}
