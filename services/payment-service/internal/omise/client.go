package omisecli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/kiaorakahi/marketplace/services/payment-service/internal/processor"
)

// Client is the Omise-backed processor.Processor.
type Client struct {
	omc *omise.Client
}

func NewOmiseClient(pub, sec string) (*Client, error) {
	c, err := omise.NewClient(pub, sec)
	if err != nil {
		return nil, err
	}
	c.SetDebug(false)
	return &Client{omc: c}, nil
}

func (c *Client) CreateCharge(_ context.Context, req processor.ChargeRequest) (*processor.Charge, error) {
	meta := make(map[string]interface{}, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	ch := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:    req.Amount,
		Currency:  req.Currency,
		Card:      req.CardToken,
		ReturnURI: req.ReturnURI,
		Metadata:  meta,
	}
	if err := c.omc.Do(ch, op); err != nil {
		return nil, err
	}
	return toCharge(ch), nil
}

func (c *Client) RetrieveCharge(_ context.Context, chargeID string) (*processor.Charge, error) {
	ch := &omise.Charge{}
	if err := c.omc.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, err
	}
	return toCharge(ch), nil
}

func (c *Client) Refund(_ context.Context, chargeID string, amount int64) (string, error) {
	r := &omise.Refund{}
	if err := c.omc.Do(r, &operations.CreateRefund{ChargeID: chargeID, Amount: amount}); err != nil {
		return "", err
	}
	return r.ID, nil
}

// VerifyEvent re-fetches the event from Omise so a forged webhook body
// cannot move money.
func (c *Client) VerifyEvent(_ context.Context, eventID string) (*processor.Event, error) {
	ev := &omise.Event{}
	if err := c.omc.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrUnknownEvent, err)
	}
	out := &processor.Event{ID: ev.ID, Key: ev.Key}
	if !strings.HasPrefix(ev.Key, "charge.") {
		return out, nil
	}
	// ev.Data is an untyped map; round-trip it into a charge
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}
	out.Charge = toCharge(&ch)
	return out, nil
}

func toCharge(ch *omise.Charge) *processor.Charge {
	out := &processor.Charge{
		ID:           ch.ID,
		Status:       string(ch.Status),
		Amount:       ch.Amount,
		Currency:     ch.Currency,
		AuthorizeURI: ch.AuthorizeURI,
		Metadata:     map[string]string{},
	}
	if ch.FailureCode != nil {
		out.FailureCode = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		out.FailureMessage = *ch.FailureMessage
	}
	for k, v := range ch.Metadata {
		if s, ok := v.(string); ok {
			out.Metadata[k] = s
		}
	}
	return out
}
