// Package events holds the routing keys and payloads exchanged over RabbitMQ.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/kiaorakahi/marketplace/pkg/mq"
)

const (
	ExchangeBooking = "booking.exchange"
	ExchangePayment = "payment.exchange"
	ExchangeSupport = "support.exchange"
)

const (
	RKBookingCreated       = "booking.created"
	RKBookingRequested     = "booking.requested" // paid, waiting on the celebrity
	RKBookingAccepted      = "booking.accepted"
	RKBookingCancelled     = "booking.cancelled"
	RKBookingDelivered     = "booking.delivered"
	RKBookingCompleted     = "booking.completed"
	RKBookingVideoRejected = "booking.video_rejected"

	RKPaymentPaid     = "payment.paid"
	RKPaymentFailed   = "payment.failed"
	RKPaymentRefunded = "payment.refunded"

	RKSupportCreated   = "support.created"
	RKSupportResponded = "support.responded"
	RKSupportClosed    = "support.closed"
)

type Order struct {
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	Status          string `json:"status"`
	CustomerID      string `json:"customer_id"`
	CustomerEmail   string `json:"customer_email"`
	CelebrityID     string `json:"celebrity_id"`
	CelebrityUserID string `json:"celebrity_user_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PaymentID       string `json:"payment_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
}

type Payment struct {
	IntentID       string `json:"intent_id"`
	OrderID        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	CustomerID     string `json:"customer_id"`
	CustomerEmail  string `json:"customer_email"`
	ChargeID       string `json:"charge_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

type Ticket struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber string `json:"ticket_number"`
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	Message      string `json:"message,omitempty"`
}

// Decode unmarshals a payload. A body that does not decode is poison.
func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode payload: %v", mq.ErrPoison, err)
	}
	return t, nil
}
