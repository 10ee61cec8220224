package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("payment intent not found")
	ErrInvalid   = errors.New("invalid payment request")
	ErrConflict  = errors.New("payment intent conflict")
	ErrProcessor = errors.New("payment processor unavailable")
)

const (
	StatusRequiresPayment = "requires_payment"
	StatusProcessing      = "processing"
	StatusSucceeded       = "succeeded"
	StatusFailed          = "failed"
	StatusRefunded        = "refunded"
	// StatusCanceled intents belong to orders cancelled before payment.
	StatusCanceled = "canceled"
)

// PaymentIntent binds one order to the client secret the browser pays with.
type PaymentIntent struct {
	ID             string `gorm:"primaryKey"`
	OrderID        string `gorm:"index"`
	OrderNumber    string
	CustomerID     string
	CustomerEmail  string
	Amount         int64
	Currency       string  `gorm:"size:8"`
	ClientSecret   string  `gorm:"uniqueIndex;size:96"`
	IdempotencyKey *string `gorm:"uniqueIndex;size:128"`
	Status         string  `gorm:"index"`
	ChargeID       string  `gorm:"index"`
	RefundID       string
	FailureCode    string
	FailureMessage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Payable reports whether a new charge may be attempted.
func (p *PaymentIntent) Payable() bool {
	return p.Status == StatusRequiresPayment || p.Status == StatusFailed
}

type EventConsumed struct {
	ID          string `gorm:"primaryKey"`
	EventKey    string `gorm:"index"`
	ProcessedAt time.Time
}
