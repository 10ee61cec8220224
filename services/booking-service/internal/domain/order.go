package domain

import (
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/kiaorakahi/marketplace/pkg/pricing"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrInvalid   = errors.New("invalid order")
	ErrConflict  = errors.New("order state conflict")
	ErrForbidden = errors.New("not your order")
)

const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusPending        = "PENDING"
	StatusAccepted       = "ACCEPTED"
	StatusDelivered      = "DELIVERED"
	StatusCompleted      = "COMPLETED"
	StatusCancelled      = "CANCELLED"

	ApprovalNone     = "NONE"
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// PaidStatuses are the states whose money counts towards revenue.
var PaidStatuses = []string{StatusPending, StatusAccepted, StatusDelivered, StatusCompleted}

type Line struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type Order struct {
	ID              string `gorm:"primaryKey"`
	OrderNumber     string `gorm:"uniqueIndex;size:32"`
	CelebrityID     string `gorm:"index"`
	CelebrityUserID string `gorm:"index"`
	CustomerID      string `gorm:"index"`
	CustomerEmail   string
	CustomerPhone   string
	ServiceType     string
	RecipientName   string
	Occasion        string
	Message         string
	Instructions    string
	Amount          int64
	TipAmount       int64
	Currency        string `gorm:"size:8"`
	IsVIP           bool
	Lines           datatypes.JSONSlice[Line]
	Split           datatypes.JSONType[pricing.Breakdown]
	CelebrityShare  int64
	PlatformShare   int64
	Status          string `gorm:"index"`
	ApprovalStatus  string
	VideoURL        string
	PaymentID       string `gorm:"index"`
	CancelReason    string
	Feedback        string
	PaidAt          *time.Time
	DeliveredAt     *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

type EventConsumed struct {
	ID          string `gorm:"primaryKey"` // event message id
	EventKey    string `gorm:"index"`
	ProcessedAt time.Time
}

type Earnings struct {
	CompletedOrders int64
	PendingOrders   int64
	Earned          int64
	Pending         int64
	TipsEarned      int64
}

type Stats struct {
	ByStatus         map[string]int64
	Total            int64
	GrossRevenue     int64
	PlatformRevenue  int64
	CelebrityRevenue int64
	Tips             int64
}
