package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid argument")
	ErrClosed   = errors.New("ticket closed")
)

const (
	StatusOpen      = "OPEN"
	StatusResponded = "RESPONDED"
	StatusClosed    = "CLOSED"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var Priorities = []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID           string `gorm:"primaryKey"`
	TicketNumber string `gorm:"uniqueIndex;size:32"`
	Name         string
	Email        string `gorm:"index;size:191"`
	Phone        string
	Category     string     `gorm:"size:32"`
	Subject      string     `gorm:"size:255"`
	Message      string     `gorm:"type:text"`
	Priority     string     `gorm:"size:16;index"`
	Status       string     `gorm:"size:16;index"`
	UserID       string     `gorm:"index"`
	Responses    []Response `gorm:"foreignKey:TicketID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// Response is one staff reply in a ticket thread.
type Response struct {
	ID         string `gorm:"primaryKey"`
	TicketID   string `gorm:"index"`
	AuthorID   string
	AuthorName string
	AuthorRole string
	Message    string `gorm:"type:text"`
	CreatedAt  time.Time
}

type Stats struct {
	ByStatus   map[string]int64
	ByPriority map[string]int64
	Total      int64
}

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTicketNumber renders TKT-<last 8 digits of the unix ms clock>-<4 random
// alphanumerics>.
func NewTicketNumber(now time.Time) string {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TKT-%08d-%s", now.UnixMilli()%100_000_000, suffix)
}
