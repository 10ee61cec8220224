package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid argument")
)

type User struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;size:191"`
	Name      string
	Phone     string
	AvatarURL string
	Role      string `gorm:"index"` // FAN|CELEBRITY|ADMIN
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Stats struct {
	ByRole map[string]int64
	Total  int64
	Active int64
}
