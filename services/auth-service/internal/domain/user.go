package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrInvalid        = errors.New("invalid account data")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrDisabled       = errors.New("account disabled")
)

type Role string

const (
	RoleFan       Role = "FAN"
	RoleCelebrity Role = "CELEBRITY"
	RoleAdmin     Role = "ADMIN"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:191"`
	PasswordHash string
	Name         string
	Role         Role `gorm:"size:16"`
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
