package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid argument")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
)

const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

const DefaultResponseDays = 7

type Celebrity struct {
	ID           string         `gorm:"primaryKey"`
	UserID       *string        `gorm:"uniqueIndex"`
	Name         string         `gorm:"not null"`
	Slug         string         `gorm:"uniqueIndex;size:191"`
	Category     string         `gorm:"index"`
	Tags         pq.StringArray `gorm:"type:text[]"`
	Bio          string
	AvatarURL    string
	Price        int64 // cents
	IsVIP        bool  `gorm:"index"`
	Active       bool  `gorm:"default:true"`
	ResponseDays int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Application is a fan's request to be listed as a celebrity.
type Application struct {
	ID                   string `gorm:"primaryKey"`
	UserID               string `gorm:"index"`
	Name                 string
	Email                string
	Phone                string
	Category             string
	Bio                  string
	SocialHandle         string
	SocialLinks          datatypes.JSONMap
	Price                int64
	ProfilePhotoURL      string
	IDDocumentURL        string
	VerificationVideoURL string
	Status               string `gorm:"index"`
	ReviewerNote         string
	ReviewedBy           string
	ReviewedAt           *time.Time
	CelebrityID          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Stats struct {
	Celebrities         int64
	ActiveCelebrities   int64
	VIPCelebrities      int64
	PendingApplications int64
}

var macrons = strings.NewReplacer("ā", "a", "ē", "e", "ī", "i", "ō", "o", "ū", "u")

// Slugify lowercases name and joins its letter and digit runs with dashes.
// Macron vowels fold to their plain form.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range macrons.Replace(strings.ToLower(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
