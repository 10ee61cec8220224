package domain

import (
	"fmt"
	"net/mail"
	"strconv"
	"time"
)

// Setting is one platform-wide key/value pair edited from the admin console.
type Setting struct {
	Key       string `gorm:"primaryKey;column:setting_key;size:64"`
	Value     string
	UpdatedBy string
	UpdatedAt time.Time
}

const (
	SettingPlatformName     = "platform_name"
	SettingSupportEmail     = "support_email"
	SettingBookingsEnabled  = "bookings_enabled"
	SettingApplicationsOpen = "applications_open"
	SettingAnnouncement     = "announcement"
)

// DefaultSettings holds the value of every known key until an admin
// overrides it.
var DefaultSettings = map[string]string{
	SettingPlatformName:     "Kia Ora Kahi",
	SettingSupportEmail:     "support@kiaorakahi.co.nz",
	SettingBookingsEnabled:  "true",
	SettingApplicationsOpen: "true",
	SettingAnnouncement:     "",
}

// ValidateSetting rejects unknown keys and values of the wrong shape.
func ValidateSetting(key, value string) error {
	if _, ok := DefaultSettings[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
	}
	switch key {
	case SettingBookingsEnabled, SettingApplicationsOpen:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalid, key)
		}
	case SettingSupportEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Errorf("%w: %s is not an email address", ErrInvalid, key)
		}
	case SettingPlatformName:
		if value == "" || len(value) > 100 {
			return fmt.Errorf("%w: %s must be 1-100 characters", ErrInvalid, key)
		}
	case SettingAnnouncement:
		if len(value) > 500 {
			return fmt.Errorf("%w: %s is limited to 500 characters", ErrInvalid, key)
		}
	}
	return nil
}
