// Package pricing computes the fee and revenue-split breakdown shown to a fan
// before payment. All amounts are integer minor units of the order currency.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

const (
	GSTRate       = 0.15
	OtherFeesRate = 0.089

	VIPCelebrityPercent      = 80
	StandardCelebrityPercent = 70
)

var ErrInvalidAmount = errors.New("invalid amount")

type Breakdown struct {
	TotalAmount      int64 `json:"total_amount"`
	TipAmount        int64 `json:"tip_amount"`
	BaseAmount       int64 `json:"base_amount"`
	GSTAmount        int64 `json:"gst_amount"`
	OtherFeesAmount  int64 `json:"other_fees_amount"`
	TotalFeesAmount  int64 `json:"total_fees_amount"`
	AmountAfterFees  int64 `json:"amount_after_fees"`
	CelebrityPercent int   `json:"celebrity_percent"`
	PlatformPercent  int   `json:"platform_percent"`
	CelebritySplit   int64 `json:"celebrity_split"`
	PlatformSplit    int64 `json:"platform_split"`
	// CelebrityShare is CelebritySplit plus the whole tip.
	CelebrityShare     int64 `json:"celebrity_share"`
	TotalPlatformShare int64 `json:"total_platform_share"`
	IsVIP              bool  `json:"is_vip"`
}

// Split breaks total (base service amount plus tip) into fees, celebrity share
// and platform share. Every output is rounded on its own from the unrounded
// intermediate values, so shares can miss the total by a unit; see Residual.
func Split(total, tip int64, vip bool) Breakdown {
	celebPct := StandardCelebrityPercent
	if vip {
		celebPct = VIPCelebrityPercent
	}
	platformPct := 100 - celebPct

	base := float64(total - tip)
	gst := base * GSTRate
	other := base * OtherFeesRate
	fees := gst + other
	afterFees := base - fees
	celebSplit := afterFees * float64(celebPct) / 100
	platformSplit := afterFees * float64(platformPct) / 100

	return Breakdown{
		TotalAmount:        total,
		TipAmount:          tip,
		BaseAmount:         total - tip,
		GSTAmount:          round(gst),
		OtherFeesAmount:    round(other),
		TotalFeesAmount:    round(fees),
		AmountAfterFees:    round(afterFees),
		CelebrityPercent:   celebPct,
		PlatformPercent:    platformPct,
		CelebritySplit:     round(celebSplit),
		PlatformSplit:      round(platformSplit),
		CelebrityShare:     round(celebSplit + float64(tip)),
		TotalPlatformShare: round(fees + platformSplit),
		IsVIP:              vip,
	}
}

// Residual is what rounding left unassigned: total minus both shares.
func (b Breakdown) Residual() int64 {
	return b.TotalAmount - (b.CelebrityShare + b.TotalPlatformShare)
}

// Validate rejects inputs Split would happily compute garbage for.
func Validate(total, tip int64) error {
	switch {
	case total <= 0:
		return fmt.Errorf("%w: total must be positive", ErrInvalidAmount)
	case tip < 0:
		return fmt.Errorf("%w: tip must not be negative", ErrInvalidAmount)
	case tip > total:
		return fmt.Errorf("%w: tip must not exceed total", ErrInvalidAmount)
	}
	return nil
}

func round(v float64) int64 { return int64(math.Round(v)) }
