// Package wizard is the booking flow a fan walks through before paying:
// details, add-ons, tip, review, payment and confirmation. Transitions are
// linear; guards sit on the edges into AddOns, Payment and Confirmed.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/kiaorakahi/marketplace/pkg/pricing"
)

type Step int

const (
	StepDetails Step = iota + 1
	StepAddOns
	StepTip
	StepReview
	StepPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepAddOns:
		return "add_ons"
	case StepTip:
		return "tip"
	case StepReview:
		return "review"
	case StepPayment:
		return "payment"
	case StepConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrIncomplete     = errors.New("booking details incomplete")
	ErrContact        = errors.New("valid email and phone are required")
	ErrInvalidTip     = errors.New("tip must not be negative")
	ErrUnknownAddOn   = errors.New("unknown add-on")
	ErrNoPreviousStep = errors.New("already at the first step")
	ErrPaymentPending = errors.New("payment must be confirmed to continue")
	ErrNotAtPayment   = errors.New("payment can only be confirmed at the payment step")
	ErrTerminal       = errors.New("booking already confirmed")
	ErrPaymentFailed  = errors.New("payment was not successful")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
)

func ValidEmail(s string) bool { return emailRe.MatchString(strings.TrimSpace(s)) }
func ValidPhone(s string) bool { return phoneRe.MatchString(strings.TrimSpace(s)) }

type AddOn struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Price int64  `json:"price"`
}

type Form struct {
	RecipientName string   `json:"recipient_name"`
	Occasion      string   `json:"occasion"`
	Message       string   `json:"message"`
	Instructions  string   `json:"instructions,omitempty"`
	ServiceType   string   `json:"service_type,omitempty"`
	AddOns        []string `json:"add_ons,omitempty"`
	TipAmount     int64    `json:"tip_amount"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
}

// Line is one priced row of the order summary.
type Line struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Intent is what the payment side hands back once an order is payable.
type Intent struct {
	ClientSecret string `json:"client_secret"`
	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	Amount       int64  `json:"amount"`
}

// Quote is everything the review step shows.
type Quote struct {
	Lines []Line            `json:"lines"`
	Total int64             `json:"total"`
	Split pricing.Breakdown `json:"split"`
}

type Payments interface {
	CreateIntent(ctx context.Context, q Quote, f Form) (Intent, error)
	// ConfirmPayment reports whether the charge went through.
	ConfirmPayment(ctx context.Context, in Intent, cardToken string) (bool, error)
	// ReleaseIntent gives up an unpaid intent the wizard no longer uses.
	ReleaseIntent(ctx context.Context, in Intent)
}

type Options struct {
	CelebrityName string
	BasePrice     int64
	IsVIP         bool
	Catalogue     []AddOn
}

type Wizard struct {
	opts     Options
	payments Payments

	step    Step
	form    Form
	intent  *Intent
	lastErr string
	// paidFor is the form the current intent was created from.
	paidFor Form
}

func New(opts Options, p Payments) *Wizard {
	return &Wizard{opts: opts, payments: p, step: StepDetails}
}

func (w *Wizard) Step() Step         { return w.step }
func (w *Wizard) Form() Form         { return w.form }
func (w *Wizard) LastError() string  { return w.lastErr }
func (w *Wizard) DismissError()      { w.lastErr = "" }
func (w *Wizard) Catalogue() []AddOn { return w.opts.Catalogue }

func (w *Wizard) Intent() (Intent, bool) {
	if w.intent == nil {
		return Intent{}, false
	}
	return *w.intent, true
}

// Update replaces the form. Nothing can change once the booking is confirmed.
func (w *Wizard) Update(f Form) error {
	if w.step == StepConfirmed {
		return ErrTerminal
	}
	if f.TipAmount < 0 {
		return ErrInvalidTip
	}
	for _, code := range f.AddOns {
		if _, ok := w.addOn(code); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAddOn, code)
		}
	}
	w.form = f
	return nil
}

// Quote prices the current form.
func (w *Wizard) Quote() Quote {
	lines := []Line{{Code: "video", Label: "Personalised video from " + w.opts.CelebrityName, Amount: w.opts.BasePrice}}
	for _, code := range w.form.AddOns {
		if a, ok := w.addOn(code); ok {
			lines = append(lines, Line{Code: a.Code, Label: a.Label, Amount: a.Price})
		}
	}
	if w.form.TipAmount > 0 {
		lines = append(lines, Line{Code: "tip", Label: "Tip", Amount: w.form.TipAmount})
	}
	var total int64
	for _, l := range lines {
		total += l.Amount
	}
	return Quote{Lines: lines, Total: total, Split: pricing.Split(total, w.form.TipAmount, w.opts.IsVIP)}
}

func (w *Wizard) Next(ctx context.Context) error {
	switch w.step {
	case StepDetails:
		if blank(w.form.RecipientName) || blank(w.form.Occasion) || blank(w.form.Message) {
			return w.fail(ErrIncomplete)
		}
	case StepAddOns, StepTip:
	case StepReview:
		if !ValidEmail(w.form.Email) || !ValidPhone(w.form.Phone) {
			return w.fail(ErrContact)
		}
		q := w.Quote()
		if w.intent == nil || w.intent.Amount != q.Total || !sameForm(w.paidFor, w.form) {
			in, err := w.payments.CreateIntent(ctx, q, w.form)
			if err != nil {
				return w.fail(err)
			}
			if w.intent != nil {
				w.payments.ReleaseIntent(ctx, *w.intent)
			}
			w.intent = &in
			w.paidFor = w.form
			w.paidFor.AddOns = slices.Clone(w.form.AddOns)
		}
	case StepPayment:
		return ErrPaymentPending
	case StepConfirmed:
		return ErrTerminal
	}
	w.lastErr = ""
	w.step++
	return nil
}

func (w *Wizard) Confirm(ctx context.Context, cardToken string) error {
	if w.step != StepPayment || w.intent == nil {
		if w.step == StepConfirmed {
			return ErrTerminal
		}
		return ErrNotAtPayment
	}
	ok, err := w.payments.ConfirmPayment(ctx, *w.intent, cardToken)
	if err != nil {
		return w.fail(err)
	}
	if !ok {
		return w.fail(ErrPaymentFailed)
	}
	w.lastErr = ""
	w.step = StepConfirmed
	return nil
}

func (w *Wizard) Back() error {
	switch w.step {
	case StepDetails:
		return ErrNoPreviousStep
	case StepConfirmed:
		return ErrTerminal
	}
	w.lastErr = ""
	w.step--
	return nil
}

// Abandon releases an intent that was never paid and resets the wizard.
func (w *Wizard) Abandon(ctx context.Context) {
	if w.intent != nil && w.step != StepConfirmed {
		w.payments.ReleaseIntent(ctx, *w.intent)
	}
	w.Reset()
}

// Reset throws away everything entered so far.
func (w *Wizard) Reset() {
	w.step = StepDetails
	w.form = Form{}
	w.intent = nil
	w.paidFor = Form{}
	w.lastErr = ""
}

func (w *Wizard) fail(err error) error {
	w.lastErr = err.Error()
	return err
}

func (w *Wizard) addOn(code string) (AddOn, bool) {
	for _, a := range w.opts.Catalogue {
		if a.Code == code {
			return a, true
		}
	}
	return AddOn{}, false
}

func sameForm(a, b Form) bool {
	return a.RecipientName == b.RecipientName &&
		a.Occasion == b.Occasion &&
		a.Message == b.Message &&
		a.Instructions == b.Instructions &&
		a.ServiceType == b.ServiceType &&
		slices.Equal(a.AddOns, b.AddOns) &&
		a.TipAmount == b.TipAmount &&
		a.Email == b.Email &&
		a.Phone == b.Phone
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
