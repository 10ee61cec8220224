package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	"github.com/kiaorakahi/marketplace/pkg/wizard"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
)

const intentSucceeded = "succeeded"

var errBookingsPaused = errors.New("bookings are paused, please try again later")

// AuthorizeError means the card issuer wants the customer to finish 3-D
// Secure at URI before the charge settles.
type AuthorizeError struct {
	URI string
}

func (e *AuthorizeError) Error() string { return "payment requires authorization" }

// checkout is the ordering path shared by the one-shot intent endpoint and
// the server-held wizard drafts.
type checkout struct {
	base
	cfg config.App
}

func (k checkout) catalogue() []wizard.AddOn {
	return []wizard.AddOn{
		{Code: "rush_delivery", Label: "Rush delivery (24 hours)", Price: k.cfg.RushDeliveryFee},
		{Code: "hd_download", Label: "HD download", Price: k.cfg.HDDownloadFee},
		{Code: "social_share", Label: "Social media sharing rights", Price: k.cfg.SocialShareFee},
	}
}

func (k checkout) returnURI() string {
	return strings.TrimRight(k.cfg.PublicBaseURL, "/") + "/payments/return"
}

// bookableCelebrity loads an active celebrity with a price.
func (k checkout) bookableCelebrity(ctx context.Context, id string) (*celebrityv1.Celebrity, error) {
	res, err := k.c.Celebrity.GetCelebrity(ctx, &celebrityv1.GetCelebrityRequest{Id: id})
	if err != nil {
		return nil, err
	}
	if !res.Celebrity.Active || res.Celebrity.Price <= 0 {
		return nil, status.Errorf(codes.NotFound, "celebrity %s is not taking bookings", id)
	}
	return res.Celebrity, nil
}

// bookingsOpen reads the platform switch. An unreachable settings store does
// not block checkout.
func (k checkout) bookingsOpen(ctx context.Context) bool {
	res, err := k.c.User.GetSettings(ctx, &userv1.GetSettingsRequest{})
	if err != nil {
		log.Printf("[gateway] read settings: %v", err)
		return true
	}
	v, err := strconv.ParseBool(res.Settings[userv1.SettingBookingsEnabled])
	return err != nil || v
}

func (k checkout) newWizard(celeb *celebrityv1.Celebrity, p wizard.Payments) *wizard.Wizard {
	return wizard.New(wizard.Options{
		CelebrityName: celeb.Name,
		BasePrice:     celeb.Price,
		IsVIP:         celeb.IsVip,
		Catalogue:     k.catalogue(),
	}, p)
}

// placeOrder records a PENDING_PAYMENT order for q and opens a payment intent
// for it.
func (k checkout) placeOrder(ctx context.Context, customer rpc.User, celeb *celebrityv1.Celebrity, q wizard.Quote, f wizard.Form, idemKey string) (wizard.Intent, *bookingv1.Order, error) {
	lines := make([]bookingv1.Line, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, bookingv1.Line{Code: l.Code, Label: l.Label, Amount: l.Amount})
	}
	email := strings.TrimSpace(f.Email)
	ord, err := k.c.Book.CreateOrder(ctx, &bookingv1.CreateOrderRequest{
		CelebrityId:     celeb.Id,
		CelebrityUserId: celeb.UserId,
		CustomerId:      customer.ID,
		CustomerEmail:   email,
		CustomerPhone:   strings.TrimSpace(f.Phone),
		ServiceType:     f.ServiceType,
		RecipientName:   f.RecipientName,
		Occasion:        f.Occasion,
		Message:         f.Message,
		Instructions:    f.Instructions,
		Amount:          q.Total,
		TipAmount:       f.TipAmount,
		Currency:        k.cfg.Currency,
		IsVip:           celeb.IsVip,
		Lines:           lines,
		Split:           q.Split,
	})
	if err != nil {
		return wizard.Intent{}, nil, err
	}
	pi, err := k.c.Pay.CreateIntent(ctx, &paymentv1.CreateIntentRequest{
		OrderId:        ord.Order.Id,
		OrderNumber:    ord.Order.OrderNumber,
		CustomerId:     customer.ID,
		CustomerEmail:  email,
		Amount:         q.Total,
		Currency:       k.cfg.Currency,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return wizard.Intent{}, nil, err
	}
	return wizard.Intent{
		ClientSecret: pi.Intent.ClientSecret,
		OrderID:      ord.Order.Id,
		OrderNumber:  ord.Order.OrderNumber,
		Amount:       pi.Intent.Amount,
	}, ord.Order, nil
}

func (k checkout) cancelUnpaid(ctx context.Context, orderID, reason string) error {
	_, err := k.c.Book.UpdateStatus(ctx, &bookingv1.UpdateStatusRequest{
		Id:     orderID,
		Status: bookingv1.StatusCancelled,
		Reason: reason,
	})
	return err
}

// intentByKey returns the intent an earlier request with the same
// idempotency key created, or nil.
func (k checkout) intentByKey(ctx context.Context, key string) (*paymentv1.Intent, error) {
	res, err := k.c.Pay.GetIntent(ctx, &paymentv1.GetIntentRequest{IdempotencyKey: key})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res.Intent, nil
}

func (k checkout) confirm(ctx context.Context, clientSecret, cardToken string) (*paymentv1.ConfirmIntentResponse, error) {
	return k.c.Pay.ConfirmIntent(ctx, &paymentv1.ConfirmIntentRequest{
		ClientSecret: clientSecret,
		CardToken:    cardToken,
		ReturnUri:    k.returnURI(),
	})
}

// draftPayments lets a wizard draft place and pay its order.
type draftPayments struct {
	k        checkout
	customer rpc.User
	celeb    *celebrityv1.Celebrity
}

func (p *draftPayments) CreateIntent(ctx context.Context, q wizard.Quote, f wizard.Form) (wizard.Intent, error) {
	if !p.k.bookingsOpen(ctx) {
		return wizard.Intent{}, errBookingsPaused
	}
	in, _, err := p.k.placeOrder(ctx, p.customer, p.celeb, q, f, "")
	return in, err
}

func (p *draftPayments) ConfirmPayment(ctx context.Context, in wizard.Intent, cardToken string) (bool, error) {
	res, err := p.k.confirm(ctx, in.ClientSecret, cardToken)
	if err != nil {
		return false, err
	}
	if res.AuthorizeUri != "" {
		return false, &AuthorizeError{URI: res.AuthorizeUri}
	}
	return res.Intent.Status == intentSucceeded, nil
}

// ReleaseIntent cancels the unpaid order behind an intent the draft dropped.
// booking.cancelled then locks the intent in payment-service.
func (p *draftPayments) ReleaseIntent(ctx context.Context, in wizard.Intent) {
	if err := p.k.cancelUnpaid(ctx, in.OrderID, "superseded by a newer checkout"); err != nil {
		log.Printf("[gateway] release order %s: %v", in.OrderNumber, err)
	}
}

// writeWizardErr maps wizard and checkout failures to HTTP.
func writeWizardErr(c *gin.Context, err error) {
	var authz *AuthorizeError
	switch {
	case errors.As(err, &authz):
		c.JSON(http.StatusAccepted, gin.H{"status": "requires_authorization", "authorize_uri": authz.URI})
	case errors.Is(err, errBookingsPaused):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrTerminal),
		errors.Is(err, wizard.ErrPaymentPending),
		errors.Is(err, wizard.ErrNotAtPayment):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrIncomplete),
		errors.Is(err, wizard.ErrContact),
		errors.Is(err, wizard.ErrInvalidTip),
		errors.Is(err, wizard.ErrUnknownAddOn),
		errors.Is(err, wizard.ErrNoPreviousStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		writeErr(c, err)
	}
}
