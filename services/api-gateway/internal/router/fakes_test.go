package router

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
)

// Each fake embeds the client interface so unexercised methods panic.

type fakeAuth struct {
	authv1.AuthServiceClient
	mu      sync.Mutex
	updates []*authv1.UpdateAccountRequest
}

func (f *fakeAuth) UpdateAccount(_ context.Context, in *authv1.UpdateAccountRequest, _ ...grpc.CallOption) (*authv1.UpdateAccountResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	return &authv1.UpdateAccountResponse{User: &authv1.User{Id: in.Id, Role: in.Role}}, nil
}

type fakeUser struct {
	userv1.UserServiceClient
	mu       sync.Mutex
	settings map[string]string
	updates  []*userv1.AdminUpdateUserRequest
}

func (f *fakeUser) GetSettings(context.Context, *userv1.GetSettingsRequest, ...grpc.CallOption) (*userv1.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{userv1.SettingBookingsEnabled: "true", userv1.SettingApplicationsOpen: "true"}
	for k, v := range f.settings {
		out[k] = v
	}
	return &userv1.Settings{Settings: out}, nil
}

func (f *fakeUser) AdminUpdateUser(_ context.Context, in *userv1.AdminUpdateUserRequest, _ ...grpc.CallOption) (*userv1.UserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	return &userv1.UserResponse{User: &userv1.User{Id: in.Id, Role: in.Role}}, nil
}

func (f *fakeUser) GetUserStats(context.Context, *userv1.GetUserStatsRequest, ...grpc.CallOption) (*userv1.UserStats, error) {
	return &userv1.UserStats{ByRole: map[string]int64{"FAN": 3, "CELEBRITY": 1, "ADMIN": 1}, Total: 5, Active: 5}, nil
}

type fakeCelebrity struct {
	celebrityv1.CelebrityServiceClient
	celebs map[string]*celebrityv1.Celebrity
}

func (f *fakeCelebrity) GetCelebrity(_ context.Context, in *celebrityv1.GetCelebrityRequest, _ ...grpc.CallOption) (*celebrityv1.CelebrityResponse, error) {
	for _, c := range f.celebs {
		if (in.Id != "" && c.Id == in.Id) || (in.Slug != "" && c.Slug == in.Slug) {
			return &celebrityv1.CelebrityResponse{Celebrity: c}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "celebrity not found")
}

func (f *fakeCelebrity) GetByUser(_ context.Context, in *celebrityv1.GetByUserRequest, _ ...grpc.CallOption) (*celebrityv1.CelebrityResponse, error) {
	for _, c := range f.celebs {
		if c.UserId == in.UserId {
			return &celebrityv1.CelebrityResponse{Celebrity: c}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "celebrity not found")
}

func (f *fakeCelebrity) GetStats(context.Context, *celebrityv1.GetStatsRequest, ...grpc.CallOption) (*celebrityv1.Stats, error) {
	return &celebrityv1.Stats{Celebrities: 2, ActiveCelebrities: 2, VipCelebrities: 1, PendingApplications: 4}, nil
}

func (f *fakeCelebrity) ReviewApplication(_ context.Context, in *celebrityv1.ReviewApplicationRequest, _ ...grpc.CallOption) (*celebrityv1.ApplicationResponse, error) {
	st := celebrityv1.ApplicationRejected
	if in.Approve {
		st = celebrityv1.ApplicationApproved
	}
	return &celebrityv1.ApplicationResponse{Application: &celebrityv1.Application{Id: in.Id, UserId: "applicant-1", Status: st}}, nil
}

type fakeBooking struct {
	bookingv1.BookingServiceClient
	mu        sync.Mutex
	created   []*bookingv1.CreateOrderRequest
	responds  []*bookingv1.RespondToRequestRequest
	lists     []*bookingv1.ListOrdersRequest
	cancelled []*bookingv1.UpdateStatusRequest
}

func (f *fakeBooking) UpdateStatus(_ context.Context, in *bookingv1.UpdateStatusRequest, _ ...grpc.CallOption) (*bookingv1.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, in)
	return &bookingv1.OrderResponse{Order: &bookingv1.Order{Id: in.Id, Status: in.Status, CancelReason: in.Reason}}, nil
}

func (f *fakeBooking) CreateOrder(_ context.Context, in *bookingv1.CreateOrderRequest, _ ...grpc.CallOption) (*bookingv1.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	n := len(f.created)
	return &bookingv1.OrderResponse{Order: &bookingv1.Order{
		Id:          "order-" + string(rune('0'+n)),
		OrderNumber: "ORD-20261017-00000" + string(rune('0'+n)),
		Amount:      in.Amount,
		CustomerId:  in.CustomerId,
		Status:      bookingv1.StatusPendingPayment,
	}}, nil
}

func (f *fakeBooking) RespondToRequest(_ context.Context, in *bookingv1.RespondToRequestRequest, _ ...grpc.CallOption) (*bookingv1.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responds = append(f.responds, in)
	if in.Id == "not-pending" {
		return nil, status.Error(codes.FailedPrecondition, "order is ACCEPTED")
	}
	st := bookingv1.StatusAccepted
	if in.Action == bookingv1.ActionDecline {
		st = bookingv1.StatusCancelled
	}
	return &bookingv1.OrderResponse{Order: &bookingv1.Order{Id: in.Id, Status: st, CancelReason: in.Reason}}, nil
}

func (f *fakeBooking) ListOrders(_ context.Context, in *bookingv1.ListOrdersRequest, _ ...grpc.CallOption) (*bookingv1.ListOrdersResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, in)
	return &bookingv1.ListOrdersResponse{Orders: []*bookingv1.Order{}}, nil
}

func (f *fakeBooking) GetStats(context.Context, *bookingv1.GetStatsRequest, ...grpc.CallOption) (*bookingv1.Stats, error) {
	return &bookingv1.Stats{
		OrdersByStatus:   map[string]int64{"COMPLETED": 2},
		TotalOrders:      2,
		GrossRevenue:     20000,
		PlatformRevenue:  7000,
		CelebrityRevenue: 13000,
		Tips:             1000,
	}, nil
}

type fakePayment struct {
	paymentv1.PaymentServiceClient
	mu      sync.Mutex
	intents map[string]*paymentv1.Intent
	keys    map[string]*paymentv1.Intent
	// authorize makes confirmations wait on 3-D Secure.
	authorize bool
}

func (f *fakePayment) CreateIntent(_ context.Context, in *paymentv1.CreateIntentRequest, _ ...grpc.CallOption) (*paymentv1.IntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.intents == nil {
		f.intents = map[string]*paymentv1.Intent{}
	}
	pi := &paymentv1.Intent{
		Id:           "pi-" + in.OrderId,
		OrderId:      in.OrderId,
		OrderNumber:  in.OrderNumber,
		CustomerId:   in.CustomerId,
		Amount:       in.Amount,
		Currency:     in.Currency,
		ClientSecret: "pi_" + in.OrderId + "_secret_x",
		Status:       "requires_payment",
	}
	f.intents[pi.ClientSecret] = pi
	if in.IdempotencyKey != "" {
		if f.keys == nil {
			f.keys = map[string]*paymentv1.Intent{}
		}
		f.keys[in.IdempotencyKey] = pi
	}
	return &paymentv1.IntentResponse{Intent: pi}, nil
}

func (f *fakePayment) GetIntent(_ context.Context, in *paymentv1.GetIntentRequest, _ ...grpc.CallOption) (*paymentv1.IntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pi, ok := f.intents[in.ClientSecret]
	if in.IdempotencyKey != "" {
		pi, ok = f.keys[in.IdempotencyKey]
	}
	if !ok {
		return nil, status.Error(codes.NotFound, "intent not found")
	}
	return &paymentv1.IntentResponse{Intent: pi}, nil
}

func (f *fakePayment) ConfirmIntent(_ context.Context, in *paymentv1.ConfirmIntentRequest, _ ...grpc.CallOption) (*paymentv1.ConfirmIntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pi, ok := f.intents[in.ClientSecret]
	if !ok {
		return nil, status.Error(codes.NotFound, "intent not found")
	}
	if f.authorize {
		pi.Status = "processing"
		return &paymentv1.ConfirmIntentResponse{Intent: pi, AuthorizeUri: "https://issuer.example/3ds"}, nil
	}
	if in.CardToken == "tokn_declined" {
		pi.Status, pi.FailureCode = "failed", "insufficient_fund"
	} else {
		pi.Status = "succeeded"
	}
	return &paymentv1.ConfirmIntentResponse{Intent: pi}, nil
}

type fakeSupport struct {
	supportv1.SupportServiceClient
}

func (f *fakeSupport) CreateTicket(_ context.Context, in *supportv1.CreateTicketRequest, _ ...grpc.CallOption) (*supportv1.TicketResponse, error) {
	if len(in.Message) < 10 {
		return nil, status.Error(codes.InvalidArgument, "message must be 10-2000 characters")
	}
	return &supportv1.TicketResponse{Ticket: &supportv1.Ticket{
		Id:           "t1",
		TicketNumber: "TKT-12345678-AB12",
		Name:         in.Name,
		Email:        in.Email,
		Subject:      in.Subject,
		Status:       supportv1.StatusOpen,
	}}, nil
}

func (f *fakeSupport) GetStats(context.Context, *supportv1.GetStatsRequest, ...grpc.CallOption) (*supportv1.Stats, error) {
	return &supportv1.Stats{Open: 3, Total: 7, ByStatus: map[string]int64{"OPEN": 2, "RESPONDED": 1, "CLOSED": 4}}, nil
}
