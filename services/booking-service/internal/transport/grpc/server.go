package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound:  codes.NotFound,
	domain.ErrInvalid:   codes.InvalidArgument,
	domain.ErrConflict:  codes.FailedPrecondition,
	domain.ErrForbidden: codes.PermissionDenied,
}

type Server struct {
	bookingv1.UnimplementedBookingServiceServer
	svc      *service.OrderSvc
	currency string
}

func NewServer(s *service.OrderSvc, currency string) *Server {
	return &Server{svc: s, currency: currency}
}

func toPB(o *domain.Order) *bookingv1.Order {
	out := &bookingv1.Order{
		Id:              o.ID,
		OrderNumber:     o.OrderNumber,
		CelebrityId:     o.CelebrityID,
		CelebrityUserId: o.CelebrityUserID,
		CustomerId:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ServiceType:     o.ServiceType,
		RecipientName:   o.RecipientName,
		Occasion:        o.Occasion,
		Message:         o.Message,
		Instructions:    o.Instructions,
		Amount:          o.Amount,
		TipAmount:       o.TipAmount,
		Currency:        o.Currency,
		IsVip:           o.IsVIP,
		Split:           o.Split.Data(),
		Status:          o.Status,
		ApprovalStatus:  o.ApprovalStatus,
		VideoUrl:        o.VideoURL,
		PaymentId:       o.PaymentID,
		CancelReason:    o.CancelReason,
		Feedback:        o.Feedback,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
		PaidAt:          iso(o.PaidAt),
		DeliveredAt:     iso(o.DeliveredAt),
		CompletedAt:     iso(o.CompletedAt),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, bookingv1.Line{Code: l.Code, Label: l.Label, Amount: l.Amount})
	}
	return out
}

func iso(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (s *Server) CreateOrder(ctx context.Context, in *bookingv1.CreateOrderRequest) (*bookingv1.OrderResponse, error) {
	lines := make([]domain.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, domain.Line{Code: l.Code, Label: l.Label, Amount: l.Amount})
	}
	o, err := s.svc.Create(ctx, service.CreateInput{
		CelebrityID:     in.CelebrityId,
		CelebrityUserID: in.CelebrityUserId,
		CustomerID:      in.CustomerId,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ServiceType:     in.ServiceType,
		RecipientName:   in.RecipientName,
		Occasion:        in.Occasion,
		Message:         in.Message,
		Instructions:    in.Instructions,
		Amount:          in.Amount,
		TipAmount:       in.TipAmount,
		Currency:        in.Currency,
		IsVIP:           in.IsVip,
		Lines:           lines,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

func (s *Server) GetOrder(ctx context.Context, in *bookingv1.GetOrderRequest) (*bookingv1.OrderResponse, error) {
	o, err := s.svc.Get(ctx, in.Id, in.OrderNumber)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

func (s *Server) ListOrders(ctx context.Context, in *bookingv1.ListOrdersRequest) (*bookingv1.ListOrdersResponse, error) {
	list, total, err := s.svc.List(ctx, in.Page, in.PageSize, repository.Filter{
		CustomerID:  in.CustomerId,
		CelebrityID: in.CelebrityId,
		Status:      in.Status,
		PaidOnly:    in.PaidOnly,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &bookingv1.ListOrdersResponse{Total: total, Orders: []*bookingv1.Order{}}
	for i := range list {
		resp.Orders = append(resp.Orders, toPB(&list[i]))
	}
	return resp, nil
}

func (s *Server) RespondToRequest(ctx context.Context, in *bookingv1.RespondToRequestRequest) (*bookingv1.OrderResponse, error) {
	o, err := s.svc.Respond(ctx, in.Id, in.CelebrityId, in.Action, in.Reason)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

func (s *Server) DeliverVideo(ctx context.Context, in *bookingv1.DeliverVideoRequest) (*bookingv1.OrderResponse, error) {
	o, err := s.svc.Deliver(ctx, in.Id, in.CelebrityId, in.VideoUrl)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

func (s *Server) ReviewVideo(ctx context.Context, in *bookingv1.ReviewVideoRequest) (*bookingv1.OrderResponse, error) {
	o, err := s.svc.Review(ctx, in.Id, in.CustomerId, in.Approve, in.Feedback)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

// UpdateStatus is the admin override. Other callers may only cancel their own
// unpaid orders.
func (s *Server) UpdateStatus(ctx context.Context, in *bookingv1.UpdateStatusRequest) (*bookingv1.OrderResponse, error) {
	u, ok := rpc.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "caller unknown")
	}
	var o *domain.Order
	var err error
	switch {
	case u.Role == "ADMIN":
		o, err = s.svc.SetStatus(ctx, in.Id, in.Status, in.Reason)
	case in.Status == domain.StatusCancelled:
		o, err = s.svc.CancelUnpaid(ctx, in.Id, u.ID, in.Reason)
	default:
		return nil, status.Error(codes.PermissionDenied, "admin only")
	}
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.OrderResponse{Order: toPB(o)}, nil
}

func (s *Server) GetEarnings(ctx context.Context, in *bookingv1.GetEarningsRequest) (*bookingv1.Earnings, error) {
	e, err := s.svc.Earnings(ctx, in.CelebrityId)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.Earnings{
		CelebrityId:     in.CelebrityId,
		Currency:        s.currency,
		CompletedOrders: e.CompletedOrders,
		PendingOrders:   e.PendingOrders,
		Earned:          e.Earned,
		Pending:         e.Pending,
		TipsEarned:      e.TipsEarned,
	}, nil
}

func (s *Server) GetStats(ctx context.Context, _ *bookingv1.GetStatsRequest) (*bookingv1.Stats, error) {
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &bookingv1.Stats{
		OrdersByStatus:   st.ByStatus,
		TotalOrders:      st.Total,
		GrossRevenue:     st.GrossRevenue,
		PlatformRevenue:  st.PlatformRevenue,
		CelebrityRevenue: st.CelebrityRevenue,
		Tips:             st.Tips,
	}, nil
}
