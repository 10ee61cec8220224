// Package bookingv1 is the contract of booking-service.
package bookingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/pricing"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const ServiceName = "booking.v1.BookingService"

const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusPending        = "PENDING"
	StatusAccepted       = "ACCEPTED"
	StatusDelivered      = "DELIVERED"
	StatusCompleted      = "COMPLETED"
	StatusCancelled      = "CANCELLED"

	ApprovalNone     = "NONE"
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"

	ActionAccept  = "accept"
	ActionDecline = "decline"
)

type Line struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type Order struct {
	Id              string            `json:"id"`
	OrderNumber     string            `json:"order_number"`
	CelebrityId     string            `json:"celebrity_id"`
	CelebrityUserId string            `json:"celebrity_user_id"`
	CustomerId      string            `json:"customer_id"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	ServiceType     string            `json:"service_type"`
	RecipientName   string            `json:"recipient_name"`
	Occasion        string            `json:"occasion"`
	Message         string            `json:"message"`
	Instructions    string            `json:"instructions,omitempty"`
	Amount          int64             `json:"amount"`
	TipAmount       int64             `json:"tip_amount"`
	Currency        string            `json:"currency"`
	IsVip           bool              `json:"is_vip"`
	Lines           []Line            `json:"lines"`
	Split           pricing.Breakdown `json:"split"`
	Status          string            `json:"status"`
	ApprovalStatus  string            `json:"approval_status"`
	VideoUrl        string            `json:"video_url,omitempty"`
	PaymentId       string            `json:"payment_id,omitempty"`
	CancelReason    string            `json:"cancel_reason,omitempty"`
	Feedback        string            `json:"feedback,omitempty"`
	CreatedAt       string            `json:"created_at"`
	PaidAt          string            `json:"paid_at,omitempty"`
	DeliveredAt     string            `json:"delivered_at,omitempty"`
	CompletedAt     string            `json:"completed_at,omitempty"`
}

type CreateOrderRequest struct {
	CelebrityId     string            `json:"celebrity_id"`
	CelebrityUserId string            `json:"celebrity_user_id"`
	CustomerId      string            `json:"customer_id"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	ServiceType     string            `json:"service_type"`
	RecipientName   string            `json:"recipient_name"`
	Occasion        string            `json:"occasion"`
	Message         string            `json:"message"`
	Instructions    string            `json:"instructions"`
	Amount          int64             `json:"amount"`
	TipAmount       int64             `json:"tip_amount"`
	Currency        string            `json:"currency"`
	IsVip           bool              `json:"is_vip"`
	Lines           []Line            `json:"lines"`
	Split           pricing.Breakdown `json:"split"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type GetOrderRequest struct {
	Id          string `json:"id"`
	OrderNumber string `json:"order_number"`
}

type ListOrdersRequest struct {
	Page        int32  `json:"page"`
	PageSize    int32  `json:"page_size"`
	CustomerId  string `json:"customer_id"`
	CelebrityId string `json:"celebrity_id"`
	Status      string `json:"status"`
	PaidOnly    bool   `json:"paid_only"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
	Total  int64    `json:"total"`
}

type RespondToRequestRequest struct {
	Id          string `json:"id"`
	CelebrityId string `json:"celebrity_id"`
	Action      string `json:"action"`
	Reason      string `json:"reason"`
}

type DeliverVideoRequest struct {
	Id          string `json:"id"`
	CelebrityId string `json:"celebrity_id"`
	VideoUrl    string `json:"video_url"`
}

type ReviewVideoRequest struct {
	Id         string `json:"id"`
	CustomerId string `json:"customer_id"`
	Approve    bool   `json:"approve"`
	Feedback   string `json:"feedback"`
}

type UpdateStatusRequest struct {
	Id     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type GetEarningsRequest struct {
	CelebrityId string `json:"celebrity_id"`
}

type Earnings struct {
	CelebrityId     string `json:"celebrity_id"`
	Currency        string `json:"currency"`
	CompletedOrders int64  `json:"completed_orders"`
	PendingOrders   int64  `json:"pending_orders"`
	// Earned counts COMPLETED orders; Pending counts paid, not yet completed ones.
	Earned     int64 `json:"earned"`
	Pending    int64 `json:"pending"`
	TipsEarned int64 `json:"tips_earned"`
}

type GetStatsRequest struct{}

type Stats struct {
	OrdersByStatus   map[string]int64 `json:"orders_by_status"`
	TotalOrders      int64            `json:"total_orders"`
	GrossRevenue     int64            `json:"gross_revenue"`
	PlatformRevenue  int64            `json:"platform_revenue"`
	CelebrityRevenue int64            `json:"celebrity_revenue"`
	Tips             int64            `json:"tips"`
}

type BookingServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	RespondToRequest(context.Context, *RespondToRequestRequest) (*OrderResponse, error)
	DeliverVideo(context.Context, *DeliverVideoRequest) (*OrderResponse, error)
	ReviewVideo(context.Context, *ReviewVideoRequest) (*OrderResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*OrderResponse, error)
	GetEarnings(context.Context, *GetEarningsRequest) (*Earnings, error)
	GetStats(context.Context, *GetStatsRequest) (*Stats, error)
}

type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "CreateOrder not implemented")
}
func (UnimplementedBookingServiceServer) GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetOrder not implemented")
}
func (UnimplementedBookingServiceServer) ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListOrders not implemented")
}
func (UnimplementedBookingServiceServer) RespondToRequest(context.Context, *RespondToRequestRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "RespondToRequest not implemented")
}
func (UnimplementedBookingServiceServer) DeliverVideo(context.Context, *DeliverVideoRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "DeliverVideo not implemented")
}
func (UnimplementedBookingServiceServer) ReviewVideo(context.Context, *ReviewVideoRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ReviewVideo not implemented")
}
func (UnimplementedBookingServiceServer) UpdateStatus(context.Context, *UpdateStatusRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "UpdateStatus not implemented")
}
func (UnimplementedBookingServiceServer) GetEarnings(context.Context, *GetEarningsRequest) (*Earnings, error) {
	return nil, status.Error(codes.Unimplemented, "GetEarnings not implemented")
}
func (UnimplementedBookingServiceServer) GetStats(context.Context, *GetStatsRequest) (*Stats, error) {
	return nil, status.Error(codes.Unimplemented, "GetStats not implemented")
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateOrder", BookingServiceServer.CreateOrder),
		rpc.Unary(ServiceName, "GetOrder", BookingServiceServer.GetOrder),
		rpc.Unary(ServiceName, "ListOrders", BookingServiceServer.ListOrders),
		rpc.Unary(ServiceName, "RespondToRequest", BookingServiceServer.RespondToRequest),
		rpc.Unary(ServiceName, "DeliverVideo", BookingServiceServer.DeliverVideo),
		rpc.Unary(ServiceName, "ReviewVideo", BookingServiceServer.ReviewVideo),
		rpc.Unary(ServiceName, "UpdateStatus", BookingServiceServer.UpdateStatus),
		rpc.Unary(ServiceName, "GetEarnings", BookingServiceServer.GetEarnings),
		rpc.Unary(ServiceName, "GetStats", BookingServiceServer.GetStats),
	},
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

type BookingServiceClient interface {
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	RespondToRequest(ctx context.Context, in *RespondToRequestRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	DeliverVideo(ctx context.Context, in *DeliverVideoRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	ReviewVideo(ctx context.Context, in *ReviewVideoRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	GetEarnings(ctx context.Context, in *GetEarningsRequest, opts ...grpc.CallOption) (*Earnings, error)
	GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc: cc}
}

func (c *bookingServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "CreateOrder", in, opts...)
}
func (c *bookingServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "GetOrder", in, opts...)
}
func (c *bookingServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return rpc.Invoke[ListOrdersResponse](ctx, c.cc, ServiceName, "ListOrders", in, opts...)
}
func (c *bookingServiceClient) RespondToRequest(ctx context.Context, in *RespondToRequestRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "RespondToRequest", in, opts...)
}
func (c *bookingServiceClient) DeliverVideo(ctx context.Context, in *DeliverVideoRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "DeliverVideo", in, opts...)
}
func (c *bookingServiceClient) ReviewVideo(ctx context.Context, in *ReviewVideoRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "ReviewVideo", in, opts...)
}
func (c *bookingServiceClient) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return rpc.Invoke[OrderResponse](ctx, c.cc, ServiceName, "UpdateStatus", in, opts...)
}
func (c *bookingServiceClient) GetEarnings(ctx context.Context, in *GetEarningsRequest, opts ...grpc.CallOption) (*Earnings, error) {
	return rpc.Invoke[Earnings](ctx, c.cc, ServiceName, "GetEarnings", in, opts...)
}
func (c *bookingServiceClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error) {
	return rpc.Invoke[Stats](ctx, c.cc, ServiceName, "GetStats", in, opts...)
}
