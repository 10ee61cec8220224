// Package supportv1 is the contract of support-service.
package supportv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const ServiceName = "support.v1.SupportService"

const (
	StatusOpen      = "OPEN"
	StatusResponded = "RESPONDED"
	StatusClosed    = "CLOSED"
)

type Response struct {
	Id         string `json:"id"`
	AuthorName string `json:"author_name"`
	AuthorRole string `json:"author_role"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
}

type Ticket struct {
	Id           string      `json:"id"`
	TicketNumber string      `json:"ticket_number"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	Category     string      `json:"category"`
	Subject      string      `json:"subject"`
	Message      string      `json:"message"`
	Priority     string      `json:"priority"`
	Status       string      `json:"status"`
	UserId       string      `json:"user_id,omitempty"`
	Responses    []*Response `json:"responses"`
	CreatedAt    string      `json:"created_at"`
	ClosedAt     string      `json:"closed_at,omitempty"`
}

type TicketResponse struct {
	Ticket *Ticket `json:"ticket"`
}

type CreateTicketRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

type LookupTicketRequest struct {
	TicketNumber string `json:"ticket_number"`
	Email        string `json:"email"`
}

type ListTicketsRequest struct {
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Query    string `json:"query"`
}

type ListTicketsResponse struct {
	Tickets []*Ticket `json:"tickets"`
	Total   int64     `json:"total"`
}

type RespondToTicketRequest struct {
	Id         string `json:"id"`
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
}

type UpdateTicketStatusRequest struct {
	Id       string `json:"id"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type GetStatsRequest struct{}

type Stats struct {
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	Open       int64            `json:"open"`
	Total      int64            `json:"total"`
}

type SupportServiceServer interface {
	CreateTicket(context.Context, *CreateTicketRequest) (*TicketResponse, error)
	LookupTicket(context.Context, *LookupTicketRequest) (*TicketResponse, error)
	ListTickets(context.Context, *ListTicketsRequest) (*ListTicketsResponse, error)
	RespondToTicket(context.Context, *RespondToTicketRequest) (*TicketResponse, error)
	UpdateTicketStatus(context.Context, *UpdateTicketStatusRequest) (*TicketResponse, error)
	GetStats(context.Context, *GetStatsRequest) (*Stats, error)
}

type UnimplementedSupportServiceServer struct{}

func (UnimplementedSupportServiceServer) CreateTicket(context.Context, *CreateTicketRequest) (*TicketResponse, error) {
	return nil, status.Error(codes.Unimplemented, "CreateTicket not implemented")
}
func (UnimplementedSupportServiceServer) LookupTicket(context.Context, *LookupTicketRequest) (*TicketResponse, error) {
	return nil, status.Error(codes.Unimplemented, "LookupTicket not implemented")
}
func (UnimplementedSupportServiceServer) ListTickets(context.Context, *ListTicketsRequest) (*ListTicketsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListTickets not implemented")
}
func (UnimplementedSupportServiceServer) RespondToTicket(context.Context, *RespondToTicketRequest) (*TicketResponse, error) {
	return nil, status.Error(codes.Unimplemented, "RespondToTicket not implemented")
}
func (UnimplementedSupportServiceServer) UpdateTicketStatus(context.Context, *UpdateTicketStatusRequest) (*TicketResponse, error) {
	return nil, status.Error(codes.Unimplemented, "UpdateTicketStatus not implemented")
}
func (UnimplementedSupportServiceServer) GetStats(context.Context, *GetStatsRequest) (*Stats, error) {
	return nil, status.Error(codes.Unimplemented, "GetStats not implemented")
}

var SupportService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SupportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateTicket", SupportServiceServer.CreateTicket),
		rpc.Unary(ServiceName, "LookupTicket", SupportServiceServer.LookupTicket),
		rpc.Unary(ServiceName, "ListTickets", SupportServiceServer.ListTickets),
		rpc.Unary(ServiceName, "RespondToTicket", SupportServiceServer.RespondToTicket),
		rpc.Unary(ServiceName, "UpdateTicketStatus", SupportServiceServer.UpdateTicketStatus),
		rpc.Unary(ServiceName, "GetStats", SupportServiceServer.GetStats),
	},
}

func RegisterSupportServiceServer(s grpc.ServiceRegistrar, srv SupportServiceServer) {
	s.RegisterService(&SupportService_ServiceDesc, srv)
}

type SupportServiceClient interface {
	CreateTicket(ctx context.Context, in *CreateTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error)
	LookupTicket(ctx context.Context, in *LookupTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error)
	ListTickets(ctx context.Context, in *ListTicketsRequest, opts ...grpc.CallOption) (*ListTicketsResponse, error)
	RespondToTicket(ctx context.Context, in *RespondToTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error)
	UpdateTicketStatus(ctx context.Context, in *UpdateTicketStatusRequest, opts ...grpc.CallOption) (*TicketResponse, error)
	GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error)
}

type supportServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSupportServiceClient(cc grpc.ClientConnInterface) SupportServiceClient {
	return &supportServiceClient{cc: cc}
}

func (c *supportServiceClient) CreateTicket(ctx context.Context, in *CreateTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error) {
	return rpc.Invoke[TicketResponse](ctx, c.cc, ServiceName, "CreateTicket", in, opts...)
}
func (c *supportServiceClient) LookupTicket(ctx context.Context, in *LookupTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error) {
	return rpc.Invoke[TicketResponse](ctx, c.cc, ServiceName, "LookupTicket", in, opts...)
}
func (c *supportServiceClient) ListTickets(ctx context.Context, in *ListTicketsRequest, opts ...grpc.CallOption) (*ListTicketsResponse, error) {
	return rpc.Invoke[ListTicketsResponse](ctx, c.cc, ServiceName, "ListTickets", in, opts...)
}
func (c *supportServiceClient) RespondToTicket(ctx context.Context, in *RespondToTicketRequest, opts ...grpc.CallOption) (*TicketResponse, error) {
	return rpc.Invoke[TicketResponse](ctx, c.cc, ServiceName, "RespondToTicket", in, opts...)
}
func (c *supportServiceClient) UpdateTicketStatus(ctx context.Context, in *UpdateTicketStatusRequest, opts ...grpc.CallOption) (*TicketResponse, error) {
	return rpc.Invoke[TicketResponse](ctx, c.cc, ServiceName, "UpdateTicketStatus", in, opts...)
}
func (c *supportServiceClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error) {
	return rpc.Invoke[Stats](ctx, c.cc, ServiceName, "GetStats", in, opts...)
}
