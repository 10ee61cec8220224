package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound: codes.NotFound,
	domain.ErrInvalid:  codes.InvalidArgument,
	domain.ErrClosed:   codes.FailedPrecondition,
}

type Server struct {
	supportv1.UnimplementedSupportServiceServer
	svc *service.SupportSvc
}

func NewServer(s *service.SupportSvc) *Server {
	return &Server{svc: s}
}

func admin(ctx context.Context) (rpc.User, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok || caller.Role != auth.RoleAdmin {
		return caller, status.Error(codes.PermissionDenied, "admin only")
	}
	return caller, nil
}

// CreateTicket is public. A signed-in caller is linked to the ticket.
func (s *Server) CreateTicket(ctx context.Context, in *supportv1.CreateTicketRequest) (*supportv1.TicketResponse, error) {
	caller, _ := rpc.UserFrom(ctx)
	t, err := s.svc.Create(ctx, service.CreateInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Category: in.Category,
		Subject:  in.Subject,
		Message:  in.Message,
		Priority: in.Priority,
		UserID:   caller.ID,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &supportv1.TicketResponse{Ticket: toPB(t)}, nil
}

func (s *Server) LookupTicket(ctx context.Context, in *supportv1.LookupTicketRequest) (*supportv1.TicketResponse, error) {
	t, err := s.svc.Lookup(ctx, in.TicketNumber, in.Email)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &supportv1.TicketResponse{Ticket: toPB(t)}, nil
}

func (s *Server) ListTickets(ctx context.Context, in *supportv1.ListTicketsRequest) (*supportv1.ListTicketsResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	list, total, err := s.svc.List(ctx, in.Page, in.PageSize, repository.Filter{Status: in.Status, Priority: in.Priority, Query: in.Query})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &supportv1.ListTicketsResponse{Total: total, Tickets: make([]*supportv1.Ticket, 0, len(list))}
	for i := range list {
		resp.Tickets = append(resp.Tickets, toPB(&list[i]))
	}
	return resp, nil
}

func (s *Server) RespondToTicket(ctx context.Context, in *supportv1.RespondToTicketRequest) (*supportv1.TicketResponse, error) {
	caller, err := admin(ctx)
	if err != nil {
		return nil, err
	}
	name := in.AuthorName
	if name == "" {
		name = "Support team"
	}
	t, err := s.svc.Respond(ctx, in.Id, service.Author{ID: caller.ID, Name: name, Role: caller.Role}, in.Message)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &supportv1.TicketResponse{Ticket: toPB(t)}, nil
}

func (s *Server) UpdateTicketStatus(ctx context.Context, in *supportv1.UpdateTicketStatusRequest) (*supportv1.TicketResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	t, err := s.svc.SetStatus(ctx, in.Id, in.Status, in.Priority)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &supportv1.TicketResponse{Ticket: toPB(t)}, nil
}

func (s *Server) GetStats(ctx context.Context, _ *supportv1.GetStatsRequest) (*supportv1.Stats, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &supportv1.Stats{
		ByStatus:   st.ByStatus,
		ByPriority: st.ByPriority,
		Open:       st.ByStatus[domain.StatusOpen] + st.ByStatus[domain.StatusResponded],
		Total:      st.Total,
	}, nil
}

func toPB(t *domain.Ticket) *supportv1.Ticket {
	out := &supportv1.Ticket{
		Id:           t.ID,
		TicketNumber: t.TicketNumber,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Category:     t.Category,
		Subject:      t.Subject,
		Message:      t.Message,
		Priority:     t.Priority,
		Status:       t.Status,
		UserId:       t.UserID,
		Responses:    make([]*supportv1.Response, 0, len(t.Responses)),
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.ClosedAt != nil {
		out.ClosedAt = t.ClosedAt.UTC().Format(time.RFC3339)
	}
	for _, r := range t.Responses {
		out.Responses = append(out.Responses, &supportv1.Response{
			Id:         r.ID,
			AuthorName: r.AuthorName,
			AuthorRole: r.AuthorRole,
			Message:    r.Message,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
