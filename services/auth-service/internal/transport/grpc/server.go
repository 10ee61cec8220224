package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound:       codes.NotFound,
	domain.ErrInvalid:        codes.InvalidArgument,
	domain.ErrEmailTaken:     codes.AlreadyExists,
	domain.ErrBadCredentials: codes.Unauthenticated,
	domain.ErrDisabled:       codes.PermissionDenied,
}

type Server struct {
	authv1.UnimplementedAuthServiceServer
	svc *service.AuthSvc
}

func NewServer(s *service.AuthSvc) *Server {
	return &Server{svc: s}
}

func toPB(u *domain.User) *authv1.User {
	return &authv1.User{Id: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role), Active: u.Active}
}

func (s *Server) Register(ctx context.Context, in *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	u, err := s.svc.Register(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &authv1.RegisterResponse{User: toPB(u)}, nil
}

func (s *Server) Login(ctx context.Context, in *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	u, t, err := s.svc.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &authv1.LoginResponse{AccessToken: t.Access, RefreshToken: t.Refresh, User: toPB(u)}, nil
}

func (s *Server) Refresh(ctx context.Context, in *authv1.RefreshRequest) (*authv1.LoginResponse, error) {
	u, t, err := s.svc.Refresh(ctx, in.RefreshToken)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &authv1.LoginResponse{AccessToken: t.Access, RefreshToken: t.Refresh, User: toPB(u)}, nil
}

func (s *Server) ValidateToken(ctx context.Context, in *authv1.ValidateTokenRequest) (*authv1.ValidateTokenResponse, error) {
	u, ok := s.svc.Validate(ctx, in.Token)
	if !ok {
		return &authv1.ValidateTokenResponse{Valid: false}, nil
	}
	return &authv1.ValidateTokenResponse{UserId: u.ID, Role: string(u.Role), Valid: true}, nil
}

func (s *Server) UpdateAccount(ctx context.Context, in *authv1.UpdateAccountRequest) (*authv1.UpdateAccountResponse, error) {
	if caller, ok := rpc.UserFrom(ctx); !ok || caller.Role != auth.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "admin only")
	}
	u, err := s.svc.UpdateAccount(ctx, in.Id, in.Role, in.Active)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &authv1.UpdateAccountResponse{User: toPB(u)}, nil
}
