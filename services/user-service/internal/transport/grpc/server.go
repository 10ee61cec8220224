package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound: codes.NotFound,
	domain.ErrInvalid:  codes.InvalidArgument,
}

type Server struct {
	userv1.UnimplementedUserServiceServer
	svc *service.UserSvc
}

func NewServer(s *service.UserSvc) *Server {
	return &Server{svc: s}
}

func toPB(u *domain.User) *userv1.User {
	return &userv1.User{
		Id:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		AvatarUrl: u.AvatarURL,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func admin(ctx context.Context) (rpc.User, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok || caller.Role != auth.RoleAdmin {
		return caller, status.Error(codes.PermissionDenied, "admin only")
	}
	return caller, nil
}

func (s *Server) SyncFromAuth(ctx context.Context, in *userv1.SyncFromAuthRequest) (*userv1.UserResponse, error) {
	u, err := s.svc.SyncFromAuth(ctx, in.Id, in.Email, in.Name, in.Role)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserResponse{User: toPB(u)}, nil
}

// GetMe resolves the caller from metadata: by id first, then by email, and
// creates the profile from the token claims when neither exists yet.
func (s *Server) GetMe(ctx context.Context, _ *userv1.GetMeRequest) (*userv1.UserResponse, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}
	u, err := s.svc.GetByID(ctx, caller.ID)
	if errors.Is(err, domain.ErrNotFound) && caller.Email != "" {
		u, err = s.svc.GetByEmail(ctx, caller.Email)
		if errors.Is(err, domain.ErrNotFound) {
			u, err = s.svc.SyncFromAuth(ctx, caller.ID, caller.Email, "", caller.Role)
		}
	}
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserResponse{User: toPB(u)}, nil
}

func (s *Server) GetUser(ctx context.Context, in *userv1.GetUserRequest) (*userv1.UserResponse, error) {
	u, err := s.svc.GetByID(ctx, in.Id)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserResponse{User: toPB(u)}, nil
}

// UpdateUser edits the caller's own profile. Admins may name another id.
func (s *Server) UpdateUser(ctx context.Context, in *userv1.UpdateUserRequest) (*userv1.UserResponse, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}
	id := in.Id
	if id == "" {
		id = caller.ID
	}
	if id != caller.ID && caller.Role != auth.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "cannot edit another user")
	}
	u, err := s.svc.Update(ctx, id, in.Name, in.Phone, in.AvatarUrl)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserResponse{User: toPB(u)}, nil
}

func (s *Server) ListUsers(ctx context.Context, in *userv1.ListUsersRequest) (*userv1.ListUsersResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	users, total, err := s.svc.List(ctx, in.Page, in.PageSize, in.Query, in.Role)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &userv1.ListUsersResponse{Total: total, Users: make([]*userv1.User, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, toPB(&users[i]))
	}
	return resp, nil
}

func (s *Server) AdminUpdateUser(ctx context.Context, in *userv1.AdminUpdateUserRequest) (*userv1.UserResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	u, err := s.svc.AdminUpdate(ctx, in.Id, in.Role, in.Active)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserResponse{User: toPB(u)}, nil
}

func (s *Server) GetUserStats(ctx context.Context, _ *userv1.GetUserStatsRequest) (*userv1.UserStats, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.UserStats{ByRole: st.ByRole, Total: st.Total, Active: st.Active}, nil
}

// GetSettings is readable by any caller; the gateway checks flags such as
// bookings_enabled on public routes.
func (s *Server) GetSettings(ctx context.Context, _ *userv1.GetSettingsRequest) (*userv1.Settings, error) {
	vals, err := s.svc.Settings(ctx)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.Settings{Settings: vals}, nil
}

func (s *Server) UpdateSettings(ctx context.Context, in *userv1.UpdateSettingsRequest) (*userv1.Settings, error) {
	caller, err := admin(ctx)
	if err != nil {
		return nil, err
	}
	vals, err := s.svc.UpdateSettings(ctx, in.Settings, caller.Email)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &userv1.Settings{Settings: vals}, nil
}
