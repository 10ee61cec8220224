// Package userv1 is the contract of user-service.
package userv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const ServiceName = "user.v1.UserService"

type User struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	AvatarUrl string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type SyncFromAuthRequest struct {
	Id    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type GetMeRequest struct{}

type GetUserRequest struct {
	Id string `json:"id"`
}

type UpdateUserRequest struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarUrl string `json:"avatar_url"`
}

type ListUsersRequest struct {
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
	Query    string `json:"query"`
	Role     string `json:"role"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
	Total int64   `json:"total"`
}

type AdminUpdateUserRequest struct {
	Id     string `json:"id"`
	Role   string `json:"role"`
	Active *bool  `json:"active,omitempty"`
}

type GetUserStatsRequest struct{}

type UserStats struct {
	ByRole map[string]int64 `json:"by_role"`
	Total  int64            `json:"total"`
	Active int64            `json:"active"`
}

// Setting keys the gateway reads.
const (
	SettingBookingsEnabled  = "bookings_enabled"
	SettingApplicationsOpen = "applications_open"
)

type GetSettingsRequest struct{}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

type Settings struct {
	Settings map[string]string `json:"settings"`
}

type UserServiceServer interface {
	SyncFromAuth(context.Context, *SyncFromAuthRequest) (*UserResponse, error)
	GetMe(context.Context, *GetMeRequest) (*UserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	AdminUpdateUser(context.Context, *AdminUpdateUserRequest) (*UserResponse, error)
	GetUserStats(context.Context, *GetUserStatsRequest) (*UserStats, error)
	GetSettings(context.Context, *GetSettingsRequest) (*Settings, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error)
}

type UnimplementedUserServiceServer struct{}

func (UnimplementedUserServiceServer) SyncFromAuth(context.Context, *SyncFromAuthRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "SyncFromAuth not implemented")
}
func (UnimplementedUserServiceServer) GetMe(context.Context, *GetMeRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetMe not implemented")
}
func (UnimplementedUserServiceServer) GetUser(context.Context, *GetUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetUser not implemented")
}
func (UnimplementedUserServiceServer) UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "UpdateUser not implemented")
}
func (UnimplementedUserServiceServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListUsers not implemented")
}
func (UnimplementedUserServiceServer) AdminUpdateUser(context.Context, *AdminUpdateUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "AdminUpdateUser not implemented")
}
func (UnimplementedUserServiceServer) GetUserStats(context.Context, *GetUserStatsRequest) (*UserStats, error) {
	return nil, status.Error(codes.Unimplemented, "GetUserStats not implemented")
}
func (UnimplementedUserServiceServer) GetSettings(context.Context, *GetSettingsRequest) (*Settings, error) {
	return nil, status.Error(codes.Unimplemented, "GetSettings not implemented")
}
func (UnimplementedUserServiceServer) UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error) {
	return nil, status.Error(codes.Unimplemented, "UpdateSettings not implemented")
}

var UserService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "SyncFromAuth", UserServiceServer.SyncFromAuth),
		rpc.Unary(ServiceName, "GetMe", UserServiceServer.GetMe),
		rpc.Unary(ServiceName, "GetUser", UserServiceServer.GetUser),
		rpc.Unary(ServiceName, "UpdateUser", UserServiceServer.UpdateUser),
		rpc.Unary(ServiceName, "ListUsers", UserServiceServer.ListUsers),
		rpc.Unary(ServiceName, "AdminUpdateUser", UserServiceServer.AdminUpdateUser),
		rpc.Unary(ServiceName, "GetUserStats", UserServiceServer.GetUserStats),
		rpc.Unary(ServiceName, "GetSettings", UserServiceServer.GetSettings),
		rpc.Unary(ServiceName, "UpdateSettings", UserServiceServer.UpdateSettings),
	},
}

func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserService_ServiceDesc, srv)
}

type UserServiceClient interface {
	SyncFromAuth(ctx context.Context, in *SyncFromAuthRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetMe(ctx context.Context, in *GetMeRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error)
	AdminUpdateUser(ctx context.Context, in *AdminUpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetUserStats(ctx context.Context, in *GetUserStatsRequest, opts ...grpc.CallOption) (*UserStats, error)
	GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*Settings, error)
	UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error)
}

type userServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUserServiceClient(cc grpc.ClientConnInterface) UserServiceClient {
	return &userServiceClient{cc: cc}
}

func (c *userServiceClient) SyncFromAuth(ctx context.Context, in *SyncFromAuthRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, ServiceName, "SyncFromAuth", in, opts...)
}
func (c *userServiceClient) GetMe(ctx context.Context, in *GetMeRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, ServiceName, "GetMe", in, opts...)
}
func (c *userServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, ServiceName, "GetUser", in, opts...)
}
func (c *userServiceClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, ServiceName, "UpdateUser", in, opts...)
}
func (c *userServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return rpc.Invoke[ListUsersResponse](ctx, c.cc, ServiceName, "ListUsers", in, opts...)
}
func (c *userServiceClient) AdminUpdateUser(ctx context.Context, in *AdminUpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, ServiceName, "AdminUpdateUser", in, opts...)
}
func (c *userServiceClient) GetUserStats(ctx context.Context, in *GetUserStatsRequest, opts ...grpc.CallOption) (*UserStats, error) {
	return rpc.Invoke[UserStats](ctx, c.cc, ServiceName, "GetUserStats", in, opts...)
}
func (c *userServiceClient) GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return rpc.Invoke[Settings](ctx, c.cc, ServiceName, "GetSettings", in, opts...)
}
func (c *userServiceClient) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return rpc.Invoke[Settings](ctx, c.cc, ServiceName, "UpdateSettings", in, opts...)
}
