// Package celebrityv1 is the contract of celebrity-service.
package celebrityv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const ServiceName = "celebrity.v1.CelebrityService"

const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

type Celebrity struct {
	Id           string   `json:"id"`
	UserId       string   `json:"user_id,omitempty"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Bio          string   `json:"bio"`
	AvatarUrl    string   `json:"avatar_url"`
	Price        int64    `json:"price"`
	IsVip        bool     `json:"is_vip"`
	Active       bool     `json:"active"`
	ResponseDays int32    `json:"response_days"`
}

type CelebrityResponse struct {
	Celebrity *Celebrity `json:"celebrity"`
}

type CreateCelebrityRequest struct {
	UserId       string   `json:"user_id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Bio          string   `json:"bio"`
	AvatarUrl    string   `json:"avatar_url"`
	Price        int64    `json:"price"`
	IsVip        bool     `json:"is_vip"`
	ResponseDays int32    `json:"response_days"`
}

// GetCelebrityRequest looks a celebrity up by id or slug.
type GetCelebrityRequest struct {
	Id   string `json:"id"`
	Slug string `json:"slug"`
}

type GetByUserRequest struct {
	UserId string `json:"user_id"`
}

type ListCelebritiesRequest struct {
	Page            int32  `json:"page"`
	PageSize        int32  `json:"page_size"`
	Query           string `json:"query"`
	Category        string `json:"category"`
	VipOnly         bool   `json:"vip_only"`
	IncludeInactive bool   `json:"include_inactive"`
}

type ListCelebritiesResponse struct {
	Celebrities []*Celebrity `json:"celebrities"`
	Total       int64        `json:"total"`
}

// UpdateProfileRequest edits the caller's own record. Nil fields are kept.
type UpdateProfileRequest struct {
	Bio          *string  `json:"bio,omitempty"`
	AvatarUrl    *string  `json:"avatar_url,omitempty"`
	Price        *int64   `json:"price,omitempty"`
	Active       *bool    `json:"active,omitempty"`
	ResponseDays *int32   `json:"response_days,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type SetTierRequest struct {
	Id     string `json:"id"`
	IsVip  *bool  `json:"is_vip,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

type Application struct {
	Id                   string            `json:"id"`
	UserId               string            `json:"user_id"`
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	Category             string            `json:"category"`
	Bio                  string            `json:"bio"`
	SocialHandle         string            `json:"social_handle"`
	SocialLinks          map[string]string `json:"social_links,omitempty"`
	Price                int64             `json:"price"`
	ProfilePhotoUrl      string            `json:"profile_photo_url"`
	IdDocumentUrl        string            `json:"id_document_url"`
	VerificationVideoUrl string            `json:"verification_video_url"`
	Status               string            `json:"status"`
	ReviewerNote         string            `json:"reviewer_note,omitempty"`
	ReviewedBy           string            `json:"reviewed_by,omitempty"`
	CelebrityId          string            `json:"celebrity_id,omitempty"`
	CreatedAt            string            `json:"created_at"`
}

type SubmitApplicationRequest struct {
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	Category             string            `json:"category"`
	Bio                  string            `json:"bio"`
	SocialHandle         string            `json:"social_handle"`
	SocialLinks          map[string]string `json:"social_links"`
	Price                int64             `json:"price"`
	ProfilePhotoUrl      string            `json:"profile_photo_url"`
	IdDocumentUrl        string            `json:"id_document_url"`
	VerificationVideoUrl string            `json:"verification_video_url"`
}

type ApplicationResponse struct {
	Application *Application `json:"application"`
	Celebrity   *Celebrity   `json:"celebrity,omitempty"`
}

type ListApplicationsRequest struct {
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
	Status   string `json:"status"`
	UserId   string `json:"user_id"`
}

type ListApplicationsResponse struct {
	Applications []*Application `json:"applications"`
	Total        int64          `json:"total"`
}

type ReviewApplicationRequest struct {
	Id      string `json:"id"`
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type GetStatsRequest struct{}

type Stats struct {
	Celebrities         int64 `json:"celebrities"`
	ActiveCelebrities   int64 `json:"active_celebrities"`
	VipCelebrities      int64 `json:"vip_celebrities"`
	PendingApplications int64 `json:"pending_applications"`
}

type CelebrityServiceServer interface {
	CreateCelebrity(context.Context, *CreateCelebrityRequest) (*CelebrityResponse, error)
	GetCelebrity(context.Context, *GetCelebrityRequest) (*CelebrityResponse, error)
	GetByUser(context.Context, *GetByUserRequest) (*CelebrityResponse, error)
	ListCelebrities(context.Context, *ListCelebritiesRequest) (*ListCelebritiesResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*CelebrityResponse, error)
	SetTier(context.Context, *SetTierRequest) (*CelebrityResponse, error)
	SubmitApplication(context.Context, *SubmitApplicationRequest) (*ApplicationResponse, error)
	ListApplications(context.Context, *ListApplicationsRequest) (*ListApplicationsResponse, error)
	ReviewApplication(context.Context, *ReviewApplicationRequest) (*ApplicationResponse, error)
	GetStats(context.Context, *GetStatsRequest) (*Stats, error)
}

type UnimplementedCelebrityServiceServer struct{}

func (UnimplementedCelebrityServiceServer) CreateCelebrity(context.Context, *CreateCelebrityRequest) (*CelebrityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "CreateCelebrity not implemented")
}
func (UnimplementedCelebrityServiceServer) GetCelebrity(context.Context, *GetCelebrityRequest) (*CelebrityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetCelebrity not implemented")
}
func (UnimplementedCelebrityServiceServer) GetByUser(context.Context, *GetByUserRequest) (*CelebrityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetByUser not implemented")
}
func (UnimplementedCelebrityServiceServer) ListCelebrities(context.Context, *ListCelebritiesRequest) (*ListCelebritiesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListCelebrities not implemented")
}
func (UnimplementedCelebrityServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*CelebrityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "UpdateProfile not implemented")
}
func (UnimplementedCelebrityServiceServer) SetTier(context.Context, *SetTierRequest) (*CelebrityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "SetTier not implemented")
}
func (UnimplementedCelebrityServiceServer) SubmitApplication(context.Context, *SubmitApplicationRequest) (*ApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "SubmitApplication not implemented")
}
func (UnimplementedCelebrityServiceServer) ListApplications(context.Context, *ListApplicationsRequest) (*ListApplicationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListApplications not implemented")
}
func (UnimplementedCelebrityServiceServer) ReviewApplication(context.Context, *ReviewApplicationRequest) (*ApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ReviewApplication not implemented")
}
func (UnimplementedCelebrityServiceServer) GetStats(context.Context, *GetStatsRequest) (*Stats, error) {
	return nil, status.Error(codes.Unimplemented, "GetStats not implemented")
}

var CelebrityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CelebrityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateCelebrity", CelebrityServiceServer.CreateCelebrity),
		rpc.Unary(ServiceName, "GetCelebrity", CelebrityServiceServer.GetCelebrity),
		rpc.Unary(ServiceName, "GetByUser", CelebrityServiceServer.GetByUser),
		rpc.Unary(ServiceName, "ListCelebrities", CelebrityServiceServer.ListCelebrities),
		rpc.Unary(ServiceName, "UpdateProfile", CelebrityServiceServer.UpdateProfile),
		rpc.Unary(ServiceName, "SetTier", CelebrityServiceServer.SetTier),
		rpc.Unary(ServiceName, "SubmitApplication", CelebrityServiceServer.SubmitApplication),
		rpc.Unary(ServiceName, "ListApplications", CelebrityServiceServer.ListApplications),
		rpc.Unary(ServiceName, "ReviewApplication", CelebrityServiceServer.ReviewApplication),
		rpc.Unary(ServiceName, "GetStats", CelebrityServiceServer.GetStats),
	},
}

func RegisterCelebrityServiceServer(s grpc.ServiceRegistrar, srv CelebrityServiceServer) {
	s.RegisterService(&CelebrityService_ServiceDesc, srv)
}

type CelebrityServiceClient interface {
	CreateCelebrity(ctx context.Context, in *CreateCelebrityRequest, opts ...grpc.CallOption) (*CelebrityResponse, error)
	GetCelebrity(ctx context.Context, in *GetCelebrityRequest, opts ...grpc.CallOption) (*CelebrityResponse, error)
	GetByUser(ctx context.Context, in *GetByUserRequest, opts ...grpc.CallOption) (*CelebrityResponse, error)
	ListCelebrities(ctx context.Context, in *ListCelebritiesRequest, opts ...grpc.CallOption) (*ListCelebritiesResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*CelebrityResponse, error)
	SetTier(ctx context.Context, in *SetTierRequest, opts ...grpc.CallOption) (*CelebrityResponse, error)
	SubmitApplication(ctx context.Context, in *SubmitApplicationRequest, opts ...grpc.CallOption) (*ApplicationResponse, error)
	ListApplications(ctx context.Context, in *ListApplicationsRequest, opts ...grpc.CallOption) (*ListApplicationsResponse, error)
	ReviewApplication(ctx context.Context, in *ReviewApplicationRequest, opts ...grpc.CallOption) (*ApplicationResponse, error)
	GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error)
}

type celebrityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCelebrityServiceClient(cc grpc.ClientConnInterface) CelebrityServiceClient {
	return &celebrityServiceClient{cc: cc}
}

func (c *celebrityServiceClient) CreateCelebrity(ctx context.Context, in *CreateCelebrityRequest, opts ...grpc.CallOption) (*CelebrityResponse, error) {
	return rpc.Invoke[CelebrityResponse](ctx, c.cc, ServiceName, "CreateCelebrity", in, opts...)
}
func (c *celebrityServiceClient) GetCelebrity(ctx context.Context, in *GetCelebrityRequest, opts ...grpc.CallOption) (*CelebrityResponse, error) {
	return rpc.Invoke[CelebrityResponse](ctx, c.cc, ServiceName, "GetCelebrity", in, opts...)
}
func (c *celebrityServiceClient) GetByUser(ctx context.Context, in *GetByUserRequest, opts ...grpc.CallOption) (*CelebrityResponse, error) {
	return rpc.Invoke[CelebrityResponse](ctx, c.cc, ServiceName, "GetByUser", in, opts...)
}
func (c *celebrityServiceClient) ListCelebrities(ctx context.Context, in *ListCelebritiesRequest, opts ...grpc.CallOption) (*ListCelebritiesResponse, error) {
	return rpc.Invoke[ListCelebritiesResponse](ctx, c.cc, ServiceName, "ListCelebrities", in, opts...)
}
func (c *celebrityServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*CelebrityResponse, error) {
	return rpc.Invoke[CelebrityResponse](ctx, c.cc, ServiceName, "UpdateProfile", in, opts...)
}
func (c *celebrityServiceClient) SetTier(ctx context.Context, in *SetTierRequest, opts ...grpc.CallOption) (*CelebrityResponse, error) {
	return rpc.Invoke[CelebrityResponse](ctx, c.cc, ServiceName, "SetTier", in, opts...)
}
func (c *celebrityServiceClient) SubmitApplication(ctx context.Context, in *SubmitApplicationRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	return rpc.Invoke[ApplicationResponse](ctx, c.cc, ServiceName, "SubmitApplication", in, opts...)
}
func (c *celebrityServiceClient) ListApplications(ctx context.Context, in *ListApplicationsRequest, opts ...grpc.CallOption) (*ListApplicationsResponse, error) {
	return rpc.Invoke[ListApplicationsResponse](ctx, c.cc, ServiceName, "ListApplications", in, opts...)
}
func (c *celebrityServiceClient) ReviewApplication(ctx context.Context, in *ReviewApplicationRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	return rpc.Invoke[ApplicationResponse](ctx, c.cc, ServiceName, "ReviewApplication", in, opts...)
}
func (c *celebrityServiceClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*Stats, error) {
	return rpc.Invoke[Stats](ctx, c.cc, ServiceName, "GetStats", in, opts...)
}
