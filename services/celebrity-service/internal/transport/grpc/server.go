package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound:  codes.NotFound,
	domain.ErrInvalid:   codes.InvalidArgument,
	domain.ErrConflict:  codes.FailedPrecondition,
	domain.ErrForbidden: codes.PermissionDenied,
}

type Server struct {
	celebrityv1.UnimplementedCelebrityServiceServer
	svc *service.CelebritySvc
}

func NewServer(s *service.CelebritySvc) *Server {
	return &Server{svc: s}
}

func admin(ctx context.Context) (rpc.User, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok || caller.Role != auth.RoleAdmin {
		return caller, status.Error(codes.PermissionDenied, "admin only")
	}
	return caller, nil
}

func (s *Server) CreateCelebrity(ctx context.Context, in *celebrityv1.CreateCelebrityRequest) (*celebrityv1.CelebrityResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	c, err := s.svc.Create(ctx, service.CreateInput{
		UserID:       in.UserId,
		Name:         in.Name,
		Category:     in.Category,
		Tags:         in.Tags,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarUrl,
		Price:        in.Price,
		IsVIP:        in.IsVip,
		ResponseDays: int(in.ResponseDays),
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.CelebrityResponse{Celebrity: toPB(c)}, nil
}

func (s *Server) GetCelebrity(ctx context.Context, in *celebrityv1.GetCelebrityRequest) (*celebrityv1.CelebrityResponse, error) {
	c, err := s.svc.Get(ctx, in.Id, in.Slug)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.CelebrityResponse{Celebrity: toPB(c)}, nil
}

func (s *Server) GetByUser(ctx context.Context, in *celebrityv1.GetByUserRequest) (*celebrityv1.CelebrityResponse, error) {
	c, err := s.svc.GetByUser(ctx, in.UserId)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.CelebrityResponse{Celebrity: toPB(c)}, nil
}

func (s *Server) ListCelebrities(ctx context.Context, in *celebrityv1.ListCelebritiesRequest) (*celebrityv1.ListCelebritiesResponse, error) {
	if in.IncludeInactive {
		if _, err := admin(ctx); err != nil {
			return nil, err
		}
	}
	list, total, err := s.svc.List(ctx, in.Page, in.PageSize, repository.Filter{
		Query:           in.Query,
		Category:        in.Category,
		VIPOnly:         in.VipOnly,
		IncludeInactive: in.IncludeInactive,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &celebrityv1.ListCelebritiesResponse{Total: total, Celebrities: make([]*celebrityv1.Celebrity, 0, len(list))}
	for i := range list {
		resp.Celebrities = append(resp.Celebrities, toPB(&list[i]))
	}
	return resp, nil
}

// UpdateProfile edits the record owned by the calling celebrity.
func (s *Server) UpdateProfile(ctx context.Context, in *celebrityv1.UpdateProfileRequest) (*celebrityv1.CelebrityResponse, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok || caller.Role != auth.RoleCelebrity {
		return nil, status.Error(codes.PermissionDenied, "celebrity only")
	}
	pin := service.ProfileInput{
		Bio:       in.Bio,
		AvatarURL: in.AvatarUrl,
		Price:     in.Price,
		Active:    in.Active,
		Tags:      in.Tags,
	}
	if in.ResponseDays != nil {
		d := int(*in.ResponseDays)
		pin.ResponseDays = &d
	}
	c, err := s.svc.UpdateProfile(ctx, caller.ID, pin)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.CelebrityResponse{Celebrity: toPB(c)}, nil
}

func (s *Server) SetTier(ctx context.Context, in *celebrityv1.SetTierRequest) (*celebrityv1.CelebrityResponse, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	c, err := s.svc.SetTier(ctx, in.Id, in.IsVip, in.Active)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.CelebrityResponse{Celebrity: toPB(c)}, nil
}

func (s *Server) SubmitApplication(ctx context.Context, in *celebrityv1.SubmitApplicationRequest) (*celebrityv1.ApplicationResponse, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}
	a, err := s.svc.SubmitApplication(ctx, service.ApplicationInput{
		UserID:               caller.ID,
		Name:                 in.Name,
		Email:                in.Email,
		Phone:                in.Phone,
		Category:             in.Category,
		Bio:                  in.Bio,
		SocialHandle:         in.SocialHandle,
		SocialLinks:          in.SocialLinks,
		Price:                in.Price,
		ProfilePhotoURL:      in.ProfilePhotoUrl,
		IDDocumentURL:        in.IdDocumentUrl,
		VerificationVideoURL: in.VerificationVideoUrl,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.ApplicationResponse{Application: appToPB(a)}, nil
}

// ListApplications shows admins every application and anyone else only
// their own.
func (s *Server) ListApplications(ctx context.Context, in *celebrityv1.ListApplicationsRequest) (*celebrityv1.ListApplicationsResponse, error) {
	caller, ok := rpc.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}
	userID := in.UserId
	if caller.Role != auth.RoleAdmin {
		userID = caller.ID
	}
	list, total, err := s.svc.ListApplications(ctx, in.Page, in.PageSize, in.Status, userID)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &celebrityv1.ListApplicationsResponse{Total: total, Applications: make([]*celebrityv1.Application, 0, len(list))}
	for i := range list {
		resp.Applications = append(resp.Applications, appToPB(&list[i]))
	}
	return resp, nil
}

func (s *Server) ReviewApplication(ctx context.Context, in *celebrityv1.ReviewApplicationRequest) (*celebrityv1.ApplicationResponse, error) {
	caller, err := admin(ctx)
	if err != nil {
		return nil, err
	}
	a, c, err := s.svc.ReviewApplication(ctx, in.Id, in.Approve, in.Note, caller.ID)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	resp := &celebrityv1.ApplicationResponse{Application: appToPB(a)}
	if c != nil {
		resp.Celebrity = toPB(c)
	}
	return resp, nil
}

func (s *Server) GetStats(ctx context.Context, _ *celebrityv1.GetStatsRequest) (*celebrityv1.Stats, error) {
	if _, err := admin(ctx); err != nil {
		return nil, err
	}
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &celebrityv1.Stats{
		Celebrities:         st.Celebrities,
		ActiveCelebrities:   st.ActiveCelebrities,
		VipCelebrities:      st.VIPCelebrities,
		PendingApplications: st.PendingApplications,
	}, nil
}

func toPB(c *domain.Celebrity) *celebrityv1.Celebrity {
	out := &celebrityv1.Celebrity{
		Id:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Category:     c.Category,
		Tags:         []string(c.Tags),
		Bio:          c.Bio,
		AvatarUrl:    c.AvatarURL,
		Price:        c.Price,
		IsVip:        c.IsVIP,
		Active:       c.Active,
		ResponseDays: int32(c.ResponseDays),
	}
	if c.UserID != nil {
		out.UserId = *c.UserID
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

func appToPB(a *domain.Application) *celebrityv1.Application {
	links := make(map[string]string, len(a.SocialLinks))
	for k, v := range a.SocialLinks {
		if s, ok := v.(string); ok {
			links[k] = s
		}
	}
	return &celebrityv1.Application{
		Id:                   a.ID,
		UserId:               a.UserID,
		Name:                 a.Name,
		Email:                a.Email,
		Phone:                a.Phone,
		Category:             a.Category,
		Bio:                  a.Bio,
		SocialHandle:         a.SocialHandle,
		SocialLinks:          links,
		Price:                a.Price,
		ProfilePhotoUrl:      a.ProfilePhotoURL,
		IdDocumentUrl:        a.IDDocumentURL,
		VerificationVideoUrl: a.VerificationVideoURL,
		Status:               a.Status,
		ReviewerNote:         a.ReviewerNote,
		ReviewedBy:           a.ReviewedBy,
		CelebrityId:          a.CelebrityID,
		CreatedAt:            a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
