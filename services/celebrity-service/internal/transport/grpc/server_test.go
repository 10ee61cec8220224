package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kiaorakahi/marketplace/pkg/db/dbtest"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/service"
)

func dial(t *testing.T) celebrityv1.CelebrityServiceClient {
	t.Helper()
	repo := repository.NewCelebrityRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	celebrityv1.RegisterCelebrityServiceServer(gs, NewServer(service.NewCelebritySvc(repo)))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return celebrityv1.NewCelebrityServiceClient(cc)
}

func TestApplicationFlowOverGRPC(t *testing.T) {
	c := dial(t)
	bg := context.Background()
	fan := rpc.WithUser(bg, rpc.User{ID: "u-1", Email: "hine@example.com", Role: "FAN"})
	adm := rpc.WithUser(bg, rpc.User{ID: "a-1", Email: "admin@example.com", Role: "ADMIN"})

	sub, err := c.SubmitApplication(fan, &celebrityv1.SubmitApplicationRequest{
		Name:                 "Hine",
		Email:                "hine@example.com",
		Bio:                  "Broadcaster",
		Price:                8000,
		SocialLinks:          map[string]string{"youtube": "https://youtube.com/@hine"},
		ProfilePhotoUrl:      "/uploads/profile_photo/p.png",
		IdDocumentUrl:        "/uploads/id_document/d.pdf",
		VerificationVideoUrl: "/uploads/verification_video/v.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://youtube.com/@hine", sub.Application.SocialLinks["youtube"])

	_, err = c.ReviewApplication(fan, &celebrityv1.ReviewApplicationRequest{Id: sub.Application.Id, Approve: true})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	mine, err := c.ListApplications(fan, &celebrityv1.ListApplicationsRequest{UserId: "someone-else"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	out, err := c.ReviewApplication(adm, &celebrityv1.ReviewApplicationRequest{Id: sub.Application.Id, Approve: true})
	require.NoError(t, err)
	require.NotNil(t, out.Celebrity)
	assert.Equal(t, "u-1", out.Celebrity.UserId)

	_, err = c.ReviewApplication(adm, &celebrityv1.ReviewApplicationRequest{Id: sub.Application.Id, Approve: true})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	st, err := c.GetStats(adm, &celebrityv1.GetStatsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Celebrities)
}

func TestProfileAndTierAreRoleGated(t *testing.T) {
	c := dial(t)
	bg := context.Background()
	adm := rpc.WithUser(bg, rpc.User{ID: "a-1", Role: "ADMIN"})
	star := rpc.WithUser(bg, rpc.User{ID: "u-5", Role: "CELEBRITY"})

	created, err := c.CreateCelebrity(adm, &celebrityv1.CreateCelebrityRequest{UserId: "u-5", Name: "Rawiri", Price: 6000})
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.Celebrity.Tags)

	_, err = c.CreateCelebrity(star, &celebrityv1.CreateCelebrityRequest{Name: "Self", Price: 1})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	bio := "Comedian"
	upd, err := c.UpdateProfile(star, &celebrityv1.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Comedian", upd.Celebrity.Bio)

	vip := true
	_, err = c.SetTier(star, &celebrityv1.SetTierRequest{Id: created.Celebrity.Id, IsVip: &vip})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	tier, err := c.SetTier(adm, &celebrityv1.SetTierRequest{Id: created.Celebrity.Id, IsVip: &vip})
	require.NoError(t, err)
	assert.True(t, tier.Celebrity.IsVip)

	_, err = c.ListCelebrities(bg, &celebrityv1.ListCelebritiesRequest{IncludeInactive: true})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	pub, err := c.ListCelebrities(bg, &celebrityv1.ListCelebritiesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pub.Total)
}
