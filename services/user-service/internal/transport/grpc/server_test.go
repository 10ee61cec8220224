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
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/service"
)

func dial(t *testing.T) userv1.UserServiceClient {
	t.Helper()
	repo := repository.NewUserRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	userv1.RegisterUserServiceServer(gs, NewServer(service.NewUserSvc(repo)))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return userv1.NewUserServiceClient(cc)
}

func TestGetMeCreatesProfileFromClaims(t *testing.T) {
	c := dial(t)
	ctx := rpc.WithUser(context.Background(), rpc.User{ID: "u-9", Email: "rangi@example.com", Role: "FAN"})

	me, err := c.GetMe(ctx, &userv1.GetMeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "u-9", me.User.Id)
	assert.Equal(t, "rangi@example.com", me.User.Email)

	_, err = c.GetMe(context.Background(), &userv1.GetMeRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUpdateUserIsSelfService(t *testing.T) {
	c := dial(t)
	bg := context.Background()
	_, err := c.SyncFromAuth(bg, &userv1.SyncFromAuthRequest{Id: "u-1", Email: "one@example.com", Name: "One", Role: "FAN"})
	require.NoError(t, err)

	fan := rpc.WithUser(bg, rpc.User{ID: "u-2", Email: "two@example.com", Role: "FAN"})
	_, err = c.UpdateUser(fan, &userv1.UpdateUserRequest{Id: "u-1", Name: "Hacked"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	self := rpc.WithUser(bg, rpc.User{ID: "u-1", Email: "one@example.com", Role: "FAN"})
	out, err := c.UpdateUser(self, &userv1.UpdateUserRequest{Name: "Tahi"})
	require.NoError(t, err)
	assert.Equal(t, "Tahi", out.User.Name)
}

func TestAdminRoutesNeedAdminCaller(t *testing.T) {
	c := dial(t)
	bg := context.Background()
	fan := rpc.WithUser(bg, rpc.User{ID: "u-1", Role: "FAN"})
	adm := rpc.WithUser(bg, rpc.User{ID: "a-1", Email: "admin@example.com", Role: "ADMIN"})

	_, err := c.ListUsers(fan, &userv1.ListUsersRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	_, err = c.UpdateSettings(fan, &userv1.UpdateSettingsRequest{Settings: map[string]string{"announcement": "hi"}})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = c.UpdateSettings(adm, &userv1.UpdateSettingsRequest{Settings: map[string]string{"bookings_enabled": "nah"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out, err := c.UpdateSettings(adm, &userv1.UpdateSettingsRequest{Settings: map[string]string{"announcement": "Kia ora"}})
	require.NoError(t, err)
	assert.Equal(t, "Kia ora", out.Settings["announcement"])

	pub, err := c.GetSettings(bg, &userv1.GetSettingsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Kia ora", pub.Settings["announcement"])

	_, err = c.AdminUpdateUser(adm, &userv1.AdminUpdateUserRequest{Id: "nobody", Role: "FAN"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
