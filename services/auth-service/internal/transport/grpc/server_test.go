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
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/service"
)

func dial(t *testing.T) authv1.AuthServiceClient {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	repo := repository.NewUserRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	authv1.RegisterAuthServiceServer(gs, NewServer(service.NewAuthSvc(repo)))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return authv1.NewAuthServiceClient(cc)
}

func TestRegisterLoginOverGRPC(t *testing.T) {
	c := dial(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, &authv1.RegisterRequest{Email: "wiremu@example.com", Password: "password-1", Name: "Wiremu"})
	require.NoError(t, err)
	assert.Equal(t, "FAN", reg.User.Role)

	_, err = c.Register(ctx, &authv1.RegisterRequest{Email: "wiremu@example.com", Password: "password-1", Name: "Wiremu"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.Login(ctx, &authv1.LoginRequest{Email: "wiremu@example.com", Password: "nope-nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	login, err := c.Login(ctx, &authv1.LoginRequest{Email: "wiremu@example.com", Password: "password-1"})
	require.NoError(t, err)
	v, err := c.ValidateToken(ctx, &authv1.ValidateTokenRequest{Token: login.AccessToken})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, reg.User.Id, v.UserId)

	v, err = c.ValidateToken(ctx, &authv1.ValidateTokenRequest{Token: "garbage"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestUpdateAccountNeedsAdminCaller(t *testing.T) {
	c := dial(t)
	ctx := context.Background()
	reg, err := c.Register(ctx, &authv1.RegisterRequest{Email: "ana@example.com", Password: "password-1", Name: "Ana"})
	require.NoError(t, err)

	req := &authv1.UpdateAccountRequest{Id: reg.User.Id, Role: "CELEBRITY"}
	_, err = c.UpdateAccount(rpc.WithUser(ctx, rpc.User{ID: reg.User.Id, Role: "FAN"}), req)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err := c.UpdateAccount(rpc.WithUser(ctx, rpc.User{ID: "admin-1", Role: "ADMIN"}), req)
	require.NoError(t, err)
	assert.Equal(t, "CELEBRITY", out.User.Role)
}
