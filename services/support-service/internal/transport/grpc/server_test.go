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
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/service"
)

func dial(t *testing.T) supportv1.SupportServiceClient {
	t.Helper()
	repo := repository.NewTicketRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	supportv1.RegisterSupportServiceServer(gs, NewServer(service.NewSupportSvc(repo, mq.Discard{})))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return supportv1.NewSupportServiceClient(cc)
}

func TestTicketLifecycleOverGRPC(t *testing.T) {
	c := dial(t)
	bg := context.Background()
	adm := rpc.WithUser(bg, rpc.User{ID: "a-1", Role: "ADMIN"})

	_, err := c.CreateTicket(bg, &supportv1.CreateTicketRequest{Name: "Pita", Email: "pita@example.com", Subject: "Hi", Message: "short", Priority: "low"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	created, err := c.CreateTicket(bg, &supportv1.CreateTicketRequest{
		Name: "Pita", Email: "pita@example.com", Subject: "Card declined", Message: "My card was declined twice today.",
	})
	require.NoError(t, err)
	tk := created.Ticket
	assert.Equal(t, supportv1.StatusOpen, tk.Status)
	assert.Empty(t, tk.Responses)

	_, err = c.ListTickets(bg, &supportv1.ListTicketsRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = c.RespondToTicket(adm, &supportv1.RespondToTicketRequest{Id: tk.Id, Message: "Please try another card."})
	require.NoError(t, err)

	got, err := c.LookupTicket(bg, &supportv1.LookupTicketRequest{TicketNumber: tk.TicketNumber, Email: "pita@example.com"})
	require.NoError(t, err)
	assert.Equal(t, supportv1.StatusResponded, got.Ticket.Status)
	require.Len(t, got.Ticket.Responses, 1)
	assert.Equal(t, "Support team", got.Ticket.Responses[0].AuthorName)

	_, err = c.UpdateTicketStatus(adm, &supportv1.UpdateTicketStatusRequest{Id: tk.Id, Status: "CLOSED"})
	require.NoError(t, err)
	_, err = c.RespondToTicket(adm, &supportv1.RespondToTicketRequest{Id: tk.Id, Message: "Anything else?"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	st, err := c.GetStats(adm, &supportv1.GetStatsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, st.Open)
	assert.EqualValues(t, 1, st.Total)
}
