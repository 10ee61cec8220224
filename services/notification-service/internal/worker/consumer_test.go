package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/mq/mqtest"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/notifier"
)

type captured struct {
	msgs []notifier.Message
	err  error
}

func (c *captured) Notify(_ context.Context, m notifier.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func order() events.Order {
	return events.Order{
		OrderID:         "o1",
		OrderNumber:     "KOK-0001",
		Status:          "PENDING_APPROVAL",
		CustomerID:      "fan-1",
		CelebrityUserID: "celeb-user-1",
		Amount:          12345,
		Currency:        "nzd",
		PaymentID:       "pi_1",
	}
}

func TestHandleOrderEvents(t *testing.T) {
	cases := []struct {
		key   string
		users []string
	}{
		{events.RKBookingCreated, []string{"fan-1"}},
		{events.RKBookingRequested, []string{"fan-1", "celeb-user-1"}},
		{events.RKBookingAccepted, []string{"fan-1"}},
		{events.RKBookingCancelled, []string{"fan-1", "celeb-user-1"}},
		{events.RKBookingDelivered, []string{"fan-1"}},
		{events.RKBookingCompleted, []string{"fan-1", "celeb-user-1"}},
		{events.RKBookingVideoRejected, []string{"celeb-user-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			n := &captured{}
			c := NewConsumer(Config{}, n)
			d, ack := mqtest.Delivery(tc.key, order())

			mq.Settle(context.Background(), "test", d, c.Handle)

			assert.True(t, ack.Acked)
			require.Len(t, n.msgs, 1)
			assert.Equal(t, tc.key, n.msgs[0].Key)
			assert.Equal(t, "KOK-0001", n.msgs[0].Ref)
			assert.Equal(t, tc.users, n.msgs[0].Users)
			assert.NotEmpty(t, n.msgs[0].Subject)
		})
	}
}

func TestUnpaidCancellationOnlyTellsCustomer(t *testing.T) {
	ev := order()
	ev.PaymentID = ""
	m, ok, err := Render(events.RKBookingCancelled, mustJSON(t, ev))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"fan-1"}, m.Users)
}

func TestRenderIncludesReasonAndAmount(t *testing.T) {
	ev := order()
	ev.Reason = "schedule clash"
	b := mustJSON(t, ev)

	m, ok, err := Render(events.RKBookingCancelled, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, m.Body, "schedule clash")

	m, ok, err = Render(events.RKBookingCreated, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, m.Body, "123.45 NZD")
}

func TestHandlePaymentEvents(t *testing.T) {
	p := events.Payment{OrderNumber: "KOK-0002", CustomerID: "fan-2", Amount: 500, Currency: "nzd", FailureCode: "insufficient_fund"}
	for key, status := range map[string]string{
		events.RKPaymentPaid:     "succeeded",
		events.RKPaymentFailed:   "failed",
		events.RKPaymentRefunded: "refunded",
	} {
		m, ok, err := Render(key, mustJSON(t, p))
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, status, m.Status)
		assert.Equal(t, []string{"fan-2"}, m.Users)
	}
}

func TestHandleSupportCreatedReachesAdmins(t *testing.T) {
	tk := events.Ticket{TicketNumber: "TKT-12345678-AB12", UserID: "u-9", Subject: "Refund", Priority: "high", Status: "OPEN"}

	m, ok, err := Render(events.RKSupportCreated, mustJSON(t, tk))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{auth.RoleAdmin}, m.Roles)
	assert.Equal(t, []string{"u-9"}, m.Users)

	m, ok, err = Render(events.RKSupportClosed, mustJSON(t, tk))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, m.Roles)
}

func TestHandleUnknownKeyIsAcked(t *testing.T) {
	n := &captured{}
	c := NewConsumer(Config{}, n)
	d, ack := mqtest.Delivery("inventory.changed", map[string]string{"x": "y"})

	mq.Settle(context.Background(), "test", d, c.Handle)

	assert.True(t, ack.Acked)
	assert.Empty(t, n.msgs)
}

func TestHandleBadPayloadIsRejected(t *testing.T) {
	n := &captured{}
	c := NewConsumer(Config{}, n)
	d, ack := mqtest.Delivery(events.RKPaymentPaid, "not an object")

	mq.Settle(context.Background(), "test", d, c.Handle)

	assert.True(t, ack.Nacked)
	assert.False(t, ack.Requeued)
	assert.Empty(t, n.msgs)
}

func TestHandleNotifierErrorPropagates(t *testing.T) {
	n := &captured{err: errors.New("smtp down")}
	c := NewConsumer(Config{}, n)
	d, _ := mqtest.Delivery(events.RKBookingAccepted, order())

	err := c.Handle(context.Background(), d)
	assert.EqualError(t, err, "smtp down")
}
