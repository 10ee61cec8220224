package consumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/db/dbtest"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/mq/mqtest"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/service"
)

func setup(t *testing.T) (*PaymentConsumer, *service.OrderSvc, *mqtest.Recorder) {
	t.Helper()
	repo := repository.NewOrderRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())
	rec := &mqtest.Recorder{}
	svc := service.NewOrderSvc(repo, rec)
	return NewPaymentConsumer(svc, nil), svc, rec
}

func TestPaymentPaidMovesOrderOnce(t *testing.T) {
	pc, svc, rec := setup(t)
	ctx := context.Background()
	o, err := svc.Create(ctx, service.CreateInput{
		CelebrityID: "celeb-1", CustomerID: "fan-1", RecipientName: "Mere",
		Message: "Congratulations!", Amount: 5000,
	})
	require.NoError(t, err)

	paid := events.Payment{IntentID: "pi_9", OrderID: o.ID, Amount: 5000, Currency: "nzd"}
	for i := 0; i < 2; i++ {
		d, ack := mqtest.Delivery(events.RKPaymentPaid, paid)
		mq.Settle(ctx, "test", d, pc.Handle)
		assert.True(t, ack.Acked)
	}

	got, err := svc.Get(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "pi_9", got.PaymentID)
	assert.Equal(t, []string{events.RKBookingCreated, events.RKBookingRequested}, rec.Keys())
}

func TestPaymentPaidPoison(t *testing.T) {
	pc, _, _ := setup(t)
	ctx := context.Background()

	cases := map[string]any{
		"missing ids":   events.Payment{Amount: 100},
		"unknown order": events.Payment{IntentID: "pi_1", OrderID: "nope"},
		"not json":      "just a string",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			d, ack := mqtest.Delivery(events.RKPaymentPaid, body)
			mq.Settle(ctx, "test", d, pc.Handle)
			assert.True(t, ack.Nacked)
			assert.False(t, ack.Requeued)
		})
	}
}

func TestUnknownKeyIsAcked(t *testing.T) {
	pc, _, _ := setup(t)
	d, ack := mqtest.Delivery("payment.something", map[string]string{})
	mq.Settle(context.Background(), "test", d, pc.Handle)
	assert.True(t, ack.Acked)
}
