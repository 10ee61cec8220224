package mq_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/mq/mqtest"
)

func TestSettle(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name                    string
		err                     error
		acked, nacked, requeued bool
	}{
		{"ok", nil, true, false, false},
		{"poison", fmt.Errorf("decode: %w", mq.ErrPoison), false, true, false},
		{"transient", errors.New("db down"), false, true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, ack := mqtest.Delivery("payment.paid", map[string]string{"order_id": "o-1"})
			mq.Settle(ctx, "test", d, func(context.Context, amqp.Delivery) error { return tc.err })
			assert.Equal(t, tc.acked, ack.Acked)
			assert.Equal(t, tc.nacked, ack.Nacked)
			assert.Equal(t, tc.requeued, ack.Requeued)
		})
	}
}
