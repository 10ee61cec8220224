package consumer

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/service"
)

// BookingConsumer refunds orders that are cancelled after payment.
type BookingConsumer struct {
	svc  *service.PaymentSvc
	cons *mq.Consumer
}

func NewBookingConsumer(svc *service.PaymentSvc, cons *mq.Consumer) *BookingConsumer {
	return &BookingConsumer{svc: svc, cons: cons}
}

func (bc *BookingConsumer) Run(ctx context.Context) {
	go func() {
		if err := bc.cons.Handle(ctx, "payment-consumer", bc.Handle); err != nil {
			log.Printf("[payment-consumer] stopped: %v", err)
		}
	}()
}

func (bc *BookingConsumer) Handle(ctx context.Context, d amqp.Delivery) error {
	if d.RoutingKey != events.RKBookingCancelled {
		return nil
	}
	evt, err := events.Decode[events.Order](d.Body)
	if err != nil {
		return err
	}
	if evt.OrderID == "" {
		return fmt.Errorf("%w: booking.cancelled without order", mq.ErrPoison)
	}
	p, err := bc.svc.RefundOrder(ctx, evt.OrderID, events.RKBookingCancelled+":"+evt.OrderID)
	if err != nil {
		return err
	}
	if p != nil {
		log.Printf("[payment-consumer] refunded order %s charge=%s", evt.OrderNumber, p.ChargeID)
	}
	return nil
}
