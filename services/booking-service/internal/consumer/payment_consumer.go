package consumer

import (
	"context"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/service"
)

type PaymentConsumer struct {
	svc  *service.OrderSvc
	cons *mq.Consumer
}

func NewPaymentConsumer(svc *service.OrderSvc, cons *mq.Consumer) *PaymentConsumer {
	return &PaymentConsumer{svc: svc, cons: cons}
}

func (pc *PaymentConsumer) Run(ctx context.Context) {
	go func() {
		if err := pc.cons.Handle(ctx, "booking-consumer", pc.Handle); err != nil {
			log.Printf("[booking-consumer] stopped: %v", err)
		}
	}()
}

// Handle applies one payment event. Unknown keys are acked and dropped.
func (pc *PaymentConsumer) Handle(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKPaymentPaid:
		evt, err := events.Decode[events.Payment](d.Body)
		if err != nil {
			return err
		}
		if evt.OrderID == "" || evt.IntentID == "" {
			return fmt.Errorf("%w: payment.paid without order or intent", mq.ErrPoison)
		}
		// one intent pays one order, so a replay carries the same intent
		eventID := events.RKPaymentPaid + ":" + evt.IntentID
		o, err := pc.svc.MarkPaid(ctx, evt.OrderID, evt.IntentID, eventID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %v", mq.ErrPoison, err)
		}
		if err != nil {
			return err
		}
		log.Printf("[booking-consumer] order %s is %s", o.OrderNumber, o.Status)
	default:
		log.Printf("[booking-consumer] skip key=%s", d.RoutingKey)
	}
	return nil
}
