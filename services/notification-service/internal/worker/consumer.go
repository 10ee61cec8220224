package worker

import (
	"context"
	"fmt"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/notifier"
)

type Config struct {
	RabbitURL   string
	Exchanges   []string
	Queue       string
	Bindings    []string
	Prefetch    int
	UseDLX      bool
	DLXName     string
	DLXQueue    string
	ServiceName string
}

type Consumer struct {
	cfg      Config
	notifier notifier.Notifier

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg Config, n notifier.Notifier) *Consumer {
	return &Consumer{cfg: cfg, notifier: n}
}

// Connect declares the queue, binds it to every exchange and sets up the
// dead-letter exchange that rejected messages land in.
func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}
	fail := func(err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	args := amqp.Table{}
	if c.cfg.UseDLX {
		args["x-dead-letter-exchange"] = c.cfg.DLXName
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, args)
	if err != nil {
		return fail(fmt.Errorf("declare queue failed: %w", err))
	}

	for _, ex := range c.cfg.Exchanges {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fail(fmt.Errorf("declare exchange %s failed: %w", ex, err))
		}
		for _, key := range c.cfg.Bindings {
			if err := ch.QueueBind(q.Name, key, ex, false, nil); err != nil {
				return fail(fmt.Errorf("bind queue to exchange=%s key=%s failed: %w", ex, key, err))
			}
		}
	}

	if c.cfg.UseDLX {
		if err := ch.ExchangeDeclare(c.cfg.DLXName, "topic", true, false, false, false, nil); err != nil {
			return fail(fmt.Errorf("declare dlx failed: %w", err))
		}
		if _, err := ch.QueueDeclare(c.cfg.DLXQueue, true, false, false, false, nil); err != nil {
			return fail(fmt.Errorf("declare dlq failed: %w", err))
		}
		if err := ch.QueueBind(c.cfg.DLXQueue, "#", c.cfg.DLXName, false, nil); err != nil {
			return fail(fmt.Errorf("bind dlq failed: %w", err))
		}
	}

	if c.cfg.Prefetch <= 0 {
		c.cfg.Prefetch = 8
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail(fmt.Errorf("set qos failed: %w", err))
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.ServiceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			mq.Settle(ctx, "notify", d, c.Handle)
		}
	}
}

// Handle renders one delivery and hands it to the notifier. Unknown keys
// are acked and skipped.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) error {
	m, ok, err := Render(d.RoutingKey, d.Body)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
		return nil
	}
	return c.notifier.Notify(ctx, m)
}

// Render turns an event into a message. ok is false for keys it does not know.
func Render(key string, body []byte) (m notifier.Message, ok bool, err error) {
	switch {
	case strings.HasPrefix(key, "booking."):
		ev, err := events.Decode[events.Order](body)
		if err != nil {
			return m, false, err
		}
		return renderOrder(key, ev)
	case strings.HasPrefix(key, "payment."):
		ev, err := events.Decode[events.Payment](body)
		if err != nil {
			return m, false, err
		}
		return renderPayment(key, ev)
	case strings.HasPrefix(key, "support."):
		ev, err := events.Decode[events.Ticket](body)
		if err != nil {
			return m, false, err
		}
		return renderTicket(key, ev)
	}
	return m, false, nil
}

func renderOrder(key string, ev events.Order) (notifier.Message, bool, error) {
	m := notifier.Message{Key: key, Status: ev.Status, Ref: ev.OrderNumber}
	fan := []string{ev.CustomerID}
	both := []string{ev.CustomerID, ev.CelebrityUserID}
	switch key {
	case events.RKBookingCreated:
		m.Subject = "Order created"
		m.Body = fmt.Sprintf("Order %s for %s is waiting for payment.", ev.OrderNumber, money(ev.Amount, ev.Currency))
		m.Users = fan
	case events.RKBookingRequested:
		m.Subject = "New booking request"
		m.Body = fmt.Sprintf("Order %s is paid and waiting for the celebrity to respond.", ev.OrderNumber)
		m.Users = both
	case events.RKBookingAccepted:
		m.Subject = "Booking accepted"
		m.Body = fmt.Sprintf("Order %s was accepted. Your video is being made.", ev.OrderNumber)
		m.Users = fan
	case events.RKBookingCancelled:
		m.Subject = "Booking cancelled"
		m.Body = fmt.Sprintf("Order %s was cancelled.", ev.OrderNumber)
		if ev.Reason != "" {
			m.Body += " Reason: " + ev.Reason
		}
		m.Users = both
		if ev.PaymentID == "" {
			// the celebrity never saw an unpaid order
			m.Users = fan
		}
	case events.RKBookingDelivered:
		m.Subject = "Video delivered"
		m.Body = fmt.Sprintf("The video for order %s is ready for review.", ev.OrderNumber)
		m.Users = fan
	case events.RKBookingCompleted:
		m.Subject = "Booking completed"
		m.Body = fmt.Sprintf("Order %s is complete.", ev.OrderNumber)
		m.Users = both
	case events.RKBookingVideoRejected:
		m.Subject = "Video needs another take"
		m.Body = fmt.Sprintf("The customer asked for changes to order %s.", ev.OrderNumber)
		if ev.Reason != "" {
			m.Body += " Feedback: " + ev.Reason
		}
		m.Users = []string{ev.CelebrityUserID}
	default:
		return m, false, nil
	}
	return m, true, nil
}

func renderPayment(key string, ev events.Payment) (notifier.Message, bool, error) {
	m := notifier.Message{Key: key, Ref: ev.OrderNumber, Users: []string{ev.CustomerID}}
	switch key {
	case events.RKPaymentPaid:
		m.Subject = "Payment received"
		m.Status = "succeeded"
		m.Body = fmt.Sprintf("Order %s paid %s (charge=%s).", ev.OrderNumber, money(ev.Amount, ev.Currency), ev.ChargeID)
	case events.RKPaymentFailed:
		m.Subject = "Payment failed"
		m.Status = "failed"
		m.Body = fmt.Sprintf("Payment failed for order %s.", ev.OrderNumber)
		if ev.FailureCode != "" || ev.FailureMessage != "" {
			m.Body = fmt.Sprintf("%s Reason: %s %s", m.Body, ev.FailureCode, ev.FailureMessage)
		}
	case events.RKPaymentRefunded:
		m.Subject = "Payment refunded"
		m.Status = "refunded"
		m.Body = fmt.Sprintf("Order %s was refunded %s.", ev.OrderNumber, money(ev.Amount, ev.Currency))
	default:
		return m, false, nil
	}
	return m, true, nil
}

func renderTicket(key string, ev events.Ticket) (notifier.Message, bool, error) {
	m := notifier.Message{Key: key, Status: ev.Status, Ref: ev.TicketNumber, Users: []string{ev.UserID}}
	switch key {
	case events.RKSupportCreated:
		m.Subject = "Support ticket opened"
		m.Body = fmt.Sprintf("Ticket %s (%s): %s", ev.TicketNumber, ev.Priority, ev.Subject)
		m.Roles = []string{auth.RoleAdmin}
	case events.RKSupportResponded:
		m.Subject = "Support replied"
		m.Body = fmt.Sprintf("There is a new reply on ticket %s.", ev.TicketNumber)
	case events.RKSupportClosed:
		m.Subject = "Support ticket closed"
		m.Body = fmt.Sprintf("Ticket %s was closed.", ev.TicketNumber)
	default:
		return m, false, nil
	}
	return m, true, nil
}

// money renders minor units as 12.34 NZD.
func money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, strings.ToUpper(currency))
}
