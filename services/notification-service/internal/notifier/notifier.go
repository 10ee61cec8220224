package notifier

import (
	"context"
	"errors"
	"log"
)

// Message is one rendered event. Users and Roles address realtime
// subscribers; console output ignores them.
type Message struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Key     string   `json:"type"`
	Status  string   `json:"status,omitempty"`
	Ref     string   `json:"ref,omitempty"`
	Users   []string `json:"-"`
	Roles   []string `json:"-"`
}

// Notifier delivers a message. Implementations can be swapped for email or SMS.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// ConsoleNotifier logs to stdout.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(_ context.Context, m Message) error {
	log.Printf("[notify] %s :: %s", m.Subject, m.Body)
	return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
