// Package mqtest holds broker-free stand-ins for tests.
package mqtest

import (
	"context"
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Published struct {
	Key  string
	Body []byte
}

// Recorder is an mq.EventPublisher that remembers what was published.
type Recorder struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

func (r *Recorder) PublishJSON(_ context.Context, key string, v any) error {
	if r.Err != nil {
		return r.Err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Published{Key: key, Body: b})
	return nil
}

func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Key)
	}
	return out
}

// Last decodes the most recent event published under key into v.
func (r *Recorder) Last(key string, v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Key == key {
			return json.Unmarshal(r.Events[i].Body, v) == nil
		}
	}
	return false
}

// Acker records how a delivery was settled.
type Acker struct {
	Acked, Nacked, Requeued bool
}

func (a *Acker) Ack(uint64, bool) error { a.Acked = true; return nil }
func (a *Acker) Nack(_ uint64, _ bool, requeue bool) error {
	a.Nacked, a.Requeued = true, requeue
	return nil
}
func (a *Acker) Reject(_ uint64, requeue bool) error {
	a.Nacked, a.Requeued = true, requeue
	return nil
}

// Delivery builds a delivery whose settlement lands in the returned Acker.
func Delivery(key string, v any) (amqp.Delivery, *Acker) {
	b, _ := json.Marshal(v)
	a := &Acker{}
	return amqp.Delivery{Acknowledger: a, RoutingKey: key, Body: b, MessageId: key + "-msg"}, a
}
