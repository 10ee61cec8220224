// Package idempotency replays the first successful answer to a request that
// carried an Idempotency-Key header.
package idempotency

import (
	"errors"
	"sync"
	"time"
)

var ErrInFlight = errors.New("a request with this idempotency key is still in progress")

type Result struct {
	Status int
	Body   any
}

type entry struct {
	res     *Result
	expires time.Time
}

type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry
}

func New(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, entries: map[string]*entry{}}
}

// Begin claims key. It returns the stored result when the key already
// finished, and ErrInFlight while another request holds the claim.
func (s *Store) Begin(key string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	if e, ok := s.entries[key]; ok {
		if e.res == nil {
			return nil, ErrInFlight
		}
		return e.res, nil
	}
	s.entries[key] = &entry{expires: now.Add(s.ttl)}
	return nil, nil
}

// Finish records the answer for key so retries replay it.
func (s *Store) Finish(key string, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{res: &res, expires: s.now().Add(s.ttl)}
}

// Abandon releases a claim whose request failed so the client may retry.
func (s *Store) Abandon(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.res == nil {
		delete(s.entries, key)
	}
}

func (s *Store) sweep(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}
