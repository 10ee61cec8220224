// Package drafts holds booking wizards between requests. A draft lives in
// memory until it is cancelled or sits untouched for the configured TTL.
package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiaorakahi/marketplace/pkg/pricing"
	"github.com/kiaorakahi/marketplace/pkg/wizard"
)

var ErrNotFound = errors.New("draft not found")

type Draft struct {
	ID          string
	Owner       string
	CelebrityID string

	mu sync.Mutex
	w  *wizard.Wizard

	// guarded by Store.mu
	timer     *time.Timer
	cancelled bool
}

// Do runs fn with exclusive access to the wizard.
func (d *Draft) Do(fn func(w *wizard.Wizard) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.w)
}

// View is the JSON shape of a draft.
type View struct {
	ID          string            `json:"id"`
	CelebrityID string            `json:"celebrity_id"`
	Step        string            `json:"step"`
	StepNumber  int               `json:"step_number"`
	Form        wizard.Form       `json:"form"`
	Lines       []wizard.Line     `json:"lines"`
	Total       int64             `json:"total"`
	Split       pricing.Breakdown `json:"split"`
	AddOns      []wizard.AddOn    `json:"add_ons"`
	Intent      *wizard.Intent    `json:"intent,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.w.Quote()
	v := View{
		ID:          d.ID,
		CelebrityID: d.CelebrityID,
		Step:        d.w.Step().String(),
		StepNumber:  int(d.w.Step()),
		Form:        d.w.Form(),
		Lines:       q.Lines,
		Total:       q.Total,
		Split:       q.Split,
		AddOns:      d.w.Catalogue(),
		Error:       d.w.LastError(),
	}
	if in, ok := d.w.Intent(); ok {
		v.Intent = &in
	}
	return v
}

type Store struct {
	mu         sync.Mutex
	drafts     map[string]*Draft
	ttl        time.Duration
	resetDelay time.Duration
}

func New(ttl, resetDelay time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{drafts: map[string]*Draft{}, ttl: ttl, resetDelay: resetDelay}
}

func (s *Store) Create(owner, celebrityID string, w *wizard.Wizard) *Draft {
	d := &Draft{ID: uuid.NewString(), Owner: owner, CelebrityID: celebrityID, w: w}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d
	d.timer = time.AfterFunc(s.ttl, func() { s.forget(d) })
	return d
}

// Get returns owner's draft and pushes its expiry back. Another user's draft
// is reported as missing.
func (s *Store) Get(id, owner string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || d.Owner != owner {
		return nil, ErrNotFound
	}
	if !d.cancelled {
		d.timer.Reset(s.ttl)
	}
	return d, nil
}

// Cancel resets the wizard at once and drops the draft after the reset delay,
// so a request racing the cancel still sees an empty draft instead of a 404.
func (s *Store) Cancel(id, owner string) error {
	d, err := s.Get(id, owner)
	if err != nil {
		return err
	}
	_ = d.Do(func(w *wizard.Wizard) error {
		w.Reset()
		return nil
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	d.timer.Stop()
	d.cancelled = true
	d.timer = time.AfterFunc(s.resetDelay, func() { s.forget(d) })
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Store) forget(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.drafts[d.ID]; ok && cur == d {
		delete(s.drafts, d.ID)
	}
}
