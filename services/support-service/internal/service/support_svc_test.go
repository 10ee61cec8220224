package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/db/dbtest"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq/mqtest"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/repository"
)

func newSvc(t *testing.T) (*SupportSvc, *repository.TicketRepo, *mqtest.Recorder) {
	t.Helper()
	repo := repository.NewTicketRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())
	rec := &mqtest.Recorder{}
	s := NewSupportSvc(repo, rec)
	clock := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, repo, rec
}

func form() CreateInput {
	return CreateInput{
		Name:    "Kiri",
		Email:   "Kiri@Example.com",
		Subject: "Video not received",
		Message: "My order was accepted a week ago but no video yet.",
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	s, _, rec := newSvc(t)
	tk, err := s.Create(context.Background(), form())
	require.NoError(t, err)
	assert.Regexp(t, `^TKT-\d{8}-[A-Z0-9]{4}$`, tk.TicketNumber)
	assert.Equal(t, domain.PriorityNormal, tk.Priority)
	assert.Equal(t, "general", tk.Category)
	assert.Equal(t, domain.StatusOpen, tk.Status)
	assert.Equal(t, "kiri@example.com", tk.Email)

	var ev events.Ticket
	require.True(t, rec.Last(events.RKSupportCreated, &ev))
	assert.Equal(t, tk.TicketNumber, ev.TicketNumber)
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newSvc(t)
	cases := map[string]func(*CreateInput){
		"short message":   func(in *CreateInput) { in.Message = "too short" },
		"padded short":    func(in *CreateInput) { in.Message = "   hi there   " },
		"long message":    func(in *CreateInput) { in.Message = strings.Repeat("a", 2001) },
		"bad priority":    func(in *CreateInput) { in.Priority = "critical" },
		"shouted":         func(in *CreateInput) { in.Priority = "URGENT" },
		"bad email":       func(in *CreateInput) { in.Email = "kiri at example" },
		"display email":   func(in *CreateInput) { in.Email = "Kiri <kiri@example.com>" },
		"missing subject": func(in *CreateInput) { in.Subject = " " },
		"bad category":    func(in *CreateInput) { in.Category = "gossip" },
	}
	for name, mutate := range cases {
		in := form()
		mutate(&in)
		_, err := s.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalid, name)
	}

	in := form()
	in.Message = strings.Repeat("ā", 2000)
	in.Priority = "urgent"
	tk, err := s.Create(context.Background(), in)
	require.NoError(t, err, "length counts characters, not bytes")
	assert.Equal(t, domain.PriorityUrgent, tk.Priority)

	in = form()
	in.Message = "  ten chars!  "
	tk, err = s.Create(context.Background(), in)
	require.NoError(t, err, "ten characters after trimming is the minimum")
	assert.Equal(t, "ten chars!", tk.Message)

	in.Message = strings.Repeat("x", 10)
	_, err = s.Create(context.Background(), in)
	require.NoError(t, err)
}

func TestCreateRetriesTakenNumbers(t *testing.T) {
	_, repo, _ := newSvc(t)
	ctx := context.Background()
	first := &domain.Ticket{Name: "A", Email: "a@example.com", Subject: "s", Message: "m", Status: domain.StatusOpen}
	require.NoError(t, repo.Create(ctx, first, func() string { return "TKT-00000001-AAAA" }))

	draws := []string{"TKT-00000001-AAAA", "TKT-00000001-AAAA", "TKT-00000001-BBBB"}
	second := &domain.Ticket{Name: "B", Email: "b@example.com", Subject: "s", Message: "m", Status: domain.StatusOpen}
	i := 0
	require.NoError(t, repo.Create(ctx, second, func() string { n := draws[i]; i++; return n }))
	assert.Equal(t, "TKT-00000001-BBBB", second.TicketNumber)

	third := &domain.Ticket{Name: "C", Email: "c@example.com", Subject: "s", Message: "m", Status: domain.StatusOpen}
	assert.Error(t, repo.Create(ctx, third, func() string { return "TKT-00000001-AAAA" }))
}

func TestLookupRequiresMatchingEmail(t *testing.T) {
	s, _, _ := newSvc(t)
	ctx := context.Background()
	tk, err := s.Create(ctx, form())
	require.NoError(t, err)

	got, err := s.Lookup(ctx, strings.ToLower(tk.TicketNumber), " KIRI@example.com ")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	_, err = s.Lookup(ctx, tk.TicketNumber, "someone@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Lookup(ctx, "", "kiri@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestRespondThenClose(t *testing.T) {
	s, _, rec := newSvc(t)
	ctx := context.Background()
	tk, err := s.Create(ctx, form())
	require.NoError(t, err)
	staff := Author{ID: "a-1", Name: "Hana", Role: "ADMIN"}

	_, err = s.SetStatus(ctx, tk.ID, domain.StatusResponded, "")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	tk, err = s.Respond(ctx, tk.ID, staff, "We have chased the celebrity.")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponded, tk.Status)
	tk, err = s.Respond(ctx, tk.ID, staff, "The video is on its way.")
	require.NoError(t, err)
	require.Len(t, tk.Responses, 2)
	assert.Equal(t, "We have chased the celebrity.", tk.Responses[0].Message)
	assert.Equal(t, "Hana", tk.Responses[1].AuthorName)

	tk, err = s.SetStatus(ctx, tk.ID, "closed", "high")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, tk.Status)
	assert.Equal(t, domain.PriorityHigh, tk.Priority)
	require.NotNil(t, tk.ClosedAt)

	_, err = s.Respond(ctx, tk.ID, staff, "One more thing")
	assert.ErrorIs(t, err, domain.ErrClosed)
	_, err = s.SetStatus(ctx, tk.ID, "", "low")
	assert.ErrorIs(t, err, domain.ErrClosed)

	assert.Equal(t, []string{
		events.RKSupportCreated, events.RKSupportResponded, events.RKSupportResponded, events.RKSupportClosed,
	}, rec.Keys())

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.ByStatus[domain.StatusClosed])
	assert.EqualValues(t, 1, st.Total)
}

func TestListFilters(t *testing.T) {
	s, _, _ := newSvc(t)
	ctx := context.Background()
	a, err := s.Create(ctx, form())
	require.NoError(t, err)
	in := form()
	in.Priority = "urgent"
	in.Subject = "Refund please"
	_, err = s.Create(ctx, in)
	require.NoError(t, err)

	_, total, err := s.List(ctx, 0, 10, repository.Filter{Priority: "urgent"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	list, total, err := s.List(ctx, 0, 10, repository.Filter{Query: strings.ToLower(a.TicketNumber)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.ID, list[0].ID)

	_, total, err = s.List(ctx, 0, 10, repository.Filter{Status: "open"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
