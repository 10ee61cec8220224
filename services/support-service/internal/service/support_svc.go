package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/wizard"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/repository"
)

const (
	minMessage = 10
	maxMessage = 2000
	maxSubject = 200
)

var categories = map[string]bool{
	"general": true, "booking": true, "payment": true, "technical": true, "celebrity": true, "other": true,
}

type SupportSvc struct {
	repo *repository.TicketRepo
	pub  mq.EventPublisher
	now  func() time.Time
}

func NewSupportSvc(r *repository.TicketRepo, pub mq.EventPublisher) *SupportSvc {
	return &SupportSvc{repo: r, pub: pub, now: time.Now}
}

type CreateInput struct {
	Name     string
	Email    string
	Phone    string
	Category string
	Subject  string
	Message  string
	Priority string
	UserID   string
}

// Create validates a contact-form submission and files it as an OPEN ticket.
func (s *SupportSvc) Create(ctx context.Context, in CreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(in.Name)
	subject := strings.TrimSpace(in.Subject)
	email := strings.TrimSpace(in.Email)
	if name == "" || subject == "" || email == "" {
		return nil, fmt.Errorf("%w: name, email and subject are required", domain.ErrInvalid)
	}
	if !wizard.ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalid)
	}
	if utf8.RuneCountInString(subject) > maxSubject {
		return nil, fmt.Errorf("%w: subject is limited to %d characters", domain.ErrInvalid, maxSubject)
	}
	msg := strings.TrimSpace(in.Message)
	if n := utf8.RuneCountInString(msg); n < minMessage || n > maxMessage {
		return nil, fmt.Errorf("%w: message must be %d-%d characters", domain.ErrInvalid, minMessage, maxMessage)
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !domain.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: priority must be one of %s", domain.ErrInvalid, strings.Join(domain.Priorities, ", "))
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "general"
	}
	if !categories[category] {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalid, category)
	}

	t := &domain.Ticket{
		Name:     name,
		Email:    strings.ToLower(email),
		Phone:    strings.TrimSpace(in.Phone),
		Category: category,
		Subject:  subject,
		Message:  msg,
		Priority: priority,
		Status:   domain.StatusOpen,
		UserID:   in.UserID,
	}
	if err := s.repo.Create(ctx, t, func() string { return domain.NewTicketNumber(s.now()) }); err != nil {
		return nil, err
	}
	log.Printf("[support] ticket %s priority=%s", t.TicketNumber, t.Priority)
	s.publish(ctx, events.RKSupportCreated, t, t.Message)
	return t, nil
}

// Lookup returns a ticket to the person who filed it. A wrong email is
// reported as not found so ticket numbers cannot be guessed.
func (s *SupportSvc) Lookup(ctx context.Context, number, email string) (*domain.Ticket, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	email = strings.ToLower(strings.TrimSpace(email))
	if number == "" || email == "" {
		return nil, fmt.Errorf("%w: ticket number and email are required", domain.ErrInvalid)
	}
	t, err := s.repo.ByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if t.Email != email {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *SupportSvc) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.repo.ByID(ctx, id)
}

func (s *SupportSvc) List(ctx context.Context, page, size int32, f repository.Filter) ([]domain.Ticket, int64, error) {
	return s.repo.List(ctx, page, size, f)
}

type Author struct {
	ID   string
	Name string
	Role string
}

// Respond appends a staff reply and moves the ticket to RESPONDED.
func (s *SupportSvc) Respond(ctx context.Context, id string, by Author, message string) (*domain.Ticket, error) {
	msg := strings.TrimSpace(message)
	if msg == "" || utf8.RuneCountInString(msg) > maxMessage {
		return nil, fmt.Errorf("%w: response must be 1-%d characters", domain.ErrInvalid, maxMessage)
	}
	t, err := s.repo.Transition(ctx, id, func(t *domain.Ticket) (*domain.Response, error) {
		if t.Status == domain.StatusClosed {
			return nil, fmt.Errorf("%w: %s", domain.ErrClosed, t.TicketNumber)
		}
		t.Status = domain.StatusResponded
		return &domain.Response{
			AuthorID:   by.ID,
			AuthorName: by.Name,
			AuthorRole: by.Role,
			Message:    msg,
			CreatedAt:  s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.RKSupportResponded, t, msg)
	return t, nil
}

// SetStatus closes a ticket or changes its priority. Reopening is not
// supported and a closed ticket accepts no further changes.
func (s *SupportSvc) SetStatus(ctx context.Context, id, status, priority string) (*domain.Ticket, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	priority = strings.TrimSpace(priority)
	if status == "" && priority == "" {
		return nil, fmt.Errorf("%w: status or priority is required", domain.ErrInvalid)
	}
	if status != "" && status != domain.StatusClosed && status != domain.StatusResponded {
		return nil, fmt.Errorf("%w: status must be %s or %s", domain.ErrInvalid, domain.StatusResponded, domain.StatusClosed)
	}
	if priority != "" && !domain.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: priority must be one of %s", domain.ErrInvalid, strings.Join(domain.Priorities, ", "))
	}
	closing := false
	t, err := s.repo.Transition(ctx, id, func(t *domain.Ticket) (*domain.Response, error) {
		if t.Status == domain.StatusClosed {
			return nil, fmt.Errorf("%w: %s", domain.ErrClosed, t.TicketNumber)
		}
		if status == domain.StatusResponded && t.Status == domain.StatusOpen {
			return nil, fmt.Errorf("%w: a ticket becomes %s by answering it", domain.ErrInvalid, domain.StatusResponded)
		}
		if priority != "" {
			t.Priority = priority
		}
		if status == domain.StatusClosed {
			now := s.now().UTC()
			t.Status = domain.StatusClosed
			t.ClosedAt = &now
			closing = true
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if closing {
		s.publish(ctx, events.RKSupportClosed, t, "")
	}
	return t, nil
}

func (s *SupportSvc) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *SupportSvc) publish(ctx context.Context, key string, t *domain.Ticket, message string) {
	err := s.pub.PublishJSON(ctx, key, events.Ticket{
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		UserID:       t.UserID,
		Name:         t.Name,
		Email:        t.Email,
		Subject:      t.Subject,
		Status:       t.Status,
		Priority:     t.Priority,
		Message:      message,
	})
	if err != nil {
		log.Printf("[support] publish %s ticket=%s: %v", key, t.TicketNumber, err)
	}
}
