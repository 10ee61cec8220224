package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiaorakahi/marketplace/services/support-service/internal/domain"
)

const numberAttempts = 5

type TicketRepo struct{ db *gorm.DB }

func NewTicketRepo(db *gorm.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

func (r *TicketRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Ticket{}, &domain.Response{})
}

// Create stores t under a ticket number from next, drawing again while the
// number is taken.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket, next func() string) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < numberAttempts; i++ {
			n := next()
			var taken int64
			if err := tx.Model(&domain.Ticket{}).Where("ticket_number = ?", n).Count(&taken).Error; err != nil {
				return err
			}
			if taken == 0 {
				t.TicketNumber = n
				return tx.Omit("Responses").Create(t).Error
			}
		}
		return fmt.Errorf("no free ticket number after %d attempts", numberAttempts)
	})
}

func (r *TicketRepo) ByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TicketRepo) ByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return r.first(ctx, "ticket_number = ?", number)
}

func (r *TicketRepo) first(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var t domain.Ticket
	err := r.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where(query, args...).First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

type Filter struct {
	Status   string
	Priority string
	Query    string
}

func (r *TicketRepo) List(ctx context.Context, page, size int32, f Filter) ([]domain.Ticket, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Ticket{})
	if f.Status != "" {
		qb = qb.Where("status = ?", strings.ToUpper(f.Status))
	}
	if f.Priority != "" {
		qb = qb.Where("priority = ?", strings.ToLower(f.Priority))
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + q + "%"
		qb = qb.Where("(LOWER(ticket_number) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?)", like, like, like)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Ticket
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Transition locks the ticket, lets fn mutate it and saves it. A non-nil
// reply from fn is appended to the thread in the same transaction.
func (r *TicketRepo) Transition(ctx context.Context, id string, fn func(*domain.Ticket) (*domain.Response, error)) (*domain.Ticket, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		reply, err := fn(&t)
		if err != nil {
			return err
		}
		if reply != nil {
			if reply.ID == "" {
				reply.ID = uuid.NewString()
			}
			reply.TicketID = t.ID
			if err := tx.Create(reply).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Responses").Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return r.ByID(ctx, id)
}

func (r *TicketRepo) Stats(ctx context.Context) (domain.Stats, error) {
	s := domain.Stats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}}
	var rows []struct {
		Status   string
		Priority string
		N        int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Select("status, priority, COUNT(*) AS n").Group("status, priority").Scan(&rows).Error; err != nil {
		return s, err
	}
	for _, row := range rows {
		s.ByStatus[row.Status] += row.N
		s.ByPriority[row.Priority] += row.N
		s.Total += row.N
	}
	return s, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
