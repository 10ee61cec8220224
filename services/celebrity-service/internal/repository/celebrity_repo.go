package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/domain"
)

const slugAttempts = 20

type CelebrityRepo struct {
	db *gorm.DB
}

func NewCelebrityRepo(db *gorm.DB) *CelebrityRepo {
	return &CelebrityRepo{db: db}
}

func (r *CelebrityRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Celebrity{}, &domain.Application{})
}

func (r *CelebrityRepo) Create(ctx context.Context, c *domain.Celebrity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createCelebrity(tx, c)
	})
}

// createCelebrity stores c under the first free slug derived from its name.
func createCelebrity(tx *gorm.DB, c *domain.Celebrity) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	base := domain.Slugify(c.Name)
	if base == "" {
		base = "celebrity"
	}
	for i := 1; i <= slugAttempts; i++ {
		slug := base
		if i > 1 {
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		var taken int64
		if err := tx.Model(&domain.Celebrity{}).Where("slug = ?", slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken == 0 {
			c.Slug = slug
			return tx.Create(c).Error
		}
	}
	return fmt.Errorf("%w: no free slug for %q", domain.ErrConflict, c.Name)
}

func (r *CelebrityRepo) ByID(ctx context.Context, id string) (*domain.Celebrity, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CelebrityRepo) BySlug(ctx context.Context, slug string) (*domain.Celebrity, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *CelebrityRepo) ByUser(ctx context.Context, userID string) (*domain.Celebrity, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *CelebrityRepo) first(ctx context.Context, query string, args ...any) (*domain.Celebrity, error) {
	var c domain.Celebrity
	if err := r.db.WithContext(ctx).Where(query, args...).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

type Filter struct {
	Query           string
	Category        string
	VIPOnly         bool
	IncludeInactive bool
}

func (r *CelebrityRepo) List(ctx context.Context, page, size int32, f Filter) ([]domain.Celebrity, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Celebrity{})
	if !f.IncludeInactive {
		qb = qb.Where("active = ?", true)
	}
	if f.Category != "" {
		qb = qb.Where("category = ?", strings.ToLower(f.Category))
	}
	if f.VIPOnly {
		qb = qb.Where("is_vip = ?", true)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + q + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(bio) LIKE ?)", like, like)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Celebrity
	if err := qb.Order("is_vip DESC, name ASC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies fields to the celebrity and returns the stored row.
func (r *CelebrityRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.Celebrity, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Celebrity{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.ByID(ctx, id)
}

func (r *CelebrityRepo) CreateApplication(ctx context.Context, a *domain.Application) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&domain.Application{}).
			Where("user_id = ? AND status = ?", a.UserID, domain.ApplicationPending).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: an application is already pending", domain.ErrConflict)
		}
		return tx.Create(a).Error
	})
}

func (r *CelebrityRepo) ApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	var a domain.Application
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *CelebrityRepo) ListApplications(ctx context.Context, page, size int32, status, userID string) ([]domain.Application, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Application{})
	if status != "" {
		qb = qb.Where("status = ?", strings.ToUpper(status))
	}
	if userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Application
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ReviewApplication locks a pending application and lets fn decide it.
// fn may return a celebrity to create in the same transaction.
func (r *CelebrityRepo) ReviewApplication(ctx context.Context, id string, fn func(*domain.Application) (*domain.Celebrity, error)) (*domain.Application, *domain.Celebrity, error) {
	var a domain.Application
	var c *domain.Celebrity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if a.Status != domain.ApplicationPending {
			return fmt.Errorf("%w: application is %s", domain.ErrConflict, a.Status)
		}
		var err error
		if c, err = fn(&a); err != nil {
			return err
		}
		if c != nil {
			if a.UserID != "" {
				var existing int64
				if err := tx.Model(&domain.Celebrity{}).Where("user_id = ?", a.UserID).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					return fmt.Errorf("%w: user already has a celebrity profile", domain.ErrConflict)
				}
			}
			if err := createCelebrity(tx, c); err != nil {
				return err
			}
			a.CelebrityID = c.ID
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &a, c, nil
}

func (r *CelebrityRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Celebrity{}).Count(&s.Celebrities).Error; err != nil {
		return s, err
	}
	if err := db.Model(&domain.Celebrity{}).Where("active = ?", true).Count(&s.ActiveCelebrities).Error; err != nil {
		return s, err
	}
	if err := db.Model(&domain.Celebrity{}).Where("is_vip = ?", true).Count(&s.VIPCelebrities).Error; err != nil {
		return s, err
	}
	err := db.Model(&domain.Application{}).Where("status = ?", domain.ApplicationPending).Count(&s.PendingApplications).Error
	return s, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
