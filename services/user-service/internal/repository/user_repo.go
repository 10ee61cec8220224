package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiaorakahi/marketplace/services/user-service/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.User{}, &domain.Setting{})
}

// UpsertByEmail creates the profile or refreshes name and role of the
// existing one. Phone and avatar belong to the user and are left alone.
func (r *UserRepo) UpsertByEmail(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	assign := map[string]any{"role": u.Role}
	if u.Name != "" {
		assign["name"] = u.Name
	}
	return r.db.WithContext(ctx).
		Where("email = ?", u.Email).
		Assign(assign).
		FirstOrCreate(u).Error
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.ByID(ctx, id)
}

// List pages through profiles. query matches email or name case-insensitively.
func (r *UserRepo) List(ctx context.Context, page, size int32, query, role string) ([]domain.User, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		qb = qb.Where("role = ?", strings.ToUpper(role))
	}
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		like := "%" + q + "%"
		qb = qb.Where("(LOWER(email) LIKE ? OR LOWER(name) LIKE ?)", like, like)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Stats(ctx context.Context) (domain.Stats, error) {
	s := domain.Stats{ByRole: map[string]int64{}}
	var rows []struct {
		Role string
		N    int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("role, COUNT(*) AS n").Group("role").Scan(&rows).Error; err != nil {
		return s, err
	}
	for _, row := range rows {
		s.ByRole[row.Role] = row.N
		s.Total += row.N
	}
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("active = ?", true).Count(&s.Active).Error
	return s, err
}

// Settings returns the stored overrides keyed by setting name.
func (r *UserRepo) Settings(ctx context.Context) (map[string]string, error) {
	var rows []domain.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

// SaveSettings upserts every pair in one transaction.
func (r *UserRepo) SaveSettings(ctx context.Context, values map[string]string, by string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			row := domain.Setting{Key: k, Value: v, UpdatedBy: by, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
