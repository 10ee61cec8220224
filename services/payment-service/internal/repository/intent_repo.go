package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiaorakahi/marketplace/services/payment-service/internal/domain"
)

type IntentRepo struct{ db *gorm.DB }

func NewIntentRepo(db *gorm.DB) *IntentRepo {
	return &IntentRepo{db: db}
}

func (r *IntentRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.PaymentIntent{}, &domain.EventConsumed{})
}

func (r *IntentRepo) Create(ctx context.Context, p *domain.PaymentIntent) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *IntentRepo) ByID(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *IntentRepo) ByClientSecret(ctx context.Context, secret string) (*domain.PaymentIntent, error) {
	return r.first(ctx, "client_secret = ?", secret)
}

func (r *IntentRepo) ByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentIntent, error) {
	return r.first(ctx, "idempotency_key = ?", key)
}

func (r *IntentRepo) ByChargeID(ctx context.Context, chargeID string) (*domain.PaymentIntent, error) {
	return r.first(ctx, "charge_id = ?", chargeID)
}

// LatestForOrder returns the newest intent of the order.
func (r *IntentRepo) LatestForOrder(ctx context.Context, orderID string) (*domain.PaymentIntent, error) {
	var p domain.PaymentIntent
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// PaidForOrder returns the intent that captured money for the order.
func (r *IntentRepo) PaidForOrder(ctx context.Context, orderID string) (*domain.PaymentIntent, error) {
	return r.first(ctx, "order_id = ? AND status = ?", orderID, domain.StatusSucceeded)
}

func (r *IntentRepo) first(ctx context.Context, query string, args ...any) (*domain.PaymentIntent, error) {
	var p domain.PaymentIntent
	if err := r.db.WithContext(ctx).Where(query, args...).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Transition locks the intent, lets fn mutate it and saves it.
func (r *IntentRepo) Transition(ctx context.Context, id string, fn func(*domain.PaymentIntent) error) (*domain.PaymentIntent, error) {
	var p domain.PaymentIntent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&p); err != nil {
			return err
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CancelOpen stops every still-payable intent of the order from being charged.
func (r *IntentRepo) CancelOpen(ctx context.Context, orderID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentIntent{}).
		Where("order_id = ? AND status IN ?", orderID, []string{domain.StatusRequiresPayment, domain.StatusFailed}).
		Update("status", domain.StatusCanceled)
	return res.RowsAffected, res.Error
}

func (r *IntentRepo) Consumed(ctx context.Context, eventID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.EventConsumed{}).Where("id = ?", eventID).Count(&n).Error
	return n > 0, err
}

// TransitionOnce runs Transition and records eventID in the same
// transaction. A consumed eventID skips fn and reports applied=false.
func (r *IntentRepo) TransitionOnce(ctx context.Context, id, eventID, eventKey string, fn func(*domain.PaymentIntent) error) (p *domain.PaymentIntent, applied bool, err error) {
	p = &domain.PaymentIntent{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&domain.EventConsumed{}).Where("id = ?", eventID).Count(&seen).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(p, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if seen > 0 {
			return nil
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		applied = true
		return tx.Create(&domain.EventConsumed{ID: eventID, EventKey: eventKey, ProcessedAt: time.Now().UTC()}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return p, applied, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
