package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiaorakahi/marketplace/services/booking-service/internal/domain"
)

const numberAttempts = 5

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.EventConsumed{})
}

// Create assigns o an id and an order number from next, drawing again while
// the number is taken.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order, next func() string) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < numberAttempts; i++ {
			n := next()
			var taken int64
			if err := tx.Model(&domain.Order{}).Where("order_number = ?", n).Count(&taken).Error; err != nil {
				return err
			}
			if taken == 0 {
				o.OrderNumber = n
				return tx.Create(o).Error
			}
		}
		return fmt.Errorf("%w: no free order number after %d attempts", domain.ErrConflict, numberAttempts)
	})
}

func (r *OrderRepo) ByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepo) ByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "order_number = ?", number).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// Transition loads the order under a row lock, lets fn mutate it and saves
// the result. fn returning an error aborts without writing.
func (r *OrderRepo) Transition(ctx context.Context, id string, fn func(*domain.Order) error) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&o); err != nil {
			return err
		}
		return tx.Save(&o).Error
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// PaidOutcome says what a payment.paid event did to its order.
type PaidOutcome int

const (
	PaidIgnored PaidOutcome = iota
	PaidApplied
	// PaidAfterCancel means money was captured for an order that had been
	// cancelled while unpaid.
	PaidAfterCancel
)

// MarkPaidIfNotProcessed moves a PENDING_PAYMENT order to PENDING once per
// eventID. A payment landing on an order cancelled before payment is recorded
// on the order and reported as PaidAfterCancel.
func (r *OrderRepo) MarkPaidIfNotProcessed(ctx context.Context, orderID, paymentID, eventID, eventKey string) (o *domain.Order, outcome PaidOutcome, err error) {
	o = &domain.Order{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&domain.EventConsumed{}).Where("id = ?", eventID).Count(&seen).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(o, "id = ?", orderID).Error; err != nil {
			return notFound(err)
		}
		if seen > 0 {
			return nil
		}
		now := time.Now().UTC()
		switch {
		case o.Status == domain.StatusPendingPayment:
			o.Status = domain.StatusPending
			outcome = PaidApplied
		case o.Status == domain.StatusCancelled && o.PaymentID == "":
			outcome = PaidAfterCancel
		}
		if outcome != PaidIgnored {
			o.PaymentID = paymentID
			o.PaidAt = &now
			if err := tx.Save(o).Error; err != nil {
				return err
			}
		}
		return tx.Create(&domain.EventConsumed{ID: eventID, EventKey: eventKey, ProcessedAt: time.Now().UTC()}).Error
	})
	if err != nil {
		return nil, PaidIgnored, err
	}
	return o, outcome, nil
}

type Filter struct {
	CustomerID  string
	CelebrityID string
	Status      string
	// PaidOnly hides orders still waiting for payment.
	PaidOnly bool
}

func (r *OrderRepo) List(ctx context.Context, page, size int32, f Filter) ([]domain.Order, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.CustomerID != "" {
		qb = qb.Where("customer_id = ?", f.CustomerID)
	}
	if f.CelebrityID != "" {
		qb = qb.Where("celebrity_id = ?", f.CelebrityID)
	}
	if f.Status != "" {
		qb = qb.Where("status = ?", f.Status)
	}
	if f.PaidOnly {
		qb = qb.Where("status <> ?", domain.StatusPendingPayment)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Order
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *OrderRepo) Earnings(ctx context.Context, celebrityID string) (domain.Earnings, error) {
	var e domain.Earnings
	var done struct {
		N      int64
		Earned int64
		Tips   int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COUNT(*) AS n, COALESCE(SUM(celebrity_share), 0) AS earned, COALESCE(SUM(tip_amount), 0) AS tips").
		Where("celebrity_id = ? AND status = ?", celebrityID, domain.StatusCompleted).
		Scan(&done).Error
	if err != nil {
		return e, err
	}
	var open struct {
		N       int64
		Pending int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COUNT(*) AS n, COALESCE(SUM(celebrity_share), 0) AS pending").
		Where("celebrity_id = ? AND status IN ?", celebrityID,
			[]string{domain.StatusPending, domain.StatusAccepted, domain.StatusDelivered}).
		Scan(&open).Error
	if err != nil {
		return e, err
	}
	e.CompletedOrders, e.Earned, e.TipsEarned = done.N, done.Earned, done.Tips
	e.PendingOrders, e.Pending = open.N, open.Pending
	return e, nil
}

func (r *OrderRepo) Stats(ctx context.Context) (domain.Stats, error) {
	s := domain.Stats{ByStatus: map[string]int64{}}
	var rows []struct {
		Status string
		N      int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return s, err
	}
	for _, row := range rows {
		s.ByStatus[row.Status] = row.N
		s.Total += row.N
	}
	var sums struct {
		Gross     int64
		Platform  int64
		Celebrity int64
		Tips      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COALESCE(SUM(amount), 0) AS gross, COALESCE(SUM(platform_share), 0) AS platform, "+
			"COALESCE(SUM(celebrity_share), 0) AS celebrity, COALESCE(SUM(tip_amount), 0) AS tips").
		Where("status IN ?", domain.PaidStatuses).
		Scan(&sums).Error
	if err != nil {
		return s, err
	}
	s.GrossRevenue, s.PlatformRevenue, s.CelebrityRevenue, s.Tips = sums.Gross, sums.Platform, sums.Celebrity, sums.Tips
	return s, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
