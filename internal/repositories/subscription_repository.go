package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/models"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionInactive = errors.New("subscription not active")
	ErrSubscriptionLimit    = errors.New("subscription limit reached")
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrPaymentNotFound      = errors.New("payment not found")
)

type SubscriptionRepository interface {
	// Subscription operations
	Create(sub *models.Subscription) error
	FindByCompany(companyID string) (*models.Subscription, error)
	Update(sub *models.Subscription) error

	// RecalculateAndPersist re-derives the cached limits and status
	// from purchases and the trial window, inside one transaction
	RecalculateAndPersist(companyID string, now time.Time) (*models.Subscription, error)

	// IncrementProjectUsage atomically gates and counts project
	// creation; returns ErrSubscriptionInactive or ErrSubscriptionLimit
	IncrementProjectUsage(companyID string, now time.Time) error
	DecrementProjectUsage(companyID string) error
	AddStorageUsage(companyID string, deltaMB int) error
	ResetPeriodUsage(companyID string) error

	FindExpiringTrials(days int) ([]models.Subscription, error)
	FindStale(now time.Time) ([]models.Subscription, error)
	CountByStatus() (map[models.SubscriptionStatus]int64, error)

	// Purchase operations
	CreatePurchase(purchase *models.Purchase) error
	FindPurchaseByID(id string) (*models.Purchase, error)
	FindActivePurchases(subscriptionID string, now time.Time) ([]models.Purchase, error)
	// ExtendPurchase двигает конец периода существующей покупки (продление)
	ExtendPurchase(purchaseID string, newEnd time.Time) error
	CancelPurchaseAtPeriodEnd(purchaseID string) error

	// PaymentTransaction operations
	CreatePaymentTransaction(payment *models.PaymentTransaction) error
	FindPaymentByInvID(invID string) (*models.PaymentTransaction, error)
	FindPaymentsByCompany(companyID string) ([]models.PaymentTransaction, error)
	UpdatePaymentStatus(invID string, status models.PaymentStatus, when time.Time) error
}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	engine *entitlement.Engine
}

func NewSubscriptionRepository(db *gorm.DB, engine *entitlement.Engine) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db, engine: engine}
}

// Subscription operations

func (r *SubscriptionRepositoryImpl) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) FindByCompany(companyID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Purchases").First(&sub, "company_id = ?", companyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *SubscriptionRepositoryImpl) RecalculateAndPersist(companyID string, now time.Time) (*models.Subscription, error) {
	var result *models.Subscription

	// Пересчет читает покупки и пишет кэш одной транзакцией,
	// иначе параллельный webhook может затереть свежие лимиты
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Preload("Purchases").First(&sub, "company_id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		r.engine.Recalculate(&sub, now).Apply(&sub)

		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		result = &sub
		return nil
	})

	return result, err
}

func (r *SubscriptionRepositoryImpl) IncrementProjectUsage(companyID string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Preload("Purchases").First(&sub, "company_id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		// Кэш мог устареть с последнего пересчета
		r.engine.Recalculate(&sub, now).Apply(&sub)

		if !r.engine.IsActive(&sub, now) {
			return ErrSubscriptionInactive
		}
		if !r.engine.CanCreateProject(&sub, now) {
			return ErrSubscriptionLimit
		}

		r.engine.RecordProjectCreation(&sub, now)

		return tx.Save(&sub).Error
	})
}

func (r *SubscriptionRepositoryImpl) DecrementProjectUsage(companyID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, "company_id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		// Не ниже нуля
		if sub.ProjectsUsed > 0 {
			sub.ProjectsUsed--
		}

		return tx.Save(&sub).Error
	})
}

func (r *SubscriptionRepositoryImpl) AddStorageUsage(companyID string, deltaMB int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, "company_id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		sub.StorageUsedMB += deltaMB
		if sub.StorageUsedMB < 0 {
			sub.StorageUsedMB = 0
		}

		return tx.Save(&sub).Error
	})
}

func (r *SubscriptionRepositoryImpl) ResetPeriodUsage(companyID string) error {
	result := r.db.Model(&models.Subscription{}).Where("company_id = ?", companyID).
		Update("projects_used", 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) CountByStatus() (map[models.SubscriptionStatus]int64, error) {
	var rows []struct {
		Status models.SubscriptionStatus
		Count  int64
	}
	err := r.db.Model(&models.Subscription{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.SubscriptionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *SubscriptionRepositoryImpl) FindExpiringTrials(days int) ([]models.Subscription, error) {
	var subs []models.Subscription
	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	err := r.db.Where("status = ? AND trial_end > ? AND trial_end <= ?",
		models.SubscriptionStatusTrial, now, cutoff).
		Order("trial_end ASC").
		Find(&subs).Error
	return subs, err
}

// FindStale возвращает подписки, у которых кэшированный статус еще
// trial/active, а триал уже закончился. Активные покупки отсечь одним
// SQL нельзя, поэтому кандидатов фильтрует вызывающий через пересчет
func (r *SubscriptionRepositoryImpl) FindStale(now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status IN ? AND trial_end < ?",
		[]models.SubscriptionStatus{models.SubscriptionStatusTrial, models.SubscriptionStatusActive}, now).
		Find(&subs).Error
	return subs, err
}

// Purchase operations

func (r *SubscriptionRepositoryImpl) CreatePurchase(purchase *models.Purchase) error {
	return r.db.Create(purchase).Error
}

func (r *SubscriptionRepositoryImpl) FindPurchaseByID(id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.First(&purchase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *SubscriptionRepositoryImpl) FindActivePurchases(subscriptionID string, now time.Time) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("subscription_id = ? AND active = ? AND end_date > ?", subscriptionID, true, now).
		Order("end_date DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *SubscriptionRepositoryImpl) ExtendPurchase(purchaseID string, newEnd time.Time) error {
	result := r.db.Model(&models.Purchase{}).Where("id = ?", purchaseID).
		Update("end_date", newEnd)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) CancelPurchaseAtPeriodEnd(purchaseID string) error {
	now := time.Now()
	result := r.db.Model(&models.Purchase{}).Where("id = ?", purchaseID).Updates(map[string]interface{}{
		"cancelled":            true,
		"cancel_at_period_end": true,
		"cancelled_at":         now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

// PaymentTransaction operations

func (r *SubscriptionRepositoryImpl) CreatePaymentTransaction(payment *models.PaymentTransaction) error {
	return r.db.Create(payment).Error
}

func (r *SubscriptionRepositoryImpl) FindPaymentByInvID(invID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.First(&payment, "inv_id = ?", invID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *SubscriptionRepositoryImpl) FindPaymentsByCompany(companyID string) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := r.db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *SubscriptionRepositoryImpl) UpdatePaymentStatus(invID string, status models.PaymentStatus, when time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.PaymentStatusPaid:
		updates["paid_at"] = when
	case models.PaymentStatusFailed:
		updates["failed_at"] = when
	}

	result := r.db.Model(&models.PaymentTransaction{}).Where("inv_id = ?", invID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
