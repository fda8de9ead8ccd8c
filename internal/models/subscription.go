package models

import (
	"time"
)

// Subscription - агрегат подписки компании (одна на компанию).
// Кэшированные лимиты (MaxProjects..MaxAPIRate) и Status пишутся ТОЛЬКО
// пересчетом entitlement-движка; -1 означает "безлимит".
type Subscription struct {
	BaseModel
	CompanyID string `gorm:"not null;uniqueIndex"`

	// Триальное окно фиксируется при создании и никогда не продлевается
	TrialStart time.Time `gorm:"not null"`
	TrialEnd   time.Time `gorm:"not null"`

	// Кэшированные агрегированные лимиты
	MaxProjects  int `gorm:"not null;default:0"`
	MaxUsers     int `gorm:"not null;default:0"`
	MaxStorageMB int `gorm:"not null;default:0"`
	MaxAPIRate   int `gorm:"not null;default:0"`

	// Счетчики использования текущего периода
	ProjectsUsed      int `gorm:"not null;default:0"`
	TrialProjectsUsed int `gorm:"not null;default:0"`
	StorageUsedMB     int `gorm:"not null;default:0"`

	Status          SubscriptionStatus `gorm:"type:varchar(20);default:'trial'"`
	PlanName        string             `gorm:"default:'trial'"`
	PaymentFailures int                `gorm:"not null;default:0"`

	// Relations
	Purchases []Purchase `gorm:"foreignKey:SubscriptionID"`
}

// Purchase - одна оплаченная покупка плана со своим периодом действия.
// Никогда не удаляется физически (история для аудита); продление
// двигает EndDate, отмена снимает Active.
type Purchase struct {
	BaseModel
	SubscriptionID    string       `gorm:"not null;index"`
	PlanName          string       `gorm:"not null"`
	Cycle             BillingCycle `gorm:"type:varchar(10);not null"`
	StartDate         time.Time    `gorm:"not null"`
	EndDate           time.Time    `gorm:"not null"` // эксклюзивная граница
	Active            bool         `gorm:"default:true"`
	Cancelled         bool         `gorm:"default:false"`
	CancelAtPeriodEnd bool         `gorm:"default:false"`
	CancelledAt       *time.Time
}

type PaymentTransaction struct {
	BaseModel
	CompanyID  string `gorm:"not null;index"`
	PurchaseID string `gorm:"index"`
	PlanName   string `gorm:"not null"`
	Cycle      BillingCycle
	Amount     float64
	Currency   string        `gorm:"default:'EUR'"`
	Status     PaymentStatus `gorm:"default:'pending'"`
	InvID      string        `gorm:"uniqueIndex"` // наш invoice reference для платежного провайдера
	SessionID  string        `gorm:"index"`       // Stripe checkout session
	PaidAt     *time.Time
	FailedAt   *time.Time
}
