package models

import "time"

type Quote struct {
	BaseModel
	CompanyID string      `gorm:"not null;index"`
	ProjectID string      `gorm:"not null;index"`
	Number    string      `gorm:"uniqueIndex;not null"`
	Status    QuoteStatus `gorm:"type:varchar(20);default:'draft'"`
	Subtotal  float64     `gorm:"not null;default:0"`
	VATAmount float64     `gorm:"not null;default:0"`
	Total     float64     `gorm:"not null;default:0"`
	Currency  string      `gorm:"default:'EUR'"`
	SentAt    *time.Time

	// Relations
	Lines []QuoteLine `gorm:"foreignKey:QuoteID"`
}

type QuoteLine struct {
	BaseModel
	QuoteID     string  `gorm:"not null;index"`
	RoomName    string  `gorm:"not null"`
	Description string  `gorm:"not null"`
	AreaM2      float64 `gorm:"not null"`
	Rate        float64 `gorm:"not null"`
	Amount      float64 `gorm:"not null"`
}

// PendingQuoteSummary - легковесное значение для писем о смете,
// которая еще не сохранена как Quote. Содержит ровно те поля,
// которые нужны шаблону письма; не является ORM-моделью.
type PendingQuoteSummary struct {
	CompanyName string
	ProjectName string
	ClientName  string
	RoomCount   int
	Subtotal    float64
	VATAmount   float64
	Total       float64
	Currency    string
}
