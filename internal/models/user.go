package models

import "time"

type Company struct {
	BaseModel
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null"`
	Phone   string
	Address string
	City    string
	VATID   string `gorm:"column:vat_id"`

	// Relations
	Users        []User        `gorm:"foreignKey:CompanyID"`
	Subscription *Subscription `gorm:"foreignKey:CompanyID"`
	Projects     []Project     `gorm:"foreignKey:CompanyID"`
}

type User struct {
	BaseModel
	CompanyID         string     `gorm:"not null;index"`
	Name              string     `gorm:"not null"`
	Email             string     `gorm:"uniqueIndex;not null"`
	PasswordHash      string     `gorm:"not null"`
	Role              UserRole   `gorm:"type:varchar(20);not null"`
	Status            UserStatus `gorm:"type:varchar(20);default:'pending'"`
	IsVerified        bool       `gorm:"default:false"`
	VerificationToken string
	ResetToken        string
	ResetTokenExp     *time.Time

	// Relations
	Company       Company        `gorm:"foreignKey:CompanyID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
