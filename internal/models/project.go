package models

type Project struct {
	BaseModel
	CompanyID   string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	ClientName  string
	ClientEmail string
	Address     string
	Notes       string

	// Relations
	FloorPlans []FloorPlan `gorm:"foreignKey:ProjectID"`
	Quotes     []Quote     `gorm:"foreignKey:ProjectID"`
}
