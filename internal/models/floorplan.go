package models

import "time"

type FloorPlan struct {
	BaseModel
	ProjectID       string `gorm:"not null;index"`
	OriginalName    string `gorm:"column:original_name"`
	Path            string `gorm:"not null"`
	URL             string
	MimeType        string
	Size            int64
	StorageProvider string `gorm:"default:'local'"`
}

// Analysis - один прогон vision-модели по плану помещения.
// Сырый текст ответа храним целиком: extractor прощающий, но
// для разбора инцидентов нужен оригинал.
type Analysis struct {
	BaseModel
	ProjectID   string         `gorm:"not null;index"`
	FloorPlanID string         `gorm:"not null;index"`
	Status      AnalysisStatus `gorm:"type:varchar(20);default:'pending'"`
	Model       string
	RawResponse string `gorm:"type:text"`
	RoomCount   int
	ErrorText   string
	CompletedAt *time.Time

	// Relations
	Rooms []RoomMeasurement `gorm:"foreignKey:AnalysisID"`
}
