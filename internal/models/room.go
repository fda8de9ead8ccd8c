package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// TreatmentSelection - четыре флага выбора работ для одной поверхности.
// Все false до явного выбора пользователем.
type TreatmentSelection struct {
	Prep          bool `json:"prep"`
	Primer        bool `json:"primer"`
	PaintOneCoat  bool `json:"paint_one_coat"`
	PaintTwoCoats bool `json:"paint_two_coats"`
}

// RoomMeasurement - результат извлечения по одной комнате.
// Запись иммутабельна после создания: новый прогон анализа
// заменяет набор комнат целиком, а не сливает.
type RoomMeasurement struct {
	BaseModel
	AnalysisID    string  `gorm:"not null;index"`
	Seq           int     `gorm:"not null"` // 1-based, порядок первого появления
	Name          string  `gorm:"not null"`
	RoomType      string  `gorm:"type:varchar(100)"`
	WallSurfaceM2 float64 `gorm:"not null;default:0"`
	CeilingAreaM2 float64 `gorm:"not null;default:0"`

	WallTreatments    datatypes.JSON `gorm:"type:jsonb"` // TreatmentSelection
	CeilingTreatments datatypes.JSON `gorm:"type:jsonb"` // TreatmentSelection
}

// WallSelection десериализует выбор работ по стенам
func (r *RoomMeasurement) WallSelection() TreatmentSelection {
	return decodeSelection(r.WallTreatments)
}

// CeilingSelection десериализует выбор работ по потолку
func (r *RoomMeasurement) CeilingSelection() TreatmentSelection {
	return decodeSelection(r.CeilingTreatments)
}

func decodeSelection(raw datatypes.JSON) TreatmentSelection {
	var sel TreatmentSelection
	if len(raw) == 0 {
		return sel
	}
	// Малформированный jsonb трактуем как "ничего не выбрано"
	_ = json.Unmarshal(raw, &sel)
	return sel
}

// EncodeSelection сериализует выбор работ в jsonb
func EncodeSelection(sel TreatmentSelection) datatypes.JSON {
	raw, _ := json.Marshal(sel)
	return datatypes.JSON(raw)
}
