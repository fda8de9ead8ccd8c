package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"paintquote_backend/internal/models"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrRoomNotFound     = errors.New("room measurement not found")
)

type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	FindByID(id string) (*models.Analysis, error)
	FindByProject(projectID string) ([]models.Analysis, error)
	FindLatestCompleted(projectID string) (*models.Analysis, error)

	// MarkCompleted записывает результат прогона и заменяет комнаты
	// одной транзакцией
	MarkCompleted(analysisID string, rawResponse, model string, rooms []models.RoomMeasurement) error
	MarkFailed(analysisID string, rawResponse, model, errorText string) error

	// Room operations
	FindRoom(roomID string) (*models.RoomMeasurement, error)
	UpdateRoomTreatments(roomID string, wall, ceiling models.TreatmentSelection) error
}

type AnalysisRepositoryImpl struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

func (r *AnalysisRepositoryImpl) Create(analysis *models.Analysis) error {
	return r.db.Create(analysis).Error
}

func (r *AnalysisRepositoryImpl) FindByID(id string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Preload("Rooms", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).First(&analysis, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepositoryImpl) FindByProject(projectID string) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&analyses).Error
	return analyses, err
}

func (r *AnalysisRepositoryImpl) FindLatestCompleted(projectID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Preload("Rooms", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("project_id = ? AND status = ?", projectID, models.AnalysisStatusCompleted).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepositoryImpl) MarkCompleted(analysisID string, rawResponse, model string, rooms []models.RoomMeasurement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var analysis models.Analysis
		if err := tx.First(&analysis, "id = ?", analysisID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAnalysisNotFound
			}
			return err
		}

		// Повторный прогон заменяет набор комнат целиком
		if err := tx.Delete(&models.RoomMeasurement{}, "analysis_id = ?", analysisID).Error; err != nil {
			return err
		}

		for i := range rooms {
			rooms[i].AnalysisID = analysisID
		}
		if len(rooms) > 0 {
			if err := tx.Create(&rooms).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&analysis).Updates(map[string]interface{}{
			"status":       models.AnalysisStatusCompleted,
			"raw_response": rawResponse,
			"model":        model,
			"room_count":   len(rooms),
			"error_text":   "",
			"completed_at": now,
		}).Error
	})
}

func (r *AnalysisRepositoryImpl) MarkFailed(analysisID string, rawResponse, model, errorText string) error {
	result := r.db.Model(&models.Analysis{}).Where("id = ?", analysisID).Updates(map[string]interface{}{
		"status":       models.AnalysisStatusFailed,
		"raw_response": rawResponse,
		"model":        model,
		"error_text":   errorText,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

// Room operations

func (r *AnalysisRepositoryImpl) FindRoom(roomID string) (*models.RoomMeasurement, error) {
	var room models.RoomMeasurement
	err := r.db.First(&room, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *AnalysisRepositoryImpl) UpdateRoomTreatments(roomID string, wall, ceiling models.TreatmentSelection) error {
	result := r.db.Model(&models.RoomMeasurement{}).Where("id = ?", roomID).Updates(map[string]interface{}{
		"wall_treatments":    models.EncodeSelection(wall),
		"ceiling_treatments": models.EncodeSelection(ceiling),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
