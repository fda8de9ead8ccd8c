package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"paintquote_backend/internal/models"
)

var ErrQuoteNotFound = errors.New("quote not found")

type QuoteRepository interface {
	// CreateWithLines сохраняет смету вместе со строками атомарно
	CreateWithLines(quote *models.Quote, lines []models.QuoteLine) error
	FindByID(id string) (*models.Quote, error)
	FindByIDForCompany(id, companyID string) (*models.Quote, error)
	FindByProject(projectID string) ([]models.Quote, error)
	UpdateStatus(quoteID string, status models.QuoteStatus, sentAt *time.Time) error
	NextNumber() (string, error)
}

type QuoteRepositoryImpl struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &QuoteRepositoryImpl{db: db}
}

func (r *QuoteRepositoryImpl) CreateWithLines(quote *models.Quote, lines []models.QuoteLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return err
		}

		for i := range lines {
			lines[i].QuoteID = quote.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		quote.Lines = lines
		return nil
	})
}

func (r *QuoteRepositoryImpl) FindByID(id string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Lines").First(&quote, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepositoryImpl) FindByIDForCompany(id, companyID string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Lines").First(&quote, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepositoryImpl) FindByProject(projectID string) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.Preload("Lines").Where("project_id = ?", projectID).
		Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepositoryImpl) UpdateStatus(quoteID string, status models.QuoteStatus, sentAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}

	result := r.db.Model(&models.Quote{}).Where("id = ?", quoteID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// NextNumber выдает следующий номер сметы вида Q-2025-0042.
// Счетчик - количество смет за год; уникальный индекс по номеру
// ловит редкую гонку двух одновременных генераций
func (r *QuoteRepositoryImpl) NextNumber() (string, error) {
	year := time.Now().Year()
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)

	var count int64
	if err := r.db.Model(&models.Quote{}).Where("created_at >= ?", yearStart).Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("Q-%d-%04d", year, count+1), nil
}
