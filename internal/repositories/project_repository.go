package repositories

import (
	"errors"

	"gorm.io/gorm"

	"paintquote_backend/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id string) (*models.Project, error)
	FindByIDForCompany(id, companyID string) (*models.Project, error)
	FindByCompany(companyID string, limit, offset int) ([]models.Project, int64, error)
	Update(project *models.Project) error
	Delete(id string) error

	// FloorPlan operations
	CreateFloorPlan(plan *models.FloorPlan) error
	FindFloorPlanByID(id string) (*models.FloorPlan, error)
	FindFloorPlansByProject(projectID string) ([]models.FloorPlan, error)
	DeleteFloorPlan(id string) error
}

type ProjectRepositoryImpl struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

func (r *ProjectRepositoryImpl) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepositoryImpl) FindByID(id string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("FloorPlans").First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindByIDForCompany скоупит выборку на компанию: чужой проект
// неотличим от несуществующего
func (r *ProjectRepositoryImpl) FindByIDForCompany(id, companyID string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("FloorPlans").First(&project, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) FindByCompany(companyID string, limit, offset int) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	if err := r.db.Model(&models.Project{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepositoryImpl) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *ProjectRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// FloorPlan operations

func (r *ProjectRepositoryImpl) CreateFloorPlan(plan *models.FloorPlan) error {
	return r.db.Create(plan).Error
}

func (r *ProjectRepositoryImpl) FindFloorPlanByID(id string) (*models.FloorPlan, error) {
	var plan models.FloorPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *ProjectRepositoryImpl) FindFloorPlansByProject(projectID string) ([]models.FloorPlan, error) {
	var plans []models.FloorPlan
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *ProjectRepositoryImpl) DeleteFloorPlan(id string) error {
	return r.db.Delete(&models.FloorPlan{}, "id = ?", id).Error
}
