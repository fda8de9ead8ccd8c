package services

import (
	"time"

	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type ProjectService interface {
	Create(companyID string, req *dto.CreateProjectRequest) (*models.Project, error)
	Get(companyID, projectID string) (*models.Project, error)
	List(companyID string, page, pageSize int) ([]models.Project, int64, error)
	Update(companyID, projectID string, req *dto.UpdateProjectRequest) (*models.Project, error)
	Delete(companyID, projectID string) error
}

type ProjectServiceImpl struct {
	projectRepo      repositories.ProjectRepository
	subscriptionRepo repositories.SubscriptionRepository
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	subscriptionRepo repositories.SubscriptionRepository,
) ProjectService {
	return &ProjectServiceImpl{
		projectRepo:      projectRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// Create создает проект, если подписка активна и лимит не исчерпан.
// Шлюз и инкремент счетчика атомарны.
func (s *ProjectServiceImpl) Create(companyID string, req *dto.CreateProjectRequest) (*models.Project, error) {
	if err := s.subscriptionRepo.IncrementProjectUsage(companyID, time.Now()); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrSubscriptionInactive):
			return nil, apperrors.ErrSubscriptionExpired
		case apperrors.Is(err, repositories.ErrSubscriptionLimit):
			return nil, apperrors.ErrSubscriptionLimitReached
		case apperrors.Is(err, repositories.ErrSubscriptionNotFound):
			return nil, apperrors.ErrNotFound(err)
		default:
			return nil, apperrors.InternalError(err)
		}
	}

	project := &models.Project{
		CompanyID:   companyID,
		Name:        req.Name,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Address:     req.Address,
		Notes:       req.Notes,
	}
	if err := s.projectRepo.Create(project); err != nil {
		// Счетчик уже увеличен; откатываем, чтобы место не протекло
		if derr := s.subscriptionRepo.DecrementProjectUsage(companyID); derr != nil {
			logger.Error("Failed to roll back project usage", "company_id", companyID, "error", derr)
		}
		return nil, apperrors.InternalError(err)
	}

	return project, nil
}

func (s *ProjectServiceImpl) Get(companyID, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByIDForCompany(projectID, companyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return project, nil
}

func (s *ProjectServiceImpl) List(companyID string, page, pageSize int) ([]models.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	projects, total, err := s.projectRepo.FindByCompany(companyID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return projects, total, nil
}

func (s *ProjectServiceImpl) Update(companyID, projectID string, req *dto.UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Get(companyID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ClientName != nil {
		project.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		project.ClientEmail = *req.ClientEmail
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Notes != nil {
		project.Notes = *req.Notes
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return project, nil
}

// Delete удаляет проект и освобождает место в лимите
func (s *ProjectServiceImpl) Delete(companyID, projectID string) error {
	if _, err := s.Get(companyID, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.subscriptionRepo.DecrementProjectUsage(companyID); err != nil {
		logger.Error("Failed to decrement project usage", "company_id", companyID, "error", err)
	}
	return nil
}
