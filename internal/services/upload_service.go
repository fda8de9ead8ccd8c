package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/storage"
	"paintquote_backend/pkg/apperrors"
)

type UploadService interface {
	UploadFloorPlan(ctx context.Context, companyID, projectID, fileName, contentType string, size int64, reader io.Reader) (*models.FloorPlan, error)
	GetFloorPlan(ctx context.Context, companyID, planID string) (*models.FloorPlan, io.ReadCloser, error)
	DeleteFloorPlan(ctx context.Context, companyID, planID string) error
}

type UploadServiceImpl struct {
	projectRepo      repositories.ProjectRepository
	subscriptionRepo repositories.SubscriptionRepository
	store            storage.Storage
	storageName      string
	maxSize          int64
	allowedTypes     map[string]bool
}

func NewUploadService(
	projectRepo repositories.ProjectRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	store storage.Storage,
	storageName string,
	maxSize int64,
	allowedTypes []string,
) UploadService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &UploadServiceImpl{
		projectRepo:      projectRepo,
		subscriptionRepo: subscriptionRepo,
		store:            store,
		storageName:      storageName,
		maxSize:          maxSize,
		allowedTypes:     allowed,
	}
}

// UploadFloorPlan валидирует файл, проверяет квоту хранилища
// и сохраняет план
func (s *UploadServiceImpl) UploadFloorPlan(ctx context.Context, companyID, projectID, fileName, contentType string, size int64, reader io.Reader) (*models.FloorPlan, error) {
	if !s.allowedTypes[contentType] {
		return nil, apperrors.ErrInvalidFileType
	}
	if size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	project, err := s.projectRepo.FindByIDForCompany(projectID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	sub, err := s.subscriptionRepo.RecalculateAndPersist(companyID, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	sizeMB := int((size + 1024*1024 - 1) / (1024 * 1024))
	if sub.MaxStorageMB != entitlement.Unlimited && sub.StorageUsedMB+sizeMB > sub.MaxStorageMB {
		return nil, apperrors.ErrStorageLimitExceeded
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	path := fmt.Sprintf("plans/%s/%s%s", project.ID, uuid.NewString(), ext)

	written, err := s.store.Save(ctx, path, reader, contentType)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	url, err := s.store.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	plan := &models.FloorPlan{
		ProjectID:       project.ID,
		OriginalName:    fileName,
		Path:            path,
		URL:             url,
		MimeType:        contentType,
		Size:            written,
		StorageProvider: s.storageName,
	}
	if err := s.projectRepo.CreateFloorPlan(plan); err != nil {
		_ = s.store.Delete(ctx, path)
		return nil, apperrors.InternalError(err)
	}

	writtenMB := int((written + 1024*1024 - 1) / (1024 * 1024))
	if err := s.subscriptionRepo.AddStorageUsage(companyID, writtenMB); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return plan, nil
}

func (s *UploadServiceImpl) GetFloorPlan(ctx context.Context, companyID, planID string) (*models.FloorPlan, io.ReadCloser, error) {
	plan, err := s.findPlanForCompany(companyID, planID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Get(ctx, plan.Path)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	return plan, rc, nil
}

func (s *UploadServiceImpl) DeleteFloorPlan(ctx context.Context, companyID, planID string) error {
	plan, err := s.findPlanForCompany(companyID, planID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.DeleteFloorPlan(plan.ID); err != nil {
		return apperrors.InternalError(err)
	}
	_ = s.store.Delete(ctx, plan.Path)

	sizeMB := int((plan.Size + 1024*1024 - 1) / (1024 * 1024))
	return s.subscriptionRepo.AddStorageUsage(companyID, -sizeMB)
}

// findPlanForCompany проверяет, что план принадлежит проекту компании
func (s *UploadServiceImpl) findPlanForCompany(companyID, planID string) (*models.FloorPlan, error) {
	plan, err := s.projectRepo.FindFloorPlanByID(planID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if _, err := s.projectRepo.FindByIDForCompany(plan.ProjectID, companyID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return plan, nil
}
