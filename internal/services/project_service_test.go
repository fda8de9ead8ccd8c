package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

func TestProjectService_Create(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	subRepo := &fakeSubscriptionRepo{}
	svc := NewProjectService(projectRepo, subRepo)

	project, err := svc.Create("cmp-1", &dto.CreateProjectRequest{
		Name:       "Apartment renovation",
		ClientName: "J. de Vries",
	})
	require.NoError(t, err)

	assert.Equal(t, "cmp-1", project.CompanyID)
	assert.Equal(t, "Apartment renovation", project.Name)
	assert.Equal(t, 1, subRepo.increments)
	assert.Len(t, projectRepo.created, 1)
}

func TestProjectService_Create_SubscriptionExpired(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	subRepo := &fakeSubscriptionRepo{incrementErr: repositories.ErrSubscriptionInactive}
	svc := NewProjectService(projectRepo, subRepo)

	_, err := svc.Create("cmp-1", &dto.CreateProjectRequest{Name: "Blocked"})
	require.Error(t, err)

	assert.ErrorIs(t, err, apperrors.ErrSubscriptionExpired)
	assert.NotErrorIs(t, err, apperrors.ErrSubscriptionLimitReached)
	assert.Empty(t, projectRepo.created)
}

func TestProjectService_Create_LimitReached(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	subRepo := &fakeSubscriptionRepo{incrementErr: repositories.ErrSubscriptionLimit}
	svc := NewProjectService(projectRepo, subRepo)

	_, err := svc.Create("cmp-1", &dto.CreateProjectRequest{Name: "Blocked"})
	require.Error(t, err)

	assert.ErrorIs(t, err, apperrors.ErrSubscriptionLimitReached)
	assert.NotErrorIs(t, err, apperrors.ErrSubscriptionExpired)
}

func TestProjectService_Create_RollsBackUsageOnStoreFailure(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	projectRepo.createErr = errors.New("insert failed")
	subRepo := &fakeSubscriptionRepo{}
	svc := NewProjectService(projectRepo, subRepo)

	_, err := svc.Create("cmp-1", &dto.CreateProjectRequest{Name: "Doomed"})
	require.Error(t, err)

	// Счетчик возвращен, чтобы неудавшаяся запись не съедала лимит
	assert.Equal(t, 1, subRepo.increments)
	assert.Equal(t, 1, subRepo.decrements)
}

func TestProjectService_Delete_ReleasesUsage(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
		Name:      "Old project",
	}
	subRepo := &fakeSubscriptionRepo{}
	svc := NewProjectService(projectRepo, subRepo)

	require.NoError(t, svc.Delete("cmp-1", "prj-1"))

	assert.Equal(t, []string{"prj-1"}, projectRepo.deleted)
	assert.Equal(t, 1, subRepo.decrements)
}

func TestProjectService_Get_ScopedToCompany(t *testing.T) {
	t.Parallel()

	projectRepo := newFakeProjectRepo()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
	}
	svc := NewProjectService(projectRepo, &fakeSubscriptionRepo{})

	_, err := svc.Get("cmp-other", "prj-1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPCode)
}
