package services

import (
	"context"
	"io"
	"time"

	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/measure"
	"paintquote_backend/internal/metrics"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/internal/storage"
	"paintquote_backend/internal/vision"
	"paintquote_backend/pkg/apperrors"
)

type AnalysisService interface {
	// RunAnalysis синхронно прогоняет план через vision-модель
	// и сохраняет извлеченные комнаты
	RunAnalysis(ctx context.Context, companyID, projectID, floorPlanID string) (*dto.AnalysisResponse, error)
	GetAnalysis(companyID, analysisID string) (*dto.AnalysisResponse, error)
	ListAnalyses(companyID, projectID string) ([]dto.AnalysisResponse, error)
	UpdateRoomTreatments(companyID, analysisID, roomID string, req *dto.UpdateTreatmentsRequest) (*dto.RoomResponse, error)
}

type AnalysisServiceImpl struct {
	analysisRepo repositories.AnalysisRepository
	projectRepo  repositories.ProjectRepository
	store        storage.Storage
	analyzer     vision.Analyzer
}

func NewAnalysisService(
	analysisRepo repositories.AnalysisRepository,
	projectRepo repositories.ProjectRepository,
	store storage.Storage,
	analyzer vision.Analyzer,
) AnalysisService {
	return &AnalysisServiceImpl{
		analysisRepo: analysisRepo,
		projectRepo:  projectRepo,
		store:        store,
		analyzer:     analyzer,
	}
}

func (s *AnalysisServiceImpl) RunAnalysis(ctx context.Context, companyID, projectID, floorPlanID string) (*dto.AnalysisResponse, error) {
	project, err := s.projectRepo.FindByIDForCompany(projectID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	plan, err := s.projectRepo.FindFloorPlanByID(floorPlanID)
	if err != nil || plan.ProjectID != project.ID {
		return nil, apperrors.ErrNotFound(repositories.ErrProjectNotFound)
	}

	analysis := &models.Analysis{
		ProjectID:   project.ID,
		FloorPlanID: plan.ID,
		Status:      models.AnalysisStatusPending,
	}
	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, apperrors.InternalError(err)
	}

	start := time.Now()

	imageData, err := s.readPlan(ctx, plan.Path)
	if err != nil {
		_ = s.analysisRepo.MarkFailed(analysis.ID, "", "", err.Error())
		metrics.RecordAnalysis("failed", time.Since(start), 0)
		return nil, apperrors.InternalError(err)
	}

	rawResponse, model, err := s.analyzer.AnalyzeFloorPlan(ctx, imageData, plan.MimeType)
	if err != nil {
		_ = s.analysisRepo.MarkFailed(analysis.ID, rawResponse, model, err.Error())
		metrics.RecordAnalysis("failed", time.Since(start), 0)
		return nil, apperrors.ErrAnalysisFailed
	}

	extracted, usedFallback := measure.Parse(rawResponse)
	if usedFallback {
		metrics.RecordExtractionFallback()
	}

	rooms := make([]models.RoomMeasurement, 0, len(extracted))
	for _, r := range extracted {
		rooms = append(rooms, models.RoomMeasurement{
			Seq:               r.ID,
			Name:              r.Name,
			RoomType:          r.RoomType,
			WallSurfaceM2:     r.WallSurfaceM2,
			CeilingAreaM2:     r.CeilingAreaM2,
			WallTreatments:    models.EncodeSelection(models.TreatmentSelection{}),
			CeilingTreatments: models.EncodeSelection(models.TreatmentSelection{}),
		})
	}

	if err := s.analysisRepo.MarkCompleted(analysis.ID, rawResponse, model, rooms); err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.RecordAnalysis("completed", time.Since(start), len(rooms))
	logger.Info("Floor plan analysis completed",
		"analysis_id", analysis.ID, "project_id", project.ID, "rooms", len(rooms))

	// Ноль комнат - все равно завершенный прогон: результат хранится,
	// ошибку получит генерация сметы, а не анализ
	saved, err := s.analysisRepo.FindByID(analysis.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := toAnalysisResponse(saved)
	return &resp, nil
}

func (s *AnalysisServiceImpl) readPlan(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *AnalysisServiceImpl) GetAnalysis(companyID, analysisID string) (*dto.AnalysisResponse, error) {
	analysis, err := s.findAnalysisForCompany(companyID, analysisID)
	if err != nil {
		return nil, err
	}
	resp := toAnalysisResponse(analysis)
	return &resp, nil
}

func (s *AnalysisServiceImpl) ListAnalyses(companyID, projectID string) ([]dto.AnalysisResponse, error) {
	if _, err := s.projectRepo.FindByIDForCompany(projectID, companyID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	analyses, err := s.analysisRepo.FindByProject(projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.AnalysisResponse, 0, len(analyses))
	for i := range analyses {
		result = append(result, toAnalysisResponse(&analyses[i]))
	}
	return result, nil
}

// UpdateRoomTreatments - выбор работ для комнаты перед генерацией сметы
func (s *AnalysisServiceImpl) UpdateRoomTreatments(companyID, analysisID, roomID string, req *dto.UpdateTreatmentsRequest) (*dto.RoomResponse, error) {
	if _, err := s.findAnalysisForCompany(companyID, analysisID); err != nil {
		return nil, err
	}

	room, err := s.analysisRepo.FindRoom(roomID)
	if err != nil || room.AnalysisID != analysisID {
		return nil, apperrors.ErrNotFound(repositories.ErrRoomNotFound)
	}

	wall := room.WallSelection()
	ceiling := room.CeilingSelection()
	if req.WallTreatments != nil {
		wall = toModelSelection(*req.WallTreatments)
	}
	if req.CeilingTreatments != nil {
		ceiling = toModelSelection(*req.CeilingTreatments)
	}

	if err := s.analysisRepo.UpdateRoomTreatments(roomID, wall, ceiling); err != nil {
		return nil, apperrors.InternalError(err)
	}

	room.WallTreatments = models.EncodeSelection(wall)
	room.CeilingTreatments = models.EncodeSelection(ceiling)
	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *AnalysisServiceImpl) findAnalysisForCompany(companyID, analysisID string) (*models.Analysis, error) {
	analysis, err := s.analysisRepo.FindByID(analysisID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if _, err := s.projectRepo.FindByIDForCompany(analysis.ProjectID, companyID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return analysis, nil
}

func toAnalysisResponse(a *models.Analysis) dto.AnalysisResponse {
	rooms := make([]dto.RoomResponse, 0, len(a.Rooms))
	for i := range a.Rooms {
		rooms = append(rooms, toRoomResponse(&a.Rooms[i]))
	}
	return dto.AnalysisResponse{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		FloorPlanID: a.FloorPlanID,
		Status:      string(a.Status),
		Model:       a.Model,
		RoomCount:   a.RoomCount,
		ErrorText:   a.ErrorText,
		CompletedAt: a.CompletedAt,
		Rooms:       rooms,
	}
}

func toRoomResponse(r *models.RoomMeasurement) dto.RoomResponse {
	return dto.RoomResponse{
		ID:                r.ID,
		Seq:               r.Seq,
		Name:              r.Name,
		RoomType:          r.RoomType,
		WallSurfaceM2:     r.WallSurfaceM2,
		CeilingAreaM2:     r.CeilingAreaM2,
		WallTreatments:    toDTOSelection(r.WallSelection()),
		CeilingTreatments: toDTOSelection(r.CeilingSelection()),
	}
}

func toDTOSelection(sel models.TreatmentSelection) dto.TreatmentSelection {
	return dto.TreatmentSelection{
		Prep:          sel.Prep,
		Primer:        sel.Primer,
		PaintOneCoat:  sel.PaintOneCoat,
		PaintTwoCoats: sel.PaintTwoCoats,
	}
}

func toModelSelection(sel dto.TreatmentSelection) models.TreatmentSelection {
	return models.TreatmentSelection{
		Prep:          sel.Prep,
		Primer:        sel.Primer,
		PaintOneCoat:  sel.PaintOneCoat,
		PaintTwoCoats: sel.PaintTwoCoats,
	}
}
