package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintquote_backend/internal/services"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type AnalysisHandler struct {
	*BaseHandler
	analysisService services.AnalysisService
}

func NewAnalysisHandler(base *BaseHandler, analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     base,
		analysisService: analysisService,
	}
}

func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/projects/:projectId/analyses", authMW, h.RunAnalysis)
	rg.GET("/projects/:projectId/analyses", authMW, h.ListAnalyses)

	analyses := rg.Group("/analyses")
	analyses.Use(authMW)
	{
		analyses.GET("/:analysisId", h.GetAnalysis)
		analyses.PATCH("/:analysisId/rooms/:roomId/treatments", h.UpdateRoomTreatments)
	}
}

type runAnalysisRequest struct {
	FloorPlanID string `json:"floor_plan_id" validate:"required"`
}

// RunAnalysis запускает прогон vision-модели по загруженному плану.
// Запрос синхронный: ответ приходит с уже извлеченными комнатами.
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req runAnalysisRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.analysisService.RunAnalysis(c.Request.Context(), companyID, c.Param("projectId"), req.FloorPlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	resp, err := h.analysisService.GetAnalysis(companyID, c.Param("analysisId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	analyses, err := h.analysisService.ListAnalyses(companyID, c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": analyses,
		"total":    len(analyses),
	})
}

// UpdateRoomTreatments фиксирует выбор работ для комнаты
func (h *AnalysisHandler) UpdateRoomTreatments(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req dto.UpdateTreatmentsRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	if req.WallTreatments == nil && req.CeilingTreatments == nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Provide wall_treatments, ceiling_treatments or both"))
		return
	}

	room, err := h.analysisService.UpdateRoomTreatments(companyID, c.Param("analysisId"), c.Param("roomId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
