package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintquote_backend/internal/models"
	"paintquote_backend/internal/services"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/projects/:projectId/floor-plans", authMW, h.UploadFloorPlan)

	plans := rg.Group("/floor-plans")
	plans.Use(authMW)
	{
		plans.GET("/:planId/download", h.DownloadFloorPlan)
		plans.DELETE("/:planId", h.DeleteFloorPlan)
	}
}

// UploadFloorPlan принимает multipart-форму с полем "file"
func (h *UploadHandler) UploadFloorPlan(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing file in form field 'file'"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	plan, err := h.uploadService.UploadFloorPlan(
		c.Request.Context(),
		companyID,
		c.Param("projectId"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFloorPlanResponse(plan))
}

// DownloadFloorPlan отдает оригинальный файл плана
func (h *UploadHandler) DownloadFloorPlan(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	plan, reader, err := h.uploadService.GetFloorPlan(c.Request.Context(), companyID, c.Param("planId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+plan.OriginalName+`"`)
	c.DataFromReader(http.StatusOK, plan.Size, plan.MimeType, reader, nil)
}

func (h *UploadHandler) DeleteFloorPlan(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	if err := h.uploadService.DeleteFloorPlan(c.Request.Context(), companyID, c.Param("planId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Floor plan deleted"})
}

func toFloorPlanResponse(p *models.FloorPlan) dto.FloorPlanResponse {
	return dto.FloorPlanResponse{
		ID:           p.ID,
		ProjectID:    p.ProjectID,
		OriginalName: p.OriginalName,
		URL:          p.URL,
		MimeType:     p.MimeType,
		Size:         p.Size,
		CreatedAt:    p.CreatedAt,
	}
}
