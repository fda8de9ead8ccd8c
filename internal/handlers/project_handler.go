package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintquote_backend/internal/models"
	"paintquote_backend/internal/services"
	"paintquote_backend/internal/services/dto"
)

type ProjectHandler struct {
	*BaseHandler
	projectService services.ProjectService
}

func NewProjectHandler(base *BaseHandler, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    base,
		projectService: projectService,
	}
}

func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	projects := rg.Group("/projects")
	projects.Use(authMW)
	{
		projects.POST("", h.Create)
		projects.GET("", h.List)
		projects.GET("/:projectId", h.Get)
		projects.PUT("/:projectId", h.Update)
		projects.DELETE("/:projectId", h.Delete)
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(companyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(companyID, c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) List(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	projects, total, err := h.projectService.List(companyID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, toProjectResponse(&projects[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":  items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(companyID, c.Param("projectId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(companyID, c.Param("projectId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func toProjectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		ClientName:  p.ClientName,
		ClientEmail: p.ClientEmail,
		Address:     p.Address,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
