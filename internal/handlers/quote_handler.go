package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintquote_backend/internal/services"
	"paintquote_backend/internal/services/dto"
)

type QuoteHandler struct {
	*BaseHandler
	quoteService services.QuoteService
}

func NewQuoteHandler(base *BaseHandler, quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler:  base,
		quoteService: quoteService,
	}
}

func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/projects/:projectId/quotes", authMW, h.GenerateQuote)
	rg.GET("/projects/:projectId/quotes", authMW, h.ListQuotes)

	quotes := rg.Group("/quotes")
	quotes.Use(authMW)
	{
		quotes.GET("/:quoteId", h.GetQuote)
		quotes.GET("/:quoteId/pdf", h.DownloadPDF)
		quotes.POST("/:quoteId/send", h.SendQuote)
	}
}

// GenerateQuote строит смету из последнего завершенного анализа проекта
func (h *QuoteHandler) GenerateQuote(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.GenerateQuote(companyID, c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(companyID, c.Param("quoteId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	quotes, err := h.quoteService.ListQuotes(companyID, c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": quotes,
		"total":  len(quotes),
	})
}

func (h *QuoteHandler) DownloadPDF(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	pdfBytes, fileName, err := h.quoteService.DownloadPDF(companyID, c.Param("quoteId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// SendQuote отправляет смету клиенту письмом с PDF-вложением
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req dto.SendQuoteRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.SendQuote(companyID, c.Param("quoteId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
