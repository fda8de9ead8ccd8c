package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"paintquote_backend/internal/middleware"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/services"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/plans", h.GetPlans)

	sub := rg.Group("/subscription")
	sub.Use(authMW)
	{
		sub.GET("", h.GetSubscription)
		sub.POST("/checkout", h.CreateCheckout)
		sub.POST("/cancel", h.CancelAtPeriodEnd)
		sub.GET("/payments", h.ListPayments)
	}

	admin := rg.Group("/admin")
	admin.Use(authMW, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/stats", h.GetPlatformStats)
	}

	// Колбэк Stripe аутентифицируется подписью, не токеном
	rg.POST("/webhooks/stripe", h.StripeWebhook)
}

func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	plans := h.subscriptionService.ListPlans()
	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"total": len(plans),
	})
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetSubscription(companyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.CreateCheckout(c.Request.Context(), companyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// StripeWebhook принимает колбэки Stripe. Тело нужно сырым:
// подпись считается по байтам, а не по распарсенному JSON.
func (h *SubscriptionHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Cannot read webhook body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.subscriptionService.HandleWebhook(payload, signature); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *SubscriptionHandler) CancelAtPeriodEnd(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.CancelAtPeriodEnd(companyID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription will not renew after the current period"})
}

func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	_, companyID, ok := h.GetAuthContext(c)
	if !ok {
		return
	}

	payments, err := h.subscriptionService.ListPayments(companyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    len(payments),
	})
}

// GetPlatformStats отдает сводку подписок по всей платформе
func (h *SubscriptionHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.subscriptionService.GetPlatformStats()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
