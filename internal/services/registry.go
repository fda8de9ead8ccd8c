package services

import (
	"paintquote_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	SubscriptionService SubscriptionService
	ProjectService      ProjectService
	UploadService       UploadService
	AnalysisService     AnalysisService
	QuoteService        QuoteService
	EmailService        email.Provider
}
