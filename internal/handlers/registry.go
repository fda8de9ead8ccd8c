package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	SubscriptionHandler *SubscriptionHandler
	ProjectHandler      *ProjectHandler
	UploadHandler       *UploadHandler
	AnalysisHandler     *AnalysisHandler
	QuoteHandler        *QuoteHandler
	HealthHandler       *HealthHandler
}
