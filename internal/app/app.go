package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"paintquote_backend/internal/auth"
	"paintquote_backend/internal/config"
	"paintquote_backend/internal/email"
	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/handlers"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/metrics"
	"paintquote_backend/internal/middleware"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/payment"
	"paintquote_backend/internal/pdfgen"
	"paintquote_backend/internal/pricing"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/routes"
	"paintquote_backend/internal/services"
	"paintquote_backend/internal/storage"
	"paintquote_backend/internal/validator"
	"paintquote_backend/internal/vision"
	"paintquote_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter, worker := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.RefreshToken{},
		&models.Subscription{},
		&models.Purchase{},
		&models.PaymentTransaction{},
		&models.Project{},
		&models.FloorPlan{},
		&models.Analysis{},
		&models.RoomMeasurement{},
		&models.Quote{},
		&models.QuoteLine{},
	)
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.SubscriptionWorker) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	serviceContainer, repoSet := initializeServices(cfg, gormDB, storageInstance, tokenManager)
	appHandlers := initializeHandlers(serviceContainer)

	worker := workers.NewSubscriptionWorker(
		repoSet.subscriptionRepo,
		repoSet.userRepo,
		serviceContainer.EmailService,
		repoSet.engine,
		cfg.Server.PublicURL+"/plans",
	)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.AuthMiddleware(tokenManager))

	return ginRouter, worker
}

// repositorySet отдает наружу репозитории, которые нужны воркеру
// помимо сервисного слоя
type repositorySet struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	engine           *entitlement.Engine
}

func initializeServices(
	cfg *config.Config,
	gormDB *gorm.DB,
	storageInstance storage.Storage,
	tokenManager *auth.TokenManager,
) (*services.ServiceContainer, repositorySet) {
	emailService := email.NewGomailSender(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}, email.NewTemplateManager())

	catalog := entitlement.DefaultCatalog()
	engine := entitlement.NewEngine(catalog)

	analyzer := vision.NewAnalyzer(cfg.Vision.APIKey, cfg.Vision.Model, cfg.Vision.MaxTokens)
	stripeProvider := payment.NewStripeProvider(
		cfg.Stripe.SecretKey,
		cfg.Stripe.WebhookSecret,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
	)

	userRepo := repositories.NewUserRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB, engine)
	projectRepo := repositories.NewProjectRepository(gormDB)
	analysisRepo := repositories.NewAnalysisRepository(gormDB)
	quoteRepo := repositories.NewQuoteRepository(gormDB)

	rateCard := pricing.RateCard{
		WallPrep:           cfg.Pricing.WallPrepRate,
		WallPrimer:         cfg.Pricing.WallPrimerRate,
		WallPaint:          cfg.Pricing.WallPaintRate,
		CeilingPrep:        cfg.Pricing.CeilingPrepRate,
		CeilingPrimer:      cfg.Pricing.CeilingPrimerRate,
		CeilingPaint:       cfg.Pricing.CeilingPaintRate,
		SecondCoatDiscount: cfg.Pricing.SecondCoatDiscount,
		VATRate:            cfg.Pricing.VATRate,
	}

	authService := services.NewAuthService(userRepo, subscriptionRepo, emailService, tokenManager)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, catalog, engine, stripeProvider)
	projectService := services.NewProjectService(projectRepo, subscriptionRepo)
	uploadService := services.NewUploadService(
		projectRepo, subscriptionRepo, storageInstance,
		cfg.Storage.Type, cfg.Upload.MaxSize, cfg.Upload.AllowedTypes,
	)
	analysisService := services.NewAnalysisService(analysisRepo, projectRepo, storageInstance, analyzer)
	quoteService := services.NewQuoteService(
		quoteRepo, projectRepo, analysisRepo, userRepo,
		pdfgen.NewGenerator(), emailService, rateCard, cfg.Pricing.Currency,
	)

	container := &services.ServiceContainer{
		AuthService:         authService,
		SubscriptionService: subscriptionService,
		ProjectService:      projectService,
		UploadService:       uploadService,
		AnalysisService:     analysisService,
		QuoteService:        quoteService,
		EmailService:        emailService,
	}

	return container, repositorySet{userRepo: userRepo, subscriptionRepo: subscriptionRepo, engine: engine}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, container.AuthService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, container.SubscriptionService),
		ProjectHandler:      handlers.NewProjectHandler(baseHandler, container.ProjectService),
		UploadHandler:       handlers.NewUploadHandler(baseHandler, container.UploadService),
		AnalysisHandler:     handlers.NewAnalysisHandler(baseHandler, container.AnalysisService),
		QuoteHandler:        handlers.NewQuoteHandler(baseHandler, container.QuoteService),
		HealthHandler:       handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	router.Use(metrics.Middleware())
	return router
}
