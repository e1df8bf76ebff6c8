package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"placement_backend/database"
	"placement_backend/internal/auth"
	"placement_backend/internal/cache"
	"placement_backend/internal/config"
	"placement_backend/internal/email"
	"placement_backend/internal/handlers"
	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/logger"
	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/routes"
	"placement_backend/internal/services"
	"placement_backend/internal/storage"
	"placement_backend/internal/validator"
	"placement_backend/internal/workers"
	"placement_backend/ws"
)

const shutdownTimeout = 15 * time.Second

// repositoryContainer - репозитории без состояния, одни на все сервисы
type repositoryContainer struct {
	users         repositories.UserRepository
	refreshTokens repositories.RefreshTokenRepository
	profiles      repositories.ProfileRepository
	companies     repositories.CompanyRepository
	jobs          repositories.JobRepository
	savedJobs     repositories.SavedJobRepository
	applications  repositories.ApplicationRepository
	invitations   repositories.InvitationRepository
	notifications repositories.NotificationRepository
	messages      repositories.MessageRepository
	forum         repositories.ForumRepository
	reviews       repositories.ReviewRepository
	calendar      repositories.CalendarRepository
	reports       repositories.ReportRepository
	feeds         repositories.FeedRepository
	analytics     repositories.AnalyticsRepository
}

func newRepositoryContainer() *repositoryContainer {
	return &repositoryContainer{
		users:         repositories.NewUserRepository(),
		refreshTokens: repositories.NewRefreshTokenRepository(),
		profiles:      repositories.NewProfileRepository(),
		companies:     repositories.NewCompanyRepository(),
		jobs:          repositories.NewJobRepository(),
		savedJobs:     repositories.NewSavedJobRepository(),
		applications:  repositories.NewApplicationRepository(),
		invitations:   repositories.NewInvitationRepository(),
		notifications: repositories.NewNotificationRepository(),
		messages:      repositories.NewMessageRepository(),
		forum:         repositories.NewForumRepository(),
		reviews:       repositories.NewReviewRepository(),
		calendar:      repositories.NewCalendarRepository(),
		reports:       repositories.NewReportRepository(),
		feeds:         repositories.NewFeedRepository(),
		analytics:     repositories.NewAnalyticsRepository(),
	}
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	auth.Configure(cfg.JWT.Secret, cfg.AccessTokenTTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Debug:        !cfg.IsProduction(),
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	repos := newRepositoryContainer()
	if err := seedFirstAdmin(gormDB, repos.users, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	cacheStore := newCacheStore(ctx, cfg)
	defer cacheStore.Close()

	storageInstance, err := storage.NewStorage(ctx, storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	emailService, err := newEmailService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize email", "error", err)
	}

	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(ctx)

	serviceContainer := initializeServices(cfg, repos, cacheStore, storageInstance, emailService, wsManager)

	baseHandler := handlers.NewBaseHandler(validator.New(), cfg.Upload.MaxSize)
	appHandlers := handlers.NewAppHandlers(baseHandler, serviceContainer, storageInstance, cacheStore)
	wsHandler := ws.NewWebSocketHandler(wsManager, cfg.Server.AllowedOrigins)

	ginRouter := initializeGinRouter(gormDB, cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	runner := workers.NewRunner()
	if cfg.Workers.Enabled {
		registerWorkers(runner, cfg, gormDB, repos, serviceContainer)
		runner.Start(ctx)
	} else {
		logger.Info("Background workers disabled")
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	runner.Wait()
	emailService.Wait()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// newCacheStore - redis если задан URL, иначе память процесса.
// Недоступный redis не мешает старту: OTP и кэш статистики уходят в память.
func newCacheStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.Redis.URL == "" {
		logger.Warn("REDIS_URL is not set, using in-memory cache")
		return cache.NewMemoryStore()
	}

	store, err := cache.NewRedisStore(cfg.Redis.URL, "placement:")
	if err != nil {
		logger.Error("Invalid redis configuration, using in-memory cache", "error", err)
		return cache.NewMemoryStore()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Error("Redis unavailable, using in-memory cache", "error", err)
		_ = store.Close()
		return cache.NewMemoryStore()
	}

	logger.Info("Redis connected")
	return store
}

func newEmailService(ctx context.Context, cfg *config.Config) (*services.EmailService, error) {
	provider, err := email.NewProvider(ctx, email.Config{
		Provider:     cfg.Email.Provider,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		UseTLS:       cfg.Email.UseTLS,
		Timeout:      30 * time.Second,
		SESRegion:    cfg.Email.SESRegion,
		SESAccessKey: cfg.Email.SESAccessKey,
		SESSecretKey: cfg.Email.SESSecretKey,
	})
	if err != nil {
		return nil, err
	}
	if provider.Name() == "mock" {
		logger.Warn("Email provider is mock, emails are only logged")
	}

	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return services.NewEmailService(provider, templates, cfg.Server.FrontendURL), nil
}

func initializeServices(
	cfg *config.Config,
	repos *repositoryContainer,
	cacheStore cache.Store,
	storageInstance storage.Storage,
	emailService *services.EmailService,
	pusher services.Pusher,
) *services.ServiceContainer {
	uploadService := services.NewUploadService(storageInstance, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), services.UploadConfig{
		MaxSize:           cfg.Upload.MaxSize,
		ResumeTypes:       cfg.Upload.ResumeTypes,
		ImageTypes:        cfg.Upload.ImageTypes,
		AvatarSize:        cfg.Upload.AvatarSize,
		CompanyLogoHeight: cfg.Upload.CompanyLogoHeight,
	})
	notificationService := services.NewNotificationService(repos.notifications, pusher)

	authService := services.NewAuthService(repos.users, repos.profiles, repos.companies, repos.refreshTokens, cacheStore, emailService, services.AuthConfig{
		RefreshTTL:        cfg.RefreshTokenTTL(),
		OTPLength:         cfg.OTP.Length,
		OTPTTL:            cfg.OTPTTL(),
		OTPMaxAttempts:    cfg.OTP.MaxAttempts,
		OTPResendInterval: cfg.OTPResendInterval(),
	})

	return &services.ServiceContainer{
		AuthService:         authService,
		ProfileService:      services.NewProfileService(repos.users, repos.profiles, repos.companies, uploadService),
		CompanyService:      services.NewCompanyService(repos.companies, repos.profiles, uploadService),
		JobService:          services.NewJobService(repos.jobs, repos.companies, repos.profiles, repos.savedJobs, repos.applications),
		ApplicationService:  services.NewApplicationService(repos.applications, repos.jobs, repos.users, repos.calendar, notificationService, emailService),
		InvitationService:   services.NewInvitationService(repos.invitations, repos.applications, repos.jobs, repos.users, notificationService, emailService),
		NotificationService: notificationService,
		MessageService:      services.NewMessageService(repos.messages, repos.users, notificationService, pusher),
		ForumService:        services.NewForumService(repos.forum, repos.users, notificationService),
		ReviewService:       services.NewReviewService(repos.reviews, repos.companies, notificationService),
		CalendarService:     services.NewCalendarService(repos.calendar, repos.jobs, repos.savedJobs, repos.applications),
		TalentService:       services.NewTalentService(repos.profiles, repos.jobs),
		ModerationService: services.NewModerationService(
			repos.reports, repos.jobs, repos.forum, repos.reviews,
			repos.companies, repos.users, repos.refreshTokens, notificationService,
		),
		UserService:      services.NewUserService(repos.users, repos.profiles, repos.refreshTokens, notificationService, emailService),
		AnalyticsService: services.NewAnalyticsService(repos.analytics, cacheStore),
		FeedService:      services.NewFeedService(repos.feeds, repos.jobs, repos.companies, nil),
		UploadService:    uploadService,
		EmailService:     emailService,
	}
}

func registerWorkers(runner *workers.Runner, cfg *config.Config, db *gorm.DB, repos *repositoryContainer, svc *services.ServiceContainer) {
	minutes := func(m int) time.Duration { return time.Duration(m) * time.Minute }

	runner.Add(workers.NewDeadlineWorker(
		db, repos.jobs, repos.savedJobs, repos.applications, repos.users,
		svc.NotificationService, svc.EmailService,
	), minutes(cfg.Workers.DeadlineInterval))
	runner.Add(workers.NewCleanupWorker(
		db, repos.refreshTokens, repos.notifications, repos.invitations,
		cfg.Workers.NotificationRetentionDays,
	), minutes(cfg.Workers.CleanupInterval))
	runner.Add(workers.NewFeedWorker(db, svc.FeedService), minutes(cfg.Workers.FeedInterval))
}

func initializeGinRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	router.MaxMultipartMemory = cfg.Upload.MaxSize
	return router
}

// seedFirstAdmin создает администратора из FIRST_ADMIN_EMAIL/FIRST_ADMIN_PASSWORD,
// если такого пользователя еще нет
func seedFirstAdmin(db *gorm.DB, userRepo repositories.UserRepository, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.FirstAdminEmail))
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	if _, err := userRepo.FindByEmail(db, adminEmail); err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	if err := auth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("first admin password is too weak: %w", err)
	}
	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Administrator",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
		IsVerified:   true,
	}
	if err := userRepo.Create(db, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
