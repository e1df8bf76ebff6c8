package handlers

import (
	"placement_backend/internal/cache"
	"placement_backend/internal/services"
	"placement_backend/internal/storage"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	HealthHandler       *HealthHandler
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	CompanyHandler      *CompanyHandler
	JobHandler          *JobHandler
	ApplicationHandler  *ApplicationHandler
	NotificationHandler *NotificationHandler
	MessageHandler      *MessageHandler
	ForumHandler        *ForumHandler
	ReviewHandler       *ReviewHandler
	CalendarHandler     *CalendarHandler
	TalentHandler       *TalentHandler
	ModerationHandler   *ModerationHandler
	AdminHandler        *AdminHandler
	FileHandler         *FileHandler
}

// NewAppHandlers собирает хэндлеры поверх контейнера сервисов
func NewAppHandlers(base *BaseHandler, svc *services.ServiceContainer, store storage.Storage, cacheStore cache.Store) *AppHandlers {
	return &AppHandlers{
		HealthHandler:       NewHealthHandler(base, cacheStore),
		AuthHandler:         NewAuthHandler(base, svc.AuthService),
		ProfileHandler:      NewProfileHandler(base, svc.ProfileService),
		CompanyHandler:      NewCompanyHandler(base, svc.CompanyService),
		JobHandler:          NewJobHandler(base, svc.JobService),
		ApplicationHandler:  NewApplicationHandler(base, svc.ApplicationService, svc.InvitationService),
		NotificationHandler: NewNotificationHandler(base, svc.NotificationService),
		MessageHandler:      NewMessageHandler(base, svc.MessageService),
		ForumHandler:        NewForumHandler(base, svc.ForumService),
		ReviewHandler:       NewReviewHandler(base, svc.ReviewService),
		CalendarHandler:     NewCalendarHandler(base, svc.CalendarService),
		TalentHandler:       NewTalentHandler(base, svc.TalentService),
		ModerationHandler:   NewModerationHandler(base, svc.ModerationService, svc.AnalyticsService),
		AdminHandler:        NewAdminHandler(base, svc.UserService, svc.AnalyticsService, svc.FeedService),
		FileHandler:         NewFileHandler(base, store),
	}
}
