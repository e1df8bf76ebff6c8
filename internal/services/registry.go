package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	CompanyService      CompanyService
	JobService          JobService
	ApplicationService  ApplicationService
	InvitationService   InvitationService
	NotificationService NotificationService
	MessageService      MessageService
	ForumService        ForumService
	ReviewService       ReviewService
	CalendarService     CalendarService
	TalentService       TalentService
	ModerationService   ModerationService
	UserService         UserService
	AnalyticsService    AnalyticsService
	FeedService         FeedService
	UploadService       UploadService
	EmailService        *EmailService
}
