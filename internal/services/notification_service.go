package services

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/osteele/liquid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

// NotificationVars - переменные для шаблона уведомления, сохраняются в data
type NotificationVars map[string]interface{}

type notificationText struct {
	Title string
	Body  string
}

// defaultNotificationTemplates используются, если в БД нет активного шаблона
var defaultNotificationTemplates = map[models.NotificationType]notificationText{
	models.NotificationNewApplication: {
		Title: "New application for {{ job_title }}",
		Body:  "{{ student_name }} applied for {{ job_title }}.",
	},
	models.NotificationApplicationStatus: {
		Title: "Application update: {{ job_title }}",
		Body:  "Your application for {{ job_title }} at {{ company_name }} is now {{ status }}.",
	},
	models.NotificationInvitation: {
		Title: "Invitation to apply: {{ job_title }}",
		Body:  "{{ company_name }} invited you to apply for {{ job_title }}.",
	},
	models.NotificationInvitationReply: {
		Title: "Invitation {{ status }}",
		Body:  "{{ student_name }} {{ status }} your invitation for {{ job_title }}.",
	},
	models.NotificationNewMessage: {
		Title: "New message from {{ sender_name }}",
		Body:  "{{ preview }}",
	},
	models.NotificationForumComment: {
		Title: "New comment on {{ post_title }}",
		Body:  "{{ author_name }} commented on your post.",
	},
	models.NotificationDeadlineReminder: {
		Title: "Deadline approaching: {{ job_title }}",
		Body:  "Applications for {{ job_title }} at {{ company_name }} close on {{ deadline }}.",
	},
	models.NotificationAccountStatus: {
		Title: "Account {{ status }}",
		Body:  "Your account status was changed to {{ status }}.",
	},
	models.NotificationReviewModerated: {
		Title: "Review {{ status }}",
		Body:  "Your review of {{ company_name }} was {{ status }}.",
	},
	models.NotificationBroadcast: {
		Title: "{{ title }}",
		Body:  "{{ message }}",
	},
}

type NotificationService interface {
	// Notify создает уведомление по шаблону типа и пушит его в websocket
	Notify(db *gorm.DB, userID string, notificationType models.NotificationType, vars NotificationVars) (*models.Notification, error)
	NotifyMany(db *gorm.DB, userIDs []string, notificationType models.NotificationType, vars NotificationVars) (int, error)

	List(db *gorm.DB, userID string, req *dto.NotificationListRequest) (*dto.Page[models.Notification], error)
	UnreadCount(db *gorm.DB, userID string) (int64, error)
	MarkRead(db *gorm.DB, userID, notificationID string) error
	MarkAllRead(db *gorm.DB, userID string) (int64, error)
	Delete(db *gorm.DB, userID, notificationID string) error

	// Шаблоны (admin)
	ListTemplates(db *gorm.DB) ([]models.NotificationTemplate, error)
	UpdateTemplate(db *gorm.DB, notificationType models.NotificationType, req *dto.UpdateTemplateRequest) (*models.NotificationTemplate, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	pusher           Pusher
	engine           *liquid.Engine
	parsed           sync.Map // source -> *liquid.Template
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, pusher Pusher) NotificationService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		pusher:           pusher,
		engine:           liquid.NewEngine(),
	}
}

func (s *NotificationServiceImpl) Notify(db *gorm.DB, userID string, notificationType models.NotificationType, vars NotificationVars) (*models.Notification, error) {
	n, err := s.build(db, userID, notificationType, vars)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.Create(db, n); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.pusher.SendToUser(userID, PushEnvelope{Type: PushTypeNotification, Data: n})
	return n, nil
}

func (s *NotificationServiceImpl) NotifyMany(db *gorm.DB, userIDs []string, notificationType models.NotificationType, vars NotificationVars) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	// Текст одинаковый для всех получателей
	proto, err := s.build(db, "", notificationType, vars)
	if err != nil {
		return 0, err
	}

	batch := make([]*models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		n := *proto
		n.UserID = id
		batch = append(batch, &n)
	}

	if err := s.notificationRepo.CreateBatch(db, batch); err != nil {
		return 0, apperrors.InternalError(err)
	}

	for _, n := range batch {
		s.pusher.SendToUser(n.UserID, PushEnvelope{Type: PushTypeNotification, Data: n})
	}
	return len(batch), nil
}

func (s *NotificationServiceImpl) build(db *gorm.DB, userID string, notificationType models.NotificationType, vars NotificationVars) (*models.Notification, error) {
	if vars == nil {
		vars = NotificationVars{}
	}

	text := s.resolveTemplate(db, notificationType)
	title, err := s.render(text.Title, vars)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	body, err := s.render(text.Body, vars)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	data, err := json.Marshal(vars)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: body,
		Data:    datatypes.JSON(data),
	}, nil
}

// resolveTemplate: активный шаблон из БД, иначе встроенный
func (s *NotificationServiceImpl) resolveTemplate(db *gorm.DB, notificationType models.NotificationType) notificationText {
	fallback, ok := defaultNotificationTemplates[notificationType]
	if !ok {
		fallback = notificationText{Title: string(notificationType), Body: ""}
	}

	tpl, err := s.notificationRepo.FindTemplate(db, notificationType)
	if err != nil {
		if !apperrors.Is(err, repositories.ErrTemplateNotFound) {
			logger.Warn("Failed to load notification template", "type", notificationType, "error", err)
		}
		return fallback
	}
	if !tpl.IsActive {
		return fallback
	}

	// Сломанный шаблон из админки не должен ломать уведомления
	if _, err := s.parse(tpl.Title); err != nil {
		logger.Warn("Invalid notification template title", "type", notificationType, "error", err)
		return fallback
	}
	if _, err := s.parse(tpl.Body); err != nil {
		logger.Warn("Invalid notification template body", "type", notificationType, "error", err)
		return fallback
	}
	return notificationText{Title: tpl.Title, Body: tpl.Body}
}

func (s *NotificationServiceImpl) parse(source string) (*liquid.Template, error) {
	if cached, ok := s.parsed.Load(source); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := s.engine.ParseString(source)
	if err != nil {
		return nil, err
	}
	s.parsed.Store(source, tpl)
	return tpl, nil
}

func (s *NotificationServiceImpl) render(source string, vars NotificationVars) (string, error) {
	tpl, err := s.parse(source)
	if err != nil {
		return "", err
	}
	out, renderErr := tpl.RenderString(map[string]interface{}(vars))
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}

func (s *NotificationServiceImpl) List(db *gorm.DB, userID string, req *dto.NotificationListRequest) (*dto.Page[models.Notification], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.notificationRepo.List(db, userID, req.UnreadOnly, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *NotificationServiceImpl) UnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) MarkRead(db *gorm.DB, userID, notificationID string) error {
	n, err := s.findOwned(db, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	if err := s.notificationRepo.MarkRead(db, n.ID, timeNow()); err != nil {
		return handleRepoError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllRead(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(db, userID, timeNow())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) Delete(db *gorm.DB, userID, notificationID string) error {
	n, err := s.findOwned(db, userID, notificationID)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(db, n.ID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) findOwned(db *gorm.DB, userID, notificationID string) (*models.Notification, error) {
	n, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if n.UserID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return n, nil
}

// ListTemplates возвращает шаблоны всех типов: сохраненные и встроенные
func (s *NotificationServiceImpl) ListTemplates(db *gorm.DB) ([]models.NotificationTemplate, error) {
	stored, err := s.notificationRepo.ListTemplates(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byType := make(map[models.NotificationType]models.NotificationTemplate, len(stored))
	for _, tpl := range stored {
		byType[tpl.Type] = tpl
	}
	for t, text := range defaultNotificationTemplates {
		if _, ok := byType[t]; !ok {
			byType[t] = models.NotificationTemplate{Type: t, Title: text.Title, Body: text.Body, IsActive: true}
		}
	}

	result := make([]models.NotificationTemplate, 0, len(byType))
	for _, tpl := range byType {
		result = append(result, tpl)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result, nil
}

func (s *NotificationServiceImpl) UpdateTemplate(db *gorm.DB, notificationType models.NotificationType, req *dto.UpdateTemplateRequest) (*models.NotificationTemplate, error) {
	if _, ok := defaultNotificationTemplates[notificationType]; !ok {
		return nil, apperrors.ErrInvalidOperation("notification", "Unknown notification type")
	}
	if _, err := s.engine.ParseString(req.Title); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"title": err.Error()})
	}
	if _, err := s.engine.ParseString(req.Body); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"body": err.Error()})
	}

	tpl := &models.NotificationTemplate{
		Type:     notificationType,
		Title:    req.Title,
		Body:     req.Body,
		IsActive: true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := s.notificationRepo.SaveTemplate(db, tpl); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tpl, nil
}

// notifyQuiet - уведомление как побочный эффект: ошибка только логируется
func notifyQuiet(ns NotificationService, db *gorm.DB, userID string, t models.NotificationType, vars NotificationVars) {
	if ns == nil || userID == "" {
		return
	}
	if _, err := ns.Notify(db, userID, t, vars); err != nil {
		logger.Error("Failed to create notification", "type", t, "user_id", userID, "error", err)
	}
}
