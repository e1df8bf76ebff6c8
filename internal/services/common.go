package services

import (
	"errors"
	"time"

	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

const (
	PushTypeNotification = "notification"
	PushTypeMessage      = "message"
)

// Pusher - доставка событий подключенным клиентам (websocket хаб)
type Pusher interface {
	SendToUser(userID string, payload interface{})
}

// PushEnvelope - формат сообщений, уходящих в websocket
type PushEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type noopPusher struct{}

func (noopPusher) SendToUser(string, interface{}) {}

// timeNow подменяется в тестах
var timeNow = func() time.Time { return time.Now().UTC() }

var notFoundErrors = []error{
	repositories.ErrUserNotFound,
	repositories.ErrProfileNotFound,
	repositories.ErrCompanyNotFound,
	repositories.ErrJobNotFound,
	repositories.ErrSavedJobNotFound,
	repositories.ErrApplicationNotFound,
	repositories.ErrInvitationNotFound,
	repositories.ErrNotificationNotFound,
	repositories.ErrTemplateNotFound,
	repositories.ErrConversationNotFound,
	repositories.ErrPostNotFound,
	repositories.ErrCommentNotFound,
	repositories.ErrReviewNotFound,
	repositories.ErrEventNotFound,
	repositories.ErrReportNotFound,
	repositories.ErrFeedNotFound,
}

// handleRepoError переводит ошибки репозиториев в AppError
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return apperrors.ErrNotFound(err)
		}
	}
	return apperrors.InternalError(err)
}

func pagination(req dto.PageRequest) repositories.Pagination {
	return repositories.NewPagination(req.Page, req.PageSize)
}

func toPage[T any](items []T, total int64, p repositories.Pagination) *dto.Page[T] {
	return dto.NewPage(items, total, p.Page, p.PageSize)
}
