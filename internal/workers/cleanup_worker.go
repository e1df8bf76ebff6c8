package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/repositories"
)

// CleanupWorker удаляет истекшие refresh токены, старые прочитанные
// уведомления и переводит просроченные приглашения в expired.
type CleanupWorker struct {
	db               *gorm.DB
	refreshTokenRepo repositories.RefreshTokenRepository
	notificationRepo repositories.NotificationRepository
	invitationRepo   repositories.InvitationRepository
	retention        time.Duration
	now              func() time.Time
}

func NewCleanupWorker(
	db *gorm.DB,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notificationRepo repositories.NotificationRepository,
	invitationRepo repositories.InvitationRepository,
	retentionDays int,
) *CleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &CleanupWorker{
		db:               db,
		refreshTokenRepo: refreshTokenRepo,
		notificationRepo: notificationRepo,
		invitationRepo:   invitationRepo,
		retention:        time.Duration(retentionDays) * 24 * time.Hour,
		now:              time.Now,
	}
}

func (w *CleanupWorker) Name() string { return "cleanup" }

// RunOnce выполняет все шаги, даже если какой-то упал. Возвращается первая ошибка.
func (w *CleanupWorker) RunOnce(ctx context.Context) error {
	db := w.db.WithContext(ctx)
	now := w.now().UTC()

	steps := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"refresh_tokens", func() (int64, error) { return w.refreshTokenRepo.DeleteExpired(db, now) }},
		{"notifications", func() (int64, error) { return w.notificationRepo.DeleteReadBefore(db, now.Add(-w.retention)) }},
		{"invitations", func() (int64, error) { return w.invitationRepo.ExpirePending(db, now) }},
	}

	var firstErr error
	for _, step := range steps {
		affected, err := step.fn()
		if err != nil {
			logger.WorkerLog(w.Name(), step.name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if affected > 0 {
			logger.WorkerLog(w.Name(), step.name, nil, "affected", affected)
		}
	}
	return firstErr
}
