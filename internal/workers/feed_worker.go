package workers

import (
	"context"

	"gorm.io/gorm"

	"placement_backend/internal/logger"
)

// FeedSyncer - часть FeedService, нужная воркеру
type FeedSyncer interface {
	SyncAll(ctx context.Context, db *gorm.DB) (int, error)
}

// FeedWorker периодически импортирует вакансии из внешних RSS/Atom фидов
type FeedWorker struct {
	db     *gorm.DB
	syncer FeedSyncer
}

func NewFeedWorker(db *gorm.DB, syncer FeedSyncer) *FeedWorker {
	return &FeedWorker{db: db, syncer: syncer}
}

func (w *FeedWorker) Name() string { return "feed" }

func (w *FeedWorker) RunOnce(ctx context.Context) error {
	imported, err := w.syncer.SyncAll(ctx, w.db.WithContext(ctx))
	if err != nil {
		return err
	}
	logger.WorkerLog(w.Name(), "sync_all", nil, "imported", imported)
	return nil
}
