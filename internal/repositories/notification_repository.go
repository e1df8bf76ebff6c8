package repositories

import (
	"errors"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTemplateNotFound     = errors.New("notification template not found")
)

type NotificationRepository interface {
	Create(db *gorm.DB, n *models.Notification) error
	CreateBatch(db *gorm.DB, ns []*models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	List(db *gorm.DB, userID string, unreadOnly bool, p Pagination) ([]models.Notification, int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	MarkRead(db *gorm.DB, id string, at time.Time) error
	MarkAllRead(db *gorm.DB, userID string, at time.Time) (int64, error)
	Delete(db *gorm.DB, id string) error
	DeleteReadBefore(db *gorm.DB, before time.Time) (int64, error)

	// Шаблоны
	FindTemplate(db *gorm.DB, t models.NotificationType) (*models.NotificationTemplate, error)
	ListTemplates(db *gorm.DB) ([]models.NotificationTemplate, error)
	SaveTemplate(db *gorm.DB, tpl *models.NotificationTemplate) error
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, n *models.Notification) error {
	return db.Create(n).Error
}

func (r *NotificationRepositoryImpl) CreateBatch(db *gorm.DB, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return db.CreateInBatches(ns, 200).Error
}

func (r *NotificationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var n models.Notification
	if err := db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepositoryImpl) List(db *gorm.DB, userID string, unreadOnly bool, p Pagination) ([]models.Notification, int64, error) {
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Notification
	err := query.Order("created_at DESC").Scopes(paginate(p)).Find(&items).Error
	return items, total, err
}

func (r *NotificationRepositoryImpl) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) MarkRead(db *gorm.DB, id string, at time.Time) error {
	result := db.Model(&models.Notification{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(db *gorm.DB, userID string, at time.Time) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) DeleteReadBefore(db *gorm.DB, before time.Time) (int64, error) {
	result := db.Where("is_read = ? AND created_at < ?", true, before).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) FindTemplate(db *gorm.DB, t models.NotificationType) (*models.NotificationTemplate, error) {
	var tpl models.NotificationTemplate
	if err := db.First(&tpl, "type = ?", t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *NotificationRepositoryImpl) ListTemplates(db *gorm.DB) ([]models.NotificationTemplate, error) {
	var tpls []models.NotificationTemplate
	err := db.Order("type ASC").Find(&tpls).Error
	return tpls, err
}

// SaveTemplate - upsert по type
func (r *NotificationRepositoryImpl) SaveTemplate(db *gorm.DB, tpl *models.NotificationTemplate) error {
	existing, err := r.FindTemplate(db, tpl.Type)
	if err != nil && !errors.Is(err, ErrTemplateNotFound) {
		return err
	}
	if existing != nil {
		tpl.ID = existing.ID
		tpl.CreatedAt = existing.CreatedAt
		return db.Save(tpl).Error
	}
	return db.Create(tpl).Error
}
