package repositories

import (
	"errors"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("calendar event not found")
)

type CalendarRepository interface {
	Create(db *gorm.DB, event *models.CalendarEvent) error
	FindByID(db *gorm.DB, id string) (*models.CalendarEvent, error)
	Update(db *gorm.DB, event *models.CalendarEvent) error
	Delete(db *gorm.DB, id string) error

	// ListVisible - глобальные события и события пользователя в интервале [from, to]
	ListVisible(db *gorm.DB, userID string, from, to time.Time) ([]models.CalendarEvent, error)
}

type CalendarRepositoryImpl struct{}

func NewCalendarRepository() CalendarRepository {
	return &CalendarRepositoryImpl{}
}

func (r *CalendarRepositoryImpl) Create(db *gorm.DB, event *models.CalendarEvent) error {
	return db.Create(event).Error
}

func (r *CalendarRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := db.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *CalendarRepositoryImpl) Update(db *gorm.DB, event *models.CalendarEvent) error {
	return db.Save(event).Error
}

func (r *CalendarRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.CalendarEvent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *CalendarRepositoryImpl) ListVisible(db *gorm.DB, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := db.Where("(owner_id IS NULL OR owner_id = ?)", userID).
		Where("starts_at >= ? AND starts_at <= ?", from, to).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}
