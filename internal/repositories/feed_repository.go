package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrFeedNotFound      = errors.New("job feed not found")
	ErrFeedAlreadyExists = errors.New("job feed with this url already exists")
)

type FeedRepository interface {
	Create(db *gorm.DB, feed *models.JobFeed) error
	FindByID(db *gorm.DB, id string) (*models.JobFeed, error)
	List(db *gorm.DB) ([]models.JobFeed, error)
	ListActive(db *gorm.DB) ([]models.JobFeed, error)
	Update(db *gorm.DB, feed *models.JobFeed) error
	Delete(db *gorm.DB, id string) error
}

type FeedRepositoryImpl struct{}

func NewFeedRepository() FeedRepository {
	return &FeedRepositoryImpl{}
}

func (r *FeedRepositoryImpl) Create(db *gorm.DB, feed *models.JobFeed) error {
	var count int64
	if err := db.Model(&models.JobFeed{}).Where("url = ?", feed.URL).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrFeedAlreadyExists
	}
	return db.Create(feed).Error
}

func (r *FeedRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.JobFeed, error) {
	var feed models.JobFeed
	if err := db.First(&feed, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedNotFound
		}
		return nil, err
	}
	return &feed, nil
}

func (r *FeedRepositoryImpl) List(db *gorm.DB) ([]models.JobFeed, error) {
	var feeds []models.JobFeed
	err := db.Order("created_at ASC").Find(&feeds).Error
	return feeds, err
}

func (r *FeedRepositoryImpl) ListActive(db *gorm.DB) ([]models.JobFeed, error) {
	var feeds []models.JobFeed
	err := db.Where("is_active = ?", true).Order("created_at ASC").Find(&feeds).Error
	return feeds, err
}

func (r *FeedRepositoryImpl) Update(db *gorm.DB, feed *models.JobFeed) error {
	return db.Save(feed).Error
}

func (r *FeedRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.JobFeed{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeedNotFound
	}
	return nil
}
