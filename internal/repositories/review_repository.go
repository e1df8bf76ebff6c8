package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this company")
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	Update(db *gorm.DB, review *models.Review) error
	Delete(db *gorm.DB, id string) error
	ListByCompany(db *gorm.DB, companyID string, status models.ReviewStatus, p Pagination) ([]models.Review, int64, error)
	ListByStatus(db *gorm.DB, status models.ReviewStatus, p Pagination) ([]models.Review, int64, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	var count int64
	if err := db.Model(&models.Review{}).
		Where("company_id = ? AND author_id = ?", review.CompanyID, review.AuthorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrReviewAlreadyExists
	}
	if err := db.Omit("Company").Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	if err := db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) Update(db *gorm.DB, review *models.Review) error {
	return db.Omit("Company").Save(review).Error
}

func (r *ReviewRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) ListByCompany(db *gorm.DB, companyID string, status models.ReviewStatus, p Pagination) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).Where("company_id = ?", companyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(query, p)
}

func (r *ReviewRepositoryImpl) ListByStatus(db *gorm.DB, status models.ReviewStatus, p Pagination) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).Preload("Company")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(query, p)
}

func (r *ReviewRepositoryImpl) list(query *gorm.DB, p Pagination) ([]models.Review, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []models.Review
	err := query.Order("created_at DESC").Scopes(paginate(p)).Find(&reviews).Error
	return reviews, total, err
}
