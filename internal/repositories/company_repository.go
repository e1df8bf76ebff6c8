package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company with this name already exists")
)

type CompanyRepository interface {
	Create(db *gorm.DB, company *models.Company) error
	FindByID(db *gorm.DB, id string) (*models.Company, error)
	Update(db *gorm.DB, company *models.Company) error
	List(db *gorm.DB, filter CompanyFilter, p Pagination) ([]models.Company, int64, error)
	SetVerified(db *gorm.DB, id string, verified bool) error
	CountOpenJobs(db *gorm.DB, companyID string) (int64, error)

	// RecalculateRating пересчитывает рейтинг по одобренным отзывам
	RecalculateRating(db *gorm.DB, companyID string) error
}

type CompanyFilter struct {
	Query    string
	Industry string
}

type CompanyRepositoryImpl struct{}

func NewCompanyRepository() CompanyRepository {
	return &CompanyRepositoryImpl{}
}

func (r *CompanyRepositoryImpl) Create(db *gorm.DB, company *models.Company) error {
	var count int64
	if err := db.Model(&models.Company{}).Where("LOWER(name) = LOWER(?)", company.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCompanyAlreadyExists
	}
	return db.Create(company).Error
}

func (r *CompanyRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Company, error) {
	var company models.Company
	if err := db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepositoryImpl) Update(db *gorm.DB, company *models.Company) error {
	return db.Save(company).Error
}

func (r *CompanyRepositoryImpl) List(db *gorm.DB, filter CompanyFilter, p Pagination) ([]models.Company, int64, error) {
	query := db.Model(&models.Company{})
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.Industry != "" {
		query = query.Where("LOWER(industry) = LOWER(?)", filter.Industry)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	err := query.Order("name ASC").Scopes(paginate(p)).Find(&companies).Error
	return companies, total, err
}

func (r *CompanyRepositoryImpl) SetVerified(db *gorm.DB, id string, verified bool) error {
	result := db.Model(&models.Company{}).Where("id = ?", id).Update("is_verified", verified)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepositoryImpl) CountOpenJobs(db *gorm.DB, companyID string) (int64, error) {
	var count int64
	err := db.Model(&models.Job{}).
		Where("company_id = ? AND status = ? AND is_hidden = ?", companyID, models.JobStatusOpen, false).
		Count(&count).Error
	return count, err
}

func (r *CompanyRepositoryImpl) RecalculateRating(db *gorm.DB, companyID string) error {
	var summary struct {
		Avg   float64
		Count int
	}
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("company_id = ? AND status = ?", companyID, models.ReviewStatusApproved).
		Scan(&summary).Error
	if err != nil {
		return err
	}

	return db.Model(&models.Company{}).Where("id = ?", companyID).Updates(map[string]interface{}{
		"rating":       summary.Avg,
		"review_count": summary.Count,
	}).Error
}
