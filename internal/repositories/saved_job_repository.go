package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSavedJobNotFound = errors.New("saved job not found")
)

type SavedJobRepository interface {
	// Save идемпотентен: повторное сохранение не ошибка
	Save(db *gorm.DB, userID, jobID string) error
	Delete(db *gorm.DB, userID, jobID string) error
	ListByUser(db *gorm.DB, userID string, p Pagination) ([]models.SavedJob, int64, error)
	JobIDsByUser(db *gorm.DB, userID string) ([]string, error)
	UserIDsByJob(db *gorm.DB, jobID string) ([]string, error)
}

type SavedJobRepositoryImpl struct{}

func NewSavedJobRepository() SavedJobRepository {
	return &SavedJobRepositoryImpl{}
}

func (r *SavedJobRepositoryImpl) Save(db *gorm.DB, userID, jobID string) error {
	var count int64
	if err := db.Model(&models.SavedJob{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.SavedJob{UserID: userID, JobID: jobID}).Error
}

func (r *SavedJobRepositoryImpl) Delete(db *gorm.DB, userID, jobID string) error {
	result := db.Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&models.SavedJob{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedJobNotFound
	}
	return nil
}

func (r *SavedJobRepositoryImpl) ListByUser(db *gorm.DB, userID string, p Pagination) ([]models.SavedJob, int64, error) {
	query := db.Model(&models.SavedJob{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var saved []models.SavedJob
	err := query.Preload("Job.Company").Order("created_at DESC").Scopes(paginate(p)).Find(&saved).Error
	return saved, total, err
}

func (r *SavedJobRepositoryImpl) JobIDsByUser(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.SavedJob{}).Where("user_id = ?", userID).Pluck("job_id", &ids).Error
	return ids, err
}

func (r *SavedJobRepositoryImpl) UserIDsByJob(db *gorm.DB, jobID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.SavedJob{}).Where("job_id = ?", jobID).Pluck("user_id", &ids).Error
	return ids, err
}
