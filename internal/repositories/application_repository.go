package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindByJobAndStudent(db *gorm.DB, jobID, studentID string) (*models.Application, error)
	Update(db *gorm.DB, app *models.Application) error

	ListByStudent(db *gorm.DB, studentID string, status models.ApplicationStatus, p Pagination) ([]models.Application, int64, error)
	ListByJob(db *gorm.DB, jobID string, status models.ApplicationStatus, p Pagination) ([]models.Application, int64, error)

	CountByJobs(db *gorm.DB, jobIDs []string) (map[string]int64, error)
	CountByJob(db *gorm.DB, jobID string) (int64, error)
	JobIDsByStudent(db *gorm.DB, studentID string) ([]string, error)
	StudentIDsByJob(db *gorm.DB, jobID string) ([]string, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.Application) error {
	var count int64
	if err := db.Model(&models.Application{}).
		Where("job_id = ? AND student_id = ?", app.JobID, app.StudentID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrApplicationExists
	}
	// уникальный индекс (job_id, student_id) ловит параллельный отклик
	if err := db.Omit("Job", "Student").Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrApplicationExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	err := db.Preload("Job.Company").Preload("Student").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByJobAndStudent(db *gorm.DB, jobID, studentID string) (*models.Application, error) {
	var app models.Application
	err := db.Where("job_id = ? AND student_id = ?", jobID, studentID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) Update(db *gorm.DB, app *models.Application) error {
	return db.Omit("Job", "Student").Save(app).Error
}

func (r *ApplicationRepositoryImpl) ListByStudent(db *gorm.DB, studentID string, status models.ApplicationStatus, p Pagination) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{}).Where("student_id = ?", studentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := query.Preload("Job.Company").Order("created_at DESC").Scopes(paginate(p)).Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepositoryImpl) ListByJob(db *gorm.DB, jobID string, status models.ApplicationStatus, p Pagination) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{}).Where("job_id = ?", jobID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := query.Preload("Student").Order("created_at ASC").Scopes(paginate(p)).Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepositoryImpl) CountByJobs(db *gorm.DB, jobIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		JobID string
		Count int64
	}
	err := db.Model(&models.Application{}).
		Select("job_id, COUNT(*) AS count").
		Where("job_id IN ? AND status <> ?", jobIDs, models.ApplicationStatusWithdrawn).
		Group("job_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.JobID] = row.Count
	}
	return counts, nil
}

func (r *ApplicationRepositoryImpl) CountByJob(db *gorm.DB, jobID string) (int64, error) {
	var count int64
	err := db.Model(&models.Application{}).Where("job_id = ?", jobID).Count(&count).Error
	return count, err
}

func (r *ApplicationRepositoryImpl) JobIDsByStudent(db *gorm.DB, studentID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Application{}).
		Where("student_id = ? AND status <> ?", studentID, models.ApplicationStatusWithdrawn).
		Pluck("job_id", &ids).Error
	return ids, err
}

func (r *ApplicationRepositoryImpl) StudentIDsByJob(db *gorm.DB, jobID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Application{}).Where("job_id = ?", jobID).Pluck("student_id", &ids).Error
	return ids, err
}
