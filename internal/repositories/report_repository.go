package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExists   = errors.New("open report already exists")
)

type ReportRepository interface {
	// Create проверяет, что у репортера нет открытой жалобы на ту же цель
	Create(db *gorm.DB, report *models.Report) error
	FindByID(db *gorm.DB, id string) (*models.Report, error)
	Update(db *gorm.DB, report *models.Report) error
	List(db *gorm.DB, status models.ReportStatus, p Pagination) ([]models.Report, int64, error)
}

type ReportRepositoryImpl struct{}

func NewReportRepository() ReportRepository {
	return &ReportRepositoryImpl{}
}

func (r *ReportRepositoryImpl) Create(db *gorm.DB, report *models.Report) error {
	var count int64
	err := db.Model(&models.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			report.ReporterID, report.TargetType, report.TargetID, models.ReportStatusOpen).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrReportExists
	}
	return db.Create(report).Error
}

func (r *ReportRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Report, error) {
	var report models.Report
	if err := db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) Update(db *gorm.DB, report *models.Report) error {
	return db.Save(report).Error
}

func (r *ReportRepositoryImpl) List(db *gorm.DB, status models.ReportStatus, p Pagination) ([]models.Report, int64, error) {
	query := db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := query.Order("created_at ASC").Scopes(paginate(p)).Find(&reports).Error
	return reports, total, err
}
