package repositories

import (
	"placement_backend/internal/models"

	"gorm.io/gorm"
)

// PlatformStats - сводка для админки
type PlatformStats struct {
	UsersByRole          map[string]int64 `json:"users_by_role"`
	UsersByStatus        map[string]int64 `json:"users_by_status"`
	JobsByStatus         map[string]int64 `json:"jobs_by_status"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	Hires                int64            `json:"hires"`
	Companies            int64            `json:"companies"`
	OpenReports          int64            `json:"open_reports"`
	PendingReviews       int64            `json:"pending_reviews"`
}

type AnalyticsRepository interface {
	GetPlatformStats(db *gorm.DB) (*PlatformStats, error)
}

type analyticsRepository struct{}

func NewAnalyticsRepository() AnalyticsRepository {
	return &analyticsRepository{}
}

func (r *analyticsRepository) GetPlatformStats(db *gorm.DB) (*PlatformStats, error) {
	stats := &PlatformStats{}
	var err error

	if stats.UsersByRole, err = countBy(db, &models.User{}, "role"); err != nil {
		return nil, err
	}
	if stats.UsersByStatus, err = countBy(db, &models.User{}, "status"); err != nil {
		return nil, err
	}
	if stats.JobsByStatus, err = countBy(db, &models.Job{}, "status"); err != nil {
		return nil, err
	}
	if stats.ApplicationsByStatus, err = countBy(db, &models.Application{}, "status"); err != nil {
		return nil, err
	}
	stats.Hires = stats.ApplicationsByStatus[string(models.ApplicationStatusHired)]

	if err := db.Model(&models.Company{}).Count(&stats.Companies).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Report{}).Where("status = ?", models.ReportStatusOpen).Count(&stats.OpenReports).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusPending).Count(&stats.PendingReviews).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy - SELECT column, COUNT(*) ... GROUP BY column
func countBy(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		GroupKey string
		Count    int64
	}
	err := db.Model(model).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.GroupKey] = row.Count
	}
	return result, nil
}
