package repositories

import (
	"errors"
	"strconv"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

const (
	SortRecent    = "recent"
	SortDeadline  = "deadline"
	SortSalary    = "salary"
	SortRelevance = "relevance"
)

type JobRepository interface {
	Create(db *gorm.DB, job *models.Job) error
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	Update(db *gorm.DB, job *models.Job) error
	Delete(db *gorm.DB, id string) error
	IncrementViews(db *gorm.DB, id string) error
	SetHidden(db *gorm.DB, id string, hidden bool) error

	Search(db *gorm.DB, filter JobFilter, p Pagination) ([]models.Job, int64, error)
	FindByRecruiter(db *gorm.DB, recruiterID string, p Pagination) ([]models.Job, int64, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.Job, error)

	// Воркеры
	CloseExpired(db *gorm.DB, now time.Time) (int64, error)
	FindDueForReminder(db *gorm.DB, now time.Time, within time.Duration) ([]models.Job, error)
	MarkReminderSent(db *gorm.DB, id string, at time.Time) error

	// Фиды
	ExistsByExternalID(db *gorm.DB, feedID, externalID string) (bool, error)
}

// StudentEligibility - данные студента для фильтра eligible_only
type StudentEligibility struct {
	CGPA           float64
	Department     string
	GraduationYear int
	Backlogs       int
}

type JobFilter struct {
	Query         string
	Location      string
	JobType       models.JobType
	WorkMode      models.WorkMode
	CompanyID     string
	Skills        []string
	MinSalary     int64
	Statuses      []models.JobStatus
	IncludeHidden bool
	Eligible      *StudentEligibility
	Sort          string
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

func (r *JobRepositoryImpl) Create(db *gorm.DB, job *models.Job) error {
	return db.Omit("Company").Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	if err := db.Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) Update(db *gorm.DB, job *models.Job) error {
	return db.Omit("Company").Save(job).Error
}

func (r *JobRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.SavedJob{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Job{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
}

func (r *JobRepositoryImpl) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.Job{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *JobRepositoryImpl) SetHidden(db *gorm.DB, id string, hidden bool) error {
	result := db.Model(&models.Job{}).Where("id = ?", id).Update("is_hidden", hidden)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) Search(db *gorm.DB, filter JobFilter, p Pagination) ([]models.Job, int64, error) {
	query := r.applyFilter(db.Model(&models.Job{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	err := query.Preload("Company").
		Order(orderClause(filter.Sort)).
		Scopes(paginate(p)).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *JobRepositoryImpl) applyFilter(query *gorm.DB, f JobFilter) *gorm.DB {
	if f.Query != "" {
		pattern := likePattern(f.Query)
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", likePattern(f.Location))
	}
	if f.JobType != "" {
		query = query.Where("job_type = ?", f.JobType)
	}
	if f.WorkMode != "" {
		query = query.Where("work_mode = ?", f.WorkMode)
	}
	if f.CompanyID != "" {
		query = query.Where("company_id = ?", f.CompanyID)
	}
	for _, skill := range f.Skills {
		if skill == "" {
			continue
		}
		cond, arg := jsonContains(query, "skills", skill)
		query = query.Where(cond, arg)
	}
	if f.MinSalary > 0 {
		query = query.Where("salary_max >= ?", f.MinSalary)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if !f.IncludeHidden {
		query = query.Where("is_hidden = ?", false)
	}
	if e := f.Eligible; e != nil {
		query = query.Where("eligibility_min_cgpa <= ?", e.CGPA).
			Where("(eligibility_max_backlogs IS NULL OR eligibility_max_backlogs >= ?)", e.Backlogs)

		cond, arg := jsonContains(query, "eligibility_branches", e.Department)
		query = query.Where("("+jsonEmpty(query, "eligibility_branches")+" OR "+cond+")", arg)

		yearCond := jsonText(query, "eligibility_graduation_years") + " LIKE ?"
		year := strconv.Itoa(e.GraduationYear)
		query = query.Where("("+jsonEmpty(query, "eligibility_graduation_years")+" OR "+yearCond+")", "%"+year+"%")
	}
	return query
}

func orderClause(sort string) string {
	switch sort {
	case SortDeadline:
		return "CASE WHEN deadline IS NULL THEN 1 ELSE 0 END, deadline ASC"
	case SortSalary:
		return "salary_max DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (r *JobRepositoryImpl) FindByRecruiter(db *gorm.DB, recruiterID string, p Pagination) ([]models.Job, int64, error) {
	query := db.Model(&models.Job{}).Where("recruiter_id = ?", recruiterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	err := query.Preload("Company").Order("created_at DESC").Scopes(paginate(p)).Find(&jobs).Error
	return jobs, total, err
}

func (r *JobRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.Job, error) {
	var jobs []models.Job
	if len(ids) == 0 {
		return jobs, nil
	}
	err := db.Preload("Company").Where("id IN ?", ids).Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) CloseExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Job{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", models.JobStatusOpen, now).
		Update("status", models.JobStatusClosed)
	return result.RowsAffected, result.Error
}

// FindDueForReminder - открытые вакансии с дедлайном в (now, now+within], напоминание еще не отправлено
func (r *JobRepositoryImpl) FindDueForReminder(db *gorm.DB, now time.Time, within time.Duration) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Preload("Company").
		Where("status = ? AND is_hidden = ? AND reminder_sent_at IS NULL", models.JobStatusOpen, false).
		Where("deadline > ? AND deadline <= ?", now, now.Add(within)).
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) MarkReminderSent(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Job{}).Where("id = ?", id).UpdateColumn("reminder_sent_at", at).Error
}

func (r *JobRepositoryImpl) ExistsByExternalID(db *gorm.DB, feedID, externalID string) (bool, error) {
	var count int64
	err := db.Model(&models.Job{}).
		Where("feed_id = ? AND external_id = ?", feedID, externalID).
		Count(&count).Error
	return count > 0, err
}
