package models

import (
	"time"

	"gorm.io/datatypes"
)

// Eligibility - требования вакансии к студенту. Пустые поля не проверяются.
type Eligibility struct {
	MinCGPA         float64                     `gorm:"default:0" json:"min_cgpa"`
	Branches        datatypes.JSONSlice[string] `json:"branches"`
	GraduationYears datatypes.JSONSlice[int]    `json:"graduation_years"`
	MaxBacklogs     *int                        `json:"max_backlogs"`
}

type Job struct {
	BaseModel
	CompanyID      string                      `gorm:"type:varchar(36);index;not null" json:"company_id"`
	RecruiterID    *string                     `gorm:"type:varchar(36);index" json:"recruiter_id"`
	Title          string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	Location       string                      `gorm:"type:varchar(255);index" json:"location"`
	JobType        JobType                     `gorm:"type:varchar(20);index" json:"job_type"`
	WorkMode       WorkMode                    `gorm:"type:varchar(20)" json:"work_mode"`
	SalaryMin      int64                       `json:"salary_min"`
	SalaryMax      int64                       `json:"salary_max"`
	Currency       string                      `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	Eligibility    Eligibility                 `gorm:"embedded;embeddedPrefix:eligibility_" json:"eligibility"`
	Openings       int                         `gorm:"default:1" json:"openings"`
	Deadline       *time.Time                  `gorm:"index" json:"deadline"`
	Status         JobStatus                   `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Source         JobSource                   `gorm:"type:varchar(20);default:'portal'" json:"source"`
	FeedID         *string                     `gorm:"type:varchar(36);index" json:"feed_id,omitempty"`
	ExternalID     string                      `gorm:"type:varchar(512);index" json:"-"`
	ExternalURL    string                      `json:"external_url,omitempty"`
	Views          int                         `gorm:"default:0" json:"views"`
	IsHidden       bool                        `gorm:"default:false;index" json:"is_hidden"`
	ReminderSentAt *time.Time                  `json:"-"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// IsAcceptingApplications - открыта, не скрыта и дедлайн не прошел
func (j *Job) IsAcceptingApplications(now time.Time) bool {
	if j.Status != JobStatusOpen || j.IsHidden {
		return false
	}
	return j.Deadline == nil || now.Before(*j.Deadline)
}

// SavedJob - закладка студента
type SavedJob struct {
	BaseModel
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_user_job" json:"user_id"`
	JobID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_user_job" json:"job_id"`
	Job    *Job   `gorm:"foreignKey:JobID" json:"job,omitempty"`
}
