package dto

import (
	"time"

	"placement_backend/internal/models"
)

type EligibilityRequest struct {
	MinCGPA         float64  `json:"min_cgpa" validate:"gte=0,lte=10"`
	Branches        []string `json:"branches" validate:"omitempty,dive,max=100"`
	GraduationYears []int    `json:"graduation_years" validate:"omitempty,dive,gte=1950,lte=2100"`
	MaxBacklogs     *int     `json:"max_backlogs" validate:"omitempty,gte=0"`
}

func (e EligibilityRequest) ToModel() models.Eligibility {
	return models.Eligibility{
		MinCGPA:         e.MinCGPA,
		Branches:        e.Branches,
		GraduationYears: e.GraduationYears,
		MaxBacklogs:     e.MaxBacklogs,
	}
}

type CreateJobRequest struct {
	CompanyID   string             `json:"company_id" validate:"omitempty,uuid"`
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"required"`
	Location    string             `json:"location" validate:"omitempty,max=255"`
	JobType     models.JobType     `json:"job_type" validate:"required,is-job-type"`
	WorkMode    models.WorkMode    `json:"work_mode" validate:"omitempty,is-work-mode"`
	SalaryMin   int64              `json:"salary_min" validate:"gte=0"`
	SalaryMax   int64              `json:"salary_max" validate:"gte=0"`
	Currency    string             `json:"currency" validate:"omitempty,len=3"`
	Skills      []string           `json:"skills" validate:"omitempty,max=30,dive,max=50"`
	Eligibility EligibilityRequest `json:"eligibility"`
	Openings    int                `json:"openings" validate:"omitempty,gte=1"`
	Deadline    *time.Time         `json:"deadline"`
	Status      models.JobStatus   `json:"status" validate:"omitempty,oneof=draft open"`
}

type UpdateJobRequest struct {
	Title       *string             `json:"title" validate:"omitempty,max=255"`
	Description *string             `json:"description"`
	Location    *string             `json:"location" validate:"omitempty,max=255"`
	JobType     *models.JobType     `json:"job_type" validate:"omitempty,is-job-type"`
	WorkMode    *models.WorkMode    `json:"work_mode" validate:"omitempty,is-work-mode"`
	SalaryMin   *int64              `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *int64              `json:"salary_max" validate:"omitempty,gte=0"`
	Currency    *string             `json:"currency" validate:"omitempty,len=3"`
	Skills      *[]string           `json:"skills" validate:"omitempty,max=30,dive,max=50"`
	Eligibility *EligibilityRequest `json:"eligibility"`
	Openings    *int                `json:"openings" validate:"omitempty,gte=1"`
	Deadline    *time.Time          `json:"deadline"`
	Status      *models.JobStatus   `json:"status" validate:"omitempty,is-job-status"`
}

// JobSearchRequest - фильтры GET /jobs и /jobs/search
type JobSearchRequest struct {
	PageRequest
	Query        string   `form:"q"`
	Location     string   `form:"location"`
	JobType      string   `form:"job_type" validate:"omitempty,is-job-type"`
	WorkMode     string   `form:"work_mode" validate:"omitempty,is-work-mode"`
	CompanyID    string   `form:"company_id"`
	Skills       []string `form:"skills"`
	MinSalary    int64    `form:"min_salary" validate:"gte=0"`
	Status       string   `form:"status" validate:"omitempty,is-job-status"`
	EligibleOnly bool     `form:"eligible_only"`
	Sort         string   `form:"sort" validate:"omitempty,oneof=recent deadline salary relevance"`
}

type JobResponse struct {
	*models.Job
	Relevance     *float64 `json:"relevance,omitempty"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Applicants    *int64   `json:"applicants,omitempty"`
	IsSaved       *bool    `json:"is_saved,omitempty"`
}
