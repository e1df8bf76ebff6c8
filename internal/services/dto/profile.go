package dto

import "placement_backend/internal/models"

// UpdateStudentProfileRequest - частичное обновление, nil поля не меняются
type UpdateStudentProfileRequest struct {
	FullName       *string   `json:"full_name" validate:"omitempty,max=255"`
	RollNumber     *string   `json:"roll_number" validate:"omitempty,max=50"`
	Department     *string   `json:"department" validate:"omitempty,max=100"`
	Degree         *string   `json:"degree" validate:"omitempty,max=100"`
	GraduationYear *int      `json:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
	CGPA           *float64  `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	ActiveBacklogs *int      `json:"active_backlogs" validate:"omitempty,gte=0"`
	Skills         *[]string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
	Bio            *string   `json:"bio" validate:"omitempty,max=2000"`
	Phone          *string   `json:"phone" validate:"omitempty,max=30"`
	LinkedInURL    *string   `json:"linkedin_url" validate:"omitempty,url"`
	GithubURL      *string   `json:"github_url" validate:"omitempty,url"`
	IsPublic       *bool     `json:"is_public"`
}

type UpdateRecruiterProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=255"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	CompanyID   *string `json:"company_id" validate:"omitempty,uuid"`
}

// UpdateProfileRequest - общий запрос PUT /profile, применяется часть по роли
type UpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	UpdateStudentProfileRequest
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	CompanyID   *string `json:"company_id" validate:"omitempty,uuid"`
}

type StudentProfileResponse struct {
	*models.StudentProfile
	Completeness int `json:"completeness"`
}

type ProfileResponse struct {
	UserID    string                   `json:"user_id"`
	Email     string                   `json:"email,omitempty"`
	Name      string                   `json:"name"`
	Role      models.UserRole          `json:"role"`
	Student   *StudentProfileResponse  `json:"student_profile,omitempty"`
	Recruiter *models.RecruiterProfile `json:"recruiter_profile,omitempty"`
}
