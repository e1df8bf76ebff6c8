package models

import (
	"gorm.io/datatypes"
)

type StudentProfile struct {
	BaseModel
	UserID         string                      `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	FullName       string                      `gorm:"type:varchar(255)" json:"full_name"`
	RollNumber     string                      `gorm:"type:varchar(50);index" json:"roll_number"`
	Department     string                      `gorm:"type:varchar(100);index" json:"department"`
	Degree         string                      `gorm:"type:varchar(100)" json:"degree"`
	GraduationYear int                         `gorm:"index" json:"graduation_year"`
	CGPA           float64                     `gorm:"default:0" json:"cgpa"`
	ActiveBacklogs int                         `gorm:"default:0" json:"active_backlogs"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	Bio            string                      `gorm:"type:text" json:"bio"`
	Phone          string                      `gorm:"type:varchar(30)" json:"phone"`
	LinkedInURL    string                      `json:"linkedin_url"`
	GithubURL      string                      `json:"github_url"`
	ResumeURL      string                      `json:"resume_url"`
	AvatarURL      string                      `json:"avatar_url"`
	IsPublic       bool                        `gorm:"default:true" json:"is_public"`
}

// Completeness - процент заполненности профиля (0..100)
func (p *StudentProfile) Completeness() int {
	checks := []bool{
		p.FullName != "",
		p.RollNumber != "",
		p.Department != "",
		p.Degree != "",
		p.GraduationYear > 0,
		p.CGPA > 0,
		len(p.Skills) > 0,
		p.Bio != "",
		p.Phone != "",
		p.LinkedInURL != "" || p.GithubURL != "",
		p.ResumeURL != "",
		p.AvatarURL != "",
	}

	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

type RecruiterProfile struct {
	BaseModel
	UserID      string   `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	FullName    string   `gorm:"type:varchar(255)" json:"full_name"`
	Designation string   `gorm:"type:varchar(100)" json:"designation"`
	Phone       string   `gorm:"type:varchar(30)" json:"phone"`
	CompanyID   *string  `gorm:"type:varchar(36);index" json:"company_id"`
	IsVerified  bool     `gorm:"default:false" json:"is_verified"`
	AvatarURL   string   `json:"avatar_url"`
	Company     *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
