package dto

import "placement_backend/internal/models"

// TalentSearchRequest - GET /talent/search
type TalentSearchRequest struct {
	PageRequest
	Query          string   `form:"q"`
	Skills         []string `form:"skills"`
	Departments    []string `form:"departments"`
	GraduationYear int      `form:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
	MinCGPA        float64  `form:"min_cgpa" validate:"gte=0,lte=10"`
	MaxBacklogs    *int     `form:"max_backlogs" validate:"omitempty,gte=0"`
	JobID          string   `form:"job_id" validate:"omitempty,uuid"`
}

type TalentResult struct {
	UserID         string   `json:"user_id"`
	FullName       string   `json:"full_name"`
	Department     string   `json:"department"`
	Degree         string   `json:"degree"`
	GraduationYear int      `json:"graduation_year"`
	CGPA           float64  `json:"cgpa"`
	ActiveBacklogs int      `json:"active_backlogs"`
	Skills         []string `json:"skills"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	ResumeURL      string   `json:"resume_url,omitempty"`
	Completeness   int      `json:"completeness"`
	Relevance      float64  `json:"relevance"`
	MatchedSkills  []string `json:"matched_skills"`
}

func NewTalentResult(p *models.StudentProfile, relevance float64, matched []string) TalentResult {
	skills := []string(p.Skills)
	if skills == nil {
		skills = []string{}
	}
	return TalentResult{
		UserID:         p.UserID,
		FullName:       p.FullName,
		Department:     p.Department,
		Degree:         p.Degree,
		GraduationYear: p.GraduationYear,
		CGPA:           p.CGPA,
		ActiveBacklogs: p.ActiveBacklogs,
		Skills:         skills,
		AvatarURL:      p.AvatarURL,
		ResumeURL:      p.ResumeURL,
		Completeness:   p.Completeness(),
		Relevance:      relevance,
		MatchedSkills:  matched,
	}
}
