package models

import "time"

type Application struct {
	BaseModel
	JobID           string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_student" json:"job_id"`
	StudentID       string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_student;index" json:"student_id"`
	Status          ApplicationStatus `gorm:"type:varchar(20);default:'applied';index" json:"status"`
	CoverLetter     string            `gorm:"type:text" json:"cover_letter"`
	ResumeURL       string            `json:"resume_url"`
	Note            string            `gorm:"type:text" json:"note,omitempty"`
	InterviewAt     *time.Time        `json:"interview_at,omitempty"`
	InvitationID    *string           `gorm:"type:varchar(36)" json:"invitation_id,omitempty"`
	StatusChangedAt time.Time         `json:"status_changed_at"`

	Job     *Job            `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Student *StudentProfile `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

type Invitation struct {
	BaseModel
	JobID         string           `gorm:"type:varchar(36);not null;index" json:"job_id"`
	RecruiterID   string           `gorm:"type:varchar(36);not null;index" json:"recruiter_id"`
	StudentID     string           `gorm:"type:varchar(36);not null;index" json:"student_id"`
	Message       string           `gorm:"type:text" json:"message"`
	Status        InvitationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ExpiresAt     time.Time        `gorm:"index" json:"expires_at"`
	RespondedAt   *time.Time       `json:"responded_at,omitempty"`
	ApplicationID *string          `gorm:"type:varchar(36)" json:"application_id,omitempty"`

	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
