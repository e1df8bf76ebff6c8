package dto

import (
	"time"

	"placement_backend/internal/models"
)

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=5000"`
}

type UpdateApplicationStatusRequest struct {
	Status      models.ApplicationStatus `json:"status" validate:"required,is-application-status"`
	Note        string                   `json:"note" validate:"omitempty,max=2000"`
	InterviewAt *time.Time               `json:"interview_at"`
}

type ApplicationListRequest struct {
	PageRequest
	Status string `form:"status" validate:"omitempty,is-application-status"`
}

type CreateInvitationRequest struct {
	JobID     string `json:"job_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"omitempty,max=2000"`
}

type RespondInvitationRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}
