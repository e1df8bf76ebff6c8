package dto

import (
	"time"

	"placement_backend/internal/models"
)

type CreateEventRequest struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Description string           `json:"description" validate:"omitempty,max=5000"`
	Type        models.EventType `json:"type" validate:"required,is-event-type"`
	StartsAt    time.Time        `json:"starts_at" validate:"required"`
	EndsAt      *time.Time       `json:"ends_at"`
	Location    string           `json:"location" validate:"omitempty,max=255"`
	JobID       *string          `json:"job_id" validate:"omitempty,uuid"`
	// Global - только для админа: событие видно всем
	Global bool `json:"global"`
}

type UpdateEventRequest struct {
	Title       *string           `json:"title" validate:"omitempty,max=255"`
	Description *string           `json:"description" validate:"omitempty,max=5000"`
	Type        *models.EventType `json:"type" validate:"omitempty,is-event-type"`
	StartsAt    *time.Time        `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at"`
	Location    *string           `json:"location" validate:"omitempty,max=255"`
}

type CalendarRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CalendarEntry - событие или синтетический дедлайн вакансии
type CalendarEntry struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Type        models.EventType `json:"type"`
	StartsAt    time.Time        `json:"starts_at"`
	EndsAt      *time.Time       `json:"ends_at,omitempty"`
	Location    string           `json:"location,omitempty"`
	JobID       *string          `json:"job_id,omitempty"`
	CompanyName string           `json:"company_name,omitempty"`
	Editable    bool             `json:"editable"`
	Synthetic   bool             `json:"synthetic"`
}
