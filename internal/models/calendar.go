package models

import "time"

// CalendarEvent - событие календаря. OwnerID == nil - событие видно всем.
type CalendarEvent struct {
	BaseModel
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Type          EventType  `gorm:"type:varchar(30);not null" json:"type"`
	StartsAt      time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Location      string     `gorm:"type:varchar(255)" json:"location"`
	OwnerID       *string    `gorm:"type:varchar(36);index" json:"owner_id,omitempty"`
	JobID         *string    `gorm:"type:varchar(36)" json:"job_id,omitempty"`
	ApplicationID *string    `gorm:"type:varchar(36)" json:"application_id,omitempty"`
	CreatedBy     string     `gorm:"type:varchar(36)" json:"created_by"`
}

func (e *CalendarEvent) IsGlobal() bool {
	return e.OwnerID == nil
}
