package models

import "time"

type Report struct {
	BaseModel
	ReporterID     string       `gorm:"type:varchar(36);not null;index" json:"reporter_id"`
	TargetType     ReportTarget `gorm:"type:varchar(30);not null;index:idx_report_target" json:"target_type"`
	TargetID       string       `gorm:"type:varchar(36);not null;index:idx_report_target" json:"target_id"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Action         ReportAction `gorm:"type:varchar(20)" json:"action,omitempty"`
	ResolverID     *string      `gorm:"type:varchar(36)" json:"resolver_id,omitempty"`
	ResolutionNote string       `gorm:"type:text" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
}

// JobFeed - внешний RSS/Atom источник вакансий
type JobFeed struct {
	BaseModel
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	URL           string     `gorm:"type:varchar(512);uniqueIndex;not null" json:"url"`
	CompanyID     string     `gorm:"type:varchar(36);not null" json:"company_id"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	ImportedCount int        `gorm:"default:0" json:"imported_count"`
}
