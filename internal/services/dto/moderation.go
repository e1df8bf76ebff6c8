package dto

import "placement_backend/internal/models"

type CreateReportRequest struct {
	TargetType models.ReportTarget `json:"target_type" validate:"required,is-report-target"`
	TargetID   string              `json:"target_id" validate:"required,uuid"`
	Reason     string              `json:"reason" validate:"required,max=2000"`
}

type ResolveReportRequest struct {
	Action models.ReportAction `json:"action" validate:"required,oneof=hide dismiss ban_user"`
	Note   string              `json:"note" validate:"omitempty,max=2000"`
}

type ReportListRequest struct {
	PageRequest
	Status string `form:"status" validate:"omitempty,oneof=open resolved dismissed"`
}
