package dto

import "placement_backend/internal/models"

type UserListRequest struct {
	PageRequest
	Role   string `form:"role" validate:"omitempty,is-user-role"`
	Status string `form:"status" validate:"omitempty,is-user-status"`
	Query  string `form:"q"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,is-user-status"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified"`
}

type CreateFeedRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	URL       string `json:"url" validate:"required,url,max=512"`
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
}

type FeedSyncResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
