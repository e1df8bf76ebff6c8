package dto

import "placement_backend/internal/models"

type NotificationListRequest struct {
	PageRequest
	UnreadOnly bool `form:"unread_only"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type UpdateTemplateRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Body     string `json:"body" validate:"required,max=5000"`
	IsActive *bool  `json:"is_active"`
}

type BroadcastRequest struct {
	Role      models.UserRole `json:"role" validate:"omitempty,is-user-role"`
	Title     string          `json:"title" validate:"required,max=255"`
	Message   string          `json:"message" validate:"required,max=5000"`
	SendEmail bool            `json:"send_email"`
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}
