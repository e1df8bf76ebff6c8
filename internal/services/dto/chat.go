package dto

import (
	"time"

	"placement_backend/internal/models"
)

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Body        string `json:"body" validate:"required,max=5000"`
}

type ConversationResponse struct {
	ID            string          `json:"id"`
	Participant   *UserSummary    `json:"participant"`
	LastMessage   *models.Message `json:"last_message,omitempty"`
	LastMessageAt time.Time       `json:"last_message_at"`
	UnreadCount   int64           `json:"unread_count"`
}

type UserSummary struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

type SendMessageResponse struct {
	ConversationID string          `json:"conversation_id"`
	Message        *models.Message `json:"message"`
}
