package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationNewApplication    NotificationType = "new_application"
	NotificationApplicationStatus NotificationType = "application_status"
	NotificationInvitation        NotificationType = "invitation"
	NotificationInvitationReply   NotificationType = "invitation_reply"
	NotificationNewMessage        NotificationType = "new_message"
	NotificationForumComment      NotificationType = "forum_comment"
	NotificationDeadlineReminder  NotificationType = "deadline_reminder"
	NotificationAccountStatus     NotificationType = "account_status"
	NotificationReviewModerated   NotificationType = "review_moderated"
	NotificationBroadcast         NotificationType = "broadcast"
)

type Notification struct {
	BaseModel
	UserID  string           `gorm:"type:varchar(36);not null;index:idx_notification_user_read" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title   string           `gorm:"type:varchar(255);not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Data    datatypes.JSON   `json:"data,omitempty"`
	IsRead  bool             `gorm:"default:false;index:idx_notification_user_read" json:"is_read"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}

// NotificationTemplate - шаблон (liquid), редактируемый админом
type NotificationTemplate struct {
	BaseModel
	Type     NotificationType `gorm:"type:varchar(50);uniqueIndex;not null" json:"type"`
	Title    string           `gorm:"type:varchar(255);not null" json:"title"`
	Body     string           `gorm:"type:text;not null" json:"body"`
	IsActive bool             `gorm:"default:true" json:"is_active"`
}
