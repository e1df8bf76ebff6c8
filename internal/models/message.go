package models

import "time"

// Conversation - диалог двух пользователей.
// ParticipantA < ParticipantB, чтобы пара была уникальной.
type Conversation struct {
	BaseModel
	ParticipantA  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversation_pair" json:"participant_a"`
	ParticipantB  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversation_pair;index" json:"participant_b"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationPair упорядочивает пару участников
func ConversationPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

type Message struct {
	BaseModel
	ConversationID string     `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	SenderID       string     `gorm:"type:varchar(36);not null" json:"sender_id"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}
