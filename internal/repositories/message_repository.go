package repositories

import (
	"errors"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
)

type MessageRepository interface {
	// FindOrCreateConversation ищет диалог пары пользователей или создает новый
	FindOrCreateConversation(db *gorm.DB, userA, userB string, now time.Time) (*models.Conversation, error)
	FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error)
	ListConversations(db *gorm.DB, userID string, p Pagination) ([]models.Conversation, int64, error)
	TouchConversation(db *gorm.DB, id string, at time.Time) error

	CreateMessage(db *gorm.DB, msg *models.Message) error
	ListMessages(db *gorm.DB, conversationID string, p Pagination) ([]models.Message, int64, error)
	LastMessages(db *gorm.DB, conversationIDs []string) (map[string]models.Message, error)
	UnreadCounts(db *gorm.DB, conversationIDs []string, userID string) (map[string]int64, error)
	MarkConversationRead(db *gorm.DB, conversationID, userID string, at time.Time) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) FindOrCreateConversation(db *gorm.DB, userA, userB string, now time.Time) (*models.Conversation, error) {
	a, b := models.ConversationPair(userA, userB)

	var conv models.Conversation
	err := db.Where("participant_a = ? AND participant_b = ?", a, b).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = models.Conversation{ParticipantA: a, ParticipantB: b, LastMessageAt: now}
	if err := db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepositoryImpl) FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := db.First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepositoryImpl) ListConversations(db *gorm.DB, userID string, p Pagination) ([]models.Conversation, int64, error) {
	query := db.Model(&models.Conversation{}).Where("participant_a = ? OR participant_b = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []models.Conversation
	err := query.Order("last_message_at DESC").Scopes(paginate(p)).Find(&convs).Error
	return convs, total, err
}

func (r *MessageRepositoryImpl) TouchConversation(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Conversation{}).Where("id = ?", id).Update("last_message_at", at).Error
}

func (r *MessageRepositoryImpl) CreateMessage(db *gorm.DB, msg *models.Message) error {
	return db.Create(msg).Error
}

// ListMessages - сначала новые
func (r *MessageRepositoryImpl) ListMessages(db *gorm.DB, conversationID string, p Pagination) ([]models.Message, int64, error) {
	query := db.Model(&models.Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []models.Message
	err := query.Order("created_at DESC").Scopes(paginate(p)).Find(&msgs).Error
	return msgs, total, err
}

func (r *MessageRepositoryImpl) LastMessages(db *gorm.DB, conversationIDs []string) (map[string]models.Message, error) {
	result := make(map[string]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return result, nil
	}

	latest := db.Model(&models.Message{}).
		Select("conversation_id, MAX(created_at) AS created_at").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []models.Message
	err := db.Model(&models.Message{}).
		Joins("JOIN (?) AS latest ON latest.conversation_id = messages.conversation_id AND latest.created_at = messages.created_at", latest).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		result[m.ConversationID] = m
	}
	return result, nil
}

func (r *MessageRepositoryImpl) UnreadCounts(db *gorm.DB, conversationIDs []string, userID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ConversationID string
		Count          int64
	}
	err := db.Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND sender_id <> ? AND read_at IS NULL", conversationIDs, userID).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}

// MarkConversationRead отмечает прочитанными входящие сообщения
func (r *MessageRepositoryImpl) MarkConversationRead(db *gorm.DB, conversationID, userID string, at time.Time) (int64, error) {
	result := db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}
