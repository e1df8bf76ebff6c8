package services

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"placement_backend/internal/auth"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

const messagePreviewLength = 100

type MessageService interface {
	Send(db *gorm.DB, senderID string, senderRole models.UserRole, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListConversations(db *gorm.DB, userID string, req *dto.PageRequest) (*dto.Page[dto.ConversationResponse], error)
	GetMessages(db *gorm.DB, userID, conversationID string, req *dto.PageRequest) (*dto.Page[models.Message], error)
	MarkRead(db *gorm.DB, userID, conversationID string) (int64, error)
}

type MessageServiceImpl struct {
	messageRepo         repositories.MessageRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
	pusher              Pusher
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
	pusher Pusher,
) MessageService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &MessageServiceImpl{
		messageRepo:         messageRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		pusher:              pusher,
	}
}

// Send - студент может начать диалог только с рекрутером или админом
func (s *MessageServiceImpl) Send(db *gorm.DB, senderID string, senderRole models.UserRole, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.ValidationError(map[string]string{"body": "body is required"})
	}
	if req.RecipientID == senderID {
		return nil, apperrors.ErrCannotMessageUser
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	recipient, err := s.userRepo.FindByID(tx, req.RecipientID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if recipient.Status == models.UserStatusBanned {
		return nil, apperrors.ErrCannotMessageUser
	}
	if !auth.HasPermission(senderRole, auth.PermMessageAnyone) && recipient.Role == models.UserRoleStudent {
		return nil, apperrors.ErrCannotMessageUser
	}

	now := timeNow()
	conv, err := s.messageRepo.FindOrCreateConversation(tx, senderID, recipient.ID, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messageRepo.CreateMessage(tx, msg); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.messageRepo.TouchConversation(tx, conv.ID, now); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.SendMessageResponse{ConversationID: conv.ID, Message: msg}
	envelope := PushEnvelope{Type: PushTypeMessage, Data: resp}
	s.pusher.SendToUser(recipient.ID, envelope)
	s.pusher.SendToUser(senderID, envelope)

	senderName := ""
	if sender, err := s.userRepo.FindByID(db, senderID); err == nil {
		senderName = sender.Name
	}
	notifyQuiet(s.notificationService, db, recipient.ID, models.NotificationNewMessage, NotificationVars{
		"conversation_id": conv.ID,
		"sender_id":       senderID,
		"sender_name":     senderName,
		"preview":         preview(body, messagePreviewLength),
	})

	return resp, nil
}

func (s *MessageServiceImpl) ListConversations(db *gorm.DB, userID string, req *dto.PageRequest) (*dto.Page[dto.ConversationResponse], error) {
	p := pagination(*req)
	convs, total, err := s.messageRepo.ListConversations(db, userID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, 0, len(convs))
	others := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
		others = append(others, c.OtherParticipant(userID))
	}

	lastMessages, err := s.messageRepo.LastMessages(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.messageRepo.UnreadCounts(db, ids, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	users, err := s.userRepo.FindByIDs(db, others)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	items := make([]dto.ConversationResponse, 0, len(convs))
	for _, c := range convs {
		item := dto.ConversationResponse{
			ID:            c.ID,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   unread[c.ID],
		}
		otherID := c.OtherParticipant(userID)
		if u, ok := byID[otherID]; ok {
			item.Participant = &dto.UserSummary{ID: u.ID, Name: u.Name, Role: u.Role}
		} else {
			item.Participant = &dto.UserSummary{ID: otherID}
		}
		if m, ok := lastMessages[c.ID]; ok {
			msg := m
			item.LastMessage = &msg
		}
		items = append(items, item)
	}
	return toPage(items, total, p), nil
}

func (s *MessageServiceImpl) GetMessages(db *gorm.DB, userID, conversationID string, req *dto.PageRequest) (*dto.Page[models.Message], error) {
	if _, err := s.findParticipantConversation(db, userID, conversationID); err != nil {
		return nil, err
	}

	p := pagination(*req)
	items, total, err := s.messageRepo.ListMessages(db, conversationID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *MessageServiceImpl) MarkRead(db *gorm.DB, userID, conversationID string) (int64, error) {
	if _, err := s.findParticipantConversation(db, userID, conversationID); err != nil {
		return 0, err
	}
	count, err := s.messageRepo.MarkConversationRead(db, conversationID, userID, timeNow())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *MessageServiceImpl) findParticipantConversation(db *gorm.DB, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.messageRepo.FindConversationByID(db, conversationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrConversationAccessDenied
	}
	return conv, nil
}

// preview обрезает текст до n символов (по рунам)
func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
