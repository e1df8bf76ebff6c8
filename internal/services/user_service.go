package services

import (
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

// UserService - управление пользователями из админки
type UserService interface {
	List(db *gorm.DB, req *dto.UserListRequest) (*dto.Page[models.User], error)
	UpdateStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) (*models.User, error)
	VerifyRecruiter(db *gorm.DB, userID string, verified bool) (*models.RecruiterProfile, error)
	Broadcast(db *gorm.DB, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error)
}

type UserServiceImpl struct {
	userRepo            repositories.UserRepository
	profileRepo         repositories.ProfileRepository
	refreshTokenRepo    repositories.RefreshTokenRepository
	notificationService NotificationService
	emailService        *EmailService
}

func NewUserService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notificationService NotificationService,
	emailService *EmailService,
) UserService {
	return &UserServiceImpl{
		userRepo:            userRepo,
		profileRepo:         profileRepo,
		refreshTokenRepo:    refreshTokenRepo,
		notificationService: notificationService,
		emailService:        emailService,
	}
}

func (s *UserServiceImpl) List(db *gorm.DB, req *dto.UserListRequest) (*dto.Page[models.User], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.userRepo.List(db, repositories.UserFilter{
		Role:   models.UserRole(req.Role),
		Status: models.UserStatus(req.Status),
		Query:  strings.TrimSpace(req.Query),
	}, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// UpdateStatus - админ не может менять статус самому себе
func (s *UserServiceImpl) UpdateStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) (*models.User, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if user.Status == status {
		return user, nil
	}
	if user.IsAdmin() && status != models.UserStatusActive {
		return nil, apperrors.ErrInvalidOperation("user", "Admin accounts cannot be suspended or banned")
	}
	if err := applyUserStatus(tx, s.userRepo, s.refreshTokenRepo, user.ID, status); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("User status changed", "user_id", user.ID, "from", user.Status, "to", status, "admin_id", adminID)
	user.Status = status
	notifyQuiet(s.notificationService, db, user.ID, models.NotificationAccountStatus, NotificationVars{
		"status": string(status),
	})
	return user, nil
}

func (s *UserServiceImpl) VerifyRecruiter(db *gorm.DB, userID string, verified bool) (*models.RecruiterProfile, error) {
	if err := s.profileRepo.SetRecruiterVerified(db, userID, verified); err != nil {
		return nil, handleRepoError(err)
	}
	profile, err := s.profileRepo.FindRecruiterByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return profile, nil
}

// Broadcast рассылает уведомление всем активным пользователям (или одной роли)
func (s *UserServiceImpl) Broadcast(db *gorm.DB, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error) {
	ids, err := s.userRepo.FindActiveIDs(db, models.UserRole(req.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sent, err := s.notificationService.NotifyMany(db, ids, models.NotificationBroadcast, NotificationVars{
		"title":   req.Title,
		"message": req.Message,
	})
	if err != nil {
		return nil, err
	}

	if req.SendEmail && len(ids) > 0 {
		users, err := s.userRepo.FindByIDs(db, ids)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for i := range users {
			s.emailService.SendBroadcast(users[i].Email, req.Title, req.Message)
		}
	}

	return &dto.BroadcastResponse{Recipients: sent}, nil
}

// applyUserStatus меняет статус внутри транзакции. Блокировка отзывает refresh-токены.
func applyUserStatus(
	tx *gorm.DB,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	userID string,
	status models.UserStatus,
) error {
	if err := userRepo.UpdateStatus(tx, userID, status); err != nil {
		return handleRepoError(err)
	}
	if status == models.UserStatusSuspended || status == models.UserStatusBanned {
		if err := refreshTokenRepo.DeleteByUserID(tx, userID); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}
