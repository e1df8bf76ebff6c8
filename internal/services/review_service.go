package services

import (
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type ReviewService interface {
	// Review operations
	Create(db *gorm.DB, authorID, companyID string, req *dto.CreateReviewRequest) (*models.Review, error)
	ListByCompany(db *gorm.DB, companyID string, req *dto.PageRequest) (*dto.Page[models.Review], error)
	Delete(db *gorm.DB, userID string, role models.UserRole, reviewID string) error

	// Admin operations
	ListForModeration(db *gorm.DB, req *dto.ReviewListRequest) (*dto.Page[models.Review], error)
	Moderate(db *gorm.DB, reviewID string, status models.ReviewStatus) (*models.Review, error)
}

type ReviewServiceImpl struct {
	reviewRepo          repositories.ReviewRepository
	companyRepo         repositories.CompanyRepository
	notificationService NotificationService
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	companyRepo repositories.CompanyRepository,
	notificationService NotificationService,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo:          reviewRepo,
		companyRepo:         companyRepo,
		notificationService: notificationService,
	}
}

// Create - новый отзыв уходит на модерацию
func (s *ReviewServiceImpl) Create(db *gorm.DB, authorID, companyID string, req *dto.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ValidationError(map[string]string{"rating": "rating must be between 1 and 5"})
	}

	company, err := s.companyRepo.FindByID(db, companyID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	review := &models.Review{
		CompanyID: company.ID,
		AuthorID:  authorID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		Status:    models.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrReviewExists
		}
		return nil, apperrors.InternalError(err)
	}
	return review, nil
}

// ListByCompany - публично только одобренные
func (s *ReviewServiceImpl) ListByCompany(db *gorm.DB, companyID string, req *dto.PageRequest) (*dto.Page[models.Review], error) {
	if _, err := s.companyRepo.FindByID(db, companyID); err != nil {
		return nil, handleRepoError(err)
	}

	p := pagination(*req)
	items, total, err := s.reviewRepo.ListByCompany(db, companyID, models.ReviewStatusApproved, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *ReviewServiceImpl) Delete(db *gorm.DB, userID string, role models.UserRole, reviewID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	review, err := s.reviewRepo.FindByID(tx, reviewID)
	if err != nil {
		return handleRepoError(err)
	}
	if review.AuthorID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.reviewRepo.Delete(tx, review.ID); err != nil {
		return handleRepoError(err)
	}
	if review.Status == models.ReviewStatusApproved {
		if err := s.companyRepo.RecalculateRating(tx, review.CompanyID); err != nil {
			return apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ReviewServiceImpl) ListForModeration(db *gorm.DB, req *dto.ReviewListRequest) (*dto.Page[models.Review], error) {
	status := models.ReviewStatus(req.Status)
	if status == "" {
		status = models.ReviewStatusPending
	}

	p := pagination(req.PageRequest)
	items, total, err := s.reviewRepo.ListByStatus(db, status, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// Moderate пересчитывает рейтинг компании и уведомляет автора
func (s *ReviewServiceImpl) Moderate(db *gorm.DB, reviewID string, status models.ReviewStatus) (*models.Review, error) {
	if status != models.ReviewStatusApproved && status != models.ReviewStatusRejected {
		return nil, apperrors.ErrInvalidStatus("review", "Review can only be approved or rejected")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	review, err := s.reviewRepo.FindByID(tx, reviewID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := applyReviewStatus(tx, s.reviewRepo, s.companyRepo, review, status); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	companyName := ""
	if company, err := s.companyRepo.FindByID(db, review.CompanyID); err == nil {
		companyName = company.Name
	}
	notifyQuiet(s.notificationService, db, review.AuthorID, models.NotificationReviewModerated, NotificationVars{
		"review_id":    review.ID,
		"company_id":   review.CompanyID,
		"company_name": companyName,
		"status":       string(review.Status),
	})
	return review, nil
}

// applyReviewStatus - общий путь для модерации отзывов и жалоб, вызывается внутри транзакции
func applyReviewStatus(
	tx *gorm.DB,
	reviewRepo repositories.ReviewRepository,
	companyRepo repositories.CompanyRepository,
	review *models.Review,
	status models.ReviewStatus,
) error {
	review.Status = status
	if err := reviewRepo.Update(tx, review); err != nil {
		return apperrors.InternalError(err)
	}
	if err := companyRepo.RecalculateRating(tx, review.CompanyID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
