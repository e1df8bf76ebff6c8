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

type ModerationService interface {
	Report(db *gorm.DB, reporterID string, req *dto.CreateReportRequest) (*models.Report, error)
	List(db *gorm.DB, req *dto.ReportListRequest) (*dto.Page[models.Report], error)
	Resolve(db *gorm.DB, adminID, reportID string, req *dto.ResolveReportRequest) (*models.Report, error)
}

type ModerationServiceImpl struct {
	reportRepo          repositories.ReportRepository
	jobRepo             repositories.JobRepository
	forumRepo           repositories.ForumRepository
	reviewRepo          repositories.ReviewRepository
	companyRepo         repositories.CompanyRepository
	userRepo            repositories.UserRepository
	refreshTokenRepo    repositories.RefreshTokenRepository
	notificationService NotificationService
}

func NewModerationService(
	reportRepo repositories.ReportRepository,
	jobRepo repositories.JobRepository,
	forumRepo repositories.ForumRepository,
	reviewRepo repositories.ReviewRepository,
	companyRepo repositories.CompanyRepository,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notificationService NotificationService,
) ModerationService {
	return &ModerationServiceImpl{
		reportRepo:          reportRepo,
		jobRepo:             jobRepo,
		forumRepo:           forumRepo,
		reviewRepo:          reviewRepo,
		companyRepo:         companyRepo,
		userRepo:            userRepo,
		refreshTokenRepo:    refreshTokenRepo,
		notificationService: notificationService,
	}
}

// Report - одна открытая жалоба на цель от одного пользователя
func (s *ModerationServiceImpl) Report(db *gorm.DB, reporterID string, req *dto.CreateReportRequest) (*models.Report, error) {
	if req.TargetType == models.ReportTargetUser && req.TargetID == reporterID {
		return nil, apperrors.ErrInvalidOperation("report", "Cannot report yourself")
	}
	if _, err := s.targetAuthor(db, req.TargetType, req.TargetID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID: reporterID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     models.ReportStatusOpen,
	}
	if err := s.reportRepo.Create(db, report); err != nil {
		if apperrors.Is(err, repositories.ErrReportExists) {
			return nil, apperrors.ErrReportExists
		}
		return nil, apperrors.InternalError(err)
	}
	return report, nil
}

func (s *ModerationServiceImpl) List(db *gorm.DB, req *dto.ReportListRequest) (*dto.Page[models.Report], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.reportRepo.List(db, models.ReportStatus(req.Status), p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// Resolve применяет действие к цели жалобы и закрывает жалобу
func (s *ModerationServiceImpl) Resolve(db *gorm.DB, adminID, reportID string, req *dto.ResolveReportRequest) (*models.Report, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	report, err := s.reportRepo.FindByID(tx, reportID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if report.Status != models.ReportStatusOpen {
		return nil, apperrors.ErrReportResolved
	}

	var statusChanged *statusChange
	switch req.Action {
	case models.ReportActionHide:
		statusChanged, err = s.hideTarget(tx, report)
	case models.ReportActionBanUser:
		statusChanged, err = s.banAuthor(tx, adminID, report)
	case models.ReportActionDismiss:
	default:
		err = apperrors.ErrInvalidOperation("report", "Unknown moderation action")
	}
	if err != nil {
		return nil, err
	}

	now := timeNow()
	report.Action = req.Action
	report.ResolverID = &adminID
	report.ResolutionNote = strings.TrimSpace(req.Note)
	report.ResolvedAt = &now
	if req.Action == models.ReportActionDismiss {
		report.Status = models.ReportStatusDismissed
	} else {
		report.Status = models.ReportStatusResolved
	}
	if err := s.reportRepo.Update(tx, report); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("Report resolved",
		"report_id", report.ID,
		"action", report.Action,
		"target_type", report.TargetType,
		"target_id", report.TargetID,
		"admin_id", adminID,
	)
	if statusChanged != nil {
		notifyQuiet(s.notificationService, db, statusChanged.userID, models.NotificationAccountStatus, NotificationVars{
			"status": string(statusChanged.status),
		})
	}
	return report, nil
}

type statusChange struct {
	userID string
	status models.UserStatus
}

// hideTarget - скрытие цели: отзыв отклоняется, пользователь блокируется временно
func (s *ModerationServiceImpl) hideTarget(tx *gorm.DB, report *models.Report) (*statusChange, error) {
	switch report.TargetType {
	case models.ReportTargetJob:
		return nil, handleRepoError(s.jobRepo.SetHidden(tx, report.TargetID, true))
	case models.ReportTargetForumPost:
		return nil, handleRepoError(s.forumRepo.SetPostHidden(tx, report.TargetID, true))
	case models.ReportTargetForumComment:
		return nil, handleRepoError(s.forumRepo.SetCommentHidden(tx, report.TargetID, true))
	case models.ReportTargetReview:
		review, err := s.reviewRepo.FindByID(tx, report.TargetID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		return nil, applyReviewStatus(tx, s.reviewRepo, s.companyRepo, review, models.ReviewStatusRejected)
	case models.ReportTargetUser:
		if err := s.setUserStatus(tx, report.TargetID, models.UserStatusSuspended); err != nil {
			return nil, err
		}
		return &statusChange{userID: report.TargetID, status: models.UserStatusSuspended}, nil
	}
	return nil, apperrors.ErrInvalidOperation("report", "Unknown report target")
}

func (s *ModerationServiceImpl) banAuthor(tx *gorm.DB, adminID string, report *models.Report) (*statusChange, error) {
	authorID, err := s.targetAuthor(tx, report.TargetType, report.TargetID)
	if err != nil {
		return nil, err
	}
	if authorID == "" {
		return nil, apperrors.ErrInvalidOperation("report", "Target has no author to ban")
	}
	if authorID == adminID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if err := s.setUserStatus(tx, authorID, models.UserStatusBanned); err != nil {
		return nil, err
	}
	return &statusChange{userID: authorID, status: models.UserStatusBanned}, nil
}

func (s *ModerationServiceImpl) setUserStatus(tx *gorm.DB, userID string, status models.UserStatus) error {
	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return handleRepoError(err)
	}
	if user.Role == models.UserRoleAdmin {
		return apperrors.ErrInvalidOperation("report", "Admin accounts cannot be moderated")
	}
	return applyUserStatus(tx, s.userRepo, s.refreshTokenRepo, user.ID, status)
}

// targetAuthor проверяет существование цели и возвращает id автора
func (s *ModerationServiceImpl) targetAuthor(db *gorm.DB, targetType models.ReportTarget, targetID string) (string, error) {
	switch targetType {
	case models.ReportTargetJob:
		job, err := s.jobRepo.FindByID(db, targetID)
		if err != nil {
			return "", handleRepoError(err)
		}
		if job.RecruiterID == nil {
			return "", nil
		}
		return *job.RecruiterID, nil
	case models.ReportTargetForumPost:
		post, err := s.forumRepo.FindPostByID(db, targetID, true)
		if err != nil {
			return "", handleRepoError(err)
		}
		return post.AuthorID, nil
	case models.ReportTargetForumComment:
		comment, err := s.forumRepo.FindCommentByID(db, targetID)
		if err != nil {
			return "", handleRepoError(err)
		}
		return comment.AuthorID, nil
	case models.ReportTargetReview:
		review, err := s.reviewRepo.FindByID(db, targetID)
		if err != nil {
			return "", handleRepoError(err)
		}
		return review.AuthorID, nil
	case models.ReportTargetUser:
		user, err := s.userRepo.FindByID(db, targetID)
		if err != nil {
			return "", handleRepoError(err)
		}
		return user.ID, nil
	}
	return "", apperrors.ErrInvalidOperation("report", "Unknown report target")
}
