package services

import (
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

// InvitationTTL - срок жизни приглашения
const InvitationTTL = 14 * 24 * time.Hour

type InvitationService interface {
	Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateInvitationRequest) (*models.Invitation, error)
	List(db *gorm.DB, userID string, role models.UserRole, req *dto.PageRequest) (*dto.Page[models.Invitation], error)
	Respond(db *gorm.DB, studentID, invitationID string, accept bool) (*models.Invitation, error)
}

type InvitationServiceImpl struct {
	invitationRepo      repositories.InvitationRepository
	applicationRepo     repositories.ApplicationRepository
	jobRepo             repositories.JobRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
	emailService        *EmailService
}

func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
	emailService *EmailService,
) InvitationService {
	return &InvitationServiceImpl{
		invitationRepo:      invitationRepo,
		applicationRepo:     applicationRepo,
		jobRepo:             jobRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		emailService:        emailService,
	}
}

// Create - одно активное приглашение на пару (вакансия, студент)
func (s *InvitationServiceImpl) Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateInvitationRequest) (*models.Invitation, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.jobRepo.FindByID(tx, req.JobID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := ensureJobOwner(job, userID, role); err != nil {
		return nil, err
	}

	now := timeNow()
	if !job.IsAcceptingApplications(now) {
		return nil, apperrors.ErrJobNotOpen
	}

	student, err := s.userRepo.FindByID(tx, req.StudentID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !student.IsStudent() {
		return nil, apperrors.ErrInvalidUserRole
	}
	if student.Status != models.UserStatusActive {
		return nil, apperrors.ErrInvalidOperation("invitation", "Student account is not active")
	}

	if _, err := s.applicationRepo.FindByJobAndStudent(tx, job.ID, student.ID); err == nil {
		return nil, apperrors.ErrAlreadyApplied
	} else if !apperrors.Is(err, repositories.ErrApplicationNotFound) {
		return nil, apperrors.InternalError(err)
	}

	pending, err := s.invitationRepo.HasPending(tx, job.ID, student.ID, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if pending {
		return nil, apperrors.ErrInvitationExists
	}

	inv := &models.Invitation{
		JobID:       job.ID,
		RecruiterID: userID,
		StudentID:   student.ID,
		Message:     req.Message,
		Status:      models.InvitationStatusPending,
		ExpiresAt:   now.Add(InvitationTTL),
	}
	if err := s.invitationRepo.Create(tx, inv); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	companyName := ""
	if job.Company != nil {
		companyName = job.Company.Name
	}
	notifyQuiet(s.notificationService, db, student.ID, models.NotificationInvitation, NotificationVars{
		"invitation_id": inv.ID,
		"job_id":        job.ID,
		"job_title":     job.Title,
		"company_name":  companyName,
	})
	s.emailService.SendInvitation(student.Email, student.Name, job.Title, companyName, inv.Message, inv.ExpiresAt)

	inv.Job = job
	return inv, nil
}

// List - студент видит полученные, рекрутер и админ отправленные
func (s *InvitationServiceImpl) List(db *gorm.DB, userID string, role models.UserRole, req *dto.PageRequest) (*dto.Page[models.Invitation], error) {
	p := pagination(*req)

	var (
		items []models.Invitation
		total int64
		err   error
	)
	if role == models.UserRoleStudent {
		items, total, err = s.invitationRepo.ListByStudent(db, userID, p)
	} else {
		items, total, err = s.invitationRepo.ListByRecruiter(db, userID, p)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// Respond - принятие создает заявку (eligibility проверяется как при обычном отклике)
func (s *InvitationServiceImpl) Respond(db *gorm.DB, studentID, invitationID string, accept bool) (*models.Invitation, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	inv, err := s.invitationRepo.FindByID(tx, invitationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if inv.StudentID != studentID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, apperrors.ErrInvitationClosed
	}

	now := timeNow()
	if inv.IsExpired(now) {
		inv.Status = models.InvitationStatusExpired
		if err := s.invitationRepo.Update(tx, inv); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := tx.Commit().Error; err != nil {
			logger.Error("Failed to expire invitation", "invitation_id", inv.ID, "error", err)
		}
		return nil, apperrors.ErrInvitationClosed
	}

	if accept {
		if inv.Job == nil {
			return nil, apperrors.ErrNotFound(repositories.ErrJobNotFound)
		}
		app, err := createApplication(tx, s.applicationRepo, s.userRepo, studentID, inv.Job, inv.Message, &inv.ID)
		switch {
		case err == nil:
			inv.ApplicationID = &app.ID
		case apperrors.Is(err, apperrors.ErrAlreadyApplied):
			// Уже откликнулся сам - привязываем существующую заявку
			existing, findErr := s.applicationRepo.FindByJobAndStudent(tx, inv.JobID, studentID)
			if findErr != nil {
				return nil, apperrors.InternalError(findErr)
			}
			inv.ApplicationID = &existing.ID
		default:
			return nil, err
		}
		inv.Status = models.InvitationStatusAccepted
	} else {
		inv.Status = models.InvitationStatusDeclined
	}
	inv.RespondedAt = &now

	if err := s.invitationRepo.Update(tx, inv); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyReply(db, inv)
	return inv, nil
}

func (s *InvitationServiceImpl) notifyReply(db *gorm.DB, inv *models.Invitation) {
	studentName := ""
	if student, err := s.userRepo.FindByID(db, inv.StudentID); err == nil {
		studentName = student.Name
		if student.StudentProfile != nil && student.StudentProfile.FullName != "" {
			studentName = student.StudentProfile.FullName
		}
	}
	jobTitle := ""
	if inv.Job != nil {
		jobTitle = inv.Job.Title
	}

	notifyQuiet(s.notificationService, db, inv.RecruiterID, models.NotificationInvitationReply, NotificationVars{
		"invitation_id": inv.ID,
		"job_id":        inv.JobID,
		"job_title":     jobTitle,
		"student_name":  studentName,
		"status":        string(inv.Status),
	})
}
