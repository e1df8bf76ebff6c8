package services

import (
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/algorithms"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type ApplicationService interface {
	Apply(db *gorm.DB, studentID, jobID string, req *dto.ApplyRequest) (*models.Application, error)
	Get(db *gorm.DB, userID string, role models.UserRole, applicationID string) (*models.Application, error)
	ListMine(db *gorm.DB, studentID string, req *dto.ApplicationListRequest) (*dto.Page[models.Application], error)
	Withdraw(db *gorm.DB, studentID, applicationID string) (*models.Application, error)
	ListForJob(db *gorm.DB, userID string, role models.UserRole, jobID string, req *dto.ApplicationListRequest) (*dto.Page[models.Application], error)
	UpdateStatus(db *gorm.DB, userID string, role models.UserRole, applicationID string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error)
}

type ApplicationServiceImpl struct {
	applicationRepo     repositories.ApplicationRepository
	jobRepo             repositories.JobRepository
	userRepo            repositories.UserRepository
	calendarRepo        repositories.CalendarRepository
	notificationService NotificationService
	emailService        *EmailService
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	calendarRepo repositories.CalendarRepository,
	notificationService NotificationService,
	emailService *EmailService,
) ApplicationService {
	return &ApplicationServiceImpl{
		applicationRepo:     applicationRepo,
		jobRepo:             jobRepo,
		userRepo:            userRepo,
		calendarRepo:        calendarRepo,
		notificationService: notificationService,
		emailService:        emailService,
	}
}

// Apply - отклик студента на вакансию
func (s *ApplicationServiceImpl) Apply(db *gorm.DB, studentID, jobID string, req *dto.ApplyRequest) (*models.Application, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.jobRepo.FindByID(tx, jobID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	app, err := createApplication(tx, s.applicationRepo, s.userRepo, studentID, job, req.CoverLetter, nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyRecruiter(db, job, app)
	app.Job = job
	return app, nil
}

// createApplication - общие проверки для отклика и принятия приглашения
func createApplication(
	tx *gorm.DB,
	applicationRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	studentID string,
	job *models.Job,
	coverLetter string,
	invitationID *string,
) (*models.Application, error) {
	user, err := userRepo.FindByID(tx, studentID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !user.IsStudent() || user.StudentProfile == nil {
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}
	if !user.IsVerified || user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserNotVerified
	}

	now := timeNow()
	if job.Status != models.JobStatusOpen || job.IsHidden {
		return nil, apperrors.ErrJobNotOpen
	}
	if !job.IsAcceptingApplications(now) {
		return nil, apperrors.ErrDeadlinePassed
	}

	profile := user.StudentProfile
	if reasons := algorithms.CheckEligibility(job.Eligibility, profile); len(reasons) > 0 {
		return nil, apperrors.ErrNotEligible(reasons)
	}
	if strings.TrimSpace(profile.ResumeURL) == "" {
		return nil, apperrors.ErrResumeRequired
	}

	app := &models.Application{
		JobID:           job.ID,
		StudentID:       studentID,
		Status:          models.ApplicationStatusApplied,
		CoverLetter:     coverLetter,
		ResumeURL:       profile.ResumeURL,
		InvitationID:    invitationID,
		StatusChangedAt: now,
		Student:         profile,
	}
	if err := applicationRepo.Create(tx, app); err != nil {
		if apperrors.Is(err, repositories.ErrApplicationExists) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}
	return app, nil
}

func (s *ApplicationServiceImpl) notifyRecruiter(db *gorm.DB, job *models.Job, app *models.Application) {
	if job.RecruiterID == nil {
		return
	}
	studentName := ""
	if app.Student != nil {
		studentName = app.Student.FullName
	}
	notifyQuiet(s.notificationService, db, *job.RecruiterID, models.NotificationNewApplication, NotificationVars{
		"job_id":         job.ID,
		"job_title":      job.Title,
		"application_id": app.ID,
		"student_id":     app.StudentID,
		"student_name":   studentName,
	})
}

func (s *ApplicationServiceImpl) Get(db *gorm.DB, userID string, role models.UserRole, applicationID string) (*models.Application, error) {
	app, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if app.StudentID == userID || role == models.UserRoleAdmin {
		return app, nil
	}
	if app.Job != nil && isJobOwner(app.Job, userID) {
		return app, nil
	}
	return nil, apperrors.ErrInsufficientPermissions
}

func (s *ApplicationServiceImpl) ListMine(db *gorm.DB, studentID string, req *dto.ApplicationListRequest) (*dto.Page[models.Application], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.applicationRepo.ListByStudent(db, studentID, models.ApplicationStatus(req.Status), p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// Withdraw - только из applied и shortlisted
func (s *ApplicationServiceImpl) Withdraw(db *gorm.DB, studentID, applicationID string) (*models.Application, error) {
	app, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if app.StudentID != studentID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !app.Status.IsWithdrawable() {
		return nil, apperrors.ErrCannotWithdraw
	}

	app.Status = models.ApplicationStatusWithdrawn
	app.StatusChangedAt = timeNow()
	if err := s.applicationRepo.Update(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return app, nil
}

func (s *ApplicationServiceImpl) ListForJob(db *gorm.DB, userID string, role models.UserRole, jobID string, req *dto.ApplicationListRequest) (*dto.Page[models.Application], error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := ensureJobOwner(job, userID, role); err != nil {
		return nil, err
	}

	p := pagination(req.PageRequest)
	items, total, err := s.applicationRepo.ListByJob(db, jobID, models.ApplicationStatus(req.Status), p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

// UpdateStatus двигает заявку по воронке, студент получает уведомление и письмо
func (s *ApplicationServiceImpl) UpdateStatus(db *gorm.DB, userID string, role models.UserRole, applicationID string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	app, err := s.applicationRepo.FindByID(tx, applicationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if app.Job == nil {
		return nil, apperrors.ErrNotFound(repositories.ErrJobNotFound)
	}
	if err := ensureJobOwner(app.Job, userID, role); err != nil {
		return nil, err
	}

	if !app.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.ErrInvalidStatus("application",
			"Cannot change application status from "+string(app.Status)+" to "+string(req.Status))
	}

	now := timeNow()
	app.Status = req.Status
	app.StatusChangedAt = now
	if req.Note != "" {
		app.Note = req.Note
	}
	if req.Status == models.ApplicationStatusInterview && req.InterviewAt != nil {
		app.InterviewAt = req.InterviewAt
	}

	if err := s.applicationRepo.Update(tx, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if req.Status == models.ApplicationStatusInterview && req.InterviewAt != nil {
		studentID := app.StudentID
		jobID := app.JobID
		appID := app.ID
		event := &models.CalendarEvent{
			Title:         "Interview: " + app.Job.Title,
			Description:   req.Note,
			Type:          models.EventTypeInterview,
			StartsAt:      *req.InterviewAt,
			OwnerID:       &studentID,
			JobID:         &jobID,
			ApplicationID: &appID,
			CreatedBy:     userID,
		}
		if app.Job.Company != nil {
			event.Location = app.Job.Company.Location
		}
		if err := s.calendarRepo.Create(tx, event); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyStudent(db, app)
	return app, nil
}

func (s *ApplicationServiceImpl) notifyStudent(db *gorm.DB, app *models.Application) {
	companyName := ""
	if app.Job.Company != nil {
		companyName = app.Job.Company.Name
	}

	notifyQuiet(s.notificationService, db, app.StudentID, models.NotificationApplicationStatus, NotificationVars{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"job_title":      app.Job.Title,
		"company_name":   companyName,
		"status":         string(app.Status),
	})

	user, err := s.userRepo.FindByID(db, app.StudentID)
	if err != nil {
		logger.Error("Failed to load student for status email", "user_id", app.StudentID, "error", err)
		return
	}
	s.emailService.SendApplicationStatus(user.Email, user.Name, app.Job.Title, companyName, string(app.Status), app.Note, app.InterviewAt)
}
