package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/algorithms"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

// jobStatusTransitions - ручные переходы статуса вакансии
var jobStatusTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusDraft:  {models.JobStatusOpen, models.JobStatusArchived},
	models.JobStatusOpen:   {models.JobStatusClosed, models.JobStatusArchived},
	models.JobStatusClosed: {models.JobStatusOpen, models.JobStatusArchived},
}

type JobService interface {
	Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateJobRequest) (*models.Job, error)
	Update(db *gorm.DB, userID string, role models.UserRole, jobID string, req *dto.UpdateJobRequest) (*models.Job, error)
	// Delete - вакансия с заявками архивируется, а не удаляется
	Delete(db *gorm.DB, userID string, role models.UserRole, jobID string) error
	Close(db *gorm.DB, userID string, role models.UserRole, jobID string) (*models.Job, error)
	Get(db *gorm.DB, viewerID string, role models.UserRole, jobID string) (*dto.JobResponse, error)
	Search(db *gorm.DB, viewerID string, role models.UserRole, req *dto.JobSearchRequest) (*dto.Page[dto.JobResponse], error)
	Mine(db *gorm.DB, recruiterID string, req *dto.PageRequest) (*dto.Page[dto.JobResponse], error)
	Recommended(db *gorm.DB, studentID string, req *dto.PageRequest) (*dto.Page[dto.JobResponse], error)

	Save(db *gorm.DB, userID, jobID string) error
	Unsave(db *gorm.DB, userID, jobID string) error
	ListSaved(db *gorm.DB, userID string, req *dto.PageRequest) (*dto.Page[models.SavedJob], error)
}

type JobServiceImpl struct {
	jobRepo         repositories.JobRepository
	companyRepo     repositories.CompanyRepository
	profileRepo     repositories.ProfileRepository
	savedJobRepo    repositories.SavedJobRepository
	applicationRepo repositories.ApplicationRepository
}

func NewJobService(
	jobRepo repositories.JobRepository,
	companyRepo repositories.CompanyRepository,
	profileRepo repositories.ProfileRepository,
	savedJobRepo repositories.SavedJobRepository,
	applicationRepo repositories.ApplicationRepository,
) JobService {
	return &JobServiceImpl{
		jobRepo:         jobRepo,
		companyRepo:     companyRepo,
		profileRepo:     profileRepo,
		savedJobRepo:    savedJobRepo,
		applicationRepo: applicationRepo,
	}
}

// Create - проверенный рекрутер своей компании или админ
func (s *JobServiceImpl) Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateJobRequest) (*models.Job, error) {
	companyID, err := s.resolveCompany(db, userID, role, req.CompanyID)
	if err != nil {
		return nil, err
	}

	if req.Deadline != nil && !req.Deadline.After(timeNow()) {
		return nil, apperrors.ErrDeadlineInPast
	}
	if req.SalaryMax > 0 && req.SalaryMax < req.SalaryMin {
		return nil, apperrors.ValidationError(map[string]string{"salary_max": "salary_max must be greater than or equal to salary_min"})
	}

	status := models.JobStatusOpen
	if req.Status == models.JobStatusDraft {
		status = models.JobStatusDraft
	}
	openings := req.Openings
	if openings <= 0 {
		openings = 1
	}

	job := &models.Job{
		CompanyID:   companyID,
		RecruiterID: &userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		JobType:     req.JobType,
		WorkMode:    req.WorkMode,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Currency:    strings.ToUpper(req.Currency),
		Skills:      cleanSkills(req.Skills),
		Eligibility: req.Eligibility.ToModel(),
		Openings:    openings,
		Deadline:    req.Deadline,
		Status:      status,
		Source:      models.JobSourcePortal,
	}
	if job.WorkMode == "" {
		job.WorkMode = models.WorkModeOnsite
	}

	if err := s.jobRepo.Create(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.reload(db, job.ID)
}

func (s *JobServiceImpl) resolveCompany(db *gorm.DB, userID string, role models.UserRole, requested string) (string, error) {
	if role == models.UserRoleAdmin {
		if requested == "" {
			return "", apperrors.ErrCompanyRequired
		}
		if _, err := s.companyRepo.FindByID(db, requested); err != nil {
			return "", handleRepoError(err)
		}
		return requested, nil
	}

	profile, err := s.profileRepo.FindRecruiterByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return "", apperrors.ErrInsufficientPermissions
		}
		return "", apperrors.InternalError(err)
	}
	if profile.CompanyID == nil || *profile.CompanyID == "" {
		return "", apperrors.ErrCompanyRequired
	}
	if requested != "" && requested != *profile.CompanyID {
		return "", apperrors.ErrNotCompanyMember
	}
	if !profile.IsVerified {
		return "", apperrors.ErrRecruiterNotVerified
	}
	return *profile.CompanyID, nil
}

func (s *JobServiceImpl) Update(db *gorm.DB, userID string, role models.UserRole, jobID string, req *dto.UpdateJobRequest) (*models.Job, error) {
	job, err := s.findOwned(db, userID, role, jobID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.WorkMode != nil {
		job.WorkMode = *req.WorkMode
	}
	if req.SalaryMin != nil {
		job.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = *req.SalaryMax
	}
	if job.SalaryMax > 0 && job.SalaryMax < job.SalaryMin {
		return nil, apperrors.ValidationError(map[string]string{"salary_max": "salary_max must be greater than or equal to salary_min"})
	}
	if req.Currency != nil {
		job.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Skills != nil {
		job.Skills = cleanSkills(*req.Skills)
	}
	if req.Eligibility != nil {
		job.Eligibility = req.Eligibility.ToModel()
	}
	if req.Openings != nil {
		job.Openings = *req.Openings
	}
	if req.Deadline != nil {
		if !req.Deadline.After(timeNow()) {
			return nil, apperrors.ErrDeadlineInPast
		}
		job.Deadline = req.Deadline
		// Новый дедлайн - новое напоминание
		job.ReminderSentAt = nil
	}
	if req.Status != nil && *req.Status != job.Status {
		if err := s.changeStatus(job, *req.Status); err != nil {
			return nil, err
		}
	}

	if err := s.jobRepo.Update(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobServiceImpl) changeStatus(job *models.Job, next models.JobStatus) error {
	allowed := false
	for _, st := range jobStatusTransitions[job.Status] {
		if st == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.ErrInvalidStatus("job", "Cannot change job status from "+string(job.Status)+" to "+string(next))
	}
	if next == models.JobStatusOpen && job.Deadline != nil && !job.Deadline.After(timeNow()) {
		return apperrors.ErrDeadlinePassed
	}
	job.Status = next
	return nil
}

func (s *JobServiceImpl) Delete(db *gorm.DB, userID string, role models.UserRole, jobID string) error {
	job, err := s.findOwned(db, userID, role, jobID)
	if err != nil {
		return err
	}

	count, err := s.applicationRepo.CountByJob(db, job.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if count > 0 {
		job.Status = models.JobStatusArchived
		if err := s.jobRepo.Update(db, job); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	}

	if err := s.jobRepo.Delete(db, job.ID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// Close закрывает прием заявок, соискателей не уведомляем
func (s *JobServiceImpl) Close(db *gorm.DB, userID string, role models.UserRole, jobID string) (*models.Job, error) {
	job, err := s.findOwned(db, userID, role, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusClosed {
		return job, nil
	}
	if err := s.changeStatus(job, models.JobStatusClosed); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobServiceImpl) Get(db *gorm.DB, viewerID string, role models.UserRole, jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	owner := isJobOwner(job, viewerID)
	if !owner && role != models.UserRoleAdmin {
		if job.IsHidden || job.Status == models.JobStatusDraft || job.Status == models.JobStatusArchived {
			return nil, apperrors.ErrNotFound(repositories.ErrJobNotFound)
		}
	}

	resp := &dto.JobResponse{Job: job}

	if !owner {
		if err := s.jobRepo.IncrementViews(db, job.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		job.Views++
	}

	if owner || role == models.UserRoleAdmin {
		count, err := s.applicationRepo.CountByJob(db, job.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		resp.Applicants = &count
	}

	if role == models.UserRoleStudent && viewerID != "" {
		savedIDs, err := s.savedJobRepo.JobIDsByUser(db, viewerID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		saved := contains(savedIDs, job.ID)
		resp.IsSaved = &saved
	}

	return resp, nil
}

func (s *JobServiceImpl) Search(db *gorm.DB, viewerID string, role models.UserRole, req *dto.JobSearchRequest) (*dto.Page[dto.JobResponse], error) {
	filter := repositories.JobFilter{
		Query:         strings.TrimSpace(req.Query),
		Location:      strings.TrimSpace(req.Location),
		JobType:       models.JobType(req.JobType),
		WorkMode:      models.WorkMode(req.WorkMode),
		CompanyID:     req.CompanyID,
		Skills:        splitList(req.Skills),
		MinSalary:     req.MinSalary,
		IncludeHidden: role == models.UserRoleAdmin,
		Sort:          req.Sort,
	}

	switch status := models.JobStatus(req.Status); {
	case status == "":
		filter.Statuses = []models.JobStatus{models.JobStatusOpen}
	case status == models.JobStatusOpen || status == models.JobStatusClosed || role == models.UserRoleAdmin:
		filter.Statuses = []models.JobStatus{status}
	default:
		return nil, apperrors.ErrInsufficientPermissions
	}

	var profile *models.StudentProfile
	if role == models.UserRoleStudent && viewerID != "" && (req.EligibleOnly || req.Sort == repositories.SortRelevance) {
		p, err := s.profileRepo.FindStudentByUserID(db, viewerID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		profile = p
	}
	if req.EligibleOnly && profile != nil {
		filter.Eligible = studentEligibility(profile)
	}

	p := pagination(req.PageRequest)

	// Точная проверка eligibility и ранжирование идут в памяти
	if profile != nil {
		jobs, err := s.rankForStudent(db, filter, profile, req.EligibleOnly, req.Sort == repositories.SortRelevance)
		if err != nil {
			return nil, err
		}
		return s.withSaved(db, viewerID, role, paginateSlice(jobs, p), int64(len(jobs)), p)
	}

	jobs, total, err := s.jobRepo.Search(db, filter, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, dto.JobResponse{Job: &jobs[i]})
	}
	return s.withSaved(db, viewerID, role, items, total, p)
}

// rankForStudent выбирает до MaxTalentCandidates вакансий, фильтрует и сортирует
func (s *JobServiceImpl) rankForStudent(db *gorm.DB, filter repositories.JobFilter, profile *models.StudentProfile, eligibleOnly, byRelevance bool) ([]dto.JobResponse, error) {
	candidates, _, err := s.jobRepo.Search(db, filter, repositories.Pagination{Page: 1, PageSize: repositories.MaxTalentCandidates})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.JobResponse, 0, len(candidates))
	for i := range candidates {
		job := &candidates[i]
		if eligibleOnly && !algorithms.IsEligible(job.Eligibility, profile) {
			continue
		}
		item := dto.JobResponse{Job: job}
		if byRelevance {
			score, matched := algorithms.JobRecommendationScore(job, profile)
			item.Relevance = &score
			item.MatchedSkills = matched
		}
		result = append(result, item)
	}

	if byRelevance {
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].Relevance > *result[j].Relevance
		})
	}
	return result, nil
}

func (s *JobServiceImpl) withSaved(db *gorm.DB, viewerID string, role models.UserRole, items []dto.JobResponse, total int64, p repositories.Pagination) (*dto.Page[dto.JobResponse], error) {
	if role == models.UserRoleStudent && viewerID != "" && len(items) > 0 {
		savedIDs, err := s.savedJobRepo.JobIDsByUser(db, viewerID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for i := range items {
			saved := contains(savedIDs, items[i].ID)
			items[i].IsSaved = &saved
		}
	}
	return toPage(items, total, p), nil
}

// Mine - вакансии рекрутера с количеством откликов
func (s *JobServiceImpl) Mine(db *gorm.DB, recruiterID string, req *dto.PageRequest) (*dto.Page[dto.JobResponse], error) {
	p := pagination(*req)
	jobs, total, err := s.jobRepo.FindByRecruiter(db, recruiterID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	counts, err := s.applicationRepo.CountByJobs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		count := counts[jobs[i].ID]
		items = append(items, dto.JobResponse{Job: &jobs[i], Applicants: &count})
	}
	return toPage(items, total, p), nil
}

// Recommended - открытые вакансии, подходящие студенту, по релевантности
func (s *JobServiceImpl) Recommended(db *gorm.DB, studentID string, req *dto.PageRequest) (*dto.Page[dto.JobResponse], error) {
	profile, err := s.profileRepo.FindStudentByUserID(db, studentID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrInvalidUserRole
		}
		return nil, apperrors.InternalError(err)
	}

	filter := repositories.JobFilter{
		Statuses: []models.JobStatus{models.JobStatusOpen},
		Eligible: studentEligibility(profile),
	}
	jobs, err := s.rankForStudent(db, filter, profile, true, true)
	if err != nil {
		return nil, err
	}

	// Уже поданные заявки не рекомендуем
	applied, err := s.applicationRepo.JobIDsByStudent(db, studentID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	now := timeNow()
	filtered := jobs[:0]
	for _, item := range jobs {
		if contains(applied, item.ID) || !item.IsAcceptingApplications(now) {
			continue
		}
		filtered = append(filtered, item)
	}

	p := pagination(*req)
	return s.withSaved(db, studentID, models.UserRoleStudent, paginateSlice(filtered, p), int64(len(filtered)), p)
}

func (s *JobServiceImpl) Save(db *gorm.DB, userID, jobID string) error {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return handleRepoError(err)
	}
	if job.IsHidden || job.Status == models.JobStatusDraft || job.Status == models.JobStatusArchived {
		return apperrors.ErrNotFound(repositories.ErrJobNotFound)
	}
	if err := s.savedJobRepo.Save(db, userID, jobID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) Unsave(db *gorm.DB, userID, jobID string) error {
	if err := s.savedJobRepo.Delete(db, userID, jobID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

func (s *JobServiceImpl) ListSaved(db *gorm.DB, userID string, req *dto.PageRequest) (*dto.Page[models.SavedJob], error) {
	p := pagination(*req)
	items, total, err := s.savedJobRepo.ListByUser(db, userID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *JobServiceImpl) findOwned(db *gorm.DB, userID string, role models.UserRole, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := ensureJobOwner(job, userID, role); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobServiceImpl) reload(db *gorm.DB, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return job, nil
}

// ==========================
// Helpers
// ==========================

func isJobOwner(job *models.Job, userID string) bool {
	return userID != "" && job.RecruiterID != nil && *job.RecruiterID == userID
}

// ensureJobOwner - владелец вакансии или админ
func ensureJobOwner(job *models.Job, userID string, role models.UserRole) error {
	if role == models.UserRoleAdmin || isJobOwner(job, userID) {
		return nil
	}
	return apperrors.ErrNotJobOwner
}

func studentEligibility(p *models.StudentProfile) *repositories.StudentEligibility {
	return &repositories.StudentEligibility{
		CGPA:           p.CGPA,
		Department:     p.Department,
		GraduationYear: p.GraduationYear,
		Backlogs:       p.ActiveBacklogs,
	}
}

// splitList принимает и skills=a&skills=b, и skills=a,b
func splitList(values []string) []string {
	var result []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

func paginateSlice[T any](items []T, p repositories.Pagination) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
