package services

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

const (
	defaultCalendarRange = 30 * 24 * time.Hour
	maxCalendarRange     = 366 * 24 * time.Hour

	DefaultDeadlineDays = 7
	MaxDeadlineDays     = 60
)

type CalendarService interface {
	Calendar(db *gorm.DB, userID string, role models.UserRole, req *dto.CalendarRequest) ([]dto.CalendarEntry, error)
	UpcomingDeadlines(db *gorm.DB, studentID string, days int) ([]dto.CalendarEntry, error)
	CreateEvent(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateEventRequest) (*models.CalendarEvent, error)
	UpdateEvent(db *gorm.DB, userID string, role models.UserRole, eventID string, req *dto.UpdateEventRequest) (*models.CalendarEvent, error)
	DeleteEvent(db *gorm.DB, userID string, role models.UserRole, eventID string) error
}

type CalendarServiceImpl struct {
	calendarRepo    repositories.CalendarRepository
	jobRepo         repositories.JobRepository
	savedJobRepo    repositories.SavedJobRepository
	applicationRepo repositories.ApplicationRepository
}

func NewCalendarService(
	calendarRepo repositories.CalendarRepository,
	jobRepo repositories.JobRepository,
	savedJobRepo repositories.SavedJobRepository,
	applicationRepo repositories.ApplicationRepository,
) CalendarService {
	return &CalendarServiceImpl{
		calendarRepo:    calendarRepo,
		jobRepo:         jobRepo,
		savedJobRepo:    savedJobRepo,
		applicationRepo: applicationRepo,
	}
}

// Calendar - глобальные и личные события, студентам добавляются дедлайны
// сохраненных и поданных вакансий
func (s *CalendarServiceImpl) Calendar(db *gorm.DB, userID string, role models.UserRole, req *dto.CalendarRequest) ([]dto.CalendarEntry, error) {
	from, to, err := calendarRange(req)
	if err != nil {
		return nil, err
	}

	events, err := s.calendarRepo.ListVisible(db, userID, from, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	entries := make([]dto.CalendarEntry, 0, len(events))
	for i := range events {
		entries = append(entries, eventEntry(&events[i], userID, role))
	}

	if role == models.UserRoleStudent {
		deadlines, err := s.deadlineEntries(db, userID, from, to)
		if err != nil {
			return nil, err
		}
		entries = append(entries, deadlines...)
	}

	sortEntries(entries)
	return entries, nil
}

func (s *CalendarServiceImpl) UpcomingDeadlines(db *gorm.DB, studentID string, days int) ([]dto.CalendarEntry, error) {
	if days <= 0 {
		days = DefaultDeadlineDays
	}
	if days > MaxDeadlineDays {
		days = MaxDeadlineDays
	}

	now := timeNow()
	entries, err := s.deadlineEntries(db, studentID, now, now.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, err
	}
	sortEntries(entries)
	return entries, nil
}

// deadlineEntries - синтетические записи по открытым вакансиям с дедлайном в [from, to]
func (s *CalendarServiceImpl) deadlineEntries(db *gorm.DB, studentID string, from, to time.Time) ([]dto.CalendarEntry, error) {
	saved, err := s.savedJobRepo.JobIDsByUser(db, studentID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	applied, err := s.applicationRepo.JobIDsByStudent(db, studentID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := uniqueStrings(append(saved, applied...))
	if len(ids) == 0 {
		return []dto.CalendarEntry{}, nil
	}

	jobs, err := s.jobRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	entries := make([]dto.CalendarEntry, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		if job.Status != models.JobStatusOpen || job.IsHidden || job.Deadline == nil {
			continue
		}
		if job.Deadline.Before(from) || job.Deadline.After(to) {
			continue
		}
		jobID := job.ID
		entry := dto.CalendarEntry{
			ID:        "deadline-" + job.ID,
			Title:     "Deadline: " + job.Title,
			Type:      models.EventTypeDeadline,
			StartsAt:  *job.Deadline,
			Location:  job.Location,
			JobID:     &jobID,
			Synthetic: true,
		}
		if job.Company != nil {
			entry.CompanyName = job.Company.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CreateEvent - глобальные события создает только админ
func (s *CalendarServiceImpl) CreateEvent(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateEventRequest) (*models.CalendarEvent, error) {
	if req.Global && role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if err := validateEventTimes(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      utcPtr(req.EndsAt),
		Location:    req.Location,
		CreatedBy:   userID,
	}
	if !req.Global {
		owner := userID
		event.OwnerID = &owner
	}
	if req.JobID != nil && *req.JobID != "" {
		if _, err := s.jobRepo.FindByID(db, *req.JobID); err != nil {
			return nil, handleRepoError(err)
		}
		jobID := *req.JobID
		event.JobID = &jobID
	}

	if err := s.calendarRepo.Create(db, event); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return event, nil
}

func (s *CalendarServiceImpl) UpdateEvent(db *gorm.DB, userID string, role models.UserRole, eventID string, req *dto.UpdateEventRequest) (*models.CalendarEvent, error) {
	event, err := s.findEditable(db, userID, role, eventID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.StartsAt != nil {
		event.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		event.EndsAt = utcPtr(req.EndsAt)
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if err := validateEventTimes(event.StartsAt, event.EndsAt); err != nil {
		return nil, err
	}

	if err := s.calendarRepo.Update(db, event); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return event, nil
}

func (s *CalendarServiceImpl) DeleteEvent(db *gorm.DB, userID string, role models.UserRole, eventID string) error {
	event, err := s.findEditable(db, userID, role, eventID)
	if err != nil {
		return err
	}
	if err := s.calendarRepo.Delete(db, event.ID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// findEditable - владелец события или админ. Чужие личные события отдаются как 404.
func (s *CalendarServiceImpl) findEditable(db *gorm.DB, userID string, role models.UserRole, eventID string) (*models.CalendarEvent, error) {
	event, err := s.calendarRepo.FindByID(db, eventID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if role == models.UserRoleAdmin {
		return event, nil
	}
	if event.IsGlobal() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if *event.OwnerID != userID {
		return nil, apperrors.ErrNotFound(repositories.ErrEventNotFound)
	}
	return event, nil
}

func eventEntry(e *models.CalendarEvent, userID string, role models.UserRole) dto.CalendarEntry {
	editable := role == models.UserRoleAdmin || (e.OwnerID != nil && *e.OwnerID == userID)
	return dto.CalendarEntry{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Location:    e.Location,
		JobID:       e.JobID,
		Editable:    editable,
	}
}

func calendarRange(req *dto.CalendarRequest) (time.Time, time.Time, error) {
	from := timeNow()
	if req.From != nil {
		from = req.From.UTC()
	}
	to := from.Add(defaultCalendarRange)
	if req.To != nil {
		to = req.To.UTC()
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.ValidationError(map[string]string{"to": "to must not be before from"})
	}
	if to.Sub(from) > maxCalendarRange {
		return time.Time{}, time.Time{}, apperrors.ValidationError(map[string]string{"to": "range must not exceed one year"})
	}
	return from, to, nil
}

func validateEventTimes(startsAt time.Time, endsAt *time.Time) error {
	if startsAt.IsZero() {
		return apperrors.ValidationError(map[string]string{"starts_at": "starts_at is required"})
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return apperrors.ValidationError(map[string]string{"ends_at": "ends_at must not be before starts_at"})
	}
	return nil
}

func sortEntries(entries []dto.CalendarEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartsAt.Before(entries[j].StartsAt)
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
