package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services"
)

// Notifier - часть NotificationService, нужная воркеру
type Notifier interface {
	NotifyMany(db *gorm.DB, userIDs []string, notificationType models.NotificationType, vars services.NotificationVars) (int, error)
}

// ReminderMailer - часть EmailService, нужная воркеру
type ReminderMailer interface {
	SendDeadlineReminder(to, name, jobID, jobTitle, companyName string, deadline time.Time)
}

// DeadlineWorker закрывает просроченные вакансии и напоминает о приближающихся
// дедлайнах студентам, которые сохранили вакансию, но еще не откликнулись.
type DeadlineWorker struct {
	db              *gorm.DB
	jobRepo         repositories.JobRepository
	savedJobRepo    repositories.SavedJobRepository
	applicationRepo repositories.ApplicationRepository
	userRepo        repositories.UserRepository
	notifier        Notifier
	mailer          ReminderMailer
	remindWithin    time.Duration
	now             func() time.Time
}

func NewDeadlineWorker(
	db *gorm.DB,
	jobRepo repositories.JobRepository,
	savedJobRepo repositories.SavedJobRepository,
	applicationRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	mailer ReminderMailer,
) *DeadlineWorker {
	return &DeadlineWorker{
		db:              db,
		jobRepo:         jobRepo,
		savedJobRepo:    savedJobRepo,
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		mailer:          mailer,
		remindWithin:    24 * time.Hour,
		now:             time.Now,
	}
}

func (w *DeadlineWorker) Name() string { return "deadline" }

func (w *DeadlineWorker) RunOnce(ctx context.Context) error {
	db := w.db.WithContext(ctx)
	now := w.now().UTC()

	closed, err := w.jobRepo.CloseExpired(db, now)
	if err != nil {
		return err
	}
	if closed > 0 {
		logger.WorkerLog(w.Name(), "close_expired", nil, "closed", closed)
	}

	jobs, err := w.jobRepo.FindDueForReminder(db, now, w.remindWithin)
	if err != nil {
		return err
	}

	for i := range jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sent, err := w.remind(db, &jobs[i])
		if err != nil {
			// один сломанный job не мешает остальным, повторим на следующем тике
			logger.WorkerLog(w.Name(), "remind", err, "job_id", jobs[i].ID)
			continue
		}
		logger.WorkerLog(w.Name(), "remind", nil, "job_id", jobs[i].ID, "recipients", sent)
	}
	return nil
}

func (w *DeadlineWorker) remind(db *gorm.DB, job *models.Job) (int, error) {
	saved, err := w.savedJobRepo.UserIDsByJob(db, job.ID)
	if err != nil {
		return 0, err
	}
	applied, err := w.applicationRepo.StudentIDsByJob(db, job.ID)
	if err != nil {
		return 0, err
	}

	recipients := difference(saved, applied)

	// сначала отметка: повторный тик не должен слать то же напоминание
	if err := w.jobRepo.MarkReminderSent(db, job.ID, w.now().UTC()); err != nil {
		return 0, err
	}

	if len(recipients) > 0 {
		companyName := ""
		if job.Company != nil {
			companyName = job.Company.Name
		}

		vars := services.NotificationVars{
			"job_id":       job.ID,
			"job_title":    job.Title,
			"company_name": companyName,
			"deadline":     job.Deadline.UTC().Format("02 Jan 2006 15:04 MST"),
		}
		if _, err := w.notifier.NotifyMany(db, recipients, models.NotificationDeadlineReminder, vars); err != nil {
			return 0, err
		}

		if w.mailer != nil {
			users, err := w.userRepo.FindByIDs(db, recipients)
			if err != nil {
				return 0, err
			}
			for _, u := range users {
				if u.Status != models.UserStatusActive {
					continue
				}
				w.mailer.SendDeadlineReminder(u.Email, u.Name, job.ID, job.Title, companyName, *job.Deadline)
			}
		}
	}
	return len(recipients), nil
}

func difference(all, exclude []string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, id := range all {
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
