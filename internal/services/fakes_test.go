package services

import (
	"context"
	"io"
	"os"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"placement_backend/internal/email"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
)

// Фейковые репозитории встраивают интерфейс: реализованы только методы,
// которые вызывают тестируемые сервисы.

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", io.Discard)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = prev })
}

// newTestDB - gorm поверх sqlmock: фейковые репозитории не ходят в БД,
// но сервисы открывают транзакции
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func newTestEmailService(t *testing.T) (*EmailService, *email.LogProvider) {
	t.Helper()
	templates, err := email.NewTemplateManager()
	require.NoError(t, err)
	provider := email.NewLogProvider()
	return NewEmailService(provider, templates, "http://localhost:3000"), provider
}

func ptr[T any](v T) *T { return &v }

func newID() string { return uuid.NewString() }

// ---------- users ----------

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ *gorm.DB, id string, status models.UserStatus) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ *gorm.DB, id string, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) FindByIDs(_ *gorm.DB, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindActiveIDs(_ *gorm.DB, role models.UserRole) ([]string, error) {
	var ids []string
	for _, u := range r.users {
		if u.Status == models.UserStatusActive && (role == "" || u.Role == role) {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ---------- profiles ----------

type fakeProfileRepo struct {
	repositories.ProfileRepository
	students   []models.StudentProfile
	recruiters map[string]*models.RecruiterProfile
	lastFilter repositories.TalentFilter
}

func (r *fakeProfileRepo) CreateStudentProfile(_ *gorm.DB, p *models.StudentProfile) error {
	r.students = append(r.students, *p)
	return nil
}

func (r *fakeProfileRepo) CreateRecruiterProfile(_ *gorm.DB, p *models.RecruiterProfile) error {
	if r.recruiters == nil {
		r.recruiters = map[string]*models.RecruiterProfile{}
	}
	r.recruiters[p.UserID] = p
	return nil
}

func (r *fakeProfileRepo) FindStudentByUserID(_ *gorm.DB, userID string) (*models.StudentProfile, error) {
	for i := range r.students {
		if r.students[i].UserID == userID {
			p := r.students[i]
			return &p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) UpdateStudentProfile(_ *gorm.DB, p *models.StudentProfile) error {
	for i := range r.students {
		if r.students[i].UserID == p.UserID {
			r.students[i] = *p
			return nil
		}
	}
	return repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) UpdateRecruiterProfile(_ *gorm.DB, p *models.RecruiterProfile) error {
	if _, ok := r.recruiters[p.UserID]; !ok {
		return repositories.ErrProfileNotFound
	}
	r.recruiters[p.UserID] = p
	return nil
}

func (r *fakeProfileRepo) SearchStudents(_ *gorm.DB, filter repositories.TalentFilter) ([]models.StudentProfile, error) {
	r.lastFilter = filter
	out := make([]models.StudentProfile, len(r.students))
	copy(out, r.students)
	return out, nil
}

func (r *fakeProfileRepo) FindRecruiterByUserID(_ *gorm.DB, userID string) (*models.RecruiterProfile, error) {
	p, ok := r.recruiters[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) SetRecruiterVerified(_ *gorm.DB, userID string, verified bool) error {
	p, ok := r.recruiters[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.IsVerified = verified
	return nil
}

// ---------- companies ----------

type fakeCompanyRepo struct {
	repositories.CompanyRepository
	companies    map[string]*models.Company
	recalculated []string
	openJobs     map[string]int64
}

func newFakeCompanyRepo(companies ...*models.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[string]*models.Company{}}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(_ *gorm.DB, c *models.Company) error {
	for _, existing := range r.companies {
		if existing.Name == c.Name {
			return repositories.ErrCompanyAlreadyExists
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) FindByID(_ *gorm.DB, id string) (*models.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, repositories.ErrCompanyNotFound
	}
	return c, nil
}

func (r *fakeCompanyRepo) Update(_ *gorm.DB, c *models.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) CountOpenJobs(_ *gorm.DB, id string) (int64, error) {
	return r.openJobs[id], nil
}

func (r *fakeCompanyRepo) SetVerified(_ *gorm.DB, id string, verified bool) error {
	c, ok := r.companies[id]
	if !ok {
		return repositories.ErrCompanyNotFound
	}
	c.IsVerified = verified
	return nil
}

func (r *fakeCompanyRepo) RecalculateRating(_ *gorm.DB, id string) error {
	r.recalculated = append(r.recalculated, id)
	return nil
}

// ---------- jobs ----------

type fakeJobRepo struct {
	repositories.JobRepository
	jobs       map[string]*models.Job
	created    []*models.Job
	lastFilter repositories.JobFilter
}

func newFakeJobRepo(jobs ...*models.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[string]*models.Job{}}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(_ *gorm.DB, job *models.Job) error {
	if job.ID == "" {
		job.ID = newID()
	}
	r.jobs[job.ID] = job
	r.created = append(r.created, job)
	return nil
}

func (r *fakeJobRepo) FindByID(_ *gorm.DB, id string) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	return j, nil
}

// Search учитывает только статус и скрытие, порядок - по названию
func (r *fakeJobRepo) Search(_ *gorm.DB, filter repositories.JobFilter, p repositories.Pagination) ([]models.Job, int64, error) {
	r.lastFilter = filter
	var out []models.Job
	for _, j := range r.jobs {
		if j.IsHidden && !filter.IncludeHidden {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, j.Status) {
			continue
		}
		out = append(out, *j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Title < out[b].Title })
	total := int64(len(out))
	return paginateSlice(out, p), total, nil
}

func (r *fakeJobRepo) FindByIDs(_ *gorm.DB, ids []string) ([]models.Job, error) {
	var out []models.Job
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Update(_ *gorm.DB, job *models.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.jobs[id]; !ok {
		return repositories.ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) SetHidden(_ *gorm.DB, id string, hidden bool) error {
	j, ok := r.jobs[id]
	if !ok {
		return repositories.ErrJobNotFound
	}
	j.IsHidden = hidden
	return nil
}

func (r *fakeJobRepo) ExistsByExternalID(_ *gorm.DB, feedID, externalID string) (bool, error) {
	for _, j := range r.jobs {
		if j.FeedID != nil && *j.FeedID == feedID && j.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

// ---------- saved jobs ----------

type fakeSavedJobRepo struct {
	repositories.SavedJobRepository
	saved map[string][]string // user -> jobs
}

func (r *fakeSavedJobRepo) JobIDsByUser(_ *gorm.DB, userID string) ([]string, error) {
	return r.saved[userID], nil
}

// ---------- applications ----------

type fakeApplicationRepo struct {
	repositories.ApplicationRepository
	apps map[string]*models.Application
}

func newFakeApplicationRepo(apps ...*models.Application) *fakeApplicationRepo {
	r := &fakeApplicationRepo{apps: map[string]*models.Application{}}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func (r *fakeApplicationRepo) Create(_ *gorm.DB, app *models.Application) error {
	for _, a := range r.apps {
		if a.JobID == app.JobID && a.StudentID == app.StudentID {
			return repositories.ErrApplicationExists
		}
	}
	if app.ID == "" {
		app.ID = newID()
	}
	r.apps[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) FindByID(_ *gorm.DB, id string) (*models.Application, error) {
	a, ok := r.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	return a, nil
}

func (r *fakeApplicationRepo) FindByJobAndStudent(_ *gorm.DB, jobID, studentID string) (*models.Application, error) {
	for _, a := range r.apps {
		if a.JobID == jobID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) Update(_ *gorm.DB, app *models.Application) error {
	r.apps[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) CountByJob(_ *gorm.DB, jobID string) (int64, error) {
	var n int64
	for _, a := range r.apps {
		if a.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicationRepo) JobIDsByStudent(_ *gorm.DB, studentID string) ([]string, error) {
	var ids []string
	for _, a := range r.apps {
		if a.StudentID == studentID {
			ids = append(ids, a.JobID)
		}
	}
	return ids, nil
}

// ---------- invitations ----------

type fakeInvitationRepo struct {
	repositories.InvitationRepository
	invitations map[string]*models.Invitation
}

func newFakeInvitationRepo(invs ...*models.Invitation) *fakeInvitationRepo {
	r := &fakeInvitationRepo{invitations: map[string]*models.Invitation{}}
	for _, i := range invs {
		r.invitations[i.ID] = i
	}
	return r
}

func (r *fakeInvitationRepo) Create(_ *gorm.DB, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = newID()
	}
	r.invitations[inv.ID] = inv
	return nil
}

func (r *fakeInvitationRepo) FindByID(_ *gorm.DB, id string) (*models.Invitation, error) {
	i, ok := r.invitations[id]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	return i, nil
}

func (r *fakeInvitationRepo) HasPending(_ *gorm.DB, jobID, studentID string, now time.Time) (bool, error) {
	for _, i := range r.invitations {
		if i.JobID == jobID && i.StudentID == studentID &&
			i.Status == models.InvitationStatusPending && now.Before(i.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvitationRepo) Update(_ *gorm.DB, inv *models.Invitation) error {
	r.invitations[inv.ID] = inv
	return nil
}

// ---------- calendar ----------

type fakeCalendarRepo struct {
	repositories.CalendarRepository
	events map[string]*models.CalendarEvent
}

func newFakeCalendarRepo(events ...*models.CalendarEvent) *fakeCalendarRepo {
	r := &fakeCalendarRepo{events: map[string]*models.CalendarEvent{}}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeCalendarRepo) Create(_ *gorm.DB, e *models.CalendarEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	r.events[e.ID] = e
	return nil
}

func (r *fakeCalendarRepo) FindByID(_ *gorm.DB, id string) (*models.CalendarEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return e, nil
}

func (r *fakeCalendarRepo) Update(_ *gorm.DB, e *models.CalendarEvent) error {
	r.events[e.ID] = e
	return nil
}

func (r *fakeCalendarRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeCalendarRepo) ListVisible(_ *gorm.DB, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range r.events {
		if e.OwnerID != nil && *e.OwnerID != userID {
			continue
		}
		if e.StartsAt.Before(from) || e.StartsAt.After(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// ---------- reviews ----------

type fakeReviewRepo struct {
	repositories.ReviewRepository
	reviews map[string]*models.Review
}

func newFakeReviewRepo(reviews ...*models.Review) *fakeReviewRepo {
	r := &fakeReviewRepo{reviews: map[string]*models.Review{}}
	for _, rv := range reviews {
		r.reviews[rv.ID] = rv
	}
	return r
}

func (r *fakeReviewRepo) Create(_ *gorm.DB, review *models.Review) error {
	for _, rv := range r.reviews {
		if rv.CompanyID == review.CompanyID && rv.AuthorID == review.AuthorID {
			return repositories.ErrReviewAlreadyExists
		}
	}
	if review.ID == "" {
		review.ID = newID()
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) FindByID(_ *gorm.DB, id string) (*models.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, repositories.ErrReviewNotFound
	}
	return rv, nil
}

func (r *fakeReviewRepo) Update(_ *gorm.DB, review *models.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return repositories.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

// ---------- reports ----------

type fakeReportRepo struct {
	repositories.ReportRepository
	reports map[string]*models.Report
}

func newFakeReportRepo(reports ...*models.Report) *fakeReportRepo {
	r := &fakeReportRepo{reports: map[string]*models.Report{}}
	for _, rp := range reports {
		r.reports[rp.ID] = rp
	}
	return r
}

func (r *fakeReportRepo) Create(_ *gorm.DB, report *models.Report) error {
	for _, rp := range r.reports {
		if rp.ReporterID == report.ReporterID && rp.TargetType == report.TargetType &&
			rp.TargetID == report.TargetID && rp.Status == models.ReportStatusOpen {
			return repositories.ErrReportExists
		}
	}
	if report.ID == "" {
		report.ID = newID()
	}
	r.reports[report.ID] = report
	return nil
}

func (r *fakeReportRepo) FindByID(_ *gorm.DB, id string) (*models.Report, error) {
	rp, ok := r.reports[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return rp, nil
}

func (r *fakeReportRepo) Update(_ *gorm.DB, report *models.Report) error {
	r.reports[report.ID] = report
	return nil
}

// ---------- refresh tokens ----------

type fakeRefreshTokenRepo struct {
	repositories.RefreshTokenRepository
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(_ *gorm.DB, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeRefreshTokenRepo) FindByToken(_ *gorm.DB, token string) (*models.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	return t, nil
}

func (r *fakeRefreshTokenRepo) DeleteByToken(_ *gorm.DB, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ *gorm.DB, userID string) error {
	r.revoked = append(r.revoked, userID)
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

// ---------- forum ----------

type fakeForumRepo struct {
	repositories.ForumRepository
	posts    map[string]*models.ForumPost
	comments map[string]*models.ForumComment
}

func newFakeForumRepo(posts ...*models.ForumPost) *fakeForumRepo {
	r := &fakeForumRepo{posts: map[string]*models.ForumPost{}, comments: map[string]*models.ForumComment{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakeForumRepo) FindPostByID(_ *gorm.DB, id string, includeHidden bool) (*models.ForumPost, error) {
	p, ok := r.posts[id]
	if !ok || (p.IsHidden && !includeHidden) {
		return nil, repositories.ErrPostNotFound
	}
	return p, nil
}

func (r *fakeForumRepo) CreateComment(_ *gorm.DB, c *models.ForumComment) error {
	if c.ID == "" {
		c.ID = newID()
	}
	r.comments[c.ID] = c
	if p, ok := r.posts[c.PostID]; ok {
		p.CommentCount++
	}
	return nil
}

func (r *fakeForumRepo) FindCommentByID(_ *gorm.DB, id string) (*models.ForumComment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	return c, nil
}

func (r *fakeForumRepo) DeleteComment(_ *gorm.DB, c *models.ForumComment) error {
	delete(r.comments, c.ID)
	return nil
}

func (r *fakeForumRepo) SetPostHidden(_ *gorm.DB, id string, hidden bool) error {
	p, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p.IsHidden = hidden
	return nil
}

func (r *fakeForumRepo) SetCommentHidden(_ *gorm.DB, id string, hidden bool) error {
	c, ok := r.comments[id]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	c.IsHidden = hidden
	return nil
}

// ---------- messages ----------

type fakeMessageRepo struct {
	repositories.MessageRepository
	conversations map[string]*models.Conversation
	messages      []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{conversations: map[string]*models.Conversation{}}
}

func (r *fakeMessageRepo) FindOrCreateConversation(_ *gorm.DB, a, b string, now time.Time) (*models.Conversation, error) {
	pa, pb := models.ConversationPair(a, b)
	for _, c := range r.conversations {
		if c.ParticipantA == pa && c.ParticipantB == pb {
			return c, nil
		}
	}
	c := &models.Conversation{ParticipantA: pa, ParticipantB: pb, LastMessageAt: now}
	c.ID = newID()
	r.conversations[c.ID] = c
	return c, nil
}

func (r *fakeMessageRepo) FindConversationByID(_ *gorm.DB, id string) (*models.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, repositories.ErrConversationNotFound
	}
	return c, nil
}

func (r *fakeMessageRepo) CreateMessage(_ *gorm.DB, m *models.Message) error {
	if m.ID == "" {
		m.ID = newID()
	}
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) TouchConversation(_ *gorm.DB, id string, at time.Time) error {
	if c, ok := r.conversations[id]; ok {
		c.LastMessageAt = at
	}
	return nil
}

// ---------- notifications ----------

type fakeNotificationRepo struct {
	repositories.NotificationRepository
	templates     map[models.NotificationType]*models.NotificationTemplate
	notifications map[string]*models.Notification
	batches       int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		templates:     map[models.NotificationType]*models.NotificationTemplate{},
		notifications: map[string]*models.Notification{},
	}
}

func (r *fakeNotificationRepo) Create(_ *gorm.DB, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(db *gorm.DB, batch []*models.Notification) error {
	r.batches++
	for _, n := range batch {
		_ = r.Create(db, n)
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(_ *gorm.DB, id string) (*models.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ *gorm.DB, id string, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	return nil
}

func (r *fakeNotificationRepo) FindTemplate(_ *gorm.DB, t models.NotificationType) (*models.NotificationTemplate, error) {
	tpl, ok := r.templates[t]
	if !ok {
		return nil, repositories.ErrTemplateNotFound
	}
	return tpl, nil
}

func (r *fakeNotificationRepo) SaveTemplate(_ *gorm.DB, tpl *models.NotificationTemplate) error {
	r.templates[tpl.Type] = tpl
	return nil
}

// fakeNotifier записывает вызовы Notify вместо рендеринга шаблонов
type fakeNotifier struct {
	NotificationService
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	UserID string
	Type   models.NotificationType
	Vars   NotificationVars
}

func (n *fakeNotifier) Notify(_ *gorm.DB, userID string, t models.NotificationType, vars NotificationVars) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: t, Vars: vars})
	return &models.Notification{UserID: userID, Type: t}, nil
}

func (n *fakeNotifier) NotifyMany(db *gorm.DB, userIDs []string, t models.NotificationType, vars NotificationVars) (int, error) {
	for _, id := range userIDs {
		_, _ = n.Notify(db, id, t, vars)
	}
	return len(userIDs), nil
}

func (n *fakeNotifier) byType(t models.NotificationType) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// recordingPusher - websocket хаб для тестов
type recordingPusher struct {
	mu     sync.Mutex
	pushed map[string][]interface{}
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{pushed: map[string][]interface{}{}}
}

func (p *recordingPusher) SendToUser(userID string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed[userID] = append(p.pushed[userID], payload)
}

func (p *recordingPusher) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed[userID])
}

// ---------- analytics / feeds ----------

type fakeAnalyticsRepo struct {
	calls int
	stats *repositories.PlatformStats
}

func (r *fakeAnalyticsRepo) GetPlatformStats(_ *gorm.DB) (*repositories.PlatformStats, error) {
	r.calls++
	return r.stats, nil
}

type fakeFeedRepo struct {
	repositories.FeedRepository
	feeds map[string]*models.JobFeed
}

func newFakeFeedRepo(feeds ...*models.JobFeed) *fakeFeedRepo {
	r := &fakeFeedRepo{feeds: map[string]*models.JobFeed{}}
	for _, f := range feeds {
		r.feeds[f.ID] = f
	}
	return r
}

func (r *fakeFeedRepo) Create(_ *gorm.DB, f *models.JobFeed) error {
	for _, existing := range r.feeds {
		if existing.URL == f.URL {
			return repositories.ErrFeedAlreadyExists
		}
	}
	if f.ID == "" {
		f.ID = newID()
	}
	r.feeds[f.ID] = f
	return nil
}

func (r *fakeFeedRepo) FindByID(_ *gorm.DB, id string) (*models.JobFeed, error) {
	f, ok := r.feeds[id]
	if !ok {
		return nil, repositories.ErrFeedNotFound
	}
	return f, nil
}

func (r *fakeFeedRepo) ListActive(_ *gorm.DB) ([]models.JobFeed, error) {
	var out []models.JobFeed
	for _, f := range r.feeds {
		if f.IsActive {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFeedRepo) Update(_ *gorm.DB, f *models.JobFeed) error {
	r.feeds[f.ID] = f
	return nil
}

type fakeFeedParser struct {
	feed *gofeed.Feed
	err  error
	urls []string
}

func (p *fakeFeedParser) ParseURLWithContext(url string, _ context.Context) (*gofeed.Feed, error) {
	p.urls = append(p.urls, url)
	return p.feed, p.err
}
