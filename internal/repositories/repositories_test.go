package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"placement_backend/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500)
	assert.Equal(t, MaxPageSize, p.Limit())
	assert.Equal(t, 200, p.Offset())
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%golang%", likePattern("  GoLang "))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(db, "nobody@university.edu")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("asha@university.edu").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(db, &models.User{Email: "asha@university.edu"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateStatus_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectExec(`UPDATE "users" SET "status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(db, "missing", models.UserStatusBanned)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE role = \$1 AND \(\(LOWER\(email\) LIKE \$2 OR LOWER\(name\) LIKE \$3\)\)`).
		WithArgs(models.UserRoleStudent, "%asha%", "%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE .* ORDER BY created_at DESC LIMIT \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).AddRow("u1", "asha@university.edu", "student"))

	users, total, err := repo.List(db, UserFilter{Role: models.UserRoleStudent, Query: "Asha"}, NewPagination(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "asha@university.edu", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_DeleteByToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefreshTokenRepository()

	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE token = \$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByToken(db, "gone"), ErrRefreshTokenNotFound)

	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE expires_at < \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteExpired(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestJobRepository_SearchBuildsFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository()

	filter := JobFilter{
		Query:    "backend",
		JobType:  models.JobTypeFullTime,
		Skills:   []string{"Go"},
		Statuses: []models.JobStatus{models.JobStatusOpen},
		Sort:     SortSalary,
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "jobs" WHERE \(\(LOWER\(title\) LIKE \$1 OR LOWER\(description\) LIKE \$2\)\) AND job_type = \$3 AND LOWER\(CAST\(skills AS TEXT\)\) LIKE \$4 AND status IN \(\$5\) AND is_hidden = \$6`).
		WithArgs("%backend%", "%backend%", models.JobTypeFullTime, `%"go"%`, models.JobStatusOpen, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE .* ORDER BY salary_max DESC, created_at DESC LIMIT \$7`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	jobs, total, err := repo.Search(db, filter, NewPagination(1, 20))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_SearchEligibleOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository()

	filter := JobFilter{
		Eligible: &StudentEligibility{CGPA: 8.1, Department: "CSE", GraduationYear: 2026, Backlogs: 0},
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "jobs" WHERE is_hidden = \$1 AND eligibility_min_cgpa <= \$2` +
		` AND \(\(eligibility_max_backlogs IS NULL OR eligibility_max_backlogs >= \$3\)\)` +
		` AND \(\(\(eligibility_branches IS NULL OR LOWER\(CAST\(eligibility_branches AS TEXT\)\) IN \('null', '\[\]'\)\) OR LOWER\(CAST\(eligibility_branches AS TEXT\)\) LIKE \$4\)\)` +
		` AND \(\(\(eligibility_graduation_years IS NULL OR LOWER\(CAST\(eligibility_graduation_years AS TEXT\)\) IN \('null', '\[\]'\)\) OR LOWER\(CAST\(eligibility_graduation_years AS TEXT\)\) LIKE \$5\)\)`).
		WithArgs(false, 8.1, 0, `%"cse"%`, "%2026%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "jobs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.Search(db, filter, NewPagination(1, 20))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_CloseExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository()

	mock.ExpectExec(`UPDATE "jobs" SET "status"=\$1,"updated_at"=\$2 WHERE status = \$3 AND deadline IS NOT NULL AND deadline <= \$4`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.CloseExpired(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestApplicationRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "applications" WHERE job_id = \$1 AND student_id = \$2`).
		WithArgs("j1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(db, &models.Application{JobID: "j1", StudentID: "s1"})
	assert.ErrorIs(t, err, ErrApplicationExists)
}

func TestApplicationRepository_CreateConcurrentDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository()

	// параллельный запрос успел вставить строку между проверкой и INSERT
	mock.ExpectQuery(`SELECT count\(\*\) FROM "applications" WHERE job_id = \$1 AND student_id = \$2`).
		WithArgs("j1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO "applications"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_application_job_student"})

	err := repo.Create(db, &models.Application{JobID: "j1", StudentID: "s1"})
	assert.ErrorIs(t, err, ErrApplicationExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_CreateConcurrentDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE company_id = \$1 AND author_id = \$2`).
		WithArgs("c1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO "reviews"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_review_company_author"})

	err := repo.Create(db, &models.Review{CompanyID: "c1", AuthorID: "s1", Rating: 4})
	assert.ErrorIs(t, err, ErrReviewAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_CountByJobs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository()

	mock.ExpectQuery(`SELECT job_id, COUNT\(\*\) AS count FROM "applications" WHERE job_id IN \(\$1,\$2\) AND status <> \$3 GROUP BY "job_id"`).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "count"}).AddRow("j1", 4))

	counts, err := repo.CountByJobs(db, []string{"j1", "j2"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts["j1"])
	assert.Equal(t, int64(0), counts["j2"])
}

func TestInvitationRepository_ExpirePending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvitationRepository()

	mock.ExpectExec(`UPDATE "invitations" SET "status"=\$1,"updated_at"=\$2 WHERE status = \$3 AND expires_at <= \$4`).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.ExpirePending(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestNotificationRepository_CountUnreadAndMarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND is_read = \$2`).
		WithArgs("u1", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountUnread(db, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	mock.ExpectExec(`UPDATE "notifications" SET .*"is_read"=\$\d`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkRead(db, "missing", time.Now()), ErrNotificationNotFound)
}

func TestMessageRepository_FindOrCreateConversation_Existing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository()

	// пара упорядочивается: a < b
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE participant_a = \$1 AND participant_b = \$2`).
		WithArgs("a-user", "b-user", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_a", "participant_b"}).AddRow("c1", "a-user", "b-user"))

	conv, err := repo.FindOrCreateConversation(db, "b-user", "a-user", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_CreateDuplicateOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reports" WHERE reporter_id = \$1 AND target_type = \$2 AND target_id = \$3 AND status = \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(db, &models.Report{ReporterID: "u1", TargetType: models.ReportTargetJob, TargetID: "j1"})
	assert.ErrorIs(t, err, ErrReportExists)
}

func TestAnalyticsRepository_GetPlatformStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalyticsRepository()

	mock.ExpectQuery(`SELECT role AS group_key, COUNT\(\*\) AS count FROM "users" GROUP BY "role"`).
		WillReturnRows(sqlmock.NewRows([]string{"group_key", "count"}).AddRow("student", 40).AddRow("recruiter", 5))
	mock.ExpectQuery(`SELECT status AS group_key, COUNT\(\*\) AS count FROM "users" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"group_key", "count"}).AddRow("active", 44))
	mock.ExpectQuery(`SELECT status AS group_key, COUNT\(\*\) AS count FROM "jobs" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"group_key", "count"}).AddRow("open", 12))
	mock.ExpectQuery(`SELECT status AS group_key, COUNT\(\*\) AS count FROM "applications" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"group_key", "count"}).AddRow("applied", 30).AddRow("hired", 3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reports" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	stats, err := repo.GetPlatformStats(db)
	require.NoError(t, err)
	assert.Equal(t, int64(40), stats.UsersByRole["student"])
	assert.Equal(t, int64(3), stats.Hires)
	assert.Equal(t, int64(6), stats.Companies)
	assert.Equal(t, int64(2), stats.OpenReports)
	assert.Equal(t, int64(1), stats.PendingReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}
