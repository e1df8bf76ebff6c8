package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type moderationFixture struct {
	service   ModerationService
	reports   *fakeReportRepo
	jobs      *fakeJobRepo
	forum     *fakeForumRepo
	reviews   *fakeReviewRepo
	companies *fakeCompanyRepo
	users     *fakeUserRepo
	tokens    *fakeRefreshTokenRepo
	notifier  *fakeNotifier

	admin  *models.User
	author *models.User
	post   *models.ForumPost
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()
	freezeTime(t)

	admin := &models.User{Email: "admin@campus.edu", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
	admin.ID = newID()
	author := &models.User{Email: "author@campus.edu", Role: models.UserRoleStudent, Status: models.UserStatusActive}
	author.ID = newID()
	post := &models.ForumPost{AuthorID: author.ID, Title: "Spam"}
	post.ID = newID()

	f := &moderationFixture{
		reports:   newFakeReportRepo(),
		jobs:      newFakeJobRepo(),
		forum:     newFakeForumRepo(post),
		reviews:   newFakeReviewRepo(),
		companies: newFakeCompanyRepo(),
		users:     newFakeUserRepo(admin, author),
		tokens:    newFakeRefreshTokenRepo(),
		notifier:  &fakeNotifier{},
		admin:     admin,
		author:    author,
		post:      post,
	}
	f.service = NewModerationService(f.reports, f.jobs, f.forum, f.reviews, f.companies, f.users, f.tokens, f.notifier)
	return f
}

func (f *moderationFixture) openReport(targetType models.ReportTarget, targetID string) *models.Report {
	r := &models.Report{ReporterID: newID(), TargetType: targetType, TargetID: targetID, Status: models.ReportStatusOpen}
	r.ID = newID()
	f.reports.reports[r.ID] = r
	return r
}

func TestModerationService_Report(t *testing.T) {
	f := newModerationFixture(t)
	db, _ := newTestDB(t)
	reporter := newID()

	report, err := f.service.Report(db, reporter, &dto.CreateReportRequest{
		TargetType: models.ReportTargetForumPost,
		TargetID:   f.post.ID,
		Reason:     " advertising ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusOpen, report.Status)
	assert.Equal(t, "advertising", report.Reason)

	_, err = f.service.Report(db, reporter, &dto.CreateReportRequest{
		TargetType: models.ReportTargetForumPost,
		TargetID:   f.post.ID,
		Reason:     "again",
	})
	assert.ErrorIs(t, err, apperrors.ErrReportExists)

	_, err = f.service.Report(db, reporter, &dto.CreateReportRequest{
		TargetType: models.ReportTargetJob,
		TargetID:   newID(),
		Reason:     "missing",
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	_, err = f.service.Report(db, f.author.ID, &dto.CreateReportRequest{
		TargetType: models.ReportTargetUser,
		TargetID:   f.author.ID,
		Reason:     "me",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestModerationService_ResolveHide(t *testing.T) {
	f := newModerationFixture(t)
	report := f.openReport(models.ReportTargetForumPost, f.post.ID)
	db, mock := newTestDB(t)
	expectCommit(mock)

	got, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionHide, Note: "spam"})

	require.NoError(t, err)
	assert.True(t, f.post.IsHidden)
	assert.Equal(t, models.ReportStatusResolved, got.Status)
	assert.Equal(t, f.admin.ID, *got.ResolverID)
	assert.Equal(t, fixedNow, *got.ResolvedAt)
	assert.Empty(t, f.notifier.sent)
}

func TestModerationService_ResolveHideReview(t *testing.T) {
	f := newModerationFixture(t)
	companyID := newID()
	review := &models.Review{CompanyID: companyID, AuthorID: f.author.ID, Rating: 1, Status: models.ReviewStatusApproved}
	review.ID = newID()
	f.reviews.reviews[review.ID] = review
	report := f.openReport(models.ReportTargetReview, review.ID)
	db, mock := newTestDB(t)
	expectCommit(mock)

	_, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionHide})

	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, review.Status)
	assert.Equal(t, []string{companyID}, f.companies.recalculated)
}

func TestModerationService_ResolveBan(t *testing.T) {
	f := newModerationFixture(t)
	report := f.openReport(models.ReportTargetForumPost, f.post.ID)
	db, mock := newTestDB(t)
	expectCommit(mock)

	got, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionBanUser})

	require.NoError(t, err)
	assert.Equal(t, models.ReportActionBanUser, got.Action)
	assert.Equal(t, models.UserStatusBanned, f.author.Status)
	assert.Equal(t, []string{f.author.ID}, f.tokens.revoked)

	sent := f.notifier.byType(models.NotificationAccountStatus)
	require.Len(t, sent, 1)
	assert.Equal(t, f.author.ID, sent[0].UserID)
	assert.Equal(t, "banned", sent[0].Vars["status"])
}

func TestModerationService_ResolveRules(t *testing.T) {
	t.Run("dismiss", func(t *testing.T) {
		f := newModerationFixture(t)
		report := f.openReport(models.ReportTargetForumPost, f.post.ID)
		db, mock := newTestDB(t)
		expectCommit(mock)
		expectRollback(mock)

		got, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionDismiss})
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusDismissed, got.Status)
		assert.False(t, f.post.IsHidden)

		// повторное решение
		_, err = f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionHide})
		assert.ErrorIs(t, err, apperrors.ErrReportResolved)
	})

	t.Run("admin cannot be suspended", func(t *testing.T) {
		f := newModerationFixture(t)
		other := &models.User{Email: "other-admin@campus.edu", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
		other.ID = newID()
		f.users.users[other.ID] = other
		report := f.openReport(models.ReportTargetUser, other.ID)
		db, mock := newTestDB(t)
		expectRollback(mock)

		_, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionHide})

		require.Error(t, err)
		assert.Equal(t, models.UserStatusActive, other.Status)
		assert.Equal(t, models.ReportStatusOpen, report.Status)
	})

	t.Run("admin cannot ban themselves", func(t *testing.T) {
		f := newModerationFixture(t)
		f.post.AuthorID = f.admin.ID
		report := f.openReport(models.ReportTargetForumPost, f.post.ID)
		db, mock := newTestDB(t)
		expectRollback(mock)

		_, err := f.service.Resolve(db, f.admin.ID, report.ID, &dto.ResolveReportRequest{Action: models.ReportActionBanUser})
		assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	})
}
