package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

func TestUserService_UpdateStatus(t *testing.T) {
	admin := &models.User{Email: "admin@campus.edu", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
	admin.ID = newID()
	student := &models.User{Email: "s@campus.edu", Role: models.UserRoleStudent, Status: models.UserStatusActive}
	student.ID = newID()

	users := newFakeUserRepo(admin, student)
	tokens := newFakeRefreshTokenRepo()
	tokens.tokens["t1"] = &models.RefreshToken{UserID: student.ID, Token: "t1"}
	notifier := &fakeNotifier{}
	emailSvc, _ := newTestEmailService(t)
	svc := NewUserService(users, &fakeProfileRepo{}, tokens, notifier, emailSvc)
	db, mock := newTestDB(t)

	t.Run("self", func(t *testing.T) {
		_, err := svc.UpdateStatus(db, admin.ID, admin.ID, models.UserStatusBanned)
		assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
		assert.Equal(t, models.UserStatusActive, admin.Status)
	})

	t.Run("other admin", func(t *testing.T) {
		other := &models.User{Email: "dean@campus.edu", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
		other.ID = newID()
		users.users[other.ID] = other
		expectRollback(mock)

		_, err := svc.UpdateStatus(db, admin.ID, other.ID, models.UserStatusBanned)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
		assert.Equal(t, models.UserStatusActive, other.Status)
	})

	t.Run("suspend revokes tokens", func(t *testing.T) {
		expectCommit(mock)

		got, err := svc.UpdateStatus(db, admin.ID, student.ID, models.UserStatusSuspended)

		require.NoError(t, err)
		assert.Equal(t, models.UserStatusSuspended, got.Status)
		assert.Empty(t, tokens.tokens)
		sent := notifier.byType(models.NotificationAccountStatus)
		require.Len(t, sent, 1)
		assert.Equal(t, "suspended", sent[0].Vars["status"])
	})

	t.Run("reactivate", func(t *testing.T) {
		expectCommit(mock)
		got, err := svc.UpdateStatus(db, admin.ID, student.ID, models.UserStatusActive)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, got.Status)
		assert.Equal(t, []string{student.ID}, tokens.revoked)
	})
}

func TestUserService_Broadcast(t *testing.T) {
	active := &models.User{Email: "a@campus.edu", Role: models.UserRoleStudent, Status: models.UserStatusActive}
	active.ID = newID()
	recruiter := &models.User{Email: "r@acme.com", Role: models.UserRoleRecruiter, Status: models.UserStatusActive}
	recruiter.ID = newID()
	banned := &models.User{Email: "b@campus.edu", Role: models.UserRoleStudent, Status: models.UserStatusBanned}
	banned.ID = newID()

	notifier := &fakeNotifier{}
	emailSvc, provider := newTestEmailService(t)
	svc := NewUserService(newFakeUserRepo(active, recruiter, banned), &fakeProfileRepo{}, newFakeRefreshTokenRepo(), notifier, emailSvc)
	db, _ := newTestDB(t)

	resp, err := svc.Broadcast(db, &dto.BroadcastRequest{Role: "student", Title: "Drive", Message: "Tomorrow", SendEmail: true})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Recipients)
	sent := notifier.byType(models.NotificationBroadcast)
	require.Len(t, sent, 1)
	assert.Equal(t, active.ID, sent[0].UserID)

	emailSvc.Wait()
	emails := provider.Sent()
	require.Len(t, emails, 1)
	assert.Equal(t, []string{"a@campus.edu"}, emails[0].To)

	resp, err = svc.Broadcast(db, &dto.BroadcastRequest{Title: "All", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Recipients)
}

func TestUserService_VerifyRecruiter(t *testing.T) {
	userID := newID()
	profiles := &fakeProfileRepo{recruiters: map[string]*models.RecruiterProfile{
		userID: {UserID: userID},
	}}
	svc := NewUserService(newFakeUserRepo(), profiles, newFakeRefreshTokenRepo(), &fakeNotifier{}, nil)
	db, _ := newTestDB(t)

	profile, err := svc.VerifyRecruiter(db, userID, true)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)

	_, err = svc.VerifyRecruiter(db, newID(), true)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
