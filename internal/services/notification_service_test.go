package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

func TestNotificationService_NotifyDefaultTemplate(t *testing.T) {
	// Arrange
	repo := newFakeNotificationRepo()
	pusher := newRecordingPusher()
	svc := NewNotificationService(repo, pusher)
	db, _ := newTestDB(t)
	userID := newID()

	// Act
	n, err := svc.Notify(db, userID, models.NotificationApplicationStatus, NotificationVars{
		"job_title":    "Backend Intern",
		"company_name": "Acme",
		"status":       "shortlisted",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Application update: Backend Intern", n.Title)
	assert.Equal(t, "Your application for Backend Intern at Acme is now shortlisted.", n.Message)
	assert.Equal(t, 1, pusher.count(userID))

	var data map[string]string
	require.NoError(t, json.Unmarshal(n.Data, &data))
	assert.Equal(t, "shortlisted", data["status"])
}

func TestNotificationService_NotifyStoredTemplate(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil)
	db, _ := newTestDB(t)

	repo.templates[models.NotificationBroadcast] = &models.NotificationTemplate{
		Type:     models.NotificationBroadcast,
		Title:    "[Placement Cell] {{ title | upcase }}",
		Body:     "{{ message }}",
		IsActive: true,
	}

	n, err := svc.Notify(db, newID(), models.NotificationBroadcast, NotificationVars{"title": "drive", "message": "Tomorrow 10am"})
	require.NoError(t, err)
	assert.Equal(t, "[Placement Cell] DRIVE", n.Title)
	assert.Equal(t, "Tomorrow 10am", n.Message)

	// выключенный шаблон - снова встроенный
	repo.templates[models.NotificationBroadcast].IsActive = false
	n, err = svc.Notify(db, newID(), models.NotificationBroadcast, NotificationVars{"title": "drive", "message": "x"})
	require.NoError(t, err)
	assert.Equal(t, "drive", n.Title)
}

func TestNotificationService_BrokenStoredTemplateFallsBack(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil)
	db, _ := newTestDB(t)
	repo.templates[models.NotificationAccountStatus] = &models.NotificationTemplate{
		Type:     models.NotificationAccountStatus,
		Title:    "{% if status %}never closed",
		Body:     "body",
		IsActive: true,
	}

	n, err := svc.Notify(db, newID(), models.NotificationAccountStatus, NotificationVars{"status": "active"})

	require.NoError(t, err)
	assert.Equal(t, "Account active", n.Title)
}

func TestNotificationService_NotifyMany(t *testing.T) {
	repo := newFakeNotificationRepo()
	pusher := newRecordingPusher()
	svc := NewNotificationService(repo, pusher)
	db, _ := newTestDB(t)
	ids := []string{newID(), newID(), newID()}

	count, err := svc.NotifyMany(db, ids, models.NotificationBroadcast, NotificationVars{"title": "Hi", "message": "All"})

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, repo.batches)
	assert.Len(t, repo.notifications, 3)
	for _, id := range ids {
		assert.Equal(t, 1, pusher.count(id))
	}

	count, err = svc.NotifyMany(db, nil, models.NotificationBroadcast, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_MarkReadOwnership(t *testing.T) {
	freezeTime(t)
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil)
	db, _ := newTestDB(t)
	owner := newID()
	n, err := svc.Notify(db, owner, models.NotificationBroadcast, NotificationVars{"title": "a", "message": "b"})
	require.NoError(t, err)

	err = svc.MarkRead(db, newID(), n.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	require.NoError(t, svc.MarkRead(db, owner, n.ID))
	assert.True(t, repo.notifications[n.ID].IsRead)
	assert.Equal(t, fixedNow, *repo.notifications[n.ID].ReadAt)
}

func TestNotificationService_UpdateTemplate(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil)
	db, _ := newTestDB(t)

	_, err := svc.UpdateTemplate(db, "unknown_type", &dto.UpdateTemplateRequest{Title: "x", Body: "y"})
	assert.Error(t, err)

	_, err = svc.UpdateTemplate(db, models.NotificationBroadcast, &dto.UpdateTemplateRequest{Title: "{% for %}", Body: "y"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	tpl, err := svc.UpdateTemplate(db, models.NotificationBroadcast, &dto.UpdateTemplateRequest{Title: "{{ title }}!", Body: "{{ message }}"})
	require.NoError(t, err)
	assert.True(t, tpl.IsActive)
	assert.Same(t, tpl, repo.templates[models.NotificationBroadcast])
}
