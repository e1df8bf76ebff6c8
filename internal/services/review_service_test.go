package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

func TestReviewService_Create(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	reviews := newFakeReviewRepo()
	svc := NewReviewService(reviews, newFakeCompanyRepo(company), &fakeNotifier{})
	db, _ := newTestDB(t)
	authorID := newID()

	review, err := svc.Create(db, authorID, company.ID, &dto.CreateReviewRequest{Rating: 4, Title: " Good place "})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
	assert.Equal(t, "Good place", review.Title)

	_, err = svc.Create(db, authorID, company.ID, &dto.CreateReviewRequest{Rating: 2})
	assert.ErrorIs(t, err, apperrors.ErrReviewExists)

	_, err = svc.Create(db, newID(), company.ID, &dto.CreateReviewRequest{Rating: 6})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	assert.Len(t, reviews.reviews, 1)
}

func TestReviewService_Moderate(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	review := &models.Review{CompanyID: company.ID, AuthorID: newID(), Rating: 5, Status: models.ReviewStatusPending}
	review.ID = newID()
	companies := newFakeCompanyRepo(company)
	notifier := &fakeNotifier{}
	svc := NewReviewService(newFakeReviewRepo(review), companies, notifier)
	db, mock := newTestDB(t)

	_, err := svc.Moderate(db, review.ID, models.ReviewStatusPending)
	assert.Error(t, err)

	expectCommit(mock)
	got, err := svc.Moderate(db, review.ID, models.ReviewStatusApproved)

	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, got.Status)
	assert.Equal(t, []string{company.ID}, companies.recalculated)

	sent := notifier.byType(models.NotificationReviewModerated)
	require.Len(t, sent, 1)
	assert.Equal(t, review.AuthorID, sent[0].UserID)
	assert.Equal(t, "Acme", sent[0].Vars["company_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewService_Delete(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	approved := &models.Review{CompanyID: company.ID, AuthorID: newID(), Rating: 3, Status: models.ReviewStatusApproved}
	approved.ID = newID()
	companies := newFakeCompanyRepo(company)
	reviews := newFakeReviewRepo(approved)
	svc := NewReviewService(reviews, companies, &fakeNotifier{})
	db, mock := newTestDB(t)
	expectRollback(mock)
	expectCommit(mock)

	err := svc.Delete(db, newID(), models.UserRoleStudent, approved.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	require.NoError(t, svc.Delete(db, approved.AuthorID, models.UserRoleStudent, approved.ID))
	assert.Empty(t, reviews.reviews)
	// удаление одобренного отзыва меняет рейтинг
	assert.Equal(t, []string{company.ID}, companies.recalculated)
}
