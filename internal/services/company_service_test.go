package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

func TestCompanyService_CreateAttachesRecruiter(t *testing.T) {
	recruiterID := newID()
	oldCompany := &models.Company{Name: "Old Co"}
	oldCompany.ID = newID()
	companies := newFakeCompanyRepo(oldCompany)
	profiles := &fakeProfileRepo{recruiters: map[string]*models.RecruiterProfile{
		recruiterID: {UserID: recruiterID, CompanyID: &oldCompany.ID, IsVerified: true},
	}}
	svc := NewCompanyService(companies, profiles, nil)
	db, mock := newTestDB(t)
	expectCommit(mock)

	company, err := svc.Create(db, recruiterID, models.UserRoleRecruiter, &dto.CreateCompanyRequest{Name: " Acme Labs ", Industry: "Software"})
	require.NoError(t, err)

	assert.Equal(t, "Acme Labs", company.Name)
	assert.Equal(t, recruiterID, company.CreatedBy)
	assert.False(t, company.IsVerified)

	profile := profiles.recruiters[recruiterID]
	require.NotNil(t, profile.CompanyID)
	assert.Equal(t, company.ID, *profile.CompanyID)
	// новая компания - верификация рекрутера заново
	assert.False(t, profile.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_CreateByAdmin(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc := NewCompanyService(companies, &fakeProfileRepo{}, nil)
	db, mock := newTestDB(t)

	expectCommit(mock)
	company, err := svc.Create(db, newID(), models.UserRoleAdmin, &dto.CreateCompanyRequest{Name: "Globex"})
	require.NoError(t, err)
	assert.True(t, company.IsVerified)

	expectRollback(mock)
	_, err = svc.Create(db, newID(), models.UserRoleAdmin, &dto.CreateCompanyRequest{Name: "Globex"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
	assert.Len(t, companies.companies, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_UpdatePermissions(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	member, outsider := newID(), newID()
	profiles := &fakeProfileRepo{recruiters: map[string]*models.RecruiterProfile{
		member:   {UserID: member, CompanyID: &company.ID},
		outsider: {UserID: outsider},
	}}
	svc := NewCompanyService(newFakeCompanyRepo(company), profiles, nil)
	db, _ := newTestDB(t)
	req := &dto.UpdateCompanyRequest{Location: ptr("Bengaluru")}

	_, err := svc.Update(db, outsider, models.UserRoleRecruiter, company.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrNotCompanyMember)

	_, err = svc.Update(db, newID(), models.UserRoleStudent, company.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = svc.Update(db, member, models.UserRoleRecruiter, newID(), req)
	assert.ErrorIs(t, err, repositories.ErrCompanyNotFound)

	updated, err := svc.Update(db, member, models.UserRoleRecruiter, company.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", updated.Location)
	assert.Equal(t, "Acme", updated.Name)

	updated, err = svc.Update(db, newID(), models.UserRoleAdmin, company.ID, &dto.UpdateCompanyRequest{Name: ptr(" Acme Corp ")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
}

func TestCompanyService_GetAndVerify(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	companies := newFakeCompanyRepo(company)
	companies.openJobs = map[string]int64{company.ID: 3}
	svc := NewCompanyService(companies, &fakeProfileRepo{}, nil)
	db, _ := newTestDB(t)

	resp, err := svc.Get(db, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.OpenJobs)

	verified, err := svc.SetVerified(db, company.ID, true)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = svc.SetVerified(db, newID(), true)
	assert.ErrorIs(t, err, repositories.ErrCompanyNotFound)
}

func TestCompanyService_UploadLogoReplacesPrevious(t *testing.T) {
	company := &models.Company{Name: "Acme"}
	company.ID = newID()
	uploads, store := newTestUploadService(t, 1<<20)
	svc := NewCompanyService(newFakeCompanyRepo(company), &fakeProfileRepo{}, uploads)
	db, _ := newTestDB(t)
	ctx := context.Background()
	adminID := newID()

	first, err := svc.UploadLogo(ctx, db, adminID, models.UserRoleAdmin, company.ID, fileOf("logo.png", pngBytes(t, 40, 40)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "/files/logos/"+company.ID+"/"))

	second, err := svc.UploadLogo(ctx, db, adminID, models.UserRoleAdmin, company.ID, fileOf("logo.png", pngBytes(t, 40, 40)))
	require.NoError(t, err)
	assert.Equal(t, second, company.LogoURL)

	exists, err := store.Exists(ctx, strings.TrimPrefix(first, "/files/"))
	require.NoError(t, err)
	assert.False(t, exists)
}
