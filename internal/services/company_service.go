package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type CompanyService interface {
	List(db *gorm.DB, req *dto.CompanyListRequest) (*dto.Page[models.Company], error)
	Get(db *gorm.DB, companyID string) (*dto.CompanyResponse, error)
	Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateCompanyRequest) (*models.Company, error)
	Update(db *gorm.DB, userID string, role models.UserRole, companyID string, req *dto.UpdateCompanyRequest) (*models.Company, error)
	UploadLogo(ctx context.Context, db *gorm.DB, userID string, role models.UserRole, companyID string, file *UploadFile) (string, error)
	SetVerified(db *gorm.DB, companyID string, verified bool) (*models.Company, error)
}

type CompanyServiceImpl struct {
	companyRepo   repositories.CompanyRepository
	profileRepo   repositories.ProfileRepository
	uploadService UploadService
}

func NewCompanyService(
	companyRepo repositories.CompanyRepository,
	profileRepo repositories.ProfileRepository,
	uploadService UploadService,
) CompanyService {
	return &CompanyServiceImpl{
		companyRepo:   companyRepo,
		profileRepo:   profileRepo,
		uploadService: uploadService,
	}
}

func (s *CompanyServiceImpl) List(db *gorm.DB, req *dto.CompanyListRequest) (*dto.Page[models.Company], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.companyRepo.List(db, repositories.CompanyFilter{
		Query:    req.Query,
		Industry: req.Industry,
	}, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *CompanyServiceImpl) Get(db *gorm.DB, companyID string) (*dto.CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(db, companyID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	openJobs, err := s.companyRepo.CountOpenJobs(db, companyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.CompanyResponse{Company: company, OpenJobs: openJobs}, nil
}

// Create - рекрутер, создавший компанию, привязывается к ней
func (s *CompanyServiceImpl) Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateCompanyRequest) (*models.Company, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	company := &models.Company{
		Name:        strings.TrimSpace(req.Name),
		Website:     req.Website,
		Industry:    req.Industry,
		Description: req.Description,
		Location:    req.Location,
		CreatedBy:   userID,
		// Компании от админа сразу проверены
		IsVerified: role == models.UserRoleAdmin,
	}

	if err := s.companyRepo.Create(tx, company); err != nil {
		if apperrors.Is(err, repositories.ErrCompanyAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if role == models.UserRoleRecruiter {
		profile, err := s.profileRepo.FindRecruiterByUserID(tx, userID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if profile.CompanyID == nil || *profile.CompanyID != company.ID {
			profile.CompanyID = &company.ID
			profile.IsVerified = false
		}
		if err := s.profileRepo.UpdateRecruiterProfile(tx, profile); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return company, nil
}

func (s *CompanyServiceImpl) Update(db *gorm.DB, userID string, role models.UserRole, companyID string, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.findManageable(db, userID, role, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.Location != nil {
		company.Location = *req.Location
	}

	if err := s.companyRepo.Update(db, company); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return company, nil
}

func (s *CompanyServiceImpl) UploadLogo(ctx context.Context, db *gorm.DB, userID string, role models.UserRole, companyID string, file *UploadFile) (string, error) {
	company, err := s.findManageable(db, userID, role, companyID)
	if err != nil {
		return "", err
	}

	url, err := s.uploadService.UploadLogo(ctx, company.ID, file)
	if err != nil {
		return "", err
	}

	previous := company.LogoURL
	company.LogoURL = url
	if err := s.companyRepo.Update(db, company); err != nil {
		s.uploadService.Remove(ctx, url)
		return "", apperrors.InternalError(err)
	}
	if previous != "" {
		s.uploadService.Remove(ctx, previous)
	}
	return url, nil
}

// findManageable - админ или рекрутер, привязанный к компании
func (s *CompanyServiceImpl) findManageable(db *gorm.DB, userID string, role models.UserRole, companyID string) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(db, companyID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if role == models.UserRoleAdmin {
		return company, nil
	}
	if role != models.UserRoleRecruiter {
		return nil, apperrors.ErrInsufficientPermissions
	}

	profile, err := s.profileRepo.FindRecruiterByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if profile.CompanyID == nil || *profile.CompanyID != company.ID {
		return nil, apperrors.ErrNotCompanyMember
	}
	return company, nil
}

// SetVerified - отметка админа о проверке компании
func (s *CompanyServiceImpl) SetVerified(db *gorm.DB, companyID string, verified bool) (*models.Company, error) {
	if err := s.companyRepo.SetVerified(db, companyID, verified); err != nil {
		return nil, handleRepoError(err)
	}
	company, err := s.companyRepo.FindByID(db, companyID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return company, nil
}
