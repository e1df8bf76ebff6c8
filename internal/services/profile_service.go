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

type ProfileService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	// GetPublicProfile - просмотр чужого профиля с учетом is_public
	GetPublicProfile(db *gorm.DB, viewerID string, viewerRole models.UserRole, targetID string) (*dto.ProfileResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadResume(ctx context.Context, db *gorm.DB, userID string, file *UploadFile) (string, error)
	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *UploadFile) (string, error)
}

type ProfileServiceImpl struct {
	userRepo      repositories.UserRepository
	profileRepo   repositories.ProfileRepository
	companyRepo   repositories.CompanyRepository
	uploadService UploadService
}

func NewProfileService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	companyRepo repositories.CompanyRepository,
	uploadService UploadService,
) ProfileService {
	return &ProfileServiceImpl{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		companyRepo:   companyRepo,
		uploadService: uploadService,
	}
}

func (s *ProfileServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return buildProfileResponse(user, true), nil
}

func (s *ProfileServiceImpl) GetPublicProfile(db *gorm.DB, viewerID string, viewerRole models.UserRole, targetID string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(db, targetID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	isOwner := viewerID == targetID
	privileged := viewerRole == models.UserRoleRecruiter || viewerRole == models.UserRoleAdmin

	if !isOwner && user.Status == models.UserStatusBanned && viewerRole != models.UserRoleAdmin {
		return nil, apperrors.ErrNotFound(repositories.ErrUserNotFound)
	}

	if user.IsStudent() && !isOwner && !privileged {
		if user.StudentProfile == nil || !user.StudentProfile.IsPublic {
			return nil, apperrors.ErrProfileNotPublic
		}
	}

	return buildProfileResponse(user, isOwner || privileged), nil
}

// UpdateProfile - частичное обновление, применяются поля своей роли
func (s *ProfileServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		if err := s.userRepo.Update(tx, user); err != nil {
			return nil, handleRepoError(err)
		}
	}

	switch user.Role {
	case models.UserRoleStudent:
		if err := s.updateStudent(tx, user, &req.UpdateStudentProfileRequest); err != nil {
			return nil, err
		}
	case models.UserRoleRecruiter:
		if err := s.updateRecruiter(tx, user, req); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildProfileResponse(user, true), nil
}

func (s *ProfileServiceImpl) updateStudent(tx *gorm.DB, user *models.User, req *dto.UpdateStudentProfileRequest) error {
	profile, err := s.profileRepo.FindStudentByUserID(tx, user.ID)
	if err != nil {
		return handleRepoError(err)
	}

	applyStudentUpdate(profile, req)

	if err := s.profileRepo.UpdateStudentProfile(tx, profile); err != nil {
		return apperrors.InternalError(err)
	}
	user.StudentProfile = profile
	return nil
}

func applyStudentUpdate(p *models.StudentProfile, req *dto.UpdateStudentProfileRequest) {
	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.RollNumber != nil {
		p.RollNumber = strings.TrimSpace(*req.RollNumber)
	}
	if req.Department != nil {
		p.Department = strings.TrimSpace(*req.Department)
	}
	if req.Degree != nil {
		p.Degree = strings.TrimSpace(*req.Degree)
	}
	if req.GraduationYear != nil {
		p.GraduationYear = *req.GraduationYear
	}
	if req.CGPA != nil {
		p.CGPA = *req.CGPA
	}
	if req.ActiveBacklogs != nil {
		p.ActiveBacklogs = *req.ActiveBacklogs
	}
	if req.Skills != nil {
		p.Skills = cleanSkills(*req.Skills)
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Phone != nil {
		p.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.LinkedInURL != nil {
		p.LinkedInURL = strings.TrimSpace(*req.LinkedInURL)
	}
	if req.GithubURL != nil {
		p.GithubURL = strings.TrimSpace(*req.GithubURL)
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
}

func (s *ProfileServiceImpl) updateRecruiter(tx *gorm.DB, user *models.User, req *dto.UpdateProfileRequest) error {
	profile, err := s.profileRepo.FindRecruiterByUserID(tx, user.ID)
	if err != nil {
		return handleRepoError(err)
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Designation != nil {
		profile.Designation = strings.TrimSpace(*req.Designation)
	}
	if req.Phone != nil {
		profile.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.CompanyID != nil {
		current := ""
		if profile.CompanyID != nil {
			current = *profile.CompanyID
		}
		if *req.CompanyID != current {
			company, err := s.companyRepo.FindByID(tx, *req.CompanyID)
			if err != nil {
				return handleRepoError(err)
			}
			// Смена компании требует повторной верификации
			profile.CompanyID = &company.ID
			profile.Company = company
			profile.IsVerified = false
		}
	}

	if err := s.profileRepo.UpdateRecruiterProfile(tx, profile); err != nil {
		return apperrors.InternalError(err)
	}
	user.RecruiterProfile = profile
	return nil
}

func (s *ProfileServiceImpl) UploadResume(ctx context.Context, db *gorm.DB, userID string, file *UploadFile) (string, error) {
	profile, err := s.profileRepo.FindStudentByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return "", apperrors.ErrInvalidUserRole
		}
		return "", apperrors.InternalError(err)
	}

	url, err := s.uploadService.UploadResume(ctx, userID, file)
	if err != nil {
		return "", err
	}

	// Старое резюме не удаляем: на него ссылаются снимки в заявках
	profile.ResumeURL = url
	if err := s.profileRepo.UpdateStudentProfile(db, profile); err != nil {
		s.uploadService.Remove(ctx, url)
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func (s *ProfileServiceImpl) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *UploadFile) (string, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return "", handleRepoError(err)
	}

	url, err := s.uploadService.UploadAvatar(ctx, userID, file)
	if err != nil {
		return "", err
	}

	var previous string
	switch {
	case user.StudentProfile != nil:
		previous = user.StudentProfile.AvatarURL
		user.StudentProfile.AvatarURL = url
		err = s.profileRepo.UpdateStudentProfile(db, user.StudentProfile)
	case user.RecruiterProfile != nil:
		previous = user.RecruiterProfile.AvatarURL
		user.RecruiterProfile.AvatarURL = url
		err = s.profileRepo.UpdateRecruiterProfile(db, user.RecruiterProfile)
	default:
		s.uploadService.Remove(ctx, url)
		return "", apperrors.ErrInvalidUserRole
	}
	if err != nil {
		s.uploadService.Remove(ctx, url)
		return "", apperrors.InternalError(err)
	}

	if previous != "" {
		s.uploadService.Remove(ctx, previous)
	}
	return url, nil
}

func buildProfileResponse(user *models.User, withEmail bool) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Recruiter: user.RecruiterProfile,
	}
	if withEmail {
		resp.Email = user.Email
	}
	if user.StudentProfile != nil {
		resp.Student = &dto.StudentProfileResponse{
			StudentProfile: user.StudentProfile,
			Completeness:   user.StudentProfile.Completeness(),
		}
	}
	return resp
}

// cleanSkills убирает пустые и повторяющиеся (без учета регистра) навыки
func cleanSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, skill)
	}
	return result
}
