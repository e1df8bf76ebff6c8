package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// MaxTalentCandidates - верхняя граница выборки для ранжирования в памяти
const MaxTalentCandidates = 500

type ProfileRepository interface {
	// Student
	CreateStudentProfile(db *gorm.DB, profile *models.StudentProfile) error
	FindStudentByUserID(db *gorm.DB, userID string) (*models.StudentProfile, error)
	UpdateStudentProfile(db *gorm.DB, profile *models.StudentProfile) error
	SearchStudents(db *gorm.DB, filter TalentFilter) ([]models.StudentProfile, error)

	// Recruiter
	CreateRecruiterProfile(db *gorm.DB, profile *models.RecruiterProfile) error
	FindRecruiterByUserID(db *gorm.DB, userID string) (*models.RecruiterProfile, error)
	UpdateRecruiterProfile(db *gorm.DB, profile *models.RecruiterProfile) error
	SetRecruiterVerified(db *gorm.DB, userID string, verified bool) error
}

// TalentFilter - SQL часть фильтра поиска талантов. Навыки и скоринг
// считаются в сервисе.
type TalentFilter struct {
	Query          string
	Departments    []string
	GraduationYear int
	MinCGPA        float64
	MaxBacklogs    *int
	Limit          int
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) CreateStudentProfile(db *gorm.DB, profile *models.StudentProfile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindStudentByUserID(db *gorm.DB, userID string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateStudentProfile(db *gorm.DB, profile *models.StudentProfile) error {
	return db.Save(profile).Error
}

// SearchStudents - публичные профили активных студентов
func (r *ProfileRepositoryImpl) SearchStudents(db *gorm.DB, filter TalentFilter) ([]models.StudentProfile, error) {
	query := db.Model(&models.StudentProfile{}).
		Joins("JOIN users ON users.id = student_profiles.user_id").
		Where("users.status = ? AND users.role = ?", models.UserStatusActive, models.UserRoleStudent).
		Where("student_profiles.is_public = ?", true)

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where(
			"(LOWER(student_profiles.full_name) LIKE ? OR LOWER(student_profiles.bio) LIKE ? OR LOWER(student_profiles.degree) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if len(filter.Departments) > 0 {
		query = query.Where("student_profiles.department IN ?", filter.Departments)
	}
	if filter.GraduationYear > 0 {
		query = query.Where("student_profiles.graduation_year = ?", filter.GraduationYear)
	}
	if filter.MinCGPA > 0 {
		query = query.Where("student_profiles.cgpa >= ?", filter.MinCGPA)
	}
	if filter.MaxBacklogs != nil {
		query = query.Where("student_profiles.active_backlogs <= ?", *filter.MaxBacklogs)
	}

	limit := filter.Limit
	if limit <= 0 || limit > MaxTalentCandidates {
		limit = MaxTalentCandidates
	}

	var profiles []models.StudentProfile
	err := query.Order("student_profiles.cgpa DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) CreateRecruiterProfile(db *gorm.DB, profile *models.RecruiterProfile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindRecruiterByUserID(db *gorm.DB, userID string) (*models.RecruiterProfile, error) {
	var profile models.RecruiterProfile
	if err := db.Preload("Company").First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateRecruiterProfile(db *gorm.DB, profile *models.RecruiterProfile) error {
	return db.Omit("Company").Save(profile).Error
}

func (r *ProfileRepositoryImpl) SetRecruiterVerified(db *gorm.DB, userID string, verified bool) error {
	result := db.Model(&models.RecruiterProfile{}).Where("user_id = ?", userID).Update("is_verified", verified)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
