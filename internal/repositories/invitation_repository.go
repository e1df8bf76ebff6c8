package repositories

import (
	"errors"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
)

type InvitationRepository interface {
	Create(db *gorm.DB, inv *models.Invitation) error
	FindByID(db *gorm.DB, id string) (*models.Invitation, error)
	HasPending(db *gorm.DB, jobID, studentID string, now time.Time) (bool, error)
	Update(db *gorm.DB, inv *models.Invitation) error
	ListByStudent(db *gorm.DB, studentID string, p Pagination) ([]models.Invitation, int64, error)
	ListByRecruiter(db *gorm.DB, recruiterID string, p Pagination) ([]models.Invitation, int64, error)

	// ExpirePending переводит просроченные pending приглашения в expired
	ExpirePending(db *gorm.DB, now time.Time) (int64, error)
}

type InvitationRepositoryImpl struct{}

func NewInvitationRepository() InvitationRepository {
	return &InvitationRepositoryImpl{}
}

func (r *InvitationRepositoryImpl) Create(db *gorm.DB, inv *models.Invitation) error {
	return db.Omit("Job").Create(inv).Error
}

func (r *InvitationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := db.Preload("Job.Company").First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepositoryImpl) HasPending(db *gorm.DB, jobID, studentID string, now time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Invitation{}).
		Where("job_id = ? AND student_id = ? AND status = ? AND expires_at > ?",
			jobID, studentID, models.InvitationStatusPending, now).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepositoryImpl) Update(db *gorm.DB, inv *models.Invitation) error {
	return db.Omit("Job").Save(inv).Error
}

func (r *InvitationRepositoryImpl) ListByStudent(db *gorm.DB, studentID string, p Pagination) ([]models.Invitation, int64, error) {
	return r.list(db.Model(&models.Invitation{}).Where("student_id = ?", studentID), p)
}

func (r *InvitationRepositoryImpl) ListByRecruiter(db *gorm.DB, recruiterID string, p Pagination) ([]models.Invitation, int64, error) {
	return r.list(db.Model(&models.Invitation{}).Where("recruiter_id = ?", recruiterID), p)
}

func (r *InvitationRepositoryImpl) list(query *gorm.DB, p Pagination) ([]models.Invitation, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invs []models.Invitation
	err := query.Preload("Job.Company").Order("created_at DESC").Scopes(paginate(p)).Find(&invs).Error
	return invs, total, err
}

func (r *InvitationRepositoryImpl) ExpirePending(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at <= ?", models.InvitationStatusPending, now).
		Update("status", models.InvitationStatusExpired)
	return result.RowsAffected, result.Error
}
