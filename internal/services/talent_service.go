package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/algorithms"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type TalentService interface {
	Search(db *gorm.DB, userID string, role models.UserRole, req *dto.TalentSearchRequest) (*dto.Page[dto.TalentResult], error)
}

type TalentServiceImpl struct {
	profileRepo repositories.ProfileRepository
	jobRepo     repositories.JobRepository
}

func NewTalentService(profileRepo repositories.ProfileRepository, jobRepo repositories.JobRepository) TalentService {
	return &TalentServiceImpl{
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
	}
}

// Search - SQL отбирает кандидатов, скоринг и сортировка в памяти.
// С job_id навыки и требования берутся из вакансии.
func (s *TalentServiceImpl) Search(db *gorm.DB, userID string, role models.UserRole, req *dto.TalentSearchRequest) (*dto.Page[dto.TalentResult], error) {
	filter := repositories.TalentFilter{
		Query:          strings.TrimSpace(req.Query),
		Departments:    splitList(req.Departments),
		GraduationYear: req.GraduationYear,
		MinCGPA:        req.MinCGPA,
		MaxBacklogs:    req.MaxBacklogs,
		Limit:          repositories.MaxTalentCandidates,
	}
	skills := splitList(req.Skills)
	// явный фильтр по навыкам отсекает кандидатов без совпадений
	requireMatch := len(skills) > 0

	var job *models.Job
	if req.JobID != "" {
		var err error
		job, err = s.jobRepo.FindByID(db, req.JobID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if err := ensureJobOwner(job, userID, role); err != nil {
			return nil, err
		}
		if len(skills) == 0 {
			skills = []string(job.Skills)
		}
	}

	profiles, err := s.profileRepo.SearchStudents(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	results := make([]dto.TalentResult, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if job != nil && !algorithms.IsEligible(job.Eligibility, p) {
			continue
		}
		score, matched := algorithms.TalentScore(skills, p)
		if requireMatch && len(matched) == 0 {
			continue
		}
		if matched == nil {
			matched = []string{}
		}
		results = append(results, dto.NewTalentResult(p, score, matched))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].CGPA > results[j].CGPA
	})

	pg := pagination(req.PageRequest)
	return toPage(paginateSlice(results, pg), int64(len(results)), pg), nil
}
