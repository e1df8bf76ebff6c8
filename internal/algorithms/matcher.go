package algorithms

import (
	"fmt"
	"math"
	"strings"

	"placement_backend/internal/models"
)

// Веса релевантности (сумма = 100)
const (
	SkillsWeight       = 60.0
	NoSkillsScore      = 30.0
	CGPAWeight         = 25.0
	CompletenessWeight = 10.0
	ResumeWeight       = 5.0

	MaxCGPA = 10.0
)

// CheckEligibility возвращает список причин, по которым студент не проходит
// требования вакансии. Пустой список - студент подходит.
func CheckEligibility(e models.Eligibility, p *models.StudentProfile) []string {
	reasons := []string{}

	if e.MinCGPA > 0 && p.CGPA < e.MinCGPA {
		reasons = append(reasons, fmt.Sprintf("CGPA %.2f is below the minimum %.2f", p.CGPA, e.MinCGPA))
	}

	if len(e.Branches) > 0 && !containsFold(e.Branches, p.Department) {
		reasons = append(reasons, fmt.Sprintf("department %q is not eligible", p.Department))
	}

	if len(e.GraduationYears) > 0 {
		found := false
		for _, y := range e.GraduationYears {
			if y == p.GraduationYear {
				found = true
				break
			}
		}
		if !found {
			reasons = append(reasons, fmt.Sprintf("graduation year %d is not eligible", p.GraduationYear))
		}
	}

	if e.MaxBacklogs != nil && p.ActiveBacklogs > *e.MaxBacklogs {
		reasons = append(reasons, fmt.Sprintf("%d active backlogs exceed the maximum %d", p.ActiveBacklogs, *e.MaxBacklogs))
	}

	return reasons
}

// IsEligible - короткая форма CheckEligibility
func IsEligible(e models.Eligibility, p *models.StudentProfile) bool {
	return len(CheckEligibility(e, p)) == 0
}

// TalentScore считает релевантность студента для набора навыков (0..100)
// и возвращает совпавшие навыки в написании запроса.
func TalentScore(required []string, p *models.StudentProfile) (float64, []string) {
	score := 0.0

	skillScore, matched := skillOverlap(required, p.Skills)
	score += skillScore

	cgpa := math.Max(0, math.Min(p.CGPA, MaxCGPA))
	score += cgpa / MaxCGPA * CGPAWeight

	score += float64(p.Completeness()) / 100 * CompletenessWeight

	if p.ResumeURL != "" {
		score += ResumeWeight
	}

	return round2(math.Min(score, 100)), matched
}

// JobRecommendationScore - та же шкала со стороны студента: навыки вакансии
// сравниваются с навыками профиля.
func JobRecommendationScore(job *models.Job, p *models.StudentProfile) (float64, []string) {
	return TalentScore(job.Skills, p)
}

// skillOverlap - 60 * (совпало / запрошено); без запрошенных навыков - 30
func skillOverlap(required, have []string) (float64, []string) {
	matched := []string{}
	req := normalizeSkills(required)
	if len(req) == 0 {
		return NoSkillsScore, matched
	}

	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[normalize(s)] = struct{}{}
	}

	for _, r := range req {
		if _, ok := set[normalize(r)]; ok {
			matched = append(matched, r)
		}
	}

	return float64(len(matched)) / float64(len(req)) * SkillsWeight, matched
}

// normalizeSkills убирает пустые значения и дубликаты (без учета регистра)
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := normalize(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(list []string, v string) bool {
	v = normalize(v)
	for _, item := range list {
		if normalize(item) == v {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
