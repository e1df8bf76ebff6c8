package validator

import (
	"log"

	"placement_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила на основе statuses.go
func registerCustomRules(v *validator.Validate) {
	// Ошибка регистрации - ошибка программиста, приложение не должно стартовать
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", oneOf(
		models.UserRoleStudent, models.UserRoleRecruiter, models.UserRoleAdmin,
	))
	// при регистрации admin выбрать нельзя
	mustRegister("is-signup-role", oneOf(
		models.UserRoleStudent, models.UserRoleRecruiter,
	))
	mustRegister("is-user-status", oneOf(
		models.UserStatusPending, models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned,
	))
	mustRegister("is-job-type", oneOf(
		models.JobTypeFullTime, models.JobTypeInternship, models.JobTypePartTime, models.JobTypeContract,
	))
	mustRegister("is-work-mode", oneOf(
		models.WorkModeOnsite, models.WorkModeRemote, models.WorkModeHybrid,
	))
	mustRegister("is-job-status", oneOf(
		models.JobStatusDraft, models.JobStatusOpen, models.JobStatusClosed, models.JobStatusArchived,
	))
	mustRegister("is-application-status", oneOf(
		models.ApplicationStatusApplied, models.ApplicationStatusShortlisted, models.ApplicationStatusInterview,
		models.ApplicationStatusOffered, models.ApplicationStatusHired, models.ApplicationStatusRejected,
	))
	mustRegister("is-event-type", oneOf(
		models.EventTypePlacementDrive, models.EventTypeInterview, models.EventTypeDeadline,
		models.EventTypeWorkshop, models.EventTypeOther,
	))
	mustRegister("is-report-target", oneOf(
		models.ReportTargetJob, models.ReportTargetForumPost, models.ReportTargetForumComment,
		models.ReportTargetReview, models.ReportTargetUser,
	))
}

// oneOf строит правило "значение из списка". Пустое значение пропускаем,
// для этого есть 'required'.
func oneOf[T ~string](allowed ...T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := set[value]
		return ok
	}
}
