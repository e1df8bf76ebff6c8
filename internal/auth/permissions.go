package auth

import "placement_backend/internal/models"

// Разрешения по ролям
const (
	PermJobsWrite        = "jobs:write"
	PermJobsApply        = "jobs:apply"
	PermApplicationsRead = "applications:read:own_jobs"
	PermTalentSearch     = "talent:search"
	PermInvitationsSend  = "invitations:send"
	PermReviewsWrite     = "reviews:write"
	PermCompaniesWrite   = "companies:write"
	PermModerate         = "content:moderate"
	PermUsersManage      = "users:manage"
	PermEventsGlobal     = "events:global"
	PermMessageAnyone    = "messages:anyone"
)

var Permissions = map[models.UserRole][]string{
	models.UserRoleStudent: {
		PermJobsApply,
		PermReviewsWrite,
	},
	models.UserRoleRecruiter: {
		PermJobsWrite,
		PermApplicationsRead,
		PermTalentSearch,
		PermInvitationsSend,
		PermCompaniesWrite,
		PermMessageAnyone,
	},
	models.UserRoleAdmin: {
		PermJobsWrite,
		PermApplicationsRead,
		PermTalentSearch,
		PermCompaniesWrite,
		PermModerate,
		PermUsersManage,
		PermEventsGlobal,
		PermMessageAnyone,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
