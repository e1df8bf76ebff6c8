package models

type UserRole string
type UserStatus string
type JobType string
type WorkMode string
type JobStatus string
type JobSource string
type ApplicationStatus string
type InvitationStatus string
type ReviewStatus string
type EventType string
type ReportStatus string
type ReportTarget string
type ReportAction string

const (
	UserRoleStudent   UserRole = "student"
	UserRoleRecruiter UserRole = "recruiter"
	UserRoleAdmin     UserRole = "admin"

	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	JobTypeFullTime   JobType = "full_time"
	JobTypeInternship JobType = "internship"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"

	WorkModeOnsite WorkMode = "onsite"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"

	JobStatusDraft    JobStatus = "draft"
	JobStatusOpen     JobStatus = "open"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"

	JobSourcePortal JobSource = "portal"
	JobSourceFeed   JobSource = "feed"

	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusInterview   ApplicationStatus = "interview"
	ApplicationStatusOffered     ApplicationStatus = "offered"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"

	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"

	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"

	EventTypePlacementDrive EventType = "placement_drive"
	EventTypeInterview      EventType = "interview"
	EventTypeDeadline       EventType = "deadline"
	EventTypeWorkshop       EventType = "workshop"
	EventTypeOther          EventType = "other"

	ReportStatusOpen      ReportStatus = "open"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"

	ReportTargetJob          ReportTarget = "job"
	ReportTargetForumPost    ReportTarget = "forum_post"
	ReportTargetForumComment ReportTarget = "forum_comment"
	ReportTargetReview       ReportTarget = "review"
	ReportTargetUser         ReportTarget = "user"

	ReportActionHide    ReportAction = "hide"
	ReportActionDismiss ReportAction = "dismiss"
	ReportActionBanUser ReportAction = "ban_user"
)

// applicationTransitions - допустимые переходы по воронке найма.
// rejected/hired/withdrawn - конечные статусы.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:     {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusInterview, ApplicationStatusRejected},
	ApplicationStatusInterview:   {ApplicationStatusOffered, ApplicationStatusRejected},
	ApplicationStatusOffered:     {ApplicationStatusHired, ApplicationStatusRejected},
}

// CanTransitionTo проверяет переход статуса заявки рекрутером
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsWithdrawable - студент может отозвать заявку только на ранних стадиях
func (s ApplicationStatus) IsWithdrawable() bool {
	return s == ApplicationStatusApplied || s == ApplicationStatusShortlisted
}

func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusHired || s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleStudent, UserRoleRecruiter, UserRoleAdmin:
		return true
	}
	return false
}

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}
