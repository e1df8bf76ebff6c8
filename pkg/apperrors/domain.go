package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики (оборачивают ошибки репозиториев)
// =========================================================================

// ErrNotFound - 404 для ресурса, которого нет в БД
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - 409 для нарушения уникальности
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - переход статуса запрещен (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrNotEligible - студент не проходит по требованиям вакансии.
// reasons уходят клиенту в details.
func ErrNotEligible(reasons []string) *AppError {
	return New(CodeNotEligible, "application", "You do not meet the eligibility criteria for this job", http.StatusForbidden).
		WithDetails(map[string]interface{}{"reasons": reasons})
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

// --- Auth ---

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - refresh/reset токен неверный или просрочен
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInvalidOTP = New(
	CodeInvalidOTP,
	"auth",
	"Invalid or expired verification code",
	http.StatusUnauthorized,
)

// ErrOTPRateLimited - код запрошен слишком часто
var ErrOTPRateLimited = New(
	CodeRateLimited,
	"auth",
	"A code was sent recently, please wait before requesting another",
	http.StatusTooManyRequests,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden,
)

var ErrUserNotVerified = New(
	CodeForbidden,
	"auth",
	"Please verify your email address",
	http.StatusForbidden,
)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Profile ---

var ErrProfileNotPublic = New(
	CodeForbidden,
	"profile",
	"This profile is private",
	http.StatusForbidden,
)

var ErrResumeRequired = New(
	CodeInvalidOperation,
	"profile",
	"Upload a resume before applying",
	http.StatusBadRequest,
)

// --- Company ---

var ErrNotCompanyMember = New(
	CodeForbidden,
	"company",
	"You are not a recruiter of this company",
	http.StatusForbidden,
)

var ErrCompanyRequired = New(
	CodeInvalidOperation,
	"company",
	"Attach your profile to a company first",
	http.StatusBadRequest,
)

var ErrRecruiterNotVerified = New(
	CodeForbidden,
	"company",
	"Your recruiter account is awaiting verification",
	http.StatusForbidden,
)

// --- Jobs ---

var ErrJobNotOpen = New(
	CodeInvalidStatus,
	"job",
	"This job is not accepting applications",
	http.StatusConflict,
)

var ErrDeadlinePassed = New(
	CodeInvalidStatus,
	"job",
	"The application deadline has passed",
	http.StatusConflict,
)

var ErrDeadlineInPast = New(
	CodeValidationFailed,
	"job",
	"Deadline must be in the future",
	http.StatusBadRequest,
)

var ErrNotJobOwner = New(
	CodeForbidden,
	"job",
	"You do not own this job",
	http.StatusForbidden,
)

// --- Applications ---

var ErrAlreadyApplied = New(
	CodeAlreadyExists,
	"application",
	"You have already applied to this job",
	http.StatusConflict,
)

var ErrCannotWithdraw = New(
	CodeInvalidStatus,
	"application",
	"Application can no longer be withdrawn",
	http.StatusConflict,
)

// --- Invitations ---

var ErrInvitationExists = New(
	CodeAlreadyExists,
	"invitation",
	"A pending invitation already exists for this student",
	http.StatusConflict,
)

var ErrInvitationClosed = New(
	CodeInvalidStatus,
	"invitation",
	"Invitation is no longer pending",
	http.StatusConflict,
)

// --- Messages ---

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"messages",
	"Access to conversation denied",
	http.StatusForbidden,
)

var ErrCannotMessageUser = New(
	CodeForbidden,
	"messages",
	"You cannot start a conversation with this user",
	http.StatusForbidden,
)

// --- Reviews ---

var ErrReviewExists = New(
	CodeAlreadyExists,
	"review",
	"You have already reviewed this company",
	http.StatusConflict,
)

// --- Moderation ---

var ErrReportExists = New(
	CodeAlreadyExists,
	"moderation",
	"You have already reported this content",
	http.StatusConflict,
)

var ErrReportResolved = New(
	CodeInvalidStatus,
	"moderation",
	"Report has already been resolved",
	http.StatusConflict,
)
