package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/auth"
	"placement_backend/internal/cache"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

const (
	refreshTokenBytes = 32
	resetTokenBytes   = 32
)

// AuthConfig - параметры токенов и OTP
type AuthConfig struct {
	RefreshTTL        time.Duration
	ResetTokenTTL     time.Duration
	OTPLength         int
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendInterval time.Duration
}

func (c *AuthConfig) applyDefaults() {
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = time.Hour
	}
	if c.OTPLength <= 0 {
		c.OTPLength = 6
	}
	if c.OTPTTL <= 0 {
		c.OTPTTL = 10 * time.Minute
	}
	if c.OTPMaxAttempts <= 0 {
		c.OTPMaxAttempts = 5
	}
	if c.OTPResendInterval <= 0 {
		c.OTPResendInterval = time.Minute
	}
}

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.User, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RequestOTP(ctx context.Context, db *gorm.DB, req *dto.OTPRequest) error
	VerifyOTP(ctx context.Context, db *gorm.DB, req *dto.OTPVerifyRequest) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	ForgotPassword(db *gorm.DB, email string) error
	ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error
	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
	Me(db *gorm.DB, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	companyRepo      repositories.CompanyRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	store            cache.Store
	emailService     *EmailService
	cfg              AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	companyRepo repositories.CompanyRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	store cache.Store,
	emailService *EmailService,
	cfg AuthConfig,
) AuthService {
	cfg.applyDefaults()
	return &AuthServiceImpl{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		companyRepo:      companyRepo,
		refreshTokenRepo: refreshTokenRepo,
		store:            store,
		emailService:     emailService,
		cfg:              cfg,
	}
}

// Register - регистрация студента или рекрутера с пустым профилем
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.User, error) {
	if req.Role != models.UserRoleStudent && req.Role != models.UserRoleRecruiter {
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Status:       models.UserStatusPending,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(tx, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.createProfile(tx, user, req); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.issueOTP(ctx, dto.OTPPurposeVerify, user); err != nil {
		logger.CtxWithError(ctx, "Failed to issue verification code", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *AuthServiceImpl) createProfile(tx *gorm.DB, user *models.User, req *dto.RegisterRequest) error {
	switch user.Role {
	case models.UserRoleStudent:
		profile := &models.StudentProfile{UserID: user.ID, FullName: user.Name, IsPublic: true}
		if err := s.profileRepo.CreateStudentProfile(tx, profile); err != nil {
			return apperrors.InternalError(err)
		}
		user.StudentProfile = profile

	case models.UserRoleRecruiter:
		profile := &models.RecruiterProfile{UserID: user.ID, FullName: user.Name}
		if req.CompanyID != nil && *req.CompanyID != "" {
			if _, err := s.companyRepo.FindByID(tx, *req.CompanyID); err != nil {
				return handleRepoError(err)
			}
			profile.CompanyID = req.CompanyID
		}
		if err := s.profileRepo.CreateRecruiterProfile(tx, profile); err != nil {
			return apperrors.InternalError(err)
		}
		user.RecruiterProfile = profile
	}
	return nil
}

// Login - аутентификация по email и паролю
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	return s.issueTokens(db, user)
}

// RequestOTP - для неизвестных email ответ всегда успешный
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, db *gorm.DB, req *dto.OTPRequest) error {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	if user.Status == models.UserStatusBanned || user.Status == models.UserStatusSuspended {
		return nil
	}
	if req.Purpose == dto.OTPPurposeVerify && user.IsVerified {
		return nil
	}

	return s.issueOTP(ctx, req.Purpose, user)
}

func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, db *gorm.DB, req *dto.OTPVerifyRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.checkOTP(ctx, req.Purpose, email, req.Code); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, apperrors.InternalError(err)
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	if req.Purpose == dto.OTPPurposeVerify && !user.IsVerified {
		user.IsVerified = true
		if user.Status == models.UserStatusPending {
			user.Status = models.UserStatusActive
		}
		if err := s.userRepo.Update(db, user); err != nil {
			return nil, handleRepoError(err)
		}
		s.emailService.SendWelcome(user.Email, user.Name, string(user.Role))
	}

	return s.issueTokens(db, user)
}

// RefreshToken - ротация refresh токена
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	token, err := s.refreshTokenRepo.FindByToken(tx, refreshToken)
	if err != nil {
		// Неважно, какая ошибка - токен невалиден
		return nil, apperrors.ErrInvalidToken
	}

	if !timeNow().Before(token.ExpiresAt) {
		if err := s.refreshTokenRepo.DeleteByToken(tx, refreshToken); err == nil {
			tx.Commit()
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.DeleteByToken(tx, refreshToken); err != nil {
		// Параллельная ротация того же токена
		return nil, apperrors.ErrInvalidToken
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Logout идемпотентен
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	err := s.refreshTokenRepo.DeleteByToken(db, refreshToken)
	if err != nil && !apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

// ForgotPassword - для неизвестных email ответ всегда успешный
func (s *AuthServiceImpl) ForgotPassword(db *gorm.DB, email string) error {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	token, err := auth.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return apperrors.InternalError(err)
	}
	expires := timeNow().Add(s.cfg.ResetTokenTTL)
	user.ResetToken = token
	user.ResetTokenExp = &expires

	if err := s.userRepo.Update(db, user); err != nil {
		return handleRepoError(err)
	}

	s.emailService.SendPasswordReset(user.Email, user.Name, token)
	return nil
}

func (s *AuthServiceImpl) ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(map[string]string{"new_password": err.Error()})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByResetToken(tx, req.Token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	if user.ResetTokenExp == nil || !timeNow().Before(*user.ResetTokenExp) {
		return apperrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExp = nil

	if err := s.userRepo.Update(tx, user); err != nil {
		return handleRepoError(err)
	}
	if err := s.refreshTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	return tx.Commit().Error
}

// ChangePassword отзывает все refresh токены пользователя
func (s *AuthServiceImpl) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(map[string]string{"new_password": err.Error()})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return handleRepoError(err)
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(tx, user); err != nil {
		return handleRepoError(err)
	}
	if err := s.refreshTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	return tx.Commit().Error
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return user, nil
}

// ==========================
// Helpers
// ==========================

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := auth.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := timeNow()
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateLastLogin(db, user.ID, now); err != nil {
		logger.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		ExpiresIn:    int64(auth.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func otpAttemptsKey(purpose, email string) string {
	return otpKey(purpose, email) + ":attempts"
}

func otpResendKey(purpose, email string) string {
	return fmt.Sprintf("otp_resend:%s:%s", purpose, email)
}

// issueOTP генерирует код, сохраняет в кэше и отправляет письмо.
// Не чаще одного кода за OTPResendInterval.
func (s *AuthServiceImpl) issueOTP(ctx context.Context, purpose string, user *models.User) error {
	ok, err := s.store.SetNX(ctx, otpResendKey(purpose, user.Email), "1", s.cfg.OTPResendInterval)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		return apperrors.ErrOTPRateLimited
	}

	code, err := auth.GenerateOTP(s.cfg.OTPLength)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.store.Set(ctx, otpKey(purpose, user.Email), code, s.cfg.OTPTTL); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.store.Set(ctx, otpAttemptsKey(purpose, user.Email), "0", s.cfg.OTPTTL); err != nil {
		return apperrors.InternalError(err)
	}

	s.emailService.SendOTP(user.Email, user.Name, code, s.cfg.OTPTTL)
	return nil
}

// checkOTP сверяет код. После OTPMaxAttempts неудач код сгорает.
func (s *AuthServiceImpl) checkOTP(ctx context.Context, purpose, email, code string) error {
	key := otpKey(purpose, email)
	attemptsKey := otpAttemptsKey(purpose, email)

	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if apperrors.Is(err, cache.ErrCacheMiss) {
			return apperrors.ErrInvalidOTP
		}
		return apperrors.InternalError(err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, err := s.store.Incr(ctx, attemptsKey)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if attempts >= int64(s.cfg.OTPMaxAttempts) {
			if err := s.store.Delete(ctx, key, attemptsKey); err != nil {
				logger.CtxWithError(ctx, "Failed to burn otp code", err)
			}
		}
		return apperrors.ErrInvalidOTP
	}

	if err := s.store.Delete(ctx, key, attemptsKey); err != nil {
		logger.CtxWithError(ctx, "Failed to delete used otp code", err)
	}
	return nil
}

func checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusSuspended:
		return apperrors.ErrUserSuspended
	case models.UserStatusBanned:
		return apperrors.ErrUserBanned
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
