package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"paintquote_backend/internal/auth"
	"paintquote_backend/internal/email"
	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

// Длительность триала фиксируется при регистрации и не продлевается
const trialDuration = 7 * 24 * time.Hour

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(req *dto.RegisterRequest) error
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(refreshToken string) (*dto.LoginResponse, error)
	Logout(refreshToken string) error
	VerifyEmail(token string) error
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
	ChangePassword(userID, currentPassword, newPassword string) error
	InviteMember(companyID string, req *dto.InviteMemberRequest) (*dto.UserResponse, error)
	ListMembers(companyID string) ([]dto.UserResponse, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	emailProvider    email.Provider
	tokenManager     *auth.TokenManager
}

func NewAuthService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	emailProvider email.Provider,
	tokenManager *auth.TokenManager,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		emailProvider:    emailProvider,
		tokenManager:     tokenManager,
	}
}

// Register - регистрация компании и её владельца
func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) error {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	// Дубликат email ловим до создания компании, чтобы не оставлять
	// компанию-сироту
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return apperrors.ErrEmailAlreadyExists
	}

	company := &models.Company{
		Name:  req.CompanyName,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := s.userRepo.CreateCompany(company); err != nil {
		return apperrors.InternalError(err)
	}

	verificationToken := generateRandomToken()

	user := &models.User{
		CompanyID:         company.ID,
		Name:              req.Name,
		Email:             req.Email,
		PasswordHash:      hashedPassword,
		Role:              models.UserRoleOwner,
		Status:            models.UserStatusPending,
		IsVerified:        false,
		VerificationToken: verificationToken,
	}
	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.InternalError(err)
	}

	if err := s.createTrialSubscription(company.ID); err != nil {
		logger.Error("Failed to create trial subscription", "company_id", company.ID, "error", err)
		return apperrors.InternalError(err)
	}

	s.sendVerificationEmail(user.Email, user.Name, verificationToken)

	return nil
}

// createTrialSubscription заводит подписку с фиксированным триальным
// окном и сразу прогоняет первый пересчет лимитов
func (s *AuthServiceImpl) createTrialSubscription(companyID string) error {
	now := time.Now()
	sub := &models.Subscription{
		CompanyID:  companyID,
		TrialStart: now,
		TrialEnd:   now.Add(trialDuration),
		Status:     models.SubscriptionStatusTrial,
		PlanName:   entitlement.TrialPlanName,
	}
	if err := s.subscriptionRepo.Create(sub); err != nil {
		return err
	}

	_, err := s.subscriptionRepo.RecalculateAndPersist(companyID, now)
	return err
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}

	return s.buildLoginResponse(user)
}

func (s *AuthServiceImpl) buildLoginResponse(user *models.User) (*dto.LoginResponse, error) {
	accessToken, err := s.tokenManager.GenerateToken(user.ID, user.CompanyID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.userRepo.CreateRefreshToken(&models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	}, nil
}

// RefreshToken - обмен refresh-токена на новую пару токенов
func (s *AuthServiceImpl) RefreshToken(refreshToken string) (*dto.LoginResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(refreshToken)
		return nil, apperrors.NewUnauthorizedError("Refresh token expired")
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
	}

	// Ротация: старый токен одноразовый
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.buildLoginResponse(user)
}

// Logout - отзыв refresh-токена
func (s *AuthServiceImpl) Logout(refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// VerifyEmail - подтверждение email по токену из письма
func (s *AuthServiceImpl) VerifyEmail(token string) error {
	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid verification token")
	}
	if err := s.userRepo.VerifyUser(user.ID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// RequestPasswordReset - запрос сброса пароля.
// Не раскрывает, существует ли email.
func (s *AuthServiceImpl) RequestPasswordReset(emailAddr string) error {
	user, err := s.userRepo.FindByEmail(emailAddr)
	if err != nil {
		return nil
	}

	resetToken := generateRandomToken()
	exp := time.Now().Add(time.Hour)
	user.ResetToken = resetToken
	user.ResetTokenExp = &exp
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}

	go func() {
		err := s.emailProvider.SendWithTemplate(email.TemplatePasswordReset, email.TemplateData{
			"Name":     user.Name,
			"ResetURL": fmt.Sprintf("https://app.paintquote.app/reset-password?token=%s", resetToken),
		}, &email.Email{
			To:      []string{user.Email},
			Subject: "Password reset",
		})
		if err != nil {
			logger.Error("Failed to send password reset email", "error", err)
		}
	}()

	return nil
}

// ResetPassword - установка нового пароля по reset-токену
func (s *AuthServiceImpl) ResetPassword(token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	user, err := s.userRepo.FindByResetToken(token)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid reset token")
	}
	if user.ResetTokenExp == nil || time.Now().After(*user.ResetTokenExp) {
		return apperrors.NewBadRequestError("Reset token expired")
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = hashed
	user.ResetToken = ""
	user.ResetTokenExp = nil
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}

	// Все сессии сбрасываются вместе с паролем
	_ = s.userRepo.DeleteUserRefreshTokens(user.ID)

	return nil
}

// ChangePassword - смена пароля авторизованным пользователем
func (s *AuthServiceImpl) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}

	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = hashed
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// InviteMember - добавление сотрудника в компанию.
// Лимит мест берется из кэша подписки после свежего пересчета.
func (s *AuthServiceImpl) InviteMember(companyID string, req *dto.InviteMemberRequest) (*dto.UserResponse, error) {
	sub, err := s.subscriptionRepo.RecalculateAndPersist(companyID, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	count, err := s.userRepo.CountByCompany(companyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if sub.MaxUsers != entitlement.Unlimited && count >= int64(sub.MaxUsers) {
		return nil, apperrors.ErrSubscriptionLimitReached
	}

	role := models.UserRoleMember
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	// Временный пароль; приглашенный сбрасывает его по ссылке из письма
	tempPassword := generateRandomToken()
	hashed, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resetToken := generateRandomToken()
	exp := time.Now().Add(72 * time.Hour)
	user := &models.User{
		CompanyID:     companyID,
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hashed,
		Role:          role,
		Status:        models.UserStatusPending,
		ResetToken:    resetToken,
		ResetTokenExp: &exp,
	}
	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	go func() {
		err := s.emailProvider.SendWithTemplate(email.TemplatePasswordReset, email.TemplateData{
			"Name":     user.Name,
			"ResetURL": fmt.Sprintf("https://app.paintquote.app/reset-password?token=%s", resetToken),
		}, &email.Email{
			To:      []string{user.Email},
			Subject: "You have been invited",
		})
		if err != nil {
			logger.Error("Failed to send invite email", "error", err)
		}
	}()

	resp := toUserResponse(user)
	return &resp, nil
}

// ListMembers возвращает пользователей компании
func (s *AuthServiceImpl) ListMembers(companyID string) ([]dto.UserResponse, error) {
	users, err := s.userRepo.FindByCompany(companyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *AuthServiceImpl) sendVerificationEmail(emailAddr, name, token string) {
	go func() {
		err := s.emailProvider.SendWithTemplate(email.TemplateVerification, email.TemplateData{
			"AppName":   "PaintQuote",
			"Name":      name,
			"VerifyURL": fmt.Sprintf("https://app.paintquote.app/verify?token=%s", token),
		}, &email.Email{
			To:      []string{emailAddr},
			Subject: "Confirm your email",
		})
		if err != nil {
			logger.Error("Failed to send verification email", "error", err)
		}
	}()
}

func toUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		CompanyID:  user.CompanyID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		IsVerified: user.IsVerified,
	}
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand сбоит только при сломанной системе
		panic(err)
	}
	return hex.EncodeToString(b)
}
