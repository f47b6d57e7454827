package auth

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	"github.com/ryucoder/crown-backend/internal/service/notification"
	"github.com/ryucoder/crown-backend/pkg/auth"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/logger"
)

const (
	bcryptCost = 12

	// Token values must be unique per user, so generation retries on
	// collision up to this many times before giving up.
	maxTokenAttempts = 10
)

type Service struct {
	users    repository.UserRepository
	business repository.BusinessRepository
	tokens   repository.TokenRepository
	jwtSvc   auth.JWTService
	notifier *notification.Service
	logger   *logger.Logger
}

func NewService(
	users repository.UserRepository,
	business repository.BusinessRepository,
	tokens repository.TokenRepository,
	jwtSvc auth.JWTService,
	notifier *notification.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		business: business,
		tokens:   tokens,
		jwtSvc:   jwtSvc,
		notifier: notifier,
		logger:   logger,
	}
}

// Login authenticates an email user and returns the details view with a
// fresh token pair attached.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.UserDetails, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeAbsent {
			return nil, apperrors.Unauthorized(fmt.Errorf("unknown email"))
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("wrong password"))
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(fmt.Errorf("account deactivated"))
	}
	if !user.IsEmailVerified {
		return nil, apperrors.Precondition("email", "email is not verified")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	business, err := s.business.GetForUser(ctx, user.ID)
	if err != nil && apperrors.CodeOf(err) != apperrors.CodeAbsent {
		return nil, err
	}

	details := model.NewUserDetails(user, business)
	details.Tokens = tokens
	return details, nil
}

// UserDetails returns the per-user_type view for an authenticated user,
// without tokens.
func (s *Service) UserDetails(ctx context.Context, userID uuid.UUID) (*model.UserDetails, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	business, err := s.business.GetForUser(ctx, user.ID)
	if err != nil && apperrors.CodeOf(err) != apperrors.CodeAbsent {
		return nil, err
	}

	return model.NewUserDetails(user, business), nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("unknown user"))
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(fmt.Errorf("account deactivated"))
	}

	return s.issueTokens(user)
}

// Signup creates the owner user, their business, and the ownership link
// in one transaction, then mails a verification token. The mail is best
// effort and never fails the signup.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.EmailUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	owner := &model.EmailUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		UserType:     model.UserTypeOwner,
		Mobile:       req.Mobile,
		IsActive:     true,
	}
	business := &model.Business{
		Name:      req.BusinessName,
		Category:  req.Category,
		IsActive:  true,
		IsClaimed: true,
	}
	if req.GSTIN != "" {
		business.GSTIN = &req.GSTIN
	}
	if req.Website != "" {
		business.Website = &req.Website
	}

	if err := s.business.CreateWithOwner(ctx, business, owner, nil); err != nil {
		return nil, err
	}

	token, err := s.createPasswordToken(ctx, owner.ID, model.TokenCategorySignup, model.SignupTokenExpiry)
	if err != nil {
		s.logger.Error(err, "failed to create signup token", "user_id", owner.ID)
		return owner, nil
	}
	s.notifier.NotifySignupToken(ctx, owner.Email, token.Token.String())

	return owner, nil
}

// VerifySignup consumes a signup token and marks the user's email
// verified. The (email, token) pair must match exactly.
func (s *Service) VerifySignup(ctx context.Context, req *model.VerifySignupRequest) error {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	token, err := s.tokens.GetPasswordToken(ctx, user.ID, req.Token, model.TokenCategorySignup)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeAbsent {
			return apperrors.Mismatch("token")
		}
		return err
	}

	now := time.Now()
	if !token.IsValid(now) {
		if token.IsUsed {
			return apperrors.Used("token")
		}
		return apperrors.Expired("token")
	}

	return s.tokens.ConsumeForEmailVerification(ctx, token.ID, user.ID, now)
}

// RequestPasswordReset issues a reset token for the user. While an
// unexpired pending token exists no new one is issued.
func (s *Service) RequestPasswordReset(ctx context.Context, req *model.RequestPasswordResetRequest) error {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	pending, err := s.tokens.HasUnexpiredPasswordToken(ctx, user.ID, model.TokenCategoryReset, time.Now())
	if err != nil {
		return err
	}
	if pending {
		return apperrors.Precondition("token", "an unexpired reset token is already pending")
	}

	token, err := s.createPasswordToken(ctx, user.ID, model.TokenCategoryReset, model.ResetTokenExpiry)
	if err != nil {
		return err
	}
	s.notifier.NotifyPasswordResetToken(ctx, user.Email, token.Token.String())

	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if req.PasswordOne != req.PasswordTwo {
		return apperrors.Mismatch("password_two")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	token, err := s.tokens.GetPasswordToken(ctx, user.ID, req.Token, model.TokenCategoryReset)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeAbsent {
			return apperrors.Mismatch("token")
		}
		return err
	}

	now := time.Now()
	if !token.IsValid(now) {
		if token.IsUsed {
			return apperrors.Used("token")
		}
		return apperrors.Expired("token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PasswordOne), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tokens.ConsumeForPasswordReset(ctx, token.ID, user.ID, string(hash), now)
}

// RequestMobileToken issues a 6-digit code for the mobile number. Codes
// are scoped by number, not user, and at most one unexpired pending
// code exists per number.
func (s *Service) RequestMobileToken(ctx context.Context, req *model.MobileTokenRequest) (*model.MobileToken, error) {
	pending, err := s.tokens.HasUnexpiredMobileToken(ctx, req.Mobile, time.Now())
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.Precondition("token", "an unexpired mobile token is already pending")
	}

	token := &model.MobileToken{
		Mobile: req.Mobile,
		Token:  100000 + rand.Intn(900000),
		Expiry: time.Now().Add(model.MobileTokenExpiry),
	}
	if err := s.tokens.CreateMobileToken(ctx, token); err != nil {
		return nil, err
	}

	// SMS delivery is handled by an external gateway outside this
	// service. The code is returned to the caller for dispatch.
	return token, nil
}

// VerifyMobileToken consumes a mobile code and marks every user holding
// that number as mobile verified.
func (s *Service) VerifyMobileToken(ctx context.Context, req *model.VerifyMobileTokenRequest) error {
	token, err := s.tokens.GetMobileToken(ctx, req.Mobile, req.Token)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeAbsent {
			return apperrors.Mismatch("token")
		}
		return err
	}

	now := time.Now()
	if !token.IsValid(now) {
		if token.IsUsed {
			return apperrors.Used("token")
		}
		return apperrors.Expired("token")
	}

	return s.tokens.ConsumeForMobileVerification(ctx, token.ID, req.Mobile, now)
}

func (s *Service) issueTokens(user *model.EmailUser) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) createPasswordToken(ctx context.Context, userID uuid.UUID, category model.TokenCategory, ttl time.Duration) (*model.PasswordToken, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		value := uuid.New()
		exists, err := s.tokens.PasswordTokenValueExists(ctx, userID, value)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		token := &model.PasswordToken{
			EmailUserID: userID,
			Token:       value,
			Category:    category,
			Expiry:      time.Now().Add(ttl),
		}
		if err := s.tokens.CreatePasswordToken(ctx, token); err != nil {
			return nil, err
		}
		return token, nil
	}
	return nil, fmt.Errorf("failed to generate a unique token after %d attempts", maxTokenAttempts)
}
