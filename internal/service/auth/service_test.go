package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/service/notification"
	"github.com/ryucoder/crown-backend/pkg/auth"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/logger"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.EmailUser
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.EmailUser) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.EmailUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.Absent("user")
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.EmailUser, error) {
	for _, user := range f.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, apperrors.Absent("user")
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.EmailUser) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.Absent("user")
	}
	f.users[user.ID] = user
	return nil
}

type fakeBusinessRepo struct {
	byUser map[uuid.UUID]*model.Business
}

func (f *fakeBusinessRepo) CreateWithOwner(_ context.Context, business *model.Business, owner *model.EmailUser, _ *model.BusinessConnect) error {
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	if owner.ID == uuid.Nil {
		owner.ID = uuid.New()
	}
	f.byUser[owner.ID] = business
	return nil
}
func (f *fakeBusinessRepo) Get(context.Context, uuid.UUID) (*model.Business, error) {
	return nil, apperrors.Absent("business")
}
func (f *fakeBusinessRepo) GetWithRelations(context.Context, uuid.UUID) (*model.Business, error) {
	return nil, apperrors.Absent("business")
}
func (f *fakeBusinessRepo) GetForUser(_ context.Context, userID uuid.UUID) (*model.Business, error) {
	business, ok := f.byUser[userID]
	if !ok {
		return nil, apperrors.Absent("business")
	}
	return business, nil
}
func (f *fakeBusinessRepo) GetOwnerID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, apperrors.Absent("owner")
}
func (f *fakeBusinessRepo) Update(context.Context, *model.Business) error { return nil }
func (f *fakeBusinessRepo) Deactivate(context.Context, uuid.UUID) error   { return nil }
func (f *fakeBusinessRepo) ListExcept(context.Context, uuid.UUID, model.Pagination) ([]*model.Business, int, error) {
	return nil, 0, nil
}
func (f *fakeBusinessRepo) ListConnected(context.Context, uuid.UUID, model.Pagination) ([]*model.Business, int, error) {
	return nil, 0, nil
}
func (f *fakeBusinessRepo) CreateEmployee(context.Context, *model.EmailUser, *model.BusinessEmployee) error {
	return nil
}

type fakeTokenRepo struct {
	users          *fakeUserRepo
	passwordTokens []*model.PasswordToken
	mobileTokens   []*model.MobileToken
}

func (f *fakeTokenRepo) CreatePasswordToken(_ context.Context, token *model.PasswordToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	f.passwordTokens = append(f.passwordTokens, token)
	return nil
}

func (f *fakeTokenRepo) GetPasswordToken(_ context.Context, userID uuid.UUID, value uuid.UUID, category model.TokenCategory) (*model.PasswordToken, error) {
	for _, token := range f.passwordTokens {
		if token.EmailUserID == userID && token.Token == value && token.Category == category {
			return token, nil
		}
	}
	return nil, apperrors.Absent("token")
}

func (f *fakeTokenRepo) HasUnexpiredPasswordToken(_ context.Context, userID uuid.UUID, category model.TokenCategory, now time.Time) (bool, error) {
	for _, token := range f.passwordTokens {
		if token.EmailUserID == userID && token.Category == category && token.IsValid(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenRepo) PasswordTokenValueExists(_ context.Context, userID uuid.UUID, value uuid.UUID) (bool, error) {
	for _, token := range f.passwordTokens {
		if token.EmailUserID == userID && token.Token == value {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenRepo) ConsumeForEmailVerification(ctx context.Context, tokenID, userID uuid.UUID, usedAt time.Time) error {
	for _, token := range f.passwordTokens {
		if token.ID == tokenID {
			token.IsUsed = true
			token.UsedTime = &usedAt
		}
	}
	user, err := f.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.IsEmailVerified = true
	return nil
}

func (f *fakeTokenRepo) ConsumeForPasswordReset(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string, usedAt time.Time) error {
	for _, token := range f.passwordTokens {
		if token.ID == tokenID {
			token.IsUsed = true
			token.UsedTime = &usedAt
		}
	}
	user, err := f.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeTokenRepo) CreateMobileToken(_ context.Context, token *model.MobileToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	f.mobileTokens = append(f.mobileTokens, token)
	return nil
}

func (f *fakeTokenRepo) GetMobileToken(_ context.Context, mobile int64, value int) (*model.MobileToken, error) {
	for _, token := range f.mobileTokens {
		if token.Mobile == mobile && token.Token == value {
			return token, nil
		}
	}
	return nil, apperrors.Absent("token")
}

func (f *fakeTokenRepo) HasUnexpiredMobileToken(_ context.Context, mobile int64, now time.Time) (bool, error) {
	for _, token := range f.mobileTokens {
		if token.Mobile == mobile && token.IsValid(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenRepo) ConsumeForMobileVerification(_ context.Context, tokenID uuid.UUID, mobile int64, usedAt time.Time) error {
	for _, token := range f.mobileTokens {
		if token.ID == tokenID {
			token.IsUsed = true
			token.UsedTime = &usedAt
		}
	}
	for _, user := range f.users.users {
		if user.Mobile == mobile {
			user.IsMobileVerified = true
			user.MobileVerifiedTime = &usedAt
		}
	}
	return nil
}

type noopEmail struct{}

func (noopEmail) SendSignupVerification(context.Context, string, string) error { return nil }
func (noopEmail) SendPasswordReset(context.Context, string, string) error      { return nil }
func (noopEmail) SendOwnerInvite(context.Context, string, string) error        { return nil }
func (noopEmail) SendCustom(context.Context, string, string, string) error     { return nil }

type noopBroker struct{}

func (noopBroker) Publish(context.Context, string, interface{}) error { return nil }
func (noopBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}
func (noopBroker) Close() error { return nil }

type fixture struct {
	svc    *Service
	users  *fakeUserRepo
	tokens *fakeTokenRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &fakeUserRepo{users: make(map[uuid.UUID]*model.EmailUser)}
	tokens := &fakeTokenRepo{users: users}
	businesses := &fakeBusinessRepo{byUser: make(map[uuid.UUID]*model.Business)}

	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-secret", RefreshSecret: "test-refresh"})
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	notifier := notification.NewService(noopEmail{}, noopBroker{}, log, nil)

	return &fixture{
		svc:    NewService(users, businesses, tokens, jwtSvc, notifier, log),
		users:  users,
		tokens: tokens,
	}
}

func (f *fixture) seedUser(t *testing.T, verified bool) *model.EmailUser {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.EmailUser{
		Base:            model.Base{ID: uuid.New()},
		FirstName:       "Ravi",
		LastName:        "Kumar",
		Email:           "ravi@example.com",
		PasswordHash:    string(hash),
		UserType:        model.UserTypeOwner,
		Mobile:          9876543210,
		IsEmailVerified: verified,
		IsActive:        true,
	}
	f.users.users[user.ID] = user
	return user
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, true)

	details, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ravi@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	require.NotNil(t, details.Tokens)
	assert.NotEmpty(t, details.Tokens.AccessToken)
	assert.NotEmpty(t, details.Tokens.RefreshToken)
	assert.Equal(t, "ravi@example.com", details.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, true)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ravi@example.com",
		Password: "wrong",
	})
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cretpass",
	})
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, false)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ravi@example.com",
		Password: "s3cretpass",
	})
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, true)

	details, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ravi@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	tokens, err := f.svc.Refresh(context.Background(), details.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// an access token is not a refresh token
	_, err = f.svc.Refresh(context.Background(), details.Tokens.AccessToken)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestSignupCreatesVerificationToken(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Signup(context.Background(), &model.SignupRequest{
		FirstName:    "Ravi",
		LastName:     "Kumar",
		Email:        "ravi@example.com",
		Password:     "s3cretpass",
		Mobile:       9876543210,
		BusinessName: "Smile Dental",
		Category:     model.CategoryDentist,
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserTypeOwner, user.UserType)

	require.Len(t, f.tokens.passwordTokens, 1)
	token := f.tokens.passwordTokens[0]
	assert.Equal(t, model.TokenCategorySignup, token.Category)
	assert.Equal(t, user.ID, token.EmailUserID)
	assert.True(t, token.IsValid(time.Now()))
	assert.WithinDuration(t, time.Now().Add(model.SignupTokenExpiry), token.Expiry, 5*time.Second)
}

func TestVerifySignup(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, false)

	token := &model.PasswordToken{
		Base:        model.Base{ID: uuid.New()},
		EmailUserID: user.ID,
		Token:       uuid.New(),
		Category:    model.TokenCategorySignup,
		Expiry:      time.Now().Add(model.SignupTokenExpiry),
	}
	f.tokens.passwordTokens = append(f.tokens.passwordTokens, token)

	// wrong token value is a mismatch, not absent
	err := f.svc.VerifySignup(context.Background(), &model.VerifySignupRequest{
		Email: user.Email,
		Token: uuid.New(),
	})
	assert.Equal(t, apperrors.CodeMismatch, apperrors.CodeOf(err))
	assert.False(t, user.IsEmailVerified)

	require.NoError(t, f.svc.VerifySignup(context.Background(), &model.VerifySignupRequest{
		Email: user.Email,
		Token: token.Token,
	}))
	assert.True(t, user.IsEmailVerified)
	assert.True(t, token.IsUsed)

	// second use is rejected
	err = f.svc.VerifySignup(context.Background(), &model.VerifySignupRequest{
		Email: user.Email,
		Token: token.Token,
	})
	assert.Equal(t, apperrors.CodeUsed, apperrors.CodeOf(err))
}

func TestVerifySignupExpiredToken(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, false)

	token := &model.PasswordToken{
		Base:        model.Base{ID: uuid.New()},
		EmailUserID: user.ID,
		Token:       uuid.New(),
		Category:    model.TokenCategorySignup,
		Expiry:      time.Now().Add(-time.Minute),
	}
	f.tokens.passwordTokens = append(f.tokens.passwordTokens, token)

	err := f.svc.VerifySignup(context.Background(), &model.VerifySignupRequest{
		Email: user.Email,
		Token: token.Token,
	})
	assert.Equal(t, apperrors.CodeExpired, apperrors.CodeOf(err))
}

func TestRequestPasswordResetBlocksWhilePending(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, true)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), &model.RequestPasswordResetRequest{
		Email: user.Email,
	}))
	require.Len(t, f.tokens.passwordTokens, 1)

	err := f.svc.RequestPasswordReset(context.Background(), &model.RequestPasswordResetRequest{
		Email: user.Email,
	})
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
	assert.Len(t, f.tokens.passwordTokens, 1)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, true)
	oldHash := user.PasswordHash

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), &model.RequestPasswordResetRequest{
		Email: user.Email,
	}))
	token := f.tokens.passwordTokens[0]

	// mismatched confirmation
	err := f.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:       user.Email,
		Token:       token.Token,
		PasswordOne: "newpass1234",
		PasswordTwo: "different",
	})
	assert.Equal(t, apperrors.CodeMismatch, apperrors.CodeOf(err))

	require.NoError(t, f.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:       user.Email,
		Token:       token.Token,
		PasswordOne: "newpass1234",
		PasswordTwo: "newpass1234",
	}))
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.True(t, token.IsUsed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpass1234")))
}

func TestMobileTokenFlow(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, true)

	token, err := f.svc.RequestMobileToken(context.Background(), &model.MobileTokenRequest{Mobile: user.Mobile})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, token.Token, 100000)
	assert.LessOrEqual(t, token.Token, 999999)

	// a second request while pending is blocked
	_, err = f.svc.RequestMobileToken(context.Background(), &model.MobileTokenRequest{Mobile: user.Mobile})
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))

	// wrong code is a mismatch
	err = f.svc.VerifyMobileToken(context.Background(), &model.VerifyMobileTokenRequest{
		Mobile: user.Mobile,
		Token:  token.Token + 1,
	})
	assert.Equal(t, apperrors.CodeMismatch, apperrors.CodeOf(err))

	require.NoError(t, f.svc.VerifyMobileToken(context.Background(), &model.VerifyMobileTokenRequest{
		Mobile: user.Mobile,
		Token:  token.Token,
	}))
	assert.True(t, user.IsMobileVerified)
	require.NotNil(t, user.MobileVerifiedTime)
}
