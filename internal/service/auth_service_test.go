package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/pkg/apperror"
	"github.com/b2bid/bidding-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:       "zakupki@stroyinvest.ru",
		Password:    "Password123",
		CompanyName: "СтройИнвест",
		ContactName: "Александр Иванов",
		Role:        models.RoleBuyer,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	// Пароль хранится только в виде bcrypt-хеша.
	assert.NotEqual(t, "Password123", result.User.PasswordHash)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrEmailTaken)

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "zakupki@stroyinvest.ru",
		Password:    "Password123",
		CompanyName: "СтройИнвест",
		ContactName: "Александр Иванов",
		Role:        models.RoleBuyer,
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager())
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"некорректный email", RegisterInput{Email: "not-an-email", Password: "Password123", CompanyName: "ООО Тест", ContactName: "Иван Иванов", Role: models.RoleBuyer}},
		{"слабый пароль", RegisterInput{Email: "a@b.ru", Password: "short", CompanyName: "ООО Тест", ContactName: "Иван Иванов", Role: models.RoleBuyer}},
		{"неизвестная роль", RegisterInput{Email: "a@b.ru", Password: "Password123", CompanyName: "ООО Тест", ContactName: "Иван Иванов", Role: "admin"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input, nil)
			assert.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	passHash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "zakupki@stroyinvest.ru",
		PasswordHash: string(passHash),
		Role:         models.RoleBuyer,
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "zakupki@stroyinvest.ru").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "zakupki@stroyinvest.ru", Password: "Password123"}, nil)

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	passHash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "zakupki@stroyinvest.ru",
		PasswordHash: string(passHash),
		Role:         models.RoleBuyer,
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "zakupki@stroyinvest.ru").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "zakupki@stroyinvest.ru", Password: "WrongPassword1"}, nil)

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "zakupki@stroyinvest.ru", IsActive: false}
	repo.On("GetByEmail", ctx, "zakupki@stroyinvest.ru").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "zakupki@stroyinvest.ru", Password: "Password123"}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
