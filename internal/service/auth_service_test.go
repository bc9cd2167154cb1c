package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/pkg/apperror"
	"github.com/arthub/arthub-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
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

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(repo, tokens)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	repo.On("GetByEmail", mock.Anything, "ivan.petrov@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ivan.petrov@example.com",
		Password: "Sup3rSecret",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ivan_petrov", result.User.Username)
	assert.Equal(t, models.RoleBuyer, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	// Пароль не хранится в открытом виде.
	assert.NotEqual(t, "Sup3rSecret", result.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("Sup3rSecret")))
	repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	existing := &models.User{ID: uuid.New(), Email: "taken@example.com"}
	repo.On("GetByEmail", mock.Anything, "taken@example.com").Return(existing, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "Sup3rSecret",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже зарегистрирован")
	repo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "short",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByEmail")
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	repo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "Sup3rSecret",
		Role:     models.RoleAdmin,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "недопустимая роль")
	repo.AssertNotCalled(t, "Create")
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	assert.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleArtist,
		IsActive:     true,
	}
	repo.On("GetByEmail", mock.Anything, "ivan@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", mock.Anything, user.ID).Return(nil)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "ivan@example.com",
		Password: "Sup3rSecret",
	})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	assert.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	repo.On("GetByEmail", mock.Anything, "ivan@example.com").Return(user, nil)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "ivan@example.com",
		Password: "WrongPass1",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неверный email или пароль")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "Sup3rSecret",
	})

	// Текст ошибки не раскрывает, существует ли аккаунт.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неверный email или пароль")
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	user := &models.User{ID: uuid.New(), Email: "banned@example.com", IsActive: false}
	repo.On("GetByEmail", mock.Anything, "banned@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "banned@example.com",
		Password: "Sup3rSecret",
	})

	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	user := &models.User{ID: uuid.New(), Role: models.RoleBuyer, IsActive: true}
	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	assert.NotEmpty(t, newPair.RefreshToken)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "невалиден")
	repo.AssertNotCalled(t, "GetByID")
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)

	user := &models.User{ID: uuid.New(), Role: models.RoleBuyer, IsActive: true}
	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	// Access токен подписан другим секретом и не годится для обновления.
	_, err = svc.Refresh(context.Background(), pair.AccessToken)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetByID")
}

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "ivan_petrov", deriveUsername("Ivan.Petrov@example.com"))
	assert.Equal(t, "ivan_tag", deriveUsername("ivan+tag@example.com"))

	short := deriveUsername("ab@example.com")
	assert.Contains(t, short, "user_")
	assert.GreaterOrEqual(t, len(short), 3)
}
