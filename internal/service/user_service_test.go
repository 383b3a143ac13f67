package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetmii/internal/auth"
	"meetmii/internal/models"
	"meetmii/internal/repository"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestUserService(repo repository.UserRepository) *UserService {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	return NewUserService(repo, tokens, zap.NewNop())
}

func TestUserServiceRegister(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, repository.ErrNotFound)
	repo.On("FindByUsername", mock.Anything, "ana").Return(nil, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 1
	}).Return(nil)

	svc := newTestUserService(repo)
	user, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "supersecret",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "ana", user.Username)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.True(t, auth.CheckPassword("supersecret", user.PasswordHash))
	repo.AssertExpectations(t)
}

func TestUserServiceRegisterDuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(&models.User{ID: 1}, nil)

	svc := newTestUserService(repo)
	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana2",
		Password: "supersecret",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserServiceRegisterDuplicateUsername(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ana2@example.com").Return(nil, repository.ErrNotFound)
	repo.On("FindByUsername", mock.Anything, "ana").Return(&models.User{ID: 1}, nil)

	svc := newTestUserService(repo)
	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "ana2@example.com",
		Username: "ana",
		Password: "supersecret",
	})

	assert.ErrorIs(t, err, ErrUsernameTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserServiceRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Username: "ana", Password: "supersecret"}},
		{"email without at sign", RegisterRequest{Email: "ana.example.com", Username: "ana", Password: "supersecret"}},
		{"missing username", RegisterRequest{Email: "ana@example.com", Password: "supersecret"}},
		{"short password", RegisterRequest{Email: "ana@example.com", Username: "ana", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestUserService(new(mockUserRepository))
			_, err := svc.Register(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUserServiceLogin(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	stored := &models.User{ID: 7, Email: "ana@example.com", Username: "ana", PasswordHash: hash}

	repo := new(mockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)

	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	svc := NewUserService(repo, tokens, zap.NewNop())

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "ana@example.com",
		Password: "supersecret",
	})

	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
}

func TestUserServiceLoginInvalidCredentials(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	stored := &models.User{ID: 7, Email: "ana@example.com", PasswordHash: hash}

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)

		svc := newTestUserService(repo)
		_, err := svc.Login(context.Background(), &LoginRequest{
			Email:    "ana@example.com",
			Password: "wrongpassword",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

		svc := newTestUserService(repo)
		_, err := svc.Login(context.Background(), &LoginRequest{
			Email:    "ghost@example.com",
			Password: "supersecret",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserServiceGetByID(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("FindByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "ana"}, nil)
	repo.On("FindByID", mock.Anything, uint(99)).Return(nil, repository.ErrNotFound)

	svc := newTestUserService(repo)

	user, err := svc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
