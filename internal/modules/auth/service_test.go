package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"toyrental/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type stubJWT struct{}

func (stubJWT) GenerateToken(userID int64, isAdmin bool) (string, error) {
	return "token", nil
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	repo.On("Count", mock.Anything).Return(int64(0), nil)
	repo.On("GetByUsername", mock.Anything, "admin").Return(nil, gorm.ErrRecordNotFound)
	repo.On("GetByEmail", mock.Anything, "admin@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := service.Register(context.Background(), RegisterRequest{
		Username: "admin",
		Email:    "Admin@Example.com",
		Password: "secret123",
	}, false)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegisterClosedForNonAdmins(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	repo.On("Count", mock.Anything).Return(int64(1), nil)

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}, false)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterByAdminCreatesRegularUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	repo.On("Count", mock.Anything).Return(int64(1), nil)
	repo.On("GetByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
	repo.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := service.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}, true)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
}

func TestRegisterValidation(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"blank username", RegisterRequest{Username: "  ", Email: "a@b.com", Password: "secret123"}},
		{"blank email", RegisterRequest{Username: "bob", Email: "", Password: "secret123"}},
		{"short password", RegisterRequest{Username: "bob", Email: "a@b.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.req, true)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	repo.On("Count", mock.Anything).Return(int64(1), nil)
	repo.On("GetByUsername", mock.Anything, "bob").Return(&domain.User{ID: 2, Username: "bob"}, nil)

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}, true)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetByUsername", mock.Anything, "admin").
		Return(&domain.User{ID: 1, Username: "admin", PasswordHash: string(hash), IsAdmin: true}, nil)

	result, err := service.Login(context.Background(), "admin", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token", result.Token)
	assert.True(t, result.User.IsAdmin)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetByUsername", mock.Anything, "admin").
		Return(&domain.User{ID: 1, Username: "admin", PasswordHash: string(hash)}, nil)

	_, err = service.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewService(repo, stubJWT{})

	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
