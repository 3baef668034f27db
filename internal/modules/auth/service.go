package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"toyrental/internal/domain"
)

type jwtService interface {
	GenerateToken(userID int64, isAdmin bool) (string, error)
}

type Service struct {
	users UserRepository
	jwt   jwtService
}

func NewService(users UserRepository, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User  *domain.User
	Token string
}

// Register creates a staff account. The very first account bootstraps
// the system and becomes the administrator; after that only an admin
// may add users (actingAdmin comes from the caller's verified claims,
// the service never looks up sessions itself).
func (s *Service) Register(ctx context.Context, req RegisterRequest, actingAdmin bool) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		return nil, ErrValidation
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total > 0 && !actingAdmin {
		return nil, ErrRegistrationClosed
	}

	if err := s.checkUnique(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      total == 0,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) checkUnique(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}
