package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agristock/internal/model"
	"agristock/internal/repository"
	"agristock/pkg/jwt"
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ChangePassword(email, oldPassword, newPassword string) error
	SetPassword(email, newPassword string) error
	EnsureOwner(email, password, fullName string) (bool, error)
	Authenticate(token string) (*jwt.Claims, error)
}

type LoginResponse struct {
	Token      string      `json:"token"`
	User       *model.User `json:"user"`
	Privileges []string    `json:"privileges"`
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, tokens: tokens, now: time.Now}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// One session per user: a new login invalidates older tokens
	version := uuid.New().String()
	now := s.now()
	if err := s.users.UpdateSession(user.ID, version, now); err != nil {
		return nil, errors.New("failed to update session")
	}
	user.TokenVersion = version
	user.LastLoginAt = &now

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.Role, user.Privileges(), version)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, User: user, Privileges: user.Privileges()}, nil
}

func (s *authService) ChangePassword(email, oldPassword, newPassword string) error {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.storePassword(user, newPassword)
}

// SetPassword resets a password without the old one. CLI only.
func (s *authService) SetPassword(email, newPassword string) error {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrUserNotFound
	}
	return s.storePassword(user, newPassword)
}

func (s *authService) storePassword(user *model.User, password string) error {
	if len(password) < 6 {
		return newValidationError("new_password", "must be at least 6 characters")
	}
	if err := user.SetPassword(password); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.users.UpdatePassword(user.ID, user.Password)
}

// EnsureOwner creates the first owner account when it does not exist yet
func (s *authService) EnsureOwner(email, password, fullName string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.users.FindByEmail(email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	owner := &model.User{Email: email, FullName: fullName, Role: model.RoleOwner, IsActive: true}
	owner.CreatedBy = SystemActor.ID
	owner.UpdatedBy = SystemActor.ID
	if err := validate(owner); err != nil {
		return false, err
	}
	if err := owner.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.users.Create(owner); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate validates a token and checks it is the user's live session
func (s *authService) Authenticate(token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return claims, nil
}
