package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"roomloop-backend/models"
	"roomloop-backend/repository"
	"roomloop-backend/utils"
)

const minPasswordLength = 6

// AuthService handles registration, credential checks, and token issuance.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtExpiry int
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtExpiryHours int) *AuthService {
	if users == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, jwtExpiry: jwtExpiryHours}
}

// Register creates a user with a bcrypt-hashed password. Duplicate username
// or email surfaces as ErrRegistrationFailed.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		return nil, ErrInternal
	}

	user := &models.User{Username: username, Email: email, Password: string(hashed)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrRegistrationFailed
		}
		logrus.WithError(err).WithField("username", username).Error("Failed to create user")
		return nil, ErrInternal
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

// Login verifies credentials (the login field matches username or email) and
// returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", ErrAuthenticationFailed
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrAuthenticationFailed
		}
		logrus.WithError(err).WithField("login", login).Error("Failed to look up user")
		return nil, "", ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrAuthenticationFailed
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to sign token")
		return nil, "", ErrInternal
	}
	return user, token, nil
}

// GetUser loads a user profile by ID.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternal
	}
	return user, nil
}
