// Package auth implements the authentication collaborator: credential
// checks and token issuance/verification for submitting principals.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
)

// ErrInvalidCredentials covers unknown email and wrong password alike,
// so responses don't reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned for malformed, forged, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal identifies an authenticated submitter.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Claims is the JWT payload.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service issues and verifies principals backed by the user store.
type Service struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(users repository.UserRepository, secret string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: 24 * time.Hour,
		logger:   logger,
	}
}

// Register creates a user after checking the email shape and password
// strength rules.
func (s *Service) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, common.NewValidationError("invalid email format")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, email, string(hash), name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("auth.register.ok", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func checkPassword(password string) error {
	switch {
	case len(password) < 8:
		return common.NewValidationError("password must be at least 8 characters")
	case !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return common.NewValidationError("password must contain at least one uppercase letter")
	case !strings.ContainsAny(password, "0123456789"):
		return common.NewValidationError("password must contain at least one number")
	case !strings.ContainsAny(password, "!@#$%^&*"):
		return common.NewValidationError("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// Authenticate checks credentials and returns the principal with a
// signed token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Principal, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Principal{}, "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Principal{}, "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("auth.login.ok", "user_id", u.ID)
	return Principal{ID: u.ID, Email: u.Email}, token, nil
}

// Verify parses and validates a token, returning its principal.
func (s *Service) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: claims.UserID, Email: claims.Email}, nil
}
