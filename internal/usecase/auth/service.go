// Package auth handles account signup, login and JWT issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/navtrail/navtrail-backend/internal/domain"
	"github.com/navtrail/navtrail-backend/internal/ratelimit"
)

const (
	tokenTTL   = 24 * time.Hour
	bcryptCost = 10
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Result is a successful signup or login: the bearer token plus the safe
// projection of the account.
type Result struct {
	Token string          `json:"token"`
	User  domain.SafeUser `json:"user"`
}

// Service handles account registration and authentication. Login attempts
// are tracked per client IP in the injected counter store.
type Service struct {
	UserRepo domain.UserRepository
	Attempts ratelimit.Store

	jwtSecret []byte
	log       zerolog.Logger
	now       func() time.Time // overridable in tests
}

// NewService creates a new auth Service instance.
func NewService(userRepo domain.UserRepository, attempts ratelimit.Store, jwtSecret string, log zerolog.Logger) *Service {
	return &Service{
		UserRepo:  userRepo,
		Attempts:  attempts,
		jwtSecret: []byte(jwtSecret),
		log:       log.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

// Signup registers a new account and returns a fresh token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Result, error) {
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if err := checkPasswordPolicy(password); err != nil {
		return nil, err
	}

	if _, err := s.UserRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
		CreatedAt:    s.now(),
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Msg("User registered")
	return &Result{Token: token, User: user.Safe()}, nil
}

// Login authenticates an existing account. Failed attempts count against
// the clientIP; once the window limit is reached the login is rejected
// with domain.ErrTooManyAttempts until the window rolls over. A successful
// login resets the counter.
func (s *Service) Login(ctx context.Context, email, password, clientIP string) (*Result, error) {
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	key := "login:" + clientIP
	if !s.Attempts.Peek(key) {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.Attempts.Hit(key)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Attempts.Hit(key)
		return nil, domain.ErrInvalidCredentials
	}

	s.Attempts.Reset(key)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: user.Safe()}, nil
}

// ParseToken validates a bearer token and returns the user ID it carries.
func (s *Service) ParseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	idStr, ok := claims["id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	return id, nil
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// checkPasswordPolicy enforces the signup password rules: at least 8
// characters with one uppercase letter, one lowercase letter, one digit
// and one special character.
func checkPasswordPolicy(password string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("%w: password must be at least 8 characters and include an uppercase letter, a lowercase letter, a number and a special character", domain.ErrInvalidInput)
	}
	return nil
}
