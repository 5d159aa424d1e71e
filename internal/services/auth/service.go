// Package auth signs dashboard users in and out and verifies their cookie tokens.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"ordermenu/internal/apperr"
	"ordermenu/internal/cache"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
)

var errBadCredentials = apperr.Unauthorized("invalid email or password")

// Session is a signed-in user with the token to put in the cookie
type Session struct {
	User      *models.User           `json:"user"`
	Tenants   []models.TenantSummary `json:"tenants"`
	Token     string                 `json:"-"`
	ExpiresAt time.Time              `json:"-"`
}

type Service struct {
	users    repository.UserRepository
	tokens   *Tokens
	throttle cache.Throttle
	logger   *logger.Logger
}

func NewService(users repository.UserRepository, tokens *Tokens, throttle cache.Throttle, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, throttle: throttle, logger: log}
}

// NormalizeEmail is the stored form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// Login verifies the credentials and returns a session. Unknown emails and
// wrong passwords fail the same way and both count towards the lockout.
func (s *Service) Login(ctx context.Context, email, password, requestID string) (*Session, error) {
	email = NormalizeEmail(email)
	verr := &apperr.ValidationError{}
	if email == "" {
		verr.Add("email", "email is required")
	}
	if password == "" {
		verr.Add("password", "password is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	wait, err := s.throttle.Locked(ctx, email)
	if err != nil {
		s.logger.Warn("login_throttle_unavailable", err.Error(), requestID, nil)
	}
	if wait > 0 {
		return nil, apperr.Unauthorized(fmt.Sprintf("too many failed attempts, retry in %d seconds", int(wait.Round(time.Second).Seconds())))
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, s.fail(ctx, email, requestID)
		}
		return nil, errors.Wrap(err, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.fail(ctx, email, requestID)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn("login_throttle_unavailable", err.Error(), requestID, nil)
	}
	session, err := s.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user_logged_in", "User logged in", requestID, map[string]interface{}{"user_id": user.ID})
	return session, nil
}

func (s *Service) fail(ctx context.Context, email, requestID string) error {
	lock, err := s.throttle.Fail(ctx, email)
	if err != nil {
		s.logger.Warn("login_throttle_unavailable", err.Error(), requestID, nil)
	}
	if lock > 0 {
		s.logger.Warn("login_locked", "Login locked after repeated failures", requestID, map[string]interface{}{
			"lock_seconds": lock.Seconds(),
		})
	}
	return errBadCredentials
}

// Issue creates a session for an already verified user
func (s *Service) Issue(ctx context.Context, user *models.User) (*Session, error) {
	tenants, err := s.users.Tenants(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user tenants")
	}
	if tenants == nil {
		tenants = []models.TenantSummary{}
	}
	token, expires, err := s.tokens.Issue(&models.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Tenants: tenants,
	})
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tenants: tenants, Token: token, ExpiresAt: expires}, nil
}

// Authenticate verifies a cookie token
func (s *Service) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	return s.tokens.Parse(token)
}

// Me reloads the principal's user and current memberships
func (s *Service) Me(ctx context.Context, p *models.Principal) (*Session, error) {
	if p == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("authentication required")
		}
		return nil, err
	}
	tenants, err := s.users.Tenants(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user tenants")
	}
	if tenants == nil {
		tenants = []models.TenantSummary{}
	}
	return &Session{User: user, Tenants: tenants}, nil
}
