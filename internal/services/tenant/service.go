// Package tenant registers restaurants and serves their profile and dashboard stats.
package tenant

import (
	"context"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
	"ordermenu/internal/services/auth"
)

const (
	minSlugLen     = 3
	maxSlugLen     = 50
	minPasswordLen = 6
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)
)

// reserved slugs collide with top-level API paths
var reserved = map[string]bool{"auth": true, "tenants": true, "health": true, "admin": true}

// Slugify derives a url slug from a display name
func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Slug     string `json:"slug"`
}

// UpdateRequest changes the tenant profile; nil fields are left alone
type UpdateRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	LogoURL        *string `json:"logoUrl"`
	TelegramChatID *int64  `json:"telegramChatId"`
}

// SlugCheck answers whether a slug can still be registered
type SlugCheck struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// Registration is the created tenant with the owner's session
type Registration struct {
	Tenant  *models.Tenant `json:"tenant"`
	Session *auth.Session  `json:"session"`
}

type Service struct {
	tenants repository.TenantRepository
	users   repository.UserRepository
	auth    *auth.Service
	logger  *logger.Logger
}

func NewService(tenants repository.TenantRepository, users repository.UserRepository, authn *auth.Service, log *logger.Logger) *Service {
	return &Service{tenants: tenants, users: users, auth: authn, logger: log}
}

func validateSlug(slug string, verr *apperr.ValidationError) {
	switch {
	case len(slug) < minSlugLen:
		verr.Add("slug", "slug must be at least 3 characters")
	case len(slug) > maxSlugLen:
		verr.Add("slug", "slug must be at most 50 characters")
	case !slugPattern.MatchString(slug):
		verr.Add("slug", "slug may only contain lowercase letters, digits and dashes")
	case reserved[slug]:
		verr.Add("slug", "slug is reserved")
	}
}

// Register creates the owner account, the tenant and the admin membership
// together and signs the owner in.
func (s *Service) Register(ctx context.Context, req RegisterRequest, requestID string) (*Registration, error) {
	name := strings.TrimSpace(req.Name)
	email := auth.NormalizeEmail(req.Email)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	verr := &apperr.ValidationError{}
	if name == "" {
		verr.Add("name", "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.Add("email", "invalid email address")
	}
	if len(req.Password) < minPasswordLen {
		verr.Add("password", "password must be at least 6 characters")
	}
	validateSlug(slug, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if taken {
		return nil, apperr.Conflict("email %s is already registered", email)
	}
	taken, err = s.tenants.SlugExists(ctx, slug)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check slug")
	}
	if taken {
		return nil, apperr.Conflict("slug %s is already taken", slug)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: hash}
	tenant := &models.Tenant{ID: uuid.NewString(), Name: name, Slug: slug, IsActive: true}
	// the repository re-checks both under its own lock or unique index
	if err := s.tenants.Register(ctx, user, tenant); err != nil {
		return nil, err
	}

	session, err := s.auth.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant_registered", "Tenant registered", requestID, map[string]interface{}{
		"tenant":  tenant.Slug,
		"user_id": user.ID,
	})
	return &Registration{Tenant: tenant, Session: session}, nil
}

// Get returns an active tenant
func (s *Service) Get(ctx context.Context, slug string) (*models.Tenant, error) {
	return s.tenants.GetBySlug(ctx, slug)
}

func (s *Service) CheckSlug(ctx context.Context, slug string) (*SlugCheck, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	verr := &apperr.ValidationError{}
	validateSlug(slug, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	taken, err := s.tenants.SlugExists(ctx, slug)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check slug")
	}
	return &SlugCheck{Slug: slug, Available: !taken}, nil
}

func (s *Service) Stats(ctx context.Context, tenant *models.Tenant) (*models.TenantStats, error) {
	return s.tenants.Stats(ctx, tenant.ID)
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *Service) Update(ctx context.Context, tenant *models.Tenant, req UpdateRequest) (*models.Tenant, error) {
	t := *tenant
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
		if t.Name == "" {
			return nil, apperr.Invalid("name", "name is required")
		}
	}
	if req.Description != nil {
		t.Description = optional(req.Description)
	}
	if req.Address != nil {
		t.Address = optional(req.Address)
	}
	if req.Phone != nil {
		t.Phone = optional(req.Phone)
	}
	if req.LogoURL != nil {
		t.LogoURL = optional(req.LogoURL)
	}
	if req.TelegramChatID != nil {
		if *req.TelegramChatID == 0 {
			t.TelegramChatID = nil
		} else {
			id := *req.TelegramChatID
			t.TelegramChatID = &id
		}
	}
	if err := s.tenants.Update(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
