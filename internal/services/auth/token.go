package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// Claims is the payload of the auth cookie token
type Claims struct {
	UserID  string                 `json:"userId"`
	Email   string                 `json:"email"`
	Name    string                 `json:"name"`
	Tenants []models.TenantSummary `json:"tenants"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for p and returns it with its expiry
func (t *Tokens) Issue(p *models.Principal) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)

	tenants := make([]models.TenantSummary, 0, len(p.Tenants))
	for _, ts := range p.Tenants {
		tenants = append(tenants, models.TenantSummary{ID: ts.ID, Slug: ts.Slug, Name: ts.Name})
	}
	claims := Claims{
		UserID:  p.UserID,
		Email:   p.Email,
		Name:    p.Name,
		Tenants: tenants,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}
	return signed, expires, nil
}

// Parse verifies token and returns its principal
func (t *Tokens) Parse(token string) (*models.Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return &models.Principal{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		Tenants: claims.Tenants,
	}, nil
}
