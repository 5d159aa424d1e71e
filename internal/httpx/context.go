// Package httpx holds the HTTP plumbing shared by every service handler:
// JSON responses, error mapping, request context values and middleware.
package httpx

import (
	"context"

	"ordermenu/internal/models"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	principalKey
	tenantKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id set by the logging middleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated user, nil on public routes
func PrincipalFrom(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}

func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// TenantFrom returns the tenant resolved from the {slug} path segment
func TenantFrom(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantKey).(*models.Tenant)
	return t
}
