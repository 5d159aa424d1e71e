package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/database"
	"ordermenu/internal/models"
)

type pgTenants struct {
	db *database.DB
}

func (r *pgTenants) Register(ctx context.Context, user *models.User, tenant *models.Tenant) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertUserSQL, user.ID, user.Email, user.Name, user.PasswordHash).
			Scan(&user.CreatedAt, &user.UpdatedAt)
		if database.IsUniqueViolation(err, "") {
			return apperr.Conflict("email %s is already registered", user.Email)
		}
		if err != nil {
			return errors.Wrap(err, "failed to insert user")
		}

		err = tx.QueryRow(ctx, database.InsertTenantSQL, tenant.ID, tenant.Name, tenant.Slug, tenant.Description,
			tenant.Address, tenant.Phone, tenant.LogoURL, tenant.TelegramChatID, tenant.IsActive).
			Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
		if database.IsUniqueViolation(err, "tenants_slug_key") {
			return apperr.Conflict("slug %s is already taken", tenant.Slug)
		}
		if err != nil {
			return errors.Wrap(err, "failed to insert tenant")
		}

		if _, err := tx.Exec(ctx, database.InsertTenantUserSQL, tenant.ID, user.ID, models.RoleAdmin); err != nil {
			return errors.Wrap(err, "failed to link user to tenant")
		}
		return nil
	})
}

func (r *pgTenants) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx, database.GetTenantBySlugSQL, slug))
	if err != nil {
		return nil, notFoundOr(err, "tenant", slug)
	}
	return t, nil
}

func (r *pgTenants) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx, database.GetTenantByIDSQL, id))
	if err != nil {
		return nil, notFoundOr(err, "tenant", id)
	}
	return t, nil
}

func (r *pgTenants) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, database.TenantSlugExistsSQL, slug).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check slug")
	}
	return exists, nil
}

func (r *pgTenants) Update(ctx context.Context, t *models.Tenant) error {
	err := r.db.QueryRow(ctx, database.UpdateTenantSQL, t.ID, t.Name, t.Description, t.Address, t.Phone,
		t.LogoURL, t.TelegramChatID).Scan(&t.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "tenant", t.ID)
	}
	return nil
}

func (r *pgTenants) Stats(ctx context.Context, tenantID string) (*models.TenantStats, error) {
	var s models.TenantStats
	err := r.db.QueryRow(ctx, database.TenantStatsSQL, tenantID).
		Scan(&s.TotalOrders, &s.TotalMenuItems, &s.TotalTables, &s.ActiveSessions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tenant stats")
	}
	return &s, nil
}

type pgUsers struct {
	db *database.DB
}

func (r *pgUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, database.GetUserByEmailSQL, email))
	if err != nil {
		return nil, notFoundOr(err, "user", email)
	}
	return u, nil
}

func (r *pgUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, database.GetUserByIDSQL, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return u, nil
}

func (r *pgUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, database.UserEmailExistsSQL, email).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}
	return exists, nil
}

func (r *pgUsers) Tenants(ctx context.Context, userID string) ([]models.TenantSummary, error) {
	rows, err := r.db.Query(ctx, database.ListUserTenantsSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user tenants")
	}
	defer rows.Close()

	var out []models.TenantSummary
	for rows.Next() {
		var s models.TenantSummary
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Role); err != nil {
			return nil, errors.Wrap(err, "failed to scan user tenant")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
