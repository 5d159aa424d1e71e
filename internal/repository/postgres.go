package repository

import (
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/database"
	"ordermenu/internal/logger"
)

// NewPostgresStore builds every repository over db. numberAttempts bounds
// the order number retries on unique violations.
func NewPostgresStore(db *database.DB, log *logger.Logger, numberAttempts int) *Store {
	if numberAttempts < 1 {
		numberAttempts = 1
	}
	return &Store{
		Tenants:    &pgTenants{db: db},
		Users:      &pgUsers{db: db},
		Categories: &pgCategories{db: db},
		Menu:       &pgMenu{db: db},
		Tables:     &pgTables{db: db},
		Orders:     &pgOrders{db: db, log: log, attempts: numberAttempts},
		ping:       db.Ping,
	}
}

// notFoundOr maps a no-rows error to NotFoundError and wraps anything else
func notFoundOr(err error, resource, id string) error {
	if database.IsNoRows(err) {
		return apperr.NotFound(resource, id)
	}
	return errors.Wrapf(err, "failed to load %s", resource)
}

// requireAffected turns an update that touched nothing into NotFoundError
func requireAffected(rows int64, resource, id string) error {
	if rows == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}
