package database

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "orders_tenant_number_key"}

	assert.True(t, IsUniqueViolation(dup, ""))
	assert.True(t, IsUniqueViolation(dup, "orders_tenant_number_key"))
	assert.True(t, IsUniqueViolation(errors.Wrap(dup, "insert order"), "orders_tenant_number_key"))
	assert.False(t, IsUniqueViolation(dup, "tenants_slug_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(errors.Wrap(pgx.ErrNoRows, "get tenant")))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestGetMigrationFilesSorted(t *testing.T) {
	files, err := getMigrationFiles("../../migrations")
	assert.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_snapshot_immutability.sql"}, files)
}
