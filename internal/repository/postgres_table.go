package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/database"
	"ordermenu/internal/models"
)

type pgTables struct {
	db *database.DB
}

func (r *pgTables) List(ctx context.Context, tenantID string) ([]models.Table, error) {
	tables, err := queryAll(ctx, r.db, database.ListTablesSQL, scanTable, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	out := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		out = append(out, *t)
	}
	return out, nil
}

func (r *pgTables) Get(ctx context.Context, tenantID, id string) (*models.Table, error) {
	t, err := scanTable(r.db.QueryRow(ctx, database.GetTableSQL, tenantID, id))
	if err != nil {
		return nil, notFoundOr(err, "table", id)
	}
	return t, nil
}

func (r *pgTables) GetByToken(ctx context.Context, tenantID, token string) (*models.Table, error) {
	t, err := scanTable(r.db.QueryRow(ctx, database.GetTableByTokenSQL, tenantID, token))
	if err != nil {
		return nil, notFoundOr(err, "table", "")
	}
	return t, nil
}

func (r *pgTables) Create(ctx context.Context, t *models.Table) error {
	t.ID = newID()
	t.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertTableSQL, t.ID, t.TenantID, t.Code, t.Name, t.Capacity, t.QRCodeToken).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	return errors.Wrap(err, "failed to insert table")
}

func (r *pgTables) Update(ctx context.Context, t *models.Table) error {
	err := r.db.QueryRow(ctx, database.UpdateTableSQL, t.TenantID, t.ID, t.Code, t.Name, t.Capacity).Scan(&t.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "table", t.ID)
	}
	return nil
}

func (r *pgTables) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteTableSQL, tenantID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete table")
	}
	return requireAffected(tag.RowsAffected(), "table", id)
}

func (r *pgTables) OpenSession(ctx context.Context, tenantID, tableID string) (*models.TableSession, error) {
	var session *models.TableSession
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx, database.InsertSessionSQL, newID(), tenantID, tableID))
		if err == nil {
			session = s
			return nil
		}
		if !database.IsNoRows(err) {
			return errors.Wrap(err, "failed to start table session")
		}
		// another session is already open
		s, err = scanSession(tx.QueryRow(ctx, database.GetActiveSessionSQL, tenantID, tableID))
		if err != nil {
			return notFoundOr(err, "table session", "")
		}
		session = s
		return nil
	})
	return session, err
}

func (r *pgTables) GetSession(ctx context.Context, tenantID, id string) (*models.TableSession, error) {
	s, err := scanSession(r.db.QueryRow(ctx, database.GetSessionSQL, tenantID, id))
	if err != nil {
		return nil, notFoundOr(err, "table session", id)
	}
	return s, nil
}

func (r *pgTables) CloseSession(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, database.CloseSessionSQL, tenantID, id)
	if err != nil {
		return errors.Wrap(err, "failed to close table session")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("active table session", id)
	}
	return nil
}
