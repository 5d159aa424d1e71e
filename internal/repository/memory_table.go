package repository

import (
	"context"
	"sort"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

type memTables struct{ db *memoryDB }

func (db *memoryDB) liveTable(tenantID, id string) (*models.Table, bool) {
	t, ok := db.tables[id]
	if !ok || t.TenantID != tenantID || t.Lifecycle.IsDeleted() {
		return nil, false
	}
	return t, true
}

func (r *memTables) List(_ context.Context, tenantID string) ([]models.Table, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Table{}
	for _, t := range r.db.tables {
		if t.TenantID == tenantID && !t.Lifecycle.IsDeleted() {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memTables) Get(_ context.Context, tenantID, id string) (*models.Table, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.liveTable(tenantID, id)
	if !ok {
		return nil, apperr.NotFound("table", id)
	}
	cp := *t
	return &cp, nil
}

func (r *memTables) GetByToken(_ context.Context, tenantID, token string) (*models.Table, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tables {
		if t.TenantID == tenantID && t.QRCodeToken == token && !t.Lifecycle.IsDeleted() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("table", "")
}

func (r *memTables) Create(_ context.Context, t *models.Table) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := nowUTC()
	t.ID = newID()
	t.Lifecycle = models.Active()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.db.tables[t.ID] = &cp
	return nil
}

func (r *memTables) Update(_ context.Context, t *models.Table) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.liveTable(t.TenantID, t.ID)
	if !ok {
		return apperr.NotFound("table", t.ID)
	}
	t.QRCodeToken, t.CreatedAt, t.Lifecycle = cur.QRCodeToken, cur.CreatedAt, cur.Lifecycle
	t.UpdatedAt = nowUTC()
	cp := *t
	r.db.tables[t.ID] = &cp
	return nil
}

func (r *memTables) Delete(_ context.Context, tenantID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.liveTable(tenantID, id)
	if !ok {
		return apperr.NotFound("table", id)
	}
	t.Lifecycle = models.Deleted(nowUTC())
	return nil
}

func (r *memTables) OpenSession(_ context.Context, tenantID, tableID string) (*models.TableSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.liveTable(tenantID, tableID); !ok {
		return nil, apperr.NotFound("table", tableID)
	}
	for _, s := range r.db.sessions {
		if s.TableID == tableID && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	s := &models.TableSession{
		ID:        newID(),
		TenantID:  tenantID,
		TableID:   tableID,
		IsActive:  true,
		StartedAt: nowUTC(),
	}
	r.db.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *memTables) GetSession(_ context.Context, tenantID, id string) (*models.TableSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.session(tenantID, id)
}

func (db *memoryDB) session(tenantID, id string) (*models.TableSession, error) {
	s, ok := db.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, apperr.NotFound("table session", id)
	}
	cp := *s
	if s.EndedAt != nil {
		ended := *s.EndedAt
		cp.EndedAt = &ended
	}
	return &cp, nil
}

func (r *memTables) CloseSession(_ context.Context, tenantID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok || s.TenantID != tenantID || !s.IsActive {
		return apperr.NotFound("active table session", id)
	}
	now := nowUTC()
	s.IsActive = false
	s.EndedAt = &now
	return nil
}
