package repository

import (
	"context"
	"sort"
	"sync"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// memoryDB backs the in-memory store. One mutex guards every map, so each
// repository call is atomic; records are copied in and out.
type memoryDB struct {
	mu sync.Mutex

	users       map[string]*models.User
	tenants     map[string]*models.Tenant
	memberships []models.TenantUser
	categories  map[string]*models.Category
	items       map[string]*models.MenuItem
	variants    map[string]*models.Variant
	modifiers   map[string]*models.Modifier
	options     map[string]*models.ModifierOption
	tables      map[string]*models.Table
	sessions    map[string]*models.TableSession
	orders      map[string]*models.Order
	numbers     map[string]string // tenant id + order number -> order id
	history     map[string][]models.OrderStatusLog
	sequences   map[string]int64
}

// NewMemoryStore returns a Store that keeps everything in process memory
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:      make(map[string]*models.User),
		tenants:    make(map[string]*models.Tenant),
		categories: make(map[string]*models.Category),
		items:      make(map[string]*models.MenuItem),
		variants:   make(map[string]*models.Variant),
		modifiers:  make(map[string]*models.Modifier),
		options:    make(map[string]*models.ModifierOption),
		tables:     make(map[string]*models.Table),
		sessions:   make(map[string]*models.TableSession),
		orders:     make(map[string]*models.Order),
		numbers:    make(map[string]string),
		history:    make(map[string][]models.OrderStatusLog),
		sequences:  make(map[string]int64),
	}
	return &Store{
		Tenants:    &memTenants{db: db},
		Users:      &memUsers{db: db},
		Categories: &memCategories{db: db},
		Menu:       &memMenu{db: db},
		Tables:     &memTables{db: db},
		Orders:     &memOrders{db: db, attempts: 5},
	}
}

// Tenants

type memTenants struct{ db *memoryDB }

func (r *memTenants) Register(_ context.Context, user *models.User, tenant *models.Tenant) error {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == user.Email {
			return apperr.Conflict("email %s is already registered", user.Email)
		}
	}
	for _, t := range db.tenants {
		if t.Slug == tenant.Slug {
			return apperr.Conflict("slug %s is already taken", tenant.Slug)
		}
	}

	now := nowUTC()
	user.CreatedAt, user.UpdatedAt = now, now
	tenant.CreatedAt, tenant.UpdatedAt = now, now

	u := *user
	t := *tenant
	db.users[u.ID] = &u
	db.tenants[t.ID] = &t
	db.memberships = append(db.memberships, models.TenantUser{TenantID: t.ID, UserID: u.ID, Role: models.RoleAdmin})
	return nil
}

func (r *memTenants) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tenants {
		if t.Slug == slug && t.IsActive {
			c := *t
			return &c, nil
		}
	}
	return nil, apperr.NotFound("tenant", slug)
}

func (r *memTenants) GetByID(_ context.Context, id string) (*models.Tenant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tenants[id]
	if !ok {
		return nil, apperr.NotFound("tenant", id)
	}
	c := *t
	return &c, nil
}

func (r *memTenants) SlugExists(_ context.Context, slug string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tenants {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTenants) Update(_ context.Context, t *models.Tenant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.tenants[t.ID]
	if !ok {
		return apperr.NotFound("tenant", t.ID)
	}
	t.Slug, t.IsActive, t.CreatedAt = cur.Slug, cur.IsActive, cur.CreatedAt
	t.UpdatedAt = nowUTC()
	c := *t
	r.db.tenants[t.ID] = &c
	return nil
}

func (r *memTenants) Stats(_ context.Context, tenantID string) (*models.TenantStats, error) {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	var s models.TenantStats
	for _, o := range db.orders {
		if o.TenantID == tenantID {
			s.TotalOrders++
		}
	}
	for _, it := range db.items {
		if it.TenantID == tenantID && !it.Lifecycle.IsDeleted() {
			s.TotalMenuItems++
		}
	}
	for _, t := range db.tables {
		if t.TenantID == tenantID && !t.Lifecycle.IsDeleted() {
			s.TotalTables++
		}
	}
	for _, ss := range db.sessions {
		if ss.TenantID == tenantID && ss.IsActive {
			s.ActiveSessions++
		}
	}
	return &s, nil
}

// Users

type memUsers struct{ db *memoryDB }

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	c := *u
	return &c, nil
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUsers) Tenants(_ context.Context, userID string) ([]models.TenantSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.TenantSummary
	for _, m := range r.db.memberships {
		if m.UserID != userID {
			continue
		}
		t, ok := r.db.tenants[m.TenantID]
		if !ok || !t.IsActive {
			continue
		}
		out = append(out, models.TenantSummary{ID: t.ID, Slug: t.Slug, Name: t.Name, Role: m.Role})
	}
	return out, nil
}

// Categories

type memCategories struct{ db *memoryDB }

func (r *memCategories) List(_ context.Context, tenantID string) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.listCategories(tenantID), nil
}

func (db *memoryDB) listCategories(tenantID string) []models.Category {
	out := []models.Category{}
	for _, c := range db.categories {
		if c.TenantID == tenantID && !c.Lifecycle.IsDeleted() {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memCategories) Get(_ context.Context, tenantID, id string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok || c.TenantID != tenantID || c.Lifecycle.IsDeleted() {
		return nil, apperr.NotFound("category", id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCategories) Create(_ context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	last := 0
	for _, other := range r.db.categories {
		if other.TenantID == c.TenantID && !other.Lifecycle.IsDeleted() && other.SortOrder > last {
			last = other.SortOrder
		}
	}
	now := nowUTC()
	c.ID = newID()
	c.SortOrder = last + 1
	c.Lifecycle = models.Active()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.db.categories[c.ID] = &cp
	return nil
}

func (r *memCategories) Update(_ context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.categories[c.ID]
	if !ok || cur.TenantID != c.TenantID || cur.Lifecycle.IsDeleted() {
		return apperr.NotFound("category", c.ID)
	}
	c.CreatedAt, c.Lifecycle = cur.CreatedAt, cur.Lifecycle
	c.UpdatedAt = nowUTC()
	cp := *c
	r.db.categories[c.ID] = &cp
	return nil
}

func (r *memCategories) Delete(_ context.Context, tenantID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok || c.TenantID != tenantID || c.Lifecycle.IsDeleted() {
		return apperr.NotFound("category", id)
	}
	c.Lifecycle = models.Deleted(nowUTC())
	return nil
}
