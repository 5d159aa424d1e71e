package repository

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
	"ordermenu/internal/pricing"
)

type memOrders struct {
	db       *memoryDB
	attempts int
}

// memoryView reads menu state while the store lock is held by Place
type memoryView struct{ db *memoryDB }

func (v memoryView) MenuItems(_ context.Context, tenantID string, ids []string) (map[string]*models.MenuItem, error) {
	out := make(map[string]*models.MenuItem, len(ids))
	for _, id := range ids {
		stored, ok := v.db.liveItem(tenantID, id)
		if !ok {
			continue
		}
		it := v.db.assembleItem(stored)
		out[id] = &it
	}
	return out, nil
}

func (v memoryView) TableSession(_ context.Context, tenantID, id string) (*models.TableSession, error) {
	return v.db.session(tenantID, id)
}

var errDuplicateNumber = errors.New("duplicate order number")

func (r *memOrders) Place(ctx context.Context, tenant *models.Tenant, changedBy string, build BuildOrderFunc) (*models.Order, error) {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	o, err := build(ctx, memoryView{db: db})
	if err != nil {
		return nil, err
	}
	prepareOrder(o, tenant.ID)

	// work on a staged counter so a failed placement leaves no trace
	seq, ok := db.sequences[tenant.ID]
	if !ok {
		for _, existing := range db.orders {
			if existing.TenantID == tenant.ID {
				seq++
			}
		}
	}

	_, err = numberWithRetry(r.attempts,
		func() (int64, error) {
			seq++
			return seq, nil
		},
		func(next int64) error {
			number := pricing.FormatOrderNumber(tenant.Slug, next)
			if _, taken := db.numbers[tenant.ID+"/"+number]; taken {
				return errDuplicateNumber
			}
			o.OrderNumber = number
			return nil
		},
		func(err error) bool { return err == errDuplicateNumber },
	)
	if err != nil {
		return nil, apperr.Conflict("could not assign an order number after %d attempts", r.attempts)
	}

	now := nowUTC()
	o.CreatedAt, o.UpdatedAt = now, now

	db.sequences[tenant.ID] = seq
	db.orders[o.ID] = cloneOrder(o)
	db.numbers[tenant.ID+"/"+o.OrderNumber] = o.ID
	db.history[o.ID] = append(db.history[o.ID], models.OrderStatusLog{
		ID:        newID(),
		OrderID:   o.ID,
		Status:    o.Status,
		ChangedBy: changedBy,
		ChangedAt: now,
	})
	return cloneOrder(o), nil
}

func (r *memOrders) Get(_ context.Context, tenantID, id string) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, apperr.NotFound("order", id)
	}
	return cloneOrder(o), nil
}

func (r *memOrders) GetByNumber(_ context.Context, tenantID, number string) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, ok := r.db.numbers[tenantID+"/"+number]
	if !ok {
		return nil, apperr.NotFound("order", number)
	}
	return cloneOrder(r.db.orders[id]), nil
}

func (r *memOrders) List(_ context.Context, tenantID string, f models.OrderFilter) ([]models.Order, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []*models.Order
	for _, o := range r.db.orders {
		if o.TenantID != tenantID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.OrderType != nil && o.OrderType != *f.OrderType {
			continue
		}
		matched = append(matched, o)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].OrderNumber > matched[j].OrderNumber
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	out := make([]models.Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, *cloneOrder(o))
	}
	return out, total, nil
}

func (r *memOrders) UpdateStatus(_ context.Context, tenantID, id string, next models.OrderStatus, changedBy string, note *string) (*models.Order, models.OrderStatus, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, ok := r.db.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, "", apperr.NotFound("order", id)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, "", apperr.Conflict("order %s cannot move from %s to %s", o.OrderNumber, o.Status, next)
	}

	prev := o.Status
	now := nowUTC()
	o.Status = next
	o.UpdatedAt = now
	r.db.history[id] = append(r.db.history[id], models.OrderStatusLog{
		ID:        newID(),
		OrderID:   id,
		Status:    next,
		ChangedBy: changedBy,
		Note:      cloneStr(note),
		ChangedAt: now,
	})
	return cloneOrder(o), prev, nil
}

func (r *memOrders) History(_ context.Context, orderID string) ([]models.OrderStatusLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.OrderStatusLog, 0, len(r.db.history[orderID]))
	for _, e := range r.db.history[orderID] {
		e.Note = cloneStr(e.Note)
		out = append(out, e)
	}
	return out, nil
}

// cloneOrder deep-copies an order tree so callers never share storage
func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.TableSessionID = cloneStr(o.TableSessionID)
	c.CustomerName = cloneStr(o.CustomerName)
	c.CustomerPhone = cloneStr(o.CustomerPhone)
	c.CustomerEmail = cloneStr(o.CustomerEmail)
	c.Note = cloneStr(o.Note)

	c.Items = make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		ci := it
		ci.Note = cloneStr(it.Note)
		if it.Variant != nil {
			v := *it.Variant
			ci.Variant = &v
		}
		ci.Modifiers = append([]models.OrderItemModifier{}, it.Modifiers...)
		c.Items[i] = ci
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
