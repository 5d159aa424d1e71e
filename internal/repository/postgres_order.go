package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/database"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/pricing"
)

const orderNumberConstraint = "orders_tenant_number_key"

type pgOrders struct {
	db       *database.DB
	log      *logger.Logger
	attempts int
}

type pgMenuView struct {
	q database.Querier
}

func (v *pgMenuView) MenuItems(ctx context.Context, tenantID string, ids []string) (map[string]*models.MenuItem, error) {
	items, err := loadMenuItems(ctx, v.q, database.LockMenuItemsSQL, tenantID, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.MenuItem, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func (v *pgMenuView) TableSession(ctx context.Context, tenantID, id string) (*models.TableSession, error) {
	s, err := scanSession(v.q.QueryRow(ctx, database.GetSessionSQL, tenantID, id))
	if err != nil {
		return nil, notFoundOr(err, "table session", id)
	}
	return s, nil
}

func (r *pgOrders) Place(ctx context.Context, tenant *models.Tenant, changedBy string, build BuildOrderFunc) (*models.Order, error) {
	var placed *models.Order

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := build(ctx, &pgMenuView{q: tx})
		if err != nil {
			return err
		}
		prepareOrder(o, tenant.ID)

		attempts, err := numberWithRetry(r.attempts,
			func() (int64, error) {
				var seq int64
				err := tx.QueryRow(ctx, database.NextOrderSequenceSQL, tenant.ID).Scan(&seq)
				return seq, errors.Wrap(err, "failed to reserve order sequence")
			},
			func(seq int64) error {
				o.OrderNumber = pricing.FormatOrderNumber(tenant.Slug, seq)
				return database.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
					return sp.QueryRow(ctx, database.InsertOrderSQL, o.ID, o.TenantID, o.OrderNumber, o.OrderType,
						o.TableSessionID, o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.Note, o.Status,
						o.Subtotal, o.Discount, o.ServiceCharge, o.Tax, o.Total).
						Scan(&o.CreatedAt, &o.UpdatedAt)
				})
			},
			func(err error) bool { return database.IsUniqueViolation(err, orderNumberConstraint) },
		)
		if attempts > 1 {
			r.log.Warn("order_number_retry", "Order number collided, reserved a new one", "", map[string]interface{}{
				"tenant_id": tenant.ID,
				"attempts":  attempts,
			})
		}
		if err != nil {
			var exhausted errNumberExhausted
			if errors.As(err, &exhausted) {
				return apperr.Conflict("could not assign an order number after %d attempts", r.attempts)
			}
			return errors.Wrap(err, "failed to insert order")
		}

		if err := insertOrderItems(ctx, tx, o); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, database.InsertOrderStatusLogSQL, newID(), o.ID, o.Status, changedBy, nil); err != nil {
			return errors.Wrap(err, "failed to insert status log")
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	for i := range o.Items {
		it := &o.Items[i]
		_, err := tx.Exec(ctx, database.InsertOrderItemSQL, it.ID, o.TenantID, o.ID, it.MenuItemID, it.Position,
			it.NameSnapshot, it.BasePriceSnapshot, it.UnitPrice, it.Quantity, it.LineTotal, it.Note)
		if err != nil {
			return errors.Wrapf(err, "failed to insert order item %d", i)
		}

		if v := it.Variant; v != nil {
			_, err := tx.Exec(ctx, database.InsertOrderItemVariantSQL, v.ID, o.TenantID, it.ID, v.VariantID,
				v.NameSnapshot, v.PriceDeltaSnapshot)
			if err != nil {
				return errors.Wrapf(err, "failed to insert variant snapshot of item %d", i)
			}
		}

		for j, m := range it.Modifiers {
			_, err := tx.Exec(ctx, database.InsertOrderItemModifierSQL, m.ID, o.TenantID, it.ID, m.ModifierID,
				m.OptionID, j, m.ModifierNameSnapshot, m.NameSnapshot, m.PriceDeltaSnapshot)
			if err != nil {
				return errors.Wrapf(err, "failed to insert modifier snapshot of item %d", i)
			}
		}
	}
	return nil
}

func (r *pgOrders) Get(ctx context.Context, tenantID, id string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, database.GetOrderSQL, tenantID, id))
	if err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	if err := loadOrderItems(ctx, r.db, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrders) GetByNumber(ctx context.Context, tenantID, number string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, database.GetOrderByNumberSQL, tenantID, number))
	if err != nil {
		return nil, notFoundOr(err, "order", number)
	}
	if err := loadOrderItems(ctx, r.db, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrders) List(ctx context.Context, tenantID string, f models.OrderFilter) ([]models.Order, int, error) {
	var status, orderType *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	if f.OrderType != nil {
		t := string(*f.OrderType)
		orderType = &t
	}

	rows, err := r.db.Query(ctx, database.ListOrdersSQL, tenantID, status, orderType, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orders")
	}
	defer rows.Close()

	var (
		orders []*models.Order
		total  int
	)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(append(orderDest(&o), &total)...); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan order")
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to read orders")
	}
	rows.Close()

	if err := loadOrderItems(ctx, r.db, orders); err != nil {
		return nil, 0, err
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, total, nil
}

func (r *pgOrders) UpdateStatus(ctx context.Context, tenantID, id string, next models.OrderStatus, changedBy string, note *string) (*models.Order, models.OrderStatus, error) {
	var (
		order *models.Order
		prev  models.OrderStatus
	)

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, database.GetOrderForUpdateSQL, tenantID, id))
		if err != nil {
			return notFoundOr(err, "order", id)
		}
		if !o.Status.CanTransitionTo(next) {
			return apperr.Conflict("order %s cannot move from %s to %s", o.OrderNumber, o.Status, next)
		}

		prev = o.Status
		if err := tx.QueryRow(ctx, database.UpdateOrderStatusSQL, tenantID, id, next).Scan(&o.UpdatedAt); err != nil {
			return errors.Wrap(err, "failed to update order status")
		}
		o.Status = next

		if _, err := tx.Exec(ctx, database.InsertOrderStatusLogSQL, newID(), o.ID, next, changedBy, note); err != nil {
			return errors.Wrap(err, "failed to insert status log")
		}

		if err := loadOrderItems(ctx, tx, []*models.Order{o}); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return order, prev, nil
}

func (r *pgOrders) History(ctx context.Context, orderID string) ([]models.OrderStatusLog, error) {
	rows, err := r.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query order history")
	}
	defer rows.Close()

	history := []models.OrderStatusLog{}
	for rows.Next() {
		var e models.OrderStatusLog
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.ChangedBy, &e.Note, &e.ChangedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan order history")
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// loadOrderItems attaches items with their variant and modifier snapshots
func loadOrderItems(ctx context.Context, q database.Querier, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Items = []models.OrderItem{}
		byID[o.ID] = o
	}

	items, err := queryAll(ctx, q, database.ListOrderItemsSQL, func(row pgx.Row) (models.OrderItem, error) {
		var it models.OrderItem
		err := row.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Position, &it.NameSnapshot, &it.BasePriceSnapshot,
			&it.UnitPrice, &it.Quantity, &it.LineTotal, &it.Note)
		it.Modifiers = []models.OrderItemModifier{}
		return it, err
	}, ids)
	if err != nil {
		return errors.Wrap(err, "failed to load order items")
	}

	variants, err := queryAll(ctx, q, database.ListOrderItemVariantsSQL, func(row pgx.Row) (models.OrderItemVariant, error) {
		var v models.OrderItemVariant
		err := row.Scan(&v.ID, &v.OrderItemID, &v.VariantID, &v.NameSnapshot, &v.PriceDeltaSnapshot)
		return v, err
	}, ids)
	if err != nil {
		return errors.Wrap(err, "failed to load variant snapshots")
	}

	modifiers, err := queryAll(ctx, q, database.ListOrderItemModifiersSQL, func(row pgx.Row) (models.OrderItemModifier, error) {
		var m models.OrderItemModifier
		err := row.Scan(&m.ID, &m.OrderItemID, &m.ModifierID, &m.OptionID, &m.ModifierNameSnapshot,
			&m.NameSnapshot, &m.PriceDeltaSnapshot)
		return m, err
	}, ids)
	if err != nil {
		return errors.Wrap(err, "failed to load modifier snapshots")
	}

	itemIndex := make(map[string]int, len(items))
	for i := range items {
		itemIndex[items[i].ID] = i
	}
	for i := range variants {
		v := variants[i]
		items[itemIndex[v.OrderItemID]].Variant = &v
	}
	for _, m := range modifiers {
		idx := itemIndex[m.OrderItemID]
		items[idx].Modifiers = append(items[idx].Modifiers, m)
	}
	for _, it := range items {
		o := byID[it.OrderID]
		o.Items = append(o.Items, it)
	}
	return nil
}

// prepareOrder assigns ids to the order tree and sets the initial status
func prepareOrder(o *models.Order, tenantID string) {
	o.ID = newID()
	o.TenantID = tenantID
	o.Status = models.StatusPlaced
	for i := range o.Items {
		it := &o.Items[i]
		it.ID = newID()
		it.OrderID = o.ID
		if it.Variant != nil {
			it.Variant.ID = newID()
			it.Variant.OrderItemID = it.ID
		}
		for j := range it.Modifiers {
			it.Modifiers[j].ID = newID()
			it.Modifiers[j].OrderItemID = it.ID
		}
	}
}
