package database

// Tenant and user queries
const (
	tenantColumns = `id, name, slug, description, address, phone, logo_url, telegram_chat_id, is_active, created_at, updated_at`

	InsertUserSQL = `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	InsertTenantSQL = `
		INSERT INTO tenants (id, name, slug, description, address, phone, logo_url, telegram_chat_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	InsertTenantUserSQL = `
		INSERT INTO tenant_users (tenant_id, user_id, role)
		VALUES ($1, $2, $3)`

	GetTenantBySlugSQL = `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1 AND is_active`

	GetTenantByIDSQL = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	TenantSlugExistsSQL = `SELECT EXISTS(SELECT 1 FROM tenants WHERE slug = $1)`

	UpdateTenantSQL = `
		UPDATE tenants SET name = $2, description = $3, address = $4, phone = $5, logo_url = $6,
			telegram_chat_id = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	TenantStatsSQL = `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM menu_items WHERE tenant_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM tables WHERE tenant_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM table_sessions WHERE tenant_id = $1 AND is_active)`

	userColumns = `id, email, name, password_hash, created_at, updated_at`

	GetUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	GetUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	UserEmailExistsSQL = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	ListUserTenantsSQL = `
		SELECT t.id, t.slug, t.name, tu.role
		FROM tenant_users tu
		JOIN tenants t ON t.id = tu.tenant_id
		WHERE tu.user_id = $1 AND t.is_active
		ORDER BY tu.created_at ASC`
)

// Category queries
const (
	categoryColumns = `id, tenant_id, name, sort_order, is_active, created_at, updated_at, deleted_at`

	ListCategoriesSQL = `
		SELECT ` + categoryColumns + ` FROM categories
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at DESC`

	GetCategorySQL = `
		SELECT ` + categoryColumns + ` FROM categories
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	InsertCategorySQL = `
		INSERT INTO categories (id, tenant_id, name, sort_order, is_active)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories WHERE tenant_id = $2 AND deleted_at IS NULL),
			$4)
		RETURNING sort_order, created_at, updated_at`

	UpdateCategorySQL = `
		UPDATE categories SET name = $3, is_active = $4, sort_order = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteCategorySQL = `
		UPDATE categories SET deleted_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`
)

// Menu item queries
const (
	menuItemColumns = `id, tenant_id, category_id, name, description, base_price, availability, photo_url, sort_order, created_at, updated_at, deleted_at`

	ListMenuItemsSQL = `
		SELECT ` + menuItemColumns + ` FROM menu_items
		WHERE tenant_id = $1 AND deleted_at IS NULL AND ($2::text IS NULL OR category_id = $2)
		ORDER BY sort_order ASC, created_at DESC`

	GetMenuItemSQL = `
		SELECT ` + menuItemColumns + ` FROM menu_items
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	// LockMenuItemsSQL reads checkout items and holds them against
	// concurrent edits until the order transaction ends
	LockMenuItemsSQL = `
		SELECT ` + menuItemColumns + ` FROM menu_items
		WHERE tenant_id = $1 AND id = ANY($2) AND deleted_at IS NULL
		FOR SHARE`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (id, tenant_id, category_id, name, description, base_price, availability, photo_url, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM menu_items WHERE category_id = $3 AND deleted_at IS NULL))
		RETURNING sort_order, created_at, updated_at`

	UpdateMenuItemSQL = `
		UPDATE menu_items SET category_id = $3, name = $4, description = $5, base_price = $6,
			availability = $7, photo_url = $8, sort_order = $9, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteMenuItemSQL = `
		UPDATE menu_items SET deleted_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	variantColumns = `id, tenant_id, menu_item_id, name, price_delta, sort_order, created_at, updated_at, deleted_at`

	ListVariantsForItemsSQL = `
		SELECT ` + variantColumns + ` FROM variants
		WHERE menu_item_id = ANY($1) AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC`

	InsertVariantSQL = `
		INSERT INTO variants (id, tenant_id, menu_item_id, name, price_delta, sort_order)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM variants WHERE menu_item_id = $3 AND deleted_at IS NULL))
		RETURNING sort_order, created_at, updated_at`

	UpdateVariantSQL = `
		UPDATE variants SET name = $4, price_delta = $5, sort_order = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND menu_item_id = $2 AND id = $3 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteVariantSQL = `
		UPDATE variants SET deleted_at = NOW()
		WHERE tenant_id = $1 AND menu_item_id = $2 AND id = $3 AND deleted_at IS NULL`

	modifierColumns = `id, tenant_id, menu_item_id, name, is_required, max_select, sort_order, created_at, updated_at, deleted_at`

	ListModifiersForItemsSQL = `
		SELECT ` + modifierColumns + ` FROM modifiers
		WHERE menu_item_id = ANY($1) AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC`

	InsertModifierSQL = `
		INSERT INTO modifiers (id, tenant_id, menu_item_id, name, is_required, max_select, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM modifiers WHERE menu_item_id = $3 AND deleted_at IS NULL))
		RETURNING sort_order, created_at, updated_at`

	UpdateModifierSQL = `
		UPDATE modifiers SET name = $4, is_required = $5, max_select = $6, sort_order = $7, updated_at = NOW()
		WHERE tenant_id = $1 AND menu_item_id = $2 AND id = $3 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteModifierSQL = `
		UPDATE modifiers SET deleted_at = NOW()
		WHERE tenant_id = $1 AND menu_item_id = $2 AND id = $3 AND deleted_at IS NULL`

	optionColumns = `id, tenant_id, modifier_id, name, price_delta, sort_order, created_at, updated_at, deleted_at`

	ListOptionsForModifiersSQL = `
		SELECT ` + optionColumns + ` FROM modifier_options
		WHERE modifier_id = ANY($1) AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC`

	InsertOptionSQL = `
		INSERT INTO modifier_options (id, tenant_id, modifier_id, name, price_delta, sort_order)
		SELECT $1, $2, m.id, $4, $5,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM modifier_options WHERE modifier_id = $3 AND deleted_at IS NULL)
		FROM modifiers m
		WHERE m.id = $3 AND m.tenant_id = $2 AND m.deleted_at IS NULL
		RETURNING sort_order, created_at, updated_at`

	UpdateOptionSQL = `
		UPDATE modifier_options SET name = $4, price_delta = $5, sort_order = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND modifier_id = $2 AND id = $3 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteOptionSQL = `
		UPDATE modifier_options SET deleted_at = NOW()
		WHERE tenant_id = $1 AND modifier_id = $2 AND id = $3 AND deleted_at IS NULL`
)

// Table queries
const (
	tableColumns = `id, tenant_id, code, name, capacity, qrcode_token, created_at, updated_at, deleted_at`

	ListTablesSQL = `
		SELECT ` + tableColumns + ` FROM tables
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY code ASC`

	GetTableSQL = `
		SELECT ` + tableColumns + ` FROM tables
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	GetTableByTokenSQL = `
		SELECT ` + tableColumns + ` FROM tables
		WHERE tenant_id = $1 AND qrcode_token = $2 AND deleted_at IS NULL`

	InsertTableSQL = `
		INSERT INTO tables (id, tenant_id, code, name, capacity, qrcode_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	UpdateTableSQL = `
		UPDATE tables SET code = $3, name = $4, capacity = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	DeleteTableSQL = `
		UPDATE tables SET deleted_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	sessionColumns = `id, tenant_id, table_id, is_active, started_at, ended_at`

	GetActiveSessionSQL = `
		SELECT ` + sessionColumns + ` FROM table_sessions
		WHERE tenant_id = $1 AND table_id = $2 AND is_active`

	InsertSessionSQL = `
		INSERT INTO table_sessions (id, tenant_id, table_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (table_id) WHERE is_active DO NOTHING
		RETURNING ` + sessionColumns

	GetSessionSQL = `
		SELECT ` + sessionColumns + ` FROM table_sessions
		WHERE tenant_id = $1 AND id = $2`

	CloseSessionSQL = `
		UPDATE table_sessions SET is_active = FALSE, ended_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND is_active`
)

// Order queries
const (
	// NextOrderSequenceSQL reserves the next per-tenant order sequence value.
	// The row lock it takes serializes concurrent checkouts of one tenant.
	NextOrderSequenceSQL = `
		INSERT INTO tenant_order_sequences (tenant_id, last_value)
		VALUES ($1, (SELECT COUNT(*) FROM orders WHERE tenant_id = $1) + 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = tenant_order_sequences.last_value + 1
		RETURNING last_value`

	InsertOrderSQL = `
		INSERT INTO orders (id, tenant_id, order_number, order_type, table_session_id, customer_name,
			customer_phone, customer_email, note, status, subtotal_amount, discount_amount,
			service_charge_amount, tax_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (id, tenant_id, order_id, menu_item_id, position, name_snapshot,
			base_price_snapshot, unit_price, qty, line_total, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	InsertOrderItemVariantSQL = `
		INSERT INTO order_item_variants (id, tenant_id, order_item_id, variant_id, name_snapshot, price_delta_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)`

	InsertOrderItemModifierSQL = `
		INSERT INTO order_item_modifiers (id, tenant_id, order_item_id, modifier_id, option_id, position,
			modifier_name_snapshot, name_snapshot, price_delta_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (id, order_id, status, changed_by, note)
		VALUES ($1, $2, $3, $4, $5)`

	orderColumns = `id, tenant_id, order_number, order_type, table_session_id, customer_name, customer_phone,
		customer_email, note, status, subtotal_amount, discount_amount, service_charge_amount, tax_amount,
		total_amount, created_at, updated_at`

	GetOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND id = $2`

	GetOrderForUpdateSQL = `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	GetOrderByNumberSQL = `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND order_number = $2`

	ListOrdersSQL = `
		SELECT ` + orderColumns + `, COUNT(*) OVER()
		FROM orders
		WHERE tenant_id = $1
			AND ($2::text IS NULL OR status = $2)
			AND ($3::text IS NULL OR order_type = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	ListOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, position, name_snapshot, base_price_snapshot, unit_price, qty, line_total, note
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position ASC`

	ListOrderItemVariantsSQL = `
		SELECT v.id, v.order_item_id, v.variant_id, v.name_snapshot, v.price_delta_snapshot
		FROM order_item_variants v
		JOIN order_items i ON i.id = v.order_item_id
		WHERE i.order_id = ANY($1)`

	ListOrderItemModifiersSQL = `
		SELECT m.id, m.order_item_id, m.modifier_id, m.option_id, m.modifier_name_snapshot, m.name_snapshot, m.price_delta_snapshot
		FROM order_item_modifiers m
		JOIN order_items i ON i.id = m.order_item_id
		WHERE i.order_id = ANY($1)
		ORDER BY m.order_item_id, m.position ASC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at`

	GetOrderStatusHistorySQL = `
		SELECT id, order_id, status, changed_by, note, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`
)
