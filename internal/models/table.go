package models

import "time"

// Table is a physical table reachable through its QR code token
type Table struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	QRCodeToken string    `json:"qrcodeToken"`
	Lifecycle   Lifecycle `json:"deletedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableSession is one seating at a table; dine-in orders attach to it
type TableSession struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	TableID   string     `json:"tableId"`
	IsActive  bool       `json:"isActive"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}
