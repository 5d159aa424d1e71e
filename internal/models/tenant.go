package models

import "time"

// Role of a user inside a tenant
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Tenant is one restaurant account; all menu, table and order data belongs to exactly one tenant
type Tenant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    *string   `json:"description,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	LogoURL        *string   `json:"logoUrl,omitempty"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TenantSummary is the tenant shape embedded in auth tokens
type TenantSummary struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

// User is a dashboard account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TenantUser links a user to a tenant with a role
type TenantUser struct {
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
}

// TenantStats is the dashboard counter set
type TenantStats struct {
	TotalOrders    int `json:"totalOrders"`
	TotalMenuItems int `json:"totalMenuItems"`
	TotalTables    int `json:"totalTables"`
	ActiveSessions int `json:"activeSessions"`
}
