package models

// Principal is the authenticated dashboard user behind a request
type Principal struct {
	UserID  string          `json:"userId"`
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Tenants []TenantSummary `json:"tenants"`
}

// CanAccess reports whether the principal belongs to the tenant with slug
func (p *Principal) CanAccess(slug string) bool {
	for _, t := range p.Tenants {
		if t.Slug == slug {
			return true
		}
	}
	return false
}
