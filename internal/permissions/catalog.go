package permissions

// CatalogEntry is one row of the stock system catalog.
type CatalogEntry struct {
	Name        string
	Category    string
	Description string
}

// SystemCatalog returns the stock permissions every deployment carries.
// Seeding upserts these by name, so re-running refreshes descriptions.
func SystemCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"manage_venue", "venue", "Edit venue profile and settings"},
		{"manage_roles", "venue", "Create and edit roles, bindings and overrides"},
		{"manage_staff", "staff", "Assign and revoke staff roles"},
		{"manage_events", "events", "Create and edit events"},
		{"view_events", "events", "View events and schedules"},
		{"manage_finances", "finance", "Edit budgets, payouts and settlements"},
		{"view_finances", "finance", "View financial reports"},
		{"manage_marketing", "marketing", "Manage campaigns and announcements"},
		{"view_audit_log", "venue", "Read the permission audit log"},
	}
}
