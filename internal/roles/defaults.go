package roles

// DefaultRole describes one entry of the stock hierarchy seeded for a new
// venue. Permissions are catalog names; names absent from the catalog are
// skipped at bind time.
type DefaultRole struct {
	Name        string
	Description string
	Level       int
	Permissions []string
}

// DefaultRoles returns the stock hierarchy for a newly onboarded venue.
func DefaultRoles() []DefaultRole {
	return []DefaultRole{
		{
			Name:        "Owner",
			Description: "Full control of the venue",
			Level:       100,
			Permissions: []string{
				"manage_venue", "manage_roles", "manage_staff", "manage_events",
				"view_events", "manage_finances", "view_finances",
				"manage_marketing", "view_audit_log",
			},
		},
		{
			Name:        "Manager",
			Description: "Day-to-day operations and staffing",
			Level:       80,
			Permissions: []string{
				"manage_staff", "manage_events", "view_events",
				"view_finances", "manage_marketing",
			},
		},
		{
			Name:        "Coordinator",
			Description: "Event planning and marketing",
			Level:       50,
			Permissions: []string{"manage_events", "view_events", "manage_marketing"},
		},
		{
			Name:        "Staff",
			Description: "Read-only event access",
			Level:       20,
			Permissions: []string{"view_events"},
		},
	}
}
