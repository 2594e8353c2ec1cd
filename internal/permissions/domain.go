// Package permissions holds the catalog of named capabilities that roles
// and overrides refer to. Catalog rows are reference data: seeded once,
// rarely mutated.
package permissions

import "time"

// Permission is a named, categorized capability such as manage_staff.
type Permission struct {
	ID          int64
	Name        string
	Category    string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
}
