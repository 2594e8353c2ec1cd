package permissions

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

type memoryCatalog struct {
	perms  map[string]Permission
	nextID int64
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{perms: make(map[string]Permission)}
}

func (r *memoryCatalog) ListSystemPermissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	for _, perm := range r.perms {
		if perm.IsSystem {
			out = append(out, perm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memoryCatalog) ListByCategory(ctx context.Context, category string) ([]Permission, error) {
	var out []Permission
	for _, perm := range r.perms {
		if perm.Category == category {
			out = append(out, perm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCatalog) GetByName(ctx context.Context, name string) (Permission, error) {
	perm, ok := r.perms[name]
	if !ok {
		return Permission{}, httpx.ErrNotFound
	}
	return perm, nil
}

func (r *memoryCatalog) CreatePermission(ctx context.Context, name, category, description string, isSystem bool) (Permission, error) {
	if _, ok := r.perms[name]; ok {
		return Permission{}, httpx.ErrDuplicate
	}
	r.nextID++
	perm := Permission{ID: r.nextID, Name: name, Category: category, Description: description, IsSystem: isSystem}
	r.perms[name] = perm
	return perm, nil
}

func seedCatalog(t *testing.T, repo *memoryCatalog) {
	t.Helper()
	system := []struct{ name, category string }{
		{"view_events", "events"},
		{"manage_events", "events"},
		{"manage_staff", "staff"},
		{"view_finances", "finances"},
	}
	for _, p := range system {
		_, err := repo.CreatePermission(context.Background(), p.name, p.category, "", true)
		require.NoError(t, err)
	}
}

func TestListSystemPermissionsOrdered(t *testing.T) {
	repo := newMemoryCatalog()
	seedCatalog(t, repo)
	svc := NewService(repo)

	perms, err := svc.ListSystemPermissions(context.Background())
	require.NoError(t, err)
	require.Len(t, perms, 4)
	require.Equal(t, "manage_events", perms[0].Name)
	require.Equal(t, "view_events", perms[1].Name)
	require.Equal(t, "view_finances", perms[2].Name)
	require.Equal(t, "manage_staff", perms[3].Name)
}

func TestListByCategoryRequiresCategory(t *testing.T) {
	svc := NewService(newMemoryCatalog())

	_, err := svc.ListPermissionsByCategory(context.Background(), "  ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreatePermissionRejectsDuplicates(t *testing.T) {
	repo := newMemoryCatalog()
	seedCatalog(t, repo)
	svc := NewService(repo)

	perm, err := svc.CreatePermission(context.Background(), "manage_guestlist", "events", "guest list edits")
	require.NoError(t, err)
	require.False(t, perm.IsSystem)

	_, err = svc.CreatePermission(context.Background(), "manage_guestlist", "events", "")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}
