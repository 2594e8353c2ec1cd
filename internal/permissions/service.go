package permissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	ListSystemPermissions(ctx context.Context) ([]Permission, error)
	ListByCategory(ctx context.Context, category string) ([]Permission, error)
	GetByName(ctx context.Context, name string) (Permission, error)
	CreatePermission(ctx context.Context, name, category, description string, isSystem bool) (Permission, error)
}

// Service handles catalog reads and the rare catalog mutation.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListSystemPermissions returns all system permissions ordered by category
// then name. An empty catalog is a valid result.
func (s *Service) ListSystemPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListSystemPermissions(ctx)
}

// ListPermissionsByCategory returns permissions in one category ordered by
// name.
func (s *Service) ListPermissionsByCategory(ctx context.Context, category string) ([]Permission, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", httpx.ErrValidation)
	}
	return s.repo.ListByCategory(ctx, category)
}

// GetByName fetches one permission by name.
func (s *Service) GetByName(ctx context.Context, name string) (Permission, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

// CreatePermission adds a custom (non-system) permission to the catalog.
func (s *Service) CreatePermission(ctx context.Context, name, category, description string) (Permission, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" {
		return Permission{}, fmt.Errorf("%w: name and category are required", httpx.ErrValidation)
	}
	return s.repo.CreatePermission(ctx, name, category, strings.TrimSpace(description), false)
}
