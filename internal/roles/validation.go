package roles

import (
	"fmt"
	"strings"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

const maxLevel = 1000

func (s *Service) validateCreate(input *CreateRoleInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return fmt.Errorf("%w: role name is required", httpx.ErrValidation)
	}
	if input.Level < 0 || input.Level > maxLevel {
		return fmt.Errorf("%w: role level must be between 0 and %d", httpx.ErrValidation, maxLevel)
	}
	return nil
}

func (s *Service) validatePatch(patch *RolePatch) error {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return fmt.Errorf("%w: role name cannot be empty", httpx.ErrValidation)
		}
		patch.Name = &trimmed
	}
	if patch.Level != nil && (*patch.Level < 0 || *patch.Level > maxLevel) {
		return fmt.Errorf("%w: role level must be between 0 and %d", httpx.ErrValidation, maxLevel)
	}
	return nil
}
