package identity

import (
	"context"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/identity"
	"go.uber.org/zap"
)

// RoleService serves the cached roles lookup
type RoleService struct {
	roles  identity.RoleRepository
	cache  appshared.LookupCache
	logger *zap.Logger
}

// NewRoleService creates a new role service. cache may be nil.
func NewRoleService(roles identity.RoleRepository, cache appshared.LookupCache, logger *zap.Logger) *RoleService {
	return &RoleService{
		roles:  roles,
		cache:  cache,
		logger: logger,
	}
}

// Roles returns every role, always as a non-nil slice
func (s *RoleService) Roles(ctx context.Context) ([]RoleInfo, error) {
	roles, err := appshared.CachedList(ctx, s.cache, s.logger, appshared.LookupRoles, s.load)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list roles", err)
	}
	return roles, nil
}

func (s *RoleService) load(ctx context.Context) ([]RoleInfo, error) {
	roles, err := s.roles.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleInfo, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleInfo{ID: r.ID, Name: r.Name})
	}
	return out, nil
}
