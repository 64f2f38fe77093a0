package shared

import (
	"context"

	"go.uber.org/zap"
)

// Lookup list names
const (
	LookupRoles       = "roles"
	LookupCourses     = "courses"
	LookupGroups      = "groups"
	LookupStatuses    = "statuses"
	LookupAssignments = "assignments"
)

// LookupCache caches the small, read-mostly lookup lists
type LookupCache interface {
	// Get decodes the cached value into dest and reports whether it was present
	Get(ctx context.Context, name string, dest any) (bool, error)
	Set(ctx context.Context, name string, value any) error
	Invalidate(ctx context.Context, names ...string) error
}

// CachedList returns the cached list when present, otherwise loads and stores it.
// Cache failures are logged and fall through to the loader.
func CachedList[T any](ctx context.Context, cache LookupCache, log *zap.Logger, name string, load func(context.Context) ([]T, error)) ([]T, error) {
	if cache != nil {
		var cached []T
		ok, err := cache.Get(ctx, name, &cached)
		if err != nil {
			log.Warn("Lookup cache read failed", zap.String("lookup", name), zap.Error(err))
		} else if ok {
			if cached == nil {
				cached = []T{}
			}
			return cached, nil
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	if cache != nil {
		if err := cache.Set(ctx, name, items); err != nil {
			log.Warn("Lookup cache write failed", zap.String("lookup", name), zap.Error(err))
		}
	}
	return items, nil
}
