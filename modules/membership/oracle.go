package membership

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/example/workspace-live/modules/cache"
)

// lookup is the store-backed check an oracle method performs on a
// cache miss.
type lookup func(ctx context.Context) (bool, error)

// Oracle answers access-control questions, optionally fronted by a
// short-TTL Redis cache. Concurrent lookups for the same key are
// collapsed to a single store query. Access checks are best effort:
// a positive answer may outlive a revocation for up to the cache TTL.
type Oracle struct {
	repo  *Repository
	cache atomic.Pointer[cache.Cache]
	group singleflight.Group
}

// NewOracle creates an Oracle over the repository. The cache is wired
// separately and may be absent.
func NewOracle(repo *Repository) *Oracle {
	return &Oracle{
		repo: repo,
	}
}

// SetCache installs the cache layer. Safe to call while the oracle is
// in use; a nil cache disables caching.
func (o *Oracle) SetCache(c *cache.Cache) {
	o.cache.Store(c)
}

// HasWorkspaceAccess reports whether the user holds an active
// membership in the workspace.
func (o *Oracle) HasWorkspaceAccess(ctx context.Context, userID, workspaceID string) (bool, error) {
	key := "ws:" + workspaceID + ":" + userID
	return o.check(ctx, key, func(ctx context.Context) (bool, error) {
		return o.repo.HasActiveMembership(ctx, userID, workspaceID)
	})
}

// HasProjectAccess reports whether the user may subscribe to the
// project. Access is granted when the project belongs to the user's
// workspace scope, or when the user is an explicit project member.
func (o *Oracle) HasProjectAccess(ctx context.Context, userID, workspaceID, projectID string) (bool, error) {
	key := "proj:" + projectID + ":" + workspaceID + ":" + userID
	return o.check(ctx, key, func(ctx context.Context) (bool, error) {
		project, err := o.repo.FindProject(ctx, projectID)
		if err != nil {
			return false, err
		}
		if project == nil {
			return false, nil
		}
		if project.WorkspaceID == workspaceID {
			return true, nil
		}
		return o.repo.IsProjectMember(ctx, userID, projectID)
	})
}

// check runs the lookup through the cache-aside path. Cache errors
// degrade to a direct store query.
func (o *Oracle) check(ctx context.Context, key string, fn lookup) (bool, error) {
	c := o.cache.Load()
	if c != nil {
		var allowed bool
		hit, err := c.Get(ctx, key, &allowed)
		if err != nil {
			log.Printf("[membership] cache get %s: %v", key, err)
		} else if hit {
			return allowed, nil
		}
	}

	v, err, _ := o.group.Do(key, func() (any, error) {
		allowed, err := fn(ctx)
		if err != nil {
			return false, err
		}
		if c != nil {
			if err := c.Set(ctx, key, allowed); err != nil {
				log.Printf("[membership] cache set %s: %v", key, err)
			}
		}
		return allowed, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
