package feed

import (
	"context"
	"fmt"
	"time"

	"memefeed/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAuthorCacheSize = 256
	defaultAuthorCacheTTL  = 5 * time.Minute
)

// AuthorCache memoizes user lookups so repeated authors across pages and
// threads cost one request. Safe for concurrent use.
type AuthorCache struct {
	lru *expirable.LRU[string, models.User]
}

// NewAuthorCache creates a cache with the default size and TTL.
func NewAuthorCache() *AuthorCache {
	return &AuthorCache{
		lru: expirable.NewLRU[string, models.User](defaultAuthorCacheSize, nil, defaultAuthorCacheTTL),
	}
}

// Resolve returns the users for the given author ids, fetching cache misses
// concurrently through the resolver. Lookups are independent; results join
// by id, never by arrival order. Any failed lookup fails the whole resolve.
func (c *AuthorCache) Resolve(ctx context.Context, resolver UserResolver, token string, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := c.lru.Get(id); ok {
			users[id] = user
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return users, nil
	}

	fetched := make([]models.User, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range missing {
		g.Go(func() error {
			user, err := resolver.GetUserByID(gctx, token, id)
			if err != nil {
				return fmt.Errorf("resolving author %s: %w", id, err)
			}
			fetched[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range missing {
		users[id] = fetched[i]
		c.lru.Add(id, fetched[i])
	}
	return users, nil
}
