package petcatalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"pawpal/internal/logging"
)

// CachedReader wraps a Reader with a per-user expiring LRU cache. The
// catalog changes rarely relative to conversation turns, so a short TTL is
// enough to avoid one lookup per turn.
type CachedReader struct {
	inner  Reader
	cache  *expirable.LRU[string, []Pet]
	logger logging.Logger
}

// NewCachedReader wraps inner with an expiring cache of up to size users.
func NewCachedReader(inner Reader, size int, ttl time.Duration, logger logging.Logger) *CachedReader {
	if size <= 0 {
		size = 512
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedReader{
		inner:  inner,
		cache:  expirable.NewLRU[string, []Pet](size, nil, ttl),
		logger: logging.OrNop(logger),
	}
}

func (r *CachedReader) GetSchedulableEntities(ctx context.Context, userID string) ([]Pet, error) {
	if pets, ok := r.cache.Get(userID); ok {
		return pets, nil
	}
	pets, err := r.inner.GetSchedulableEntities(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(userID, pets)
	r.logger.Debug("catalog cached for user %s (%d pets)", userID, len(pets))
	return pets, nil
}

// Invalidate drops the cached catalog for a user.
func (r *CachedReader) Invalidate(userID string) {
	r.cache.Remove(userID)
}
