package enrich

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimited wraps a lookup so calls respect the given limiter. A blocked
// call waits rather than fails, honoring ctx cancellation.
func RateLimited(next Lookup, limiter *rate.Limiter) Lookup {
	return LookupFunc(func(ctx context.Context, cuit string) (FiscalInfo, error) {
		if err := limiter.Wait(ctx); err != nil {
			return FiscalInfo{}, err
		}
		return next.Fiscal(ctx, cuit)
	})
}

// Cached memoizes successful lookups for ttl. Not-found results are cached
// too, so a CUIT absent from the registry is only queried once per run.
func Cached(next Lookup, ttl time.Duration) Lookup {
	store := gocache.New(ttl, 2*ttl)
	return LookupFunc(func(ctx context.Context, cuit string) (FiscalInfo, error) {
		if v, found := store.Get(cuit); found {
			if v == nil {
				return FiscalInfo{}, ErrNotFound
			}
			return v.(FiscalInfo), nil
		}
		info, err := next.Fiscal(ctx, cuit)
		if err == ErrNotFound {
			store.Set(cuit, nil, gocache.DefaultExpiration)
			return FiscalInfo{}, err
		}
		if err != nil {
			return FiscalInfo{}, err
		}
		store.Set(cuit, info, gocache.DefaultExpiration)
		return info, nil
	})
}
