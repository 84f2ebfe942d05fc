package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/incsteps/nf-plugins-stats/internal/metrics"
	"github.com/patrickmn/go-cache"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
)

type (
	cacheKeyPrefix string
	cacheKey       string
)

const (
	cacheKeyPrefixReadme   cacheKeyPrefix = "readme"
	cacheKeyPrefixReleases cacheKeyPrefix = "releases"
)

func getCacheKey(p cacheKeyPrefix, owner, repo string) cacheKey {
	return cacheKey(fmt.Sprintf("%s/%s/%s", p, owner, repo))
}

func (g *Generator) getFromCache(ctx context.Context, k cacheKey) (any, bool) {
	strKey := string(k)
	val, ok := g.cache.Get(strKey)
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.TagCacheKey, strKey))
	if ok {
		stats.Record(ctx, metrics.CounterCacheHit.M(1))
	} else {
		stats.Record(ctx, metrics.CounterCacheMiss.M(1))
	}
	return val, ok
}

func (g *Generator) setInCache(k cacheKey, v any, expiration ...time.Duration) {
	exp := cache.DefaultExpiration
	if len(expiration) > 0 {
		exp = expiration[0]
	}
	g.cache.Set(string(k), v, exp)
}
