package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCacheEventCountsHitsAndMisses(t *testing.T) {
	r := &RedisClient{metrics: &CacheMetrics{}}

	r.trackCacheEvent(true, "user_stats")
	r.trackCacheEvent(true, "user_stats")
	r.trackCacheEvent(false, "user_stats")
	r.trackCacheEvent(false, "twin-api")

	assert.Equal(t, int64(2), r.metrics.hits.Load())
	assert.Equal(t, int64(2), r.metrics.misses.Load())
	assert.Equal(t, int64(50), r.metrics.hitRate.Load())

	value, ok := r.metrics.byType.Load("user_stats")
	require.True(t, ok)
	perType := value.(*TypeMetrics)
	assert.Equal(t, int64(2), perType.hits.Load())
	assert.Equal(t, int64(1), perType.misses.Load())
}

func TestCacheTypeForKey(t *testing.T) {
	assert.Equal(t, "user_stats", cacheTypeForKey("user_stats:user-1"))
	assert.Equal(t, "twin-api", cacheTypeForKey("twin-api:response:user:user-1:stats"))
	assert.Equal(t, "default", cacheTypeForKey("plain"))
}
