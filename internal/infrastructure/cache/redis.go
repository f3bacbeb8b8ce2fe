package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/pkg/config"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

// Custom error types
var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
	ErrCacheTimeout    = errors.New("cache: operation timeout")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

// Config holds the configuration for Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	UseCompression   bool
	DefaultTTL       time.Duration
	MaxKeyLength     int           // Maximum allowed key length
	KeyPrefix        string        // Prefix for all keys
	RetryInterval    time.Duration // Interval between retry attempts
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		UseCompression:   false,
		DefaultTTL:       5 * time.Minute,
		MaxKeyLength:     256,
		KeyPrefix:        "twin:",
		RetryInterval:    100 * time.Millisecond,
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	return &Config{
		Addr:             fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:         cfg.Redis.Password,
		DB:               cfg.Redis.DB,
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: cfg.Server.Timeout,
		UseCompression:   false,
		DefaultTTL:       5 * time.Minute,
		MaxKeyLength:     256,
		KeyPrefix:        "twin:",
		RetryInterval:    100 * time.Millisecond,
	}
}

// CacheMetrics tracks cache hit/miss statistics with atomic operations
type CacheMetrics struct {
	hits    atomic.Int64
	misses  atomic.Int64
	hitRate atomic.Int64 // Store as integer (multiply by 100 for percentage)
	byType  sync.Map     // map[string]*TypeMetrics
}

// TypeMetrics tracks metrics for a specific cache type with atomic operations
type TypeMetrics struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// RedisClient wraps the Redis client with additional functionality
type RedisClient struct {
	client    *redis.Client
	metrics   *CacheMetrics
	ttls      sync.Map // map[string]time.Duration
	config    *Config
	closeOnce sync.Once
	health    int32 // 0 = healthy, 1 = unhealthy, using atomic operations
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := &RedisClient{
		client:  client,
		config:  cfg,
		metrics: &CacheMetrics{},
	}

	// Initialize default TTLs
	r.ttls.Store("default", 5*time.Minute)
	r.ttls.Store("user_stats", time.Minute)
	r.ttls.Store("event", 5*time.Minute)
	r.ttls.Store("health", 30*time.Second)

	// Start health check goroutine
	go r.healthCheckLoop()

	return r, nil
}

// healthCheckLoop periodically checks Redis health
func (r *RedisClient) healthCheckLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.OperationTimeout)
		if err := r.HealthCheck(ctx); err != nil {
			atomic.StoreInt32(&r.health, 1)
			log.Error("Redis health check failed", zap.Error(err))
		} else {
			atomic.StoreInt32(&r.health, 0)
		}
		cancel()
	}
}

// IsHealthy returns whether Redis is currently healthy
func (r *RedisClient) IsHealthy() bool {
	return atomic.LoadInt32(&r.health) == 0
}

// withContext wraps the context with a timeout if none is set
func (r *RedisClient) withContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, r.config.OperationTimeout)
	}
	return ctx, func() {}
}

// validateKey checks if the key is valid
func (r *RedisClient) validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidConfig)
	}
	if len(key) > r.config.MaxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidConfig, r.config.MaxKeyLength)
	}
	return nil
}

// prefixKey adds the configured prefix to the key
func (r *RedisClient) prefixKey(key string) string {
	return r.config.KeyPrefix + key
}

// cacheTypeForKey buckets hit/miss metrics by the key's leading segment,
// the entity type in GenerateCacheKey-style keys.
func cacheTypeForKey(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "default"
}

// Get retrieves a value from the cache with proper context handling
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if err := r.validateKey(key); err != nil {
		return "", err
	}

	if !r.IsHealthy() {
		return "", ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Result()
	if err != nil {
		if err == redis.Nil {
			r.trackCacheEvent(false, cacheTypeForKey(key))
			return "", fmt.Errorf("%w: %s", ErrCacheNotFound, key)
		}
		return "", fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	r.trackCacheEvent(true, cacheTypeForKey(key))

	if r.config.UseCompression {
		return r.decompress(val)
	}
	return val, nil
}

// Set stores a value in the cache with proper context and compression handling
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.validateKey(key); err != nil {
		return err
	}

	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	if r.config.UseCompression {
		compressed, err := r.compress(value)
		if err != nil {
			return fmt.Errorf("compression failed: %w", err)
		}
		value = compressed
	}

	prefixedKey := r.prefixKey(key)
	return r.client.Set(ctx, prefixedKey, value, ttl).Err()
}

// compress compresses a string using gzip
func (r *RedisClient) compress(data string) (string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write([]byte(data)); err != nil {
		return "", err
	}

	if err := gz.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// decompress decompresses a gzipped string
func (r *RedisClient) decompress(data string) (string, error) {
	gr, err := gzip.NewReader(strings.NewReader(data))
	if err != nil {
		return "", err
	}
	defer gr.Close()

	decompressed, err := io.ReadAll(gr)
	if err != nil {
		return "", err
	}

	return string(decompressed), nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}

// trackCacheEvent tracks cache hits/misses with atomic operations
func (r *RedisClient) trackCacheEvent(hit bool, cacheType string) {
	if hit {
		r.metrics.hits.Add(1)
	} else {
		r.metrics.misses.Add(1)
	}

	total := r.metrics.hits.Load() + r.metrics.misses.Load()
	if total > 0 {
		hitRate := int64((float64(r.metrics.hits.Load()) / float64(total)) * 100)
		r.metrics.hitRate.Store(hitRate)
	}

	// Update type metrics
	value, _ := r.metrics.byType.LoadOrStore(cacheType, &TypeMetrics{})
	typeMetrics := value.(*TypeMetrics)

	if hit {
		typeMetrics.hits.Add(1)
	} else {
		typeMetrics.misses.Add(1)
	}
}

// GetMetrics returns current cache metrics with additional information
func (r *RedisClient) GetMetrics() map[string]interface{} {
	metrics := make(map[string]interface{})
	typeMetrics := make(map[string]interface{})

	r.metrics.byType.Range(func(key, value interface{}) bool {
		tm := value.(*TypeMetrics)
		typeMetrics[key.(string)] = map[string]interface{}{
			"hits":   tm.hits.Load(),
			"misses": tm.misses.Load(),
		}
		return true
	})

	stats := r.client.PoolStats()
	metrics["hits"] = r.metrics.hits.Load()
	metrics["misses"] = r.metrics.misses.Load()
	metrics["hit_rate"] = float64(r.metrics.hitRate.Load()) / 100.0
	metrics["by_type"] = typeMetrics
	metrics["health"] = r.IsHealthy()
	metrics["pool_stats"] = map[string]interface{}{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
	metrics["config"] = map[string]interface{}{
		"compression": r.config.UseCompression,
		"prefix":      r.config.KeyPrefix,
		"max_retries": r.config.MaxRetries,
	}

	return metrics
}

// HealthCheck checks if Redis is responding
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Delete removes values from the cache
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		if err := r.validateKey(key); err != nil {
			return err
		}
		prefixedKeys[i] = r.prefixKey(key)
	}

	return r.client.Del(ctx, prefixedKeys...).Err()
}

// ClearByPattern removes all cache entries matching the given pattern
func (r *RedisClient) ClearByPattern(ctx context.Context, pattern string) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	prefixedPattern := r.prefixKey(pattern)
	iter := r.client.Scan(ctx, 0, prefixedPattern, 100).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}

	return nil
}

// GenerateCacheKey creates a unique cache key for the given entity
func GenerateCacheKey(entityType string, entityID interface{}, action string) string {
	if action == "" {
		return fmt.Sprintf("%s:%v", entityType, entityID)
	}
	return fmt.Sprintf("%s:%v:%s", entityType, entityID, action)
}

// InvalidateCache removes all cache entries for a specific entity
func (r *RedisClient) InvalidateCache(ctx context.Context, entityType string, entityID interface{}) error {
	pattern := fmt.Sprintf("%s:%v*", entityType, entityID)
	return r.ClearByPattern(ctx, pattern)
}

// GetPoolStats returns connection pool statistics
func (r *RedisClient) GetPoolStats() *redis.PoolStats {
	return r.client.PoolStats()
}
