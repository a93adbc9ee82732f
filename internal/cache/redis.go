// Package cache is the ambient Redis layer: query-result caching keyed by
// constraint-set hash, and the distributed locks/counters the rate-limit
// middleware and dogpile-avoidance logic rely on.
package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("CACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
	}
}

// GetClient returns the global Redis client (singleton pattern).
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client.
func Close() {
	if client != nil {
		client.Close()
	}
}

// QueryKey derives a deterministic cache key for a query-pipeline request
// from its kind tag and an already-serialised form of its constraints (the
// caller marshals the request itself, since its shape varies by endpoint).
func QueryKey(kind string, serialized []byte) string {
	hash := sha256.Sum256(serialized)
	return fmt.Sprintf("query:%s:%x", kind, hash[:8])
}

// LockKey derives the mutex lock key guarding the computation of a query key.
func LockKey(queryKey string) string {
	return fmt.Sprintf("lock:%s", queryKey)
}

// GetJSON retrieves and unmarshals a cached value, returning (false, nil) on
// a cache miss.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// SetJSON marshals and caches a value under key with the given TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c, err := GetClient()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.Set(ctx, key, data, ttl).Err()
}

// AcquireLock attempts to acquire a distributed lock, returning true if it
// was acquired.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock releases a distributed lock.
func ReleaseLock(ctx context.Context, key string) error {
	c, err := GetClient()
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// WaitForLock polls until a lock is released, then retrieves whatever result
// its holder computed — avoiding a thundering herd of identical expensive
// queries.
func WaitForLock(ctx context.Context, queryKey string, maxWait time.Duration, dest interface{}) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}

	lockKey := LockKey(queryKey)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		exists, err := c.Exists(ctx, lockKey).Result()
		if err != nil {
			return false, err
		}
		if exists == 0 {
			return GetJSON(ctx, queryKey, dest)
		}
		time.Sleep(100 * time.Millisecond)
	}

	return false, fmt.Errorf("timeout waiting for lock")
}

// HealthCheck performs a health check on the Redis connection.
func HealthCheck(ctx context.Context) error {
	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("Redis client not initialized: %w", err)
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
