package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/socialforge-go/internal/util"
	"github.com/kapu/socialforge-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bioKeyPrefix = "socialforge:bio"

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// CachedBio is the JSON value stored per key.
type CachedBio struct {
	Text        string    `json:"text"`
	Provider    string    `json:"provider"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BioCache keeps the last generated bio per input in Redis.
type BioCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewBioCache(cfg CacheConfig, logger *zap.Logger) (*BioCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewBioCacheWithClient(client, cfg.TTL, logger), nil
}

func NewBioCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BioCache {
	return &BioCache{client: client, ttl: ttl, logger: logger}
}

// BioKey derives a stable key from the normalized generator inputs.
func BioKey(name, workplace, tone string) string {
	sum := sha256.Sum256([]byte(util.Normalize(name) + "\x00" + util.Normalize(workplace)))
	return fmt.Sprintf("%s:%s:%s", bioKeyPrefix, tone, hex.EncodeToString(sum[:8]))
}

// GetBio returns ("", false, nil) on a miss.
func (c *BioCache) GetBio(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return "", false, errors.NewCacheError("get failed", "get", key, err)
	}

	var cached CachedBio
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return "", false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return cached.Text, cached.Text != "", nil
}

func (c *BioCache) SetBio(ctx context.Context, key, text, provider string) error {
	jsonData, err := json.Marshal(CachedBio{Text: text, Provider: provider, GeneratedAt: time.Now().UTC()})
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// Invalidate drops every cached bio.
func (c *BioCache) Invalidate(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, bioKeyPrefix+":*", 100).Result()
		if err != nil {
			return deleted, errors.NewCacheError("scan failed", "scan", bioKeyPrefix, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.NewCacheError("delete failed", "del", bioKeyPrefix, err)
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func (c *BioCache) Close() error {
	return c.client.Close()
}
