package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/sohwatch/internal/config"
	"github.com/andresuchdata/sohwatch/internal/domain"
)

const (
	summaryKeyPrefix = "sohwatch:summary:"
	defaultTTL       = time.Minute
)

// SummaryCache memoizes computed status summaries per session and filter.
// It is a best-effort layer: misses and errors fall through to recompute.
type SummaryCache interface {
	Get(ctx context.Context, sessionID string, filter domain.RowFilter) (*domain.StatusSummary, bool, error)
	Set(ctx context.Context, sessionID string, filter domain.RowFilter, summary *domain.StatusSummary) error
}

// NewSummaryCache returns a redis-backed cache when enabled, or a no-op
// cache otherwise. Connection failures disable caching rather than the
// server.
func NewSummaryCache(cfg config.CacheConfig) SummaryCache {
	if !cfg.Enabled {
		return &noopSummaryCache{}
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("summary cache disabled")
		return &noopSummaryCache{}
	}

	return &redisSummaryCache{client: client, ttl: ttl}
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisSummaryCache) Get(ctx context.Context, sessionID string, filter domain.RowFilter) (*domain.StatusSummary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey(sessionID, filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.StatusSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}
	return &summary, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, sessionID string, filter domain.RowFilter, summary *domain.StatusSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(sessionID, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

type noopSummaryCache struct{}

func (n *noopSummaryCache) Get(ctx context.Context, sessionID string, filter domain.RowFilter) (*domain.StatusSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSummaryCache) Set(ctx context.Context, sessionID string, filter domain.RowFilter, summary *domain.StatusSummary) error {
	return nil
}

// summaryKey hashes the filter so equivalent filters share an entry
// regardless of value order.
func summaryKey(sessionID string, filter domain.RowFilter) string {
	parts := make([]string, 0, 3)
	for _, values := range [][]string{filter.Sites, filter.Categories, filter.Sources} {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		parts = append(parts, strings.Join(sorted, "|"))
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "||")))
	return summaryKeyPrefix + sessionID + ":" + hex.EncodeToString(sum[:])
}

func newRedisClient(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, 0, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.SummaryTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return client, ttl, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
