package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"aibc/types"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures the RedisBloom connection and filter key
type BloomConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
}

// SignalBloom is a Redis-backed bloom filter used to skip signals that were
// already routed in an earlier cycle. A false positive drops a genuinely new
// signal for one cycle, which the periodic ingestion model tolerates.
type SignalBloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSignalBloomFromEnv creates a SignalBloom using environment variables
// REDIS_ADDR, REDIS_PASS, BLOOM_KEY (optional), BLOOM_TTL_SECONDS (optional)
func NewSignalBloomFromEnv() (*SignalBloom, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	key := os.Getenv("BLOOM_KEY")
	if key == "" {
		key = "signals:bloom"
	}

	ttl := 7 * 24 * time.Hour
	if t := os.Getenv("BLOOM_TTL_SECONDS"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	cfg := BloomConfig{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASS"),
		Key:       key,
		TTL:       ttl,
		Capacity:  100000,
		ErrorRate: 0.001,
	}
	return NewSignalBloom(cfg)
}

// NewSignalBloom creates a SignalBloom wrapper and verifies connectivity
func NewSignalBloom(cfg BloomConfig) (*SignalBloom, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	sb := &SignalBloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	// Reserve the filter on first use. If the RedisBloom module is missing
	// BF.ADD may still auto-create it, so a reserve failure is non-fatal.
	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(ctx, "BF.RESERVE", cfg.Key,
			fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return sb, nil
}

// Close closes the underlying Redis client
func (s *SignalBloom) Close() error {
	return s.client.Close()
}

// Seen checks whether the signal's dedup hash is present in the filter
func (s *SignalBloom) Seen(sig types.Signal) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.client.Do(ctx, "BF.EXISTS", s.key, SignalHash(sig)).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Mark inserts the signal's dedup hash and refreshes the key TTL so the
// filter stays alive for the configured window after the latest insertion
func (s *SignalBloom) Mark(sig types.Signal) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Do(ctx, "BF.ADD", s.key, SignalHash(sig)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, s.key, s.ttl).Err()
}

// SignalHash returns a stable dedup hash for a signal: sha256 of the
// normalized URL and title. Batch-scoped signal IDs are deliberately not
// part of the hash since they repeat across cycles.
func SignalHash(sig types.Signal) string {
	combined := normalizeURL(sig.URL) + "|" + normalizeTitle(sig.Title)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}

func normalizeTitle(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.Join(strings.Fields(t), " ")
}

// normalizeURL lowercases scheme and host, strips fragments, tracking query
// params, and trailing slashes so syndicated variants of one link hash alike
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
