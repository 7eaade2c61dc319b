// Command trackcache stores a few sample payloads through the
// instrumented cache, fetches a URL twice through the expiring fetch
// cache, and prints the resulting access counts and call trace.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Hadiiir/trackcache"
	"github.com/Hadiiir/trackcache/backend"
	"github.com/Hadiiir/trackcache/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		logger.Error("usage: trackcache <url>")
		os.Exit(1)
	}
	url := os.Args[1]

	cfg, err := config.Load(os.Getenv("TRACKCACHE_CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var opts []backend.RedisOption
	if cfg.Redis.Prefix != "" {
		opts = append(opts, backend.WithPrefix(cfg.Redis.Prefix))
	}
	b, err := backend.DialRedis(ctx, cfg.Redis.Addr, opts...)
	if err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	defer b.Close()

	cache := trackcache.New(b)
	for _, v := range []trackcache.Value{
		trackcache.String("foo"),
		trackcache.Bytes([]byte("bar")),
		trackcache.Int(42),
	} {
		key, err := cache.Store(ctx, v)
		if err != nil {
			logger.Error("store failed", "error", err)
			os.Exit(1)
		}
		logger.Info("stored", "key", key, "kind", v.Kind().String())
	}

	if err := cache.Replay(ctx, os.Stdout); err != nil {
		logger.Error("replay failed", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	fetcher := trackcache.NewFetcher(b, trackcache.HTTPFetch(client),
		trackcache.WithExpiry(cfg.Fetch.Expiry))

	for i := 0; i < 2; i++ {
		start := time.Now()
		body, err := fetcher.Fetch(ctx, url)
		if err != nil {
			logger.Error("fetch failed", "url", url, "error", err)
			os.Exit(1)
		}
		logger.Info("fetched", "attempt", i+1, "bytes", len(body), "took", time.Since(start))
	}

	count, err := fetcher.AccessCount(ctx, url)
	if err != nil {
		logger.Error("failed to read access count", "error", err)
		os.Exit(1)
	}
	ttl, err := fetcher.CachedTTL(ctx, url)
	if err != nil {
		logger.Error("failed to read cache ttl", "error", err)
		os.Exit(1)
	}
	logger.Info("fetch cache state", "url", url, "accesses", count, "ttl", ttl)

	stats := fetcher.Stats()
	logger.Info("fetcher stats", "hits", stats.Hits, "misses", stats.Misses, "failures", stats.Failures)
}
