package config

import (
	"strings"
	"time"
)

// CacheConfig drives the Redis response-cache middleware. Only the
// routes the router explicitly wraps are cached; entries expire on TTL
// rather than being invalidated on write, so it is only applied to
// responses that tolerate short staleness.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	def := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if def.TTL <= 0 {
		def.TTL = 30 * time.Second
	}
	if def.MaxBodyBytes < 1 {
		def.MaxBodyBytes = 1 << 20
	}
	return def
}

func parseMethods(s string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range strings.Split(s, ",") {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			out[m] = true
		}
	}
	return out
}
