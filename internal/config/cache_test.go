package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.False(t, cfg.Methods["POST"])
	require.Equal(t, 30*time.Second, cfg.TTL)
	require.Equal(t, "route_query", cfg.KeyStrategy)
	require.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadCacheConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")

	cfg := LoadCacheConfig()
	require.False(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.True(t, cfg.Methods["HEAD"])
	require.Equal(t, 2*time.Minute, cfg.TTL)
}

func TestParseMethodsSkipsEmptyEntries(t *testing.T) {
	m := parseMethods("GET,,post")
	require.Len(t, m, 2)
	require.True(t, m["GET"])
	require.True(t, m["POST"])
}
