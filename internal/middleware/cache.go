package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/equipment-inventory/internal/config"
)

// NewResponseCache builds a Redis-backed response cache. It is meant
// for routes whose body is identical for every authenticated caller,
// such as the category list; role- or user-scoped responses must not
// be wrapped with it. Only 200 responses within MaxBodyBytes are
// stored, and entries expire on TTL. With caching disabled or no
// Redis client available it degrades to a pass-through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if status, header, body, derr := decodeCached(raw); derr == nil {
					h := c.Response().Header()
					for k, vv := range header {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vv {
							h.Add(k, v)
						}
					}
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, werr := c.Response().Write(body)
					return werr
				}
			}

			rec := &responseRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && !rec.overflow {
				payload := encodeCached(rec.status, c.Response().Header(), rec.buf.Bytes())
				// Detached context: the entry outlives the request.
				rdb.SetEx(context.Background(), key, payload, cfg.TTL)
			}
			return nil
		}
	}
}

// responseRecorder tees the response body into a buffer while passing
// everything through to the real writer. Bodies over limit set
// overflow and are not buffered further.
type responseRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(p) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(p)
		}
	}
	return w.ResponseWriter.Write(p)
}

// cacheKey derives the Redis key from the configured strategy. The
// raw parts are hashed so query strings of any length produce a
// bounded key.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	req := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{req.URL.Path}
	case "method_route":
		parts = []string{req.Method, req.URL.Path}
	case "method_route_query":
		parts = []string{req.Method, req.URL.Path, req.URL.RawQuery}
	default: // route_query
		parts = []string{req.URL.Path, req.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// Cached payload layout: 4-byte status, 4-byte header length, the
// JSON-encoded header map, then the body bytes.
func encodeCached(status int, header http.Header, body []byte) []byte {
	hdr, _ := json.Marshal(header)
	out := make([]byte, 0, 8+len(hdr)+len(body))
	var u [4]byte
	binary.BigEndian.PutUint32(u[:], uint32(status))
	out = append(out, u[:]...)
	binary.BigEndian.PutUint32(u[:], uint32(len(hdr)))
	out = append(out, u[:]...)
	out = append(out, hdr...)
	out = append(out, body...)
	return out
}

func decodeCached(raw []byte) (int, http.Header, []byte, error) {
	if len(raw) < 8 {
		return 0, nil, nil, errors.New("cached payload too short")
	}
	status := int(binary.BigEndian.Uint32(raw[:4]))
	hlen := int(binary.BigEndian.Uint32(raw[4:8]))
	if 8+hlen > len(raw) {
		return 0, nil, nil, errors.New("cached payload truncated")
	}
	var header http.Header
	if err := json.Unmarshal(raw[8:8+hlen], &header); err != nil {
		return 0, nil, nil, err
	}
	return status, header, raw[8+hlen:], nil
}
