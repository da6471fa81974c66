package handler

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedBody is the gob-encoded form of a cached response.
type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// cacheKey namespaces keys by resource so mutations can purge them in
// bulk. Only GETs on the public event/venue reads are cacheable.
func cacheKey(r *http.Request) string {
	if r.Method != http.MethodGet {
		return ""
	}
	path := r.URL.Path
	raw := r.Method + "|" + path + "|" + r.URL.RawQuery
	switch {
	case strings.HasPrefix(path, "/api/events"):
		return "cache:events:" + sha1Hex(raw)
	case strings.HasPrefix(path, "/api/venues"):
		return "cache:venues:" + sha1Hex(raw)
	default:
		return ""
	}
}

// ResponseCache serves public event/venue reads from redis. Cache
// failures fall through to the live handler; only 2xx responses are
// stored.
func ResponseCache(rdb *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cacheKey(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if b, err := rdb.Get(r.Context(), key).Bytes(); err == nil && len(b) > 0 {
				var hit cachedBody
				if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
					for k, vals := range hit.Header {
						for _, v := range vals {
							w.Header().Add(k, v)
						}
					}
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(hit.Status)
					_, _ = w.Write(hit.Body)
					return
				}
			}

			bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
			bw.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(bw, r)

			if bw.status >= 200 && bw.status < 300 {
				item := cachedBody{
					Status: bw.status,
					Header: bw.Header().Clone(),
					Body:   bw.buf.Bytes(),
				}
				var out bytes.Buffer
				if err := gob.NewEncoder(&out).Encode(item); err == nil {
					_ = rdb.Set(r.Context(), key, out.Bytes(), ttl).Err()
				}
			}
		})
	}
}

// bufferedWriter tees the response body into memory so it can be cached
// after the handler runs.
type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Invalidator purges cached reads after a mutation.
type Invalidator struct {
	rdb *redis.Client
}

// NewInvalidator constructs an Invalidator.
func NewInvalidator(rdb *redis.Client) *Invalidator {
	return &Invalidator{rdb: rdb}
}

func (i *Invalidator) purge(ctx context.Context, pattern string) {
	if i == nil || i.rdb == nil {
		return
	}
	iter := i.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = i.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEvents drops every cached event read.
func (i *Invalidator) PurgeEvents(ctx context.Context) {
	i.purge(ctx, "cache:events:*")
}

// PurgeVenues drops every cached venue read.
func (i *Invalidator) PurgeVenues(ctx context.Context) {
	i.purge(ctx, "cache:venues:*")
}
