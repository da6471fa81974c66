package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache(t *testing.T) {
	rdb := newTestRedis(t)

	var hits atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"events":[]}`))
	})
	cached := ResponseCache(rdb, time.Minute)(next)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		cached.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := get("/api/events")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), hits.Load())

	second := get("/api/events")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), hits.Load())

	// Different query strings are cached separately.
	get("/api/events?type=concert")
	assert.Equal(t, int32(2), hits.Load())

	// Paths outside the cacheable namespaces bypass the cache entirely.
	other := get("/api/users/1/bookings")
	assert.Empty(t, other.Header().Get("X-Cache"))
	assert.Equal(t, int32(3), hits.Load())
}

func TestCacheInvalidation(t *testing.T) {
	rdb := newTestRedis(t)

	var hits atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"success":true}`))
	})
	cached := ResponseCache(rdb, time.Minute)(next)

	get := func(path string) string {
		rec := httptest.NewRecorder()
		cached.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Header().Get("X-Cache")
	}

	assert.Equal(t, "MISS", get("/api/events"))
	assert.Equal(t, "MISS", get("/api/venues"))
	assert.Equal(t, "HIT", get("/api/events"))

	inv := NewInvalidator(rdb)
	inv.PurgeEvents(context.Background())

	// Event entries are gone, venue entries survive.
	assert.Equal(t, "MISS", get("/api/events"))
	assert.Equal(t, "HIT", get("/api/venues"))
}

func TestCacheSkipsErrors(t *testing.T) {
	rdb := newTestRedis(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	cached := ResponseCache(rdb, time.Minute)(next)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		cached.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
}

func TestInvalidatorNilSafe(t *testing.T) {
	var inv *Invalidator
	inv.PurgeEvents(context.Background())
	inv.PurgeVenues(context.Background())

	NewInvalidator(nil).PurgeEvents(context.Background())
}
