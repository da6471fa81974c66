package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"quicket/internal/auth"
	"quicket/internal/model"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	ctx := context.WithValue(req.Context(), callerKey, auth.Caller{UserID: userID, Role: model.RoleUser})
	return req.WithContext(ctx)
}

func TestQuota(t *testing.T) {
	rdb := newTestRedis(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	limited := Quota(rdb, QuotaRule{Limit: 2, Window: 24 * time.Hour})(next)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestAs("user-1"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, requestAs("user-1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Another user has an independent counter.
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, requestAs("user-2"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestQuotaSkipsAnonymous(t *testing.T) {
	rdb := newTestRedis(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	limited := Quota(rdb, QuotaRule{Limit: 1, Window: time.Hour})(next)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
