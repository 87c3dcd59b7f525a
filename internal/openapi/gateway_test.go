package openapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"talentbridge/portal-service/internal/openapi"
)

func passthrough() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// ── RequireAPIKey ──────────────────────────────────────────────────────────

func TestRequireAPIKey_ValidKey(t *testing.T) {
	mw := openapi.RequireAPIKey("secret-key", true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
	req.Header.Set("X-API-Key", "secret-key")

	mw(passthrough()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAPIKey_WrongKey(t *testing.T) {
	mw := openapi.RequireAPIKey("secret-key", true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
	req.Header.Set("X-API-Key", "guess")

	mw(passthrough()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAPIKey_MissingKey(t *testing.T) {
	mw := openapi.RequireAPIKey("secret-key", false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)

	mw(passthrough()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAPIKey_UnconfiguredProductionRefuses(t *testing.T) {
	mw := openapi.RequireAPIKey("", true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
	req.Header.Set("X-API-Key", "anything")

	mw(passthrough()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "production must fail closed without a configured key")
}

func TestRequireAPIKey_UnconfiguredDevelopmentAllows(t *testing.T) {
	mw := openapi.RequireAPIKey("", false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)

	mw(passthrough()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ── RateLimit ──────────────────────────────────────────────────────────────

func TestRateLimit_BurstThenRejects(t *testing.T) {
	mw := openapi.RateLimit(5)
	handler := mw(passthrough())

	var last int
	for i := 0; i < 6; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRateLimit_PerHostBuckets(t *testing.T) {
	mw := openapi.RateLimit(1)
	handler := mw(passthrough())

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
	req1.RemoteAddr = "203.0.113.1:1111"
	handler.ServeHTTP(first, req1)

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/open/jobs", nil)
	req2.RemoteAddr = "203.0.113.2:2222"
	handler.ServeHTTP(second, req2)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code, "a second host gets its own bucket")
}
