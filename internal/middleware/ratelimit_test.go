package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// newActionRouter mounts the three view actions behind RateLimit.
func newActionRouter(perMinute int, opts ...RateLimitOption) http.Handler {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	r := chi.NewRouter()
	r.Route("/api/v1/view", func(r chi.Router) {
		r.Use(RateLimit(perMinute, opts...))
		r.Post("/load", ok)
		r.Post("/employee", ok)
		r.Post("/more", ok)
	})
	return r
}

func post(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	h := newActionRouter(2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, post(h, "/api/v1/view/more", "10.0.0.1:5000").Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_EachActionHasItsOwnBudget(t *testing.T) {
	h := newActionRouter(1)
	const client = "10.0.0.1:5000"

	assert.Equal(t, http.StatusOK, post(h, "/api/v1/view/more", client).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "/api/v1/view/more", client).Code)

	assert.Equal(t, http.StatusOK, post(h, "/api/v1/view/employee", client).Code)
	assert.Equal(t, http.StatusOK, post(h, "/api/v1/view/load", client).Code)
}

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	h := newActionRouter(1)

	for _, addr := range []string{"10.0.0.1:5000", "10.0.0.2:5000"} {
		assert.Equal(t, http.StatusOK, post(h, "/api/v1/view/load", addr).Code, addr)
	}
}

func TestRateLimit_RejectionBodyAndMetric(t *testing.T) {
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	h := newActionRouter(1, WithRateLimitMetrics(metrics))

	post(h, "/api/v1/view/employee", "10.0.0.9:1")
	w := post(h, "/api/v1/view/employee", "10.0.0.9:1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"too many view actions, retry later","code":"rate_limited"}`, w.Body.String())
	assert.Equal(t, float64(1), promtest.ToFloat64(
		metrics.RateLimitedTotal.WithLabelValues("/api/v1/view/employee")))
}
