package middleware

import (
	"net/http"
	"time"

	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
)

type rateLimitBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type RateLimitOption func(*rateLimiter)

// WithRateLimitMetrics counts rejected requests per route.
func WithRateLimitMetrics(m *observability.Metrics) RateLimitOption {
	return func(rl *rateLimiter) { rl.metrics = m }
}

type rateLimiter struct {
	metrics *observability.Metrics
}

// RateLimit caps view actions per client IP. Each action has its own budget,
// so repeated "view more" clicks never lock a client out of switching views.
func RateLimit(perMinute int, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := &rateLimiter{}
	for _, o := range opts {
		o(rl)
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(rl.reject),
	)
}

func (rl *rateLimiter) reject(w http.ResponseWriter, r *http.Request) {
	if rl.metrics != nil {
		rl.metrics.RateLimitedTotal.WithLabelValues(routePattern(r)).Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(rateLimitBody{
		Error: "too many view actions, retry later",
		Code:  "rate_limited",
	})
}
