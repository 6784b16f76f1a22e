package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

var upstreamEndpoints = []string{
	gateway.EndpointEmployees,
	gateway.EndpointTransactions,
	gateway.EndpointEmployeeTransactions,
}

// HealthController reports liveness and readiness. redis and breakers may be nil.
type HealthController struct {
	redis    *redis.Client
	breakers *gateway.Breakers
}

func NewHealthController(redis *redis.Client, breakers *gateway.Breakers) *HealthController {
	return &HealthController{redis: redis, breakers: breakers}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "redis unavailable",
			})
			return
		}
	}

	if h.breakers != nil {
		for _, endpoint := range upstreamEndpoints {
			if h.breakers.State(endpoint) == gobreaker.StateOpen {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"reason": "upstream " + endpoint + " circuit open",
				})
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
