package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthHandler(db *mongo.Database, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{mongo: db, redis: rdb}
}

// Liveness confirms the process is alive. Always 200.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type probeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                 `json:"status"`
	Dependencies map[string]probeResult `json:"dependencies"`
}

// Readiness checks MongoDB and Redis connectivity before declaring the
// service ready to take traffic.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := map[string]probeResult{
		"mongodb": probe(h.mongo.Client().Ping(ctx, nil)),
		"redis":   probe(h.redis.Ping(ctx).Err()),
	}

	status, code := "ok", http.StatusOK
	for _, d := range deps {
		if d.Status != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(code, readinessResponse{Status: status, Dependencies: deps})
}

func probe(err error) probeResult {
	if err != nil {
		return probeResult{Status: "unhealthy", Error: err.Error()}
	}
	return probeResult{Status: "ok"}
}
