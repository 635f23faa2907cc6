package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db    Pinger
	redis redis.UniversalClient
}

// NewHealthHandlers creates a new health handlers instance. rdb may be nil when
// locking runs on postgres.
func NewHealthHandlers(db Pinger, rdb redis.UniversalClient) *HealthHandlers {
	return &HealthHandlers{db: db, redis: rdb}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// LivenessCheck handles GET /health
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /health/ready
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{},
	}

	if err := h.db.Ping(ctx); err != nil {
		status.Services["database"] = "unhealthy"
		status.Status = "not_ready"
	} else {
		status.Services["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Services["redis"] = "unhealthy"
			status.Status = "not_ready"
		} else {
			status.Services["redis"] = "healthy"
		}
	}

	code := http.StatusOK
	if status.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
