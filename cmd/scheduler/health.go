package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// dbProbe is the part of sqlstore.DB the health endpoints need.
type dbProbe interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db      dbProbe
	timeout time.Duration
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db dbProbe) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready checks the database connection.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}

	s := h.db.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
		"database": map[string]any{
			"open_conns":   s.OpenConnections,
			"in_use_conns": s.InUse,
			"idle_conns":   s.Idle,
		},
	})
}
