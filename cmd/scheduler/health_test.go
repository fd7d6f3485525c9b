package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/pkg/logger"
)

type fakeProbe struct {
	err error
}

func (f fakeProbe) PingContext(context.Context) error { return f.err }

func (f fakeProbe) Stats() sql.DBStats {
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2}
}

func newTestRouter(probe dbProbe) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHealthHandler(probe), logger.Nop())
}

func do(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var body map[string]any
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth_Live(t *testing.T) {
	rec, body := do(t, newTestRouter(fakeProbe{err: errors.New("down")}), http.MethodGet, "/health/live")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_Ready(t *testing.T) {
	rec, body := do(t, newTestRouter(fakeProbe{}), http.MethodGet, "/health/ready")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	db := body["database"].(map[string]any)
	assert.Equal(t, float64(3), db["open_conns"])
}

func TestHealth_NotReady(t *testing.T) {
	rec, body := do(t, newTestRouter(fakeProbe{err: errors.New("connection refused")}), http.MethodGet, "/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Contains(t, checks["database"], "connection refused")
}

func TestRouter_OnlyGET(t *testing.T) {
	r := newTestRouter(fakeProbe{})

	rec, _ := do(t, r, http.MethodPost, "/health/live")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodDelete, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(fakeProbe{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
