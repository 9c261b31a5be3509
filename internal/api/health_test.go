package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func healthRouter(dbPing func() error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler(dbPing).Register(r)
	return r
}

func TestHealthz_AlwaysOK(t *testing.T) {
	r := healthRouter(func() error { return errors.New("db is on fire") })

	w := doRequest(t, r, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on the database: got %d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name       string
		ping       func() error
		wantStatus int
	}{
		{"database reachable", func() error { return nil }, http.StatusOK},
		{"database down", func() error { return errors.New("connection refused") }, http.StatusServiceUnavailable},
		{"no ping configured", nil, http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doRequest(t, healthRouter(c.ping), "/readyz")
			if w.Code != c.wantStatus {
				t.Fatalf("status: got %d want %d", w.Code, c.wantStatus)
			}
		})
	}
}
