package api

import (
	"net/http"
	"testing"
)

func TestNewRouter_RoutesRegistered(t *testing.T) {
	r := NewRouter(NewHandler(&mockReportingService{}), 120)

	cases := []struct {
		url        string
		wantStatus int
	}{
		// Parameter validation answers 400, proving the route is wired.
		{"/api/v1/summary", http.StatusBadRequest},
		{"/api/v1/ledger", http.StatusBadRequest},
		{"/api/v1/contracts/counts", http.StatusBadRequest},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, c := range cases {
		w := doRequest(t, r, c.url)
		if w.Code != c.wantStatus {
			t.Fatalf("%s: got %d want %d", c.url, w.Code, c.wantStatus)
		}
	}
}

func TestNewRouter_SetsRequestID(t *testing.T) {
	r := NewRouter(NewHandler(&mockReportingService{}), 120)

	w := doRequest(t, r, "/api/v1/summary")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
}
