package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rgoulart/optpulse/internal/domain/dto"
)

func serve(r *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_SetsHeaderAndContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var inContext string
	r.GET("/", func(c *gin.Context) {
		v, _ := c.Get(RequestIDKey)
		inContext, _ = v.(string)
		c.Status(http.StatusOK)
	})

	w := serve(r, "/")
	header := w.Header().Get("X-Request-ID")
	if header == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if inContext != header {
		t.Fatalf("context id %q differs from header %q", inContext, header)
	}

	// A second request gets a fresh id.
	w2 := serve(r, "/")
	if w2.Header().Get("X-Request-ID") == header {
		t.Fatal("request ids must be unique per request")
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("nil map write")
	})

	w := serve(r, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if resp.Message != "Internal server error" {
		t.Fatalf("message: %q", resp.Message)
	}
}

func TestErrorHandler_ConvertsContextErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("upstream timeout"))
	})

	w := serve(r, "/fail")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if resp.Detail != "upstream timeout" {
		t.Fatalf("detail: %q", resp.Detail)
	}
}

func TestErrorHandler_DoesNotOverrideWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/partial", func(c *gin.Context) {
		_ = c.Error(errors.New("late failure"))
		c.JSON(http.StatusBadRequest, gin.H{"message": "handled"})
	})

	w := serve(r, "/partial")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("written response must stand: got %d", w.Code)
	}
}

func TestRateLimiter_RejectsBeyondLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const limit = 5
	r := gin.New()
	r.Use(RateLimiter(limit, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < limit; i++ {
		if w := serve(r, "/"); w.Code != http.StatusOK {
			t.Fatalf("request %d within limit rejected: %d", i+1, w.Code)
		}
	}
	if w := serve(r, "/"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("request beyond limit: got %d", w.Code)
	}
}

func TestRateLimiter_WindowExpiryResetsCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiter(1, 20*time.Millisecond))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "/"); w.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w.Code)
	}
	if w := serve(r, "/"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request within window: got %d", w.Code)
	}

	time.Sleep(30 * time.Millisecond)
	if w := serve(r, "/"); w.Code != http.StatusOK {
		t.Fatalf("stale window must reset the counter: got %d", w.Code)
	}
}

func TestRateLimiter_InstancesCountIndependently(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(RateLimiter(1, time.Minute))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	a, b := newRouter(), newRouter()
	if w := serve(a, "/"); w.Code != http.StatusOK {
		t.Fatalf("first router: got %d", w.Code)
	}
	if w := serve(a, "/"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first router beyond limit: got %d", w.Code)
	}
	if w := serve(b, "/"); w.Code != http.StatusOK {
		t.Fatalf("second router must carry its own budget: got %d", w.Code)
	}
}
