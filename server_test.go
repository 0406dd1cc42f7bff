package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" https://shop.local , ,https://admin.shop.local ")
	if len(got) != 2 || got[0] != "https://shop.local" || got[1] != "https://admin.shop.local" {
		t.Fatalf("unexpected origins %v", got)
	}
	if splitAndTrim("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestRateLimitMiddleware_PassesWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(1, time.Minute).RateLimitMiddleware)
	r.GET("/api/paints", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/paints", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d expected 200 without redis, got %d", i, w.Code)
		}
	}
}

func TestCustomNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(customNotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
