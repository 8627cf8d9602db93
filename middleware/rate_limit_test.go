package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedServer(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.Use(rl.Middleware())
	e.POST("/auth/signin", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func signin(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	e := limitedServer(NewRateLimiter(rate.Limit(10), 10))

	for n := 0; n < 10; n++ {
		assert.Equal(t, http.StatusOK, signin(e, "").Code)
	}
}

func TestRateLimiter_ThrottlesBeyondBurst(t *testing.T) {
	e := limitedServer(NewRateLimiter(rate.Limit(1), 1))

	assert.Equal(t, http.StatusOK, signin(e, "").Code)

	rec := signin(e, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	e := limitedServer(NewRateLimiter(rate.Limit(1), 1))

	assert.Equal(t, http.StatusOK, signin(e, "1.2.3.4:1234").Code)
	assert.Equal(t, http.StatusOK, signin(e, "5.6.7.8:5678").Code)
	assert.Equal(t, http.StatusTooManyRequests, signin(e, "1.2.3.4:1234").Code)
}
