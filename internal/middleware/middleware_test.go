package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/logging"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func run(e *echo.Echo, req *http.Request, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen echo.Context
	var h echo.HandlerFunc = func(c echo.Context) error {
		seen = c
		return c.String(http.StatusOK, "ok")
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	_ = h(c)
	return rec, seen
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	valid := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "desk-1", "role": "staff", "exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "desk-1", "exp": time.Now().Add(-time.Hour).Unix(),
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec, seen := run(e, req, JWTAuth(secret))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "desk-1", seen.Get(ctxSubject))
				assert.Equal(t, "staff", seen.Get(ctxRole))
			} else {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	staff := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a", "role": "staff"})
	guest := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "b", "role": "guest"})

	for token, want := range map[string]int{staff: http.StatusOK, guest: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, _ := run(e, req, JWTAuth(secret), RequireRole("staff", "admin"))
		assert.Equal(t, want, rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, seen := run(e, req, RequestID())
	generated := rec.Header().Get(headerRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, logging.RequestID(seen.Request().Context()))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec, _ = run(e, req, RequestID())
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(&buf, "info", true)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	run(e, req, RequestID(), AccessLog(log))
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"request_id"`)
	assert.Contains(t, buf.String(), `"subject":"anon"`)
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	log := logrus.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)

	rec, _ := run(e, req, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")

	assert.Equal(t, "rl:ip:10.0.0.9:route:POST /v1/reservations",
		buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))

	c.Set(ctxSubject, "desk-2")
	assert.Equal(t, "rl:user:desk-2", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}
