package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "mw-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims JWTClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(role string) JWTClaims {
	return JWTClaims{
		UserID:   "6a1f7c8e-1d2b-4c3a-9e8f-0a1b2c3d4e5f",
		Username: "ama",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func protectedEngine(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", JWTAuth(testSecret), RequireRole(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedEngine("pharmacist", "admin")

	w := call(r, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("pharmacist")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ama", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized,
		call(r, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims("admin"))).Code)

	expired := validClaims("admin")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized,
		call(r, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret), expired)).Code)

	noUser := validClaims("admin")
	noUser.UserID = ""
	assert.Equal(t, http.StatusUnauthorized,
		call(r, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret), noUser)).Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedEngine("admin")
	w := call(r, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("cashier")))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Insufficient permissions"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := protectedEngine("admin")

	w := call(r, "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestErrorHandlerAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errors.New("pq: relation does not exist")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/err", "/panic"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String(), path)
	}
}

func TestWindowLimiter(t *testing.T) {
	l := newWindowLimiter(2, time.Minute)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ok, _ := l.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, end := l.allow("10.0.0.1", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), end)

	ok, _ = l.allow("10.0.0.2", now)
	assert.True(t, ok, "limits are per key")

	ok, _ = l.allow("10.0.0.1", now.Add(61*time.Second))
	assert.True(t, ok, "window resets")

	purged, remaining := l.purge(now.Add(3 * time.Minute))
	assert.Equal(t, 2, purged)
	assert.Zero(t, remaining)
}
