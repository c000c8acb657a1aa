package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheYates/bernat-medical-sub000/internal/middleware"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		kind error
		want int
	}{
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrInvalidState, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrInsufficientStock, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.kind.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, &service.Error{Kind: tc.kind, Message: "Drug not found"})
			assert.Equal(t, tc.want, w.Code)
			assert.JSONEq(t, `{"message":"Drug not found"}`, w.Body.String())
		})
	}
}

func TestRespondErrorUnclassifiedGoesToErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/x", func(c *gin.Context) { respondError(c, errors.New("dial tcp: connection refused")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestActorFromRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := actorFrom(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: "6a1f7c8e-1d2b-4c3a-9e8f-0a1b2c3d4e5f", Role: "admin"})
	actor, ok := actorFrom(c)
	assert.True(t, ok)
	assert.True(t, actor.IsAdmin())
}
