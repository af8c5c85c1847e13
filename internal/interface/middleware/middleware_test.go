package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDReusesValidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLog(logger))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, id, hook.LastEntry().Data["request_id"])
	assert.Equal(t, "/ping", hook.LastEntry().Data["path"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

func TestRequestIDReplacesGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}
