package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
)

func TestStatusOf(t *testing.T) {
	cases := map[apperror.Kind]int{
		apperror.KindConflict:           http.StatusConflict,
		apperror.KindUnauthorized:       http.StatusUnauthorized,
		apperror.KindNotFound:           http.StatusNotFound,
		apperror.KindAlreadyVerified:    http.StatusBadRequest,
		apperror.KindBadRequest:         http.StatusBadRequest,
		apperror.KindUnprocessableImage: http.StatusUnprocessableEntity,
		apperror.KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusOf(kind), kind.String())
	}
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, *test.Hook) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	ErrorWriter(logger)(c, err)
	return w, hook
}

func TestErrorWriterHidesInternalDetail(t *testing.T) {
	w, hook := render(t, apperror.Internal(fmt.Errorf("dial tcp 10.0.0.1:5432: refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, w.Body.String(), "10.0.0.1")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestErrorWriterPassesDomainMessage(t *testing.T) {
	w, hook := render(t, fmt.Errorf("wrapped: %w", apperror.Conflict("Email already in use")))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already in use")
	assert.Empty(t, hook.AllEntries())
}
