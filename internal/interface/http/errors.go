package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/pkg/response"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindConflict:           http.StatusConflict,
	apperror.KindUnauthorized:       http.StatusUnauthorized,
	apperror.KindNotFound:           http.StatusNotFound,
	apperror.KindAlreadyVerified:    http.StatusBadRequest,
	apperror.KindBadRequest:         http.StatusBadRequest,
	apperror.KindUnprocessableImage: http.StatusUnprocessableEntity,
	apperror.KindInternal:           http.StatusInternalServerError,
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrorWriter renders domain errors. Internal faults are logged with their
// cause and answered with a generic message.
func ErrorWriter(logger *logrus.Logger) func(c *gin.Context, err error) {
	return func(c *gin.Context, err error) {
		kind := apperror.KindOf(err)
		status := StatusOf(kind)

		if kind == apperror.KindInternal {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString(response.RequestIDKey),
				"path":       c.Request.URL.Path,
			}).Error("internal error")
			response.AbortError(c, status, "Server error", nil)
			return
		}

		var ae *apperror.Error
		if !errors.As(err, &ae) {
			response.AbortError(c, status, "Server error", nil)
			return
		}
		response.AbortError(c, status, ae.Message, nil)
	}
}
