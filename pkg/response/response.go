package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request id middleware sets.
const RequestIDKey = "request_id"

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Error builds an ErrorBody stamped with the request id.
func Error(ctx *gin.Context, message string, details map[string]string) ErrorBody {
	return ErrorBody{
		Message:   message,
		RequestID: ctx.GetString(RequestIDKey),
		Details:   details,
	}
}

// AbortError writes an error body and stops the handler chain.
func AbortError(ctx *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, Error(ctx, message, details))
}
