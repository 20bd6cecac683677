package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kaproxy-go/errors"
)

// ErrorBody is the proxy's error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondError writes {"error": message} with the given status.
func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// RespondAppError maps an AppError code to a status and writes its message.
// Other errors become a 500.
func RespondAppError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	RespondError(c, statusFor(appErr.Code), appErr.Message)
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
