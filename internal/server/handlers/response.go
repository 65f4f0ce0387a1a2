package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/services"
	"github.com/gin-gonic/gin"
)

// Response is the body of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// statusFor maps the common sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorReferentialIntegrity):
		return http.StatusConflict
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotReady), errors.Is(err, common.ErrorClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the user-facing text of a getter or session error.
func messageFor(err error, notFound string) string {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return notFound
	case errors.Is(err, common.ErrorNotReady):
		return "data is still loading, try again shortly"
	case errors.Is(err, common.ErrorClosed):
		return "server is shutting down"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrorMalformedRecord):
		return "stored data is corrupted"
	default:
		return "storage error"
	}
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// reply writes a use-case result; created is the status used on success.
func reply[T any](c *gin.Context, res services.Result[T], created int) {
	if !res.Success {
		fail(c, statusFor(res.Err), res.Message)
		return
	}
	c.JSON(created, Response{Success: true, Message: res.Message, Data: res.Data})
}
