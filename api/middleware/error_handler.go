// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/nebula-nlsql/internal/ai"
	"github.com/Annany2002/nebula-nlsql/internal/auth"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/export"
	"github.com/Annany2002/nebula-nlsql/internal/services"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers that already wrote a response only attach the error for logging.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		if c.Writer.Written() {
			return
		}
		statusCode, userMessage := StatusFor(err)
		c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
	}
}

// StatusFor maps an error to an HTTP status and the message shown to the client.
func StatusFor(err error) (int, string) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			customLog.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
		}
		return http.StatusBadRequest, "Validation failed. Please check your input."

	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrProjectNotFound),
		errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, storage.ErrEmailExists),
		errors.Is(err, storage.ErrDatabaseNameExists),
		errors.Is(err, services.ErrConflict):
		return http.StatusConflict, err.Error()

	case errors.Is(err, storage.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid email or password."

	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Authentication token has expired."

	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenClaimsInvalid),
		errors.Is(err, auth.ErrUnexpectedSigningMethod):
		return http.StatusUnauthorized, "Invalid or malformed authentication token."

	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDataCoercion),
		errors.Is(err, core.ErrInvalidQueryParam),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, ai.ErrInvalidResponseStructure),
		errors.Is(err, ai.ErrInvalidSchemaStructure):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, services.ErrProjectNotReady):
		return http.StatusServiceUnavailable, err.Error()

	case errors.Is(err, ai.ErrAnalysisFailed),
		errors.Is(err, ai.ErrSchemaInferenceFailed),
		errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway, "The language model service could not complete the request."

	default:
		customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}
