package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"bidding-marketplace/internal/biddingerrors"
	model "bidding-marketplace/internal/models"
	"bidding-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// CallerKey is the gin context key under which the auth middleware stores the
// resolved caller
const CallerKey = "caller"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var domainErr *biddingerrors.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, "internal server error"
	}

	switch domainErr.Kind {
	case biddingerrors.KindNotFound:
		return http.StatusNotFound, domainErr.Error()
	case biddingerrors.KindForbidden:
		return http.StatusForbidden, domainErr.Error()
	case biddingerrors.KindValidation:
		return http.StatusBadRequest, domainErr.Error()
	case biddingerrors.KindConflict:
		return http.StatusConflict, domainErr.Error()
	case biddingerrors.KindUnauthenticated:
		return http.StatusUnauthorized, domainErr.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError maps err, writes the JSON error and logs it. Server errors
// never expose their cause to the client.
func HandleServiceError(c *gin.Context, handlerName, logMessage string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)

	fields := map[string]any{"handler": handlerName, "error": err.Error()}
	for k, v := range ctx {
		fields[k] = v
	}

	if status >= http.StatusInternalServerError {
		utils.JSONError(c, status, errors.New(message), message)
		utils.Error(handlerName+": "+logMessage, fields)
		return
	}
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	utils.Warn(handlerName+": "+logMessage, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// Caller returns the user resolved by the auth middleware
func Caller(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return model.User{}, false
	}
	caller, ok := v.(model.User)
	return caller, ok
}

// RequireCaller returns the resolved caller or writes a 401 and reports false
func RequireCaller(c *gin.Context, handlerName string) (model.User, bool) {
	caller, ok := Caller(c)
	if !ok || caller.ID == "" {
		utils.JSONError(c, http.StatusUnauthorized, biddingerrors.ErrInvalidToken, "authentication required")
		utils.Warn(handlerName+": no authenticated caller", map[string]any{"path": c.FullPath()})
		return model.User{}, false
	}
	return caller, true
}
