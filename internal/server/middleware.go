package server

import (
	"net/http"
	"strconv"
	"time"

	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated user id, supplied by the
	// upstream gateway. The core trusts it without re-validating
	// credentials.
	UserIDHeader = "X-User-ID"

	requestIDHeader = "X-Request-ID"
	userIDKey       = "userID"
	requestIDKey    = "requestID"
)

// RequestIDMiddleware tags every request with a correlation id
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = utils.GenerateID()
	}
	c.Set(requestIDKey, requestID)
	c.Writer.Header().Set(requestIDHeader, requestID)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(requestIDKey),
	})
}

// IdentityMiddleware extracts the gateway-supplied user id when present
func IdentityMiddleware(c *gin.Context) {
	if raw := c.GetHeader(UserIDHeader); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			utils.JSONError(c, http.StatusBadRequest, errInvalidUserID, "invalid user id header")
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
	}
	c.Next()
}

// RequireIdentity rejects requests that carry no user id
func RequireIdentity(c *gin.Context) {
	if _, ok := CurrentUserID(c); !ok {
		utils.JSONError(c, http.StatusUnauthorized, errMissingUserID, "missing user identity")
		c.Abort()
		return
	}
	c.Next()
}

// CurrentUserID returns the authenticated user id for the request
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}
