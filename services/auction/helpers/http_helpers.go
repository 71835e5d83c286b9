package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-market/internal/auctionerrors"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrInvalidMinPrice):
		return http.StatusBadRequest, "minimum price must be a positive multiple of 1000"
	case errors.Is(err, auctionerrors.ErrInvalidAuctionState):
		return http.StatusBadRequest, "invalid auction state"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "not authorized for this auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
