package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the caller's identity
const UserIDKey = "user_id"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// CurrentUser returns the authenticated caller or "" when the request is anonymous
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// RequireUser writes a 401 and returns false when the request is anonymous
func RequireUser(c *gin.Context, handlerName string) (string, bool) {
	userID := CurrentUser(c)
	if userID == "" {
		status, message := MapErrorToHTTP(biddingerrors.ErrUnauthenticated)
		utils.JSONError(c, status, biddingerrors.ErrUnauthenticated, message)
		utils.Warn(handlerName+": anonymous request rejected", map[string]any{"path": c.FullPath()})
		return "", false
	}
	return userID, true
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, biddingerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, biddingerrors.ErrCommentNotFound):
		return http.StatusNotFound, "comment not found"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidListing):
		return http.StatusBadRequest, "invalid listing details"
	case errors.Is(err, biddingerrors.ErrInvalidComment):
		return http.StatusBadRequest, "comment must be between 1 and 2000 characters"
	case errors.Is(err, biddingerrors.ErrInvalidModerationDecision):
		return http.StatusBadRequest, "decision must be approved or declined"
	case errors.Is(err, biddingerrors.ErrModerationNoteRequired):
		return http.StatusBadRequest, "a note is required when declining a listing"
	case errors.Is(err, biddingerrors.ErrNotApproved):
		return http.StatusConflict, "listing is not open for bidding until approved"
	case errors.Is(err, biddingerrors.ErrAuctionEnded):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrSelfBidForbidden):
		return http.StatusForbidden, "sellers cannot bid on their own listing"
	case errors.Is(err, biddingerrors.ErrAdminCannotBid):
		return http.StatusForbidden, "administrators cannot place bids"
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, biddingerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "missing X-User-ID header"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "outcome unknown, re-check the listing before retrying"
	case errors.Is(err, biddingerrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage temporarily unavailable, retry later"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusOK, "no bids found for listing"
	case errors.Is(err, biddingerrors.ErrUserNoBids):
		return http.StatusOK, "no listings found for user"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err and writes the error envelope. A too-low bid also
// carries the minimum the client must reach.
func RespondError(c *gin.Context, err error) int {
	status, message := MapErrorToHTTP(err)

	var tooLow *biddingerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		utils.JSONErrorWithData(c, status, fmt.Errorf("%s: %w", message, err), message, BidTooLowData{MinimumRequired: tooLow.MinimumRequired})
		return status
	}
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	return status
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
