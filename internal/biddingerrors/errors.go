package biddingerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrListingNotFound        = errors.New("listing not found")
	ErrNoBids                 = errors.New("no bids found for listing")
	ErrUserNoBids             = errors.New("user has not placed any bids")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrCommentNotFound        = errors.New("comment not found")
	ErrConcurrentModification = errors.New("listing was modified concurrently")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// bid admission errors, checked in this order
var (
	ErrNotApproved      = errors.New("listing is not approved for bidding")
	ErrAuctionEnded     = errors.New("auction has ended")
	ErrSelfBidForbidden = errors.New("seller cannot bid on own listing")
	ErrAdminCannotBid   = errors.New("administrators cannot place bids")
	ErrBidTooLow        = errors.New("bid amount too low")
)

// business logic errors
var (
	ErrInvalidBid                = errors.New("invalid bid")
	ErrInvalidListing            = errors.New("invalid listing")
	ErrInvalidComment            = errors.New("invalid comment")
	ErrInvalidModerationDecision = errors.New("invalid moderation decision")
	ErrModerationNoteRequired    = errors.New("moderation note required when declining")
	ErrForbidden                 = errors.New("forbidden")
	ErrUnauthenticated           = errors.New("missing user identity")
)

// BidTooLowError carries the smallest amount that would have been admitted
type BidTooLowError struct {
	MinimumRequired decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: minimum required is %s", ErrBidTooLow, e.MinimumRequired.String())
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}

// IsAdmissionError reports whether err is a rejection decided by the admission rules
func IsAdmissionError(err error) bool {
	for _, target := range []error{
		ErrListingNotFound,
		ErrNotApproved,
		ErrAuctionEnded,
		ErrSelfBidForbidden,
		ErrAdminCannotBid,
		ErrBidTooLow,
		ErrInvalidBid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
