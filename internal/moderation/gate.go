package moderation

import (
	"context"
	"fmt"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/identity"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/repository"
	"vehicle-auction/utils"
)

// Gate records admin approval decisions. Decisions can be flipped at any time;
// only approved listings accept bids.
type Gate struct {
	listings repository.ListingStore
	admins   identity.Directory
	clock    clock.Clock
}

func NewGate(listings repository.ListingStore, admins identity.Directory, clk clock.Clock) *Gate {
	return &Gate{listings: listings, admins: admins, clock: clk}
}

// Decide sets the approval status of a listing on behalf of adminID
func (g *Gate) Decide(ctx context.Context, adminID, vehicleID string, decision model.ApprovalStatus, note string) (model.Listing, error) {
	if decision != model.ApprovalApproved && decision != model.ApprovalDeclined {
		return model.Listing{}, fmt.Errorf("moderation: %w - %q", biddingerrors.ErrInvalidModerationDecision, decision)
	}

	isAdmin, err := g.admins.IsAdmin(ctx, adminID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("moderation: resolve role of %s: %w", adminID, err)
	}
	if !isAdmin {
		return model.Listing{}, fmt.Errorf("moderation: user %s is not an administrator: %w", adminID, biddingerrors.ErrForbidden)
	}

	listing, err := g.listings.UpdateApproval(ctx, vehicleID, decision, note, g.clock.Now())
	if err != nil {
		return model.Listing{}, fmt.Errorf("moderation: failed to record decision for listing %s: %w", vehicleID, err)
	}

	utils.Info("moderation: decision recorded", map[string]any{
		"vehicle_id": vehicleID,
		"admin_id":   adminID,
		"decision":   decision,
	})
	return listing, nil
}
