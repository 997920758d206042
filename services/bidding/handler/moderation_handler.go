package handler

import (
	"context"
	"net/http"
	"strings"

	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
	"vehicle-auction/services/bidding/helpers"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
)

type ModerationGateInterface interface {
	Decide(ctx context.Context, adminID, vehicleID string, decision model.ApprovalStatus, note string) (model.Listing, error)
}

type ModerationHandler struct {
	gate ModerationGateInterface
}

func NewModerationHandler(gate ModerationGateInterface) *ModerationHandler {
	return &ModerationHandler{gate: gate}
}

// DecideHandler handles POST /admin/listings/:vehicle_id/moderation
func (h *ModerationHandler) DecideHandler(c *gin.Context) {
	adminID, ok := helpers.RequireUser(c, "DecideHandler")
	if !ok {
		return
	}

	var req helpers.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DecideHandler", err)
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if req.Decision == model.ApprovalDeclined && req.Note == "" {
		helpers.RespondError(c, biddingerrors.ErrModerationNoteRequired)
		return
	}

	vehicleID := c.Param("vehicle_id")
	listing, err := h.gate.Decide(c.Request.Context(), adminID, vehicleID, req.Decision, req.Note)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("DecideHandler: moderation failed", map[string]any{"vehicle_id": vehicleID, "admin_id": adminID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listingResponse(listing), "moderation decision recorded")
}
