package handler

import (
	"context"
	"net/http"
	"strconv"

	model "vehicle-auction/internal/models"
	"vehicle-auction/services/bidding/helpers"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
)

type EngagementServiceInterface interface {
	Watch(ctx context.Context, userID, vehicleID string, notifyOnSale, notifyOnBid bool) (model.Watch, error)
	Unwatch(ctx context.Context, userID, vehicleID string) error
	ListWatches(ctx context.Context, userID string) ([]model.Watch, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) (model.Notification, error)
	PostComment(ctx context.Context, authorID, vehicleID, body string) (model.Comment, error)
	ListComments(ctx context.Context, vehicleID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type EngagementHandler struct {
	service EngagementServiceInterface
}

func NewEngagementHandler(service EngagementServiceInterface) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// WatchHandler handles PUT /listings/:vehicle_id/watch
func (h *EngagementHandler) WatchHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "WatchHandler")
	if !ok {
		return
	}

	var req helpers.WatchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, "WatchHandler", err)
			return
		}
	}
	onSale, onBid := req.Flags()

	vehicleID := c.Param("vehicle_id")
	watch, err := h.service.Watch(c.Request.Context(), userID, vehicleID, onSale, onBid)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("WatchHandler: failed to watch listing", map[string]any{"vehicle_id": vehicleID, "user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, watch, "watching listing")
}

// UnwatchHandler handles DELETE /listings/:vehicle_id/watch
func (h *EngagementHandler) UnwatchHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "UnwatchHandler")
	if !ok {
		return
	}

	vehicleID := c.Param("vehicle_id")
	if err := h.service.Unwatch(c.Request.Context(), userID, vehicleID); err != nil {
		helpers.RespondError(c, err)
		utils.Warn("UnwatchHandler: failed to remove watch", map[string]any{"vehicle_id": vehicleID, "user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "watch removed")
}

// ListWatchesHandler handles GET /me/watches
func (h *EngagementHandler) ListWatchesHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "ListWatchesHandler")
	if !ok {
		return
	}

	watches, err := h.service.ListWatches(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("ListWatchesHandler: error retrieving watches", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}
	if watches == nil {
		watches = []model.Watch{}
	}

	utils.JSONResponse(c, http.StatusOK, watches, "watches retrieved successfully")
}

// ListNotificationsHandler handles GET /me/notifications?unread=true
func (h *EngagementHandler) ListNotificationsHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "ListNotificationsHandler")
	if !ok {
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			helpers.HandleBindError(c, "ListNotificationsHandler", err)
			return
		}
		unreadOnly = parsed
	}

	list, err := h.service.ListNotifications(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("ListNotificationsHandler: error retrieving notifications", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}
	if list == nil {
		list = []model.Notification{}
	}

	utils.JSONResponse(c, http.StatusOK, list, "notifications retrieved successfully")
}

// MarkNotificationReadHandler handles POST /me/notifications/:notification_id/read
func (h *EngagementHandler) MarkNotificationReadHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "MarkNotificationReadHandler")
	if !ok {
		return
	}

	notificationID := c.Param("notification_id")
	n, err := h.service.MarkNotificationRead(c.Request.Context(), userID, notificationID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("MarkNotificationReadHandler: failed", map[string]any{"notification_id": notificationID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, n, "notification marked as read")
}

// PostCommentHandler handles POST /listings/:vehicle_id/comments
func (h *EngagementHandler) PostCommentHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "PostCommentHandler")
	if !ok {
		return
	}

	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PostCommentHandler", err)
		return
	}

	vehicleID := c.Param("vehicle_id")
	comment, err := h.service.PostComment(c.Request.Context(), userID, vehicleID, req.Body)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("PostCommentHandler: failed to post comment", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, comment, "comment posted")
	helpers.LogSuccess("PostCommentHandler", "comment posted", map[string]any{"comment_id": comment.ID, "vehicle_id": vehicleID})
}

// ListCommentsHandler handles GET /listings/:vehicle_id/comments
func (h *EngagementHandler) ListCommentsHandler(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	comments, err := h.service.ListComments(c.Request.Context(), vehicleID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("ListCommentsHandler: error retrieving comments", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	utils.JSONResponse(c, http.StatusOK, comments, "comments retrieved successfully")
}

// DeleteCommentHandler handles DELETE /comments/:comment_id
func (h *EngagementHandler) DeleteCommentHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "DeleteCommentHandler")
	if !ok {
		return
	}

	commentID := c.Param("comment_id")
	if err := h.service.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		helpers.RespondError(c, err)
		utils.Warn("DeleteCommentHandler: failed to delete comment", map[string]any{"comment_id": commentID, "user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "comment deleted")
}
