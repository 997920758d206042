package engagement

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/internal/clock"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"
	"vehicle-auction/utils"
)

const maxCommentLength = 2000

// Service handles watches, notifications and comments for authenticated users
type Service struct {
	listings      repository.ListingStore
	watches       repository.WatchStore
	notifications repository.NotificationStore
	comments      repository.CommentStore
	notifier      notification.Notifier
	clock         clock.Clock
}

func NewService(store repository.Store, notifier notification.Notifier, clk clock.Clock) *Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Service{
		listings:      store,
		watches:       store,
		notifications: store,
		comments:      store,
		notifier:      notifier,
		clock:         clk,
	}
}

// Watch registers or updates the user's interest in a listing
func (s *Service) Watch(ctx context.Context, userID, vehicleID string, notifyOnSale, notifyOnBid bool) (model.Watch, error) {
	if userID == "" {
		return model.Watch{}, biddingerrors.ErrUnauthenticated
	}
	if _, err := s.listings.GetListing(ctx, vehicleID); err != nil {
		return model.Watch{}, fmt.Errorf("engagement: watch listing %s: %w", vehicleID, err)
	}

	watch, err := s.watches.UpsertWatch(ctx, model.Watch{
		UserID:       userID,
		VehicleID:    vehicleID,
		NotifyOnSale: notifyOnSale,
		NotifyOnBid:  notifyOnBid,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		return model.Watch{}, fmt.Errorf("engagement: watch listing %s: %w", vehicleID, err)
	}
	return watch, nil
}

func (s *Service) Unwatch(ctx context.Context, userID, vehicleID string) error {
	if userID == "" {
		return biddingerrors.ErrUnauthenticated
	}
	if err := s.watches.DeleteWatch(ctx, userID, vehicleID); err != nil {
		return fmt.Errorf("engagement: unwatch listing %s: %w", vehicleID, err)
	}
	return nil
}

func (s *Service) ListWatches(ctx context.Context, userID string) ([]model.Watch, error) {
	if userID == "" {
		return nil, biddingerrors.ErrUnauthenticated
	}
	watches, err := s.watches.GetWatchesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("engagement: list watches: %w", err)
	}
	return watches, nil
}

func (s *Service) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	if userID == "" {
		return nil, biddingerrors.ErrUnauthenticated
	}
	list, err := s.notifications.GetNotificationsByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("engagement: list notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags one of the user's own notifications as read
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID string) (model.Notification, error) {
	if userID == "" {
		return model.Notification{}, biddingerrors.ErrUnauthenticated
	}
	n, err := s.notifications.MarkNotificationRead(ctx, userID, notificationID)
	if err != nil {
		return model.Notification{}, fmt.Errorf("engagement: mark notification read: %w", err)
	}
	return n, nil
}

// PostComment stores a comment and notifies bid watchers other than the author
func (s *Service) PostComment(ctx context.Context, authorID, vehicleID, body string) (model.Comment, error) {
	if authorID == "" {
		return model.Comment{}, biddingerrors.ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > maxCommentLength {
		return model.Comment{}, fmt.Errorf("engagement: %w - body must be 1 to %d characters", biddingerrors.ErrInvalidComment, maxCommentLength)
	}

	listing, err := s.listings.GetListing(ctx, vehicleID)
	if err != nil {
		return model.Comment{}, fmt.Errorf("engagement: comment on listing %s: %w", vehicleID, err)
	}

	comment := model.Comment{
		ID:        utils.GenerateID(),
		VehicleID: vehicleID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: s.clock.Now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return model.Comment{}, fmt.Errorf("engagement: comment on listing %s: %w", vehicleID, err)
	}

	if _, err := s.notifier.Notify(context.WithoutCancel(ctx), vehicleID, model.EventNewComment, notification.Payload{ActorID: authorID, Listing: listing}); err != nil {
		utils.Warn("engagement: comment fan-out failed", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
	}
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, vehicleID string) ([]model.Comment, error) {
	if _, err := s.listings.GetListing(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("engagement: list comments: %w", err)
	}
	comments, err := s.comments.GetCommentsByListing(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("engagement: list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment; only its author may do so
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	if userID == "" {
		return biddingerrors.ErrUnauthenticated
	}
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("engagement: delete comment: %w", err)
	}
	if comment.AuthorID != userID {
		return fmt.Errorf("engagement: user %s cannot delete comment %s: %w", userID, commentID, biddingerrors.ErrForbidden)
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("engagement: delete comment: %w", err)
	}
	return nil
}
