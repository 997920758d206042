package repository

import (
	"context"
	"fmt"
	"sort"

	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
)

// UpsertWatch creates a watch or replaces its notification preferences
func (r *MemoryRepo) UpsertWatch(ctx context.Context, watch model.Watch) (model.Watch, error) {
	if err := ctx.Err(); err != nil {
		return model.Watch{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.watches[watch.VehicleID]
	if !ok {
		byUser = make(map[string]model.Watch)
		r.watches[watch.VehicleID] = byUser
	}
	if existing, found := byUser[watch.UserID]; found {
		watch.CreatedAt = existing.CreatedAt
	}
	byUser[watch.UserID] = watch
	return watch, nil
}

// DeleteWatch removes a watch; removing a missing watch is not an error
func (r *MemoryRepo) DeleteWatch(ctx context.Context, userID, vehicleID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.watches[vehicleID], userID)
	return nil
}

// GetWatchers returns every watch registered on a listing ordered by user
func (r *MemoryRepo) GetWatchers(ctx context.Context, vehicleID string) ([]model.Watch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	watchers := make([]model.Watch, 0, len(r.watches[vehicleID]))
	for _, w := range r.watches[vehicleID] {
		watchers = append(watchers, w)
	}
	sort.Slice(watchers, func(i, j int) bool { return watchers[i].UserID < watchers[j].UserID })
	return watchers, nil
}

// GetWatchesByUser returns the watches held by a user ordered by listing
func (r *MemoryRepo) GetWatchesByUser(ctx context.Context, userID string) ([]model.Watch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var watches []model.Watch
	for _, byUser := range r.watches {
		if w, ok := byUser[userID]; ok {
			watches = append(watches, w)
		}
	}
	sort.Slice(watches, func(i, j int) bool { return watches[i].VehicleID < watches[j].VehicleID })
	return watches, nil
}

// CreateNotification stores a notification unless its dedup key was already used
func (r *MemoryRepo) CreateNotification(ctx context.Context, n model.Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.DedupKey != "" {
		if _, seen := r.dedupKeys[n.DedupKey]; seen {
			return false, nil
		}
		r.dedupKeys[n.DedupKey] = struct{}{}
	}
	r.notifications[n.UserID] = append(r.notifications[n.UserID], n)
	return true, nil
}

// GetNotificationsByUser returns a user's notifications, newest first
func (r *MemoryRepo) GetNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.notifications[userID]
	out := make([]model.Notification, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if unreadOnly && all[i].IsRead {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

// MarkNotificationRead flags a notification owned by userID as read
func (r *MemoryRepo) MarkNotificationRead(ctx context.Context, userID, notificationID string) (model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return model.Notification{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notifications[userID] {
		if n.ID == notificationID {
			r.notifications[userID][i].IsRead = true
			return r.notifications[userID][i], nil
		}
	}
	return model.Notification{}, fmt.Errorf("mark notification %s read: %w", notificationID, biddingerrors.ErrNotificationNotFound)
}

// CreateComment stores a comment
func (r *MemoryRepo) CreateComment(ctx context.Context, comment model.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments[comment.ID] = comment
	return nil
}

// GetComment returns a comment by id
func (r *MemoryRepo) GetComment(ctx context.Context, commentID string) (model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return model.Comment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[commentID]
	if !ok {
		return model.Comment{}, fmt.Errorf("get comment %s: %w", commentID, biddingerrors.ErrCommentNotFound)
	}
	return c, nil
}

// GetCommentsByListing returns a listing's comments, oldest first
func (r *MemoryRepo) GetCommentsByListing(ctx context.Context, vehicleID string) ([]model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := []model.Comment{}
	for _, c := range r.comments {
		if c.VehicleID == vehicleID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// DeleteComment removes a comment
func (r *MemoryRepo) DeleteComment(ctx context.Context, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[commentID]; !ok {
		return fmt.Errorf("delete comment %s: %w", commentID, biddingerrors.ErrCommentNotFound)
	}
	delete(r.comments, commentID)
	return nil
}
