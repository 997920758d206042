package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
)

func (r *PostgresRepo) UpsertWatch(ctx context.Context, watch model.Watch) (model.Watch, error) {
	err := r.db.NewInsert().
		Model(&watch).
		On("CONFLICT (user_id, vehicle_id) DO UPDATE").
		Set("notify_on_sale = EXCLUDED.notify_on_sale").
		Set("notify_on_bid = EXCLUDED.notify_on_bid").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return model.Watch{}, fmt.Errorf("upsert watch %s/%s: %w", watch.UserID, watch.VehicleID, mapPgError(err))
	}
	return watch, nil
}

func (r *PostgresRepo) DeleteWatch(ctx context.Context, userID, vehicleID string) error {
	_, err := r.db.NewDelete().
		Model((*model.Watch)(nil)).
		Where("user_id = ?", userID).
		Where("vehicle_id = ?", vehicleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete watch %s/%s: %w", userID, vehicleID, mapPgError(err))
	}
	return nil
}

func (r *PostgresRepo) GetWatchers(ctx context.Context, vehicleID string) ([]model.Watch, error) {
	watchers := []model.Watch{}
	err := r.db.NewSelect().
		Model(&watchers).
		Where("w.vehicle_id = ?", vehicleID).
		Order("w.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get watchers for listing %s: %w", vehicleID, mapPgError(err))
	}
	return watchers, nil
}

func (r *PostgresRepo) GetWatchesByUser(ctx context.Context, userID string) ([]model.Watch, error) {
	var watches []model.Watch
	err := r.db.NewSelect().
		Model(&watches).
		Where("w.user_id = ?", userID).
		Order("w.vehicle_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get watches for user %s: %w", userID, mapPgError(err))
	}
	return watches, nil
}

// CreateNotification relies on the unique dedup_key column; rows without a key never conflict
func (r *PostgresRepo) CreateNotification(ctx context.Context, n model.Notification) (bool, error) {
	res, err := r.db.NewInsert().
		Model(&n).
		On("CONFLICT (dedup_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("create notification for user %s: %w", n.UserID, mapPgError(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create notification for user %s: %w", n.UserID, err)
	}
	return rows > 0, nil
}

func (r *PostgresRepo) GetNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	notifications := []model.Notification{}
	q := r.db.NewSelect().
		Model(&notifications).
		Where("n.user_id = ?", userID).
		Order("n.created_at DESC")
	if unreadOnly {
		q = q.Where("n.is_read = FALSE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("get notifications for user %s: %w", userID, mapPgError(err))
	}
	return notifications, nil
}

func (r *PostgresRepo) MarkNotificationRead(ctx context.Context, userID, notificationID string) (model.Notification, error) {
	var n model.Notification
	err := r.db.NewUpdate().
		Model(&n).
		Set("is_read = TRUE").
		Where("id = ?", notificationID).
		Where("user_id = ?", userID).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, fmt.Errorf("mark notification %s read: %w", notificationID, biddingerrors.ErrNotificationNotFound)
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("mark notification %s read: %w", notificationID, mapPgError(err))
	}
	return n, nil
}

func (r *PostgresRepo) CreateComment(ctx context.Context, comment model.Comment) error {
	if _, err := r.db.NewInsert().Model(&comment).Exec(ctx); err != nil {
		return fmt.Errorf("create comment on listing %s: %w", comment.VehicleID, mapPgError(err))
	}
	return nil
}

func (r *PostgresRepo) GetComment(ctx context.Context, commentID string) (model.Comment, error) {
	var c model.Comment
	err := r.db.NewSelect().Model(&c).Where("c.id = ?", commentID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, fmt.Errorf("get comment %s: %w", commentID, biddingerrors.ErrCommentNotFound)
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("get comment %s: %w", commentID, mapPgError(err))
	}
	return c, nil
}

func (r *PostgresRepo) GetCommentsByListing(ctx context.Context, vehicleID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := r.db.NewSelect().
		Model(&comments).
		Where("c.vehicle_id = ?", vehicleID).
		Order("c.created_at ASC", "c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", vehicleID, mapPgError(err))
	}
	return comments, nil
}

func (r *PostgresRepo) DeleteComment(ctx context.Context, commentID string) error {
	res, err := r.db.NewDelete().
		Model((*model.Comment)(nil)).
		Where("id = ?", commentID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, mapPgError(err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("delete comment %s: %w", commentID, biddingerrors.ErrCommentNotFound)
	}
	return nil
}
