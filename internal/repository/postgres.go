package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
)

// PostgresRepo implements Store on PostgreSQL through bun
type PostgresRepo struct {
	db *bun.DB
}

// NewPostgresRepo opens a connection pool for dsn. The connection is lazy; call Ping to verify it.
func NewPostgresRepo(dsn string) *PostgresRepo {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresRepo{db: bun.NewDB(sqldb, pgdialect.New())}
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

// InitSchema creates tables and indexes when they do not exist yet
func (r *PostgresRepo) InitSchema(ctx context.Context) error {
	tables := []any{
		(*model.Listing)(nil),
		(*model.Bid)(nil),
		(*model.Watch)(nil),
		(*model.Notification)(nil),
		(*model.Comment)(nil),
	}
	for _, m := range tables {
		if _, err := r.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{(*model.Listing)(nil), "idx_listings_status_end_time", []string{"status", "auction_end_time"}},
		{(*model.Bid)(nil), "idx_bids_vehicle_id", []string{"vehicle_id", "created_at"}},
		{(*model.Bid)(nil), "idx_bids_bidder_id", []string{"bidder_id"}},
		{(*model.Watch)(nil), "idx_watches_vehicle_id", []string{"vehicle_id"}},
		{(*model.Notification)(nil), "idx_notifications_user_id", []string{"user_id", "created_at"}},
		{(*model.Comment)(nil), "idx_comments_vehicle_id", []string{"vehicle_id", "created_at"}},
	}
	for _, idx := range indexes {
		if _, err := r.db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (r *PostgresRepo) CreateListing(ctx context.Context, listing model.Listing) error {
	if _, err := r.db.NewInsert().Model(&listing).Exec(ctx); err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ID, mapPgError(err))
	}
	return nil
}

func (r *PostgresRepo) GetListing(ctx context.Context, vehicleID string) (model.Listing, error) {
	var listing model.Listing
	err := r.db.NewSelect().Model(&listing).Where("l.id = ?", vehicleID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", vehicleID, mapPgError(err))
	}
	return listing, nil
}

func (r *PostgresRepo) UpdateApproval(ctx context.Context, vehicleID string, status model.ApprovalStatus, note string, now time.Time) (model.Listing, error) {
	var listing model.Listing
	err := r.db.NewUpdate().
		Model(&listing).
		Set("approval_status = ?", status).
		Set("moderation_note = ?", note).
		Set("version = version + 1").
		Set("updated_at = ?", now).
		Where("id = ?", vehicleID).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, fmt.Errorf("update approval for listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("update approval for listing %s: %w", vehicleID, mapPgError(err))
	}
	return listing, nil
}

func (r *PostgresRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("l.status = ?", model.StatusActive).
		Where("l.auction_end_time <= ?", now).
		Order("l.auction_end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expired listings: %w", mapPgError(err))
	}
	return listings, nil
}

func (r *PostgresRepo) ListEndingBetween(ctx context.Context, from, until time.Time) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("l.status = ?", model.StatusActive).
		Where("l.auction_end_time > ?", from).
		Where("l.auction_end_time <= ?", until).
		Order("l.auction_end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings ending soon: %w", mapPgError(err))
	}
	return listings, nil
}

// FinalizeListing is a single guarded UPDATE, so concurrent sweeps cannot both apply it
func (r *PostgresRepo) FinalizeListing(ctx context.Context, vehicleID string, now time.Time, enforceReserve bool) (model.Listing, bool, error) {
	soldWhen := "bid_count > 0"
	if enforceReserve {
		soldWhen = "bid_count > 0 AND (reserve_price IS NULL OR current_bid >= reserve_price)"
	}

	var listing model.Listing
	err := r.db.NewUpdate().
		Model(&listing).
		Set("status = CASE WHEN "+soldWhen+" THEN ? ELSE ? END", model.StatusSold, model.StatusEnded).
		Set("version = version + 1").
		Set("updated_at = ?", now).
		Where("id = ?", vehicleID).
		Where("status = ?", model.StatusActive).
		Where("auction_end_time <= ?", now).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetListing(ctx, vehicleID)
		if getErr != nil {
			return model.Listing{}, false, fmt.Errorf("finalize listing: %w", getErr)
		}
		return current, false, nil
	}
	if err != nil {
		return model.Listing{}, false, fmt.Errorf("finalize listing %s: %w", vehicleID, mapPgError(err))
	}
	return listing, true, nil
}

// AdmitBid locks the listing row inside a serializable transaction. The
// listing update is additionally guarded by its version.
func (r *PostgresRepo) AdmitBid(ctx context.Context, vehicleID string, admit AdmitFunc) (model.Listing, model.Bid, error) {
	var (
		updated model.Listing
		bid     model.Bid
	)

	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx bun.Tx) error {
		var listing model.Listing
		err := tx.NewSelect().
			Model(&listing).
			Where("l.id = ?", vehicleID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return biddingerrors.ErrListingNotFound
		}
		if err != nil {
			return fmt.Errorf("lock listing: %w", err)
		}

		bid, err = admit(listing)
		if err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(&bid).Exec(ctx); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}

		err = tx.NewUpdate().
			Model(&updated).
			Set("current_bid = ?", bid.Amount).
			Set("bid_count = bid_count + 1").
			Set("high_bidder_id = ?", bid.BidderID).
			Set("version = version + 1").
			Set("updated_at = ?", bid.CreatedAt).
			Where("id = ?", vehicleID).
			Where("version = ?", listing.Version).
			Returning("*").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return biddingerrors.ErrConcurrentModification
		}
		if err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Listing{}, model.Bid{}, fmt.Errorf("admit bid for listing %s: %w", vehicleID, mapPgError(err))
	}
	return updated, bid, nil
}

func (r *PostgresRepo) GetBidsByListing(ctx context.Context, vehicleID string) ([]model.Bid, error) {
	if _, err := r.GetListing(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}

	var bids []model.Bid
	err := r.db.NewSelect().
		Model(&bids).
		Where("b.vehicle_id = ?", vehicleID).
		Order("b.created_at ASC", "b.amount ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", vehicleID, mapPgError(err))
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for listing %s: %w", vehicleID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

func (r *PostgresRepo) GetWinningBid(ctx context.Context, vehicleID string) (model.Bid, error) {
	if _, err := r.GetListing(ctx, vehicleID); err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid: %w", err)
	}

	var bid model.Bid
	err := r.db.NewSelect().
		Model(&bid).
		Where("b.vehicle_id = ?", vehicleID).
		Order("b.amount DESC", "b.created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get winning bid for listing %s: %w", vehicleID, biddingerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for listing %s: %w", vehicleID, mapPgError(err))
	}
	return bid, nil
}

func (r *PostgresRepo) GetListingsByBidder(ctx context.Context, bidderID string) ([]model.Listing, error) {
	bidOn := r.db.NewSelect().
		Model((*model.Bid)(nil)).
		Column("vehicle_id").
		Where("bidder_id = ?", bidderID)

	var listings []model.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("l.id IN (?)", bidOn).
		Order("l.auction_end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get listings for bidder %s: %w", bidderID, mapPgError(err))
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("get listings for bidder %s: %w", bidderID, biddingerrors.ErrUserNoBids)
	}
	return listings, nil
}

// mapPgError turns serialization failures and deadlocks into ErrConcurrentModification
func mapPgError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "40001", "40P01":
			return fmt.Errorf("%w: %w", biddingerrors.ErrConcurrentModification, err)
		}
	}
	return err
}
