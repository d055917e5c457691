// Package location persists one location record per Telegram user.
package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"weatherbot/core/logger"
	"log/slog"
)

// ErrNotFound is returned when a user has no stored location yet.
var ErrNotFound = errors.New("location: not found")

// Record is the persisted location of one user. Records are overwritten on
// update and never deleted.
type Record struct {
	UserID int64   `db:"id"`
	Lat    float64 `db:"lat"`
	Lon    float64 `db:"lon"`
	Label  string  `db:"loc"`
}

// Store reads and upserts location records. It holds the shared database
// handle constructed once at bootstrap; it never opens connections itself.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps the shared database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts or overwrites the location record for rec.UserID.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	start := time.Now()
	const q = `
		INSERT INTO location (id, lat, lon, loc)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET lat = EXCLUDED.lat, lon = EXCLUDED.lon, loc = EXCLUDED.loc`
	if _, err := s.db.ExecContext(ctx, q, rec.UserID, rec.Lat, rec.Lon, rec.Label); err != nil {
		logger.Error(ctx, "service.locations", "upsert.fail",
			slog.String("status", "fail"),
			slog.Int64("user_id", rec.UserID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("location upsert: %w", err)
	}
	logger.Debug(ctx, "service.locations", "upsert.done",
		slog.String("status", "ok"),
		slog.Int64("user_id", rec.UserID),
		slog.Float64("lat", rec.Lat),
		slog.Float64("lon", rec.Lon),
		slog.String("place", logger.SanitizeLimit(rec.Label, 128)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// LocationByUserID returns the stored record for a user, or ErrNotFound.
func (s *Store) LocationByUserID(ctx context.Context, userID int64) (Record, error) {
	var rec Record
	const q = `SELECT id, lat, lon, loc FROM location WHERE id = $1`
	err := s.db.GetContext(ctx, &rec, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "service.locations", "read.fail",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Record{}, fmt.Errorf("location read: %w", err)
	}
	return rec, nil
}
