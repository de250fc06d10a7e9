package detect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"callwatch/internal/call"
)

// appleEpoch is the reference date of the delivered_date column in the
// macOS NotificationCenter database (seconds since 2001-01-01 UTC).
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// NotificationSource reads recent notifications for one application bundle
// straight from the NotificationCenter SQLite database.
type NotificationSource struct {
	db       *sql.DB
	bundleID string
	window   time.Duration
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewNotificationSource(dbPath, bundleID string, window, timeout time.Duration, loc *time.Location, now func() time.Time) (*NotificationSource, error) {
	// sqlite URI filenames tolerate spaces, so the path is passed through.
	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open notification db: %w", err)
	}
	return &NotificationSource{
		db:       db,
		bundleID: bundleID,
		window:   window,
		timeout:  timeout,
		loc:      loc,
		now:      now,
	}, nil
}

func (s *NotificationSource) Name() string { return "notification-store" }

func (s *NotificationSource) Close() error { return s.db.Close() }

// Detect queries notifications delivered within the trailing window. The
// payload blob is handed to the normalizer as-is for pattern matching.
func (s *NotificationSource) Detect(ctx context.Context) ([]Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cutoff := s.now().Add(-s.window).Sub(appleEpoch).Seconds()
	rows, err := s.db.QueryContext(ctx,
		`SELECT delivered_date, data FROM record WHERE bundleid = ? AND delivered_date > ? ORDER BY delivered_date DESC`,
		s.bundleID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query notification store: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var delivered float64
		var data []byte
		if err := rows.Scan(&delivered, &data); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		at := appleEpoch.Add(time.Duration(delivered * float64(time.Second))).In(s.loc)
		units = append(units, Unit{
			At:      at,
			Payload: string(data),
			Origin:  call.OriginNotification,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read notification rows: %w", err)
	}
	return units, nil
}
