package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shortly/internal/database"
	"shortly/internal/entity"
)

type ClickRepository struct {
	db *sql.DB
}

func NewClickRepository(db *sql.DB) database.ClickRepository {
	return &ClickRepository{db: db}
}

func (r *ClickRepository) InsertBatch(ctx context.Context, clicks []entity.Click) error {
	if len(clicks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO clicks (id, link_id, occurred_at, source_ip, user_agent, referrer, device_class)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, c := range clicks {
		if _, err := tx.ExecContext(ctx, query,
			c.ID, c.LinkID, c.OccurredAt, c.SourceIP, c.UserAgent, c.Referrer, c.DeviceClass); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return nil
}

func (r *ClickRepository) Analytics(ctx context.Context, linkID string) (*entity.Analytics, error) {
	var link entity.Link
	err := r.db.QueryRowContext(ctx,
		`SELECT short_code, clicks FROM links WHERE id = $1`, linkID).
		Scan(&link.ShortCode, &link.Clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLinkNotFound
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	analytics := &entity.Analytics{
		ShortCode:   link.ShortCode,
		TotalClicks: link.Clicks,
	}

	// to_char keeps the scanned date a plain YYYY-MM-DD string; a bare
	// DATE() comes back through the driver as a timestamp.
	dailyQuery := `
		SELECT to_char(occurred_at, 'YYYY-MM-DD') AS date, COUNT(*) AS clicks
		FROM clicks
		WHERE link_id = $1
		GROUP BY to_char(occurred_at, 'YYYY-MM-DD')
		ORDER BY date DESC
		LIMIT 30
	`
	rows, err := r.db.QueryContext(ctx, dailyQuery, linkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat entity.DailyStat
		if err := rows.Scan(&stat.Date, &stat.Clicks); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
		analytics.DailyStats = append(analytics.DailyStats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	deviceQuery := `
		SELECT device_class, COUNT(*) AS clicks
		FROM clicks
		WHERE link_id = $1
		GROUP BY device_class
	`
	deviceRows, err := r.db.QueryContext(ctx, deviceQuery, linkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer deviceRows.Close()

	for deviceRows.Next() {
		var class string
		var count int64
		if err := deviceRows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
		switch entity.DeviceClass(class) {
		case entity.DeviceDesktop:
			analytics.Devices.Desktop = count
		case entity.DeviceMobile:
			analytics.Devices.Mobile = count
		case entity.DeviceTablet:
			analytics.Devices.Tablet = count
		default:
			analytics.Devices.Other += count
		}
	}
	if err := deviceRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	referrerQuery := `
		SELECT referrer, COUNT(*) AS clicks
		FROM clicks
		WHERE link_id = $1 AND referrer <> ''
		GROUP BY referrer
		ORDER BY clicks DESC
		LIMIT 10
	`
	refRows, err := r.db.QueryContext(ctx, referrerQuery, linkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer refRows.Close()

	for refRows.Next() {
		var stat entity.ReferrerStat
		if err := refRows.Scan(&stat.Referrer, &stat.Clicks); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
		analytics.Referrers = append(analytics.Referrers, stat)
	}
	if err := refRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return analytics, nil
}
