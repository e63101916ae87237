package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"shortly/internal/database"
	"shortly/internal/entity"
)

type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) database.LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return exists, nil
}

func (r *LinkRepository) Insert(ctx context.Context, link *entity.Link) error {
	query := `INSERT INTO links
		(id, original_url, short_code, owner_id, title, description, is_active, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.OriginalURL, link.ShortCode, link.OwnerID,
		link.Title, link.Description, link.IsActive, link.ExpiresAt,
		link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		// 23505 = unique_violation: a concurrent creator won the race on
		// this code. The generation loop treats it as "try again".
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrCodeTaken
		}
		return fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return nil
}

const linkColumns = `id, original_url, short_code, owner_id, title, description, is_active, expires_at, created_at, updated_at, clicks`

func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*entity.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`
	return r.scanLink(r.db.QueryRowContext(ctx, query, code))
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*entity.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return r.scanLink(r.db.QueryRowContext(ctx, query, id))
}

func (r *LinkRepository) scanLink(row *sql.Row) (*entity.Link, error) {
	var link entity.Link
	err := row.Scan(
		&link.ID, &link.OriginalURL, &link.ShortCode, &link.OwnerID,
		&link.Title, &link.Description, &link.IsActive, &link.ExpiresAt,
		&link.CreatedAt, &link.UpdatedAt, &link.Clicks,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLinkNotFound
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return &link, nil
}

func (r *LinkRepository) Update(ctx context.Context, id string, patch *entity.LinkPatch) (*entity.Link, error) {
	query := `UPDATE links SET
			original_url = COALESCE($2, original_url),
			title        = COALESCE($3, title),
			description  = COALESCE($4, description),
			expires_at   = COALESCE($5, expires_at),
			is_active    = COALESCE($6, is_active),
			updated_at   = now()
		WHERE id = $1
		RETURNING ` + linkColumns
	row := r.db.QueryRowContext(ctx, query, id,
		patch.OriginalURL, patch.Title, patch.Description, patch.ExpiresAt, patch.IsActive)
	return r.scanLink(row)
}

func (r *LinkRepository) Delete(ctx context.Context, id string) (bool, error) {
	// Clicks are removed by the ON DELETE CASCADE on clicks.link_id.
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return affected > 0, nil
}

func (r *LinkRepository) IncrementClicks(ctx context.Context, linkID string, n int64) error {
	query := `UPDATE links SET clicks = clicks + $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, linkID, n); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	return nil
}
