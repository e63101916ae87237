package database

import (
	"context"

	"shortly/internal/entity"
)

// LinkRepository is the storage contract the core is written against.
// Insert must enforce uniqueness of short_code itself and return
// entity.ErrCodeTaken on a violation; the pre-insert Exists check in the
// service is only an optimization and loses races.
type LinkRepository interface {
	Exists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, link *entity.Link) error
	GetByCode(ctx context.Context, code string) (*entity.Link, error)
	GetByID(ctx context.Context, id string) (*entity.Link, error)
	Update(ctx context.Context, id string, patch *entity.LinkPatch) (*entity.Link, error)
	// Delete removes the link and cascades deletion of its clicks.
	Delete(ctx context.Context, id string) (bool, error)
	IncrementClicks(ctx context.Context, linkID string, n int64) error
}

type ClickRepository interface {
	InsertBatch(ctx context.Context, clicks []entity.Click) error
	Analytics(ctx context.Context, linkID string) (*entity.Analytics, error)
}

// CacheRepository is the read-through cache in front of LinkRepository.
// All methods are best-effort; a cache failure must never fail a request.
type CacheRepository interface {
	SetLink(ctx context.Context, code string, link *entity.Link) error
	GetLink(ctx context.Context, code string) (*entity.Link, error)
	DeleteLink(ctx context.Context, code string) error
	IncrementPopularity(ctx context.Context, code string) error
	PopularCodes(ctx context.Context, count int) ([]string, error)
}
