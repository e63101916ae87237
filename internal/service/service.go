package service

import (
	"context"

	"shortly/internal/entity"
)

type LinkService interface {
	Shorten(ctx context.Context, req *entity.ShortenRequest) (*entity.ShortenResponse, error)
	ShortenBatch(ctx context.Context, urls []string) []entity.BatchShortenItem
	// Redirect resolves a short code to its target URL and, on success,
	// hands the click metadata to the recorder without waiting on it.
	Redirect(ctx context.Context, code string, meta entity.ClickMeta) (string, error)
	GetLink(ctx context.Context, id string) (*entity.Link, error)
	UpdateLink(ctx context.Context, id string, patch *entity.LinkPatch) (*entity.Link, error)
	DeleteLink(ctx context.Context, id string) error
	PopularCodes(ctx context.Context, count int) ([]string, error)
}

type AnalyticsService interface {
	AnalyticsByID(ctx context.Context, linkID string) (*entity.Analytics, error)
	AnalyticsByCode(ctx context.Context, code string) (*entity.Analytics, error)
}
