// Package memory implements the repositories on top of mutex-guarded maps.
// It backs local development and the test suite; insert-if-absent happens
// under the store lock, which gives it the same uniqueness guarantee a
// database constraint provides.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shortly/internal/database"
	"shortly/internal/entity"
)

type LinkRepository struct {
	mu      sync.RWMutex
	byCode  map[string]*entity.Link
	byID    map[string]*entity.Link
	clickMu sync.RWMutex
	clicks  map[string][]entity.Click
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		byCode: make(map[string]*entity.Link),
		byID:   make(map[string]*entity.Link),
		clicks: make(map[string][]entity.Click),
	}
}

var _ database.LinkRepository = (*LinkRepository)(nil)

func (r *LinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *LinkRepository) Insert(ctx context.Context, link *entity.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[link.ShortCode]; ok {
		return entity.ErrCodeTaken
	}
	cp := *link
	r.byCode[cp.ShortCode] = &cp
	r.byID[cp.ID] = &cp
	return nil
}

func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*entity.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.byCode[code]
	if !ok {
		return nil, entity.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*entity.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *LinkRepository) Update(ctx context.Context, id string, patch *entity.LinkPatch) (*entity.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrLinkNotFound
	}
	if patch.OriginalURL != nil {
		link.OriginalURL = *patch.OriginalURL
	}
	if patch.Title != nil {
		link.Title = *patch.Title
	}
	if patch.Description != nil {
		link.Description = *patch.Description
	}
	if patch.ExpiresAt != nil {
		t := *patch.ExpiresAt
		link.ExpiresAt = &t
	}
	if patch.IsActive != nil {
		link.IsActive = *patch.IsActive
	}
	link.UpdatedAt = time.Now()
	cp := *link
	return &cp, nil
}

func (r *LinkRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	link, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byCode, link.ShortCode)
	r.mu.Unlock()

	// Cascade: clicks never outlive their link.
	r.clickMu.Lock()
	delete(r.clicks, id)
	r.clickMu.Unlock()
	return true, nil
}

func (r *LinkRepository) IncrementClicks(ctx context.Context, linkID string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if link, ok := r.byID[linkID]; ok {
		link.Clicks += n
	}
	return nil
}

// ClickRepository shares the link store so analytics and cascade deletion
// see one consistent view.
type ClickRepository struct {
	links *LinkRepository
}

func NewClickRepository(links *LinkRepository) *ClickRepository {
	return &ClickRepository{links: links}
}

var _ database.ClickRepository = (*ClickRepository)(nil)

func (r *ClickRepository) InsertBatch(ctx context.Context, clicks []entity.Click) error {
	r.links.clickMu.Lock()
	defer r.links.clickMu.Unlock()
	for _, c := range clicks {
		r.links.clicks[c.LinkID] = append(r.links.clicks[c.LinkID], c)
	}
	return nil
}

func (r *ClickRepository) Analytics(ctx context.Context, linkID string) (*entity.Analytics, error) {
	link, err := r.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	r.links.clickMu.RLock()
	clicks := r.links.clicks[linkID]
	r.links.clickMu.RUnlock()

	analytics := &entity.Analytics{
		ShortCode:   link.ShortCode,
		TotalClicks: link.Clicks,
	}

	daily := make(map[string]int64)
	referrers := make(map[string]int64)
	for _, c := range clicks {
		daily[c.OccurredAt.Format("2006-01-02")]++
		if c.Referrer != "" {
			referrers[c.Referrer]++
		}
		switch c.DeviceClass {
		case entity.DeviceDesktop:
			analytics.Devices.Desktop++
		case entity.DeviceMobile:
			analytics.Devices.Mobile++
		case entity.DeviceTablet:
			analytics.Devices.Tablet++
		default:
			analytics.Devices.Other++
		}
	}

	for date, count := range daily {
		analytics.DailyStats = append(analytics.DailyStats, entity.DailyStat{Date: date, Clicks: count})
	}
	sort.Slice(analytics.DailyStats, func(i, j int) bool {
		return analytics.DailyStats[i].Date > analytics.DailyStats[j].Date
	})

	for ref, count := range referrers {
		analytics.Referrers = append(analytics.Referrers, entity.ReferrerStat{Referrer: ref, Clicks: count})
	}
	sort.Slice(analytics.Referrers, func(i, j int) bool {
		return analytics.Referrers[i].Clicks > analytics.Referrers[j].Clicks
	})

	return analytics, nil
}
