package service

import (
	"context"

	"shortly/internal/database"
	"shortly/internal/entity"
)

type AnalyticsServiceImpl struct {
	linkRepo  database.LinkRepository
	clickRepo database.ClickRepository
}

func NewAnalyticsService(linkRepo database.LinkRepository, clickRepo database.ClickRepository) AnalyticsService {
	return &AnalyticsServiceImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
	}
}

func (s *AnalyticsServiceImpl) AnalyticsByID(ctx context.Context, linkID string) (*entity.Analytics, error) {
	return s.clickRepo.Analytics(ctx, linkID)
}

func (s *AnalyticsServiceImpl) AnalyticsByCode(ctx context.Context, code string) (*entity.Analytics, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Analytics(ctx, link.ID)
}
