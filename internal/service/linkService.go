package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shortly/internal/database"
	"shortly/internal/entity"
	"shortly/internal/shortcode"
)

type LinkServiceConfig struct {
	BaseURL string
	// MaxAttempts bounds the generate-and-check loop for a single
	// shorten request; BulkMaxAttempts bounds it per item on the batch
	// path, trading collision tolerance for bounded worst-case latency.
	MaxAttempts     int
	BulkMaxAttempts int
}

type LinkServiceImpl struct {
	linkRepo  database.LinkRepository
	cacheRepo database.CacheRepository
	recorder  *ClickRecorder
	config    LinkServiceConfig
}

func NewLinkService(linkRepo database.LinkRepository, cacheRepo database.CacheRepository, recorder *ClickRecorder, config LinkServiceConfig) LinkService {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	if config.BulkMaxAttempts <= 0 {
		config.BulkMaxAttempts = 5
	}
	return &LinkServiceImpl{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		recorder:  recorder,
		config:    config,
	}
}

// normalizeURL prepends https:// when the caller omitted a scheme and
// rejects anything that is not an absolute http(s) URL.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", entity.ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", entity.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", entity.ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", entity.ErrInvalidURL
	}
	return u.String(), nil
}

func validateFields(req *entity.ShortenRequest) error {
	if len(req.Title) > entity.MaxTitleLength {
		return fmt.Errorf("%w: title", entity.ErrFieldTooLong)
	}
	if len(req.Description) > entity.MaxDescriptionLength {
		return fmt.Errorf("%w: description", entity.ErrFieldTooLong)
	}
	return nil
}

func (s *LinkServiceImpl) Shorten(ctx context.Context, req *entity.ShortenRequest) (*entity.ShortenResponse, error) {
	return s.shorten(ctx, req, s.config.MaxAttempts)
}

func (s *LinkServiceImpl) shorten(ctx context.Context, req *entity.ShortenRequest, maxAttempts int) (*entity.ShortenResponse, error) {
	normalized, err := normalizeURL(req.URL)
	if err != nil {
		return nil, err
	}
	if err := validateFields(req); err != nil {
		return nil, err
	}

	alg, ok := shortcode.ParseAlgorithm(req.Algorithm)
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q", entity.ErrInvalidCode, req.Algorithm)
	}

	now := time.Now()
	link := &entity.Link{
		ID:          uuid.New().String(),
		OriginalURL: normalized,
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.CustomCode != "" {
		if err := shortcode.ValidateCustomCode(req.CustomCode); err != nil {
			return nil, err
		}
		link.ShortCode = req.CustomCode
		if err := s.linkRepo.Insert(ctx, link); err != nil {
			// A taken custom code is the caller's problem, not a retry.
			return nil, err
		}
	} else if err := s.insertWithGeneratedCode(ctx, link, alg, req.CustomOptions, maxAttempts); err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetLink(ctx, link.ShortCode, link); err != nil {
			logrus.Warnf("Failed to cache link %s: %v", link.ShortCode, err)
		}
	}

	return &entity.ShortenResponse{
		Link:     link,
		ShortURL: s.config.BaseURL + "/" + link.ShortCode,
	}, nil
}

// insertWithGeneratedCode is the uniqueness loop: generate a candidate,
// check it against the store, insert. The exists check is advisory only;
// a concurrent creator can still win between check and insert, in which
// case the store's unique constraint reports ErrCodeTaken and the loop
// spends another attempt.
func (s *LinkServiceImpl) insertWithGeneratedCode(ctx context.Context, link *entity.Link, alg shortcode.Algorithm, opts *entity.CustomOptions, maxAttempts int) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		code, err := shortcode.Generate(alg, link.OriginalURL, opts)
		if err != nil {
			return fmt.Errorf("code generation failed: %w", err)
		}

		exists, err := s.linkRepo.Exists(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			logrus.Debugf("Short code %q already exists, retrying (%d/%d)", code, attempt, maxAttempts)
			continue
		}

		link.ShortCode = code
		err = s.linkRepo.Insert(ctx, link)
		if err == nil {
			return nil
		}
		if errors.Is(err, entity.ErrCodeTaken) {
			logrus.Debugf("Lost insert race on code %q, retrying (%d/%d)", code, attempt, maxAttempts)
			continue
		}
		return err
	}
	return entity.ErrGenerationExhausted
}

func (s *LinkServiceImpl) ShortenBatch(ctx context.Context, urls []string) []entity.BatchShortenItem {
	results := make([]entity.BatchShortenItem, 0, len(urls))
	for _, raw := range urls {
		item := entity.BatchShortenItem{URL: raw}
		resp, err := s.shorten(ctx, &entity.ShortenRequest{URL: raw}, s.config.BulkMaxAttempts)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.ShortURL = resp.ShortURL
			item.Code = resp.Link.ShortCode
		}
		results = append(results, item)
	}
	return results
}

func (s *LinkServiceImpl) Redirect(ctx context.Context, code string, meta entity.ClickMeta) (string, error) {
	// Syntactic rejection happens before any storage access; abuse
	// attempts are logged with the source for monitoring.
	if err := shortcode.ValidateResolveCode(code); err != nil {
		logrus.Warnf("Rejected malformed short code %q from %s", code, meta.SourceIP)
		return "", err
	}

	link, err := s.lookup(ctx, code)
	if err != nil {
		return "", err
	}

	// Existence is settled above; activity and expiry both derive from
	// the same fetched record, so a single read decides the outcome.
	if !link.IsActive {
		return "", entity.ErrLinkGone
	}
	if link.Expired(time.Now()) {
		return "", entity.ErrLinkExpired
	}

	// The redirect decision is final here. Recording the click and
	// bumping popularity are best-effort side effects.
	s.recorder.Record(link.ID, meta)
	if s.cacheRepo != nil {
		if err := s.cacheRepo.IncrementPopularity(ctx, code); err != nil {
			logrus.Debugf("Failed to bump popularity for %s: %v", code, err)
		}
	}

	return link.OriginalURL, nil
}

func (s *LinkServiceImpl) lookup(ctx context.Context, code string) (*entity.Link, error) {
	if s.cacheRepo != nil {
		if link, err := s.cacheRepo.GetLink(ctx, code); err == nil {
			return link, nil
		}
	}

	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetLink(ctx, code, link); err != nil {
			logrus.Debugf("Failed to cache link %s: %v", code, err)
		}
	}
	return link, nil
}

func (s *LinkServiceImpl) GetLink(ctx context.Context, id string) (*entity.Link, error) {
	return s.linkRepo.GetByID(ctx, id)
}

func (s *LinkServiceImpl) UpdateLink(ctx context.Context, id string, patch *entity.LinkPatch) (*entity.Link, error) {
	if patch.OriginalURL != nil {
		normalized, err := normalizeURL(*patch.OriginalURL)
		if err != nil {
			return nil, err
		}
		patch.OriginalURL = &normalized
	}
	if patch.Title != nil && len(*patch.Title) > entity.MaxTitleLength {
		return nil, fmt.Errorf("%w: title", entity.ErrFieldTooLong)
	}
	if patch.Description != nil && len(*patch.Description) > entity.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description", entity.ErrFieldTooLong)
	}

	link, err := s.linkRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	// The cached record is stale for every mutable field, and a
	// deactivated link must stop resolving immediately.
	if s.cacheRepo != nil {
		if err := s.cacheRepo.DeleteLink(ctx, link.ShortCode); err != nil {
			logrus.Warnf("Failed to evict cached link %s: %v", link.ShortCode, err)
		}
	}
	return link, nil
}

func (s *LinkServiceImpl) DeleteLink(ctx context.Context, id string) error {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.linkRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return entity.ErrLinkNotFound
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.DeleteLink(ctx, link.ShortCode); err != nil {
			logrus.Warnf("Failed to evict cached link %s: %v", link.ShortCode, err)
		}
	}
	return nil
}

func (s *LinkServiceImpl) PopularCodes(ctx context.Context, count int) ([]string, error) {
	if s.cacheRepo == nil {
		return nil, nil
	}
	return s.cacheRepo.PopularCodes(ctx, count)
}
