package entity

import "time"

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxCodeLength        = 20
)

type Link struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	OwnerID     string     `json:"owner_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Clicks      int64      `json:"clicks"`
}

// Expired reports whether the link has an expiry in the past.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// LinkPatch carries the mutable fields of a link. Nil means "leave as is".
// ShortCode is immutable after creation and intentionally absent here.
type LinkPatch struct {
	OriginalURL *string    `json:"original_url,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type ShortenRequest struct {
	URL           string         `json:"url" binding:"required"`
	CustomCode    string         `json:"custom_code,omitempty"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	OwnerID       string         `json:"owner_id,omitempty"`
	Algorithm     string         `json:"algorithm,omitempty"`
	CustomOptions *CustomOptions `json:"custom_options,omitempty"`
}

// CustomOptions tunes the "custom" generation algorithm.
type CustomOptions struct {
	Digits         bool `json:"digits"`
	Uppercase      bool `json:"uppercase"`
	Lowercase      bool `json:"lowercase"`
	ExcludeSimilar bool `json:"exclude_similar"`
	Length         int  `json:"length"`
}

type ShortenResponse struct {
	Link     *Link  `json:"link"`
	ShortURL string `json:"short_url"`
}

type BatchShortenRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type BatchShortenItem struct {
	URL      string `json:"url"`
	ShortURL string `json:"short_url,omitempty"`
	Code     string `json:"short_code,omitempty"`
	Error    string `json:"error,omitempty"`
}
