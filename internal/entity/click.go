package entity

import "time"

// DeviceClass is a coarse category derived from the user-agent string.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceOther   DeviceClass = "other"
)

type Click struct {
	ID          string      `json:"id"`
	LinkID      string      `json:"link_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	SourceIP    string      `json:"source_ip,omitempty"`
	UserAgent   string      `json:"user_agent,omitempty"`
	Referrer    string      `json:"referrer,omitempty"`
	DeviceClass DeviceClass `json:"device_class"`
}

// ClickMeta is the request metadata captured at resolution time,
// before enrichment.
type ClickMeta struct {
	SourceIP  string
	UserAgent string
	Referrer  string
}

type Analytics struct {
	ShortCode   string         `json:"short_code"`
	TotalClicks int64          `json:"total_clicks"`
	DailyStats  []DailyStat    `json:"daily_stats"`
	Devices     DeviceStats    `json:"devices"`
	Referrers   []ReferrerStat `json:"top_referrers"`
}

type DailyStat struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type DeviceStats struct {
	Desktop int64 `json:"desktop"`
	Mobile  int64 `json:"mobile"`
	Tablet  int64 `json:"tablet"`
	Other   int64 `json:"other"`
}

type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Clicks   int64  `json:"clicks"`
}
