// Package useragent derives a coarse device class from a user-agent
// string. It is a substring heuristic, not a parser: the analytics side
// only needs desktop/mobile/tablet buckets, and anything ambiguous is
// bucketed as "other".
package useragent

import (
	"strings"

	"shortly/internal/entity"
)

// Tablet tokens are checked before mobile ones: most tablet agents also
// carry "Mobile" or "Android".
var tabletTokens = []string{"ipad", "tablet", "kindle", "silk"}

var mobileTokens = []string{"mobile", "iphone", "android", "blackberry", "windows phone", "opera mini"}

var desktopTokens = []string{"windows nt", "macintosh", "x11", "linux x86_64", "cros"}

func Classify(userAgent string) entity.DeviceClass {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return entity.DeviceOther
	}

	for _, token := range tabletTokens {
		if strings.Contains(ua, token) {
			return entity.DeviceTablet
		}
	}
	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return entity.DeviceMobile
		}
	}
	for _, token := range desktopTokens {
		if strings.Contains(ua, token) {
			return entity.DeviceDesktop
		}
	}
	return entity.DeviceOther
}
