package shortcode

import (
	"strings"

	"shortly/internal/entity"
)

// reserved route prefixes that can never be link codes.
var reservedCodes = map[string]struct{}{
	"api":     {},
	"health":  {},
	"static":  {},
	"favicon": {},
}

// ValidateResolveCode checks an inbound code before any storage lookup.
// Length is bounded, the charset is limited to letters, digits, hyphen
// and underscore, and traversal or markup sequences are rejected outright.
func ValidateResolveCode(code string) error {
	if code == "" || len(code) > entity.MaxCodeLength {
		return entity.ErrInvalidCode
	}
	if strings.Contains(code, "..") {
		return entity.ErrInvalidCode
	}
	lower := strings.ToLower(code)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%5c") {
		return entity.ErrInvalidCode
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return entity.ErrInvalidCode
		}
	}
	return nil
}

// ValidateCustomCode checks a caller-supplied code on the creation path.
// Stricter than resolution: alphanumeric only, 4-20 chars, and reserved
// route prefixes are refused.
func ValidateCustomCode(code string) error {
	if len(code) < 4 || len(code) > entity.MaxCodeLength {
		return entity.ErrInvalidCode
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return entity.ErrInvalidCode
		}
	}
	if _, ok := reservedCodes[strings.ToLower(code)]; ok {
		return entity.ErrInvalidCode
	}
	return nil
}
