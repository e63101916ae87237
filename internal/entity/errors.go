package entity

import "errors"

var (
	// ErrInvalidURL rejects malformed or non-http(s) original URLs.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidCode rejects codes that fail syntactic validation,
	// on creation (custom codes) and on the resolution path.
	ErrInvalidCode = errors.New("invalid short code")
	// ErrFieldTooLong rejects oversized title/description fields.
	ErrFieldTooLong = errors.New("field exceeds maximum length")

	// ErrCodeTaken is returned by a store insert that hit the unique
	// constraint on short_code. The generation loop consumes it; it is
	// only surfaced to callers for custom codes.
	ErrCodeTaken = errors.New("short code already exists")
	// ErrGenerationExhausted means no free code was found within the
	// configured attempt budget.
	ErrGenerationExhausted = errors.New("could not generate a unique short code")

	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkGone marks a link that exists but was deactivated.
	ErrLinkGone = errors.New("link is disabled")
	// ErrLinkExpired marks a link whose expires_at is in the past.
	ErrLinkExpired = errors.New("link has expired")

	// ErrStorage wraps I/O failures from the store, distinct from
	// not-found so callers can answer 5xx instead of 404.
	ErrStorage = errors.New("storage unavailable")
)

// ErrorCategory maps an error to the machine-readable category carried
// in error responses.
func ErrorCategory(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrInvalidCode), errors.Is(err, ErrFieldTooLong):
		return "validation_error"
	case errors.Is(err, ErrCodeTaken):
		return "code_taken"
	case errors.Is(err, ErrGenerationExhausted):
		return "generation_exhausted"
	case errors.Is(err, ErrLinkNotFound):
		return "not_found"
	case errors.Is(err, ErrLinkGone), errors.Is(err, ErrLinkExpired):
		return "gone"
	case errors.Is(err, ErrStorage):
		return "storage_unavailable"
	default:
		return "internal_error"
	}
}
