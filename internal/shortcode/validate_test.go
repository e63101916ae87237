package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shortly/internal/entity"
)

func TestValidateResolveCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{name: "simple alphanumeric", code: "abc123", valid: true},
		{name: "hyphen and underscore", code: "a-b_c", valid: true},
		{name: "max length", code: strings.Repeat("a", 20), valid: true},
		{name: "empty", code: "", valid: false},
		{name: "too long", code: strings.Repeat("a", 21), valid: false},
		{name: "path traversal", code: "../etc/passwd", valid: false},
		{name: "bare dots", code: "..", valid: false},
		{name: "encoded slash", code: "a%2Fb", valid: false},
		{name: "encoded backslash", code: "a%5cb", valid: false},
		{name: "null byte", code: "abc\x00", valid: false},
		{name: "angle bracket", code: "<script", valid: false},
		{name: "quote", code: "a'b", valid: false},
		{name: "double quote", code: `a"b`, valid: false},
		{name: "ampersand", code: "a&b", valid: false},
		{name: "slash", code: "a/b", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResolveCode(tt.code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, entity.ErrInvalidCode)
			}
		})
	}
}

func TestValidateCustomCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{name: "valid", code: "mycode", valid: true},
		{name: "minimum length", code: "abcd", valid: true},
		{name: "too short", code: "abc", valid: false},
		{name: "too long", code: strings.Repeat("x", 21), valid: false},
		{name: "hyphen not allowed on creation", code: "my-code", valid: false},
		{name: "reserved api", code: "api", valid: false},
		{name: "reserved health any case", code: "Health", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomCode(tt.code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, entity.ErrInvalidCode)
			}
		})
	}
}
