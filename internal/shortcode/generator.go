package shortcode

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortly/internal/entity"
)

// Algorithm selects a code generation strategy.
type Algorithm int

const (
	AlgorithmHash Algorithm = iota
	AlgorithmUUID
	AlgorithmCustom
)

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// SimilarChars are visually ambiguous characters removed by the custom
// strategy when exclude_similar is set.
const SimilarChars = "0Oo1lI"

const (
	HashCodeLength    = 6
	UUIDCodeLength    = 8
	DefaultCodeLength = 7
	MinCustomLength   = 4
	MaxCustomLength   = 12
)

// ParseAlgorithm maps the request-level algorithm name to its strategy.
// Empty input defaults to the hash strategy.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hash":
		return AlgorithmHash, true
	case "uuid":
		return AlgorithmUUID, true
	case "custom":
		return AlgorithmCustom, true
	default:
		return AlgorithmHash, false
	}
}

// Generate produces one candidate code. It never touches storage and
// never guarantees uniqueness; callers enforce that against the store.
func Generate(alg Algorithm, originalURL string, opts *entity.CustomOptions) (string, error) {
	switch alg {
	case AlgorithmUUID:
		return generateUUID(), nil
	case AlgorithmCustom:
		return generateCustom(opts)
	default:
		return generateHash(originalURL)
	}
}

// generateHash digests the URL together with the current timestamp and a
// random salt, so repeated calls for the same URL yield different
// candidates. Uniqueness comes from the retry loop, not the digest.
func generateHash(originalURL string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(originalURL))
	h.Write([]byte(time.Now().Format(time.RFC3339Nano)))
	h.Write(salt)
	digest := h.Sum(nil)

	code := make([]byte, HashCodeLength)
	for i := 0; i < HashCodeLength; i++ {
		code[i] = base62Chars[int(digest[i])%len(base62Chars)]
	}
	return string(code), nil
}

func generateUUID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:UUIDCodeLength]
}

func generateCustom(opts *entity.CustomOptions) (string, error) {
	alphabet := buildAlphabet(opts)
	length := DefaultCodeLength
	if opts != nil && opts.Length != 0 {
		length = opts.Length
		if length < MinCustomLength {
			length = MinCustomLength
		}
		if length > MaxCustomLength {
			length = MaxCustomLength
		}
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

func buildAlphabet(opts *entity.CustomOptions) string {
	const (
		digits    = "0123456789"
		uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		lowercase = "abcdefghijklmnopqrstuvwxyz"
	)

	var b strings.Builder
	if opts == nil || (!opts.Digits && !opts.Uppercase && !opts.Lowercase) {
		b.WriteString(digits)
		b.WriteString(uppercase)
		b.WriteString(lowercase)
	} else {
		if opts.Digits {
			b.WriteString(digits)
		}
		if opts.Uppercase {
			b.WriteString(uppercase)
		}
		if opts.Lowercase {
			b.WriteString(lowercase)
		}
	}

	alphabet := b.String()
	if opts != nil && opts.ExcludeSimilar {
		alphabet = strings.Map(func(r rune) rune {
			if strings.ContainsRune(SimilarChars, r) {
				return -1
			}
			return r
		}, alphabet)
	}
	return alphabet
}
