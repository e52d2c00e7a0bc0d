package utils

import (
	"errors"
	"strings"
)

// Normalizer rejections. Callers map these to a 400.
var (
	ErrEmptyURL   = errors.New("error.url_required")
	ErrUnsafeURL  = errors.New("error.url_unsafe_scheme")
	ErrURLTooLong = errors.New("error.url_max_length")
)

// MaxURLLength matches the links.long_url column width.
const MaxURLLength = 2048

// unsafeSchemes are redirect targets that would execute in the visitor's
// browser context or read local files. Checked case-insensitively.
var unsafeSchemes = []string{"javascript:", "data:", "file:"}

// NormalizeURL canonicalizes a user-supplied URL before it may be stored.
// It trims surrounding whitespace, rejects empty and unsafe inputs, and
// prepends https:// when no http(s) scheme is present. Apart from the trim
// and the scheme prefix the original content is preserved, including case.
// Pure function, no side effects.
func NormalizeURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", ErrEmptyURL
	}

	lower := strings.ToLower(url)
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", ErrUnsafeURL
		}
	}

	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		url = "https://" + url
	}

	if len(url) > MaxURLLength {
		return "", ErrURLTooLong
	}

	return url, nil
}
