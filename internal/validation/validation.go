package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrNameEmpty is returned when the break name is empty or whitespace-only after trim.
var ErrNameEmpty = errors.New("break name is required")

// ErrNameTooShort is returned when the break name length is below the minimum.
var ErrNameTooShort = errors.New("break name too short")

// ErrNameTooLong is returned when the break name length exceeds the maximum.
var ErrNameTooLong = errors.New("break name too long")

// ErrNameInvalidChars is returned when the break name contains disallowed characters.
var ErrNameInvalidChars = errors.New("break name contains invalid characters")

// ErrInvalidLimit is returned when the limit query parameter is malformed or out of range.
var ErrInvalidLimit = errors.New("limit must be an integer between 1 and 200")

// ErrInvalidOffset is returned when the offset query parameter is malformed or negative.
var ErrInvalidOffset = errors.New("offset must be a non-negative integer")

// Pagination bounds for the break listing endpoint.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ValidateBreakName trims the input, enforces length bounds (minLen, maxLen
// in runes), and restricts to letters (Unicode), digits, space, comma,
// apostrophe, hyphen. Returns the trimmed string or an error suitable for
// 400 responses. Case normalization is left to the lookup layer.
func ValidateBreakName(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrNameEmpty
	}
	if minLen > 0 && n < minLen {
		return "", ErrNameTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrNameTooLong
	}
	for _, c := range r {
		if !isAllowedNameRune(c) {
			return "", ErrNameInvalidChars
		}
	}
	return s, nil
}

// isAllowedNameRune returns true for letters (Unicode), digits, space, comma,
// apostrophe, hyphen. Apostrophes appear in real break names (e.g. "D'bah").
func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '\'', '-':
		return true
	}
	return false
}

// ParsePagination parses limit and offset query parameters, applying defaults
// for absent values and rejecting malformed or out-of-range ones.
func ParsePagination(limitStr, offsetStr string) (limit, offset int, err error) {
	limit = DefaultLimit
	if s := strings.TrimSpace(limitStr); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, ErrInvalidLimit
		}
	}
	offset = 0
	if s := strings.TrimSpace(offsetStr); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, ErrInvalidOffset
		}
	}
	return limit, offset, nil
}
