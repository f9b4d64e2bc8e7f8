package validation

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateBreakName_Accepts verifies names with letters, digits, and the
// allowed punctuation pass, trimmed.
func TestValidateBreakName_Accepts(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Bells Beach", "Bells Beach"},
		{"  Snapper Rocks  ", "Snapper Rocks"},
		{"D'bah", "D'bah"},
		{"Thirteenth Beach, 13th", "Thirteenth Beach, 13th"},
		{"Crescent Head - Point", "Crescent Head - Point"},
	}
	for _, tt := range tests {
		got, err := ValidateBreakName(tt.input, 2, 100)
		if err != nil {
			t.Errorf("ValidateBreakName(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateBreakName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestValidateBreakName_Rejects verifies each bound and character rule maps
// to its sentinel error.
func TestValidateBreakName_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrNameEmpty},
		{"whitespace only", "   ", ErrNameEmpty},
		{"too short", "x", ErrNameTooShort},
		{"too long", strings.Repeat("a", 101), ErrNameTooLong},
		{"semicolon", "Bells;drop table", ErrNameInvalidChars},
		{"slash", "Bells/Beach", ErrNameInvalidChars},
		{"angle bracket", "<script>", ErrNameInvalidChars},
		{"newline", "Bells\nBeach", ErrNameInvalidChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBreakName(tt.input, 2, 100)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBreakName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// TestValidateBreakName_UnicodeLetters verifies non-ASCII letters count as
// letters for both validity and length.
func TestValidateBreakName_UnicodeLetters(t *testing.T) {
	got, err := ValidateBreakName("Praia do Norte, Nazaré", 2, 100)
	if err != nil {
		t.Fatalf("ValidateBreakName() error = %v", err)
	}
	if got != "Praia do Norte, Nazaré" {
		t.Errorf("ValidateBreakName() = %q, want input unchanged", got)
	}
}

// TestParsePagination_Defaults verifies absent parameters yield the default
// limit and zero offset.
func TestParsePagination_Defaults(t *testing.T) {
	limit, offset, err := ParsePagination("", "")
	if err != nil {
		t.Fatalf("ParsePagination() error = %v", err)
	}
	if limit != DefaultLimit || offset != 0 {
		t.Errorf("ParsePagination() = %d, %d, want %d, 0", limit, offset, DefaultLimit)
	}
}

// TestParsePagination_Explicit verifies in-range values parse through.
func TestParsePagination_Explicit(t *testing.T) {
	limit, offset, err := ParsePagination("5", "10")
	if err != nil {
		t.Fatalf("ParsePagination() error = %v", err)
	}
	if limit != 5 || offset != 10 {
		t.Errorf("ParsePagination() = %d, %d, want 5, 10", limit, offset)
	}
}

// TestParsePagination_Invalid verifies malformed and out-of-range values map
// to their sentinel errors.
func TestParsePagination_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		limitStr  string
		offsetStr string
		wantErr   error
	}{
		{"limit zero", "0", "", ErrInvalidLimit},
		{"limit negative", "-5", "", ErrInvalidLimit},
		{"limit over max", "201", "", ErrInvalidLimit},
		{"limit not a number", "abc", "", ErrInvalidLimit},
		{"offset negative", "10", "-1", ErrInvalidOffset},
		{"offset not a number", "10", "ten", ErrInvalidOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePagination(tt.limitStr, tt.offsetStr)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePagination(%q, %q) error = %v, want %v", tt.limitStr, tt.offsetStr, err, tt.wantErr)
			}
		})
	}
}
