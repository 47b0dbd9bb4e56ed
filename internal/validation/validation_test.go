package validation

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateNickname covers trimming, length bounds, and the allowed
// character set, including CJK names.
func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"simple", "ibby", "ibby", nil},
		{"trimmed", "  kei  ", "kei", nil},
		{"chinese", "小明", "小明", nil},
		{"with space", "Mary Ann", "Mary Ann", nil},
		{"with hyphen", "Jean-Luc", "Jean-Luc", nil},
		{"with digits", "kei2", "kei2", nil},
		{"empty", "", "", ErrNicknameEmpty},
		{"whitespace only", "   ", "", ErrNicknameEmpty},
		{"too long", strings.Repeat("a", 21), "", ErrNicknameTooLong},
		{"max length ok", strings.Repeat("a", 20), strings.Repeat("a", 20), nil},
		{"emoji rejected", "kei🙂", "", ErrNicknameInvalidChars},
		{"punctuation rejected", "kei!", "", ErrNicknameInvalidChars},
		{"angle brackets rejected", "<script>", "", ErrNicknameInvalidChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNickname(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateNickname(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateNickname(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
