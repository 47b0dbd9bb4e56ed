package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNicknameEmpty is returned when the nickname is empty or whitespace-only after trim.
var ErrNicknameEmpty = errors.New("nickname is required")

// ErrNicknameTooLong is returned when the nickname length exceeds the maximum.
var ErrNicknameTooLong = errors.New("nickname too long")

// ErrNicknameInvalidChars is returned when the nickname contains disallowed characters.
var ErrNicknameInvalidChars = errors.New("nickname contains invalid characters")

// maxNicknameRunes bounds display names so frame labels never overflow.
const maxNicknameRunes = 20

// ValidateNickname trims the input, enforces the rune-length bound, and
// restricts to letters (Unicode, so CJK names work), digits, space, and
// hyphen. Returns the trimmed string or an error suitable for 400 responses.
func ValidateNickname(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrNicknameEmpty
	}
	if len(r) > maxNicknameRunes {
		return "", ErrNicknameTooLong
	}
	for _, c := range r {
		if !isAllowedNicknameRune(c) {
			return "", ErrNicknameInvalidChars
		}
	}
	return s, nil
}

// isAllowedNicknameRune returns true for letters (Unicode), digits, space, hyphen.
func isAllowedNicknameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', '-':
		return true
	}
	return false
}
