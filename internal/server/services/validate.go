package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

const (
	msgBadUsername    = "Username must be 3-30 characters, alphanumeric and underscores only"
	msgBadDisplayName = "Display name must be 1-50 characters"
	msgWeakPassword   = "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number"
	msgBadEmail       = "A valid email address is required"

	maxDisplayName = 50
	minPassword    = 8
	// bcrypt ignores everything past 72 bytes
	maxPassword = 72
)

func validUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// normalizeDisplayName trims s and reports whether it is 1..50 characters.
func normalizeDisplayName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	return s, n >= 1 && n <= maxDisplayName
}

// strongPassword requires 8+ characters with upper, lower and digit. The
// upper bound is in bytes.
func strongPassword(p string) bool {
	if utf8.RuneCountInString(p) < minPassword || len(p) > maxPassword {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// validEmail accepts a bare address with a dotted domain.
func validEmail(s string) bool {
	if err := validate.Var(s, "required,max=254,email"); err != nil {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
