// Package validation holds the pure field validators shared by the login and
// registration flows. Validators never panic; they return a boolean or an
// explanatory message the caller attaches to the offending form field.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the canonical minimum for new passwords.
	MinPasswordLength = 8

	// MinAge is the youngest age allowed to register.
	MinAge = 13
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s+()-]{8,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
)

// ValidEmail reports whether the input matches a local@domain.tld shape.
// Empty or whitespace-only input is rejected.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidPhone accepts at least 8 characters drawn from digits, spaces and +()-.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidName accepts letters (including accented Latin characters) and spaces,
// with a minimum of 2 characters after trimming.
func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return namePattern.MatchString(name) && utf8.RuneCountInString(trimmed) >= 2
}

// CheckPasswordStrength enforces the canonical password rule: at least 8
// characters with one uppercase letter, one lowercase letter and one digit.
// The empty message means the password passed.
func CheckPasswordStrength(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, "password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper {
		return false, "password must contain at least one uppercase letter"
	}
	if !lower {
		return false, "password must contain at least one lowercase letter"
	}
	if !digit {
		return false, "password must contain at least one digit"
	}
	return true, ""
}

// CheckAge verifies the birth date corresponds to an age of at least 13 whole
// years at the reference time. A birth date exactly 13 years before now is
// valid; one day short is not.
func CheckAge(birthDate, now time.Time) (bool, string) {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	if age < MinAge {
		return false, "you must be at least 13 years old to register"
	}
	return true, ""
}

// ParseBirthDate parses the wire format used by the registration form.
func ParseBirthDate(raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
