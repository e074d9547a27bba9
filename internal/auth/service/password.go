package service

import (
	"fmt"
	"strings"
	"unicode"
)

// Password policy bounds.
const (
	MinPasswordLength = 12

	// specialChars is the set a password must draw at least one symbol from.
	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// defaultBlockedPasswords are substrings no password may contain,
// case-insensitively. Kept short; the point is catching the obvious ones.
var defaultBlockedPasswords = []string{
	"password",
	"qwerty",
	"123456",
	"letmein",
	"welcome",
	"admin",
	"iloveyou",
	"abc123",
}

// PolicyError carries every rule a candidate password violated, so the
// caller can report them all at once.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "password policy: " + strings.Join(e.Violations, "; ")
}

// PasswordPolicy validates candidate passwords. The zero value uses the
// default blocklist.
type PasswordPolicy struct {
	// Blocklist overrides the default blocked substrings when non-nil.
	Blocklist []string
}

// Validate checks password against every rule and returns a *PolicyError
// listing all violations, or nil when the password is acceptable.
func (p *PasswordPolicy) Validate(password string) error {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations,
			fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		violations = append(violations, "must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain at least one digit")
	}
	if !hasSpecial {
		violations = append(violations,
			"must contain at least one special character ("+specialChars+")")
	}

	blocklist := p.Blocklist
	if blocklist == nil {
		blocklist = defaultBlockedPasswords
	}
	lowered := strings.ToLower(password)
	for _, blocked := range blocklist {
		if strings.Contains(lowered, strings.ToLower(blocked)) {
			violations = append(violations,
				fmt.Sprintf("must not contain the common sequence %q", blocked))
			break
		}
	}

	if len(violations) > 0 {
		return &PolicyError{Violations: violations}
	}
	return nil
}
