package identity

import (
	"regexp"
	"strings"
)

const (
	// Username rules are part of the compatibility contract with the mobile
	// client and must not drift.
	UsernameMinLen = 3
	UsernameMaxLen = 20

	PasswordMinLen = 8
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidationError is a local, synchronous rejection raised before any remote
// call. Always recoverable: the user corrects the input and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// NormalizeUsername trims surrounding whitespace. Usernames are otherwise kept
// verbatim; uniqueness checks are case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername checks the normalized username against the format rules.
func ValidateUsername(username string) error {
	switch {
	case len(username) < UsernameMinLen:
		return &ValidationError{Field: "username", Reason: "must be at least 3 characters"}
	case len(username) > UsernameMaxLen:
		return &ValidationError{Field: "username", Reason: "must be at most 20 characters"}
	case !usernamePattern.MatchString(username):
		return &ValidationError{Field: "username", Reason: "only letters, digits, underscore and hyphen are allowed"}
	}
	return nil
}

// ValidatePassword checks the registration password rules. Login deliberately
// does not apply the length rule; it only requires a non-empty password that
// matches the stored credential.
func ValidatePassword(password, confirm string) error {
	if len(password) < PasswordMinLen {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if password != confirm {
		return &ValidationError{Field: "passwordConfirm", Reason: "passwords do not match"}
	}
	return nil
}
