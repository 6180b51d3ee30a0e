package auth

import (
	"regexp"
	"strings"
)

// MinPasswordLen is the shortest password SignUp accepts.
const MinPasswordLen = 8

// User-facing validation messages.
const (
	MsgMissingFields    = "Please fill in all fields"
	MsgInvalidEmail     = "Please enter a valid email"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordMismatch = "Passwords do not match"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InputError is a validation failure whose message is safe to show to users.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate checks the form in display order and returns the first failure.
func (r SignUpRequest) Validate() error {
	if r.Email == "" || r.Password == "" || r.ConfirmPassword == "" {
		return &InputError{Message: MsgMissingFields}
	}
	if !ValidEmail(r.Email) {
		return &InputError{Message: MsgInvalidEmail}
	}
	if len(r.Password) < MinPasswordLen {
		return &InputError{Message: MsgPasswordTooShort}
	}
	if r.Password != r.ConfirmPassword {
		return &InputError{Message: MsgPasswordMismatch}
	}
	return nil
}

// ValidEmail reports whether s looks like an address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return &InputError{Message: MsgMissingFields}
	}
	if !ValidEmail(email) {
		return &InputError{Message: MsgInvalidEmail}
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
