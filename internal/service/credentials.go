package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

const minPasswordLen = 6

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Credentials is the register/login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateCredentials checks presence, email shape and password length and
// returns the trimmed email with the password.
func ValidateCredentials(c Credentials) (string, string, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" || c.Password == "" {
		return "", "", appErr.Wrap(appErr.ErrInvalid, "Missing credentials: email or password")
	}
	if !emailRegex.MatchString(email) {
		return "", "", appErr.Wrap(appErr.ErrInvalid, "Invalid email")
	}
	if utf8.RuneCountInString(c.Password) < minPasswordLen {
		return "", "", appErr.Wrap(appErr.ErrInvalid, "Password must be at least 6 characters long")
	}
	return email, c.Password, nil
}
