package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrBadUsername   = errors.New("username must be 3-20 characters: letters, digits, _ or -")
	ErrBadEmail      = errors.New("invalid email address")
	ErrBadPassword   = errors.New("password must be at least 6 characters")
	ErrBadPlayerName = errors.New("name must be 1-30 characters")
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return ErrBadUsername
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return ErrBadEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrBadPassword
	}
	return nil
}

// ValidatePlayerName checks the display name a guest or room member uses.
func ValidatePlayerName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > 30 {
		return ErrBadPlayerName
	}
	return nil
}
