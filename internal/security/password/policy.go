package password

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MinLen = 8

var (
	ErrTooShort = errors.New("password too short")
	ErrTooLong  = errors.New("password too long")
	ErrCommon   = errors.New("password too similar to account details")
)

// MaxLen bounds argon2 input so a huge body cannot pin a CPU.
const MaxLen = 128

// Check enforces the minimum policy: length bounds and not simply the
// username or email local part.
func Check(pwd string, userInputs ...string) error {
	n := utf8.RuneCountInString(pwd)
	if n < MinLen {
		return ErrTooShort
	}
	if n > MaxLen {
		return ErrTooLong
	}
	lp := strings.ToLower(pwd)
	for _, in := range userInputs {
		in = strings.ToLower(strings.TrimSpace(in))
		if local, _, ok := strings.Cut(in, "@"); ok {
			in = local
		}
		if in != "" && lp == in {
			return ErrCommon
		}
	}
	return nil
}

// Message is the user-facing text for a policy error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrTooShort):
		return "This password is too short. It must contain at least 8 characters."
	case errors.Is(err, ErrTooLong):
		return "This password is too long."
	case errors.Is(err, ErrCommon):
		return "The password is too similar to the username."
	}
	return "Invalid password."
}
