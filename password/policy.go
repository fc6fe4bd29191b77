package password

import (
	"errors"
	"strings"
	"unicode"
)

// ErrPolicy is returned when a candidate password fails the strength
// policy. Callers surface it as their weak-secret error kind.
var ErrPolicy = errors.New("password policy violation")

const minPasswordLength = 8

const specialRunes = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ValidatePolicy enforces the account password policy: at least 8
// characters with one uppercase letter, one lowercase letter, one digit,
// and one special character.
func ValidatePolicy(plaintext string) error {
	if len(plaintext) < minPasswordLength {
		return errors.Join(ErrPolicy, errors.New("password must be at least 8 characters long"))
	}

	var upper, lower, digit, special bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialRunes, r):
			special = true
		}
	}

	switch {
	case !upper:
		return errors.Join(ErrPolicy, errors.New("password must contain at least one uppercase letter"))
	case !lower:
		return errors.Join(ErrPolicy, errors.New("password must contain at least one lowercase letter"))
	case !digit:
		return errors.Join(ErrPolicy, errors.New("password must contain at least one number"))
	case !special:
		return errors.Join(ErrPolicy, errors.New("password must contain at least one special character"))
	}

	return nil
}
