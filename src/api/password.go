package api

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	MinPasswordLength = 10
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
)

var (
	ErrPasswordLength  = fmt.Errorf("password must be %d to %d bytes", MinPasswordLength, MaxPasswordLength)
	ErrPasswordSpaces  = errors.New("password must not contain whitespace")
	ErrPasswordClasses = errors.New("password needs an uppercase letter, a lowercase letter, a digit and a symbol")
)

// ValidateOperatorPassword reports every rule the password breaks, joined.
func ValidateOperatorPassword(password string) error {
	var errs []error
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		errs = append(errs, ErrPasswordLength)
	}
	var upper, lower, digit, symbol, space bool
	for _, c := range password {
		switch {
		case unicode.IsSpace(c):
			space = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			symbol = true
		}
	}
	if space {
		errs = append(errs, ErrPasswordSpaces)
	}
	if !upper || !lower || !digit || !symbol {
		errs = append(errs, ErrPasswordClasses)
	}
	return errors.Join(errs...)
}
