package auth

import (
	"errors"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordPolicy describes the minimum composition of a strong password
type PasswordPolicy struct {
	MinLength    int
	MinLowercase int
	MinUppercase int
	MinNumbers   int
	MinSymbols   int
}

// DefaultPasswordPolicy requires eight characters with at least one
// lowercase, uppercase, number and symbol.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:    8,
	MinLowercase: 1,
	MinUppercase: 1,
	MinNumbers:   1,
	MinSymbols:   1,
}

var errWeakPassword = errors.New("password is not strong enough")

// Check returns an error when password does not satisfy the policy
func (p PasswordPolicy) Check(password string) error {
	var length, lower, upper, numbers, symbols int
	for _, r := range password {
		length++
		switch {
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			numbers++
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			symbols++
		}
	}

	if length < p.MinLength ||
		lower < p.MinLowercase ||
		upper < p.MinUppercase ||
		numbers < p.MinNumbers ||
		symbols < p.MinSymbols {
		return errWeakPassword
	}

	return nil
}

// Rule exposes the policy as an ozzo validation rule. Empty values are
// left to validation.Required.
func (p PasswordPolicy) Rule() validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		return p.Check(s)
	})
}
