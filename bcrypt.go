package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return hashPassword(password, passwordHashCost())
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptHasher implements PasswordAuthenticator with a fixed cost
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or the package default
// when cost is outside the bcrypt range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}
	return BcryptHasher{cost: cost}
}

func (b BcryptHasher) HashPassword(password string) (string, error) {
	return hashPassword(password, b.cost)
}

func (b BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = BcryptHasher{}

func hashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}
