package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var _ PasswordHasher = (*BcryptHasher)(nil) // ensure BcryptHasher implements PasswordHasher.

// PasswordHasher hashes plaintext passwords and checks candidates against a stored hash.
type PasswordHasher interface {
	Encode(plain string) (string, error)
	Matches(plain, hash string) bool
}

// BcryptHasher implements PasswordHasher with an adaptive bcrypt hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using the given cost. Out of range
// values fall back to bcrypt default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (bh *BcryptHasher) Encode(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bh.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (bh *BcryptHasher) Matches(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
