// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost is the lowest bcrypt cost accepted by NewHasher.
	MinCost = 10

	// MaxCost is the highest cost bcrypt supports.
	MaxCost = bcrypt.MaxCost

	// MinLength is the shortest password accepted at signup, in characters.
	MinLength = 6

	// MaxLength is the bcrypt input limit in bytes.
	MaxLength = 72
)

var (
	ErrTooShort = errors.New("password too short")
	ErrTooLong  = errors.New("password too long")
)

// Hasher produces and checks salted bcrypt hashes.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, MinCost, MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the configured bcrypt cost.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a self-describing bcrypt hash of plaintext with a fresh salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches stored. Malformed hashes never match.
func (h *Hasher) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}

// ValidatePlaintext checks the length bounds a new password must satisfy.
// The lower bound counts characters; the upper bound counts bytes, since that
// is what bcrypt limits.
func ValidatePlaintext(p string) error {
	switch {
	case TooShort(p):
		return ErrTooShort
	case len(p) > MaxLength:
		return ErrTooLong
	}
	return nil
}

// TooShort reports whether p has fewer than MinLength characters.
func TooShort(p string) bool {
	return utf8.RuneCountInString(p) < MinLength
}
