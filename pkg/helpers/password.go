package helpers

import "golang.org/x/crypto/bcrypt"

const (
	// DefaultBcryptCost keeps a hash in the tens of milliseconds on current hardware.
	DefaultBcryptCost = 10
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is returned by Hash for inputs over MaxPasswordBytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher; a cost outside bcrypt's range falls back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{Cost: cost}
}

// Hash hashes the plain text password using bcrypt
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plain password. A malformed digest
// is reported as a mismatch.
func (h *Hasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
