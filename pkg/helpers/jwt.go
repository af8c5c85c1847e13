package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrSigningKeyMissing = errors.New("jwt signing key missing")
)

// JWTManager issues and verifies stateless bearer tokens. Revocation is not
// its concern; callers compare against the stored session token.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration

	// Now is used for issue times. Exposed for tests.
	Now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID valid for the manager's TTL.
func (m *JWTManager) Issue(userID string) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, ErrSigningKeyMissing
	}
	now := m.Now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify returns the user id embedded in a valid, unexpired token.
func (m *JWTManager) Verify(tokenStr string) (string, error) {
	if len(m.Secret) == 0 {
		return "", ErrSigningKeyMissing
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return m.Secret, nil
	})
	if err != nil || !tkn.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
