package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	passwords := []string{"secret1", "another-password", "пароль", ""}

	for _, p := range passwords {
		digest, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, digest)
		assert.True(t, h.Verify(p, digest), "password %q should verify", p)
		assert.False(t, h.Verify(p+"x", digest), "password %q+x should not verify", p)
	}
}

func TestHasherSaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasherMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("secret1", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret1", ""))
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewHasher(0).Cost)
	assert.Equal(t, DefaultBcryptCost, NewHasher(99).Cost)
}

func TestJWTIssueVerify(t *testing.T) {
	m := NewJWTManager("secret", 24*time.Hour)

	tok, exp, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, time.Minute)

	uid, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestJWTTokensAreUniquePerIssue(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	a, _, err := m.Issue("user-1")
	require.NoError(t, err)
	b, _, err := m.Issue("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestJWTVerifyRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	valid, _, err := m.Issue("user-1")
	require.NoError(t, err)

	expired := NewJWTManager("secret", time.Hour)
	expired.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("user-1")
	require.NoError(t, err)

	other, _, err := NewJWTManager("other", time.Hour).Issue("user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: old},
		{name: "wrong key", token: other},
		{name: "malformed", token: "not.a.jwt"},
		{name: "empty", token: ""},
		{name: "tampered", token: valid[:len(valid)-2] + "xx"},
		{name: "alg none", token: unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTMissingSecret(t *testing.T) {
	m := NewJWTManager("", time.Hour)

	_, _, err := m.Issue("user-1")
	assert.ErrorIs(t, err, ErrSigningKeyMissing)
	_, err = m.Verify("anything")
	assert.ErrorIs(t, err, ErrSigningKeyMissing)
}

func TestGenVerificationCode(t *testing.T) {
	a, err := GenVerificationCode()
	require.NoError(t, err)
	b, err := GenVerificationCode()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 bytes -> 43 unpadded base64url characters
	assert.Len(t, a, 43)
	assert.False(t, strings.ContainsAny(a, "+/="))
}

func TestGravatarURL(t *testing.T) {
	got := GravatarURL("  A@X.com ")
	assert.True(t, strings.HasPrefix(got, "//www.gravatar.com/avatar/"))
	assert.Len(t, strings.TrimPrefix(got, "//www.gravatar.com/avatar/"), 32)
	assert.Equal(t, GravatarURL("a@x.com"), got)
}

func TestHasherRejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
