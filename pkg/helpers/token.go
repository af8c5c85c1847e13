package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// VerificationCodeBytes is the entropy of an email verification code.
const VerificationCodeBytes = 32

// GenToken returns n random bytes encoded as unpadded base64url.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenVerificationCode generates an opaque single-use verification code.
func GenVerificationCode() (string, error) {
	return GenToken(VerificationCodeBytes)
}
