package helpers

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL returns the protocol-relative gravatar address for email.
// Gravatar keys avatars by the md5 of the trimmed, lower-cased address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
