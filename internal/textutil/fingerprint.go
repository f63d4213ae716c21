package textutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintSize is the length of a rendered fingerprint.
const FingerprintSize = sha256.Size * 2

// Fingerprint returns the lowercase hex sha256 digest of the hash form of
// text. Texts that differ only by whitespace or case share a fingerprint.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(NormalizeForHash(text)))
	return hex.EncodeToString(sum[:])
}
