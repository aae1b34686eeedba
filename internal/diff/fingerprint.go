package diff

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint hashes a normalized definition body. Equal normalized bodies
// always produce equal digests; callers only ever compare digests for
// equality, never parse them.
func Fingerprint(normalizedBody string) string {
	sum := sha256.Sum256([]byte(normalizedBody))
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint returns a truncated digest prefix for display.
func ShortFingerprint(fingerprint string) string {
	const prefixLen = 12
	if len(fingerprint) <= prefixLen {
		return fingerprint
	}
	return fingerprint[:prefixLen]
}
