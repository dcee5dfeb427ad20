// Package identity computes the two identity keys used by the tracking
// engine: the content hash (exact-duplicate detection) and the fuzzy
// fingerprint (approximate identity of an application across differently
// worded emails).
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 digest of the event body. The same input
// always produces the same output; an empty body hashes the empty string.
func Hash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a digest of the normalized job title and company
// name. Case and surrounding whitespace are ignored; missing fields are
// treated as empty strings.
func Fingerprint(jobTitle, companyName string) string {
	base := strings.TrimSpace(strings.ToLower(jobTitle)) +
		"_" +
		strings.TrimSpace(strings.ToLower(companyName))
	return Hash(base)
}
