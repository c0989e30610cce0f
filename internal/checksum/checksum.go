// Package checksum fingerprints seed files and form models.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Model returns the digest of v's JSON encoding. Struct fields encode in
// declaration order, so equal models always share a digest.
func Model(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("checksum: encode model: %w", err)
	}
	return Sum(data), nil
}
