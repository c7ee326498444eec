package utils

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyDigest reports whether digest matches data.
func VerifyDigest(data []byte, digest string) bool {
	return Digest(data) == digest
}

// HashJSON returns the blake2b-256 digest of the JSON encoding of v. Struct
// fields are encoded in declaration order, so equal values hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error encoding value for hashing: %w", err)
	}

	return Digest(data), nil
}
