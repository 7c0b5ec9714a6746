package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// API key layout: sb-v1-<secret id>-<random>, 103 characters.
const (
	keyPrefix     = "sb"
	keyVersion    = "v1"
	secretIDLen   = 32 // hex of the 16-byte secret ID
	randomDataLen = 64 // hex of 32 random bytes
)

// ParseAPIKey splits a key into the ID of the HMAC secret it was issued
// under and its random part.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0] != keyPrefix || parts[1] != keyVersion {
		return "", "", ErrInvalidKeyFormat
	}
	secretID, randomData = parts[2], parts[3]
	if len(secretID) != secretIDLen || len(randomData) != randomDataLen {
		return "", "", ErrInvalidKeyFormat
	}
	if !isLowerHex(secretID) || !isLowerHex(randomData) {
		return "", "", ErrInvalidKeyFormat
	}
	return secretID, randomData, nil
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// FormatAPIKey assembles a key from its parts.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s-%s-%s-%s", keyPrefix, keyVersion, secretID, randomData)
}

// ComputeHMAC returns HMAC-SHA256(secret, apiKey). Only this hash is stored.
func ComputeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}

// VerifyHMAC compares two hashes in constant time.
func VerifyHMAC(expected, computed []byte) bool {
	return hmac.Equal(expected, computed)
}

// GenerateAPIKey issues a new key under the given secret and returns it
// together with the hash to store. The key itself is shown once and never
// persisted.
func GenerateAPIKey(secretID string, secret []byte) (key string, hash []byte, err error) {
	if len(secretID) != secretIDLen || !isLowerHex(secretID) {
		return "", nil, fmt.Errorf("%w: secret id %q", ErrInvalidKeyFormat, secretID)
	}
	if len(secret) == 0 {
		return "", nil, fmt.Errorf("empty HMAC secret")
	}

	random := make([]byte, randomDataLen/2)
	if _, err := rand.Read(random); err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}

	key = FormatAPIKey(secretID, hex.EncodeToString(random))
	return key, ComputeHMAC(secret, key), nil
}
