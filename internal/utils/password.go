package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateTemporaryPassword returns a random URL-safe password of the given length.
// Admin-created accounts get one when no password is supplied.
func GenerateTemporaryPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}
