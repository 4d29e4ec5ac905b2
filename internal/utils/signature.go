package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateHMACSignature generates an HMAC SHA256 signature for the payload
// Returns the signature in the format: sha256=<hex_encoded_hmac>
func GenerateHMACSignature(payload []byte, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write(payload); err != nil {
		return "", fmt.Errorf("failed to write payload to HMAC: %w", err)
	}

	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil))), nil
}

// VerifyHMACSignature checks a received signature against the payload using
// a constant-time comparison.
func VerifyHMACSignature(payload []byte, signature, secret string) bool {
	expected, err := GenerateHMACSignature(payload, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}
