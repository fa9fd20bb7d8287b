package password

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// MinLength is the minimum length of a new password
	MinLength = 8
	// MaxLength is the maximum length accepted by the account procedures
	MaxLength = 100
)

// HashToken returns a SHA-256 fingerprint of a session token, safe to log
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Fingerprint is a short prefix of HashToken for log lines
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return HashToken(token)[:12]
}

// ValidatePassword checks if a new password meets requirements
func ValidatePassword(password string) bool {
	return len(password) >= MinLength && len(password) <= MaxLength
}
