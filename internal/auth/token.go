// Package auth implements the optional bearer-token protection of the
// command bridge. One token is minted offline, only its bcrypt hash is
// persisted, and clients present the raw value as "Authorization: Bearer".
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix marks AppDNA bearer tokens so a leaked value is
	// recognizable in logs and secret scanners.
	TokenPrefix = "appdna_tok_" // #nosec G101 //nolint:gosec // Not a credential, just a prefix pattern

	// TokenPrefixLength is the number of secret characters kept when
	// masking a token for display.
	TokenPrefixLength = 8

	// TokenLength is the length of the random part of tokens (in bytes,
	// hex encoded on output).
	TokenLength = 32

	// bcryptCost is the cost factor for bcrypt hashing
	bcryptCost = 12
)

// GenerateToken mints a new bearer token. The raw value is shown exactly
// once; only the bcrypt hash belongs in configuration.
// Format: appdna_tok_<64 hex chars>
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(bytes), nil
}

// HashToken creates a bcrypt hash of a token for storage.
func HashToken(token string) (string, error) {
	// Hash the secret part, not the recognizable prefix.
	secret := strings.TrimPrefix(token, TokenPrefix)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken checks if a token matches a stored hash.
func VerifyToken(token, hash string) bool {
	secret := strings.TrimPrefix(token, TokenPrefix)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

// IsValidTokenFormat checks if a token has the correct format.
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(secret)
	return err == nil
}

// MaskToken returns a masked version of a token for display.
// Example: appdna_tok_a1b2c3d4****...****
func MaskToken(token string) string {
	if len(token) < len(TokenPrefix)+TokenPrefixLength {
		return "****"
	}
	prefix := token[:len(TokenPrefix)+TokenPrefixLength]
	return prefix + "****...****"
}

// ResolveHash returns the bcrypt hash the command bridge verifies tokens
// against: the inline hash when set, otherwise the first line of the token
// file. An empty result with nil error means no hash is configured.
func ResolveHash(hash, file string) (string, error) {
	if hash = strings.TrimSpace(hash); hash != "" {
		return hash, nil
	}
	if file == "" {
		return "", nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read token hash file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}
