package admin

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotConfigured is returned when no admin token hash is set.
var ErrNotConfigured = errors.New("admin token not configured")

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	if hashedToken == "" || plainToken == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashAdminToken hashes a plain token for ADMIN_TOKEN_HASH
func HashAdminToken(plainToken string) (string, error) {
	if len(plainToken) < 12 {
		return "", fmt.Errorf("admin token must be at least 12 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}
