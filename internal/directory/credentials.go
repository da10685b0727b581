package directory

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashCredential hashes a plaintext credential secret using bcrypt.
func HashCredential(secret string) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("credential secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyCredential compares a plaintext credential secret with the stored hash.
func VerifyCredential(hash, secret string) error {
	if hash == "" {
		return errors.New("credential hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}
