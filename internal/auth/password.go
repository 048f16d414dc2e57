package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored credentials.
const HashCost = 12

// HashPassword derives a salted adaptive hash from the plaintext. The
// output encodes algorithm, cost and salt, so verification needs no
// side-channel storage. A hashing failure must abort the caller.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
// Malformed stored hashes verify as false rather than erroring.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
