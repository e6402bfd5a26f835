package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt embeds a random salt, so two hashes of the same password differ
// and comparison must go through bcrypt, never string equality.
const bcryptCost = 10

// HashPassword creates a bcrypt digest of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
