package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt hash of the plaintext. Each call uses a fresh
// salt, so two hashes of the same plaintext differ.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored hash.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
