package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// DefaultLength is the default secret length in bytes.
const DefaultLength = 32

// Generate returns a Base64 RawURL encoded secret of DefaultLength bytes.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns a Base64 RawURL encoded secret of length bytes.
func GenerateWithLength(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateBytes returns length random bytes.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Equal reports whether a and b are equal in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
