// Package store persists the current session so it survives a restart.
package store

import (
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/gundaabinav333/authshell/pkg/token"
)

// Sealer provides authenticated encryption of persisted values.
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(ciphertext, additionalData []byte) ([]byte, error)
}

// ErrCiphertextTooShort is returned when a sealed value is shorter than a nonce.
var ErrCiphertextTooShort = errors.New("store: ciphertext too short")

// XChaCha20 seals values with XChaCha20-Poly1305. The random 24-byte nonce
// is prepended to each ciphertext.
type XChaCha20 struct {
	aead cipher.AEAD
}

// NewXChaCha20 creates a sealer from a 32-byte key.
func NewXChaCha20(key []byte) (*XChaCha20, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("store: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaCha20{aead: aead}, nil
}

// Seal encrypts plaintext.
func (x *XChaCha20) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce, err := token.GenerateBytes(x.aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return x.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open decrypts a value produced by Seal.
func (x *XChaCha20) Open(ciphertext, additionalData []byte) ([]byte, error) {
	n := x.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextTooShort
	}
	return x.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}

// LoadOrCreateKey reads a base64 key from path, creating the file with a
// fresh random key (mode 0600) when it does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("store: decode key file %s: %w", path, err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("store: key file %s holds %d bytes, want %d", path, len(key), chacha20poly1305.KeySize)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: read key file: %w", err)
	}

	key, err := token.GenerateBytes(chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("store: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create key dir: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("store: write key file: %w", err)
	}
	return key, nil
}
