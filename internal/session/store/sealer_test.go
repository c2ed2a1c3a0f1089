package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXChaCha20_SealOpen(t *testing.T) {
	key := make([]byte, 32)
	s, err := NewXChaCha20(key)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("T1"), []byte(KeyToken))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "T1")

	plain, err := s.Open(sealed, []byte(KeyToken))
	require.NoError(t, err)
	assert.Equal(t, "T1", string(plain))

	_, err = s.Open(sealed, []byte(KeyUser))
	assert.Error(t, err, "additional data binds the value to its key")

	_, err = s.Open([]byte("short"), nil)
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestNewXChaCha20_KeySize(t *testing.T) {
	_, err := NewXChaCha20(make([]byte, 16))
	assert.Error(t, err)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.key")

	key, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, key, again, "existing key must be reused")
}

func TestLoadOrCreateKey_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")

	require.NoError(t, os.WriteFile(path, []byte("not base64!"), 0o600))
	_, err := LoadOrCreateKey(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("c2hvcnQ=\n"), 0o600))
	_, err = LoadOrCreateKey(path)
	assert.Error(t, err, "wrong key length")
}
