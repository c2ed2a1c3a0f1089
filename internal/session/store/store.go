// Package store persists the current session so it survives a restart.
//
// A record is two keys: authToken holds the opaque session token and
// userData the JSON-encoded credential. Both are written and removed
// together; a reader never sees one without the other.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// Persisted key names.
const (
	KeyToken = "authToken"
	KeyUser  = "userData"
)

// Record is a persisted session.
type Record struct {
	Token      string
	Credential *domain.Credential
}

// Store holds at most one session record.
type Store interface {
	// Save persists token and credential atomically, replacing any record.
	Save(ctx context.Context, token string, cred *domain.Credential) error

	// Load returns the persisted record, or nil when none exists.
	// Unreadable records are reported as absent, not as errors.
	Load(ctx context.Context) (*Record, error)

	// Clear removes the persisted record. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// codec turns records into key/value pairs and back, sealing values when a
// Sealer is configured.
type codec struct {
	sealer Sealer
}

func (c codec) encode(token string, cred *domain.Credential) (tokenVal, userVal []byte, err error) {
	if token == "" {
		return nil, nil, domain.ErrInvalidArgument.WithDetails("empty session token")
	}
	if cred == nil {
		return nil, nil, domain.ErrInvalidArgument.WithDetails("nil credential")
	}

	userJSON, err := json.Marshal(cred)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal credential: %w", err)
	}

	tokenVal, err = c.seal([]byte(token), KeyToken)
	if err != nil {
		return nil, nil, err
	}
	userVal, err = c.seal(userJSON, KeyUser)
	if err != nil {
		return nil, nil, err
	}
	return tokenVal, userVal, nil
}

// decode returns ErrStoreCorrupt for anything that is not a complete,
// readable record.
func (c codec) decode(tokenVal, userVal []byte) (*Record, error) {
	if tokenVal == nil || userVal == nil {
		return nil, domain.ErrStoreCorrupt.WithDetails("incomplete record")
	}

	token, err := c.open(tokenVal, KeyToken)
	if err != nil {
		return nil, domain.ErrStoreCorrupt.WithDetails("token").WithCause(err)
	}
	if len(token) == 0 {
		return nil, domain.ErrStoreCorrupt.WithDetails("empty token")
	}

	userJSON, err := c.open(userVal, KeyUser)
	if err != nil {
		return nil, domain.ErrStoreCorrupt.WithDetails("credential").WithCause(err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(userJSON, &cred); err != nil {
		return nil, domain.ErrStoreCorrupt.WithDetails("credential json").WithCause(err)
	}

	return &Record{Token: string(token), Credential: &cred}, nil
}

// The key name is bound as additional data so sealed values cannot be
// swapped between keys.
func (c codec) seal(plaintext []byte, key string) ([]byte, error) {
	if c.sealer == nil {
		return plaintext, nil
	}
	out, err := c.sealer.Seal(plaintext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("seal %s: %w", key, err)
	}
	return out, nil
}

func (c codec) open(value []byte, key string) ([]byte, error) {
	if c.sealer == nil {
		return value, nil
	}
	return c.sealer.Open(value, []byte(key))
}
