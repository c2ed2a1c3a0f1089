package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// putRaw writes a raw value, bypassing the codec.
func (m *MemoryStore) putRaw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func sampleCredential() *domain.Credential {
	return &domain.Credential{
		ID:    "u-1",
		Name:  "Demo User",
		Email: "a@b.com",
		Roles: []string{"user"},
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec, "empty store loads nothing")

	require.NoError(t, s.Save(ctx, "T1", sampleCredential()))

	rec, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "T1", rec.Token)
	assert.Equal(t, sampleCredential(), rec.Credential)

	require.NoError(t, s.Clear(ctx))
	rec, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Zero(t, s.Len())
}

func TestMemoryStore_SaveRejectsIncompleteRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.ErrorIs(t, s.Save(ctx, "", sampleCredential()), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.Save(ctx, "T1", nil), domain.ErrInvalidArgument)
	assert.Zero(t, s.Len(), "failed saves must not write anything")
}

func TestMemoryStore_CorruptIsAbsent(t *testing.T) {
	tests := []struct {
		name  string
		plant func(*MemoryStore)
	}{
		{"bad json", func(m *MemoryStore) {
			m.putRaw(KeyToken, []byte("T1"))
			m.putRaw(KeyUser, []byte("{not json"))
		}},
		{"token only", func(m *MemoryStore) {
			m.putRaw(KeyToken, []byte("T1"))
		}},
		{"user only", func(m *MemoryStore) {
			m.putRaw(KeyUser, []byte(`{"id":"1"}`))
		}},
		{"empty token", func(m *MemoryStore) {
			m.putRaw(KeyToken, []byte(""))
			m.putRaw(KeyUser, []byte(`{"id":"1"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			tt.plant(s)

			rec, err := s.Load(context.Background())
			assert.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestMemoryStore_ConcurrentReadsSeeWholeRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Save(ctx, "T1", sampleCredential())
			_ = s.Clear(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			rec, err := s.Load(ctx)
			assert.NoError(t, err)
			if rec != nil {
				assert.Equal(t, "T1", rec.Token)
				assert.NotNil(t, rec.Credential)
			}
		}
	}()
	wg.Wait()
}
