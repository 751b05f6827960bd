package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data   map[string][]byte
	ttl    time.Duration
	getErr error
}

func (m *memoryStore) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = value.([]byte)
	m.ttl = ttl
	return nil
}

func (m *memoryStore) BlobKey(kind, location string) string {
	return "irf:blob:" + kind + ":" + location
}

type countingBlob struct {
	calls int
	err   error
}

func (c *countingBlob) Fetch(context.Context) (string, []byte, error) {
	c.calls++
	if c.err != nil {
		return "", nil, c.err
	}
	return "carga.xlsx", []byte("payload"), nil
}

func TestCachedBlob(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}}
	inner := &countingBlob{}
	blob := CachedBlob{Inner: inner, Store: store, Kind: "gdrive", Key: "abc", TTL: time.Hour}

	for i := 0; i < 3; i++ {
		name, data, err := blob.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "carga.xlsx", name)
		assert.Equal(t, "payload", string(data))
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, time.Hour, store.ttl)
	assert.Contains(t, store.data, "irf:blob:gdrive:abc")
}

func TestCachedBlob_FallsThroughOnCacheErrors(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{"irf:blob:http:u": []byte("not json")}}
	inner := &countingBlob{}
	blob := CachedBlob{Inner: inner, Store: store, Kind: "http", Key: "u"}

	_, data, err := blob.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 1, inner.calls)

	store.getErr = errors.New("redis down")
	_, _, err = blob.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedBlob_InnerError(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}}
	blob := CachedBlob{Inner: &countingBlob{err: errors.New("offline")}, Store: store, Kind: "http", Key: "u"}

	_, _, err := blob.Fetch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.data)
}
