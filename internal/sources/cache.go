package sources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/redis"
)

// CachedBlob serves Inner from Redis while the entry is fresh. Cache errors
// are logged and fall through to Inner.
type CachedBlob struct {
	Inner  Blob
	Store  redis.BlobStore
	Kind   string
	Key    string
	TTL    time.Duration
	Logger *logger.Logger
}

type cachedEntry struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

func (b CachedBlob) Fetch(ctx context.Context) (string, []byte, error) {
	key := b.Store.BlobKey(b.Kind, b.Key)

	raw, found, err := b.Store.GetBytes(ctx, key)
	switch {
	case err != nil:
		b.warn(ctx, "blob cache read failed: "+err.Error())
	case found:
		var entry cachedEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			b.debug(ctx, "blob cache hit "+key)
			return entry.Name, entry.Data, nil
		}
		b.warn(ctx, "blob cache entry is corrupt: "+key)
	}

	name, data, err := b.Inner.Fetch(ctx)
	if err != nil {
		return "", nil, err
	}

	encoded, err := json.Marshal(cachedEntry{Name: name, Data: data})
	if err == nil {
		err = b.Store.Set(ctx, key, encoded, b.TTL)
	}
	if err != nil {
		b.warn(ctx, "blob cache write failed: "+err.Error())
	}
	return name, data, nil
}

func (b CachedBlob) warn(ctx context.Context, msg string) {
	if b.Logger != nil {
		b.Logger.Warn(ctx, msg)
	}
}

func (b CachedBlob) debug(ctx context.Context, msg string) {
	if b.Logger != nil {
		b.Logger.Debug(ctx, msg)
	}
}
