// Package warmcache keeps raw article text per browsing session so the
// article view can skip a second fetch of something already seen.
package warmcache

import (
	"context"
	"fmt"
	"time"
)

// Backend stores session-scoped key/value pairs.
// Implementations must be safe for concurrent use.
type Backend interface {
	Load(ctx context.Context, session, key string) (string, bool, error)
	Save(ctx context.Context, session, key, value string) error
	// Purge removes entries stored before the given time and reports how
	// many were removed.
	Purge(ctx context.Context, before time.Time) (int, error)
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindBolt   = "bolt"
)

// Open creates the backend named by kind. path is ignored for memory.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case "", KindMemory:
		return NewMemory(), nil
	case KindSQLite:
		return OpenSQLite(path)
	case KindBolt:
		return OpenBolt(path)
	}
	return nil, fmt.Errorf("warmcache: unknown backend %q", kind)
}
