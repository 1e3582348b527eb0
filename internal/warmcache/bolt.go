package warmcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bSessions = []byte("sessions")

// Bolt is a Backend persisted in a bbolt file. Each session is a nested
// bucket; values are prefixed with their store time in unix nanoseconds.
type Bolt struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("warmcache: missing bolt path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("warmcache: create dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("warmcache: open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("warmcache: init bolt: %w", err)
	}
	return &Bolt{db: db, now: time.Now}, nil
}

func (b *Bolt) Load(_ context.Context, session, key string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bSessions).Bucket([]byte(session))
		if sb == nil {
			return nil
		}
		raw := sb.Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		v, ok = string(raw[8:]), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("warmcache: load: %w", err)
	}
	return v, ok, nil
}

func (b *Bolt) Save(_ context.Context, session, key, value string) error {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf, uint64(b.now().UnixNano()))
	copy(buf[8:], value)

	err := b.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.Bucket(bSessions).CreateBucketIfNotExists([]byte(session))
		if err != nil {
			return err
		}
		return sb.Put([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("warmcache: save: %w", err)
	}
	return nil
}

func (b *Bolt) Purge(_ context.Context, before time.Time) (int, error) {
	cutoff := uint64(before.UnixNano())
	n := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bSessions)
		var empty [][]byte
		err := root.ForEachBucket(func(name []byte) error {
			sb := root.Bucket(name)
			var stale [][]byte
			total := 0
			err := sb.ForEach(func(k, v []byte) error {
				total++
				if len(v) < 8 || binary.BigEndian.Uint64(v) < cutoff {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range stale {
				if err := sb.Delete(k); err != nil {
					return err
				}
			}
			n += len(stale)
			if total == len(stale) {
				empty = append(empty, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range empty {
			if err := root.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("warmcache: purge: %w", err)
	}
	return n, nil
}

// Close closes the bbolt file.
func (b *Bolt) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
