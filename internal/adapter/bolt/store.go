// Package bolt persists model snapshots in a bbolt file so a restarted
// service restores its fits instead of retraining.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
)

var (
	bucketSnapshots = []byte("snapshots")
	bucketHistory   = []byte("history")
)

// DefaultHistory is how many superseded snapshots are kept per hazard.
const DefaultHistory = 5

// Store implements model.SnapshotStore.
type Store struct {
	db      *bbolt.DB
	history int
}

// Open opens or creates the snapshot file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db, history: DefaultHistory}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the latest snapshot for a hazard.
func (s *Store) Load(ctx context.Context, hazard domain.Hazard) (model.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, false, err
	}
	var (
		snap  model.Snapshot
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Get([]byte(hazard))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &snap)
	})
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("load %s snapshot: %w", hazard, err)
	}
	return snap, found, nil
}

// Save writes snap as the hazard's latest snapshot. The one it replaces
// moves to history, which is pruned to the newest entries.
func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Hazard == "" {
		return errors.New("save snapshot: hazard is required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", snap.Hazard, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		latest := tx.Bucket(bucketSnapshots)
		key := []byte(snap.Hazard)
		if prev := latest.Get(key); prev != nil {
			if err := s.archive(tx.Bucket(bucketHistory), snap.Hazard, prev); err != nil {
				return err
			}
		}
		return latest.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", snap.Hazard, err)
	}
	return nil
}

// History lists archived snapshot times for a hazard, oldest first.
func (s *Store) History(ctx context.Context, hazard domain.Hazard) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		prefix := historyPrefix(hazard)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var snap model.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, snap.TrainedAt)
		}
		return nil
	})
	return out, err
}

func (s *Store) archive(b *bbolt.Bucket, hazard domain.Hazard, data []byte) error {
	var prev model.Snapshot
	if err := json.Unmarshal(data, &prev); err != nil {
		return fmt.Errorf("decode previous snapshot: %w", err)
	}
	prefix := historyPrefix(hazard)
	key := fmt.Appendf(prefix, "%020d", prev.TrainedAt.UnixNano())
	if err := b.Put(key, data); err != nil {
		return err
	}

	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, bytes.Clone(k))
	}
	for len(keys) > s.history {
		if err := b.Delete(keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}
	return nil
}

func historyPrefix(hazard domain.Hazard) []byte {
	return []byte(string(hazard) + ":")
}
