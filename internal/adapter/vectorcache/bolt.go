package vectorcache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"courserec/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyMeta       = []byte("cache_meta")
)

// BoltCache persists course vectors and the catalog fingerprint that
// produced them in a single BoltDB file. Vectors are keyed by catalog index
// so the stored order always matches the catalog order.
type BoltCache struct {
	db *bbolt.DB
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

// Load returns the persisted vectors in catalog order and their metadata.
// The boolean reports whether a cache exists at all. Unreadable or
// inconsistent state returns an error wrapping domain.ErrCacheCorrupt.
func (c *BoltCache) Load() ([][]float32, domain.CacheMeta, bool, error) {
	var meta domain.CacheMeta
	var vectors [][]float32
	found := false

	err := c.db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return nil
		}
		raw := mb.Get(keyMeta)
		if raw == nil {
			return nil
		}
		found = true

		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("%w: unreadable metadata: %v", domain.ErrCacheCorrupt, err)
		}

		vb := tx.Bucket(bucketVectors)
		if vb == nil {
			return fmt.Errorf("%w: vectors bucket missing", domain.ErrCacheCorrupt)
		}

		vectors = make([][]float32, 0, meta.Count)
		cur := vb.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if len(k) != 8 || int(binary.BigEndian.Uint64(k)) != len(vectors) {
				return fmt.Errorf("%w: vector keys out of sequence", domain.ErrCacheCorrupt)
			}
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("%w: unreadable vector %d: %v", domain.ErrCacheCorrupt, len(vectors), err)
			}
			if len(stored.Vector) != meta.Dimension {
				return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
					domain.ErrCacheCorrupt, len(vectors), len(stored.Vector), meta.Dimension)
			}
			vectors = append(vectors, stored.Vector)
		}

		if len(vectors) != meta.Count {
			return fmt.Errorf("%w: found %d vectors, metadata says %d",
				domain.ErrCacheCorrupt, len(vectors), meta.Count)
		}
		return nil
	})
	if err != nil {
		return nil, domain.CacheMeta{}, found, err
	}
	if !found {
		return nil, domain.CacheMeta{}, false, nil
	}
	return vectors, meta, true, nil
}

// Store replaces the persisted vectors and metadata in one transaction.
func (c *BoltCache) Store(vectors [][]float32, meta domain.CacheMeta) error {
	if len(vectors) != meta.Count {
		return fmt.Errorf("vector count mismatch: got %d vectors, metadata says %d", len(vectors), meta.Count)
	}
	for i, v := range vectors {
		if len(v) != meta.Dimension {
			return fmt.Errorf("vector %d dimension mismatch: expected %d, got %d", i, meta.Dimension, len(v))
		}
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		vb, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}

		for i, vector := range vectors {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			data, err := json.Marshal(storedVector{Vector: vector})
			if err != nil {
				return err
			}
			if err := vb.Put(key, data); err != nil {
				return err
			}
		}

		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			mb, err = tx.CreateBucket(bucketMeta)
			if err != nil {
				return err
			}
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return mb.Put(keyMeta, raw)
	})
}

// Clear removes all persisted artifacts, returning the cache to its absent
// state.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if err := tx.DeleteBucket(b); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
