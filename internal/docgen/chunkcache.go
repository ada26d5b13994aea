package docgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var chunkCacheBucket = []byte("chunks")

// ChunkCache is a content-addressed cache of generated chunk text, keyed by
// (model, redacted chunk text). It sits in front of the Router: a hit skips
// the backend call for that one chunk entirely. It is purely a speed
// optimization layered on top of the file-level Manifest cache, never a
// substitute for it.
type ChunkCache struct {
	db *bolt.DB
}

// OpenChunkCache opens (creating if absent) the bbolt database at path.
func OpenChunkCache(path string) (*ChunkCache, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("open chunk cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(chunkCacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init chunk cache bucket: %w", err)
	}

	return &ChunkCache{db: db}, nil
}

// ChunkCacheKey derives the cache key for a (model, redacted chunk text) pair.
func ChunkCacheKey(model, redactedChunkText string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + redactedChunkText))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached generated text for key, if present.
func (c *ChunkCache) Get(key string) (string, bool) {
	var value string
	var found bool

	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(chunkCacheBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})

	return value, found
}

// Put stores the generated text for key.
func (c *ChunkCache) Put(key, generatedText string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(chunkCacheBucket)
		return b.Put([]byte(key), []byte(generatedText))
	})
}

// Close releases the underlying database handle.
func (c *ChunkCache) Close() error {
	return c.db.Close()
}
