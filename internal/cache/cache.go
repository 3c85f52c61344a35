// Package cache persists synthesized audio and timing across sessions so
// replaying a document does not re-run the provider. Entries are
// zstd-compressed gob blobs keyed by a content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// Store is a disk-backed cache of compressed blobs.
type Store struct {
	dir     string
	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open creates the cache directory if needed and prepares compression.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Store{dir: dir, encoder: encoder, decoder: decoder}, nil
}

// Key derives a stable cache key from the provider name and paragraph
// text.
func Key(provider, text string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the decompressed blob for key, or ErrMiss.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	compressed, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, err
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// Corrupted entry: drop it so the next Put heals the slot.
		os.Remove(s.path(key)) //nolint:errcheck
		return nil, ErrMiss
	}
	return data, nil
}

// Put compresses and stores a blob. The write goes through a temp file so
// a crash cannot leave a truncated entry behind.
func (s *Store) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	compressed := s.encoder.EncodeAll(data, nil)
	tmp, err := os.CreateTemp(s.dir, "put-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".zst")
}
