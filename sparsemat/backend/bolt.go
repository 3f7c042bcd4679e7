package backend

import (
	"encoding/binary"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"
)

func init() {
	Register("bolt", NewBoltBackend)
}

// boltBucket is the single bucket holding all matrix cells.
var boltBucket = []byte("sparsemat")

// BoltBackend stores cells in a bbolt database living in a scratch file that
// is removed on Close. Keys are the 8-byte big-endian packed coordinate so
// bbolt's B+tree keeps them in coordinate order; values are 4-byte
// big-endian.
//
// Matrix state is process-private and discarded at the end of a run, so the
// database is opened with NoSync: there is nothing durability could protect.
//
// Deletion policy: physical removal via the bucket's Delete. Footprint is
// the database file size on disk, which only grows within a run.
type BoltBackend struct {
	db   *bolt.DB
	path string
}

// NewBoltBackend creates the scratch database under cfg.Path (the system
// temp directory when empty) and prepares the bucket. Nothing is left on
// disk if any step fails.
func NewBoltBackend(cfg Config) (Backend, error) {
	scratch, err := os.CreateTemp(cfg.Path, "sparsemat-*.db")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoltOpenFailed, err)
	}

	path := scratch.Name()
	if err = scratch.Close(); err != nil {
		os.Remove(path)

		return nil, fmt.Errorf("%w: %w", ErrBoltOpenFailed, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{NoSync: true})
	if err != nil {
		os.Remove(path)

		return nil, fmt.Errorf("%w: %q: %w", ErrBoltOpenFailed, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, bucketErr := tx.CreateBucketIfNotExists(boltBucket)

		return bucketErr
	})
	if err != nil {
		db.Close()
		os.Remove(path)

		return nil, fmt.Errorf("%w: %w", ErrBoltBucketCreateFailed, err)
	}

	return &BoltBackend{db: db, path: path}, nil
}

// encodeKey renders the packed coordinate big-endian so lexicographic bbolt
// order matches numeric key order.
func encodeKey(x, y uint32) []byte {
	var key [8]byte

	binary.BigEndian.PutUint64(key[:], packKey(x, y))

	return key[:]
}

// Put inserts or overwrites the value at (x, y) in one write transaction.
func (s *BoltBackend) Put(x, y, value uint32) error {
	var val [4]byte

	binary.BigEndian.PutUint32(val[:], value)

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(encodeKey(x, y), val[:])
	})
	if err != nil {
		return fmt.Errorf("%w: (%d,%d): %w", ErrBoltWriteFailed, x, y, err)
	}

	return nil
}

// Get returns the value at (x, y), or 0 when absent. An error is possible
// only on I/O failure, never for absence.
func (s *BoltBackend) Get(x, y uint32) (uint32, error) {
	var value uint32

	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(boltBucket).Get(encodeKey(x, y)); raw != nil {
			value = binary.BigEndian.Uint32(raw)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: (%d,%d): %w", ErrBoltReadFailed, x, y, err)
	}

	return value, nil
}

// Del physically removes (x, y); deleting an absent coordinate is a no-op in
// bbolt as well.
func (s *BoltBackend) Del(x, y uint32) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(encodeKey(x, y))
	})
	if err != nil {
		return fmt.Errorf("%w: (%d,%d): %w", ErrBoltDeleteFailed, x, y, err)
	}

	return nil
}

// Footprint reports the database file size. bbolt never shrinks its file
// within a run, so the figure is monotone.
func (s *BoltBackend) Footprint() uint64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}

	return uint64(info.Size())
}

// Close closes the database and removes the scratch file.
func (s *BoltBackend) Close() error {
	err := s.db.Close()

	if removeErr := os.Remove(s.path); removeErr != nil && err == nil {
		err = removeErr
	}

	return err
}
