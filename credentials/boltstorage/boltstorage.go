package boltstorage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/fogeapi-client/credentials"
	bolt "go.etcd.io/bbolt"
)

var _ credentials.Storage = (*Store)(nil)

const defaultBucket = "credentials"

// Store wraps BoltDB; each SetAll or RemoveAll is a single transaction.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, bolt.ErrDatabaseNotOpen
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	return value, found, err
}

func (s *Store) SetAll(_ context.Context, entries map[string]string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for k, v := range entries {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RemoveAll(_ context.Context, keys ...string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the database file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
