package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kadapaimran/grocery-storefront/pkg/config"
)

// Well-known keys. Each state owner reads its key once at startup and writes
// it back after every mutation.
const (
	KeyCartItems      = "cart_items"
	KeyPaymentHistory = "payment_history"
	KeySession        = "session"
)

var bucketName = []byte("storefront")

// ErrNotFound signals that no value has been stored under the key yet.
var ErrNotFound = errors.New("localstore: key not found")

// Store is the persistence port for durable client-side state. Values are
// JSON blobs; last write wins.
type Store interface {
	Save(key string, value any) error
	Load(key string, dest any) error
	Delete(key string) error
	Close() error
}

// BoltStore persists keys to a single-file bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// Open creates or opens the backing file and ensures the bucket exists.
func Open(cfg config.LocalStoreConfig) (*BoltStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("local store path is required")
	}
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), payload)
	})
}

func (s *BoltStore) Load(key string, dest any) error {
	var payload []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(bucketName).Get([]byte(key)); raw != nil {
			payload = append(payload, raw...)
		}
		return nil
	}); err != nil {
		return err
	}
	if payload == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
