package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/camden-git/familytreebackend/family"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "familyTree"
	treeKey    = "familyTreeData"
)

// BoltAdapter stores the tree as one JSON value in a bbolt bucket.
type BoltAdapter struct {
	db *bolt.DB
}

func OpenBoltAdapter(path string) (*BoltAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return &BoltAdapter{db: db}, nil
}

func (a *BoltAdapter) Load() (family.People, bool, error) {
	var data []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(treeKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read family tree: %w", err)
	}
	if data == nil {
		return nil, false, nil
	}
	people, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

func (a *BoltAdapter) Save(people family.People) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bucket.Put([]byte(treeKey), data)
	})
}

func (a *BoltAdapter) Clear() error {
	return a.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketName)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(bucketName))
	})
}

func (a *BoltAdapter) Close() error {
	return a.db.Close()
}
