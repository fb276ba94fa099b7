package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const runBucketName = "runs"

// ErrRunNotFound is returned when a run ID is not in the database
var ErrRunNotFound = errors.New("run not found")

// DB defines the interface for database operations
type DB interface {
	// SaveRun saves a run to the database
	SaveRun(run *Run) error

	// GetRun retrieves a run by ID
	GetRun(id string) (*Run, error)

	// ListRuns returns all runs, newest first
	ListRuns() ([]*Run, error)

	// DeleteRun removes a run from the database
	DeleteRun(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveRun saves a run to the database
func (b *BoltDB) SaveRun(run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runBucketName)).Put([]byte(run.ID), data)
	})
}

// GetRun retrieves a run by ID
func (b *BoltDB) GetRun(id string) (*Run, error) {
	var run *Run
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(runBucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return json.Unmarshal(data, &run)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns all runs, newest first
func (b *BoltDB) ListRuns() ([]*Run, error) {
	runs := make([]*Run, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runBucketName)).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("unmarshaling run %s: %w", k, err)
			}
			runs = append(runs, &run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// DeleteRun removes a run from the database
func (b *BoltDB) DeleteRun(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runBucketName)).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
