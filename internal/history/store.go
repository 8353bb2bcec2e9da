// Package history keeps computed breakdowns as write-once snapshots. A stored
// breakdown is redisplayed verbatim, never re-derived from receipt data, so a
// later edit to the receipt cannot quietly rewrite who owed what.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

const bucketName = "breakdowns"

// ErrSnapshotNotFound is returned when no snapshot exists under the given ids
var ErrSnapshotNotFound = fmt.Errorf("snapshot not found")

// Snapshot is one stored breakdown
type Snapshot struct {
	ID        uuid.UUID        `json:"id"`
	ReceiptID uuid.UUID        `json:"receipt_id"`
	Breakdown *split.Breakdown `json:"breakdown"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store persists snapshots in a local bbolt file. Keys are
// "<receipt_id>/<snapshot_id>" so one receipt's history is a prefix scan.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the snapshot database at path
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBreakdown stores a breakdown verbatim and returns the new snapshot id
func (s *Store) SaveBreakdown(_ context.Context, receiptID uuid.UUID, b *split.Breakdown) (uuid.UUID, error) {
	snapshot := &Snapshot{
		ID:        uuid.New(),
		ReceiptID: receiptID,
		Breakdown: b,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshaling snapshot: %w", err)
		}
		return bucket.Put(key(receiptID, snapshot.ID), data)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return snapshot.ID, nil
}

// Get retrieves one snapshot
func (s *Store) Get(_ context.Context, receiptID, snapshotID uuid.UUID) (*Snapshot, error) {
	var snapshot *Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(key(receiptID, snapshotID))
		if data == nil {
			return ErrSnapshotNotFound
		}
		return json.Unmarshal(data, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListByReceipt returns all snapshots stored for a receipt
func (s *Store) ListByReceipt(_ context.Context, receiptID uuid.UUID) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()
		prefix := []byte(receiptID.String() + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var snapshot *Snapshot
			if err := json.Unmarshal(v, &snapshot); err != nil {
				return fmt.Errorf("unmarshaling snapshot %s: %w", k, err)
			}
			snapshots = append(snapshots, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func key(receiptID, snapshotID uuid.UUID) []byte {
	return []byte(receiptID.String() + "/" + snapshotID.String())
}
