package store

import (
	"fmt"
	"time"

	"github.com/lepinkainen/cohort/internal/poster"
)

// ClientStore is the durable, id-deduplicated client collection.
type ClientStore struct {
	db *DB
}

// NewClientStore returns the client store backed by db.
func NewClientStore(db *DB) *ClientStore {
	return &ClientStore{db: db}
}

// Merge upserts the batch into the store and returns the full resulting
// collection, ordered by id. Same contract as TransactionStore.Merge.
func (s *ClientStore) Merge(batch []poster.ClientInfo) ([]poster.ClientInfo, error) {
	if len(batch) > 0 {
		tx, err := s.db.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.Prepare(`INSERT INTO clients (id, activated_at) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET activated_at = excluded.activated_at`)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range batch {
			if _, err := stmt.Exec(rec.ID, rec.ActivatedAt.Format(timeLayout)); err != nil {
				return nil, fmt.Errorf("failed to upsert client %d: %w", rec.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit client batch: %w", err)
		}
	}

	return s.loadAll()
}

func (s *ClientStore) loadAll() ([]poster.ClientInfo, error) {
	rows, err := s.db.db.Query("SELECT id, activated_at FROM clients ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []poster.ClientInfo
	for rows.Next() {
		var rec poster.ClientInfo
		var activatedAt string
		if err := rows.Scan(&rec.ID, &activatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		rec.ActivatedAt, err = time.Parse(timeLayout, activatedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt activated_at for client %d: %w", rec.ID, err)
		}
		clients = append(clients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client rows: %w", err)
	}

	if len(clients) == 0 {
		return nil, ErrNothingStored
	}
	return clients, nil
}

// Count returns the number of stored clients.
func (s *ClientStore) Count() (int, error) {
	return s.db.count("clients")
}

// ActivatedRange returns the earliest and latest activation timestamps, with
// ok false when the store is empty.
func (s *ClientStore) ActivatedRange() (earliest, latest time.Time, ok bool, err error) {
	minVal, maxVal, ok, err := s.db.timeRange("clients", "activated_at")
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	earliest, err = time.Parse(timeLayout, minVal)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("corrupt activated_at minimum: %w", err)
	}
	latest, err = time.Parse(timeLayout, maxVal)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("corrupt activated_at maximum: %w", err)
	}
	return earliest, latest, true, nil
}
