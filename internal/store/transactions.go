package store

import (
	"fmt"
	"time"

	"github.com/lepinkainen/cohort/internal/poster"
)

// TransactionStore is the durable, id-deduplicated transaction collection.
type TransactionStore struct {
	db *DB
}

// NewTransactionStore returns the transaction store backed by db.
func NewTransactionStore(db *DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Merge upserts the batch into the store and returns the full resulting
// collection, ordered by id. For ids present both in the store and the batch
// the batch record wins. An empty batch reloads whatever is stored; if the
// store is also empty, Merge returns ErrNothingStored.
func (s *TransactionStore) Merge(batch []poster.Transaction) ([]poster.Transaction, error) {
	if len(batch) > 0 {
		tx, err := s.db.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.Prepare(`INSERT INTO transactions (id, client_id, closed_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET client_id = excluded.client_id, closed_at = excluded.closed_at`)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range batch {
			if _, err := stmt.Exec(rec.ID, rec.ClientID, rec.ClosedAt.Format(timeLayout)); err != nil {
				return nil, fmt.Errorf("failed to upsert transaction %d: %w", rec.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction batch: %w", err)
		}
	}

	return s.loadAll()
}

func (s *TransactionStore) loadAll() ([]poster.Transaction, error) {
	rows, err := s.db.db.Query("SELECT id, client_id, closed_at FROM transactions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []poster.Transaction
	for rows.Next() {
		var rec poster.Transaction
		var closedAt string
		if err := rows.Scan(&rec.ID, &rec.ClientID, &closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		rec.ClosedAt, err = time.Parse(timeLayout, closedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt closed_at for transaction %d: %w", rec.ID, err)
		}
		txs = append(txs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}

	if len(txs) == 0 {
		return nil, ErrNothingStored
	}
	return txs, nil
}

// Count returns the number of stored transactions.
func (s *TransactionStore) Count() (int, error) {
	return s.db.count("transactions")
}

// ClosedRange returns the earliest and latest close timestamps, with ok false
// when the store is empty.
func (s *TransactionStore) ClosedRange() (earliest, latest time.Time, ok bool, err error) {
	minVal, maxVal, ok, err := s.db.timeRange("transactions", "closed_at")
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	earliest, err = time.Parse(timeLayout, minVal)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("corrupt closed_at minimum: %w", err)
	}
	latest, err = time.Parse(timeLayout, maxVal)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("corrupt closed_at maximum: %w", err)
	}
	return earliest, latest, true, nil
}
