package poster

import (
	"context"
	"time"
)

// TransactionIter walks the paginated transaction listing lazily: the next
// page is requested only after the consumer has drained the current one. The
// iterator is single-pass and not restartable; every call to Transactions
// starts fresh against the remote side.
//
// Usage follows the sql.Rows pattern:
//
//	it := client.Transactions(ctx, from, to, 500)
//	for it.Next() {
//		tx := it.Tx()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type TransactionIter struct {
	client   *Client
	ctx      context.Context
	dateFrom time.Time
	dateTo   time.Time

	page    int
	perPage int

	buf  []Transaction
	idx  int
	cur  Transaction
	done bool
	err  error
}

// Transactions returns a lazy iterator over all transactions closed inside
// the given date range, starting from page 1. perPage <= 0 selects the
// default page size.
func (c *Client) Transactions(ctx context.Context, dateFrom, dateTo time.Time, perPage int) *TransactionIter {
	return c.TransactionsFrom(ctx, dateFrom, dateTo, 1, perPage)
}

// TransactionsFrom is Transactions with a caller-supplied starting page.
func (c *Client) TransactionsFrom(ctx context.Context, dateFrom, dateTo time.Time, fromPage, perPage int) *TransactionIter {
	if fromPage < 1 {
		fromPage = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &TransactionIter{
		client:   c,
		ctx:      ctx,
		dateFrom: dateFrom,
		dateTo:   dateTo,
		page:     fromPage,
		perPage:  perPage,
	}
}

// Next advances to the next transaction, fetching further pages on demand.
// It returns false when the listing is exhausted or a fetch failed; check Err
// afterwards.
func (it *TransactionIter) Next() bool {
	if it.err != nil {
		return false
	}

	for it.idx >= len(it.buf) {
		if it.done {
			return false
		}

		pg, err := it.client.GetTransactionsPage(it.ctx, it.dateFrom, it.dateTo, it.page, it.perPage)
		if err != nil {
			it.err = err
			return false
		}

		// A short page signals the last page. The server may clamp
		// per_page, so compare against the echoed value, not the
		// requested one.
		if pg.Page.Count < pg.Page.PerPage || pg.Page.PerPage == 0 || len(pg.Data) == 0 {
			it.done = true
		}
		it.page = pg.Page.Page + 1
		if pg.Page.PerPage > 0 {
			it.perPage = pg.Page.PerPage
		}
		it.buf = pg.Data
		it.idx = 0

		if len(it.buf) == 0 {
			return false
		}
	}

	it.cur = it.buf[it.idx]
	it.idx++
	return true
}

// Tx returns the transaction the iterator currently points at. Only valid
// after a Next call that returned true.
func (it *TransactionIter) Tx() Transaction {
	return it.cur
}

// Err returns the first error encountered while fetching pages, if any.
func (it *TransactionIter) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *TransactionIter) Collect() ([]Transaction, error) {
	var txs []Transaction
	for it.Next() {
		txs = append(txs, it.Tx())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}
