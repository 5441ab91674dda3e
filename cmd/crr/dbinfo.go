package crr

import (
	"fmt"

	"github.com/lepinkainen/cohort/internal/report"
	"github.com/lepinkainen/cohort/internal/store"
)

// RunDBInfo prints counts and timestamp ranges of the cached stores.
func RunDBInfo(dbFile string) error {
	db, err := store.Open(dbFile)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	txStore := store.NewTransactionStore(db)
	txCount, err := txStore.Count()
	if err != nil {
		return err
	}
	txEarliest, txLatest, txOK, err := txStore.ClosedRange()
	if err != nil {
		return err
	}

	clStore := store.NewClientStore(db)
	clCount, err := clStore.Count()
	if err != nil {
		return err
	}
	clEarliest, clLatest, clOK, err := clStore.ActivatedRange()
	if err != nil {
		return err
	}

	fmt.Print(report.RenderDBInfo(
		report.StoreInfo{Count: txCount, Earliest: txEarliest, Latest: txLatest, HasRange: txOK},
		report.StoreInfo{Count: clCount, Earliest: clEarliest, Latest: clLatest, HasRange: clOK},
	))
	return nil
}
