// Package crr drives the retention report: it refreshes the local record
// stores from the Poster API when asked, runs the retention calculation per
// period and prints the results.
package crr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/cohort/internal/period"
	"github.com/lepinkainen/cohort/internal/poster"
	"github.com/lepinkainen/cohort/internal/report"
	"github.com/lepinkainen/cohort/internal/retention"
	"github.com/lepinkainen/cohort/internal/store"
)

// Options carries the settings shared by the report commands.
type Options struct {
	APIKey  string
	BaseURL string
	DBFile  string
	PerPage int
	Refresh bool
}

// RunPeriod computes retention for the single exact period [start, end).
func RunPeriod(start, end time.Time, opts Options) error {
	periods, err := period.Exact(start, end)
	if err != nil {
		return err
	}
	return run(periods, false, opts)
}

// RunStep computes retention for [start, end) in calendar-month or
// fixed-day steps. The final step may overshoot end.
func RunStep(start, end time.Time, monthly bool, stepDays int, opts Options) error {
	var (
		periods []period.Period
		err     error
	)
	if monthly {
		periods, err = period.Monthly(start, end)
	} else {
		periods, err = period.Daily(start, end, stepDays)
	}
	if err != nil {
		return err
	}
	return run(periods, monthly, opts)
}

func run(periods []period.Period, showMonth bool, opts Options) error {
	d, err := newDriver(opts)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	ctx := context.Background()
	for _, p := range periods {
		if showMonth {
			fmt.Println(report.MonthHeading(p.Start))
		}
		stats, err := d.SyncAndCompute(ctx, p)
		if err != nil {
			return err
		}
		fmt.Println(report.RenderStats(stats))
	}
	return nil
}

// driver owns the store handles and, when refreshing, the API client.
type driver struct {
	opts   Options
	db     *store.DB
	txs    *store.TransactionStore
	cls    *store.ClientStore
	client *poster.Client
}

func newDriver(opts Options) (*driver, error) {
	if opts.Refresh && opts.APIKey == "" {
		return nil, fmt.Errorf("poster API key is required when refreshing data (provide via --api-key flag or poster.apikey in config)")
	}

	db, err := store.Open(opts.DBFile)
	if err != nil {
		return nil, err
	}

	d := &driver{
		opts: opts,
		db:   db,
		txs:  store.NewTransactionStore(db),
		cls:  store.NewClientStore(db),
	}

	if opts.Refresh {
		var clientOpts []poster.Option
		if opts.BaseURL != "" {
			clientOpts = append(clientOpts, poster.WithBaseURL(opts.BaseURL))
		}
		d.client = poster.New(opts.APIKey, clientOpts...)
	}

	return d, nil
}

func (d *driver) Close() error {
	return d.db.Close()
}

// SyncAndCompute optionally refreshes both stores for the period, then runs
// the retention calculation over the full cached collections. Transactions
// are fetched from the start of the lookback window so the cohort
// classification has the data it needs.
func (d *driver) SyncAndCompute(ctx context.Context, p period.Period) (retention.Stats, error) {
	var (
		txBatch []poster.Transaction
		clBatch []poster.ClientInfo
	)

	if d.client != nil {
		fetchFrom := p.Lookback().Start
		slog.Info("Retrieving transactions", "from", fetchFrom.Format("2006-01-02"), "to", p.End.Format("2006-01-02"))

		var err error
		txBatch, err = d.client.Transactions(ctx, fetchFrom, p.End, d.opts.PerPage).Collect()
		if err != nil {
			return retention.Stats{}, err
		}

		slog.Info("Retrieving clients")
		clBatch, err = d.client.GetClients(ctx)
		if err != nil {
			return retention.Stats{}, err
		}
	}

	txs, err := d.txs.Merge(txBatch)
	if err != nil {
		return retention.Stats{}, err
	}
	clients, err := d.cls.Merge(clBatch)
	if err != nil {
		return retention.Stats{}, err
	}

	slog.Debug("Computing retention", "period", p.String(), "transactions", len(txs), "clients", len(clients))
	return retention.Compute(clients, txs, p)
}
