// Package retention computes the cohort retention rate (CRR) for a period.
//
// The cohort at period start is defined as the clients who activated during
// the lookback window immediately preceding the period, not as all clients
// active before the period. That is the intended business definition, carried
// over from the reporting this tool replaces.
package retention

import (
	"github.com/lepinkainen/cohort/internal/period"
	"github.com/lepinkainen/cohort/internal/poster"
)

// Stats holds the retention figures for one period.
type Stats struct {
	Period period.Period

	// CohortSize is the number of clients activated in the lookback window.
	CohortSize int
	// Churned is the number of cohort clients with no transaction in the period.
	Churned int
	// NewClients is the number of clients activated inside the period.
	NewClients int
	// Transactions is the number of transactions closed inside the period.
	Transactions int

	// Rate is (CohortSize - Churned) / CohortSize. Only meaningful when
	// HasCohort is true; an empty cohort means there is no rate to report.
	Rate      float64
	HasCohort bool
}

// Retained returns the number of cohort clients who made a purchase in the
// period.
func (s Stats) Retained() int {
	return s.CohortSize - s.Churned
}

// Compute classifies the full client and transaction collections against the
// period and derives the retention rate. It is pure and safe for concurrent
// use over independent inputs.
func Compute(clients []poster.ClientInfo, txs []poster.Transaction, p period.Period) (Stats, error) {
	if !p.Valid() {
		return Stats{}, period.ErrInvalidPeriod
	}

	stats := Stats{Period: p}
	lookback := p.Lookback()

	buyers := make(map[int64]struct{})
	for _, tx := range txs {
		if p.Contains(tx.ClosedAt) {
			stats.Transactions++
			buyers[tx.ClientID] = struct{}{}
		}
	}

	for _, cl := range clients {
		if lookback.Contains(cl.ActivatedAt) {
			stats.CohortSize++
			if _, bought := buyers[cl.ID]; !bought {
				stats.Churned++
			}
		}
		if p.Contains(cl.ActivatedAt) {
			stats.NewClients++
		}
	}

	if stats.CohortSize > 0 {
		stats.HasCohort = true
		stats.Rate = float64(stats.Retained()) / float64(stats.CohortSize)
	}

	return stats, nil
}
