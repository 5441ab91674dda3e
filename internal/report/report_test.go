package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/cohort/internal/period"
	"github.com/lepinkainen/cohort/internal/retention"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenderStats(t *testing.T) {
	stats := retention.Stats{
		Period:       period.Period{Start: date(2024, 2, 1), End: date(2024, 3, 1)},
		CohortSize:   3,
		Churned:      2,
		NewClients:   1,
		Transactions: 2,
		Rate:         1.0 / 3.0,
		HasCohort:    true,
	}

	out := RenderStats(stats)

	assert.Contains(t, out, "Period: [2024-02-01, 2024-03-01)")
	assert.Contains(t, out, "Clients at period start: 3")
	assert.Contains(t, out, "Clients left: 2")
	assert.Contains(t, out, "Clients new: 1")
	assert.Contains(t, out, "Transactions in period: 2")
	assert.Contains(t, out, "CRR: 33.33%")
	assert.NotContains(t, out, "Skipping period")
}

func TestRenderStatsNoCohort(t *testing.T) {
	stats := retention.Stats{
		Period:       period.Period{Start: date(2024, 2, 1), End: date(2024, 3, 1)},
		NewClients:   5,
		Transactions: 9,
	}

	out := RenderStats(stats)

	assert.Contains(t, out, "Clients at period start: 0")
	assert.Contains(t, out, "Transactions in period: 9")
	assert.Contains(t, out, "No clients at period start. Maybe no data? Skipping period.")
	assert.NotContains(t, out, "CRR:")
}

func TestMonthHeading(t *testing.T) {
	out := MonthHeading(date(2024, 3, 1))
	assert.Contains(t, out, "March 2024")
}

func TestRenderDBInfo(t *testing.T) {
	out := RenderDBInfo(
		StoreInfo{
			Count:    120,
			Earliest: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
			Latest:   time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC),
			HasRange: true,
		},
		StoreInfo{
			Count:    80,
			Earliest: time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC),
			Latest:   time.Date(2024, 2, 20, 10, 15, 0, 0, time.UTC),
			HasRange: true,
		},
	)

	assert.Contains(t, out, "Transactions count: 120")
	assert.Contains(t, out, "Transactions closed at min/max: 2024-01-05 09:00:00 / 2024-03-01 23:59:59")
	assert.Contains(t, out, "Clients count: 80")
	assert.Contains(t, out, "Clients activated at min/max: 2023-06-01 08:00:00 / 2024-02-20 10:15:00")
}

func TestRenderDBInfoEmptyStores(t *testing.T) {
	out := RenderDBInfo(StoreInfo{}, StoreInfo{})

	assert.Contains(t, out, "Transactions count: 0")
	assert.Contains(t, out, "Clients count: 0")
	assert.NotContains(t, out, "min/max")
}
