// Package report renders retention statistics and store summaries for the
// terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/cohort/internal/retention"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	rateStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	noDataStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	monthStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	weekdayStyle = lipgloss.NewStyle().Faint(true)
)

// RenderStats renders the per-period retention block. An empty cohort still
// shows the raw counts, followed by the skip notice instead of a rate.
func RenderStats(s retention.Stats) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Period: %s", s.Period)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(fmt.Sprintf("Clients at period start: %d", s.CohortSize)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(fmt.Sprintf("Clients left: %d", s.Churned)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(fmt.Sprintf("Clients new: %d", s.NewClients)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(fmt.Sprintf("Transactions in period: %d", s.Transactions)))
	b.WriteByte('\n')

	if !s.HasCohort {
		b.WriteString(noDataStyle.Render("No clients at period start. Maybe no data? Skipping period."))
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteString(rateStyle.Render(fmt.Sprintf("CRR: %.2f%%", s.Rate*100)))
	b.WriteByte('\n')
	return b.String()
}

// MonthHeading renders the "March 2024" heading used between monthly steps.
func MonthHeading(t time.Time) string {
	return monthStyle.Render(fmt.Sprintf("%s %d", t.Month(), t.Year()))
}

// StoreInfo summarizes one record store for db-info output.
type StoreInfo struct {
	Count    int
	Earliest time.Time
	Latest   time.Time
	HasRange bool
}

const infoTimeLayout = "2006-01-02 15:04:05"

// RenderDBInfo renders counts and timestamp ranges of both stores.
func RenderDBInfo(transactions, clients StoreInfo) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(fmt.Sprintf("Transactions count: %d", transactions.Count)))
	b.WriteByte('\n')
	if transactions.HasRange {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Transactions closed at min/max: %s / %s",
			transactions.Earliest.Format(infoTimeLayout), transactions.Latest.Format(infoTimeLayout))))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')

	b.WriteString(labelStyle.Render(fmt.Sprintf("Clients count: %d", clients.Count)))
	b.WriteByte('\n')
	if clients.HasRange {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Clients activated at min/max: %s / %s",
			clients.Earliest.Format(infoTimeLayout), clients.Latest.Format(infoTimeLayout))))
		b.WriteByte('\n')
	}

	return b.String()
}
