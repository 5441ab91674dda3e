package report

import (
	"fmt"
	"strings"
	"time"
)

// calendarWidth is the width of a Monday-first month grid: seven two-digit
// day cells separated by single spaces.
const calendarWidth = 20

// RenderCalendar renders a month as a Monday-first calendar grid.
func RenderCalendar(year int, month time.Month) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", month, year)
	pad := (calendarWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(monthStyle.Render(strings.Repeat(" ", pad) + title))
	b.WriteByte('\n')
	b.WriteString(weekdayStyle.Render("Mo Tu We Th Fr Sa Su"))
	b.WriteByte('\n')

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	// time.Weekday is Sunday-based; shift to Monday-first columns.
	col := (int(first.Weekday()) + 6) % 7

	cells := make([]string, 0, 7)
	for i := 0; i < col; i++ {
		cells = append(cells, "  ")
	}
	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, fmt.Sprintf("%2d", day))
		col++
		if col == 7 {
			b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
			b.WriteByte('\n')
			cells = cells[:0]
			col = 0
		}
	}
	if len(cells) > 0 {
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteByte('\n')
	}

	return b.String()
}
