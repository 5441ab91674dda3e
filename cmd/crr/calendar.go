package crr

import (
	"fmt"
	"time"

	"github.com/lepinkainen/cohort/internal/report"
)

// RunCalendar prints a Monday-first calendar for the month of date.
func RunCalendar(date time.Time) error {
	fmt.Print(report.RenderCalendar(date.Year(), date.Month()))
	return nil
}
