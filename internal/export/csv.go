// Package export renders merged occurrence data as CSV and iCalendar
// documents for use outside the app.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"bindo/internal/core"
)

// Row is one exported payment: the item it belongs to plus the covered
// period and amount.
type Row struct {
	ItemName    string
	PeriodStart time.Time
	PayDay      time.Time
	Amount      core.Money
}

var csvHeader = []string{"item", "period_start", "pay_day", "amount"}

// WriteCSV writes rows in the order given, one line per payment.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ItemName,
			r.PeriodStart.Format(time.DateOnly),
			r.PayDay.Format(time.DateOnly),
			r.Amount.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row for %q: %w", r.ItemName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
