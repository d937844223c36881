package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"bindo/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{
			ItemName:    "Netflix",
			PeriodStart: date(2025, time.January, 15),
			PayDay:      date(2025, time.February, 15),
			Amount:      core.Money{Cents: 1299},
		},
		{
			ItemName:    "Rent, downtown",
			PeriodStart: date(2025, time.January, 1),
			PayDay:      date(2025, time.February, 1),
			Amount:      core.Money{Cents: 95000},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (header + 2 rows)", len(records))
	}

	want := [][]string{
		{"item", "period_start", "pay_day", "amount"},
		{"Netflix", "2025-01-15", "2025-02-15", "12.99"},
		{"Rent, downtown", "2025-01-01", "2025-02-01", "950.00"},
	}
	for i, rec := range records {
		for j, field := range rec {
			if field != want[i][j] {
				t.Errorf("records[%d][%d] = %q, want %q", i, j, field, want[i][j])
			}
		}
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want header only", len(records))
	}
}
