package reports

import (
	"bytes"
	"math"
	"testing"

	"bilancio/internal/core"
)

func TestCategoryBreakdownSortsAndShares(t *testing.T) {
	rows := CategoryBreakdown(map[string]core.Money{
		"food":      {Cents: 3000},
		"transport": {Cents: 1000},
		"coffee":    {Cents: 1000},
	})

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Category != "food" {
		t.Errorf("first row = %q, want food", rows[0].Category)
	}
	// Equal amounts fall back to name order.
	if rows[1].Category != "coffee" || rows[2].Category != "transport" {
		t.Errorf("tie order = %q, %q, want coffee, transport", rows[1].Category, rows[2].Category)
	}
	if math.Abs(rows[0].Share-0.6) > 1e-9 {
		t.Errorf("food share = %f, want 0.6", rows[0].Share)
	}

	var total float64
	for _, r := range rows {
		total += r.Share
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("shares sum to %f, want 1", total)
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	if rows := CategoryBreakdown(nil); len(rows) != 0 {
		t.Errorf("rows = %v, want empty", rows)
	}
}

func TestWriteStatementPDF(t *testing.T) {
	st := Statement{
		OwnerID: "device-12345678",
		From:    core.NewDate(2024, 12, 1),
		To:      core.NewDate(2024, 12, 31),
		Transactions: []core.Transaction{
			{
				ID:       "seed-1",
				Type:     core.Expense,
				Amount:   core.Money{Cents: 4550},
				Category: "food",
				Notes:    "Lunch at restaurant",
				Date:     core.NewDate(2024, 12, 15),
			},
			{
				ID:       "seed-2",
				Type:     core.Income,
				Amount:   core.Money{Cents: 350000},
				Category: "salary",
				Date:     core.NewDate(2024, 12, 1),
			},
		},
		TotalIncome:  core.Money{Cents: 350000},
		TotalExpense: core.Money{Cents: 4550},
		Balance:      core.Money{Cents: 345450},
	}

	var buf bytes.Buffer
	if err := WriteStatementPDF(&buf, st); err != nil {
		t.Fatalf("WriteStatementPDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic, got %q", buf.Bytes()[:8])
	}
}
