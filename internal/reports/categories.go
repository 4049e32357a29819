// Package reports builds exportable views over the ledger: the category
// breakdown and the PDF statement.
package reports

import (
	"sort"

	"bilancio/internal/core"
)

// CategoryRow is one line of the expense breakdown. Share is the fraction of
// total expenses, in [0, 1].
type CategoryRow struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Share    float64    `json:"share"`
}

// CategoryBreakdown turns the aggregated expense map into rows sorted by
// amount descending, ties broken by category name so output is stable.
func CategoryBreakdown(byCategory map[string]core.Money) []CategoryRow {
	var total int64
	for _, m := range byCategory {
		total += m.Cents
	}

	rows := make([]CategoryRow, 0, len(byCategory))
	for category, amount := range byCategory {
		row := CategoryRow{Category: category, Amount: amount}
		if total > 0 {
			row.Share = float64(amount.Cents) / float64(total)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount.Cents != rows[j].Amount.Cents {
			return rows[i].Amount.Cents > rows[j].Amount.Cents
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
