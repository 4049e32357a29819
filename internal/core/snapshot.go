package core

// CategoryAmount is an expense total aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Snapshot is a point-in-time aggregation of the ledger. It is derived from
// the live transaction list on every read and never persisted.
type Snapshot struct {
	TotalIncome        Money
	TotalExpense       Money
	Balance            Money
	ExpensesByCategory map[string]Money
	SavingsRate        float64
	Points             int64
	HideBalance        bool
}

// Aggregate computes income/expense totals, per-category expense sums, and
// the savings rate over a transaction list.
func Aggregate(transactions []Transaction) Snapshot {
	snap := Snapshot{
		ExpensesByCategory: make(map[string]Money),
	}
	for _, t := range transactions {
		switch t.Type {
		case Income:
			snap.TotalIncome.Cents += t.Amount.Cents
		case Expense:
			snap.TotalExpense.Cents += t.Amount.Cents
			byCat := snap.ExpensesByCategory[t.Category]
			byCat.Cents += t.Amount.Cents
			snap.ExpensesByCategory[t.Category] = byCat
		}
	}
	snap.Balance.Cents = snap.TotalIncome.Cents - snap.TotalExpense.Cents
	if snap.TotalIncome.Cents > 0 {
		snap.SavingsRate = float64(snap.Balance.Cents) / float64(snap.TotalIncome.Cents)
	}
	return snap
}
