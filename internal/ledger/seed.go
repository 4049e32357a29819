package ledger

import "bilancio/internal/core"

// seedPoints is the starting balance for a first-run guest.
const seedPoints = 150

// seedTransactions is the demonstration dataset shown to a first-run guest
// so the dashboard is never empty. Signed-in identities never receive it.
func seedTransactions(ownerID string) []core.Transaction {
	return []core.Transaction{
		{
			ID:       "seed-1",
			Type:     core.Expense,
			Amount:   core.Money{Cents: 4550},
			Category: "food",
			Notes:    "Lunch at restaurant",
			Date:     core.NewDate(2024, 12, 15),
			OwnerID:  ownerID,
		},
		{
			ID:       "seed-2",
			Type:     core.Income,
			Amount:   core.Money{Cents: 350000},
			Category: "salary",
			Notes:    "Monthly salary",
			Date:     core.NewDate(2024, 12, 1),
			OwnerID:  ownerID,
		},
		{
			ID:       "seed-3",
			Type:     core.Expense,
			Amount:   core.Money{Cents: 12000},
			Category: "transport",
			Notes:    "Gas and parking",
			Date:     core.NewDate(2024, 12, 14),
			OwnerID:  ownerID,
		},
		{
			ID:       "seed-4",
			Type:     core.Expense,
			Amount:   core.Money{Cents: 2500},
			Category: "coffee",
			Notes:    "Coffee shop",
			Date:     core.NewDate(2024, 12, 13),
			OwnerID:  ownerID,
		},
		{
			ID:       "seed-5",
			Type:     core.Expense,
			Amount:   core.Money{Cents: 20000},
			Category: "shopping",
			Notes:    "Clothes shopping",
			Date:     core.NewDate(2024, 12, 12),
			OwnerID:  ownerID,
		},
	}
}

func seedGoals(ownerID string) []core.Goal {
	return []core.Goal{
		{
			ID:           "seed-goal-1",
			Title:        "Emergency Fund",
			TargetAmount: core.Money{Cents: 1000000},
			Progress:     core.Money{Cents: 650000},
			Deadline:     core.NewDate(2025, 6, 1),
			OwnerID:      ownerID,
		},
		{
			ID:           "seed-goal-2",
			Title:        "Vacation Fund",
			TargetAmount: core.Money{Cents: 300000},
			Progress:     core.Money{Cents: 120000},
			Deadline:     core.NewDate(2025, 7, 15),
			OwnerID:      ownerID,
		},
	}
}
