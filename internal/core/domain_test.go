package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "1",
		Type:     Expense,
		Amount:   Money{Cents: 4550},
		Category: "food",
		Date:     NewDate(2024, 12, 15),
		OwnerID:  "owner",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 100}, Category: "c", Date: NewDate(2024, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 0}, Category: "c", Date: NewDate(2024, 1, 1)},
		{Type: Expense, Amount: Money{Cents: -100}, Category: "c", Date: NewDate(2024, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 100}, Category: "  ", Date: NewDate(2024, 1, 1)},
		{Type: Income, Amount: Money{Cents: 100}, Category: "c", Date: Date{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalCompletionRatio(t *testing.T) {
	cases := []struct {
		progress int64
		target   int64
		want     float64
	}{
		{6500_00, 10000_00, 0.65},
		{0, 10000_00, 0},
		{12000_00, 10000_00, 1}, // capped at 1 even when progress overshoots
	}
	for i, tc := range cases {
		g := Goal{Progress: Money{Cents: tc.progress}, TargetAmount: Money{Cents: tc.target}}
		if got := g.CompletionRatio(); got != tc.want {
			t.Fatalf("case %d got %v want %v", i, got, tc.want)
		}
	}
}

func TestChallengeValidate(t *testing.T) {
	good := Challenge{
		ID:           "1",
		Title:        "No coffee week",
		TargetAmount: Money{Cents: 2500},
		Period:       PeriodWeekly,
		StartDate:    NewDate(2025, 1, 1),
		EndDate:      NewDate(2025, 1, 8),
		CreatedAt:    time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Period = "fortnightly"
	if err := bad.Validate(); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	bad = good
	bad.EndDate = NewDate(2024, 12, 31)
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 12, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-12-15"` {
		t.Fatalf("got %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}

func TestDateUnmarshalRFC3339(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-12-15T08:30:00Z"`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.Equal(NewDate(2024, 12, 15).Time) {
		t.Fatalf("expected date truncated to midnight, got %v", d)
	}
	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Fatal("expected error")
	}
}
