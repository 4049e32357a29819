package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bilancio/internal/ai"
	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/identity"
	"bilancio/internal/kv"
)

type fakeAdvisor struct {
	proposals []ai.ChallengeProposal
	lessons   []ai.Lesson
	err       error
	calls     int
}

func (f *fakeAdvisor) SuggestChallenges(_ context.Context, _ []ai.ExpenseSample) ([]ai.ChallengeProposal, error) {
	f.calls++
	return f.proposals, f.err
}

func (f *fakeAdvisor) GenerateLessons(_ context.Context, _ ai.LessonInput) ([]ai.Lesson, error) {
	f.calls++
	return f.lessons, f.err
}

func (f *fakeAdvisor) AdvisoryTip(_ context.Context, _ ai.LessonInput) string {
	return "save more"
}

type capturingPublisher struct {
	messages []*amqp.RecordSyncMessage
	err      error
}

func (p *capturingPublisher) PublishRecordSync(_ context.Context, msg *amqp.RecordSyncMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.KV == nil {
		opts.KV = kv.NewMemory()
	}
	if opts.Identity == nil {
		opts.Identity = identity.User{ID: "user-1"}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func hydratedStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s := newTestStore(t, opts)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func TestLoadSeedsAnonymousFirstRun(t *testing.T) {
	store := kv.NewMemory()
	s := hydratedStore(t, Options{KV: store, Identity: identity.NewDevice(store)})

	if got := len(s.Transactions()); got != 5 {
		t.Errorf("seeded transactions = %d, want 5", got)
	}
	if got := len(s.Goals()); got != 2 {
		t.Errorf("seeded goals = %d, want 2", got)
	}
	if got := s.Points(); got != 150 {
		t.Errorf("seeded points = %d, want 150", got)
	}
	if s.HideBalance() {
		t.Error("seeded hideBalance = true, want false")
	}

	snap := s.Snapshot()
	if snap.TotalIncome.Cents != 350000 {
		t.Errorf("seeded total income = %d cents, want 350000", snap.TotalIncome.Cents)
	}
	if snap.TotalExpense.Cents != 39050 {
		t.Errorf("seeded total expense = %d cents, want 39050", snap.TotalExpense.Cents)
	}
	if snap.Balance.Cents != 310950 {
		t.Errorf("seeded balance = %d cents, want 310950", snap.Balance.Cents)
	}
}

func TestLoadSignedInFirstRunStaysEmpty(t *testing.T) {
	s := hydratedStore(t, Options{Identity: identity.User{ID: "acct-7"}})

	if got := len(s.Transactions()); got != 0 {
		t.Errorf("transactions = %d, want 0", got)
	}
	if got := len(s.Goals()); got != 0 {
		t.Errorf("goals = %d, want 0", got)
	}
	if got := s.Points(); got != 0 {
		t.Errorf("points = %d, want 0", got)
	}
}

func TestLoadRecoversFromCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, "acct-7/transactions", "{not json"); err != nil {
		t.Fatal(err)
	}

	s := hydratedStore(t, Options{KV: store, Identity: identity.User{ID: "acct-7"}})

	if got := len(s.Transactions()); got != 0 {
		t.Errorf("transactions after corrupt blob = %d, want 0", got)
	}
	raw, ok, err := store.Get(ctx, "acct-7/transactions")
	if err != nil || !ok {
		t.Fatalf("Get after reset: raw=%q ok=%v err=%v", raw, ok, err)
	}
	if raw != "[]" {
		t.Errorf("corrupt blob reset to %q, want []", raw)
	}
}

type stubMirror struct {
	transactions []core.Transaction
	goals        []core.Goal
	err          error
	upserts      int
}

func (m *stubMirror) FetchTransactions(context.Context, string) ([]core.Transaction, error) {
	return m.transactions, m.err
}

func (m *stubMirror) FetchGoals(context.Context, string) ([]core.Goal, error) {
	return m.goals, m.err
}

func (m *stubMirror) UpsertTransaction(context.Context, core.Transaction) error {
	m.upserts++
	return m.err
}

func (m *stubMirror) UpsertGoal(context.Context, core.Goal) error {
	m.upserts++
	return m.err
}

func TestLoadPrefersMirrorRecords(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, "user-1/transactions",
		`[{"id":"local-1","type":"expense","amount":100,"category":"food","date":"2025-01-01","owner_id":"user-1"}]`); err != nil {
		t.Fatal(err)
	}

	remote := []core.Transaction{{
		ID:       "remote-1",
		Type:     core.Income,
		Amount:   core.Money{Cents: 5000},
		Category: "salary",
		Date:     core.NewDate(2025, 1, 2),
		OwnerID:  "user-1",
	}}
	s := hydratedStore(t, Options{KV: store, Mirror: &stubMirror{transactions: remote}})

	txs := s.Transactions()
	if len(txs) != 1 || txs[0].ID != "remote-1" {
		t.Fatalf("transactions = %+v, want the remote record", txs)
	}

	// The remote copy replaces the local cache too.
	raw, _, err := store.Get(ctx, "user-1/transactions")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(raw, "remote-1") || strings.Contains(raw, "local-1") {
		t.Errorf("cached blob = %s, want remote records only", raw)
	}
}

func TestLoadKeepsLocalWhenMirrorFails(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, "user-1/transactions",
		`[{"id":"local-1","type":"expense","amount":100,"category":"food","date":"2025-01-01","owner_id":"user-1"}]`); err != nil {
		t.Fatal(err)
	}

	s := hydratedStore(t, Options{KV: store, Mirror: &stubMirror{err: errors.New("network down")}})

	txs := s.Transactions()
	if len(txs) != 1 || txs[0].ID != "local-1" {
		t.Errorf("transactions = %+v, want the local record kept", txs)
	}
}

func TestAddTransactionUpdatesBalanceAndPoints(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})

	income, err := s.AddTransaction(ctx, TransactionInput{
		Type:     core.Income,
		Amount:   core.Money{Cents: 100000},
		Category: "salary",
	})
	if err != nil {
		t.Fatalf("AddTransaction(income) error = %v", err)
	}
	if income.ID == "" {
		t.Error("transaction id is empty")
	}
	if income.OwnerID != "user-1" {
		t.Errorf("owner id = %q, want user-1", income.OwnerID)
	}

	if _, err := s.AddTransaction(ctx, TransactionInput{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 2500},
		Category: "coffee",
	}); err != nil {
		t.Fatalf("AddTransaction(expense) error = %v", err)
	}

	if got := s.Balance().Cents; got != 97500 {
		t.Errorf("balance = %d cents, want 97500", got)
	}
	if got := s.Points(); got != 20 {
		t.Errorf("points = %d, want 20 after two transactions", got)
	}

	// Newest entry leads the list.
	txs := s.Transactions()
	if txs[0].Category != "coffee" {
		t.Errorf("first transaction category = %q, want coffee", txs[0].Category)
	}
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})

	cases := []struct {
		name string
		in   TransactionInput
	}{
		{"zero amount", TransactionInput{Type: core.Expense, Amount: core.Money{}, Category: "food"}},
		{"negative amount", TransactionInput{Type: core.Expense, Amount: core.Money{Cents: -100}, Category: "food"}},
		{"bad type", TransactionInput{Type: "transfer", Amount: core.Money{Cents: 100}, Category: "food"}},
		{"empty category", TransactionInput{Type: core.Expense, Amount: core.Money{Cents: 100}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddTransaction(ctx, tc.in)
			if !IsValidation(err) {
				t.Fatalf("AddTransaction() error = %v, want validation error", err)
			}
		})
	}

	if got := len(s.Transactions()); got != 0 {
		t.Errorf("transactions after rejections = %d, want 0", got)
	}
	if got := s.Points(); got != 0 {
		t.Errorf("points after rejections = %d, want 0", got)
	}
}

func TestAddTransactionRequiresHydration(t *testing.T) {
	s := newTestStore(t, Options{})
	_, err := s.AddTransaction(context.Background(), TransactionInput{
		Type: core.Expense, Amount: core.Money{Cents: 100}, Category: "food",
	})
	if !errors.Is(err, ErrNotHydrated) {
		t.Fatalf("error = %v, want ErrNotHydrated", err)
	}
}

func TestLedgerSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	first := hydratedStore(t, Options{KV: store})

	if _, err := first.AddTransaction(ctx, TransactionInput{
		Type: core.Expense, Amount: core.Money{Cents: 4550}, Category: "food", Notes: "lunch",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := first.AddGoal(ctx, GoalInput{
		Title:        "New laptop",
		TargetAmount: core.Money{Cents: 150000},
		Deadline:     core.NewDate(2025, 12, 1),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := first.ToggleBalanceVisibility(ctx); err != nil {
		t.Fatal(err)
	}

	second := hydratedStore(t, Options{KV: store})

	txs := second.Transactions()
	if len(txs) != 1 || txs[0].Notes != "lunch" || txs[0].Amount.Cents != 4550 {
		t.Errorf("reloaded transactions = %+v, want the single lunch record", txs)
	}
	goals := second.Goals()
	if len(goals) != 1 || goals[0].Title != "New laptop" {
		t.Errorf("reloaded goals = %+v, want the laptop goal", goals)
	}
	if got := second.Points(); got != 10 {
		t.Errorf("reloaded points = %d, want 10", got)
	}
	if !second.HideBalance() {
		t.Error("reloaded hideBalance = false, want true")
	}
}

func TestExpensesByCategoryPartitionsTotals(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})

	for _, in := range []TransactionInput{
		{Type: core.Expense, Amount: core.Money{Cents: 1000}, Category: "food"},
		{Type: core.Expense, Amount: core.Money{Cents: 2000}, Category: "food"},
		{Type: core.Expense, Amount: core.Money{Cents: 500}, Category: "transport"},
		{Type: core.Income, Amount: core.Money{Cents: 9000}, Category: "salary"},
	} {
		if _, err := s.AddTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	byCat := s.ExpensesByCategory()
	if byCat["food"].Cents != 3000 {
		t.Errorf("food = %d cents, want 3000", byCat["food"].Cents)
	}
	if byCat["transport"].Cents != 500 {
		t.Errorf("transport = %d cents, want 500", byCat["transport"].Cents)
	}
	if _, ok := byCat["salary"]; ok {
		t.Error("income category leaked into expense breakdown")
	}

	var sum int64
	for _, m := range byCat {
		sum += m.Cents
	}
	if sum != s.TotalExpenses().Cents {
		t.Errorf("category sum = %d, total expenses = %d", sum, s.TotalExpenses().Cents)
	}
}

func TestSnapshotReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})
	if _, err := s.AddTransaction(ctx, TransactionInput{
		Type: core.Income, Amount: core.Money{Cents: 5000}, Category: "salary",
	}); err != nil {
		t.Fatal(err)
	}

	a := s.Snapshot()
	b := s.Snapshot()
	if a.Balance != b.Balance || a.SavingsRate != b.SavingsRate || a.Points != b.Points {
		t.Errorf("repeated snapshots differ: %+v vs %+v", a, b)
	}
}

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})

	c, err := s.AddChallenge(ctx, ChallengeInput{
		Title:        "No-coffee week",
		Description:  "Skip the bar for seven days",
		TargetAmount: core.Money{Cents: 3000},
		Category:     "coffee",
		Period:       core.PeriodWeekly,
		StartDate:    core.NewDate(2025, 1, 15),
		EndDate:      core.NewDate(2025, 1, 22),
	})
	if err != nil {
		t.Fatalf("AddChallenge() error = %v", err)
	}
	if c.Completed {
		t.Error("new challenge is already completed")
	}

	c, err = s.UpdateChallengeProgress(ctx, c.ID, core.Money{Cents: 1500})
	if err != nil {
		t.Fatalf("UpdateChallengeProgress() error = %v", err)
	}
	if c.Completed {
		t.Error("challenge completed at half progress")
	}

	// Overshoot is kept as-is, and completed flips exactly at the target.
	c, err = s.UpdateChallengeProgress(ctx, c.ID, core.Money{Cents: 3500})
	if err != nil {
		t.Fatal(err)
	}
	if !c.Completed {
		t.Error("challenge not completed past target")
	}
	if c.Progress.Cents != 3500 {
		t.Errorf("progress = %d cents, want 3500 (no clamping)", c.Progress.Cents)
	}

	if _, err := s.UpdateChallengeProgress(ctx, c.ID, core.Money{Cents: -1}); !IsValidation(err) {
		t.Errorf("negative progress error = %v, want validation error", err)
	}
	if _, err := s.UpdateChallengeProgress(ctx, "missing", core.Money{Cents: 10}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}

	if err := s.RemoveChallenge(ctx, c.ID); err != nil {
		t.Fatalf("RemoveChallenge() error = %v", err)
	}
	if got := len(s.Challenges()); got != 0 {
		t.Errorf("challenges after removal = %d, want 0", got)
	}
	if err := s.RemoveChallenge(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second removal error = %v, want ErrNotFound", err)
	}
}

func TestCompleteChallengeSnapsProgressToTarget(t *testing.T) {
	ctx := context.Background()
	s := hydratedStore(t, Options{})

	c, err := s.AddChallenge(ctx, ChallengeInput{
		Title:        "Meal prep month",
		TargetAmount: core.Money{Cents: 10000},
		Category:     "food",
		Period:       core.PeriodMonthly,
		StartDate:    core.NewDate(2025, 1, 1),
		EndDate:      core.NewDate(2025, 1, 31),
	})
	if err != nil {
		t.Fatal(err)
	}

	c, err = s.CompleteChallenge(ctx, c.ID)
	if err != nil {
		t.Fatalf("CompleteChallenge() error = %v", err)
	}
	if !c.Completed {
		t.Error("challenge not marked completed")
	}
	if c.Progress != c.TargetAmount {
		t.Errorf("progress = %d cents, want target %d", c.Progress.Cents, c.TargetAmount.Cents)
	}
}

func TestToggleBalanceVisibility(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := hydratedStore(t, Options{KV: store})

	hidden, err := s.ToggleBalanceVisibility(ctx)
	if err != nil {
		t.Fatalf("ToggleBalanceVisibility() error = %v", err)
	}
	if !hidden {
		t.Error("first toggle = false, want true")
	}

	raw, ok, err := store.Get(ctx, "user-1/hide_balance")
	if err != nil || !ok || raw != "true" {
		t.Errorf("persisted hide_balance = %q ok=%v err=%v, want true", raw, ok, err)
	}

	hidden, err = s.ToggleBalanceVisibility(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hidden {
		t.Error("second toggle = true, want false")
	}
}

func TestAddTransactionPublishesRecordSync(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	s := hydratedStore(t, Options{Queue: pub})

	tx, err := s.AddTransaction(ctx, TransactionInput{
		Type: core.Expense, Amount: core.Money{Cents: 700}, Category: "snacks",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published messages = %d, want 1", len(pub.messages))
	}
	decoded, err := pub.messages[0].Transaction()
	if err != nil {
		t.Fatalf("decode published message: %v", err)
	}
	if decoded.ID != tx.ID {
		t.Errorf("published record id = %q, want %q", decoded.ID, tx.ID)
	}
}

func TestAddTransactionSucceedsWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	s := hydratedStore(t, Options{Queue: pub})

	if _, err := s.AddTransaction(ctx, TransactionInput{
		Type: core.Expense, Amount: core.Money{Cents: 700}, Category: "snacks",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v, want nil despite publish failure", err)
	}
	if got := len(s.Transactions()); got != 1 {
		t.Errorf("transactions = %d, want 1", got)
	}
}

type gatedPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPublisher) PublishRecordSync(context.Context, *amqp.RecordSyncMessage) error {
	close(p.entered)
	<-p.release
	return nil
}

func TestReadsDoNotBlockOnSlowPublish(t *testing.T) {
	pub := &gatedPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	s := hydratedStore(t, Options{Queue: pub})

	added := make(chan struct{})
	go func() {
		defer close(added)
		if _, err := s.AddTransaction(context.Background(), TransactionInput{
			Type: core.Expense, Amount: core.Money{Cents: 700}, Category: "snacks",
		}); err != nil {
			t.Errorf("AddTransaction() error = %v", err)
		}
	}()

	// The publish is in flight and being held open; reads must still return.
	<-pub.entered
	read := make(chan int64, 1)
	go func() { read <- s.Points() }()
	select {
	case points := <-read:
		if points != 10 {
			t.Errorf("points = %d, want 10 mid-publish", points)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Points() blocked while a publish was in flight")
	}

	close(pub.release)
	<-added
}

func TestSuggestChallengesMaterializesProposals(t *testing.T) {
	ctx := context.Background()
	advisor := &fakeAdvisor{proposals: []ai.ChallengeProposal{
		{
			Title:        "Cook at home",
			Description:  "Replace five takeout meals with home cooking",
			TargetAmount: 50,
			Category:     "food",
			Period:       "weekly",
			DurationDays: 7,
		},
		{
			Title:        "Transit instead of taxi",
			Description:  "Use public transport for all city trips",
			TargetAmount: 30.5,
			Category:     "transport",
			Period:       "weekly",
			DurationDays: 14,
		},
	}}
	s := hydratedStore(t, Options{Advisor: advisor})

	created, err := s.SuggestChallenges(ctx)
	if err != nil {
		t.Fatalf("SuggestChallenges() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d challenges, want 2", len(created))
	}
	for _, c := range created {
		if !c.AISuggested {
			t.Errorf("challenge %q not flagged as AI suggested", c.Title)
		}
	}
	if created[0].TargetAmount.Cents != 5000 {
		t.Errorf("first target = %d cents, want 5000", created[0].TargetAmount.Cents)
	}
	if created[1].TargetAmount.Cents != 3050 {
		t.Errorf("second target = %d cents, want 3050", created[1].TargetAmount.Cents)
	}
	wantEnd := core.NewDate(2025, 1, 22)
	if !created[0].EndDate.Equal(wantEnd.Time) {
		t.Errorf("first end date = %v, want %v", created[0].EndDate, wantEnd)
	}
	if got := len(s.Challenges()); got != 2 {
		t.Errorf("stored challenges = %d, want 2", got)
	}
}

func TestSuggestChallengesSurfacesAdvisorFailure(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("upstream returned prose, not json")}
	s := hydratedStore(t, Options{Advisor: advisor})

	_, err := s.SuggestChallenges(context.Background())
	if !IsGeneration(err) {
		t.Fatalf("error = %v, want generation error", err)
	}
	if got := len(s.Challenges()); got != 0 {
		t.Errorf("challenges after failed generation = %d, want 0", got)
	}
}

func TestGenerateLessonsDelegatesToAdvisor(t *testing.T) {
	advisor := &fakeAdvisor{lessons: []ai.Lesson{{
		ID:          "lesson-0",
		Title:       "Budgeting basics",
		Description: "Understand where your money goes",
		Difficulty:  "beginner",
	}}}
	s := hydratedStore(t, Options{Advisor: advisor})

	lessons, err := s.GenerateLessons(context.Background())
	if err != nil {
		t.Fatalf("GenerateLessons() error = %v", err)
	}
	if len(lessons) != 1 || lessons[0].Title != "Budgeting basics" {
		t.Errorf("lessons = %+v", lessons)
	}
}

func TestAdvisoryTipWithoutAdvisor(t *testing.T) {
	s := hydratedStore(t, Options{})
	if tip := s.AdvisoryTip(context.Background()); tip != "" {
		t.Errorf("tip without advisor = %q, want empty", tip)
	}
}
