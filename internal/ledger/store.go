// Package ledger owns the user's financial records and their derived
// metrics: the single source of truth behind every dashboard number.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"bilancio/internal/ai"
	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/identity"
	"bilancio/internal/kv"
	"bilancio/internal/log"
	"bilancio/internal/mirror"
)

// pointsPerTransaction is the fixed reward for recording a transaction.
// There is no decay, cap, or spending mechanic.
const pointsPerTransaction = 10

// maxSnapshotExpenses bounds the expense sample sent to the AI advisor.
const maxSnapshotExpenses = 50

// Publisher enqueues records for the mirror sync worker.
type Publisher interface {
	PublishRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error
}

// Advisor generates challenges, lessons, and tips from ledger snapshots.
type Advisor interface {
	SuggestChallenges(ctx context.Context, recent []ai.ExpenseSample) ([]ai.ChallengeProposal, error)
	GenerateLessons(ctx context.Context, in ai.LessonInput) ([]ai.Lesson, error)
	AdvisoryTip(ctx context.Context, in ai.LessonInput) string
}

// Options wires the store's collaborators. KV and Identity are required;
// Mirror, Queue, and Advisor are optional degradations.
type Options struct {
	KV       kv.Store
	Identity identity.Provider
	Mirror   mirror.Mirror
	Queue    Publisher
	Advisor  Advisor
	Logger   *log.Logger

	// DisableSeed skips the demo dataset on an empty anonymous first run.
	DisableSeed bool

	// Now and NewID exist for tests; production uses the defaults.
	Now   func() time.Time
	NewID func() string
}

// Store holds the in-memory ledger and orchestrates persistence. All state
// behind the mutex; collaborator calls happen outside it.
type Store struct {
	kv          kv.Store
	identity    identity.Provider
	mirror      mirror.Mirror
	queue       Publisher
	advisor     Advisor
	logger      *log.Logger
	now         func() time.Time
	newID       func() string
	disableSeed bool

	mu           sync.Mutex
	ownerID      string
	transactions []core.Transaction
	goals        []core.Goal
	challenges   []core.Challenge
	points       int64
	hideBalance  bool
	hydrated     bool
}

func New(opts Options) (*Store, error) {
	if opts.KV == nil {
		return nil, errors.New("ledger: kv store is required")
	}
	if opts.Identity == nil {
		return nil, errors.New("ledger: identity provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = generateID
	}
	return &Store{
		kv:          opts.KV,
		identity:    opts.Identity,
		mirror:      opts.Mirror,
		queue:       opts.Queue,
		advisor:     opts.Advisor,
		logger:      logger,
		now:         now,
		newID:       newID,
		disableSeed: opts.DisableSeed,
	}, nil
}

// generateID is the record id format the mobile clients wrote:
// epoch millis plus a random base36 suffix.
func generateID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

func transactionsKey(owner string) string { return owner + "/transactions" }
func goalsKey(owner string) string        { return owner + "/goals" }
func challengesKey(owner string) string   { return owner + "/challenges" }
func pointsKey(owner string) string       { return owner + "/points" }
func hideBalanceKey(owner string) string  { return owner + "/hide_balance" }

// Load hydrates the store: local cache first, then the remote mirror if one
// is configured, then demo seeding for a first-run guest. Mirror failures
// degrade silently to the local cache; they are connectivity issues, not
// business errors.
func (s *Store) Load(ctx context.Context) error {
	owner, err := s.identity.OwnerID(ctx)
	if err != nil {
		return wrapOp("load", persistenceErr("owner id", err))
	}

	transactions, txStored := loadCollection[core.Transaction](ctx, s, transactionsKey(owner))
	goals, goalsStored := loadCollection[core.Goal](ctx, s, goalsKey(owner))
	challenges, _ := loadCollection[core.Challenge](ctx, s, challengesKey(owner))

	points, pointsStored := s.loadPoints(ctx, owner)
	hideBalance := s.loadHideBalance(ctx, owner)

	if s.mirror != nil {
		if remote, err := s.mirror.FetchTransactions(ctx, owner); errors.Is(err, mirror.ErrUnsupported) {
			s.logger.DebugContext(ctx, "Mirror does not serve fetches", log.FieldOwnerID, owner)
		} else if err != nil {
			s.logger.WarnContext(ctx, "Mirror transaction fetch failed, using local cache",
				log.FieldError, err, log.FieldOwnerID, owner)
		} else if len(remote) > 0 {
			transactions = remote
			txStored = true
			if err := s.persistJSON(ctx, transactionsKey(owner), remote); err != nil {
				s.logger.WarnContext(ctx, "Failed caching mirrored transactions", log.FieldError, err)
			}
		}
		if remote, err := s.mirror.FetchGoals(ctx, owner); errors.Is(err, mirror.ErrUnsupported) {
			// Nothing to hydrate from an append-only mirror.
		} else if err != nil {
			s.logger.WarnContext(ctx, "Mirror goal fetch failed, using local cache",
				log.FieldError, err, log.FieldOwnerID, owner)
		} else if len(remote) > 0 {
			goals = remote
			goalsStored = true
			if err := s.persistJSON(ctx, goalsKey(owner), remote); err != nil {
				s.logger.WarnContext(ctx, "Failed caching mirrored goals", log.FieldError, err)
			}
		}
	}

	s.mu.Lock()
	s.ownerID = owner
	s.transactions = transactions
	s.goals = goals
	s.challenges = challenges
	s.points = points
	s.hideBalance = hideBalance
	s.hydrated = true
	s.mu.Unlock()

	firstRun := !txStored && !goalsStored && !pointsStored
	if firstRun {
		if s.identity.Anonymous() && !s.disableSeed {
			return s.seed(ctx, owner)
		}
		// A signed-in identity never inherits guest demo data.
		s.logger.InfoContext(ctx, "Initialized empty ledger", log.FieldOwnerID, owner)
	}

	s.logger.InfoContext(ctx, "Ledger hydrated",
		log.FieldOwnerID, owner,
		"transactions", len(transactions),
		"goals", len(goals),
		"challenges", len(challenges))
	return nil
}

func (s *Store) seed(ctx context.Context, owner string) error {
	transactions := seedTransactions(owner)
	goals := seedGoals(owner)

	if err := s.persistJSON(ctx, transactionsKey(owner), transactions); err != nil {
		return wrapOp("seed", err)
	}
	if err := s.persistJSON(ctx, goalsKey(owner), goals); err != nil {
		return wrapOp("seed", err)
	}
	if err := s.persistPoints(ctx, owner, seedPoints); err != nil {
		return wrapOp("seed", err)
	}
	if err := s.kv.Set(ctx, hideBalanceKey(owner), "false"); err != nil {
		return wrapOp("seed", persistenceErr("set "+hideBalanceKey(owner), err))
	}

	s.mu.Lock()
	s.transactions = transactions
	s.goals = goals
	s.points = seedPoints
	s.hideBalance = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Seeded demo ledger for first-run guest",
		log.FieldOwnerID, owner, log.FieldOperation, log.OpSeed)
	return nil
}

// loadCollection strictly decodes a stored JSON array. A corrupt blob is
// reset to empty and overwritten, matching the source's recovery behavior.
func loadCollection[T any](ctx context.Context, s *Store, key string) ([]T, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Storage read failed", log.FieldKey, key, log.FieldError, err)
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.ErrorContext(ctx, "Corrupt blob, resetting collection", log.FieldKey, key, log.FieldError, err)
		if err := s.kv.Set(ctx, key, "[]"); err != nil {
			s.logger.ErrorContext(ctx, "Failed to reset corrupt blob", log.FieldKey, key, log.FieldError, err)
		}
		return nil, true
	}
	return items, true
}

func (s *Store) loadPoints(ctx context.Context, owner string) (int64, bool) {
	raw, ok, err := s.kv.Get(ctx, pointsKey(owner))
	if err != nil || !ok || raw == "" {
		return 0, ok && err == nil
	}
	points, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.ErrorContext(ctx, "Corrupt points value", log.FieldKey, pointsKey(owner), log.FieldError, err)
		return 0, true
	}
	return points, true
}

func (s *Store) loadHideBalance(ctx context.Context, owner string) bool {
	raw, ok, err := s.kv.Get(ctx, hideBalanceKey(owner))
	if err != nil || !ok {
		return false
	}
	return raw == "true"
}

func (s *Store) persistJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return persistenceErr("marshal "+key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return persistenceErr("set "+key, err)
	}
	return nil
}

func (s *Store) persistPoints(ctx context.Context, owner string, points int64) error {
	if err := s.kv.Set(ctx, pointsKey(owner), strconv.FormatInt(points, 10)); err != nil {
		return persistenceErr("set "+pointsKey(owner), err)
	}
	return nil
}

// Hydrated reports whether Load has completed, so consumers can tell "empty
// because loading" from "genuinely empty".
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// TransactionInput is the caller-facing shape for AddTransaction.
type TransactionInput struct {
	Type     core.TransactionType
	Amount   core.Money
	Category string
	Notes    string
	Date     core.Date
}

// AddTransaction validates, prepends, persists the full list, awards the
// fixed point increment, and best-effort mirrors the new record. Local
// persistence failure aborts with state unchanged; mirror failure is logged
// only. The mirror publish happens after the lock is released so a slow
// remote never blocks concurrent reads.
func (s *Store) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := s.appendTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	s.mirrorTransaction(ctx, t)
	return t, nil
}

func (s *Store) appendTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		return core.Transaction{}, wrapOp("add transaction", ErrNotHydrated)
	}

	date := in.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}

	t := core.Transaction{
		ID:       s.newID(),
		Type:     in.Type,
		Amount:   in.Amount,
		Category: in.Category,
		Notes:    in.Notes,
		Date:     date,
		OwnerID:  s.ownerID,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, wrapOp("add transaction", validationErr(err))
	}

	// Most-recent-first ordering is the display contract.
	updated := append([]core.Transaction{t}, s.transactions...)
	if err := s.persistJSON(ctx, transactionsKey(s.ownerID), updated); err != nil {
		return core.Transaction{}, wrapOp("add transaction", err)
	}

	// Points are awarded with the transaction write; if they cannot be
	// persisted the transaction write is rolled back so the two never
	// diverge.
	newPoints := s.points + pointsPerTransaction
	if err := s.persistPoints(ctx, s.ownerID, newPoints); err != nil {
		if rbErr := s.persistJSON(ctx, transactionsKey(s.ownerID), s.transactions); rbErr != nil {
			s.logger.ErrorContext(ctx, "Rollback of transaction list failed",
				log.FieldError, rbErr, log.FieldOwnerID, s.ownerID)
		}
		return core.Transaction{}, wrapOp("add transaction", err)
	}

	s.transactions = updated
	s.points = newPoints

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldRecordID, t.ID,
		log.FieldCategory, t.Category,
		log.FieldAmountCents, t.Amount.Cents,
		log.FieldPoints, newPoints)

	return t, nil
}

// GoalInput is the caller-facing shape for AddGoal.
type GoalInput struct {
	Title        string
	TargetAmount core.Money
	Deadline     core.Date
}

func (s *Store) AddGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	g, err := s.appendGoal(ctx, in)
	if err != nil {
		return core.Goal{}, err
	}
	s.mirrorGoal(ctx, g)
	return g, nil
}

func (s *Store) appendGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		return core.Goal{}, wrapOp("add goal", ErrNotHydrated)
	}

	g := core.Goal{
		ID:           s.newID(),
		Title:        in.Title,
		TargetAmount: in.TargetAmount,
		Deadline:     in.Deadline,
		OwnerID:      s.ownerID,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, wrapOp("add goal", validationErr(err))
	}

	updated := append(append([]core.Goal(nil), s.goals...), g)
	if err := s.persistJSON(ctx, goalsKey(s.ownerID), updated); err != nil {
		return core.Goal{}, wrapOp("add goal", err)
	}
	s.goals = updated

	s.logger.InfoContext(ctx, "Goal created", log.FieldRecordID, g.ID, "title", g.Title)

	return g, nil
}

// ChallengeInput is the caller-facing shape for AddChallenge.
type ChallengeInput struct {
	Title        string
	Description  string
	TargetAmount core.Money
	Category     string
	Period       core.ChallengePeriod
	StartDate    core.Date
	EndDate      core.Date
	AISuggested  bool
}

func (s *Store) AddChallenge(ctx context.Context, in ChallengeInput) (core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addChallengeLocked(ctx, in)
}

func (s *Store) addChallengeLocked(ctx context.Context, in ChallengeInput) (core.Challenge, error) {
	if !s.hydrated {
		return core.Challenge{}, wrapOp("add challenge", ErrNotHydrated)
	}

	c := core.Challenge{
		ID:           s.newID(),
		Title:        in.Title,
		Description:  in.Description,
		TargetAmount: in.TargetAmount,
		Category:     in.Category,
		Period:       in.Period,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		AISuggested:  in.AISuggested,
		CreatedAt:    s.now(),
	}
	if err := c.Validate(); err != nil {
		return core.Challenge{}, wrapOp("add challenge", validationErr(err))
	}

	updated := append([]core.Challenge{c}, s.challenges...)
	if err := s.persistJSON(ctx, challengesKey(s.ownerID), updated); err != nil {
		return core.Challenge{}, wrapOp("add challenge", err)
	}
	s.challenges = updated

	s.logger.InfoContext(ctx, "Challenge created",
		log.FieldRecordID, c.ID, "title", c.Title, "ai_suggested", c.AISuggested)
	return c, nil
}

// UpdateChallengeProgress sets progress as given and recomputes the
// completed flag. Progress is not clamped to the target: overshoot is kept,
// matching the recorded behavior of the mobile clients.
func (s *Store) UpdateChallengeProgress(ctx context.Context, id string, progress core.Money) (core.Challenge, error) {
	if progress.Cents < 0 {
		return core.Challenge{}, wrapOp("update challenge progress", validationErr(core.ErrNegativeProgress))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateChallengeLocked(ctx, "update challenge progress", id, func(c *core.Challenge) {
		c.Progress = progress
		c.Completed = c.Progress.Cents >= c.TargetAmount.Cents
	})
}

// CompleteChallenge is the manual override: progress snaps to the target and
// the challenge is marked complete regardless of accumulated progress.
func (s *Store) CompleteChallenge(ctx context.Context, id string) (core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateChallengeLocked(ctx, "complete challenge", id, func(c *core.Challenge) {
		c.Progress = c.TargetAmount
		c.Completed = true
	})
}

func (s *Store) mutateChallengeLocked(ctx context.Context, op, id string, mutate func(*core.Challenge)) (core.Challenge, error) {
	if !s.hydrated {
		return core.Challenge{}, wrapOp(op, ErrNotHydrated)
	}

	idx := -1
	for i := range s.challenges {
		if s.challenges[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Challenge{}, wrapOp(op, ErrNotFound)
	}

	updated := append([]core.Challenge(nil), s.challenges...)
	mutate(&updated[idx])

	if err := s.persistJSON(ctx, challengesKey(s.ownerID), updated); err != nil {
		return core.Challenge{}, wrapOp(op, err)
	}
	s.challenges = updated
	return updated[idx], nil
}

func (s *Store) RemoveChallenge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		return wrapOp("remove challenge", ErrNotHydrated)
	}

	updated := make([]core.Challenge, 0, len(s.challenges))
	found := false
	for _, c := range s.challenges {
		if c.ID == id {
			found = true
			continue
		}
		updated = append(updated, c)
	}
	if !found {
		return wrapOp("remove challenge", ErrNotFound)
	}

	if err := s.persistJSON(ctx, challengesKey(s.ownerID), updated); err != nil {
		return wrapOp("remove challenge", err)
	}
	s.challenges = updated

	s.logger.InfoContext(ctx, "Challenge removed", log.FieldRecordID, id)
	return nil
}

// ToggleBalanceVisibility flips the hide-balance preference, persisted
// standalone from the financial records.
func (s *Store) ToggleBalanceVisibility(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		return false, wrapOp("toggle balance visibility", ErrNotHydrated)
	}

	next := !s.hideBalance
	if err := s.kv.Set(ctx, hideBalanceKey(s.ownerID), strconv.FormatBool(next)); err != nil {
		return s.hideBalance, wrapOp("toggle balance visibility",
			persistenceErr("set "+hideBalanceKey(s.ownerID), err))
	}
	s.hideBalance = next
	return next, nil
}

// SuggestChallenges snapshots recent spending, asks the advisor for
// schema-validated proposals, and persists them through the same path as
// manual creation. Unlike the load-time mirror fetch, every failure here
// surfaces: the user pressed the button and deserves to know.
func (s *Store) SuggestChallenges(ctx context.Context) ([]core.Challenge, error) {
	if s.advisor == nil {
		return nil, wrapOp("suggest challenges", &GenerationError{Err: errors.New("ai advisor not configured")})
	}

	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		return nil, wrapOp("suggest challenges", ErrNotHydrated)
	}
	samples := ai.SampleExpenses(s.transactions, maxSnapshotExpenses)
	s.mu.Unlock()

	proposals, err := s.advisor.SuggestChallenges(ctx, samples)
	if err != nil {
		return nil, wrapOp("suggest challenges", &GenerationError{Err: err})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := core.DateOf(s.now())
	created := make([]core.Challenge, 0, len(proposals))
	for _, p := range proposals {
		end := core.DateOf(now.AddDate(0, 0, p.DurationDays))
		c, err := s.addChallengeLocked(ctx, ChallengeInput{
			Title:        p.Title,
			Description:  p.Description,
			TargetAmount: core.Money{Cents: core.CentsFromUnits(p.TargetAmount)},
			Category:     p.Category,
			Period:       core.ChallengePeriod(p.Period),
			StartDate:    now,
			EndDate:      end,
			AISuggested:  true,
		})
		if err != nil {
			return created, wrapOp("suggest challenges", err)
		}
		created = append(created, c)
	}
	return created, nil
}

// GenerateLessons asks the advisor for personalized lessons from the
// current expense aggregates. Failures surface.
func (s *Store) GenerateLessons(ctx context.Context) ([]ai.Lesson, error) {
	if s.advisor == nil {
		return nil, wrapOp("generate lessons", &GenerationError{Err: errors.New("ai advisor not configured")})
	}

	in := ai.LessonInputFrom(s.aggregate())
	lessons, err := s.advisor.GenerateLessons(ctx, in)
	if err != nil {
		return nil, wrapOp("generate lessons", &GenerationError{Err: err})
	}
	return lessons, nil
}

// AdvisoryTip returns a short tip for the dashboard card. This flow has a
// safe default, so it never fails.
func (s *Store) AdvisoryTip(ctx context.Context) string {
	if s.advisor == nil {
		return ""
	}
	return s.advisor.AdvisoryTip(ctx, ai.LessonInputFrom(s.aggregate()))
}

func (s *Store) mirrorTransaction(ctx context.Context, t core.Transaction) {
	switch {
	case s.queue != nil:
		msg, err := amqp.NewTransactionSyncMessage(t)
		if err == nil {
			err = s.queue.PublishRecordSync(ctx, msg)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "Record sync enqueue failed",
				log.FieldError, err, log.FieldRecordID, t.ID, log.FieldRecordKind, amqp.KindTransaction)
		}
	case s.mirror != nil:
		if err := s.mirror.UpsertTransaction(ctx, t); err != nil {
			s.logger.WarnContext(ctx, "Mirror upsert failed",
				log.FieldError, err, log.FieldRecordID, t.ID, log.FieldRecordKind, amqp.KindTransaction)
		}
	}
}

func (s *Store) mirrorGoal(ctx context.Context, g core.Goal) {
	switch {
	case s.queue != nil:
		msg, err := amqp.NewGoalSyncMessage(g)
		if err == nil {
			err = s.queue.PublishRecordSync(ctx, msg)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "Record sync enqueue failed",
				log.FieldError, err, log.FieldRecordID, g.ID, log.FieldRecordKind, amqp.KindGoal)
		}
	case s.mirror != nil:
		if err := s.mirror.UpsertGoal(ctx, g); err != nil {
			s.logger.WarnContext(ctx, "Mirror upsert failed",
				log.FieldError, err, log.FieldRecordID, g.ID, log.FieldRecordKind, amqp.KindGoal)
		}
	}
}

// Transactions returns a copy of the transaction list, most recent first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

func (s *Store) Goals() []core.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...)
}

func (s *Store) Challenges() []core.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Challenge(nil), s.challenges...)
}

func (s *Store) Points() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points
}

func (s *Store) HideBalance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hideBalance
}

func (s *Store) aggregate() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := core.Aggregate(s.transactions)
	snap.Points = s.points
	snap.HideBalance = s.hideBalance
	return snap
}

// Snapshot recomputes all derived metrics from the live transaction list.
// The dataset is hundreds of records at most; recomputing on every read is
// simpler than maintaining incremental aggregates.
func (s *Store) Snapshot() core.Snapshot {
	return s.aggregate()
}

func (s *Store) Balance() core.Money {
	return s.aggregate().Balance
}

func (s *Store) TotalIncome() core.Money {
	return s.aggregate().TotalIncome
}

func (s *Store) TotalExpenses() core.Money {
	return s.aggregate().TotalExpense
}

func (s *Store) SavingsRate() float64 {
	return s.aggregate().SavingsRate
}

// ExpensesByCategory groups the current expense transactions by category,
// summing amounts. Pure read; persistence is untouched.
func (s *Store) ExpensesByCategory() map[string]core.Money {
	return s.aggregate().ExpensesByCategory
}

// OwnerID returns the identity the ledger is namespaced under.
func (s *Store) OwnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}
