package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
)

// ExpenseSample is the per-transaction slice of the snapshot sent to the
// model: amount in units, category, ISO date. Never includes notes.
type ExpenseSample struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

// SampleExpenses extracts up to limit most recent expense samples from a
// most-recent-first transaction list.
func SampleExpenses(transactions []core.Transaction, limit int) []ExpenseSample {
	samples := make([]ExpenseSample, 0, limit)
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		samples = append(samples, ExpenseSample{
			Amount:   t.Amount.Units(),
			Category: t.Category,
			Date:     t.Date.Format(time.RFC3339),
		})
		if len(samples) == limit {
			break
		}
	}
	return samples
}

// Advisor generates challenges, lessons, and tips from ledger snapshots.
// Lesson generation is cached by snapshot fingerprint so re-opening the
// learning view does not re-bill the proxy.
type Advisor struct {
	client      *Client
	lessonCache *cache.LRU[[]Lesson]
}

func NewAdvisor(client *Client) *Advisor {
	return &Advisor{
		client:      client,
		lessonCache: cache.NewLRU[[]Lesson](50, 30*time.Minute),
	}
}

// SuggestChallenges asks the model for 1-5 money-saving challenges based on
// recent spending. Every failure surfaces; there is no canned fallback for a
// user-initiated generate action.
func (a *Advisor) SuggestChallenges(ctx context.Context, recent []ExpenseSample) ([]ChallengeProposal, error) {
	payload, err := json.Marshal(map[string]any{"recent": recent})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	raw, err := a.client.CompleteJSON(ctx, []Message{
		{Role: RoleSystem, Content: "Return strict JSON with a challenges array only. Each challenge has title, optional description, targetAmount (>= 1), optional category, period (daily|weekly|monthly), and durationDays (1-90). Propose 1-5 items."},
		{Role: RoleUser, Content: "Given recent spending, propose concrete money-saving challenges. Input: " + string(payload)},
	})
	if err != nil {
		return nil, err
	}

	proposals, err := ParseChallengeProposals(raw)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "AI challenges generated", "count", len(proposals))
	return proposals, nil
}

// LessonInput is the aggregate snapshot lessons are personalized from.
type LessonInput struct {
	MonthlyExpenses float64            `json:"monthlyExpenses"`
	TopCategory     string             `json:"topCategory"`
	TopAmount       float64            `json:"topAmount"`
	ByCategory      map[string]float64 `json:"byCategory"`
}

// LessonInputFrom builds a LessonInput from an aggregated snapshot.
func LessonInputFrom(snap core.Snapshot) LessonInput {
	in := LessonInput{
		MonthlyExpenses: snap.TotalExpense.Units(),
		TopCategory:     "unknown",
		ByCategory:      make(map[string]float64, len(snap.ExpensesByCategory)),
	}
	for name, amount := range snap.ExpensesByCategory {
		in.ByCategory[name] = amount.Units()
		if amount.Units() > in.TopAmount {
			in.TopCategory = name
			in.TopAmount = amount.Units()
		}
	}
	return in
}

// GenerateLessons asks the model for 1-6 personalized lessons. Failures
// surface to the caller; successful generations are cached.
func (a *Advisor) GenerateLessons(ctx context.Context, in LessonInput) ([]Lesson, error) {
	key := in.fingerprint()
	if lessons, ok := a.lessonCache.Get(key); ok {
		slog.DebugContext(ctx, "Lesson cache hit", "key", key)
		return lessons, nil
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal lesson input: %w", err)
	}

	raw, err := a.client.CompleteJSON(ctx, []Message{
		{Role: RoleSystem, Content: "Return strict JSON with a lessons array only. Lessons must be actionable and personalized. Include objectives, steps with timeMinutes, checklist, a short quiz, and resources when relevant. Each lesson has title, description, and difficulty (beginner|intermediate|advanced)."},
		{Role: RoleUser, Content: "Create financial lessons tailored to my spending. Input: " + string(payload)},
	})
	if err != nil {
		return nil, err
	}

	lessons, err := ParseLessons(raw)
	if err != nil {
		return nil, err
	}

	a.lessonCache.Set(key, lessons)
	slog.InfoContext(ctx, "AI lessons generated", "count", len(lessons))
	return lessons, nil
}

// fallbackTip is served when tip generation fails; the dashboard card is
// low-stakes enough for a canned default.
const fallbackTip = "Track every expense for a week. Knowing where your money goes is the first step to keeping more of it."

// AdvisoryTip returns a short free-text tip for the dashboard. Transport and
// timeout failures degrade silently to the canned fallback.
func (a *Advisor) AdvisoryTip(ctx context.Context, in LessonInput) string {
	payload, err := json.Marshal(in)
	if err != nil {
		return fallbackTip
	}

	tip, err := a.client.CompleteText(ctx, []Message{
		{Role: RoleSystem, Content: "You are a concise personal finance coach. Reply with one actionable tip, two sentences max, plain text."},
		{Role: RoleUser, Content: "My spending summary: " + string(payload)},
	})
	if err != nil || tip == "" {
		slog.WarnContext(ctx, "Tip generation failed, using fallback", "error", err)
		return fallbackTip
	}
	return tip
}

// fingerprint hashes the lesson input with sorted category keys so equal
// snapshots always produce the same cache key.
func (in LessonInput) fingerprint() string {
	names := make([]string, 0, len(in.ByCategory))
	for name := range in.ByCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	fmt.Fprintf(h, "%.2f|%s|%.2f", in.MonthlyExpenses, in.TopCategory, in.TopAmount)
	for _, name := range names {
		fmt.Fprintf(h, "|%s=%.2f", name, in.ByCategory[name])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
