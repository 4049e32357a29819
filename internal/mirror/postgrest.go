package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bilancio/internal/core"
)

const postgrestTimeout = 15 * time.Second

// PostgREST mirrors records to a Postgres-as-a-service REST endpoint
// (Supabase-style): list-fetch filtered by owner, array-of-one POST upsert
// with merge-duplicates, PATCH by id when the POST reports a duplicate.
type PostgREST struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewPostgREST(baseURL, anonKey string) (*PostgREST, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing mirror base URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if strings.TrimSpace(anonKey) == "" {
		return nil, errors.New("missing mirror API key")
	}
	return &PostgREST{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: postgrestTimeout},
	}, nil
}

// Wire rows use snake_case names and amounts in whole currency units, the
// schema the original mobile clients wrote.
type (
	transactionRow struct {
		ID       string  `json:"id"`
		Type     string  `json:"type"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Notes    *string `json:"notes,omitempty"`
		Date     string  `json:"date"`
		UserID   string  `json:"user_id"`
	}

	goalRow struct {
		ID           string  `json:"id"`
		Title        string  `json:"title"`
		TargetAmount float64 `json:"target_amount"`
		Progress     float64 `json:"progress"`
		Deadline     string  `json:"deadline"`
		UserID       string  `json:"user_id"`
	}
)

func (p *PostgREST) FetchTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	path := "/rest/v1/transactions?user_id=eq." + url.QueryEscape(ownerID) + "&select=*&order=date.desc.nullslast"
	var rows []transactionRow
	if err := p.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("transaction %q: %w", r.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *PostgREST) FetchGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	path := "/rest/v1/goals?user_id=eq." + url.QueryEscape(ownerID) + "&select=*&order=deadline.asc.nullslast"
	var rows []goalRow
	if err := p.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]core.Goal, 0, len(rows))
	for _, r := range rows {
		g, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("goal %q: %w", r.ID, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (p *PostgREST) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	row := transactionRowFrom(t)
	err := p.do(ctx, http.MethodPost, "/rest/v1/transactions", []transactionRow{row}, nil)
	if isDuplicate(err) {
		patch := "/rest/v1/transactions?id=eq." + url.QueryEscape(t.ID)
		return p.do(ctx, http.MethodPatch, patch, row, nil)
	}
	return err
}

func (p *PostgREST) UpsertGoal(ctx context.Context, g core.Goal) error {
	row := goalRowFrom(g)
	err := p.do(ctx, http.MethodPost, "/rest/v1/goals", []goalRow{row}, nil)
	if isDuplicate(err) {
		patch := "/rest/v1/goals?id=eq." + url.QueryEscape(g.ID)
		return p.do(ctx, http.MethodPatch, patch, row, nil)
	}
	return err
}

// StatusError carries the upstream HTTP status so upserts can detect
// duplicate-key conflicts and consumers can tell permanent rejections from
// transient outages.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror returned %d: %s", e.Status, e.Body)
}

func isDuplicate(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusConflict || strings.Contains(strings.ToLower(se.Body), "duplicate")
}

func (p *PostgREST) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+p.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation,resolution=merge-duplicates")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("mirror request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read mirror response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.DebugContext(ctx, "Mirror request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return &StatusError{Status: resp.StatusCode, Body: string(text)}
	}

	if out != nil {
		if err := json.Unmarshal(text, out); err != nil {
			return fmt.Errorf("decode mirror response: %w", err)
		}
	}
	return nil
}

func transactionRowFrom(t core.Transaction) transactionRow {
	row := transactionRow{
		ID:       t.ID,
		Type:     string(t.Type),
		Amount:   t.Amount.Units(),
		Category: t.Category,
		Date:     t.Date.Format("2006-01-02"),
		UserID:   t.OwnerID,
	}
	if t.Notes != "" {
		row.Notes = &t.Notes
	}
	return row
}

func goalRowFrom(g core.Goal) goalRow {
	return goalRow{
		ID:           g.ID,
		Title:        g.Title,
		TargetAmount: g.TargetAmount.Units(),
		Progress:     g.Progress.Units(),
		Deadline:     g.Deadline.Format("2006-01-02"),
		UserID:       g.OwnerID,
	}
}

func (r transactionRow) toCore() (core.Transaction, error) {
	t := core.Transaction{
		ID:       r.ID,
		Type:     core.TransactionType(r.Type),
		Amount:   core.Money{Cents: core.CentsFromUnits(r.Amount)},
		Category: r.Category,
		OwnerID:  r.UserID,
	}
	if r.Notes != nil {
		t.Notes = *r.Notes
	}
	if err := json.Unmarshal([]byte(`"`+r.Date+`"`), &t.Date); err != nil {
		return core.Transaction{}, err
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r goalRow) toCore() (core.Goal, error) {
	g := core.Goal{
		ID:           r.ID,
		Title:        r.Title,
		TargetAmount: core.Money{Cents: core.CentsFromUnits(r.TargetAmount)},
		Progress:     core.Money{Cents: core.CentsFromUnits(r.Progress)},
		OwnerID:      r.UserID,
	}
	if err := json.Unmarshal([]byte(`"`+r.Deadline+`"`), &g.Deadline); err != nil {
		return core.Goal{}, err
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}
