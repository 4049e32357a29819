package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PeriodDaily   ChallengePeriod = "daily"
	PeriodWeekly  ChallengePeriod = "weekly"
	PeriodMonthly ChallengePeriod = "monthly"
)

type (
	TransactionType string

	ChallengePeriod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. Records are immutable after
	// creation; corrections are new entries.
	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   Money           `json:"amount"`
		Category string          `json:"category"`
		Notes    string          `json:"notes,omitempty"`
		Date     Date            `json:"date"`
		OwnerID  string          `json:"owner_id"`
	}

	// Goal is a savings target. Progress is the only mutable field.
	Goal struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		TargetAmount Money  `json:"target_amount"`
		Progress     Money  `json:"progress"`
		Deadline     Date   `json:"deadline"`
		OwnerID      string `json:"owner_id"`
	}

	// Challenge is a time-boxed, gamified goal variant.
	Challenge struct {
		ID           string          `json:"id"`
		Title        string          `json:"title"`
		Description  string          `json:"description,omitempty"`
		TargetAmount Money           `json:"target_amount"`
		Category     string          `json:"category,omitempty"`
		Period       ChallengePeriod `json:"period"`
		StartDate    Date            `json:"start_date"`
		EndDate      Date            `json:"end_date"`
		Progress     Money           `json:"progress"`
		Completed    bool            `json:"completed"`
		AISuggested  bool            `json:"ai_suggested"`
		CreatedAt    time.Time       `json:"created_at"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidPeriod    = errors.New("invalid challenge period")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidTarget    = errors.New("invalid target amount")
	ErrNegativeProgress = errors.New("negative progress")
)

const maxFieldLen = 200

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p ChallengePeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD and full RFC 3339 timestamps; mirror rows
// arrive with time components which are dropped.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Notes) > maxFieldLen {
		return errors.New("notes too long (max 200 characters)")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if len(g.Title) > maxFieldLen {
		return errors.New("title too long (max 200 characters)")
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.Progress.Cents < 0 {
		return ErrNegativeProgress
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	return nil
}

// CompletionRatio reports progress toward the target capped at 1.
func (g Goal) CompletionRatio() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	r := float64(g.Progress.Cents) / float64(g.TargetAmount.Cents)
	if r > 1 {
		return 1
	}
	return r
}

func (c Challenge) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyTitle
	}
	if len(c.Title) > maxFieldLen {
		return errors.New("title too long (max 200 characters)")
	}
	if c.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if !c.Period.Valid() {
		return ErrInvalidPeriod
	}
	if c.Progress.Cents < 0 {
		return ErrNegativeProgress
	}
	if err := c.StartDate.Validate(); err != nil {
		return err
	}
	if err := c.EndDate.Validate(); err != nil {
		return err
	}
	if c.EndDate.Before(c.StartDate.Time) {
		return errors.New("end date before start date")
	}
	return nil
}
