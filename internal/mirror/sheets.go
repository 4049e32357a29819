package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
)

// Sheets is an append-only mirror that writes ledger records as rows of a
// spreadsheet. It cannot serve hydration fetches; those return
// ErrUnsupported and the ledger falls back to its local cache.
type Sheets struct {
	svc             *gsheet.Service
	spreadsheetID   string
	transactionsTab string
	goalsTab        string
}

var _ Mirror = (*Sheets)(nil)

// NewSheetsFromEnv creates a Sheets mirror using service account credentials.
// Required: SHEETS_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsFromEnv(ctx context.Context) (*Sheets, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("SHEETS_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing SHEETS_SPREADSHEET_ID")
	}

	transactionsTab := strings.TrimSpace(os.Getenv("SHEETS_TRANSACTIONS_TAB"))
	if transactionsTab == "" {
		transactionsTab = "Transactions"
	}
	goalsTab := strings.TrimSpace(os.Getenv("SHEETS_GOALS_TAB"))
	if goalsTab == "" {
		goalsTab = "Goals"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Sheets{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		transactionsTab: transactionsTab,
		goalsTab:        goalsTab,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchTransactions is unsupported: the sheet is write-only from the
// ledger's point of view.
func (s *Sheets) FetchTransactions(context.Context, string) ([]core.Transaction, error) {
	return nil, ErrUnsupported
}

func (s *Sheets) FetchGoals(context.Context, string) ([]core.Goal, error) {
	return nil, ErrUnsupported
}

func (s *Sheets) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	row := []any{t.ID, t.Date.Format("2006-01-02"), string(t.Type), t.Amount.Units(), t.Category, t.Notes, t.OwnerID}
	return s.appendRow(ctx, s.transactionsTab, row)
}

func (s *Sheets) UpsertGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	row := []any{g.ID, g.Title, g.TargetAmount.Units(), g.Progress.Units(), g.Deadline.Format("2006-01-02"), g.OwnerID}
	return s.appendRow(ctx, s.goalsTab, row)
}

func (s *Sheets) appendRow(ctx context.Context, tab string, row []any) error {
	if s.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", tab)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", tab, err)
	}

	slog.DebugContext(ctx, "Appended record to sheet", "tab", tab, "spreadsheet_id", s.spreadsheetID)
	return nil
}
