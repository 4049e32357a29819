package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/ai"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
	"bilancio/internal/reports"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError translates ledger and advisor failures into status codes.
// Schema violations and transport failures from the AI upstream map to
// gateway errors since the fault is on the far side of the proxy.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *ai.SchemaError
	var status int
	switch {
	case ledger.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrNotHydrated):
		status = http.StatusServiceUnavailable
	case errors.As(err, &schemaErr):
		status = http.StatusBadGateway
	case errors.Is(err, ai.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, ai.ErrTransport):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path, log.FieldError, err)
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseAmount converts a JSON number to integer cents. Amounts must be bare
// JSON numbers; a quoted string fails the json.Number decode before reaching
// here.
func parseAmount(raw json.Number) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(raw.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func parseDate(raw string) (core.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.DateOf(t), nil
}

type createTransactionRequest struct {
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Notes    string      `json:"notes"`
	Date     string      `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	t, err := s.store.AddTransaction(r.Context(), ledger.TransactionInput{
		Type:     core.TransactionType(req.Type),
		Amount:   amount,
		Category: strings.TrimSpace(req.Category),
		Notes:    strings.TrimSpace(req.Notes),
		Date:     date,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Transactions())
}

type createGoalRequest struct {
	Title        string      `json:"title"`
	TargetAmount json.Number `json:"target_amount"`
	Deadline     string      `json:"deadline"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target amount: "+err.Error())
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deadline, expected YYYY-MM-DD")
		return
	}

	g, err := s.store.AddGoal(r.Context(), ledger.GoalInput{
		Title:        strings.TrimSpace(req.Title),
		TargetAmount: target,
		Deadline:     deadline,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Goals())
}

type createChallengeRequest struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	TargetAmount json.Number `json:"target_amount"`
	Category     string      `json:"category"`
	Period       string      `json:"period"`
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target amount: "+err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}

	c, err := s.store.AddChallenge(r.Context(), ledger.ChallengeInput{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		TargetAmount: target,
		Category:     strings.TrimSpace(req.Category),
		Period:       core.ChallengePeriod(req.Period),
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Challenges())
}

type challengeProgressRequest struct {
	Progress json.Number `json:"progress"`
}

func (s *Server) handleChallengeProgress(w http.ResponseWriter, r *http.Request) {
	var req challengeProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	progress, err := parseProgress(req.Progress)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid progress: "+err.Error())
		return
	}

	c, err := s.store.UpdateChallengeProgress(r.Context(), r.PathValue("id"), progress)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// parseProgress accepts zero and negative values, unlike parseAmount, so
// resets pass through and negatives reach the store's validation.
func parseProgress(raw json.Number) (core.Money, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw.String(), ",", "."))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.Money{Cents: core.CentsFromUnits(f)}, nil
}

func (s *Server) handleChallengeComplete(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.CompleteChallenge(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleChallengeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveChallenge(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Balance            *core.Money           `json:"balance"`
	TotalIncome        core.Money            `json:"total_income"`
	TotalExpense       core.Money            `json:"total_expense"`
	SavingsRate        float64               `json:"savings_rate"`
	ExpensesByCategory map[string]core.Money `json:"expenses_by_category"`
	Points             int64                 `json:"points"`
	HideBalance        bool                  `json:"hide_balance"`
}

// handleSummary returns the derived dashboard metrics. When the balance is
// hidden the field is null rather than zero, so clients cannot confuse
// "hidden" with "broke".
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	resp := summaryResponse{
		TotalIncome:        snap.TotalIncome,
		TotalExpense:       snap.TotalExpense,
		SavingsRate:        snap.SavingsRate,
		ExpensesByCategory: snap.ExpensesByCategory,
		Points:             snap.Points,
		HideBalance:        snap.HideBalance,
	}
	if !snap.HideBalance {
		balance := snap.Balance
		resp.Balance = &balance
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleBalanceVisibility(w http.ResponseWriter, r *http.Request) {
	hidden, err := s.store.ToggleBalanceVisibility(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hide_balance": hidden})
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	rows := reports.CategoryBreakdown(s.store.ExpensesByCategory())
	writeJSON(w, http.StatusOK, rows)
}
