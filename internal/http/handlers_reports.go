package http

import (
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/reports"
)

// handleStatementPDF renders the transaction statement for a period. The
// period defaults to the trailing 30 days.
func (s *Server) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		end := time.Now()
		start := end.AddDate(0, 0, -29)
		from = start.Format("2006-01-02")
		to = end.Format("2006-01-02")
	}

	fromDate, err := parseDate(from)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	toDate, err := parseDate(to)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	if toDate.Before(fromDate.Time) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	var inPeriod []core.Transaction
	for _, t := range s.store.Transactions() {
		if t.Date.Before(fromDate.Time) || t.Date.After(toDate.Time) {
			continue
		}
		inPeriod = append(inPeriod, t)
	}

	snap := core.Aggregate(inPeriod)
	st := reports.Statement{
		OwnerID:      s.store.OwnerID(),
		From:         fromDate,
		To:           toDate,
		Transactions: inPeriod,
		TotalIncome:  snap.TotalIncome,
		TotalExpense: snap.TotalExpense,
		Balance:      snap.Balance,
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bilancio-statement-`+from+`-to-`+to+`.pdf"`)
	if err := reports.WriteStatementPDF(w, st); err != nil {
		s.logger.ErrorContext(r.Context(), "Statement render failed", log.FieldError, err)
	}
}
