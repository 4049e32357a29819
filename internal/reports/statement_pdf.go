package reports

import (
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"bilancio/internal/core"
)

// Statement is everything the PDF renderer needs: already filtered to the
// requested period by the caller.
type Statement struct {
	OwnerID      string
	From, To     core.Date
	Transactions []core.Transaction
	TotalIncome  core.Money
	TotalExpense core.Money
	Balance      core.Money
}

const statementMaxRows = 200

// WriteStatementPDF renders an A4 statement with a summary table followed by
// the transaction list. HideBalance does not apply to exports; asking for a
// statement is an explicit reveal.
func WriteStatementPDF(w io.Writer, st Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Bilancio Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+st.From.Format("2006-01-02")+" to "+st.To.Format("2006-01-02"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Owner: "+maskOwner(st.OwnerID))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expenses", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, st.TotalIncome.String(), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, st.TotalExpense.String(), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, st.Balance.String(), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{24, 26, 60, 52, 28}
	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "TYPE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 8, "CATEGORY", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "NOTES", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[4], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	writeHeader()
	pdf.SetTextColor(30, 30, 30)

	for i, t := range st.Transactions {
		if i >= statementMaxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "truncated, too many rows", "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeHeader()
		}

		amount := t.Amount.String()
		if t.Type == core.Expense {
			amount = "-" + amount
		}
		pdf.CellFormat(colW[0], 8, strings.ToUpper(string(t.Type)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, t.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 8, trimTo(t.Category, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, trimTo(t.Notes, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 8, amount, "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated by bilancio at "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

func maskOwner(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
