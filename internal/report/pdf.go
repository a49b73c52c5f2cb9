package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"finlens/internal/core"
)

// MonthlyStatement is the input of the PDF and XLSX renderers.
type MonthlyStatement struct {
	Year    int
	Month   int // 0-based
	Entries []core.StatementEntry
}

// Period returns e.g. "March 2024".
func (s MonthlyStatement) Period() string {
	return fmt.Sprintf("%s %d", time.Month(s.Month+1), s.Year)
}

// Totals returns the income and expense sums of the statement, both positive.
func (s MonthlyStatement) Totals() (income, expense decimal.Decimal) {
	for _, e := range s.Entries {
		if e.Kind == core.Income {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount.Abs())
		}
	}
	return income, expense
}

// BuildStatementPDF renders a monthly statement as a single-table PDF.
func BuildStatementPDF(s MonthlyStatement) ([]byte, error) {
	income, expense := s.Totals()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Monthly Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", s.Period()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Income: %s", income.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Expense: %s", expense.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Savings: %s", income.Sub(expense).StringFixed(2)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Title", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, e := range s.Entries {
		pdf.CellFormat(40, 6, e.Date.Format(StatementDateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, truncate(e.Title, 45), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
