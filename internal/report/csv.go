// Package report renders aggregated records as downloadable files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"finlens/internal/core"
)

// StatementDateLayout is how dates appear in statement downloads.
const StatementDateLayout = "January 2, 2006"

// SavingsTrendFilename is the download name of a year's savings trend.
func SavingsTrendFilename(year int) string {
	return fmt.Sprintf("Savings_Trend_%d.csv", year)
}

// StatementFilename is the download name of a monthly statement. month is
// 0-based and ext has no leading dot.
func StatementFilename(year, month int, ext string) string {
	return fmt.Sprintf("Statement_%d_%02d.%s", year, month+1, ext)
}

// WriteSavingsTrendCSV writes one row per month with two-decimal amounts.
func WriteSavingsTrendCSV(w io.Writer, buckets [12]core.MonthBucket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Month", "Income", "Expenses", "Savings"}); err != nil {
		return err
	}
	for _, b := range buckets {
		row := []string{
			b.Label(),
			b.Income.StringFixed(2),
			b.Expense.StringFixed(2),
			b.Savings().StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatementCSV writes the entries of a monthly statement. Expense
// amounts are already negative in entries.
func WriteStatementCSV(w io.Writer, entries []core.StatementEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Title", "Type", "Amount"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Date.Format(StatementDateLayout),
			e.Title,
			e.Type,
			e.Amount.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
