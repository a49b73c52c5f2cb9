package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

// BuildStatementXLSX renders a monthly statement as a workbook with a
// summary sheet and a transactions sheet.
func BuildStatementXLSX(s MonthlyStatement) ([]byte, error) {
	income, expense := s.Totals()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Monthly Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", s.Period())
	_ = f.SetCellValue(summarySheet, "A4", "Total Income")
	_ = f.SetCellValue(summarySheet, "B4", income.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A5", "Total Expense")
	_ = f.SetCellValue(summarySheet, "B5", expense.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A6", "Savings")
	_ = f.SetCellValue(summarySheet, "B6", income.Sub(expense).InexactFloat64())

	_ = f.SetCellValue(transactionsSheet, "A1", "Date")
	_ = f.SetCellValue(transactionsSheet, "B1", "Title")
	_ = f.SetCellValue(transactionsSheet, "C1", "Type")
	_ = f.SetCellValue(transactionsSheet, "D1", "Amount")
	for i, e := range s.Entries {
		row := i + 2
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("A%d", row), e.Date.Format(StatementDateLayout))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("B%d", row), e.Title)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("C%d", row), e.Type)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("D%d", row), e.Amount.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
