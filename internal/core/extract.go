package core

import "github.com/shopspring/decimal"

// ExtractPayableAmount reads the single monetary figure a model was asked to
// return for a payslip, invoice or receipt. A false result is expected and
// means the caller has to ask for manual entry.
func ExtractPayableAmount(modelOutput string) (decimal.Decimal, bool) {
	return ParseAmount(modelOutput)
}
