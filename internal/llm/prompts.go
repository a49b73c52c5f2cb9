package llm

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ExtractionPrompt asks for the single payable figure of a payslip, invoice
// or receipt. The model answers with a bare number or the sentinel NONE.
const ExtractionPrompt = `You are a precise financial extraction assistant.

The attached PDF is a payslip, invoice, or receipt.

Return ONLY the final payable amount:
Priority labels:
1. Net Salary Payable / Net Salary / Net Pay
2. Total Earnings / Total Earnings (A)
3. Grand Total / Amount Paid / Total Amount / Total

Rules:
- Output ONLY the number (no commas, no currency symbol, no words).
- Keep decimals if present.
- If nothing matches, output EXACTLY: NONE`

const classificationTemplate = `You are a personal finance assistant.

Classify each line as a transaction with these fields:
- date
- description
- amount
- type ("Credit" or "Debit")
- classifiedAs ("Income" or "Expense")

If a line doesn't contain a transaction, skip it.
Output a JSON array. Use today's date if no date is present.

TEXT:
"""%s"""`

// ClassificationPrompt asks the model to segment statement text into a JSON
// array of transactions.
func ClassificationPrompt(text string) string {
	return fmt.Sprintf(classificationTemplate, text)
}

// Stats is the input of the financial-health prompt.
type Stats struct {
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	CategoryTotals map[string]decimal.Decimal
}

// StatsInsightsPrompt asks for a short health summary and budgeting tips.
// Categories are listed alphabetically so the prompt is stable.
func StatsInsightsPrompt(s Stats, currency string) string {
	net := s.TotalIncome.Sub(s.TotalExpense)

	categories := "No category breakdown available."
	if len(s.CategoryTotals) > 0 {
		names := make([]string, 0, len(s.CategoryTotals))
		for name := range s.CategoryTotals {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, 0, len(names))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("- %s: %s%s", name, currency, s.CategoryTotals[name].StringFixed(2)))
		}
		categories = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("You are a helpful financial assistant AI.\n\n")
	b.WriteString("The user's financial summary is:\n")
	fmt.Fprintf(&b, "- Total Income: %s%s\n", currency, s.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "- Total Expenses: %s%s\n", currency, s.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "- Net Savings: %s%s\n", currency, net.StringFixed(2))
	b.WriteString("- Expense Breakdown:\n")
	b.WriteString(categories)
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A short summary of their financial health.\n")
	b.WriteString("2. 2–3 suggestions to improve budgeting/saving.\n")
	b.WriteString("3. Simple tips for financial planning.\n\n")
	b.WriteString("Only respond in clear, plain English. No greetings or sign-offs.")
	return b.String()
}

// MonthlyInsightPrompt asks for two or three markdown bullets about one
// month. monthName is the full English month name.
func MonthlyInsightPrompt(monthName string, year int, income, expense decimal.Decimal, currency string) string {
	savings := income.Sub(expense)

	var b strings.Builder
	b.WriteString("You are a helpful AI financial assistant.\n\n")
	b.WriteString("Analyze this user's monthly finance summary and return exactly 2–3 concise bullet points:\n")
	b.WriteString("* One insight about income\n")
	b.WriteString("* One insight about spending\n")
	b.WriteString("* One improvement tip (optional)\n\n")
	b.WriteString("Respond ONLY with bullet points in markdown format using \"*\".\n\n")
	fmt.Fprintf(&b, "Month: %s %d\n", monthName, year)
	fmt.Fprintf(&b, "Total Income: %s%s\n", currency, income.StringFixed(2))
	fmt.Fprintf(&b, "Total Expense: %s%s\n", currency, expense.StringFixed(2))
	fmt.Fprintf(&b, "Savings: %s%s", currency, savings.StringFixed(2))
	return b.String()
}

// MaxInsightPoints caps the bullets kept from a monthly insight reply.
const MaxInsightPoints = 3

var bulletPrefix = regexp.MustCompile(`^\*\s*`)

// ParseBulletPoints keeps the lines of a reply that start with "*", strips
// the marker, and returns at most MaxInsightPoints of them.
func ParseBulletPoints(reply string) []string {
	points := make([]string, 0, MaxInsightPoints)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") {
			continue
		}
		points = append(points, strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")))
		if len(points) == MaxInsightPoints {
			break
		}
	}
	return points
}
