package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/log"
	"finlens/internal/services"
	"finlens/internal/statement"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	RawText string `json:"rawText,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeFailure reports an unexpected error with its message, the way
// model and storage failures are surfaced to clients.
func writeFailure(w http.ResponseWriter, msg string, err error) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msg, Message: err.Error()})
}

// number renders a decimal as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type summaryJSON struct {
	TotalIncome    json.Number            `json:"totalIncome"`
	TotalExpense   json.Number            `json:"totalExpense"`
	Savings        json.Number            `json:"savings"`
	CategoryTotals map[string]json.Number `json:"categoryTotals"`
}

func newSummaryJSON(s core.Summary) summaryJSON {
	out := summaryJSON{
		TotalIncome:    number(s.TotalIncome),
		TotalExpense:   number(s.TotalExpense),
		Savings:        number(s.Savings),
		CategoryTotals: make(map[string]json.Number, len(s.CategoryTotals)),
	}
	for label, total := range s.CategoryTotals {
		out.CategoryTotals[label] = number(total)
	}
	return out
}

type bucketJSON struct {
	Month   int         `json:"month"`
	Label   string      `json:"label"`
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Savings json.Number `json:"savings"`
}

type pointJSON struct {
	Year    int         `json:"year"`
	Month   int         `json:"month"`
	Label   string      `json:"label"`
	Balance json.Number `json:"balance"`
}

type trendJSON struct {
	Points        []pointJSON `json:"points"`
	Income        json.Number `json:"income"`
	Expense       json.Number `json:"expense"`
	Balance       json.Number `json:"balance"`
	PercentChange json.Number `json:"percentChange"`
}

type categoryJSON struct {
	Name  string      `json:"name"`
	Value json.Number `json:"value"`
}

type dashboardJSON struct {
	Year       int            `json:"year"`
	Month      int            `json:"month"`
	Summary    summaryJSON    `json:"summary"`
	Categories []categoryJSON `json:"categories"`
	Buckets    []bucketJSON   `json:"buckets"`
	Trend      trendJSON      `json:"trend"`
}

func newDashboardJSON(p MonthParams, d services.Dashboard) dashboardJSON {
	out := dashboardJSON{
		Year:    p.Year,
		Month:   p.Month,
		Summary: newSummaryJSON(d.Summary),
		Buckets: make([]bucketJSON, 0, len(d.Buckets)),
		Trend: trendJSON{
			Points:        make([]pointJSON, 0, len(d.Trend.Points)),
			Income:        number(d.Trend.Income),
			Expense:       number(d.Trend.Expense),
			Balance:       number(d.Trend.Balance),
			PercentChange: number(d.Trend.PercentChange),
		},
	}
	for _, b := range d.Buckets {
		out.Buckets = append(out.Buckets, bucketJSON{
			Month:   b.Month,
			Label:   b.Label(),
			Income:  number(b.Income),
			Expense: number(b.Expense),
			Savings: number(b.Savings()),
		})
	}
	for _, p := range d.Trend.Points {
		out.Trend.Points = append(out.Trend.Points, pointJSON{
			Year:    p.Year,
			Month:   p.Month,
			Label:   p.MonthLabel,
			Balance: number(p.Balance),
		})
	}
	out.Categories = categoryBreakdown(d.Summary.CategoryTotals)
	return out
}

// categoryBreakdown lists category totals largest first, ties by name, for
// the pie chart.
func categoryBreakdown(totals map[string]decimal.Decimal) []categoryJSON {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c := totals[names[i]].Cmp(totals[names[j]]); c != 0 {
			return c > 0
		}
		return names[i] < names[j]
	})
	out := make([]categoryJSON, 0, len(names))
	for _, name := range names {
		out = append(out, categoryJSON{Name: name, Value: number(totals[name])})
	}
	return out
}

type recordJSON struct {
	ID     string      `json:"id"`
	Kind   core.Kind   `json:"kind"`
	Amount json.Number `json:"amount"`
	Date   string      `json:"date"`
	Label  string      `json:"label"`
	Title  string      `json:"title,omitempty"`
}

func newRecordJSON(r core.MoneyRecord) recordJSON {
	return recordJSON{
		ID:     r.ID,
		Kind:   r.Kind,
		Amount: number(r.Amount),
		Date:   r.OccurredAt.String(),
		Label:  r.EffectiveLabel(),
		Title:  r.Title,
	}
}

type transactionsJSON struct {
	Transactions []statement.ExtractedTransaction `json:"transactions"`
}
