package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TrendMonths is the length of the trailing balance trend.
const TrendMonths = 6

// SummaryFallbackCategory labels uncategorized expenses in period summaries.
const SummaryFallbackCategory = "Other"

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var hundred = decimal.NewFromInt(100)

type (
	// Window selects a calendar year, or a single month of it when Month is
	// set. Month is 0-based: 0 is January.
	Window struct {
		Year  int
		Month *int
	}

	Summary struct {
		TotalIncome    decimal.Decimal
		TotalExpense   decimal.Decimal
		Savings        decimal.Decimal
		CategoryTotals map[string]decimal.Decimal
	}

	// MonthBucket accumulates one calendar month. Month is 0-based.
	MonthBucket struct {
		Month   int
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	BalancePoint struct {
		Year       int
		Month      int // 0-based
		MonthLabel string
		Balance    decimal.Decimal
	}

	// Trend is the trailing balance view ending at a target month.
	Trend struct {
		Points        []BalancePoint
		Income        decimal.Decimal
		Expense       decimal.Decimal
		Balance       decimal.Decimal
		PercentChange decimal.Decimal
	}

	// StatementEntry is one line of a monthly statement. Expense amounts are
	// negative.
	StatementEntry struct {
		Date   Date
		Title  string
		Type   string
		Kind   Kind
		Amount decimal.Decimal
	}

	monthKey struct {
		year  int
		month time.Month
	}

	monthTotals struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}
)

func YearWindow(year int) Window {
	return Window{Year: year}
}

func MonthWindow(year, month int) Window {
	return Window{Year: year, Month: &month}
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	if !d.Resolved() || d.Year() != w.Year {
		return false
	}
	return w.Month == nil || d.MonthIndex() == *w.Month
}

// MonthLabel returns the short English name of a 0-based month.
func MonthLabel(month int) string {
	return monthLabels[((month%12)+12)%12]
}

// Savings is income minus expense.
func (b MonthBucket) Savings() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

func (b MonthBucket) Label() string {
	return MonthLabel(b.Month)
}

func newSummary() Summary {
	return Summary{CategoryTotals: map[string]decimal.Decimal{}}
}

func (s *Summary) add(r MoneyRecord, label string) {
	switch r.Kind {
	case Income:
		s.TotalIncome = s.TotalIncome.Add(r.Amount)
	case Expense:
		s.TotalExpense = s.TotalExpense.Add(r.Amount)
		s.CategoryTotals[label] = s.CategoryTotals[label].Add(r.Amount)
	}
}

// Aggregate folds records falling inside w into totals and an expense
// breakdown by label. Records whose date could not be resolved are skipped.
func Aggregate(records []MoneyRecord, w Window) Summary {
	s := newSummary()
	for _, r := range records {
		if !w.Contains(r.OccurredAt) {
			continue
		}
		s.add(r, r.EffectiveLabel())
	}
	s.Savings = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// PeriodSummary aggregates records dated within [from, to]. Nil bounds are
// open. Expenses without a category are counted under "Other".
func PeriodSummary(records []MoneyRecord, from, to *time.Time) Summary {
	s := newSummary()
	for _, r := range records {
		if !r.OccurredAt.Resolved() {
			continue
		}
		if from != nil && r.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && r.OccurredAt.After(*to) {
			continue
		}
		label := r.Label
		if label == "" {
			label = SummaryFallbackCategory
		}
		s.add(r, label)
	}
	s.Savings = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// YearBuckets returns income and expense per month of year.
func YearBuckets(records []MoneyRecord, year int) [12]MonthBucket {
	var buckets [12]MonthBucket
	for i := range buckets {
		buckets[i].Month = i
	}
	for _, r := range records {
		if !r.OccurredAt.Resolved() || r.OccurredAt.Year() != year {
			continue
		}
		b := &buckets[r.OccurredAt.MonthIndex()]
		switch r.Kind {
		case Income:
			b.Income = b.Income.Add(r.Amount)
		case Expense:
			b.Expense = b.Expense.Add(r.Amount)
		}
	}
	return buckets
}

// BalanceTrend computes the per-month balance for the six calendar months
// ending at (year, month), target included. Balances are not cumulative.
func BalanceTrend(records []MoneyRecord, year, month int) Trend {
	totals := make(map[monthKey]*monthTotals)
	for _, r := range records {
		if !r.OccurredAt.Resolved() {
			continue
		}
		k := monthKey{year: r.OccurredAt.Year(), month: r.OccurredAt.Time.Month()}
		t, ok := totals[k]
		if !ok {
			t = &monthTotals{}
			totals[k] = t
		}
		switch r.Kind {
		case Income:
			t.income = t.income.Add(r.Amount)
		case Expense:
			t.expense = t.expense.Add(r.Amount)
		}
	}

	trend := Trend{Points: make([]BalancePoint, 0, TrendMonths)}
	for i := TrendMonths - 1; i >= 0; i-- {
		first := time.Date(year, time.Month(month+1-i), 1, 0, 0, 0, 0, time.UTC)
		k := monthKey{year: first.Year(), month: first.Month()}
		var income, expense decimal.Decimal
		if t, ok := totals[k]; ok {
			income, expense = t.income, t.expense
		}
		trend.Points = append(trend.Points, BalancePoint{
			Year:       k.year,
			Month:      int(k.month) - 1,
			MonthLabel: MonthLabel(int(k.month) - 1),
			Balance:    income.Sub(expense),
		})
		if i == 0 {
			trend.Income, trend.Expense = income, expense
		}
	}

	trend.Balance = trend.Income.Sub(trend.Expense)
	prev := trend.Points[len(trend.Points)-2].Balance
	trend.PercentChange = PercentChange(trend.Balance, prev)
	return trend
}

// PercentChange is (cur - prev) / |prev| * 100 rounded to one decimal.
// A zero previous value yields 100 when cur is nonzero and 0 otherwise.
func PercentChange(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if cur.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return cur.Sub(prev).Div(prev.Abs()).Mul(hundred).Round(1)
}

// MonthTransactions lists the records of one month, newest first, in the
// form used by the statement download.
func MonthTransactions(records []MoneyRecord, year, month int) []StatementEntry {
	w := MonthWindow(year, month)
	out := make([]StatementEntry, 0)
	for _, r := range records {
		if !w.Contains(r.OccurredAt) {
			continue
		}
		out = append(out, statementEntry(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

func statementEntry(r MoneyRecord) StatementEntry {
	e := StatementEntry{Date: r.OccurredAt, Kind: r.Kind, Title: r.Title}
	if r.Kind == Income {
		e.Type = "Income"
		e.Amount = r.Amount
		if e.Title == "" {
			e.Title = r.Label
		}
		if e.Title == "" {
			e.Title = "Income"
		}
		return e
	}
	e.Type = r.Label
	if e.Type == "" {
		e.Type = "Expense"
	}
	e.Amount = r.Amount.Neg()
	if e.Title == "" {
		e.Title = e.Type
	}
	return e
}
