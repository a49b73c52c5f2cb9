package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func rec(kind Kind, amount int64, d Date, label string) MoneyRecord {
	return MoneyRecord{UserID: "u1", Kind: kind, Amount: decimal.NewFromInt(amount), OccurredAt: d, Label: label}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, w := range []Window{YearWindow(2024), MonthWindow(2024, 0), MonthWindow(1999, 11)} {
		s := Aggregate(nil, w)
		assertDec(t, "income", s.TotalIncome, "0")
		assertDec(t, "expense", s.TotalExpense, "0")
		assertDec(t, "savings", s.Savings, "0")
		if s.CategoryTotals == nil || len(s.CategoryTotals) != 0 {
			t.Fatalf("expected empty non-nil category map, got %v", s.CategoryTotals)
		}
	}
}

func TestAggregateMarchScenario(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 50000, NewDate(2024, 3, 1), "Salary"),
		rec(Expense, 12000, NewDate(2024, 3, 5), "Rent"),
	}
	s := Aggregate(records, MonthWindow(2024, 2))
	assertDec(t, "income", s.TotalIncome, "50000")
	assertDec(t, "expense", s.TotalExpense, "12000")
	assertDec(t, "savings", s.Savings, "38000")
	if len(s.CategoryTotals) != 1 {
		t.Fatalf("expected one category, got %v", s.CategoryTotals)
	}
	assertDec(t, "Rent", s.CategoryTotals["Rent"], "12000")
}

func TestAggregateFiltersWindowAndUnresolvedDates(t *testing.T) {
	records := []MoneyRecord{
		rec(Expense, 100, NewDate(2024, 3, 5), "Food"),
		rec(Expense, 50, NewDate(2024, 4, 5), "Food"),
		rec(Expense, 70, NewDate(2023, 3, 5), "Food"),
		rec(Expense, 999, Date{}, "Food"),
		rec(Income, 999, Date{}, "Salary"),
		rec(Expense, 30, NewDate(2024, 3, 9), ""),
	}

	month := Aggregate(records, MonthWindow(2024, 2))
	assertDec(t, "month expense", month.TotalExpense, "130")
	assertDec(t, "month income", month.TotalIncome, "0")
	assertDec(t, "Food", month.CategoryTotals["Food"], "100")
	assertDec(t, "Misc", month.CategoryTotals["Misc"], "30")

	year := Aggregate(records, YearWindow(2024))
	assertDec(t, "year expense", year.TotalExpense, "180")
	assertDec(t, "year savings", year.Savings, "-180")
}

func TestAggregateIsDeterministic(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 1000, NewDate(2024, 1, 1), "Salary"),
		rec(Expense, 1, NewDate(2024, 1, 2), "A"),
		rec(Expense, 2, NewDate(2024, 1, 3), "B"),
		rec(Expense, 3, NewDate(2024, 1, 4), "A"),
	}
	first := Aggregate(records, YearWindow(2024))
	second := Aggregate(records, YearWindow(2024))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregate is not deterministic: %+v vs %+v", first, second)
	}
}

func TestYearBuckets(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 500, NewDate(2024, 1, 10), "Salary"),
		rec(Expense, 200, NewDate(2024, 1, 11), "Food"),
		rec(Expense, 40, NewDate(2024, 12, 31), "Food"),
		rec(Income, 77, NewDate(2025, 1, 1), "Salary"),
		rec(Expense, 5, Date{}, "Food"),
	}
	b := YearBuckets(records, 2024)
	if b[0].Label() != "Jan" || b[11].Label() != "Dec" {
		t.Fatalf("unexpected labels %s %s", b[0].Label(), b[11].Label())
	}
	assertDec(t, "jan income", b[0].Income, "500")
	assertDec(t, "jan savings", b[0].Savings(), "300")
	assertDec(t, "dec expense", b[11].Expense, "40")
	assertDec(t, "dec savings", b[11].Savings(), "-40")
	for i := 1; i < 11; i++ {
		if !b[i].Income.IsZero() || !b[i].Expense.IsZero() {
			t.Fatalf("bucket %d should be empty: %+v", i, b[i])
		}
	}
}

func TestBalanceTrendCrossesYearBoundary(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 1000, NewDate(2023, 10, 3), "Salary"),
		rec(Expense, 400, NewDate(2023, 12, 20), "Rent"),
		rec(Income, 3000, NewDate(2024, 1, 15), "Salary"),
		rec(Expense, 1000, NewDate(2024, 2, 2), "Rent"),
		rec(Income, 2000, NewDate(2024, 2, 25), "Salary"),
		rec(Income, 5000, NewDate(2024, 3, 1), "Salary"),
	}
	trend := BalanceTrend(records, 2024, 1) // February 2024

	wantLabels := []string{"Sep", "Oct", "Nov", "Dec", "Jan", "Feb"}
	wantBalance := []string{"0", "1000", "0", "-400", "3000", "1000"}
	if len(trend.Points) != TrendMonths {
		t.Fatalf("expected %d points, got %d", TrendMonths, len(trend.Points))
	}
	for i, p := range trend.Points {
		if p.MonthLabel != wantLabels[i] {
			t.Fatalf("point %d label = %s, want %s", i, p.MonthLabel, wantLabels[i])
		}
		assertDec(t, "balance "+p.MonthLabel, p.Balance, wantBalance[i])
	}
	if trend.Points[0].Year != 2023 || trend.Points[5].Year != 2024 {
		t.Fatalf("unexpected years %d..%d", trend.Points[0].Year, trend.Points[5].Year)
	}
	assertDec(t, "income", trend.Income, "2000")
	assertDec(t, "expense", trend.Expense, "1000")
	assertDec(t, "balance", trend.Balance, "1000")
	// (1000 - 3000) / 3000 * 100
	assertDec(t, "change", trend.PercentChange, "-66.7")
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		cur, prev, want string
	}{
		{"0", "0", "0"},
		{"10", "0", "100"},
		{"-10", "0", "100"},
		{"150", "100", "50"},
		{"50", "-100", "150"},
		{"-200", "-100", "-100"},
		{"1", "3", "-66.7"},
	}
	for _, tc := range cases {
		got := PercentChange(decimal.RequireFromString(tc.cur), decimal.RequireFromString(tc.prev))
		assertDec(t, tc.cur+" vs "+tc.prev, got, tc.want)
	}
}

func TestPeriodSummary(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 100, NewDate(2024, 1, 1), "Salary"),
		rec(Expense, 10, NewDate(2024, 1, 31), ""),
		rec(Expense, 20, NewDate(2024, 2, 1), "Food"),
		rec(Expense, 99, Date{}, "Food"),
	}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	s := PeriodSummary(records, &from, &to)
	assertDec(t, "income", s.TotalIncome, "100")
	assertDec(t, "expense", s.TotalExpense, "10")
	assertDec(t, "Other", s.CategoryTotals["Other"], "10")

	open := PeriodSummary(records, nil, nil)
	assertDec(t, "open expense", open.TotalExpense, "30")
	assertDec(t, "open savings", open.Savings, "70")
}

func TestMonthTransactions(t *testing.T) {
	records := []MoneyRecord{
		rec(Income, 100, NewDate(2024, 3, 1), "Salary"),
		{UserID: "u1", Kind: Expense, Amount: decimal.NewFromInt(30), OccurredAt: NewDate(2024, 3, 20), Title: "Dinner", Label: "Food"},
		rec(Expense, 5, NewDate(2024, 3, 10), ""),
		rec(Expense, 7, NewDate(2024, 4, 1), "Food"),
	}
	entries := MonthTransactions(records, 2024, 2)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Title != "Dinner" || entries[0].Type != "Food" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	assertDec(t, "expense sign", entries[0].Amount, "-30")
	if entries[1].Type != "Expense" || entries[1].Title != "Expense" {
		t.Fatalf("unexpected fallback entry %+v", entries[1])
	}
	if entries[2].Type != "Income" || entries[2].Title != "Salary" {
		t.Fatalf("unexpected income entry %+v", entries[2])
	}
}
