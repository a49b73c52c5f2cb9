package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Income", Income, true},
		{"incomes", Income, true},
		{" EXPENSE ", Expense, true},
		{"expenses", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseKind(%q) = %q, %v", tc.in, got, err)
		}
		if !tc.ok && err != ErrInvalidKind {
			t.Fatalf("ParseKind(%q) expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindDefaults(t *testing.T) {
	if Income.DefaultLabel() != "Other" || Expense.DefaultLabel() != "Misc" {
		t.Fatalf("unexpected default labels")
	}
	if Income.Collection() != "incomes" || Expense.Collection() != "expenses" {
		t.Fatalf("unexpected collections")
	}
}

func TestDateHelpers(t *testing.T) {
	d := DateOf(time.Date(2024, 7, 4, 18, 30, 0, 0, time.UTC))
	if d.String() != "2024-07-04" || d.MonthIndex() != 6 || !d.Resolved() {
		t.Fatalf("unexpected date %v (month index %d)", d, d.MonthIndex())
	}
	if (Date{}).Resolved() || (Date{}).String() != "" {
		t.Fatalf("zero date should be unresolved")
	}
	if DateOf(time.Time{}).Resolved() {
		t.Fatalf("DateOf(zero) should be unresolved")
	}
}

func TestMoneyRecordValidate(t *testing.T) {
	good := MoneyRecord{
		UserID:     "u1",
		Kind:       Expense,
		Amount:     decimal.NewFromInt(10),
		OccurredAt: NewDate(2024, 1, 1),
		Label:      "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]func(r *MoneyRecord){
		"user":  func(r *MoneyRecord) { r.UserID = " " },
		"kind":  func(r *MoneyRecord) { r.Kind = "Transfer" },
		"zero":  func(r *MoneyRecord) { r.Amount = decimal.Zero },
		"neg":   func(r *MoneyRecord) { r.Amount = decimal.NewFromInt(-1) },
		"date":  func(r *MoneyRecord) { r.OccurredAt = Date{} },
		"title": func(r *MoneyRecord) { r.Title = strings.Repeat("x", 201) },
	}
	for name, mutate := range bads {
		r := good
		mutate(&r)
		if err := r.Validate(); err == nil {
			t.Fatalf("case %s expected error", name)
		}
	}
}

func TestEffectiveLabel(t *testing.T) {
	if (MoneyRecord{Kind: Expense}).EffectiveLabel() != "Misc" {
		t.Fatalf("expense fallback should be Misc")
	}
	if (MoneyRecord{Kind: Income, Label: "  "}).EffectiveLabel() != "Other" {
		t.Fatalf("income fallback should be Other")
	}
	if (MoneyRecord{Kind: Income, Label: "Gift"}).EffectiveLabel() != "Gift" {
		t.Fatalf("explicit label should win")
	}
}
