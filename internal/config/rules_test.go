package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finlens/internal/core"
)

func TestParseRuleBookOverridesDomain(t *testing.T) {
	data := []byte(`
expense:
  default: Uncategorized
  rules:
    - label: Coffee
      pattern: "starbucks|coffee"
    - label: Food
      pattern: "restaurant|food"
`)
	book, err := ParseRuleBook(data)
	if err != nil {
		t.Fatalf("ParseRuleBook: %v", err)
	}
	c := core.NewClassifier(book)
	if got := c.Classify("Morning COFFEE and food", core.ExpenseDomain); got != "Coffee" {
		t.Fatalf("expected first rule to win, got %q", got)
	}
	if got := c.Classify("rent", core.ExpenseDomain); got != "Uncategorized" {
		t.Fatalf("expected overridden default, got %q", got)
	}
	if got := c.Classify("monthly salary", core.IncomeDomain); got != "Salary" {
		t.Fatalf("income table should stay built-in, got %q", got)
	}
}

func TestParseRuleBookKeepsDefaultWhenOmitted(t *testing.T) {
	book, err := ParseRuleBook([]byte("statement:\n  rules:\n    - label: Fuel\n      pattern: petrol\n"))
	if err != nil {
		t.Fatalf("ParseRuleBook: %v", err)
	}
	if book.Statement.Default != "Misc" || len(book.Statement.Rules) != 1 {
		t.Fatalf("unexpected statement table %+v", book.Statement)
	}
}

func TestParseRuleBookErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":    "expense: [",
		"empty label": "income:\n  rules:\n    - label: \"\"\n      pattern: x\n",
		"bad pattern": "expense:\n  rules:\n    - label: X\n      pattern: \"(\"\n",
		"bad domain":  "expenses:\n  rules:\n    - label: X\n      pattern: x\n",
	}
	for name, data := range cases {
		if _, err := ParseRuleBook([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadRuleBook(t *testing.T) {
	book, err := LoadRuleBook("")
	if err != nil || len(book.Expense.Rules) == 0 {
		t.Fatalf("empty path should give built-in rules, err=%v", err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("income:\n  default: Misc Income\n  rules: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	book, err = LoadRuleBook(path)
	if err != nil || book.Income.Default != "Misc Income" || len(book.Income.Rules) != 0 {
		t.Fatalf("unexpected income table %+v err=%v", book.Income, err)
	}

	if _, err := LoadRuleBook(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "read classifier rules") {
		t.Fatalf("expected read error, got %v", err)
	}
}
