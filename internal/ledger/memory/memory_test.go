package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/ledger"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Append(ctx, core.MoneyRecord{
		UserID:     "u1",
		Kind:       core.Expense,
		Amount:     decimal.NewFromInt(120),
		OccurredAt: core.NewDate(2024, 3, 5),
		Label:      "Food",
	})
	if err != nil || id == "" {
		t.Fatalf("unexpected append: id=%q err=%v", id, err)
	}

	if _, err := s.Append(ctx, core.MoneyRecord{UserID: "u1", Kind: core.Expense}); err == nil {
		t.Fatalf("expected validation error for zero amount")
	}

	got, err := s.ListRecords(ctx, "u1", core.Expense)
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected list: %v err=%v", got, err)
	}
	if got[0].ID != id || got[0].CreatedAt.IsZero() {
		t.Fatalf("stored record missing id or createdAt: %+v", got[0])
	}

	incomes, _ := s.ListRecords(ctx, "u1", core.Income)
	other, _ := s.ListRecords(ctx, "u2", core.Expense)
	if len(incomes) != 0 || len(other) != 0 {
		t.Fatalf("expected filtering by kind and user")
	}

	if _, err := s.ListRecords(ctx, "", core.Expense); !errors.Is(err, core.ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}

	rec, err := s.GetRecord(ctx, id)
	if err != nil || rec.Label != "Food" {
		t.Fatalf("unexpected get: %+v err=%v", rec, err)
	}
	if _, err := s.GetRecord(ctx, "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFromFilesNormalizesRawDates(t *testing.T) {
	dir := t.TempDir()

	// No files -> empty store
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}
	if got, _ := s.ListRecords(context.Background(), "u1", core.Income); len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("incomes.json", `[
		{"userId":"u1","amount":50000,"date":"2024-03-01","source":"Salary"},
		{"userId":"u1","amount":1000,"date":{"seconds":1709251200},"source":""}
	]`)
	mustWrite("expenses.json", `[
		{"userId":"u1","amount":"12000","date":{"_seconds":1709856000},"category":"Rent"},
		{"userId":"u2","amount":5,"date":42,"category":"Food"}
	]`)

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}
	ctx := context.Background()

	incomes, _ := s.ListRecords(ctx, "u1", core.Income)
	if len(incomes) != 2 {
		t.Fatalf("expected 2 incomes, got %d", len(incomes))
	}
	if incomes[1].OccurredAt != core.NewDate(2024, 3, 1) || incomes[1].EffectiveLabel() != "Other" {
		t.Fatalf("unexpected epoch income %+v", incomes[1])
	}

	expenses, _ := s.ListRecords(ctx, "u1", core.Expense)
	if len(expenses) != 1 || expenses[0].OccurredAt != core.NewDate(2024, 3, 8) {
		t.Fatalf("unexpected expenses %+v", expenses)
	}

	u2, _ := s.ListRecords(ctx, "u2", core.Expense)
	if len(u2) != 1 || u2[0].OccurredAt.Resolved() {
		t.Fatalf("numeric date should be unresolved: %+v", u2)
	}
}

func TestNewFromFilesSkipsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	content := `[
		{"userId":"u1","amount":40,"date":"2024-03-02","category":"Food"},
		{"userId":"u1","amount":-500,"date":"2024-03-03","category":"Food"},
		{"userId":"","amount":10,"date":"2024-03-04","category":"Food"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "expenses.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}
	got, _ := s.ListRecords(context.Background(), "u1", core.Expense)
	if len(got) != 1 || !got[0].Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected only the valid expense, got %+v", got)
	}
	if sum := core.Aggregate(got, core.YearWindow(2024)); sum.TotalExpense.IsNegative() {
		t.Fatalf("negative total from seeds: %s", sum.TotalExpense)
	}
}

func TestNewFromFilesRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "expenses.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}
