package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	DefaultExpenseLabel = "Misc"
	DefaultIncomeLabel  = "Other"
)

type (
	// Kind says whether a record adds to or subtracts from the balance.
	Kind string

	// Date is a calendar date. The zero value means the date could not be resolved.
	Date struct {
		time.Time
	}

	MoneyRecord struct {
		ID         string
		UserID     string
		Kind       Kind
		Amount     decimal.Decimal
		OccurredAt Date
		Label      string // category for expenses, source for incomes
		Title      string
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyUserID   = errors.New("empty user id")
	ErrEmptyLabel    = errors.New("empty label")
	ErrInvalidDate   = errors.New("invalid date")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
)

// ParseKind accepts the two kind names case-insensitively, plus the
// collection names used by the record store.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return Income, nil
	case "expense", "expenses":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// Collection returns the store collection the kind is persisted in.
func (k Kind) Collection() string {
	if k == Income {
		return "incomes"
	}
	return "expenses"
}

// DefaultLabel is the label used when a record carries none.
func (k Kind) DefaultLabel() string {
	if k == Income {
		return DefaultIncomeLabel
	}
	return DefaultExpenseLabel
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// Resolved reports whether the date was successfully normalized.
func (d Date) Resolved() bool {
	return !d.IsZero()
}

// MonthIndex returns the 0-based month (January is 0).
func (d Date) MonthIndex() int {
	return int(d.Time.Month()) - 1
}

// String formats the date as YYYY-MM-DD, or "" for an unresolved date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// EffectiveLabel returns the record label, falling back to the kind default.
func (r MoneyRecord) EffectiveLabel() string {
	if l := strings.TrimSpace(r.Label); l != "" {
		return l
	}
	return r.Kind.DefaultLabel()
}

// Validate checks a record before it is written to a store.
func (r MoneyRecord) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !r.OccurredAt.Resolved() {
		return ErrInvalidDate
	}
	if len(r.Title) > 200 {
		return ErrTitleTooLong
	}
	return nil
}
