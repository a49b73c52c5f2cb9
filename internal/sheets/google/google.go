// Package google appends committed records to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finlens/internal/core"
)

// RowHeader names the columns written for every record.
var RowHeader = []string{"Date", "Kind", "Label", "Title", "Amount", "User"}

// Config selects the spreadsheet, its two tabs and the service account.
type Config struct {
	SpreadsheetID   string
	IncomesSheet    string
	ExpensesSheet   string
	CredentialsJSON string
	CredentialsFile string
}

// Exporter writes records to the Incomes or Expenses tab.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	incomesSheet  string
	expensesSheet string
}

func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		incomesSheet:  orDefault(cfg.IncomesSheet, "Incomes"),
		expensesSheet: orDefault(cfg.ExpensesSheet, "Expenses"),
	}, nil
}

// newSheetsService initializes a Sheets service from inline service account
// JSON or a credentials file, in that order.
func newSheetsService(ctx context.Context, inlineJSON, file string) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(inlineJSON, file)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(inlineJSON, file string) ([]byte, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	switch {
	case inlineJSON != "":
		return []byte(inlineJSON), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// SheetFor returns the tab records of kind are written to.
func (e *Exporter) SheetFor(kind core.Kind) string {
	if kind == core.Income {
		return e.incomesSheet
	}
	return e.expensesSheet
}

// AppendRecord appends one row after the last filled row of the record's
// tab and returns the updated range.
func (e *Exporter) AppendRecord(ctx context.Context, r core.MoneyRecord) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", e.SheetFor(r.Kind))
	vr := &gsheet.ValueRange{Values: [][]any{RecordRow(r)}}

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append row to %s: %w", rng, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// RecordRow renders r in RowHeader column order. Amounts are written with
// two decimals so the sheet parses them as numbers.
func RecordRow(r core.MoneyRecord) []any {
	return []any{
		r.OccurredAt.String(),
		string(r.Kind),
		r.EffectiveLabel(),
		r.Title,
		r.Amount.StringFixed(2),
		r.UserID,
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
