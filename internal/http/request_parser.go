// Package http serves the finlens JSON API.
//
// This file holds the helpers shared by handlers for reading query
// parameters and JSON bodies.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finlens/internal/core"
)

// maxJSONBody caps request bodies that are not file uploads. Inline
// documents for amount extraction arrive base64-encoded, so it leaves room
// for a 5MB file.
const maxJSONBody = 8 << 20

var (
	errEmptyBody    = errors.New("request body is empty")
	errInvalidMonth = errors.New("month must be between 0 and 11")
)

// MonthParams holds a year and a 0-based month read from a query string.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month, defaulting to the current UTC month
// for missing values. A present but malformed or out-of-range value is an
// error.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	now = now.UTC()
	params := MonthParams{Year: now.Year(), Month: int(now.Month()) - 1}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	if params.Month < 0 || params.Month > 11 {
		return MonthParams{}, errInvalidMonth
	}
	return params, nil
}

// parseBound reads an optional date bound. Unparseable values are ignored,
// leaving that side of the range open.
func parseBound(query url.Values, key string) *time.Time {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil
	}
	t, ok := core.ParseCanonicalDate(core.RawDateString(v))
	if !ok {
		return nil
	}
	return &t
}

// decodeJSON reads a JSON object body into dst. Unknown fields are allowed
// since clients send whole form states.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// amountText accepts an amount sent either as a JSON number or a string.
func amountText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return s
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
