package core

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountSentinel is the reply a model is instructed to give when a document
// carries no payable amount.
const AmountSentinel = "NONE"

var (
	sentinelPattern    = regexp.MustCompile(`(?i)^\s*` + AmountSentinel + `\s*$`)
	amountTokenPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	entryAmountPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// dateLayouts are tried in order when a raw date is a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

type rawDateShape int

const (
	rawDateAbsent rawDateShape = iota
	rawDateString
	rawDateEpoch
	rawDateNative
	rawDateUnknown
)

// RawDate is a date as it arrives from a document: an ISO-style string, an
// epoch-seconds wrapper {"seconds": n}, or a native time. It only lives at
// the ingestion boundary; ParseCanonicalDate turns it into a time.
type RawDate struct {
	shape   rawDateShape
	text    string
	seconds float64
	native  time.Time
}

func RawDateString(s string) RawDate {
	return RawDate{shape: rawDateString, text: s}
}

func RawDateSeconds(seconds float64) RawDate {
	return RawDate{shape: rawDateEpoch, seconds: seconds}
}

func RawDateTime(t time.Time) RawDate {
	return RawDate{shape: rawDateNative, native: t}
}

// IsAbsent reports whether no date value was present at all.
func (r RawDate) IsAbsent() bool {
	return r.shape == rawDateAbsent
}

// UnmarshalJSON accepts null, a string, or an object carrying "seconds"
// (or "_seconds", as written by document store exports). Any other shape
// decodes without error into a value that normalizes to "no date".
func (r *RawDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = RawDate{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawDateString(s)
		return nil
	case data[0] == '{':
		var wrapper struct {
			Seconds      *float64 `json:"seconds"`
			LegacySecond *float64 `json:"_seconds"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			*r = RawDate{shape: rawDateUnknown}
			return nil
		}
		switch {
		case wrapper.Seconds != nil:
			*r = RawDateSeconds(*wrapper.Seconds)
		case wrapper.LegacySecond != nil:
			*r = RawDateSeconds(*wrapper.LegacySecond)
		default:
			*r = RawDate{shape: rawDateUnknown}
		}
		return nil
	default:
		*r = RawDate{shape: rawDateUnknown}
		return nil
	}
}

// MarshalJSON writes the value back in the shape it was read in.
func (r RawDate) MarshalJSON() ([]byte, error) {
	switch r.shape {
	case rawDateString:
		return json.Marshal(r.text)
	case rawDateEpoch:
		return json.Marshal(map[string]float64{"seconds": r.seconds})
	case rawDateNative:
		return json.Marshal(r.native.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// Text renders the raw value for a text column. An epoch wrapper keeps its
// JSON object form so ParseRawDateText can restore the original shape.
func (r RawDate) Text() string {
	switch r.shape {
	case rawDateString:
		return r.text
	case rawDateEpoch:
		return `{"seconds":` + strconv.FormatFloat(r.seconds, 'f', -1, 64) + `}`
	case rawDateNative:
		return r.native.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// ParseRawDateText is the inverse of Text.
func ParseRawDateText(s string) RawDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return RawDate{}
	}
	if strings.HasPrefix(s, "{") {
		var r RawDate
		_ = r.UnmarshalJSON([]byte(s))
		return r
	}
	return RawDateString(s)
}

// NormalizeAmountString removes every comma that sits between two digits
// and trims surrounding whitespace. It does not check that the result is a
// number: "12,345.67" becomes "12345.67" and "1,2,3" becomes "123".
func NormalizeAmountString(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == ',' && i > 0 && i+1 < len(raw) && isASCIIDigit(raw[i-1]) && isASCIIDigit(raw[i+1]) {
			continue
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}

// ParseCanonicalDate resolves a raw date. The second result is false when
// the value is absent or cannot be parsed; that is never an error.
func ParseCanonicalDate(raw RawDate) (time.Time, bool) {
	switch raw.shape {
	case rawDateEpoch:
		if math.IsNaN(raw.seconds) || math.IsInf(raw.seconds, 0) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(raw.seconds)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case rawDateString:
		return parseDateString(raw.text)
	case rawDateNative:
		if raw.native.IsZero() {
			return time.Time{}, false
		}
		return raw.native, true
	default:
		return time.Time{}, false
	}
}

// NormalizeDate is ParseCanonicalDate truncated to a calendar Date in UTC.
func NormalizeDate(raw RawDate) Date {
	t, ok := ParseCanonicalDate(raw)
	if !ok {
		return Date{}
	}
	return DateOf(t.UTC())
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount pulls the first decimal number out of free text.
//
// Digit-separating commas are removed first. If the whole trimmed text is
// the sentinel (case-insensitive) there is no amount. Otherwise the first
// token matching \d+(\.\d+)? is returned, so "NONE 42" yields 42.
func ParseAmount(text string) (decimal.Decimal, bool) {
	cleaned := NormalizeAmountString(text)
	if sentinelPattern.MatchString(cleaned) {
		return decimal.Decimal{}, false
	}
	token := amountTokenPattern.FindString(cleaned)
	if token == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseEntryAmount validates a user-entered amount such as "₹12,345.50".
// Unlike ParseAmount the whole string must be a positive number once
// separators and a leading currency glyph are removed.
func ParseEntryAmount(raw string) (decimal.Decimal, error) {
	s := NormalizeAmountString(raw)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
	})
	if !entryAmountPattern.MatchString(s) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
