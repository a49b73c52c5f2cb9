package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeAmountString(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"12,345.67", "12345.67"},
		{"1,2,3", "123"},
		{"  1,000  ", "1000"},
		{"a,b", "a,b"},
		{"1, 2", "1, 2"},
		{",12,", ",12,"},
		{"₹ 2,50,000", "₹ 250000"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeAmountString(tc.in); got != tc.out {
			t.Fatalf("NormalizeAmountString(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestParseCanonicalDateEpochSeconds(t *testing.T) {
	for _, s := range []int64{0, 1, 1710000000, -86400} {
		got, ok := ParseCanonicalDate(RawDateSeconds(float64(s)))
		if !ok {
			t.Fatalf("seconds=%d: expected a date", s)
		}
		if got.UnixMilli() != s*1000 {
			t.Fatalf("seconds=%d: got %d ms, want %d", s, got.UnixMilli(), s*1000)
		}
	}
}

func TestParseCanonicalDateShapes(t *testing.T) {
	native := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		raw  RawDate
		want time.Time
		ok   bool
	}{
		{"iso date", RawDateString("2024-03-05"), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", RawDateString("2024-03-05T12:00:00Z"), time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), true},
		{"long form", RawDateString("March 5, 2024"), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"native", RawDateTime(native), native, true},
		{"garbage string", RawDateString("not a date"), time.Time{}, false},
		{"empty string", RawDateString(""), time.Time{}, false},
		{"absent", RawDate{}, time.Time{}, false},
		{"zero native", RawDateTime(time.Time{}), time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCanonicalDate(tc.raw)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRawDateJSON(t *testing.T) {
	var doc struct {
		Date RawDate `json:"date"`
	}
	inputs := map[string]bool{
		`{"date":"2024-01-31"}`:                 true,
		`{"date":{"seconds":1706659200}}`:       true,
		`{"date":{"_seconds":1706659200}}`:      true,
		`{"date":null}`:                         false,
		`{}`:                                    false,
		`{"date":42}`:                           false,
		`{"date":{"nanoseconds":1}}`:            false,
		`{"date":["2024-01-31"]}`:               false,
	}
	for in, resolvable := range inputs {
		doc.Date = RawDate{}
		if err := json.Unmarshal([]byte(in), &doc); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		d := NormalizeDate(doc.Date)
		if d.Resolved() != resolvable {
			t.Fatalf("%s: resolved = %v, want %v", in, d.Resolved(), resolvable)
		}
		if resolvable && d.String() != "2024-01-31" {
			t.Fatalf("%s: got %s", in, d)
		}
	}
}

func TestRawDateTextRoundTrip(t *testing.T) {
	for _, raw := range []RawDate{RawDateString("2024-02-29"), RawDateSeconds(1709164800)} {
		back := ParseRawDateText(raw.Text())
		if NormalizeDate(back) != NormalizeDate(raw) {
			t.Fatalf("%q did not survive a text round trip", raw.Text())
		}
	}
	if !ParseRawDateText("").IsAbsent() {
		t.Fatalf("empty text should be absent")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"45230.50", "45230.5", true},
		{"Net Pay: 1,23,456.78", "123456.78", true},
		{"NONE", "", false},
		{"  none  ", "", false},
		{"NoNe\n", "", false},
		{"NONE 42", "42", true},
		{"no digits here", "", false},
		{"", "", false},
		{"total 12 and 30", "12", true},
		{"₹999", "999", true},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseAmount(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestExtractPayableAmount(t *testing.T) {
	if _, ok := ExtractPayableAmount("NONE"); ok {
		t.Fatalf("sentinel must yield no amount")
	}
	got, ok := ExtractPayableAmount("52,000")
	if !ok || !got.Equal(decimal.NewFromInt(52000)) {
		t.Fatalf("got %s ok=%v", got, ok)
	}
}

func TestParseEntryAmount(t *testing.T) {
	good := map[string]string{
		"12":         "12",
		"12,345.50":  "12345.5",
		"₹ 1,000":    "1000",
		"$0.01":      "0.01",
		" 7.25 ":     "7.25",
	}
	for in, want := range good {
		got, err := ParseEntryAmount(in)
		if err != nil || !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseEntryAmount(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0", "-5", "abc", "12abc", "1e3", "1.2.3"} {
		if _, err := ParseEntryAmount(in); err != ErrInvalidAmount {
			t.Fatalf("ParseEntryAmount(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}
