package foreign

import (
	"tails/internal/object"
	"testing"
	"time"
)

func TestDateFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`date("2024-03-15")`, "2024-03-15T00:00:00Z"},
		{`date("2024-03-15T10:30:00+02:00")`, "2024-03-15T08:30:00Z"},
		{`date("2024-02-29")`, "2024-02-29T00:00:00Z"},
		{`date-add(date("2024-02-28"), 1)`, "2024-02-29T00:00:00Z"},
		{`date-subtract(date("2024-03-01"), 1)`, "2024-02-29T00:00:00Z"},
		{`date-add(date("2024-01-01"), 1.9)`, "2024-01-02T00:00:00Z"},
		{`date-year(date("2024-03-15"))`, "2024"},
		{`date-month(date("2024-03-15"))`, "3"},
		{`date-day(date("2024-03-15"))`, "15"},
		{`date-hour(date("2024-03-15T10:30:45Z"))`, "10"},
		{`date-minute(date("2024-03-15T10:30:45Z"))`, "30"},
		{`date-second(date("2024-03-15T10:30:45Z"))`, "45"},
		{`date-weekday(date("2024-03-17"))`, "0"},
		{`date-weekday(date("2024-03-18"))`, "1"},
		{`date-before(date("2024-01-01"), date("2024-01-02"))`, "true"},
		{`date-after(date("2024-01-01"), date("2024-01-02"))`, "false"},
		{`date-equal(date("2024-01-01"), date("2024-01-01T00:00:00Z"))`, "true"},
		{"~d is date-diff(date(\"2024-01-01\"), date(\"2024-01-02T06:00:00Z\"))\n~d.hours", "30"},
		{"~d is date-diff(date(\"2024-01-01\"), date(\"2024-01-02T06:00:00Z\"))\n~d.days", "1"},
		{"~d is date-diff(date(\"2024-01-02\"), date(\"2024-01-01\"))\n~d.days", "-1"},
		{`date-format(date("2024-03-05"), "%Y/%m/%d")`, "2024/03/05"},
		{`date-format(date("2024-03-15"), "%d %B %Y")`, "15 March 2024"},
		{`date-format(date("2024-03-15"), "%d %B %Y", "de-DE")`, "15 März 2024"},
		{`date-format(date("2024-03-17T09:05:00Z"), "%A %H:%M (%u/%w) 100%%")`, "Sunday 09:05 (7/0) 100%"},
		{`date-parse("15/03/2024", "%d/%m/%Y")`, "2024-03-15T00:00:00Z"},
		{`date-parse("2024-03-15 10:30", "%Y-%m-%d %H:%M")`, "2024-03-15T10:30:00Z"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestDateErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`date("2023-02-29")`, "Invalid date format '2023-02-29'"},
		{`date("yesterday")`, "Expected YYYY-MM-DD or ISO 8601 format"},
		{`date-add("2024-01-01", 1)`, "date-add first argument must be a date"},
		{`date-year("2024")`, "date-year argument must be a date"},
		{`date-parse("nope", "%Y-%m-%d")`, "Failed to parse 'nope' using format '%Y-%m-%d'"},
		{`date-format(date("2024-01-01"), "%Q")`, "unsupported directive '%Q'"},
		{`date-parse("1", "%u")`, "cannot be used for parsing"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}

func TestNowIsCurrent(t *testing.T) {
	before := time.Now().Add(-time.Second)
	got, err := evalWith(t, "now", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := got.(*object.Date)
	if !ok {
		t.Fatalf("expected a date, got %s", object.TypeName(got))
	}
	if d.Value.Before(before) || d.Value.After(time.Now().Add(time.Second)) {
		t.Fatalf("now returned %v", d.Value)
	}
	if d.Value.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", d.Value.Location())
	}
}

func TestMondayLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"de-DE", "de_DE"},
		{"de-AT", "de_DE"},
		{"pt-BR", "pt_BR"},
		{"fr", "fr_FR"},
		{"xx-YY", "en_US"},
		{"", "en_US"},
	}

	for i, tt := range tests {
		if got := string(mondayLocale(tt.input)); got != tt.expected {
			t.Fatalf("tests[%d] - mondayLocale(%q): expected %s, got %s", i, tt.input, tt.expected, got)
		}
	}
}
