package foreign

import (
	"bytes"
	"sort"
	"strings"
	"tails/internal/evaluator"
	"tails/internal/object"
	"tails/internal/parser"
	"tails/internal/util"
	"testing"
)

func newTestEvaluator(t *testing.T, out *bytes.Buffer) (*evaluator.Evaluator, *Registry) {
	t.Helper()
	r := NewRegistry(util.DefaultConfiguration())
	t.Cleanup(func() { r.Close() })
	return evaluator.New(evaluator.WithRegistry(r), evaluator.WithStdout(out)), r
}

// evalWith runs input with the given variables bound first.
func evalWith(t *testing.T, input string, vars map[string]object.Object) (object.Object, error) {
	t.Helper()
	ev, _ := newTestEvaluator(t, &bytes.Buffer{})
	for name, v := range vars {
		ev.Set(name, v)
	}
	program, err := parser.Parse(input, ev)
	if err != nil {
		t.Fatalf("parse error for %q: %v", input, err)
	}
	return ev.EvalProgram(program)
}

func expectEval(t *testing.T, i int, input, expected string) {
	t.Helper()
	expectEvalWith(t, i, input, nil, expected)
}

func expectEvalWith(t *testing.T, i int, input string, vars map[string]object.Object, expected string) {
	t.Helper()
	got, err := evalWith(t, input, vars)
	if err != nil {
		t.Fatalf("tests[%d] - unexpected error for %q: %v", i, input, err)
	}
	if got.Inspect() != expected {
		t.Fatalf("tests[%d] - %q: expected %q, got %q", i, input, expected, got.Inspect())
	}
}

func expectEvalError(t *testing.T, i int, input, expected string) {
	t.Helper()
	_, err := evalWith(t, input, nil)
	if err == nil {
		t.Fatalf("tests[%d] - expected error for %q", i, input)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Fatalf("tests[%d] - %q: expected error containing %q, got %q", i, input, expected, err.Error())
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(util.DefaultConfiguration())
	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names are not sorted")
	}
	for _, want := range []string{"map", "say", "date-format", "db-connect", "to-yaml", "fuzzy-find"} {
		if !r.Has(want) {
			t.Fatalf("registry is missing %q", want)
		}
	}
	for _, name := range names {
		if fn, ok := r.Lookup(name); !ok || fn == nil {
			t.Fatalf("%q is listed but does not resolve", name)
		}
	}
	if r.Has("no-such-builtin") {
		t.Fatalf("unexpected builtin no-such-builtin")
	}
}

func TestRegistryDefaults(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.HTTPTimeout = 0
	cfg.Locale = ""
	r := NewRegistry(cfg)
	if r.Config().HTTPTimeout != util.DefaultHTTPTimeout {
		t.Fatalf("expected default HTTP timeout, got %v", r.Config().HTTPTimeout)
	}
	if r.Config().Locale != util.DefaultLocale {
		t.Fatalf("expected default locale, got %q", r.Config().Locale)
	}
}

func TestArityErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"now(1)", "now takes no arguments"},
		{"sort()", "sort requires exactly 1 argument (list)"},
		{"round(1, 2, 3)", "round requires 1-2 arguments"},
		{`trim(1)`, "trim argument must be a string, got number"},
		{`split(1, ",")`, "split first argument must be a string, got number"},
		{`map(1, double)`, "map first argument must be a list, got number"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}

func TestSayWritesToStdout(t *testing.T) {
	var out bytes.Buffer
	ev, _ := newTestEvaluator(t, &out)
	program, err := parser.Parse(`say "a" 1 true`, ev)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	got, err := ev.EvalProgram(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "a1true\n" {
		t.Fatalf("expected %q, got %q", "a1true\n", out.String())
	}
	if got.Inspect() != "a1true" {
		t.Fatalf("expected say to return its text, got %q", got.Inspect())
	}
}

func TestAskReadsInput(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		typ      string
	}{
		{"42\n", "42", "number"},
		{"tails\n", "tails", "string"},
		{"  spaced  \n", "spaced", "string"},
		{"", "", "string"},
	}

	for i, tt := range tests {
		var out bytes.Buffer
		r := NewRegistry(util.DefaultConfiguration())
		ev := evaluator.New(
			evaluator.WithRegistry(r),
			evaluator.WithStdout(&out),
			evaluator.WithStdin(strings.NewReader(tt.input)),
		)
		program, err := parser.Parse(`ask "name?"`, ev)
		if err != nil {
			t.Fatalf("tests[%d] - parse error: %v", i, err)
		}
		got, err := ev.EvalProgram(program)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if got.Inspect() != tt.expected || object.TypeName(got) != tt.typ {
			t.Fatalf("tests[%d] - expected %s %q, got %s %q", i, tt.typ, tt.expected, object.TypeName(got), got.Inspect())
		}
		if !strings.HasPrefix(out.String(), "name?") {
			t.Fatalf("tests[%d] - prompt not written, got %q", i, out.String())
		}
	}
}
