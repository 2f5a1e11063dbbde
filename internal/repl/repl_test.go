package repl

import (
	"bytes"
	"strings"
	"tails/internal/evaluator"
	"tails/internal/foreign"
	"tails/internal/util"
	"testing"
)

func TestDepth(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"say 1", 0},
		{"for-each ~x in [1, 2] (", 1},
		{"function f ~a {\n  give (~a", 2},
		{"(1 + 2)", 0},
		{`say "(("`, 0},
		{"say don't (", 1},
		{`say "it's" (`, 1},
		{"say 1 # (", 0},
		{"(\n# )\n", 1},
		{"{a: [1, 2]}", 0},
		{")", -1},
	}

	for i, tt := range tests {
		if got := Depth(tt.input); got != tt.expected {
			t.Fatalf("tests[%d] - Depth(%q): expected %d, got %d", i, tt.input, tt.expected, got)
		}
	}
}

func runSession(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := foreign.NewRegistry(util.DefaultConfiguration())
	t.Cleanup(func() { r.Close() })
	ev := evaluator.New(evaluator.WithRegistry(r), evaluator.WithStdout(&out))
	Start(ev, strings.NewReader(input), &out)
	return out.String()
}

func TestStartKeepsState(t *testing.T) {
	got := runSession(t, "~x is 4\n~x * 3\n")
	if !strings.Contains(got, "12\n") {
		t.Fatalf("expected 12 in output, got %q", got)
	}
	if !strings.HasPrefix(got, PROMPT) {
		t.Fatalf("expected output to start with the prompt, got %q", got)
	}
}

func TestStartContinuesUnbalancedInput(t *testing.T) {
	got := runSession(t, "~total is 0\nfor-each ~x in [1, 2, 3] (\n  ~total up ~x\n)\n~total\n")
	if !strings.Contains(got, CONTINUE_PROMPT) {
		t.Fatalf("expected a continuation prompt, got %q", got)
	}
	if !strings.Contains(got, "6\n") {
		t.Fatalf("expected 6 in output, got %q", got)
	}
}

func TestStartJoinsClauseOnFollowingLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"~x is 2\nif ~x > 5 (\n  say \"big\"\n)\nelse (\n  say \"small\"\n)\n", "small\n"},
		{"~x is 9\nif ~x > 5 (\n  say \"big\"\n)\notherwise (\n  say \"small\"\n)\n", "big\n"},
		{"attempt (\n  ~y is 1 / 0\n)\nrescue ~e (\n  say ~e.message\n)\n", "Division by zero\n"},
	}

	for i, tt := range tests {
		got := runSession(t, tt.input)
		if strings.Contains(got, "Parse error") {
			t.Fatalf("tests[%d] - clause was parsed on its own: %q", i, got)
		}
		if !strings.Contains(got, tt.expected) {
			t.Fatalf("tests[%d] - expected %q in output, got %q", i, tt.expected, got)
		}
	}
}

func TestStartFlushesHeldBlock(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"if true (\n  say \"first\"\n)\nsay \"second\"\n", []string{"first\n", "second\n"}},
		{"if true (say \"last\")\n", []string{"last\n"}},
		{"if true (say \"before\")\nexit\nsay \"after\"\n", []string{"before\n"}},
	}

	for i, tt := range tests {
		got := runSession(t, tt.input)
		for _, want := range tt.expected {
			if !strings.Contains(got, want) {
				t.Fatalf("tests[%d] - expected %q in output, got %q", i, want, got)
			}
		}
		if strings.Contains(got, "after") {
			t.Fatalf("tests[%d] - input after exit was evaluated: %q", i, got)
		}
		if first, second := strings.Index(got, "first"), strings.Index(got, "second"); first > second {
			t.Fatalf("tests[%d] - held block ran out of order: %q", i, got)
		}
	}
}

func TestStartStopsAtExit(t *testing.T) {
	got := runSession(t, "say \"before\"\nexit\nsay \"after\"\n")
	if !strings.Contains(got, "before") {
		t.Fatalf("expected output before exit, got %q", got)
	}
	if strings.Contains(got, "after") {
		t.Fatalf("input after exit was evaluated: %q", got)
	}
}

func TestStartReportsErrorsAndContinues(t *testing.T) {
	got := runSession(t, "~n is 5\n~n.x\n~n + 1\n")
	if !strings.Contains(got, "Error: ") {
		t.Fatalf("expected a runtime error, got %q", got)
	}
	if !strings.Contains(got, "6\n") {
		t.Fatalf("expected evaluation to continue after the error, got %q", got)
	}
}

func TestStartShowsParseErrorContext(t *testing.T) {
	got := runSession(t, "~x is )\n")
	if !strings.Contains(got, "Parse error: ") {
		t.Fatalf("expected a parse error, got %q", got)
	}
	if !strings.Contains(got, "^ unexpected here") {
		t.Fatalf("expected a caret under the error, got %q", got)
	}
}

func TestComplete(t *testing.T) {
	r := foreign.NewRegistry(util.DefaultConfiguration())
	s := &session{ev: evaluator.New(evaluator.WithRegistry(r))}

	got := s.complete("map ~xs is-ev")
	if len(got) != 1 || got[0] != "map ~xs is-even" {
		t.Fatalf("unexpected completions %v", got)
	}
	if got := s.complete("~va"); got != nil {
		t.Fatalf("variables should not complete, got %v", got)
	}
	for _, c := range s.complete("date-") {
		if !strings.HasPrefix(c, "date-") {
			t.Fatalf("unexpected completion %q", c)
		}
	}
}
