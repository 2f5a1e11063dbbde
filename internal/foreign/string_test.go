package foreign

import "testing"

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`split "a,b,c" ","`, "[a, b, c]"},
		{`join(["a", "b"], "-")`, "a-b"},
		{`join([1, true, "x"])`, "1truex"},
		{`trim "  tails  "`, "tails"},
		{`uppercase "abc"`, "ABC"},
		{`lowercase "ABC"`, "abc"},
		{`replace "a-b-c" "-" "+"`, "a+b+c"},
		{`starts-with "tails" "ta"`, "true"},
		{`ends-with "tails" "ta"`, "false"},
		{`title-case "hello wide world"`, "Hello Wide World"},
		{`title-case("istanbul", "tr")`, "İstanbul"},
		{`length "héllo"`, "5"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"absolute(-5)", "5"},
		{"square-root 16", "4"},
		{"floor 2.7", "2"},
		{"ceiling 2.1", "3"},
		{"round 2.5", "3"},
		{"round(-2.5)", "-3"},
		{"round(3.14159, 2)", "3.14"},
		{"power 2 10", "1024"},
		{"random 4 4", "4"},
		{"is-odd 3", "true"},
		{"is-even 3", "false"},
		{"is-positive 1", "true"},
		{"is-negative 1", "false"},
		{"is-zero 0", "true"},
		{"double 4", "8"},
		{"triple 2", "6"},
		{"quadruple 2", "8"},
		{"half 5", "2.5"},
		{"square 3", "9"},
		{"increment 1", "2"},
		{"decrement 1", "0"},
		{"add 2 3", "5"},
		{"multiply 2 3", "6"},
		{"max 2 3", "3"},
		{"min 2 3", "2"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestRandomStaysInRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		got, err := evalWith(t, "random 1 3", nil)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		switch got.Inspect() {
		case "1", "2", "3":
		default:
			t.Fatalf("tests[%d] - random 1 3 gave %s", i, got.Inspect())
		}
	}
}

func TestMathErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"square-root(-1)", "square-root argument must be non-negative"},
		{"random 5 1", "random minimum value cannot be greater than maximum value"},
		{`random "a" 1`, "random arguments must be numbers"},
		{"round(1.5, -1)", "places must be non-negative"},
		{`double "x"`, "double argument must be a number"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}
