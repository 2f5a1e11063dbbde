package foreign

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

// clearScreen resets the terminal and homes the cursor.
const clearScreen = "\x1bc\x1b[H"

func fnConsoleSay() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := ev.EvalArguments(args)
		if err != nil {
			return nil, err
		}
		var out strings.Builder
		for _, v := range values {
			out.WriteString(v.Inspect())
		}
		message := out.String()
		if _, err := fmt.Fprintln(ev.Stdout(), message); err != nil {
			return nil, fmt.Errorf("say: %w", err)
		}
		return str(message), nil
	}
}

// fnConsoleAsk prints the prompt arguments joined by spaces, reads one line
// and returns it as a number when it parses as one.
func fnConsoleAsk() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := ev.EvalArguments(args)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = v.Inspect()
			}
			if _, err := io.WriteString(ev.Stdout(), strings.Join(parts, " ")); err != nil {
				return nil, fmt.Errorf("ask: %w", err)
			}
		}

		line, err := ev.Stdin().ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ask: failed to read input: %w", err)
		}
		input := strings.TrimSpace(line)
		if n, ok := parseNumber(input); ok {
			return number(n), nil
		}
		return str(input), nil
	}
}

// parseNumber accepts finite decimal numbers only, so answers like "inf"
// stay strings.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func fnConsoleClear() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if err := checkArity("clear", len(args), 0, 0, ""); err != nil {
			return nil, err
		}
		if _, err := io.WriteString(ev.Stdout(), clearScreen); err != nil {
			return nil, fmt.Errorf("clear: %w", err)
		}
		return object.NULL, nil
	}
}
