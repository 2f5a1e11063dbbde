package foreign

import (
	"fmt"
	"math"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"
)

const unbounded = -1

// evalArgs checks the argument count and evaluates every argument. usage
// names the expected arguments for the error message.
func evalArgs(ev *evaluator.Evaluator, name string, args []ast.Expression, minArgs, maxArgs int, usage string) ([]object.Object, error) {
	if err := checkArity(name, len(args), minArgs, maxArgs, usage); err != nil {
		return nil, err
	}
	return ev.EvalArguments(args)
}

func checkArity(name string, got, minArgs, maxArgs int, usage string) error {
	if got >= minArgs && (maxArgs == unbounded || got <= maxArgs) {
		return nil
	}
	switch {
	case maxArgs == 0:
		return fmt.Errorf("%s takes no arguments", name)
	case minArgs == maxArgs:
		return fmt.Errorf("%s requires exactly %d %s (%s)", name, minArgs, plural(minArgs, "argument"), usage)
	case maxArgs == unbounded:
		return fmt.Errorf("%s requires at least %d %s (%s)", name, minArgs, plural(minArgs, "argument"), usage)
	}
	return fmt.Errorf("%s requires %d-%d arguments (%s)", name, minArgs, maxArgs, usage)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

var ordinals = []string{"first", "second", "third", "fourth"}

// argError reports a badly typed argument: "map first argument must be a
// list", or "trim argument must be a string" for single argument builtins.
func argError(name string, args []object.Object, i int, want string) error {
	if len(args) == 1 || i >= len(ordinals) {
		return fmt.Errorf("%s argument must be %s, got %s", name, article(want), object.TypeName(args[i]))
	}
	return fmt.Errorf("%s %s argument must be %s, got %s", name, ordinals[i], article(want), object.TypeName(args[i]))
}

func article(noun string) string {
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + noun
	}
	return "a " + noun
}

func listArg(name string, args []object.Object, i int) ([]object.Object, error) {
	l, ok := args[i].(*object.List)
	if !ok {
		return nil, argError(name, args, i, "list")
	}
	return l.Elements, nil
}

func mapArg(name string, args []object.Object, i int) (*object.Map, error) {
	m, ok := args[i].(*object.Map)
	if !ok {
		return nil, argError(name, args, i, "object")
	}
	return m, nil
}

func stringArg(name string, args []object.Object, i int) (string, error) {
	s, ok := args[i].(*object.String)
	if !ok {
		return "", argError(name, args, i, "string")
	}
	return s.Value, nil
}

func numberArg(name string, args []object.Object, i int) (float64, error) {
	n, ok := args[i].(*object.Number)
	if !ok {
		return 0, argError(name, args, i, "number")
	}
	return n.Value, nil
}

func dateArg(name string, args []object.Object, i int) (time.Time, error) {
	d, ok := args[i].(*object.Date)
	if !ok {
		return time.Time{}, argError(name, args, i, "date")
	}
	return d.Value, nil
}

// intArg reads a whole number argument; what names it in errors, e.g.
// "index" or "count".
func intArg(name, what string, args []object.Object, i int) (int, error) {
	n, err := numberArg(name, args, i)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%s: %s must be an integer", name, what)
	}
	if math.Abs(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%s: %s is out of range", name, what)
	}
	return int(n), nil
}

func nonNegativeIntArg(name, what string, args []object.Object, i int) (int, error) {
	n, err := intArg(name, what, args, i)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: %s must be non-negative", name, what)
	}
	return n, nil
}

// optionsArg reads an optional trailing options object. A missing or null
// argument is an empty object.
func optionsArg(name string, args []object.Object, i int) (*object.Map, error) {
	if i >= len(args) {
		return object.NewMap(), nil
	}
	if _, isNull := args[i].(*object.Null); isNull {
		return object.NewMap(), nil
	}
	return mapArg(name, args, i)
}

func number(v float64) *object.Number {
	return &object.Number{Value: v}
}

func str(s string) *object.String {
	return &object.String{Value: s}
}

func boolean(b bool) *object.Boolean {
	return object.NativeBoolToBooleanObject(b)
}

// callableArg resolves a callback argument for a higher order builtin.
func callableArg(ev *evaluator.Evaluator, name string, arg ast.Expression) (evaluator.Callable, error) {
	c, err := ev.Callable(arg)
	if err != nil {
		return evaluator.Callable{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}
