package foreign

import (
	"math"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

// Small named helpers meant as map/filter/reduce callbacks.

func numberPredicate(name string, test func(float64) bool) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "number")
		if err != nil {
			return nil, err
		}
		n, err := numberArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		return boolean(test(n)), nil
	}
}

// Parity truncates toward zero first, so 3.7 is odd.
func fnHelperIsEven() evaluator.Builtin {
	return numberPredicate("is-even", func(n float64) bool { return int64(n)%2 == 0 })
}

func fnHelperIsOdd() evaluator.Builtin {
	return numberPredicate("is-odd", func(n float64) bool { return int64(n)%2 != 0 })
}

func fnHelperIsPositive() evaluator.Builtin {
	return numberPredicate("is-positive", func(n float64) bool { return n > 0 })
}

func fnHelperIsNegative() evaluator.Builtin {
	return numberPredicate("is-negative", func(n float64) bool { return n < 0 })
}

func fnHelperIsZero() evaluator.Builtin {
	return numberPredicate("is-zero", func(n float64) bool { return n == 0 })
}

func fnHelperScale(name string, factor float64) evaluator.Builtin {
	return numberFunc(name, plain(func(n float64) float64 { return n * factor }))
}

func fnHelperSquare() evaluator.Builtin {
	return numberFunc("square", plain(func(n float64) float64 { return n * n }))
}

func fnHelperIncrement() evaluator.Builtin {
	return numberFunc("increment", plain(func(n float64) float64 { return n + 1 }))
}

func fnHelperDecrement() evaluator.Builtin {
	return numberFunc("decrement", plain(func(n float64) float64 { return n - 1 }))
}

func numberPair(name string, fn func(a, b float64) float64) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 2, 2, "number, number")
		if err != nil {
			return nil, err
		}
		a, err := numberArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		b, err := numberArg(name, values, 1)
		if err != nil {
			return nil, err
		}
		return number(fn(a, b)), nil
	}
}

func fnHelperAdd() evaluator.Builtin {
	return numberPair("add", func(a, b float64) float64 { return a + b })
}

func fnHelperMultiply() evaluator.Builtin {
	return numberPair("multiply", func(a, b float64) float64 { return a * b })
}

func fnHelperMax() evaluator.Builtin {
	return numberPair("max", math.Max)
}

func fnHelperMin() evaluator.Builtin {
	return numberPair("min", math.Min)
}
