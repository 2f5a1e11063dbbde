package foreign

import (
	"fmt"
	"math"
	"math/rand"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

// numberFunc builds a one number argument builtin.
func numberFunc(name string, fn func(float64) (float64, error)) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "number")
		if err != nil {
			return nil, err
		}
		n, err := numberArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		v, err := fn(n)
		if err != nil {
			return nil, err
		}
		return number(v), nil
	}
}

func plain(fn func(float64) float64) func(float64) (float64, error) {
	return func(n float64) (float64, error) { return fn(n), nil }
}

func fnMathAbsolute() evaluator.Builtin {
	return numberFunc("absolute", plain(math.Abs))
}

func fnMathSquareRoot() evaluator.Builtin {
	return numberFunc("square-root", func(n float64) (float64, error) {
		if n < 0 {
			return 0, fmt.Errorf("square-root argument must be non-negative")
		}
		return math.Sqrt(n), nil
	})
}

func fnMathFloor() evaluator.Builtin {
	return numberFunc("floor", plain(math.Floor))
}

func fnMathCeiling() evaluator.Builtin {
	return numberFunc("ceiling", plain(math.Ceil))
}

// fnMathRound rounds half away from zero, optionally to a number of
// decimal places.
func fnMathRound() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "round", args, 1, 2, "number, optional places")
		if err != nil {
			return nil, err
		}
		n, err := numberArg("round", values, 0)
		if err != nil {
			return nil, err
		}
		if len(values) == 1 {
			return number(math.Round(n)), nil
		}
		places, err := nonNegativeIntArg("round", "places", values, 1)
		if err != nil {
			return nil, err
		}
		scale := math.Pow(10, float64(min(places, 15)))
		return number(math.Round(n*scale) / scale), nil
	}
}

func fnMathPower() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "power", args, 2, 2, "base, exponent")
		if err != nil {
			return nil, err
		}
		base, err := numberArg("power", values, 0)
		if err != nil {
			return nil, err
		}
		exp, err := numberArg("power", values, 1)
		if err != nil {
			return nil, err
		}
		v := math.Pow(base, exp)
		if math.IsNaN(v) {
			return nil, fmt.Errorf("power: result is not a number")
		}
		return number(v), nil
	}
}

// fnMathRandom returns a random number in [min, max]. The result is a whole
// number unless either bound is fractional or was written with a decimal
// point, as in `random 0.0 1`.
func fnMathRandom() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "random", args, 2, 2, "min, max")
		if err != nil {
			return nil, err
		}
		lo, err1 := numberArg("random", values, 0)
		hi, err2 := numberArg("random", values, 1)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("random arguments must be numbers")
		}
		if lo > hi {
			return nil, fmt.Errorf("random minimum value cannot be greater than maximum value")
		}

		wantFloat := isFloatLiteral(args[0]) || isFloatLiteral(args[1]) ||
			lo != math.Trunc(lo) || hi != math.Trunc(hi)
		if wantFloat {
			return number(lo + rand.Float64()*(hi-lo)), nil
		}
		span := int64(hi) - int64(lo) + 1
		return number(float64(int64(lo) + rand.Int63n(span))), nil
	}
}

func isFloatLiteral(expr ast.Expression) bool {
	lit, ok := expr.(*ast.NumberLiteral)
	return ok && lit.IsFloat
}
