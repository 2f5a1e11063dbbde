package foreign

import (
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

const (
	typeNumber  = "number"
	typeString  = "string"
	typeBoolean = "boolean"
	typeList    = "list"
	typeObject  = "object"
	typeNull    = "null"
)

func fnTypeOf() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "type-of", args, 1, 1, "value")
		if err != nil {
			return nil, err
		}
		return str(object.TypeName(values[0])), nil
	}
}

func fnTypeIs(want string) evaluator.Builtin {
	name := "is-" + want
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "value")
		if err != nil {
			return nil, err
		}
		return boolean(object.TypeName(values[0]) == want), nil
	}
}

// fnTypeIsEmpty is true for "", [] and {}; other values are never empty.
func fnTypeIsEmpty() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "is-empty", args, 1, 1, "value")
		if err != nil {
			return nil, err
		}
		switch v := values[0].(type) {
		case *object.String:
			return boolean(v.Value == ""), nil
		case *object.List:
			return boolean(len(v.Elements) == 0), nil
		case *object.Map:
			return boolean(v.Len() == 0), nil
		}
		return object.FALSE, nil
	}
}

// fnTypeIsDefined reports whether its argument evaluates without error, so
// `is-defined ~maybe` is false for an unbound variable.
func fnTypeIsDefined() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if err := checkArity("is-defined", len(args), 1, 1, "value"); err != nil {
			return nil, err
		}
		_, err := ev.EvalExpression(args[0])
		return boolean(err == nil), nil
	}
}
