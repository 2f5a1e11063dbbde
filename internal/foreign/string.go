package foreign

import (
	"fmt"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func fnStringSplit() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "split", args, 2, 2, "string, delimiter")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("split", values, 0)
		if err != nil {
			return nil, err
		}
		delimiter, err := stringArg("split", values, 1)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, delimiter)
		out := make([]object.Object, len(parts))
		for i, p := range parts {
			out[i] = str(p)
		}
		return object.NewList(out...), nil
	}
}

// fnStringJoin joins strings, numbers and booleans with a delimiter.
func fnStringJoin() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "join", args, 1, 2, "list, delimiter")
		if err != nil {
			return nil, err
		}
		items, err := listArg("join", values, 0)
		if err != nil {
			return nil, err
		}
		delimiter := ""
		if len(values) == 2 {
			if delimiter, err = stringArg("join", values, 1); err != nil {
				return nil, err
			}
		}
		parts := make([]string, len(items))
		for i, item := range items {
			switch item.(type) {
			case *object.String, *object.Number, *object.Boolean:
				parts[i] = item.Inspect()
			default:
				return nil, fmt.Errorf("join can only work with strings, numbers, or booleans, got %s", object.TypeName(item))
			}
		}
		return str(strings.Join(parts, delimiter)), nil
	}
}

// stringTransform builds a one string argument builtin.
func stringTransform(name string, transform func(string) string) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := stringArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		return str(transform(s)), nil
	}
}

func fnStringTrim() evaluator.Builtin {
	return stringTransform("trim", strings.TrimSpace)
}

func fnStringUppercase() evaluator.Builtin {
	return stringTransform("uppercase", strings.ToUpper)
}

func fnStringLowercase() evaluator.Builtin {
	return stringTransform("lowercase", strings.ToLower)
}

// fnStringTitleCase title cases words with the rules of the configured
// locale, or of an explicit locale passed as the second argument.
func (r *Registry) fnStringTitleCase() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "title-case", args, 1, 2, "string, optional locale")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("title-case", values, 0)
		if err != nil {
			return nil, err
		}
		locale := r.config.Locale
		if len(values) == 2 {
			if locale, err = stringArg("title-case", values, 1); err != nil {
				return nil, err
			}
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("title-case: unknown locale '%s'", locale)
		}
		return str(cases.Title(tag).String(s)), nil
	}
}

// fnStringReplace replaces every occurrence of old with new.
func fnStringReplace() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "replace", args, 3, 3, "string, old, new")
		if err != nil {
			return nil, err
		}
		parts := make([]string, 3)
		for i := range parts {
			if parts[i], err = stringArg("replace", values, i); err != nil {
				return nil, err
			}
		}
		return str(strings.ReplaceAll(parts[0], parts[1], parts[2])), nil
	}
}

func stringTest(name string, test func(s, part string) bool) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 2, 2, "string, prefix")
		if err != nil {
			return nil, err
		}
		s, err := stringArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		part, err := stringArg(name, values, 1)
		if err != nil {
			return nil, err
		}
		return boolean(test(s, part)), nil
	}
}

func fnStringStartsWith() evaluator.Builtin {
	return stringTest("starts-with", strings.HasPrefix)
}

func fnStringEndsWith() evaluator.Builtin {
	return stringTest("ends-with", strings.HasSuffix)
}
