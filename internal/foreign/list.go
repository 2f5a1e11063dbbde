package foreign

import (
	"fmt"
	"sort"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

// listAndCallback evaluates the (list, callback) pair shared by the higher
// order list builtins.
func listAndCallback(ev *evaluator.Evaluator, name string, args []ast.Expression, usage string) ([]object.Object, evaluator.Callable, error) {
	if err := checkArity(name, len(args), 2, 2, usage); err != nil {
		return nil, evaluator.Callable{}, err
	}
	first, err := ev.EvalExpression(args[0])
	if err != nil {
		return nil, evaluator.Callable{}, err
	}
	list, ok := first.(*object.List)
	if !ok {
		return nil, evaluator.Callable{}, fmt.Errorf("%s first argument must be a list, got %s", name, object.TypeName(first))
	}
	fn, err := callableArg(ev, name, args[1])
	if err != nil {
		return nil, evaluator.Callable{}, err
	}
	return append([]object.Object(nil), list.Elements...), fn, nil
}

// predicate applies fn to item and reports whether the result is truthy.
func predicate(ev *evaluator.Evaluator, fn evaluator.Callable, item object.Object) (bool, error) {
	res, err := ev.Apply(fn, item)
	if err != nil {
		return false, err
	}
	return object.IsTruthy(res), nil
}

func fnListMap() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "map", args, "list, function")
		if err != nil {
			return nil, err
		}
		out := make([]object.Object, 0, len(items))
		for _, item := range items {
			v, err := ev.Apply(fn, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return object.NewList(out...), nil
	}
}

func fnListFilter() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "filter", args, "list, function")
		if err != nil {
			return nil, err
		}
		out := []object.Object{}
		for _, item := range items {
			keep, err := predicate(ev, fn, item)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, item)
			}
		}
		return object.NewList(out...), nil
	}
}

func fnListReduce() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if err := checkArity("reduce", len(args), 3, 3, "list, function, initial"); err != nil {
			return nil, err
		}
		items, fn, err := listAndCallback(ev, "reduce", args[:2], "list, function, initial")
		if err != nil {
			return nil, err
		}
		acc, err := ev.EvalExpression(args[2])
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			acc, err = ev.Apply(fn, acc, item)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

// compareValues orders numbers, strings and booleans among themselves.
// Values of other or mixed types compare equal, so a stable sort keeps
// their relative order.
func compareValues(a, b object.Object) int {
	switch x := a.(type) {
	case *object.Number:
		if y, ok := b.(*object.Number); ok {
			switch {
			case x.Value < y.Value:
				return -1
			case x.Value > y.Value:
				return 1
			}
		}
	case *object.String:
		if y, ok := b.(*object.String); ok {
			return strings.Compare(x.Value, y.Value)
		}
	case *object.Boolean:
		if y, ok := b.(*object.Boolean); ok && x.Value != y.Value {
			if !x.Value {
				return -1
			}
			return 1
		}
	case *object.Date:
		if y, ok := b.(*object.Date); ok {
			return x.Value.Compare(y.Value)
		}
	}
	return 0
}

func fnListSort() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "sort", args, 1, 1, "list")
		if err != nil {
			return nil, err
		}
		items, err := listArg("sort", values, 0)
		if err != nil {
			return nil, err
		}
		out := append([]object.Object(nil), items...)
		sort.SliceStable(out, func(i, j int) bool { return compareValues(out[i], out[j]) < 0 })
		return object.NewList(out...), nil
	}
}

func fnListSortBy() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "sort-by", args, "list, function")
		if err != nil {
			return nil, err
		}
		type keyed struct {
			key, item object.Object
		}
		pairs := make([]keyed, len(items))
		for i, item := range items {
			k, err := ev.Apply(fn, item)
			if err != nil {
				return nil, err
			}
			pairs[i] = keyed{k, item}
		}
		sort.SliceStable(pairs, func(i, j int) bool { return compareValues(pairs[i].key, pairs[j].key) < 0 })
		out := make([]object.Object, len(pairs))
		for i, p := range pairs {
			out[i] = p.item
		}
		return object.NewList(out...), nil
	}
}

func fnListReverse() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "reverse", args, 1, 1, "list")
		if err != nil {
			return nil, err
		}
		if s, ok := values[0].(*object.String); ok {
			runes := []rune(s.Value)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return str(string(runes)), nil
		}
		items, err := listArg("reverse", values, 0)
		if err != nil {
			return nil, err
		}
		out := make([]object.Object, len(items))
		for i, item := range items {
			out[len(items)-1-i] = item
		}
		return object.NewList(out...), nil
	}
}

// findMatch returns the index of the first (or last) item the callback
// accepts, or -1.
func findMatch(ev *evaluator.Evaluator, name string, args []ast.Expression, last bool) ([]object.Object, int, error) {
	items, fn, err := listAndCallback(ev, name, args, "list, function")
	if err != nil {
		return nil, -1, err
	}
	for n := range items {
		i := n
		if last {
			i = len(items) - 1 - n
		}
		ok, err := predicate(ev, fn, items[i])
		if err != nil {
			return nil, -1, err
		}
		if ok {
			return items, i, nil
		}
	}
	return items, -1, nil
}

func fnListFind() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, i, err := findMatch(ev, "find", args, false)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return object.NULL, nil
		}
		return items[i], nil
	}
}

func fnListFindIndex() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		_, i, err := findMatch(ev, "find-index", args, false)
		if err != nil {
			return nil, err
		}
		return number(float64(i)), nil
	}
}

func fnListFindLast() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, i, err := findMatch(ev, "find-last", args, true)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return object.NULL, nil
		}
		return items[i], nil
	}
}

func fnListEvery() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "every", args, "list, function")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			ok, err := predicate(ev, fn, item)
			if err != nil {
				return nil, err
			}
			if !ok {
				return object.FALSE, nil
			}
		}
		return object.TRUE, nil
	}
}

func fnListSome() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		_, i, err := findMatch(ev, "some", args, false)
		if err != nil {
			return nil, err
		}
		return boolean(i >= 0), nil
	}
}

func fnListRemoveIf() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "remove-if", args, "list, function")
		if err != nil {
			return nil, err
		}
		out := []object.Object{}
		for _, item := range items {
			drop, err := predicate(ev, fn, item)
			if err != nil {
				return nil, err
			}
			if !drop {
				out = append(out, item)
			}
		}
		return object.NewList(out...), nil
	}
}

func fnListCountIf() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "count-if", args, "list, function")
		if err != nil {
			return nil, err
		}
		count := 0
		for _, item := range items {
			ok, err := predicate(ev, fn, item)
			if err != nil {
				return nil, err
			}
			if ok {
				count++
			}
		}
		return number(float64(count)), nil
	}
}

// prefixLength counts the leading items the callback accepts.
func prefixLength(ev *evaluator.Evaluator, name string, args []ast.Expression) ([]object.Object, int, error) {
	items, fn, err := listAndCallback(ev, name, args, "list, function")
	if err != nil {
		return nil, 0, err
	}
	for i, item := range items {
		ok, err := predicate(ev, fn, item)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return items, i, nil
		}
	}
	return items, len(items), nil
}

func fnListTakeWhile() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, n, err := prefixLength(ev, "take-while", args)
		if err != nil {
			return nil, err
		}
		return object.NewList(append([]object.Object(nil), items[:n]...)...), nil
	}
}

func fnListDropWhile() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, n, err := prefixLength(ev, "drop-while", args)
		if err != nil {
			return nil, err
		}
		return object.NewList(append([]object.Object(nil), items[n:]...)...), nil
	}
}

// fnListPartition splits a list into an object {matched, unmatched}.
func fnListPartition() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "partition", args, "list, function")
		if err != nil {
			return nil, err
		}
		matched, unmatched := []object.Object{}, []object.Object{}
		for _, item := range items {
			ok, err := predicate(ev, fn, item)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = append(matched, item)
			} else {
				unmatched = append(unmatched, item)
			}
		}
		return object.NewMap().
			Put("matched", object.NewList(matched...)).
			Put("unmatched", object.NewList(unmatched...)), nil
	}
}

// fnListGroupBy builds an object from the callback's result (as text) to the
// items that produced it, in first seen order.
func fnListGroupBy() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		items, fn, err := listAndCallback(ev, "group-by", args, "list, function")
		if err != nil {
			return nil, err
		}
		groups := object.NewMap()
		for _, item := range items {
			k, err := ev.Apply(fn, item)
			if err != nil {
				return nil, err
			}
			key := k.Inspect()
			var members []object.Object
			if existing, ok := groups.Get(key); ok {
				members = append(members, existing.(*object.List).Elements...)
			}
			groups.Put(key, object.NewList(append(members, item)...))
		}
		return groups, nil
	}
}
