package foreign

import (
	"fmt"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"unicode/utf8"
)

func fnObjectKeys() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "keys", args, 1, 1, "object")
		if err != nil {
			return nil, err
		}
		m, err := mapArg("keys", values, 0)
		if err != nil {
			return nil, err
		}
		keys := m.Keys()
		out := make([]object.Object, len(keys))
		for i, k := range keys {
			out[i] = str(k)
		}
		return object.NewList(out...), nil
	}
}

func fnObjectValues() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "values", args, 1, 1, "object")
		if err != nil {
			return nil, err
		}
		m, err := mapArg("values", values, 0)
		if err != nil {
			return nil, err
		}
		out := make([]object.Object, 0, m.Len())
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			out = append(out, v)
		}
		return object.NewList(out...), nil
	}
}

// fnObjectHas takes the key first: `has "name" ~user`.
func fnObjectHas() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "has", args, 2, 2, "key, object")
		if err != nil {
			return nil, err
		}
		key, err := stringArg("has", values, 0)
		if err != nil {
			return nil, err
		}
		m, err := mapArg("has", values, 1)
		if err != nil {
			return nil, err
		}
		_, ok := m.Get(key)
		return boolean(ok), nil
	}
}

func twoObjects(ev *evaluator.Evaluator, name string, args []ast.Expression) (*object.Map, *object.Map, error) {
	values, err := evalArgs(ev, name, args, 2, 2, "object, object")
	if err != nil {
		return nil, nil, err
	}
	a, err := mapArg(name, values, 0)
	if err != nil {
		return nil, nil, err
	}
	b, err := mapArg(name, values, 1)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// fnObjectMerge copies the second object's keys over the first.
func fnObjectMerge() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		a, b, err := twoObjects(ev, "merge", args)
		if err != nil {
			return nil, err
		}
		out := a.Clone()
		for _, k := range b.Keys() {
			v, _ := b.Get(k)
			out.Put(k, v)
		}
		return out, nil
	}
}

func fnObjectDeepMerge() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		a, b, err := twoObjects(ev, "deep-merge", args)
		if err != nil {
			return nil, err
		}
		return deepMerge(a, b), nil
	}
}

// deepMerge merges nested objects key by key; any other value in b wins.
func deepMerge(a, b object.Object) object.Object {
	am, aok := a.(*object.Map)
	bm, bok := b.(*object.Map)
	if !aok || !bok {
		return b
	}
	out := am.Clone()
	for _, k := range bm.Keys() {
		bv, _ := bm.Get(k)
		if av, ok := out.Get(k); ok {
			out.Put(k, deepMerge(av, bv))
		} else {
			out.Put(k, bv)
		}
	}
	return out
}

func objectAndFields(ev *evaluator.Evaluator, name string, args []ast.Expression) (*object.Map, map[string]bool, []string, error) {
	values, err := evalArgs(ev, name, args, 2, 2, "object, fields")
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := mapArg(name, values, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	items, err := listArg(name, values, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	set := map[string]bool{}
	var order []string
	for _, item := range items {
		s, ok := item.(*object.String)
		if !ok {
			return nil, nil, nil, fmt.Errorf("%s field names must be strings", name)
		}
		if !set[s.Value] {
			order = append(order, s.Value)
		}
		set[s.Value] = true
	}
	return m, set, order, nil
}

// fnObjectPick keeps the listed fields, in the order they were listed.
func fnObjectPick() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		m, _, fields, err := objectAndFields(ev, "pick", args)
		if err != nil {
			return nil, err
		}
		out := object.NewMap()
		for _, f := range fields {
			if v, ok := m.Get(f); ok {
				out.Put(f, v)
			}
		}
		return out, nil
	}
}

func fnObjectOmit() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		m, omit, _, err := objectAndFields(ev, "omit", args)
		if err != nil {
			return nil, err
		}
		out := object.NewMap()
		for _, k := range m.Keys() {
			if !omit[k] {
				v, _ := m.Get(k)
				out.Put(k, v)
			}
		}
		return out, nil
	}
}

// fnObjectGet reads a dotted path such as "user.address.city"; a missing
// step yields null.
func fnObjectGet() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "object-get", args, 2, 2, "object, path")
		if err != nil {
			return nil, err
		}
		path, err := stringArg("object-get", values, 1)
		if err != nil {
			return nil, err
		}
		current := values[0]
		for _, part := range strings.Split(path, ".") {
			m, ok := current.(*object.Map)
			if !ok {
				return object.NULL, nil
			}
			if current, ok = m.Get(part); !ok {
				return object.NULL, nil
			}
		}
		return current, nil
	}
}

// fnObjectSet returns a copy of the object with value stored at a dotted
// path, creating intermediate objects.
func fnObjectSet() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "object-set", args, 3, 3, "object, path, value")
		if err != nil {
			return nil, err
		}
		path, err := stringArg("object-set", values, 1)
		if err != nil {
			return nil, err
		}
		return setPath(values[0], strings.Split(path, "."), values[2])
	}
}

func setPath(container object.Object, path []string, value object.Object) (object.Object, error) {
	m, ok := container.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("object-set: cannot set property '%s' on %s", path[0], object.TypeName(container))
	}
	out := m.Clone()
	if len(path) == 1 {
		return out.Put(path[0], value), nil
	}
	child, ok := out.Get(path[0])
	if !ok {
		child = object.NewMap()
	}
	updated, err := setPath(child, path[1:], value)
	if err != nil {
		return nil, err
	}
	return out.Put(path[0], updated), nil
}

// fnCollectionLength counts list elements, string characters or object keys.
func fnCollectionLength() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "length", args, 1, 1, "list or string")
		if err != nil {
			return nil, err
		}
		switch v := values[0].(type) {
		case *object.List:
			return number(float64(len(v.Elements))), nil
		case *object.String:
			return number(float64(utf8.RuneCountInString(v.Value))), nil
		case *object.Map:
			return number(float64(v.Len())), nil
		}
		return nil, fmt.Errorf("length can only be used on lists, strings or objects, got %s", object.TypeName(values[0]))
	}
}

func fnCollectionAppend() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "append", args, 2, 2, "list, value")
		if err != nil {
			return nil, err
		}
		l, ok := values[0].(*object.List)
		if !ok {
			return nil, fmt.Errorf("append can only be used on lists, got %s", object.TypeName(values[0]))
		}
		return object.NewList(append(cloneElements(l.Elements), values[1])...), nil
	}
}
