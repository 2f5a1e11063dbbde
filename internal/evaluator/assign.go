package evaluator

import (
	"strconv"
	"tails/internal/ast"
	"tails/internal/object"
)

// assignProperty writes value at target.property. The target must be a
// variable or a property chain rooted at one. Containers are never changed
// in place: the path is rebuilt from copies and the root variable rebound.
func (ev *Evaluator) assignProperty(target ast.Expression, property string, value object.Object) error {
	root, path, err := propertyPath(target)
	if err != nil {
		return err
	}
	path = append(path, property)

	current, _ := ev.env.Get(root)
	updated, err := ev.assignPath(current, path, value)
	if err != nil {
		return err
	}
	ev.env.Update(root, updated)
	return nil
}

// propertyPath flattens `~a.b.c` into ("a", ["b", "c"]).
func propertyPath(expr ast.Expression) (string, []string, error) {
	switch e := expr.(type) {
	case *ast.Variable:
		return e.Name, nil, nil
	case *ast.PropertyAccess:
		root, path, err := propertyPath(e.Object)
		if err != nil {
			return "", nil, err
		}
		return root, append(path, e.Property), nil
	}
	return "", nil, newError("Invalid property assignment target")
}

// assignPath returns a copy of container with value stored at path. A nil
// or null container is created: a list when the key is a non-negative
// integer, an object otherwise.
func (ev *Evaluator) assignPath(container object.Object, path []string, value object.Object) (object.Object, error) {
	if len(path) == 0 {
		return value, nil
	}
	property := path[0]

	if _, isNull := container.(*object.Null); isNull || container == nil {
		if ev.isListIndex(property) {
			container = object.NewList()
		} else {
			container = object.NewMap()
		}
	}

	switch c := container.(type) {
	case *object.Map:
		key, err := ev.propertyKey(property)
		if err != nil {
			return nil, err
		}
		child, _ := c.Get(key)
		updated, err := ev.assignPath(child, path[1:], value)
		if err != nil {
			return nil, err
		}
		return c.Clone().Put(key, updated), nil

	case *object.List:
		index, err := ev.propertyIndex(property, "set")
		if err != nil {
			return nil, err
		}
		if index < 0 {
			return nil, newError("Cannot set property '%s' on list: index must be a non-negative integer", property)
		}
		if index-len(c.Elements) > MaxListPadding {
			return nil, newError("Cannot set property '%s' on list: index is more than %d past the end of the list", property, MaxListPadding)
		}
		elements := make([]object.Object, max(len(c.Elements), index+1))
		copy(elements, c.Elements)
		for i := len(c.Elements); i < len(elements); i++ {
			elements[i] = object.NULL
		}
		var child object.Object
		if index < len(c.Elements) {
			child = c.Elements[index]
		}
		updated, err := ev.assignPath(child, path[1:], value)
		if err != nil {
			return nil, err
		}
		elements[index] = updated
		return object.NewList(elements...), nil
	}
	return nil, newError("Cannot set property '%s' on non-object/non-list value", property)
}

// isListIndex reports whether a property segment names a list slot.
func (ev *Evaluator) isListIndex(property string) bool {
	if name, ok := cutVariable(property); ok {
		val, found := ev.env.Get(name)
		if !found {
			return false
		}
		n, isNum := val.(*object.Number)
		return isNum && toIndex(n.Value) >= 0
	}
	_, err := strconv.ParseUint(property, 10, 32)
	return err == nil
}

func cutVariable(property string) (string, bool) {
	if len(property) > 1 && property[0] == '~' {
		return property[1:], true
	}
	return "", false
}
