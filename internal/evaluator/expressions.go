package evaluator

import (
	"math"
	"strconv"
	"strings"
	"tails/internal/ast"
	"tails/internal/object"
)

func (ev *Evaluator) evalExpression(expr ast.Expression) (object.Object, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return &object.Number{Value: e.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: e.Value}, nil

	case *ast.BooleanLiteral:
		return object.NativeBoolToBooleanObject(e.Value), nil

	case *ast.InterpolatedString:
		return ev.evalInterpolatedString(e)

	case *ast.Variable:
		if strings.HasPrefix(e.Name, ".") {
			return nil, newError("Builtin reference %s can only be passed as an argument", e.Name)
		}
		return ev.lookupVariable(e.Name)

	case *ast.ListLiteral:
		elements := make([]object.Object, 0, len(e.Items))
		for _, item := range e.Items {
			val, err := ev.evalExpression(item)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return object.NewList(elements...), nil

	case *ast.ObjectLiteral:
		m := object.NewMap()
		for _, pair := range e.Pairs {
			val, err := ev.evalExpression(pair.Value)
			if err != nil {
				return nil, err
			}
			m.Put(pair.Key, val)
		}
		return m, nil

	case *ast.BinaryExpression:
		return ev.evalBinaryExpression(e)

	case *ast.FunctionCall:
		return ev.callNamed(e.Name, e.Args)

	case *ast.PropertyAccess:
		return ev.evalPropertyAccess(e, false)

	case *ast.AnonymousFunction:
		return nil, newError("Anonymous functions can only be used as arguments to functions like map, filter, and reduce")

	case *ast.Quoted:
		if obj, ok := e.Value.(object.Object); ok {
			return obj, nil
		}
		return nil, newError("Invalid quoted value %s", e.Value.Inspect())
	}
	return nil, newError("Unknown expression: %s", expr.String())
}

func (ev *Evaluator) lookupVariable(name string) (object.Object, error) {
	if val, ok := ev.env.Get(name); ok {
		return val, nil
	}
	return nil, newError("Undefined variable: %s", name)
}

func (ev *Evaluator) evalInterpolatedString(e *ast.InterpolatedString) (object.Object, error) {
	var out strings.Builder
	for _, part := range e.Parts {
		switch {
		case part.Expression != nil:
			var val object.Object
			var err error
			if pa, ok := part.Expression.(*ast.PropertyAccess); ok {
				val, err = ev.evalPropertyAccess(pa, true)
			} else {
				val, err = ev.evalExpression(part.Expression)
			}
			if err != nil {
				return nil, err
			}
			out.WriteString(val.Inspect())
		case part.Variable != "":
			val, err := ev.lookupVariable(part.Variable)
			if err != nil {
				return nil, err
			}
			out.WriteString(val.Inspect())
		default:
			out.WriteString(part.Text)
		}
	}
	return &object.String{Value: out.String()}, nil
}

func (ev *Evaluator) evalBinaryExpression(e *ast.BinaryExpression) (object.Object, error) {
	left, err := ev.evalExpression(e.Left)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case ast.And:
		if !object.IsTruthy(left) {
			return left, nil
		}
		return ev.evalExpression(e.Right)
	case ast.Or:
		if object.IsTruthy(left) {
			return left, nil
		}
		return ev.evalExpression(e.Right)
	}

	right, err := ev.evalExpression(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case ast.Equal:
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case ast.NotEqual:
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	}

	if l, ok := left.(*object.String); ok && e.Operator == ast.Add {
		if r, ok := right.(*object.String); ok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return nil, newError("Invalid operation: %s %s %s", object.TypeName(left), e.Operator, object.TypeName(right))
	}
	return evalNumberOperation(e.Operator, l.Value, r.Value)
}

func evalNumberOperation(op ast.BinaryOperator, l, r float64) (object.Object, error) {
	switch op {
	case ast.Add:
		return &object.Number{Value: l + r}, nil
	case ast.Subtract:
		return &object.Number{Value: l - r}, nil
	case ast.Multiply:
		return &object.Number{Value: l * r}, nil
	case ast.Divide:
		if r == 0 {
			return nil, newError("Division by zero")
		}
		return &object.Number{Value: l / r}, nil
	case ast.FloorDivide:
		if r == 0 {
			return nil, newError("Division by zero")
		}
		return &object.Number{Value: math.Floor(l / r)}, nil
	case ast.Modulo:
		if r == 0 {
			return nil, newError("Modulo by zero")
		}
		return &object.Number{Value: math.Mod(l, r)}, nil
	case ast.Less:
		return object.NativeBoolToBooleanObject(l < r), nil
	case ast.LessEqual:
		return object.NativeBoolToBooleanObject(l <= r), nil
	case ast.Greater:
		return object.NativeBoolToBooleanObject(l > r), nil
	case ast.GreaterEqual:
		return object.NativeBoolToBooleanObject(l >= r), nil
	}
	return nil, newError("Invalid operation: %s", op)
}

// evalPropertyAccess reads obj.prop. Missing keys and out of range indexes
// are null. When lenient, reading through null yields null instead of an
// error, which is how interpolation renders missing paths.
func (ev *Evaluator) evalPropertyAccess(e *ast.PropertyAccess, lenient bool) (object.Object, error) {
	var target object.Object
	var err error
	if inner, ok := e.Object.(*ast.PropertyAccess); ok {
		target, err = ev.evalPropertyAccess(inner, lenient)
	} else {
		target, err = ev.evalExpression(e.Object)
	}
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *object.Map:
		key, err := ev.propertyKey(e.Property)
		if err != nil {
			return nil, err
		}
		if val, ok := t.Get(key); ok {
			return val, nil
		}
		return object.NULL, nil
	case *object.List:
		index, err := ev.propertyIndex(e.Property, "access")
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(t.Elements) {
			return object.NULL, nil
		}
		return t.Elements[index], nil
	case *object.Error:
		if val, ok := t.Property(e.Property); ok {
			return val, nil
		}
		return object.NULL, nil
	case *object.Null:
		if lenient {
			return object.NULL, nil
		}
	}
	return nil, newError("Cannot access property '%s' on non-object/non-list value", e.Property)
}

// propertyKey resolves a property segment to a map key. A "~name" segment
// uses the variable's value.
func (ev *Evaluator) propertyKey(property string) (string, error) {
	name, dynamic := strings.CutPrefix(property, "~")
	if !dynamic {
		return property, nil
	}
	val, err := ev.lookupVariable(name)
	if err != nil {
		return "", err
	}
	return val.Inspect(), nil
}

// propertyIndex resolves a property segment to a list index. Negative or
// fractional indexes come back as -1.
func (ev *Evaluator) propertyIndex(property, verb string) (int, error) {
	name, dynamic := strings.CutPrefix(property, "~")
	if !dynamic {
		n, err := strconv.ParseFloat(property, 64)
		if err != nil {
			return 0, newError("Cannot %s non-numeric property '%s' on list", verb, property)
		}
		return toIndex(n), nil
	}
	val, err := ev.lookupVariable(name)
	if err != nil {
		return 0, err
	}
	switch v := val.(type) {
	case *object.Number:
		return toIndex(v.Value), nil
	case *object.String:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return 0, newError("List index must be numeric, got string: '%s'", v.Value)
		}
		return toIndex(n), nil
	}
	return 0, newError("List index must be a number, got %s", object.TypeName(val))
}

func toIndex(n float64) int {
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return -1
	}
	return int(n)
}
