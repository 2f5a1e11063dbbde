package object

import (
	"fmt"
)

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func NewError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func NewList(elements ...Object) *List {
	if elements == nil {
		elements = []Object{}
	}
	return &List{Elements: elements}
}

// IsTruthy: false, null, 0, "", [], {} and errors are falsy.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case *Boolean:
		return o.Value
	case *Null:
		return false
	case *Number:
		return o.Value != 0
	case *String:
		return o.Value != ""
	case *List:
		return len(o.Elements) > 0
	case *Map:
		return o.Len() > 0
	case *Error:
		return false
	case nil:
		return false
	default:
		return true
	}
}

// Equal compares two values structurally. Map comparison ignores key order.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			other, ok := y.pairs[k]
			if !ok || !Equal(x.pairs[k], other) {
				return false
			}
		}
		return true
	case *Date:
		y, ok := b.(*Date)
		return ok && x.Value.Equal(y.Value)
	case *Error:
		y, ok := b.(*Error)
		return ok && x.Message == y.Message && x.Code == y.Code
	}
	return false
}

// TypeName is the lowercase name a script sees for a value's type.
func TypeName(obj Object) string {
	switch obj.(type) {
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Boolean:
		return "boolean"
	case *List:
		return "list"
	case *Map:
		return "object"
	case *Date:
		return "date"
	case *Error:
		return "error"
	default:
		return "null"
	}
}
