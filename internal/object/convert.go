package object

import (
	"sort"
	"time"
)

// FromNative converts decoded Go data into a value. Map keys are sorted
// since Go maps carry no order.
func FromNative(v interface{}) Object {
	switch x := v.(type) {
	case nil:
		return NULL
	case Object:
		return x
	case bool:
		return NativeBoolToBooleanObject(x)
	case string:
		return &String{Value: x}
	case []byte:
		return &String{Value: string(x)}
	case int:
		return &Number{Value: float64(x)}
	case int32:
		return &Number{Value: float64(x)}
	case int64:
		return &Number{Value: float64(x)}
	case uint64:
		return &Number{Value: float64(x)}
	case float32:
		return &Number{Value: float64(x)}
	case float64:
		return &Number{Value: x}
	case time.Time:
		return &Date{Value: x.UTC()}
	case []interface{}:
		elements := make([]Object, len(x))
		for i, e := range x {
			elements[i] = FromNative(e)
		}
		return NewList(elements...)
	case []string:
		elements := make([]Object, len(x))
		for i, e := range x {
			elements[i] = &String{Value: e}
		}
		return NewList(elements...)
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Put(k, FromNative(x[k]))
		}
		return m
	}
	return NULL
}

// ToNative converts a value into plain Go data. Maps become
// map[string]interface{} and lose their key order.
func ToNative(obj Object) interface{} {
	switch o := obj.(type) {
	case *Number:
		if o.IsInteger() && o.Value < 1e18 && o.Value > -1e18 {
			return int64(o.Value)
		}
		return o.Value
	case *String:
		return o.Value
	case *Boolean:
		return o.Value
	case *List:
		out := make([]interface{}, len(o.Elements))
		for i, e := range o.Elements {
			out[i] = ToNative(e)
		}
		return out
	case *Map:
		out := make(map[string]interface{}, o.Len())
		for _, k := range o.keys {
			out[k] = ToNative(o.pairs[k])
		}
		return out
	case *Date:
		return o.Inspect()
	case *Error:
		return o.Message
	}
	return nil
}
