package object

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	NULL_OBJ    = "NULL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"
	LIST_OBJ    = "LIST"
	MAP_OBJ     = "OBJECT"
	DATE_OBJ    = "DATE"
	ERROR_OBJ   = "ERROR"
)

// DateLayout is how dates display and serialize.
const DateLayout = "2006-01-02T15:04:05Z"

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// IsInteger reports whether the number has no fractional part.
func (n *Number) IsInteger() bool {
	return n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0)
}

// FormatNumber prints integral values without a decimal point.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e18 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

// Map is the language's object type. Keys keep their insertion order.
type Map struct {
	keys  []string
	pairs map[string]Object
}

func NewMap() *Map {
	return &Map{pairs: map[string]Object{}}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, k := range m.keys {
		pairs = append(pairs, k+": "+m.pairs[k].Inspect())
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

// Put simplify adding objects to a map. An existing key keeps its position.
func (m *Map) Put(key string, value Object) *Map {
	if m.pairs == nil {
		m.pairs = map[string]Object{}
	}
	if _, ok := m.pairs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.pairs[key] = value
	return m
}

func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.pairs[key]
	return v, ok
}

func (m *Map) Delete(key string) {
	if _, ok := m.pairs[key]; !ok {
		return
	}
	delete(m.pairs, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Map) Len() int { return len(m.keys) }

// Clone copies the key order and bindings; the values are shared.
func (m *Map) Clone() *Map {
	c := &Map{keys: m.Keys(), pairs: make(map[string]Object, len(m.pairs))}
	for k, v := range m.pairs {
		c.pairs[k] = v
	}
	return c
}

type Date struct {
	Value time.Time
}

func (d *Date) Type() ObjectType { return DATE_OBJ }
func (d *Date) Inspect() string  { return d.Value.UTC().Format(DateLayout) }

// Error is a structured runtime failure. Code and Source are empty when
// absent.
type Error struct {
	Message string
	Code    string
	Source  string
	Context *Map
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "Error: " + e.Message }

// Property reads one of the error's fields as a value.
func (e *Error) Property(name string) (Object, bool) {
	switch name {
	case "message":
		return &String{Value: e.Message}, true
	case "code":
		if e.Code == "" {
			return NULL, true
		}
		return &String{Value: e.Code}, true
	case "source":
		if e.Source == "" {
			return NULL, true
		}
		return &String{Value: e.Source}, true
	case "context":
		if e.Context == nil {
			return NewMap(), true
		}
		return e.Context, true
	}
	return nil, false
}

func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

func (e *Error) WithContext(key string, value Object) *Error {
	if e.Context == nil {
		e.Context = NewMap()
	}
	e.Context.Put(key, value)
	return e
}
