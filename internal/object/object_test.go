package object

import (
	"testing"
	"time"
)

func TestInspect(t *testing.T) {
	date := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		obj      Object
		expected string
	}{
		{&Number{Value: 42}, "42"},
		{&Number{Value: -2}, "-2"},
		{&Number{Value: 2.4}, "2.4"},
		{&Number{Value: 1e-7}, "0.0000001"},
		{&String{Value: "hello"}, "hello"},
		{TRUE, "true"},
		{NULL, "null"},
		{NewList(&Number{Value: 1}, &String{Value: "a"}, FALSE), "[1, a, false]"},
		{NewList(), "[]"},
		{NewMap().Put("name", &String{Value: "Alice"}).Put("age", &Number{Value: 30}), "{name: Alice, age: 30}"},
		{NewMap(), "{}"},
		{&Date{Value: date}, "2024-03-05T14:30:00Z"},
		{NewError("boom"), "Error: boom"},
	}

	for i, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.expected, got)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj      Object
		expected bool
	}{
		{TRUE, true},
		{FALSE, false},
		{NULL, false},
		{&Number{Value: 0}, false},
		{&Number{Value: -1}, true},
		{&String{Value: ""}, false},
		{&String{Value: "x"}, true},
		{NewList(), false},
		{NewList(NULL), true},
		{NewMap(), false},
		{NewMap().Put("k", NULL), true},
		{&Date{Value: time.Unix(0, 0)}, true},
		{NewError("e"), false},
	}

	for i, tt := range tests {
		if got := IsTruthy(tt.obj); got != tt.expected {
			t.Fatalf("tests[%d] - expected %t for %s, got %t", i, tt.expected, tt.obj.Inspect(), got)
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewMap().Put("x", &Number{Value: 1}).Put("y", NewList(&String{Value: "a"}))
	b := NewMap().Put("y", NewList(&String{Value: "a"})).Put("x", &Number{Value: 1})

	tests := []struct {
		left, right Object
		expected    bool
	}{
		{&Number{Value: 1}, &Number{Value: 1}, true},
		{&Number{Value: 1}, &String{Value: "1"}, false},
		{NULL, NULL, true},
		{NULL, FALSE, false},
		{a, b, true},
		{a, NewMap().Put("x", &Number{Value: 1}), false},
		{NewList(TRUE), NewList(TRUE), true},
		{NewList(TRUE), NewList(FALSE), false},
		{NewError("a").WithCode("404"), NewError("a").WithCode("404"), true},
		{NewError("a").WithCode("404"), NewError("a"), false},
	}

	for i, tt := range tests {
		if got := Equal(tt.left, tt.right); got != tt.expected {
			t.Fatalf("tests[%d] - Equal(%s, %s) expected %t", i, tt.left.Inspect(), tt.right.Inspect(), tt.expected)
		}
	}
}

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Put("b", &Number{Value: 1})
	m.Put("a", &Number{Value: 2})
	m.Put("c", &Number{Value: 3})
	m.Put("a", &Number{Value: 4})

	keys := m.Keys()
	if len(keys) != 3 || keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected key order %v", keys)
	}
	if v, _ := m.Get("a"); v.Inspect() != "4" {
		t.Fatalf("expected overwritten value 4, got %s", v.Inspect())
	}

	clone := m.Clone()
	clone.Delete("b")
	if m.Len() != 3 || clone.Len() != 2 {
		t.Fatalf("clone should not share keys: original=%d clone=%d", m.Len(), clone.Len())
	}
	if clone.Keys()[0] != "a" {
		t.Fatalf("unexpected clone order %v", clone.Keys())
	}
}

func TestErrorProperties(t *testing.T) {
	err := NewError("Not Found").WithCode("404").WithSource("http://example.test").
		WithContext("status", &Number{Value: 404})

	tests := []struct {
		field    string
		expected string
	}{
		{"message", "Not Found"},
		{"code", "404"},
		{"source", "http://example.test"},
		{"context", "{status: 404}"},
	}

	for i, tt := range tests {
		v, ok := err.Property(tt.field)
		if !ok || v.Inspect() != tt.expected {
			t.Fatalf("tests[%d] - expected %q, got %v", i, tt.expected, v)
		}
	}

	if v, _ := NewError("x").Property("code"); v != NULL {
		t.Fatalf("missing code should be null, got %s", v.Inspect())
	}
}

func TestEnvironmentScopes(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", &Number{Value: 1})

	env.PushFrame(map[string]Object{"y": &Number{Value: 2}})
	if v, ok := env.Get("x"); !ok || v.Inspect() != "1" {
		t.Fatalf("frame should see globals")
	}
	env.Set("z", &Number{Value: 3})
	env.Update("x", &Number{Value: 10})
	env.PopFrame()

	if _, ok := env.Get("z"); ok {
		t.Fatalf("frame binding leaked into globals")
	}
	if _, ok := env.Get("y"); ok {
		t.Fatalf("parameter leaked into globals")
	}
	if v, _ := env.Get("x"); v.Inspect() != "10" {
		t.Fatalf("update should write where the variable lives, got %s", v.Inspect())
	}
	if env.Depth() != 0 {
		t.Fatalf("expected empty frame stack, got %d", env.Depth())
	}
}

func TestFromNative(t *testing.T) {
	obj := FromNative(map[string]interface{}{
		"b":    []interface{}{float64(1), "two", nil},
		"a":    true,
		"when": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if got := obj.Inspect(); got != "{a: true, b: [1, two, null], when: 2024-01-02T03:04:05Z}" {
		t.Fatalf("unexpected conversion %s", got)
	}

	native := ToNative(NewList(&Number{Value: 3}, &Number{Value: 1.5}))
	list, ok := native.([]interface{})
	if !ok || list[0] != int64(3) || list[1] != 1.5 {
		t.Fatalf("unexpected native list %#v", native)
	}
}
