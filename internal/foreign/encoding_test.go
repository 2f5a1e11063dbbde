package foreign

import (
	"strings"
	"tails/internal/object"
	"testing"
)

func TestCryptoFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`sha256 "abc"`, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{`md5 "abc"`, "900150983cd24fb0d6963f7d28e17f72"},
		{`hmac-sha256("key", "The quick brown fox jumps over the lazy dog")`, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestEncodingFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`base64-encode "hello"`, "aGVsbG8="},
		{`base64-decode "aGVsbG8="`, "hello"},
		{`url-encode "a b&c=d"`, "a%20b%26c%3Dd"},
		{`url-encode "safe-_.~"`, "safe-_.~"},
		{`url-decode "a%20b%26c"`, "a b&c"},
		{`to-json({b: 1, a: "x", c: [true, 2.5]})`, `{"b":1,"a":"x","c":[true,2.5]}`},
		{`to-json(date("2024-01-01"))`, `"2024-01-01T00:00:00Z"`},
		{`to-json("say \"hi\"")`, `"say \"hi\""`},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestFromJSONKeepsKeyOrder(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`{"z": 1, "a": [1, 2.5, null], "m": {"y": true, "b": "x"}}`, "{z: 1, a: [1, 2.5, null], m: {y: true, b: x}}"},
		{`[]`, "[]"},
		{`"text"`, "text"},
		{` 42 `, "42"},
	}

	for i, tt := range tests {
		expectEvalWith(t, i, "from-json ~src", map[string]object.Object{"src": str(tt.src)}, tt.expected)
	}
}

func TestFromJSONErrors(t *testing.T) {
	tests := []string{
		`{"a": }`,
		`[1, 2`,
		`{"a": 1} extra`,
		``,
	}

	for i, src := range tests {
		_, err := evalWith(t, "from-json ~src", map[string]object.Object{"src": str(src)})
		if err == nil || !strings.Contains(err.Error(), "JSON parsing error") {
			t.Fatalf("tests[%d] - expected JSON parsing error for %q, got %v", i, src, err)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"name: tails\ntags: [a, b]\ncount: 3\n", "{name: tails, tags: [a, b], count: 3}"},
		{"z: 1\na: 2\n", "{z: 1, a: 2}"},
		{"- 1.5\n- true\n- null\n", "[1.5, true, null]"},
		{"base: &b {x: 1}\ncopy: *b\n", "{base: {x: 1}, copy: {x: 1}}"},
		{"when: 2024-03-15T10:30:00Z\n", "{when: 2024-03-15T10:30:00Z}"},
		{"", "null"},
	}

	for i, tt := range tests {
		vars := map[string]object.Object{"src": str(tt.src)}
		expectEvalWith(t, i, "from-yaml ~src", vars, tt.expected)
		expectEvalWith(t, i, "from-yaml(to-yaml(from-yaml ~src))", vars, tt.expected)
	}
}

func TestToYAMLQuotesAmbiguousStrings(t *testing.T) {
	got, err := evalWith(t, `to-yaml({port: "8080", on: "true"})`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := evalWith(t, "from-yaml ~src", map[string]object.Object{"src": got})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := back.(*object.Map)
	for _, key := range []string{"port", "on"} {
		v, _ := m.Get(key)
		if object.TypeName(v) != "string" {
			t.Fatalf("%s: expected a string after the round trip, got %s in %q", key, object.TypeName(v), got.Inspect())
		}
	}
}

func TestEncodingErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`base64-decode "***"`, "Invalid base64 input"},
		{`url-decode "%zz"`, "Invalid URL encoding"},
		{`sha256 1`, "sha256 argument must be a string"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}
