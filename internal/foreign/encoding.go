package foreign

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

func fnEncodingBase64Encode() evaluator.Builtin {
	return stringTransform("base64-encode", func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	})
}

func fnEncodingBase64Decode() evaluator.Builtin {
	return stringDecoder("base64-decode", func(s string) (string, error) {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", errors.New("Invalid base64 input")
		}
		if !utf8.Valid(b) {
			return "", errors.New("Invalid UTF-8 in decoded base64 data")
		}
		return string(b), nil
	})
}

// fnEncodingURLEncode percent-encodes everything except unreserved
// characters; spaces become %20.
func fnEncodingURLEncode() evaluator.Builtin {
	return stringTransform("url-encode", func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	})
}

func fnEncodingURLDecode() evaluator.Builtin {
	return stringDecoder("url-decode", func(s string) (string, error) {
		out, err := url.PathUnescape(s)
		if err != nil || !utf8.ValidString(out) {
			return "", errors.New("Invalid URL encoding")
		}
		return out, nil
	})
}

func stringDecoder(name string, decode func(string) (string, error)) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := stringArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		out, err := decode(s)
		if err != nil {
			return nil, err
		}
		return str(out), nil
	}
}

// fnEncodingToJSON serializes compactly, keeping object key order.
func fnEncodingToJSON() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "to-json", args, 1, 1, "value")
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := writeJSON(&buf, values[0]); err != nil {
			return nil, fmt.Errorf("JSON serialization error: %w", err)
		}
		return str(buf.String()), nil
	}
}

func writeJSON(buf *bytes.Buffer, obj object.Object) error {
	switch o := obj.(type) {
	case *object.Number:
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return errors.New("Invalid number for JSON")
		}
		b, _ := json.Marshal(o.Value)
		buf.Write(b)
	case *object.String:
		b, _ := json.Marshal(o.Value)
		buf.Write(b)
	case *object.Boolean:
		if o.Value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case *object.Null:
		buf.WriteString("null")
	case *object.Date:
		b, _ := json.Marshal(o.Inspect())
		buf.Write(b)
	case *object.List:
		buf.WriteByte('[')
		for i, e := range o.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *object.Map:
		buf.WriteByte('{')
		for i, k := range o.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			v, _ := o.Get(k)
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *object.Error:
		code := object.Object(object.NULL)
		if o.Code != "" {
			code = str(o.Code)
		}
		return writeJSON(buf, object.NewMap().Put("message", str(o.Message)).Put("code", code))
	default:
		return fmt.Errorf("cannot serialize %s", object.TypeName(obj))
	}
	return nil
}

// fnEncodingFromJSON parses a JSON document. Object keys keep the order
// they appear in the source.
func fnEncodingFromJSON() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "from-json", args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("from-json", values, 0)
		if err != nil {
			return nil, err
		}
		v, err := parseJSON(s)
		if err != nil {
			return nil, fmt.Errorf("JSON parsing error: %w", err)
		}
		return v, nil
	}
}

func parseJSON(s string) (object.Object, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (object.Object, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, errors.New("unexpected end of input")
	}
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := object.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.New("object key must be a string")
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Put(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			var elements []object.Object
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				elements = append(elements, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return object.NewList(elements...), nil
		}
		return nil, fmt.Errorf("unexpected '%s'", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, errors.New("Invalid number in JSON")
		}
		return number(f), nil
	case string:
		return str(t), nil
	case bool:
		return boolean(t), nil
	case nil:
		return object.NULL, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func fnEncodingToYAML() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "to-yaml", args, 1, 1, "value")
		if err != nil {
			return nil, err
		}
		node, err := yamlNode(values[0])
		if err != nil {
			return nil, fmt.Errorf("YAML serialization error: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("YAML serialization error: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("YAML serialization error: %w", err)
		}
		return str(buf.String()), nil
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(obj object.Object) (*yaml.Node, error) {
	switch o := obj.(type) {
	case *object.Number:
		if o.IsInteger() {
			return scalarNode("!!int", object.FormatNumber(o.Value)), nil
		}
		return scalarNode("!!float", object.FormatNumber(o.Value)), nil
	case *object.String:
		return scalarNode("!!str", o.Value), nil
	case *object.Boolean:
		return scalarNode("!!bool", o.Inspect()), nil
	case *object.Null:
		return scalarNode("!!null", "null"), nil
	case *object.Date:
		return scalarNode("!!timestamp", o.Inspect()), nil
	case *object.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range o.Elements {
			child, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case *object.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			child, err := yamlNode(v)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalarNode("!!str", k), child)
		}
		return n, nil
	case *object.Error:
		m := object.NewMap().Put("message", str(o.Message))
		if o.Code != "" {
			m.Put("code", str(o.Code))
		}
		return yamlNode(m)
	}
	return nil, fmt.Errorf("cannot serialize %s", object.TypeName(obj))
}

// fnEncodingFromYAML parses a YAML document; mapping order is kept and
// timestamps become dates.
func fnEncodingFromYAML() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "from-yaml", args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("from-yaml", values, 0)
		if err != nil {
			return nil, err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
			return nil, fmt.Errorf("YAML parsing error: %w", err)
		}
		v, err := fromYAMLNode(&doc)
		if err != nil {
			return nil, fmt.Errorf("YAML parsing error: %w", err)
		}
		return v, nil
	}
}

func fromYAMLNode(n *yaml.Node) (object.Object, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return object.NULL, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		elements := make([]object.Object, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			elements = append(elements, v)
		}
		return object.NewList(elements...), nil
	case yaml.MappingNode:
		m := object.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			v, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Put(key.Value, v)
		}
		return m, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			var t time.Time
			if err := n.Decode(&t); err == nil {
				return date(t), nil
			}
		}
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return object.FromNative(v), nil
	}
	return object.NULL, nil
}
