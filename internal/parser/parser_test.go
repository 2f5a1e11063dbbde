package parser

import (
	"errors"
	"strings"
	"tails/internal/ast"
	"testing"
)

type names map[string]bool

func (n names) Has(name string) bool { return n[name] }

var testBuiltins = names{"length": true, "map": true, "filter": true, "upper": true, "say": true}

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(input, testBuiltins)
	if err != nil {
		t.Fatalf("parse error for %q: %v", input, err)
	}
	return program
}

func assignedValue(t *testing.T, input string) string {
	t.Helper()
	program := parse(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement for %q, got %d", input, len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment for %q, got %T", input, program.Statements[0])
	}
	return stmt.Value.String()
}

func TestAssignment(t *testing.T) {
	program := parse(t, "~x is 42")
	stmt, ok := program.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment, got %T", program.Statements[0])
	}
	if stmt.Name != "x" {
		t.Fatalf("expected name x, got %q", stmt.Name)
	}
	num, ok := stmt.Value.(*ast.NumberLiteral)
	if !ok || num.Value != 42 || num.IsFloat {
		t.Fatalf("expected integer literal 42, got %#v", stmt.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"~a or ~b and ~c", "(~a or (~b and ~c))"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{`10 \ 3 % 2`, `((10 \ 3) % 2)`},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"~a + 1 >= ~b * 2", "((~a + 1) >= (~b * 2))"},
	}

	for i, tt := range tests {
		got := assignedValue(t, "~r is "+tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.expected, got)
		}
	}
}

func TestCallForms(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"length ~xs + 1", "(length(~xs) + 1)"},
		{"map ~xs double", "map(~xs, double())"},
		{"map ~xs .is-even", "map(~xs, .is-even)"},
		{"map ~xs |~x (~x * 2)|", "map(~xs, |~x ((~x * 2))|)"},
		{"*add 1 2", "add(1, 2)"},
		{"is-even(4)", "is-even(4)"},
		{"*add(1, 2)", "add(1, 2)"},
		{`:core:upper "x"`, `core:upper("x")`},
		{"random 1 10", "random(1, 10)"},
		{"keys-of ~obj", "keys(~obj)"},
		{"has-key(~obj, \"a\")", `has(~obj, "a")`},
		{"now", "now()"},
	}

	for i, tt := range tests {
		got := assignedValue(t, "~r is "+tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.expected, got)
		}
	}
}

func TestSayTakesExpressions(t *testing.T) {
	program := parse(t, `say "total: " ~a + ~b`)
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStatement, got %T", program.Statements[0])
	}
	if got := stmt.String(); got != `say("total: ", (~a + ~b))` {
		t.Fatalf("unexpected say call %q", got)
	}
}

func TestPropertyAccess(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"~user.address.city", "~user.address.city"},
		{"~m.0.1", "~m.0.1"},
		{"~xs.~i", "~xs.~i"},
	}

	for i, tt := range tests {
		got := assignedValue(t, "~r is "+tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.expected, got)
		}
	}
}

func TestPropertyAssignment(t *testing.T) {
	program := parse(t, `~user.address.city is "Paris"`)
	stmt, ok := program.Statements[0].(*ast.PropertyAssignment)
	if !ok {
		t.Fatalf("expected *ast.PropertyAssignment, got %T", program.Statements[0])
	}
	if stmt.Object.String() != "~user.address" || stmt.Property != "city" {
		t.Fatalf("unexpected target %s.%s", stmt.Object.String(), stmt.Property)
	}

	program = parse(t, "~user.name")
	if _, ok := program.Statements[0].(*ast.ExpressionStatement); !ok {
		t.Fatalf("expected access without 'is' to be an expression, got %T", program.Statements[0])
	}
}

func TestIncrementDecrement(t *testing.T) {
	program := parse(t, "~n up 2\n~n down ~step")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	if inc, ok := program.Statements[0].(*ast.Increment); !ok || inc.Name != "n" || inc.Amount.String() != "2" {
		t.Fatalf("unexpected increment %#v", program.Statements[0])
	}
	if dec, ok := program.Statements[1].(*ast.Decrement); !ok || dec.Amount.String() != "~step" {
		t.Fatalf("unexpected decrement %#v", program.Statements[1])
	}
}

func TestIfStatement(t *testing.T) {
	tests := []struct {
		input   string
		hasElse bool
	}{
		{`if ~x > 5 say "big"`, false},
		{`if ~x > 5 say "big" else say "small"`, true},
		{"if ~x > 5 (\n  say \"big\"\n)\notherwise (\n  say \"small\"\n)", true},
		{"if ~x > 5 {\n  say \"big\"\n}\n\nelse {\n  say \"small\"\n}", true},
		{"if ~x (\n  say \"yes\"\n)\nsay \"after\"", false},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		stmt, ok := program.Statements[0].(*ast.IfStatement)
		if !ok {
			t.Fatalf("tests[%d] - expected *ast.IfStatement, got %T", i, program.Statements[0])
		}
		if (stmt.Else != nil) != tt.hasElse {
			t.Fatalf("tests[%d] - else branch presence wrong, got %v", i, stmt.Else)
		}
	}
}

func TestForEach(t *testing.T) {
	program := parse(t, "for-each ~k ~v in ~obj (\n  say ~k ~v\n)")
	stmt, ok := program.Statements[0].(*ast.ForEachStatement)
	if !ok {
		t.Fatalf("expected *ast.ForEachStatement, got %T", program.Statements[0])
	}
	if len(stmt.Variables) != 2 || stmt.Variables[0] != "k" || stmt.Variables[1] != "v" {
		t.Fatalf("unexpected variables %v", stmt.Variables)
	}

	program = parse(t, "for-each ~k in keys-of ~obj ( say ~k )")
	stmt = program.Statements[0].(*ast.ForEachStatement)
	if stmt.Iterable.String() != "keys(~obj)" {
		t.Fatalf("expected keys(~obj), got %s", stmt.Iterable.String())
	}
	if len(stmt.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(stmt.Body))
	}

	program = parse(t, "for-each ~x in filter ~xs is-even {\n  say ~x\n}")
	stmt = program.Statements[0].(*ast.ForEachStatement)
	if stmt.Iterable.String() != "filter(~xs, is-even())" {
		t.Fatalf("unexpected iterable %s", stmt.Iterable.String())
	}
}

func TestFunctionDefinition(t *testing.T) {
	program := parse(t, "function add ~x ~y (\n  give ~x + ~y\n)")
	fn, ok := program.Statements[0].(*ast.FunctionDefinition)
	if !ok {
		t.Fatalf("expected *ast.FunctionDefinition, got %T", program.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || len(fn.Body) != 1 {
		t.Fatalf("unexpected function %s", fn.String())
	}

	program = parse(t, "function is-even(x) { give ~x % 2 == 0 }\n~r is is-even(4)")
	fn = program.Statements[0].(*ast.FunctionDefinition)
	if len(fn.Params) != 1 || fn.Params[0] != "x" {
		t.Fatalf("expected params [x], got %v", fn.Params)
	}

	program = parse(t, "function double ~n ( give ~n * 2 )\n~r is double 4")
	assign := program.Statements[1].(*ast.Assignment)
	if assign.Value.String() != "double(4)" {
		t.Fatalf("defined functions should take bare arguments, got %s", assign.Value.String())
	}
}

func TestGiveWithoutValue(t *testing.T) {
	program := parse(t, "function stop ( give )")
	fn := program.Statements[0].(*ast.FunctionDefinition)
	give, ok := fn.Body[0].(*ast.GiveStatement)
	if !ok || give.Value != nil {
		t.Fatalf("expected empty give, got %#v", fn.Body[0])
	}
}

func TestFunctionChain(t *testing.T) {
	program := parse(t, "~result:\n  ~xs\n  map double\n  filter is-even\nsay ~result")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	chain, ok := program.Statements[0].(*ast.FunctionChain)
	if !ok {
		t.Fatalf("expected *ast.FunctionChain, got %T", program.Statements[0])
	}
	if len(chain.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(chain.Steps))
	}
	if chain.Steps[0].Seed == nil || chain.Steps[0].Seed.String() != "~xs" {
		t.Fatalf("expected ~xs seed, got %v", chain.Steps[0])
	}
	if chain.Steps[1].Function != "map" || len(chain.Steps[1].Args) != 1 {
		t.Fatalf("unexpected step %v", chain.Steps[1])
	}

	program = parse(t, "~name: upper")
	chain = program.Statements[0].(*ast.FunctionChain)
	if len(chain.Steps) != 1 || chain.Steps[0].Function != "upper" {
		t.Fatalf("unexpected single step chain %s", chain.String())
	}
}

func TestAttemptRescue(t *testing.T) {
	tests := []struct {
		input     string
		errorName string
	}{
		{"attempt (\n  ~x is 1 / 0\n) rescue ~err (\n  say ~err\n)", "err"},
		{"attempt {\n  ~x is 1 / 0\n}\nrescue {\n  say \"failed\"\n}", ""},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		stmt, ok := program.Statements[0].(*ast.AttemptRescue)
		if !ok {
			t.Fatalf("tests[%d] - expected *ast.AttemptRescue, got %T", i, program.Statements[0])
		}
		if stmt.ErrorName != tt.errorName {
			t.Fatalf("tests[%d] - expected binding %q, got %q", i, tt.errorName, stmt.ErrorName)
		}
		if len(stmt.Attempt) != 1 || len(stmt.Rescue) != 1 {
			t.Fatalf("tests[%d] - unexpected bodies %s", i, stmt.String())
		}
	}
}

func TestBlockOrGroupedExpression(t *testing.T) {
	program := parse(t, "(2 + 3) * 4")
	if _, ok := program.Statements[0].(*ast.ExpressionStatement); !ok {
		t.Fatalf("expected grouped expression, got %T", program.Statements[0])
	}
	if program.Statements[0].String() != "((2 + 3) * 4)" {
		t.Fatalf("unexpected expression %s", program.Statements[0].String())
	}

	program = parse(t, "(\n  ~x is 1\n)")
	if _, ok := program.Statements[0].(*ast.BlockStatement); !ok {
		t.Fatalf("expected block, got %T", program.Statements[0])
	}
}

func TestLiterals(t *testing.T) {
	program := parse(t, "~o is {name: \"a\", \"age\": 3\n  active: true}")
	obj, ok := program.Statements[0].(*ast.Assignment).Value.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected object literal")
	}
	keys := []string{}
	for _, p := range obj.Pairs {
		keys = append(keys, p.Key)
	}
	if strings.Join(keys, ",") != "name,age,active" {
		t.Fatalf("unexpected keys %v", keys)
	}

	if got := assignedValue(t, "~l is [1 2, [3]]"); got != "[1, 2, [3]]" {
		t.Fatalf("unexpected list %s", got)
	}
}

func TestInterpolatedString(t *testing.T) {
	program := parse(t, "say \"Hi `~name` from `~user.city`\"")
	call := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.FunctionCall)
	str, ok := call.Args[0].(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expected *ast.InterpolatedString, got %T", call.Args[0])
	}
	if len(str.Parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(str.Parts))
	}
	if str.Parts[1].Variable != "name" {
		t.Fatalf("expected variable part, got %+v", str.Parts[1])
	}
	if str.Parts[3].Expression == nil || str.Parts[3].Expression.String() != "~user.city" {
		t.Fatalf("expected property path part, got %+v", str.Parts[3])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"{123: 1}", "Expected string or identifier key in object literal"},
		{`~o is {name "x"}`, "Expected Colon"},
		{"~o is {a: 1", "Expected RightBrace"},
		{"~l is [1, 2", "Expected RightBracket"},
		{"~x is )", "Unexpected token"},
		{"for-each in ~xs ( )", "Expected variable after 'for-each'"},
		{"for-each ~a ~b ~c in ~xs ( )", "for-each expects at most 2 variables"},
		{"loop (\n  say 1\n", "Expected RightParen"},
		{"~f is |(1)|", "Anonymous function must have at least one parameter"},
		{"attempt ( ) say 1", "Expected Rescue"},
	}

	for i, tt := range tests {
		_, err := Parse(tt.input, testBuiltins)
		if err == nil {
			t.Fatalf("tests[%d] - expected error for %q", i, tt.input)
		}
		if !strings.Contains(err.Error(), tt.expected) {
			t.Fatalf("tests[%d] - expected error containing %q, got %q", i, tt.expected, err.Error())
		}
		var perr *Error
		if !errors.As(err, &perr) || perr.Line < 1 {
			t.Fatalf("tests[%d] - expected positioned *Error, got %T", i, err)
		}
	}
}

func TestRenderASTAsJSON(t *testing.T) {
	program := parse(t, "~x is 1 + 2")
	out, err := RenderASTAsJSON(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"0.type": "Program"`, `"0.type": "Assignment"`, `"3.operator": "+"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
