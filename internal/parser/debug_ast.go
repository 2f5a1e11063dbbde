package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"tails/internal/ast"
)

// WalkAST recursively traverses an AST and serializes it into a map structure for JSON output.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Program:
		return map[string]interface{}{
			"0.type":       "Program",
			"1.statements": walkStatements(n.Statements),
		}

	case *ast.Assignment:
		return map[string]interface{}{
			"0.type":     "Assignment",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.PropertyAssignment:
		return map[string]interface{}{
			"0.type":     "PropertyAssignment",
			"1.position": n.Token.Position,
			"2.object":   WalkAST(n.Object),
			"3.property": n.Property,
			"4.value":    WalkAST(n.Value),
		}

	case *ast.IfStatement:
		out := map[string]interface{}{
			"0.type":      "If",
			"1.position":  n.Token.Position,
			"2.condition": WalkAST(n.Condition),
			"3.then":      WalkAST(n.Then),
		}
		if n.Else != nil {
			out["4.else"] = WalkAST(n.Else)
		}
		return out

	case *ast.LoopStatement:
		return map[string]interface{}{
			"0.type":     "Loop",
			"1.position": n.Token.Position,
			"2.body":     walkStatements(n.Body),
		}

	case *ast.ForEachStatement:
		return map[string]interface{}{
			"0.type":      "ForEach",
			"1.position":  n.Token.Position,
			"2.variables": n.Variables,
			"3.iterable":  WalkAST(n.Iterable),
			"4.body":      walkStatements(n.Body),
		}

	case *ast.Increment:
		return map[string]interface{}{
			"0.type":     "Increment",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.amount":   WalkAST(n.Amount),
		}

	case *ast.Decrement:
		return map[string]interface{}{
			"0.type":     "Decrement",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.amount":   WalkAST(n.Amount),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"0.type":       "Block",
			"1.position":   n.Token.Position,
			"2.statements": walkStatements(n.Body),
		}

	case *ast.BreakLoop:
		return map[string]interface{}{
			"0.type":     "BreakLoop",
			"1.position": n.Token.Position,
		}

	case *ast.FunctionDefinition:
		return map[string]interface{}{
			"0.type":     "FunctionDefinition",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.params":   n.Params,
			"4.body":     walkStatements(n.Body),
		}

	case *ast.FunctionChain:
		steps := make([]interface{}, len(n.Steps))
		for i, s := range n.Steps {
			if s.Seed != nil {
				steps[i] = map[string]interface{}{"0.seed": WalkAST(s.Seed)}
				continue
			}
			steps[i] = map[string]interface{}{
				"0.function": s.Function,
				"1.args":     walkExpressions(s.Args),
			}
		}
		return map[string]interface{}{
			"0.type":     "FunctionChain",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.steps":    steps,
		}

	case *ast.AttemptRescue:
		return map[string]interface{}{
			"0.type":      "AttemptRescue",
			"1.position":  n.Token.Position,
			"2.attempt":   walkStatements(n.Attempt),
			"3.errorName": n.ErrorName,
			"4.rescue":    walkStatements(n.Rescue),
		}

	case *ast.GiveStatement:
		out := map[string]interface{}{
			"0.type":     "Give",
			"1.position": n.Token.Position,
		}
		if n.Value != nil {
			out["2.value"] = WalkAST(n.Value)
		}
		return out

	case *ast.OpenStatement:
		return map[string]interface{}{
			"0.type":     "Open",
			"1.position": n.Token.Position,
			"2.path":     WalkAST(n.Path),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.position":   n.Token.Position,
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"0.type":     "Number",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
			"3.isFloat":  n.IsFloat,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"0.type":     "String",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.InterpolatedString:
		parts := make([]interface{}, len(n.Parts))
		for i, p := range n.Parts {
			switch {
			case p.Expression != nil:
				parts[i] = WalkAST(p.Expression)
			case p.Variable != "":
				parts[i] = map[string]interface{}{"0.variable": p.Variable}
			default:
				parts[i] = map[string]interface{}{"0.text": p.Text}
			}
		}
		return map[string]interface{}{
			"0.type":     "InterpolatedString",
			"1.position": n.Token.Position,
			"2.parts":    parts,
		}

	case *ast.BooleanLiteral:
		return map[string]interface{}{
			"0.type":     "Boolean",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.Variable:
		return map[string]interface{}{
			"0.type":     "Variable",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
		}

	case *ast.ListLiteral:
		return map[string]interface{}{
			"0.type":     "List",
			"1.position": n.Token.Position,
			"2.items":    walkExpressions(n.Items),
		}

	case *ast.BinaryExpression:
		return map[string]interface{}{
			"0.type":     "BinaryOp",
			"1.position": n.Token.Position,
			"2.left":     WalkAST(n.Left),
			"3.operator": n.Operator.String(),
			"4.right":    WalkAST(n.Right),
		}

	case *ast.FunctionCall:
		return map[string]interface{}{
			"0.type":     "FunctionCall",
			"1.position": n.Token.Position,
			"2.name":     n.Name,
			"3.args":     walkExpressions(n.Args),
		}

	case *ast.PropertyAccess:
		return map[string]interface{}{
			"0.type":     "PropertyAccess",
			"1.position": n.Token.Position,
			"2.object":   WalkAST(n.Object),
			"3.property": n.Property,
		}

	case *ast.ObjectLiteral:
		pairs := make([]interface{}, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = map[string]interface{}{
				"0.key":   p.Key,
				"1.value": WalkAST(p.Value),
			}
		}
		return map[string]interface{}{
			"0.type":     "ObjectLiteral",
			"1.position": n.Token.Position,
			"2.pairs":    pairs,
		}

	case *ast.AnonymousFunction:
		return map[string]interface{}{
			"0.type":     "AnonymousFunction",
			"1.position": n.Token.Position,
			"2.params":   n.Params,
			"3.body":     WalkAST(n.Body),
		}

	default:
		return map[string]interface{}{
			"0.type": "Unknown",
			"1.node": n.String(),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = WalkAST(s)
	}
	return out
}

func walkExpressions(exprs []ast.Expression) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = WalkAST(e)
	}
	return out
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)

	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
