package evaluator

import (
	"fmt"
	"log/slog"
	"os"
	"tails/internal/ast"
	"tails/internal/object"
	"tails/internal/parser"
)

func (ev *Evaluator) evalStatement(stmt ast.Statement) (object.Object, Signal, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		val, err := ev.evalExpression(s.Expression)
		return val, Continue, err

	case *ast.Assignment:
		val, err := ev.evalExpression(s.Value)
		if err != nil {
			return nil, Continue, err
		}
		ev.env.Set(s.Name, val)
		return val, Continue, nil

	case *ast.PropertyAssignment:
		val, err := ev.evalExpression(s.Value)
		if err != nil {
			return nil, Continue, err
		}
		if err := ev.assignProperty(s.Object, s.Property, val); err != nil {
			return nil, Continue, err
		}
		return val, Continue, nil

	case *ast.IfStatement:
		return ev.evalIfStatement(s)

	case *ast.LoopStatement:
		return ev.evalLoopStatement(s)

	case *ast.ForEachStatement:
		return ev.evalForEachStatement(s)

	case *ast.Increment:
		return ev.evalStep(s.Name, s.Amount, "increment", func(a, b float64) float64 { return a + b })

	case *ast.Decrement:
		return ev.evalStep(s.Name, s.Amount, "decrement", func(a, b float64) float64 { return a - b })

	case *ast.BlockStatement:
		return ev.evalStatements(s.Body)

	case *ast.BreakLoop:
		return object.NULL, BreakLoop, nil

	case *ast.FunctionDefinition:
		ev.functions[s.Name] = &Function{Name: s.Name, Params: s.Params, Body: s.Body}
		slog.Debug("function defined", slog.String("function", s.Name), slog.Int("params", len(s.Params)))
		return object.NULL, Continue, nil

	case *ast.GiveStatement:
		if s.Value == nil {
			return object.NULL, Give, nil
		}
		val, err := ev.evalExpression(s.Value)
		if err != nil {
			return nil, Continue, err
		}
		return val, Give, nil

	case *ast.AttemptRescue:
		return ev.evalAttemptRescue(s)

	case *ast.FunctionChain:
		val, err := ev.evalFunctionChain(s)
		if err != nil {
			return nil, Continue, err
		}
		ev.env.Set(s.Name, val)
		return val, Continue, nil

	case *ast.OpenStatement:
		val, err := ev.evalOpen(s)
		return val, Continue, err
	}
	return nil, Continue, newError("Unknown statement: %s", stmt.String())
}

// evalStatements runs a body until it finishes or a statement signals
// break-loop or give. The value is that of the last statement run.
func (ev *Evaluator) evalStatements(body []ast.Statement) (object.Object, Signal, error) {
	var result object.Object = object.NULL
	for _, stmt := range body {
		val, sig, err := ev.evalStatement(stmt)
		if err != nil {
			return nil, Continue, err
		}
		if sig != Continue {
			return val, sig, nil
		}
		result = val
	}
	return result, Continue, nil
}

func (ev *Evaluator) evalIfStatement(s *ast.IfStatement) (object.Object, Signal, error) {
	cond, err := ev.evalExpression(s.Condition)
	if err != nil {
		return nil, Continue, err
	}
	if object.IsTruthy(cond) {
		return ev.evalStatement(s.Then)
	}
	if s.Else != nil {
		return ev.evalStatement(s.Else)
	}
	return object.NULL, Continue, nil
}

func (ev *Evaluator) evalLoopStatement(s *ast.LoopStatement) (object.Object, Signal, error) {
	for {
		val, sig, err := ev.evalStatements(s.Body)
		if err != nil {
			return nil, Continue, err
		}
		switch sig {
		case BreakLoop:
			return object.NULL, Continue, nil
		case Give:
			return val, Give, nil
		}
	}
}

func (ev *Evaluator) evalForEachStatement(s *ast.ForEachStatement) (object.Object, Signal, error) {
	iterable, err := ev.evalExpression(s.Iterable)
	if err != nil {
		return nil, Continue, err
	}

	type binding struct {
		value object.Object
		bound bool
	}
	saved := make([]binding, len(s.Variables))
	for i, name := range s.Variables {
		saved[i].value, saved[i].bound = ev.env.Local(name)
	}
	defer func() {
		for i, name := range s.Variables {
			if saved[i].bound {
				ev.env.Set(name, saved[i].value)
			} else {
				ev.env.Unset(name)
			}
		}
	}()

	run := func(first, second object.Object) (bool, object.Object, Signal, error) {
		ev.env.Set(s.Variables[0], first)
		if len(s.Variables) > 1 {
			ev.env.Set(s.Variables[1], second)
		}
		val, sig, err := ev.evalStatements(s.Body)
		if err != nil {
			return true, nil, Continue, err
		}
		switch sig {
		case BreakLoop:
			return true, object.NULL, Continue, nil
		case Give:
			return true, val, Give, nil
		}
		return false, nil, Continue, nil
	}

	switch it := iterable.(type) {
	case *object.List:
		elements := append([]object.Object(nil), it.Elements...)
		for i, item := range elements {
			if done, val, sig, err := run(item, &object.Number{Value: float64(i)}); done {
				return val, sig, err
			}
		}
	case *object.Map:
		snapshot := it.Clone()
		for _, key := range snapshot.Keys() {
			value, _ := snapshot.Get(key)
			var done bool
			var val object.Object
			var sig Signal
			if len(s.Variables) > 1 {
				done, val, sig, err = run(&object.String{Value: key}, value)
			} else {
				done, val, sig, err = run(value, nil)
			}
			if done {
				return val, sig, err
			}
		}
	default:
		return nil, Continue, newError("for-each can only iterate over lists and objects")
	}
	return object.NULL, Continue, nil
}

// evalStep implements `up` and `down`: both the variable and the amount
// must be numbers, and the result is written where the variable lives.
func (ev *Evaluator) evalStep(name string, amount ast.Expression, verb string, op func(a, b float64) float64) (object.Object, Signal, error) {
	current, ok := ev.env.Get(name)
	if !ok {
		return nil, Continue, newError("Undefined variable: %s", name)
	}
	delta, err := ev.evalExpression(amount)
	if err != nil {
		return nil, Continue, err
	}
	c, ok1 := current.(*object.Number)
	d, ok2 := delta.(*object.Number)
	if !ok1 || !ok2 {
		return nil, Continue, newError("Cannot %s '%s': both variable and amount must be numbers", verb, name)
	}
	ev.env.Update(name, &object.Number{Value: op(c.Value, d.Value)})
	return object.NULL, Continue, nil
}

func (ev *Evaluator) evalAttemptRescue(s *ast.AttemptRescue) (object.Object, Signal, error) {
	val, sig, err := ev.evalStatements(s.Attempt)
	if err == nil {
		return val, sig, nil
	}
	slog.Debug("attempt failed", slog.String("error", err.Error()))
	if s.ErrorName != "" {
		ev.env.Set(s.ErrorName, ErrorValue(err))
	}
	return ev.evalStatements(s.Rescue)
}

// evalFunctionChain threads a value through the steps: each step is called
// with the previous result prepended to its own arguments.
func (ev *Evaluator) evalFunctionChain(s *ast.FunctionChain) (object.Object, error) {
	var value object.Object
	for _, step := range s.Steps {
		if step.Seed != nil {
			v, err := ev.evalExpression(step.Seed)
			if err != nil {
				return nil, err
			}
			value = v
			continue
		}
		args := step.Args
		if value != nil {
			args = append([]ast.Expression{&ast.Quoted{Value: value}}, step.Args...)
		}
		v, err := ev.callNamed(step.Function, args)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if value == nil {
		return object.NULL, nil
	}
	return value, nil
}

// evalOpen runs another script file in this evaluator.
func (ev *Evaluator) evalOpen(s *ast.OpenStatement) (object.Object, error) {
	pathVal, err := ev.evalExpression(s.Path)
	if err != nil {
		return nil, err
	}
	path, ok := pathVal.(*object.String)
	if !ok {
		return nil, newError("open expects a file path string, got %s", object.TypeName(pathVal))
	}
	src, err := os.ReadFile(path.Value)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path.Value, err)
	}
	slog.Debug("open script", slog.String("path", path.Value), slog.Int("bytes", len(src)))
	program, err := parser.Parse(string(src), ev)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path.Value, err)
	}
	return ev.EvalProgram(program)
}
