package evaluator

import (
	"log/slog"
	"sort"
	"strings"
	"tails/internal/ast"
	"tails/internal/object"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const corePrefix = "core:"

// Callable is anything Apply can invoke: a function name (user function,
// builtin or "core:" qualified builtin) or an anonymous function.
type Callable struct {
	Name      string
	Anonymous *ast.AnonymousFunction
}

func (c Callable) String() string {
	if c.Anonymous != nil {
		return c.Anonymous.String()
	}
	return c.Name
}

// Has reports whether name resolves to a user function or a builtin, so
// the evaluator can serve as the parser's builtin set.
func (ev *Evaluator) Has(name string) bool {
	if _, ok := ev.functions[name]; ok {
		return true
	}
	_, ok := ev.lookupBuiltin(name)
	return ok
}

func (ev *Evaluator) lookupBuiltin(name string) (Builtin, bool) {
	if ev.registry == nil {
		return nil, false
	}
	return ev.registry.Lookup(name)
}

// callNamed dispatches a call by name: a "core:" name goes straight to the
// registry, anything else prefers a user function over a builtin.
func (ev *Evaluator) callNamed(name string, args []ast.Expression) (object.Object, error) {
	if block, fn, qualified := strings.Cut(name, ":"); qualified {
		if block != "core" {
			return nil, newError("Unknown block: %s", block)
		}
		builtin, ok := ev.lookupBuiltin(fn)
		if !ok {
			return nil, newError("Unknown core function: %s", fn)
		}
		slog.Debug("call builtin", slog.String("function", name))
		return builtin(ev, args)
	}

	if fn, ok := ev.functions[name]; ok {
		values, err := ev.EvalArguments(args)
		if err != nil {
			return nil, err
		}
		return ev.callFunction(fn.Params, fn.Body, values)
	}

	if builtin, ok := ev.lookupBuiltin(name); ok {
		slog.Debug("call builtin", slog.String("function", name))
		return builtin(ev, args)
	}

	return nil, ev.unknownFunction(name)
}

// callFunction runs a function body in a fresh frame binding params to args.
func (ev *Evaluator) callFunction(params []string, body []ast.Statement, args []object.Object) (object.Object, error) {
	if ev.env.Depth() >= ev.maxCallDepth {
		return nil, newError("Maximum call depth (%d) exceeded", ev.maxCallDepth)
	}
	if len(args) != len(params) {
		return nil, newError("Function expects %d arguments, but %d were provided", len(params), len(args))
	}

	frame := make(map[string]object.Object, len(params))
	for i, param := range params {
		frame[param] = args[i]
	}
	ev.env.PushFrame(frame)
	defer ev.env.PopFrame()

	val, sig, err := ev.evalStatements(body)
	if err != nil {
		return nil, err
	}
	if sig == BreakLoop {
		return object.NULL, nil
	}
	return val, nil
}

// CallFunction calls name with already evaluated arguments, resolving it
// the same way a call in a script would.
func (ev *Evaluator) CallFunction(name string, args ...object.Object) (object.Object, error) {
	return ev.callNamed(name, Quote(args))
}

// Apply invokes a callable with already evaluated arguments.
func (ev *Evaluator) Apply(c Callable, args ...object.Object) (object.Object, error) {
	if c.Anonymous != nil {
		body := []ast.Statement{&ast.ExpressionStatement{Token: c.Anonymous.Token, Expression: c.Anonymous.Body}}
		return ev.callFunction(c.Anonymous.Params, body, args)
	}
	return ev.CallFunction(c.Name, args...)
}

// Callable turns an argument expression into something Apply can call: an
// anonymous function, a bare function name, a `.name` builtin reference or
// a value holding a function name.
func (ev *Evaluator) Callable(arg ast.Expression) (Callable, error) {
	switch a := arg.(type) {
	case *ast.AnonymousFunction:
		return Callable{Anonymous: a}, nil
	case *ast.FunctionCall:
		if len(a.Args) == 0 {
			return Callable{Name: strings.TrimPrefix(a.Name, "*")}, nil
		}
	case *ast.Variable:
		if name, ok := strings.CutPrefix(a.Name, "."); ok {
			return Callable{Name: name}, nil
		}
	}

	val, err := ev.evalExpression(arg)
	if err != nil {
		return Callable{}, err
	}
	if s, ok := val.(*object.String); ok && ev.Has(strings.TrimPrefix(s.Value, corePrefix)) {
		return Callable{Name: s.Value}, nil
	}
	return Callable{}, newError("Expected a function, got %s", object.TypeName(val))
}

// EvalArguments evaluates argument expressions left to right.
func (ev *Evaluator) EvalArguments(args []ast.Expression) ([]object.Object, error) {
	values := make([]object.Object, 0, len(args))
	for _, arg := range args {
		val, err := ev.evalExpression(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

// EvalExpression evaluates one argument expression.
func (ev *Evaluator) EvalExpression(expr ast.Expression) (object.Object, error) {
	return ev.evalExpression(expr)
}

// Quote wraps evaluated values so they can be passed where expressions are
// expected.
func Quote(values []object.Object) []ast.Expression {
	exprs := make([]ast.Expression, len(values))
	for i, v := range values {
		exprs[i] = &ast.Quoted{Value: v}
	}
	return exprs
}

func (ev *Evaluator) unknownFunction(name string) error {
	candidates := ev.FunctionNames()
	if ev.registry != nil {
		candidates = append(candidates, ev.registry.Names()...)
	}
	if suggestions := suggest(name, candidates); len(suggestions) > 0 {
		return newError("Unknown function: %s (did you mean %s?)", name, strings.Join(suggestions, ", "))
	}
	return newError("Unknown function: %s", name)
}

// suggest picks up to three names close to name: fuzzy matches first, then
// names within a small edit distance.
func suggest(name string, candidates []string) []string {
	const limit = 3
	seen := map[string]bool{}
	var out []string

	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)
	for _, r := range ranks {
		if len(out) == limit {
			return out
		}
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}

	type near struct {
		name     string
		distance int
	}
	var nearby []near
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d <= 2 {
			nearby = append(nearby, near{c, d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].distance != nearby[j].distance {
			return nearby[i].distance < nearby[j].distance
		}
		return nearby[i].name < nearby[j].name
	})
	for _, c := range nearby {
		if len(out) == limit {
			break
		}
		seen[c.name] = true
		out = append(out, c.name)
	}
	return out
}
