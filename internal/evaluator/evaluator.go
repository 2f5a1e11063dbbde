package evaluator

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"sort"
	"tails/internal/ast"
	"tails/internal/object"
)

const DefaultMaxCallDepth = 1000

// MaxListPadding caps how far past its end a list may be grown by assigning
// to an index.
const MaxListPadding = 1 << 20

// Builtin is a named function provided by a Registry. It receives its
// arguments unevaluated and evaluates them itself through ev.
type Builtin func(ev *Evaluator, args []ast.Expression) (object.Object, error)

// Registry resolves builtin names.
type Registry interface {
	Lookup(name string) (Builtin, bool)
	Names() []string
}

// Function is a user defined function record.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Statement
}

// Signal is the control outcome of evaluating a statement.
type Signal int

const (
	Continue Signal = iota
	BreakLoop
	Give
)

func (s Signal) String() string {
	switch s {
	case BreakLoop:
		return "break-loop"
	case Give:
		return "give"
	}
	return "continue"
}

type Evaluator struct {
	env          *object.Environment
	functions    map[string]*Function
	registry     Registry
	maxCallDepth int
	stdout       io.Writer
	stdin        *bufio.Reader
}

type Option func(*Evaluator)

func WithRegistry(r Registry) Option {
	return func(ev *Evaluator) { ev.registry = r }
}

func WithMaxCallDepth(depth int) Option {
	return func(ev *Evaluator) {
		if depth > 0 {
			ev.maxCallDepth = depth
		}
	}
}

func WithStdout(w io.Writer) Option {
	return func(ev *Evaluator) { ev.stdout = w }
}

func WithStdin(r io.Reader) Option {
	return func(ev *Evaluator) { ev.stdin = bufio.NewReader(r) }
}

func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		env:          object.NewEnvironment(),
		functions:    make(map[string]*Function),
		maxCallDepth: DefaultMaxCallDepth,
		stdout:       os.Stdout,
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.stdin == nil {
		ev.stdin = bufio.NewReader(os.Stdin)
	}
	return ev
}

// Reset drops every variable, function and call frame. The registry and
// the configured streams are kept.
func (ev *Evaluator) Reset() {
	ev.env = object.NewEnvironment()
	ev.functions = make(map[string]*Function)
}

func (ev *Evaluator) Stdout() io.Writer { return ev.stdout }

func (ev *Evaluator) Stdin() *bufio.Reader { return ev.stdin }

func (ev *Evaluator) Registry() Registry { return ev.registry }

func (ev *Evaluator) MaxCallDepth() int { return ev.maxCallDepth }

// CallDepth is the number of active call frames.
func (ev *Evaluator) CallDepth() int { return ev.env.Depth() }

// Set binds a variable the way an assignment would.
func (ev *Evaluator) Set(name string, value object.Object) {
	ev.env.Set(name, value)
}

func (ev *Evaluator) Get(name string) (object.Object, bool) {
	return ev.env.Get(name)
}

// Function returns the user function registered under name.
func (ev *Evaluator) Function(name string) (*Function, bool) {
	fn, ok := ev.functions[name]
	return fn, ok
}

// FunctionNames lists user defined functions, sorted.
func (ev *Evaluator) FunctionNames() []string {
	names := make([]string, 0, len(ev.functions))
	for name := range ev.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvalProgram runs every statement in order and returns the value of the
// last one. A break-loop outside any loop yields null and evaluation moves
// on to the next statement.
func (ev *Evaluator) EvalProgram(program *ast.Program) (object.Object, error) {
	var result object.Object = object.NULL
	for _, stmt := range program.Statements {
		val, sig, err := ev.evalStatement(stmt)
		if err != nil {
			return nil, err
		}
		switch sig {
		case BreakLoop:
			result = object.NULL
		default:
			result = val
		}
	}
	slog.Debug("program finished", slog.Int("statements", len(program.Statements)))
	return result, nil
}

// Eval evaluates a single node.
func (ev *Evaluator) Eval(node ast.Node) (object.Object, error) {
	switch node := node.(type) {
	case *ast.Program:
		return ev.EvalProgram(node)
	case ast.Statement:
		val, _, err := ev.evalStatement(node)
		return val, err
	case ast.Expression:
		return ev.evalExpression(node)
	}
	return nil, newError("Cannot evaluate %T", node)
}
