package ast

import (
	"bytes"
	"strconv"
	"strings"
	"tails/internal/token"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
	FloorDivide
	Modulo
	Less
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
	And
	Or
)

var operatorSymbols = [...]string{"+", "-", "*", "/", "\\", "%", "<", "<=", ">", ">=", "==", "!=", "and", "or"}

func (op BinaryOperator) String() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return "?"
}

// statements

type Assignment struct {
	Token token.Token // the variable token
	Name  string
	Value Expression
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) String() string {
	return "~" + a.Name + " is " + a.Value.String()
}

// PropertyAssignment writes Value into Object.Property. Object is a Variable
// or a PropertyAccess chain rooted at one.
type PropertyAssignment struct {
	Token    token.Token
	Object   Expression
	Property string
	Value    Expression
}

func (pa *PropertyAssignment) statementNode()       {}
func (pa *PropertyAssignment) TokenLiteral() string { return pa.Token.Literal }
func (pa *PropertyAssignment) String() string {
	return pa.Object.String() + "." + pa.Property + " is " + pa.Value.String()
}

type IfStatement struct {
	Token     token.Token // the 'if' token
	Condition Expression
	Then      Statement
	Else      Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.Then.String())
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}
	return out.String()
}

type LoopStatement struct {
	Token token.Token
	Body  []Statement
}

func (ls *LoopStatement) statementNode()       {}
func (ls *LoopStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LoopStatement) String() string       { return "loop " + blockString(ls.Body) }

type ForEachStatement struct {
	Token     token.Token
	Variables []string
	Iterable  Expression
	Body      []Statement
}

func (fe *ForEachStatement) statementNode()       {}
func (fe *ForEachStatement) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForEachStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for-each")
	for _, v := range fe.Variables {
		out.WriteString(" ~" + v)
	}
	out.WriteString(" in ")
	out.WriteString(fe.Iterable.String())
	out.WriteString(" ")
	out.WriteString(blockString(fe.Body))
	return out.String()
}

type Increment struct {
	Token  token.Token
	Name   string
	Amount Expression
}

func (inc *Increment) statementNode()       {}
func (inc *Increment) TokenLiteral() string { return inc.Token.Literal }
func (inc *Increment) String() string       { return "~" + inc.Name + " up " + inc.Amount.String() }

type Decrement struct {
	Token  token.Token
	Name   string
	Amount Expression
}

func (dec *Decrement) statementNode()       {}
func (dec *Decrement) TokenLiteral() string { return dec.Token.Literal }
func (dec *Decrement) String() string       { return "~" + dec.Name + " down " + dec.Amount.String() }

type BlockStatement struct {
	Token token.Token
	Body  []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string       { return blockString(bs.Body) }

type BreakLoop struct {
	Token token.Token
}

func (bl *BreakLoop) statementNode()       {}
func (bl *BreakLoop) TokenLiteral() string { return bl.Token.Literal }
func (bl *BreakLoop) String() string       { return "break-loop" }

type FunctionDefinition struct {
	Token  token.Token // the 'function' token
	Name   string
	Params []string
	Body   []Statement
}

func (fd *FunctionDefinition) statementNode()       {}
func (fd *FunctionDefinition) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefinition) String() string {
	var out bytes.Buffer
	out.WriteString("function ")
	out.WriteString(fd.Name)
	for _, p := range fd.Params {
		out.WriteString(" ~" + p)
	}
	out.WriteString(" ")
	out.WriteString(blockString(fd.Body))
	return out.String()
}

// ChainStep is one line of a function chain. A step with a Seed supplies the
// initial value instead of applying a function.
type ChainStep struct {
	Function string
	Args     []Expression
	Seed     Expression
}

func (cs ChainStep) String() string {
	if cs.Seed != nil {
		return cs.Seed.String()
	}
	parts := []string{cs.Function}
	for _, a := range cs.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

type FunctionChain struct {
	Token token.Token
	Name  string
	Steps []ChainStep
}

func (fc *FunctionChain) statementNode()       {}
func (fc *FunctionChain) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionChain) String() string {
	var out bytes.Buffer
	out.WriteString("~" + fc.Name + ":")
	for _, s := range fc.Steps {
		out.WriteString("\n  ")
		out.WriteString(s.String())
	}
	return out.String()
}

type AttemptRescue struct {
	Token     token.Token // the 'attempt' token
	Attempt   []Statement
	ErrorName string // empty when the rescue binds nothing
	Rescue    []Statement
}

func (ar *AttemptRescue) statementNode()       {}
func (ar *AttemptRescue) TokenLiteral() string { return ar.Token.Literal }
func (ar *AttemptRescue) String() string {
	var out bytes.Buffer
	out.WriteString("attempt ")
	out.WriteString(blockString(ar.Attempt))
	out.WriteString(" rescue ")
	if ar.ErrorName != "" {
		out.WriteString("~" + ar.ErrorName + " ")
	}
	out.WriteString(blockString(ar.Rescue))
	return out.String()
}

type GiveStatement struct {
	Token token.Token // the 'give' token
	Value Expression
}

func (gs *GiveStatement) statementNode()       {}
func (gs *GiveStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GiveStatement) String() string {
	if gs.Value == nil {
		return "give"
	}
	return "give " + gs.Value.String()
}

type OpenStatement struct {
	Token token.Token
	Path  Expression
}

func (o *OpenStatement) statementNode()       {}
func (o *OpenStatement) TokenLiteral() string { return o.Token.Literal }
func (o *OpenStatement) String() string       { return "open " + o.Path.String() }

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// expressions

type NumberLiteral struct {
	Token   token.Token
	Value   float64
	IsFloat bool // written with a decimal point
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// InterpolationPart is literal Text, a bare Variable, or an Expression.
type InterpolationPart struct {
	Text       string
	Variable   string
	Expression Expression
}

type InterpolatedString struct {
	Token token.Token
	Parts []InterpolationPart
}

func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Literal }
func (is *InterpolatedString) String() string {
	var out bytes.Buffer
	out.WriteString("\"")
	for _, p := range is.Parts {
		switch {
		case p.Expression != nil:
			out.WriteString("`" + p.Expression.String() + "`")
		case p.Variable != "":
			out.WriteString("`~" + p.Variable + "`")
		default:
			out.WriteString(p.Text)
		}
	}
	out.WriteString("\"")
	return out.String()
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return strconv.FormatBool(bl.Value) }

// Variable references a binding. A name starting with '.' refers to the
// builtin of that name as a callable value.
type Variable struct {
	Token token.Token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Literal }
func (v *Variable) String() string {
	if strings.HasPrefix(v.Name, ".") {
		return v.Name
	}
	return "~" + v.Name
}

type ListLiteral struct {
	Token token.Token // the '[' token
	Items []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	items := make([]string, 0, len(ll.Items))
	for _, el := range ll.Items {
		items = append(items, el.String())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

type BinaryExpression struct {
	Token    token.Token // the operator token
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator.String() + " " + be.Right.String() + ")"
}

type FunctionCall struct {
	Token token.Token
	Name  string
	Args  []Expression
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) String() string {
	args := make([]string, 0, len(fc.Args))
	for _, a := range fc.Args {
		args = append(args, a.String())
	}
	return fc.Name + "(" + strings.Join(args, ", ") + ")"
}

// PropertyAccess reads Object.Property. A Property of the form "~name" uses
// the value of variable name as the key or index.
type PropertyAccess struct {
	Token    token.Token
	Object   Expression
	Property string
}

func (pa *PropertyAccess) expressionNode()      {}
func (pa *PropertyAccess) TokenLiteral() string { return pa.Token.Literal }
func (pa *PropertyAccess) String() string       { return pa.Object.String() + "." + pa.Property }

type ObjectPair struct {
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Token token.Token // the '{' token
	Pairs []ObjectPair
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	pairs := make([]string, 0, len(ol.Pairs))
	for _, p := range ol.Pairs {
		pairs = append(pairs, p.Key+": "+p.Value.String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

type AnonymousFunction struct {
	Token  token.Token // the opening '|'
	Params []string
	Body   Expression
}

func (af *AnonymousFunction) expressionNode()      {}
func (af *AnonymousFunction) TokenLiteral() string { return af.Token.Literal }
func (af *AnonymousFunction) String() string {
	var out bytes.Buffer
	out.WriteString("|")
	for i, p := range af.Params {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString("~" + p)
	}
	out.WriteString(" (")
	out.WriteString(af.Body.String())
	out.WriteString(")|")
	return out.String()
}

// Value is satisfied by runtime values carried inside a Quoted expression.
type Value interface {
	Inspect() string
}

// Quoted carries a value that has already been evaluated, so it can be
// passed back through interfaces that take unevaluated arguments.
type Quoted struct {
	Value Value
}

func (q *Quoted) expressionNode()      {}
func (q *Quoted) TokenLiteral() string { return "" }
func (q *Quoted) String() string       { return q.Value.Inspect() }

func blockString(body []Statement) string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, s := range body {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(")")
	return out.String()
}
