package parser

import (
	"fmt"
	"tails/internal/ast"
	"tails/internal/lexer"
	"tails/internal/token"
	"tails/internal/util"
)

// Builtins reports which plain identifiers name registry functions. Those
// identifiers take whitespace separated arguments; unknown identifiers are
// zero argument calls.
type Builtins interface {
	Has(name string) bool
}

// Error is a parse failure at a source position.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Column, e.Message)
}

type Parser struct {
	tokens []token.Token
	pos    int
	src    string // source code here

	builtins      Builtins
	userFunctions map[string]bool

	// while > 0, bare arguments stop at '(' and '{' so headers like
	// `for-each ~k in keys-of ~obj ( … )` leave the body alone
	headerDepth int
}

func New(tokens []token.Token, source string) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF, Position: len(source)})
	}
	return &Parser{
		tokens:        tokens,
		src:           source,
		userFunctions: map[string]bool{},
	}
}

// Parse lexes and parses source in one step.
func Parse(source string, builtins Builtins) (*ast.Program, error) {
	return New(lexer.Tokenize(source), source).WithBuiltins(builtins).ParseProgram()
}

func (p *Parser) WithBuiltins(b Builtins) *Parser {
	p.builtins = b
	return p
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	p.skipNewlines()
	for !p.curTokenIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
		p.skipNewlines()
	}

	return program, nil
}

func (p *Parser) curToken() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekToken() token.Token {
	return p.peekAt(1)
}

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken().Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken().Type == t
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// expect consumes the current token if it has type t.
func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.curToken()
	if tok.Type != t {
		return tok, p.errorf("Expected %s, got %s", describe(t), describeToken(tok))
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	line, col := util.GetLineAndColumn(p.src, p.curToken().Position)
	return &Error{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

var tokenNames = map[token.TokenType]string{
	token.LPAREN:   "LeftParen",
	token.RPAREN:   "RightParen",
	token.LBRACE:   "LeftBrace",
	token.RBRACE:   "RightBrace",
	token.LBRACKET: "LeftBracket",
	token.RBRACKET: "RightBracket",
	token.COLON:    "Colon",
	token.COMMA:    "Comma",
	token.PIPE:     "Pipe",
	token.NEWLINE:  "Newline",
	token.EOF:      "Eof",
	token.IS:       "Is",
	token.IN:       "In",
	token.RESCUE:   "Rescue",
	token.VARIABLE: "Variable",
	token.IDENT:    "Identifier",
}

func describe(t token.TokenType) string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return string(t)
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF, token.NEWLINE:
		return describe(tok.Type)
	case token.VARIABLE:
		return fmt.Sprintf("Variable(%q)", tok.Literal)
	}
	return fmt.Sprintf("%s(%q)", describe(tok.Type), tok.Literal)
}
