package parser

import (
	"strconv"
	"strings"
	"tails/internal/ast"
	"tails/internal/token"
)

var binaryOperators = map[token.TokenType]ast.BinaryOperator{
	token.PLUS:      ast.Add,
	token.MINUS:     ast.Subtract,
	token.ASTERISK:  ast.Multiply,
	token.SLASH:     ast.Divide,
	token.BACKSLASH: ast.FloorDivide,
	token.PERCENT:   ast.Modulo,
	token.LT:        ast.Less,
	token.LT_EQ:     ast.LessEqual,
	token.GT:        ast.Greater,
	token.GT_EQ:     ast.GreaterEqual,
	token.EQ:        ast.Equal,
	token.NOT_EQ:    ast.NotEqual,
	token.AND:       ast.And,
	token.OR:        ast.Or,
}

// keywordFunctions maps keyword tokens that call a registry function to the
// function name.
var keywordFunctions = map[token.TokenType]string{
	token.SAY:       "say",
	token.ASK:       "ask",
	token.GET:       "get",
	token.RUN:       "run",
	token.WAIT:      "wait",
	token.RANDOM:    "random",
	token.READ:      "read",
	token.WRITE:     "write",
	token.CLEAR:     "clear",
	token.SCRAPE:    "scrape",
	token.LIST:      "list",
	token.KEYS_OF:   "keys",
	token.VALUES_OF: "values",
	token.HAS_KEY:   "has",
}

// terminators end a run of bare arguments.
var terminators = map[token.TokenType]bool{
	token.EOF:        true,
	token.NEWLINE:    true,
	token.RPAREN:     true,
	token.RBRACE:     true,
	token.RBRACKET:   true,
	token.COMMA:      true,
	token.COLON:      true,
	token.ELSE:       true,
	token.OTHERWISE:  true,
	token.RESCUE:     true,
	token.IS:         true,
	token.IN:         true,
	token.UP:         true,
	token.DOWN:       true,
	token.IF:         true,
	token.LOOP:       true,
	token.FOR_EACH:   true,
	token.BREAK_LOOP: true,
	token.GIVE:       true,
	token.FUNCTION:   true,
	token.ATTEMPT:    true,
	token.SAY:        true,
	token.OPEN:       true,
}

func (p *Parser) isArgTerminator() bool {
	t := p.curToken().Type
	if terminators[t] {
		return true
	}
	if _, ok := binaryOperators[t]; ok {
		return true
	}
	return p.headerDepth > 0 && (t == token.LPAREN || t == token.LBRACE)
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseBinary(p.parseAnd, token.OR)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseBinary(p.parseComparison, token.AND)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinary(p.parseAdditive, token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.EQ, token.NOT_EQ)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinary(p.parseMultiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinary(p.parsePrimary, token.ASTERISK, token.SLASH, token.BACKSLASH, token.PERCENT)
}

// parseBinary is one left associative precedence level.
func (p *Parser) parseBinary(operand func() (ast.Expression, error), ops ...token.TokenType) (ast.Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for p.curTokenIn(ops) {
		tok := p.curToken()
		p.nextToken()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: tok, Left: left, Operator: binaryOperators[tok.Type], Right: right}
	}

	return left, nil
}

func (p *Parser) curTokenIn(types []token.TokenType) bool {
	for _, t := range types {
		if p.curTokenIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.curToken()

	switch tok.Type {
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.STRING:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case token.INTERP_STRING:
		p.nextToken()
		return interpolatedString(tok), nil
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}, nil
	case token.VARIABLE:
		return p.parseVariable()
	case token.IDENT:
		return p.parseIdentCall()
	case token.BLOCK:
		return p.parseBlockCall(true)
	case token.LPAREN:
		return p.parseGroupedExpression()
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.PIPE:
		return p.parseAnonymousFunction()
	case token.PERIOD:
		return p.parseBuiltinReference()
	case token.MINUS:
		p.nextToken()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		zero := &ast.NumberLiteral{Token: tok, Value: 0}
		return &ast.BinaryExpression{Token: tok, Left: zero, Operator: ast.Subtract, Right: operand}, nil
	}

	if name, ok := keywordFunctions[tok.Type]; ok {
		return p.parseKeywordCall(name)
	}

	return nil, p.errorf("Unexpected token: %s", describeToken(tok))
}

func (p *Parser) parseNumberLiteral() (ast.Expression, error) {
	tok := p.curToken()
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, p.errorf("could not parse %q as number", tok.Literal)
	}
	p.nextToken()
	return &ast.NumberLiteral{Token: tok, Value: value, IsFloat: tok.IsFloat}, nil
}

func interpolatedString(tok token.Token) *ast.InterpolatedString {
	is := &ast.InterpolatedString{Token: tok}
	for _, part := range tok.Parts {
		switch part.Kind {
		case token.TextPart:
			is.Parts = append(is.Parts, ast.InterpolationPart{Text: part.Text})
		case token.VariablePart:
			is.Parts = append(is.Parts, ast.InterpolationPart{Variable: part.Text})
		case token.PathPart:
			var expr ast.Expression = &ast.Variable{Token: tok, Name: part.Path[0]}
			for _, prop := range part.Path[1:] {
				expr = &ast.PropertyAccess{Token: tok, Object: expr, Property: prop}
			}
			is.Parts = append(is.Parts, ast.InterpolationPart{Expression: expr})
		}
	}
	return is
}

// parseVariable parses `~name` and any property chain written directly
// against it, as in `~user.address.0`. A '.' separated by whitespace is left
// alone so that `map ~xs .is-even` passes a builtin reference.
func (p *Parser) parseVariable() (ast.Expression, error) {
	tok := p.curToken()
	p.nextToken()

	var expr ast.Expression = &ast.Variable{Token: tok, Name: tok.Literal}
	prev := tok
	for p.curTokenIs(token.PERIOD) && p.curToken().Position == prev.End() {
		p.nextToken()
		segment, ok := propertySegment(p.curToken())
		if !ok {
			return nil, p.errorf("Expected property name or number after '.'")
		}
		prev = p.curToken()
		p.nextToken()
		expr = &ast.PropertyAccess{Token: tok, Object: expr, Property: segment}
	}
	return expr, nil
}

func (p *Parser) parseBuiltinReference() (ast.Expression, error) {
	tok := p.curToken()
	p.nextToken()
	if !p.curTokenIs(token.IDENT) {
		return nil, p.errorf("Expected identifier after '.' for function reference")
	}
	name := p.curToken().Literal
	p.nextToken()
	return &ast.Variable{Token: tok, Name: "." + name}, nil
}

// hasAdjacentParen reports whether the current token is directly followed by
// '(' with no whitespace, as in `is-even(4)`.
func (p *Parser) hasAdjacentParen() bool {
	next := p.peekToken()
	return next.Type == token.LPAREN && next.Position == p.curToken().End()
}

// parseIdentCall parses a call by name. `name(a, b)` takes a comma list,
// `*name a b` and known functions take bare arguments, and anything else
// is a call with no arguments.
func (p *Parser) parseIdentCall() (ast.Expression, error) {
	tok := p.curToken()
	name := tok.Literal
	starred := strings.HasPrefix(name, "*")
	name = strings.TrimPrefix(name, "*")

	if p.hasAdjacentParen() {
		p.nextToken()
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
	}
	p.nextToken()

	if !starred && !p.userFunctions[name] && (p.builtins == nil || !p.builtins.Has(name)) {
		return &ast.FunctionCall{Token: tok, Name: name, Args: []ast.Expression{}}, nil
	}

	args, err := p.parseBareArguments()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
}

// parseBlockCall parses `:core:name args…`. As an argument it is only a
// reference and takes no arguments of its own.
func (p *Parser) parseBlockCall(withArgs bool) (ast.Expression, error) {
	tok := p.curToken()
	p.nextToken()
	if !p.curTokenIs(token.IDENT) {
		return nil, p.errorf("Expected function name after %s:", tok.Literal)
	}
	name := tok.Literal + ":" + strings.TrimPrefix(p.curToken().Literal, "*")

	if p.hasAdjacentParen() {
		p.nextToken()
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
	}
	p.nextToken()

	if !withArgs {
		return &ast.FunctionCall{Token: tok, Name: name, Args: []ast.Expression{}}, nil
	}
	args, err := p.parseBareArguments()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
}

// parseKeywordCall parses keyword actions such as `say` whose arguments are
// full expressions.
func (p *Parser) parseKeywordCall(name string) (ast.Expression, error) {
	tok := p.curToken()

	if p.hasAdjacentParen() {
		p.nextToken()
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
	}
	p.nextToken()

	args := []ast.Expression{}
	for !p.isArgTerminator() {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.FunctionCall{Token: tok, Name: name, Args: args}, nil
}

func (p *Parser) parseBareArguments() ([]ast.Expression, error) {
	args := []ast.Expression{}
	for !p.isArgTerminator() {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// parseArgument parses one bare argument. Plain names are passed as
// references rather than called, so `map ~xs double` hands `double` to map.
func (p *Parser) parseArgument() (ast.Expression, error) {
	tok := p.curToken()
	switch tok.Type {
	case token.IDENT:
		if p.hasAdjacentParen() {
			return p.parseIdentCall()
		}
		p.nextToken()
		return &ast.FunctionCall{Token: tok, Name: strings.TrimPrefix(tok.Literal, "*"), Args: []ast.Expression{}}, nil
	case token.BLOCK:
		return p.parseBlockCall(false)
	}
	return p.parsePrimary()
}

// parseCallArguments parses `(a, b, …)` with the cursor on '('.
func (p *Parser) parseCallArguments() ([]ast.Expression, error) {
	p.nextToken()
	saved := p.headerDepth
	p.headerDepth = 0
	defer func() { p.headerDepth = saved }()

	args := []ast.Expression{}
	p.skipNewlines()
	for !p.curTokenIs(token.RPAREN) {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
			p.skipNewlines()
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
	}
	p.nextToken()
	return args, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	p.nextToken()
	saved := p.headerDepth
	p.headerDepth = 0
	defer func() { p.headerDepth = saved }()

	p.skipNewlines()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseListLiteral() (ast.Expression, error) {
	list := &ast.ListLiteral{Token: p.curToken(), Items: []ast.Expression{}}
	p.nextToken()

	saved := p.headerDepth
	p.headerDepth = 0
	defer func() { p.headerDepth = saved }()

	p.skipNewlines()
	for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.EOF) {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)

		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		}
	}

	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	obj := &ast.ObjectLiteral{Token: p.curToken(), Pairs: []ast.ObjectPair{}}
	p.nextToken()

	saved := p.headerDepth
	p.headerDepth = 0
	defer func() { p.headerDepth = saved }()

	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		key, ok := objectKey(p.curToken())
		if !ok {
			return nil, p.errorf("Expected string or identifier key in object literal")
		}
		p.nextToken()

		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		p.skipNewlines()

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		obj.Pairs = append(obj.Pairs, ast.ObjectPair{Key: key, Value: value})

		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		}
	}

	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return obj, nil
}

func objectKey(tok token.Token) (string, bool) {
	switch tok.Type {
	case token.STRING, token.IDENT:
		return tok.Literal, true
	case token.NUMBER, token.VARIABLE, token.INTERP_STRING:
		return "", false
	}
	if isKeyword(tok) {
		return tok.Literal, true
	}
	return "", false
}

// parseAnonymousFunction parses `|~a ~b (body)|`.
func (p *Parser) parseAnonymousFunction() (ast.Expression, error) {
	fn := &ast.AnonymousFunction{Token: p.curToken()}
	p.nextToken()

	for !p.curTokenIs(token.LPAREN) {
		if !p.curTokenIs(token.VARIABLE) {
			return nil, p.errorf("Expected parameter variable in anonymous function, got %s", describeToken(p.curToken()))
		}
		fn.Params = append(fn.Params, p.curToken().Literal)
		p.nextToken()
	}
	if len(fn.Params) == 0 {
		return nil, p.errorf("Anonymous function must have at least one parameter")
	}

	body, err := p.parseGroupedExpression()
	if err != nil {
		return nil, err
	}
	fn.Body = body

	if _, err := p.expect(token.PIPE); err != nil {
		return nil, err
	}
	return fn, nil
}
