package parser

import (
	"strconv"
	"strings"
	"tails/internal/ast"
	"tails/internal/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken().Type {
	case token.VARIABLE:
		return p.parseVariableStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.LOOP:
		return p.parseLoopStatement()
	case token.FOR_EACH:
		return p.parseForEachStatement()
	case token.BREAK_LOOP:
		tok := p.curToken()
		p.nextToken()
		return &ast.BreakLoop{Token: tok}, nil
	case token.OPEN:
		tok := p.curToken()
		p.nextToken()
		path, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.OpenStatement{Token: tok, Path: path}, nil
	case token.LPAREN:
		if p.isGroupedExpression() {
			return p.parseExpressionStatement()
		}
		tok := p.curToken()
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Token: tok, Body: body}, nil
	case token.FUNCTION:
		return p.parseFunctionDefinition()
	case token.GIVE:
		return p.parseGiveStatement()
	case token.ATTEMPT:
		return p.parseAttemptRescue()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	tok := p.curToken()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

// isGroupedExpression reports whether the '(' at the cursor opens an
// arithmetic group such as `(2 + 3) * 4` rather than a block.
func (p *Parser) isGroupedExpression() bool {
	end, ok := p.matchingClose(p.pos)
	if !ok {
		return false
	}
	next := p.tokens[min(end+1, len(p.tokens)-1)]
	_, isOperator := binaryOperators[next.Type]
	return isOperator
}

// matchingClose finds the index of the bracket closing the one at start.
func (p *Parser) matchingClose(start int) (int, bool) {
	depth := 0
	for i := start; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func (p *Parser) parseVariableStatement() (ast.Statement, error) {
	tok := p.curToken()

	switch p.peekToken().Type {
	case token.IS:
		p.nextToken()
		p.nextToken()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Token: tok, Name: tok.Literal, Value: value}, nil

	case token.UP, token.DOWN:
		p.nextToken()
		isUp := p.curTokenIs(token.UP)
		p.nextToken()
		amount, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if isUp {
			return &ast.Increment{Token: tok, Name: tok.Literal, Amount: amount}, nil
		}
		return &ast.Decrement{Token: tok, Name: tok.Literal, Amount: amount}, nil

	case token.COLON:
		return p.parseFunctionChain()

	case token.PERIOD:
		if stmt, ok := p.tryPropertyAssignment(); ok {
			return stmt, nil
		}
	}

	return p.parseExpressionStatement()
}

// tryPropertyAssignment parses `~x.a.b is E`. When the path is not followed
// by `is`, the cursor is restored and ok is false.
func (p *Parser) tryPropertyAssignment() (ast.Statement, bool) {
	start := p.pos
	tok := p.curToken()
	p.nextToken()

	var path []string
	for p.curTokenIs(token.PERIOD) {
		p.nextToken()
		segment, ok := propertySegment(p.curToken())
		if !ok {
			p.pos = start
			return nil, false
		}
		path = append(path, segment)
		p.nextToken()
	}

	if !p.curTokenIs(token.IS) || len(path) == 0 {
		p.pos = start
		return nil, false
	}
	p.nextToken()

	value, err := p.parseExpression()
	if err != nil {
		p.pos = start
		return nil, false
	}

	var object ast.Expression = &ast.Variable{Token: tok, Name: tok.Literal}
	for _, segment := range path[:len(path)-1] {
		object = &ast.PropertyAccess{Token: tok, Object: object, Property: segment}
	}

	return &ast.PropertyAssignment{
		Token:    tok,
		Object:   object,
		Property: path[len(path)-1],
		Value:    value,
	}, true
}

// propertySegment turns the token after a '.' into a property name.
func propertySegment(tok token.Token) (string, bool) {
	switch tok.Type {
	case token.IDENT:
		return tok.Literal, true
	case token.VARIABLE:
		return "~" + tok.Literal, true
	case token.NUMBER:
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return "", false
		}
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10), true
		}
		return tok.Literal, true
	case token.TRUE, token.FALSE:
		return strings.ToLower(tok.Literal), true
	}
	if isKeyword(tok) {
		return tok.Literal, true
	}
	return "", false
}

func isKeyword(tok token.Token) bool {
	return tok.Literal != "" && token.LookupIdent(tok.Literal) == tok.Type && tok.Type != token.IDENT
}

func (p *Parser) parseFunctionChain() (ast.Statement, error) {
	tok := p.curToken()
	p.nextToken() // the variable
	p.nextToken() // the colon

	chain := &ast.FunctionChain{Token: tok, Name: tok.Literal}

	if !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		step, err := p.parseChainStep(true)
		if err != nil {
			return nil, err
		}
		chain.Steps = append(chain.Steps, step)
		if step.Seed == nil {
			return chain, nil
		}
	}

	for {
		mark := p.pos
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if !p.isChainStepStart(len(chain.Steps) == 0) {
			p.pos = mark
			break
		}
		step, err := p.parseChainStep(len(chain.Steps) == 0)
		if err != nil {
			return nil, err
		}
		chain.Steps = append(chain.Steps, step)
	}

	if len(chain.Steps) == 0 {
		return nil, p.errorf("Expected at least one step in function chain '~%s'", tok.Literal)
	}
	return chain, nil
}

func (p *Parser) isChainStepStart(first bool) bool {
	tok := p.curToken()
	switch tok.Type {
	case token.IDENT, token.BLOCK:
		return true
	case token.EOF, token.NEWLINE, token.RPAREN, token.RBRACE:
		return false
	}
	if _, ok := keywordFunctions[tok.Type]; ok {
		return first
	}
	return first && !isKeyword(tok)
}

// parseChainStep parses `name args…` up to the end of the line. The first
// step of a chain may instead be a seed expression.
func (p *Parser) parseChainStep(first bool) (ast.ChainStep, error) {
	tok := p.curToken()

	name := ""
	switch {
	case tok.Type == token.IDENT:
		name = strings.TrimPrefix(tok.Literal, "*")
		p.nextToken()
	case tok.Type == token.BLOCK && p.peekTokenIs(token.IDENT):
		name = tok.Literal + ":" + p.peekToken().Literal
		p.nextToken()
		p.nextToken()
	default:
		if fn, ok := keywordFunctions[tok.Type]; ok {
			name = fn
			p.nextToken()
		}
	}

	if name == "" {
		if !first {
			return ast.ChainStep{}, p.errorf("Expected function name in chain step, got %s", describeToken(tok))
		}
		seed, err := p.parseExpression()
		if err != nil {
			return ast.ChainStep{}, err
		}
		return ast.ChainStep{Seed: seed}, nil
	}

	var args []ast.Expression
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) &&
		!p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.RBRACE) {
		arg, err := p.parseArgument()
		if err != nil {
			return ast.ChainStep{}, err
		}
		args = append(args, arg)
	}
	return ast.ChainStep{Function: name, Args: args}, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	stmt := &ast.IfStatement{Token: p.curToken()}
	p.nextToken()

	p.headerDepth++
	condition, err := p.parseExpression()
	p.headerDepth--
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition

	if stmt.Then, err = p.parseBranch(); err != nil {
		return nil, err
	}

	mark := p.pos
	p.skipNewlines()
	if p.curTokenIs(token.ELSE) || p.curTokenIs(token.OTHERWISE) {
		p.nextToken()
		if stmt.Else, err = p.parseBranch(); err != nil {
			return nil, err
		}
	} else {
		p.pos = mark
	}

	return stmt, nil
}

// parseBranch parses the statement controlled by if/else. A block may start
// on the following line.
func (p *Parser) parseBranch() (ast.Statement, error) {
	p.skipNewlinesBeforeBlock()
	if p.curTokenIs(token.LPAREN) || p.curTokenIs(token.LBRACE) {
		tok := p.curToken()
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Token: tok, Body: body}, nil
	}
	if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.EOF) {
		return nil, p.errorf("Expected statement, got %s", describeToken(p.curToken()))
	}
	return p.parseStatement()
}

func (p *Parser) skipNewlinesBeforeBlock() {
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].Type == token.NEWLINE {
		i++
	}
	if i < len(p.tokens) && (p.tokens[i].Type == token.LPAREN || p.tokens[i].Type == token.LBRACE) {
		p.pos = i
	}
}

func (p *Parser) parseLoopStatement() (ast.Statement, error) {
	tok := p.curToken()
	p.nextToken()
	p.skipNewlinesBeforeBlock()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.LoopStatement{Token: tok, Body: body}, nil
}

func (p *Parser) parseForEachStatement() (ast.Statement, error) {
	stmt := &ast.ForEachStatement{Token: p.curToken()}
	p.nextToken()

	if !p.curTokenIs(token.VARIABLE) {
		return nil, p.errorf("Expected variable after 'for-each'")
	}
	for p.curTokenIs(token.VARIABLE) {
		if len(stmt.Variables) == 2 {
			return nil, p.errorf("for-each expects at most 2 variables")
		}
		stmt.Variables = append(stmt.Variables, p.curToken().Literal)
		p.nextToken()
	}

	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}

	p.headerDepth++
	iterable, err := p.parseExpression()
	p.headerDepth--
	if err != nil {
		return nil, err
	}
	stmt.Iterable = iterable

	p.skipNewlinesBeforeBlock()
	if stmt.Body, err = p.parseBody(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFunctionDefinition() (ast.Statement, error) {
	stmt := &ast.FunctionDefinition{Token: p.curToken()}
	p.nextToken()

	nameTok := p.curToken()
	if nameTok.Type != token.IDENT {
		return nil, p.errorf("Expected function name, got %s", describeToken(nameTok))
	}
	stmt.Name = strings.TrimPrefix(nameTok.Literal, "*")
	p.userFunctions[stmt.Name] = true
	p.nextToken()

	if p.curTokenIs(token.LPAREN) && p.isParameterList() {
		p.nextToken()
		for !p.curTokenIs(token.RPAREN) {
			switch tok := p.curToken(); tok.Type {
			case token.VARIABLE, token.IDENT:
				stmt.Params = append(stmt.Params, tok.Literal)
			}
			p.nextToken()
		}
		p.nextToken()
	} else {
		for p.curTokenIs(token.VARIABLE) {
			stmt.Params = append(stmt.Params, p.curToken().Literal)
			p.nextToken()
		}
	}

	p.skipNewlinesBeforeBlock()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// isParameterList reports whether the '(' at the cursor holds only names
// and commas and is directly followed by a body block.
func (p *Parser) isParameterList() bool {
	i := p.pos + 1
	for ; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.VARIABLE, token.IDENT, token.COMMA:
			continue
		case token.RPAREN:
			j := i + 1
			for j < len(p.tokens) && p.tokens[j].Type == token.NEWLINE {
				j++
			}
			return j < len(p.tokens) && (p.tokens[j].Type == token.LPAREN || p.tokens[j].Type == token.LBRACE)
		}
		return false
	}
	return false
}

func (p *Parser) parseGiveStatement() (ast.Statement, error) {
	tok := p.curToken()
	p.nextToken()
	if p.isStatementEnd() {
		return &ast.GiveStatement{Token: tok}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.GiveStatement{Token: tok, Value: value}, nil
}

func (p *Parser) isStatementEnd() bool {
	switch p.curToken().Type {
	case token.NEWLINE, token.EOF, token.RPAREN, token.RBRACE:
		return true
	}
	return false
}

func (p *Parser) parseAttemptRescue() (ast.Statement, error) {
	stmt := &ast.AttemptRescue{Token: p.curToken()}
	p.nextToken()

	p.skipNewlinesBeforeBlock()
	attempt, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	stmt.Attempt = attempt

	p.skipNewlines()
	if _, err := p.expect(token.RESCUE); err != nil {
		return nil, err
	}
	if p.curTokenIs(token.VARIABLE) {
		stmt.ErrorName = p.curToken().Literal
		p.nextToken()
	}

	p.skipNewlinesBeforeBlock()
	if stmt.Rescue, err = p.parseBody(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseBody parses a `( … )` or `{ … }` block of statements.
func (p *Parser) parseBody() ([]ast.Statement, error) {
	var closing token.TokenType
	switch p.curToken().Type {
	case token.LPAREN:
		closing = token.RPAREN
	case token.LBRACE:
		closing = token.RBRACE
	default:
		return nil, p.errorf("Expected LeftParen, got %s", describeToken(p.curToken()))
	}
	p.nextToken()

	// headers do not reach into nested bodies
	saved := p.headerDepth
	p.headerDepth = 0
	defer func() { p.headerDepth = saved }()

	body := []ast.Statement{}
	for {
		p.skipNewlines()
		if p.curTokenIs(closing) {
			p.nextToken()
			return body, nil
		}
		if p.curTokenIs(token.EOF) {
			return nil, p.errorf("Expected %s, got Eof", describe(closing))
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}
