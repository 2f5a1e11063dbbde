package lexer

import (
	"tails/internal/token"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF

	afterBlock bool // the previous token was a :block: qualifier
	prevType   token.TokenType
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The result always ends with an EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	l.prevType = tok.Type
	return tok
}

func (l *Lexer) nextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	wasAfterBlock := l.afterBlock
	l.afterBlock = false

	startPosition := l.position

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, startPosition)
	case '+':
		tok = newToken(token.PLUS, l.ch, startPosition)
	case '-':
		if isDigit(l.peekChar()) {
			l.readChar()
			return l.readNumber(startPosition, true)
		}
		tok = newToken(token.MINUS, l.ch, startPosition)
	case '*':
		if isLetter(l.peekChar()) {
			l.readChar()
			ident := l.readIdentifier()
			return token.Token{Type: token.IDENT, Literal: "*" + ident, Position: startPosition}
		}
		tok = newToken(token.ASTERISK, l.ch, startPosition)
	case '/':
		tok = newToken(token.SLASH, l.ch, startPosition)
	case '\\':
		tok = newToken(token.BACKSLASH, l.ch, startPosition)
	case '%':
		tok = newToken(token.PERCENT, l.ch, startPosition)
	case '<':
		tok = l.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = l.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case '=':
		if l.peekChar() != '=' {
			// a lone '=' carries no meaning and is dropped
			l.readChar()
			return l.nextToken()
		}
		tok = l.handleCompoundToken(token.ILLEGAL, '=', token.EQ)
	case '!':
		if l.peekChar() != '=' {
			l.readChar()
			return l.nextToken()
		}
		tok = l.handleCompoundToken(token.ILLEGAL, '=', token.NOT_EQ)
	case '|':
		tok = newToken(token.PIPE, l.ch, startPosition)
	case '.':
		tok = newToken(token.PERIOD, l.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, l.ch, startPosition)
	case '(':
		tok = newToken(token.LPAREN, l.ch, startPosition)
	case ')':
		tok = newToken(token.RPAREN, l.ch, startPosition)
	case '{':
		tok = newToken(token.LBRACE, l.ch, startPosition)
	case '}':
		tok = newToken(token.RBRACE, l.ch, startPosition)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, startPosition)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, startPosition)
	case '~':
		l.readChar()
		return token.Token{Type: token.VARIABLE, Literal: l.readIdentifier(), Position: startPosition}
	case ':':
		if !isLetter(l.peekChar()) {
			tok = newToken(token.COLON, l.ch, startPosition)
			break
		}
		l.readChar()
		name := l.readIdentifier()
		if l.ch != ':' {
			// `:name` without a closing colon keeps only the colon
			return token.Token{Type: token.COLON, Literal: ":", Position: startPosition}
		}
		l.readChar()
		l.afterBlock = true
		return token.Token{Type: token.BLOCK, Literal: name, Position: startPosition}
	case '"':
		return l.readStringToken(startPosition)
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Position: startPosition}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			tokType := token.TokenType(token.IDENT)
			if !wasAfterBlock {
				tokType = token.LookupIdent(literal)
			}
			return token.Token{Type: tokType, Literal: literal, Position: startPosition}
		} else if isDigit(l.ch) {
			return l.readNumber(startPosition, false)
		}
		// unrecognised input is skipped
		l.readChar()
		return l.nextToken()
	}

	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	}
	return newToken(t, l.ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentRune(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits and at most one '.'. A number directly after a
// '.' is a property index, so it never takes a fraction (`~m.0.1`).
func (l *Lexer) readNumber(startPosition int, negative bool) token.Token {
	start := l.position
	isFloat := false
	for {
		if isDigit(l.ch) {
			l.readChar()
		} else if l.ch == '.' && !isFloat && l.prevType != token.PERIOD && isDigit(l.peekChar()) {
			isFloat = true
			l.readChar()
		} else {
			break
		}
	}
	literal := l.input[start:l.position]
	if negative {
		literal = "-" + literal
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Position: startPosition, IsFloat: isFloat}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentRune(ch rune) bool {
	return ch == '-' || ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
