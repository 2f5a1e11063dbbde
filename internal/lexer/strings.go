package lexer

import (
	"strings"
	"tails/internal/token"
)

// readStringToken lexes a quoted string. Strings holding a backtick before
// their closing quote become INTERP_STRING tokens.
func (l *Lexer) readStringToken(startPosition int) token.Token {
	if l.hasBacktick() {
		parts := l.readInterpolatedString()
		return token.Token{Type: token.INTERP_STRING, Literal: renderParts(parts), Position: startPosition, Parts: parts}
	}
	return token.Token{Type: token.STRING, Literal: l.readString(), Position: startPosition}
}

// hasBacktick scans ahead from the opening quote without consuming input.
func (l *Lexer) hasBacktick() bool {
	quote := l.ch
	escaped := false
	for _, r := range l.input[l.readPosition:] {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == quote:
			return false
		case r == '`':
			return true
		}
	}
	return false
}

func (l *Lexer) readString() string {
	quote := l.ch
	l.readChar()

	var out strings.Builder
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.readEscape(&out)
			continue
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
	return out.String()
}

func (l *Lexer) readInterpolatedString() []token.Part {
	quote := l.ch
	l.readChar()

	var parts []token.Part
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, token.Part{Kind: token.TextPart, Text: text.String()})
			text.Reset()
		}
	}

	for l.ch != 0 && l.ch != quote {
		switch l.ch {
		case '`':
			flush()
			l.readChar()
			if l.ch == '~' {
				l.readChar()
				path := []string{l.readIdentifier()}
				for l.ch == '.' {
					l.readChar()
					path = append(path, l.readIdentifier())
				}
				if len(path) == 1 {
					parts = append(parts, token.Part{Kind: token.VariablePart, Text: path[0]})
				} else {
					parts = append(parts, token.Part{Kind: token.PathPart, Text: strings.Join(path, "."), Path: path})
				}
				if l.ch == '`' {
					l.readChar()
				}
				continue
			}
			// no variable: the segment is plain text
			for l.ch != 0 && l.ch != '`' && l.ch != quote {
				text.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == '`' {
				l.readChar()
			}
		case '\\':
			l.readEscape(&text)
		default:
			text.WriteRune(l.ch)
			l.readChar()
		}
	}
	if l.ch == quote {
		l.readChar()
	}
	flush()
	return parts
}

// readEscape consumes a backslash sequence. Unknown escapes keep the backslash.
func (l *Lexer) readEscape(out *strings.Builder) {
	l.readChar()
	switch l.ch {
	case 'n':
		out.WriteRune('\n')
	case 't':
		out.WriteRune('\t')
	case 'r':
		out.WriteRune('\r')
	case '\\':
		out.WriteRune('\\')
	case '"':
		out.WriteRune('"')
	case '\'':
		out.WriteRune('\'')
	case 0:
		out.WriteRune('\\')
		return
	default:
		out.WriteRune('\\')
		out.WriteRune(l.ch)
	}
	l.readChar()
}

func renderParts(parts []token.Part) string {
	var out strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case token.TextPart:
			out.WriteString(p.Text)
		default:
			out.WriteString("`~" + p.Text + "`")
		}
	}
	return out.String()
}
