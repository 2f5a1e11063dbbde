package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT         = "IDENT"         // add, is-even, *greet
	VARIABLE      = "VARIABLE"      // ~name
	BLOCK         = "BLOCK"         // :core:
	NUMBER        = "NUMBER"        // 1343456, 3.14
	STRING        = "STRING"        // "foobar"
	INTERP_STRING = "INTERP_STRING" // "hello `~name`"

	// Operators
	PLUS      = "+"
	MINUS     = "-"
	ASTERISK  = "*"
	SLASH     = "/"
	BACKSLASH = "\\"
	PERCENT   = "%"
	LT        = "<"
	LT_EQ     = "<="
	GT        = ">"
	GT_EQ     = ">="
	EQ        = "=="
	NOT_EQ    = "!="

	// Delimiters
	PIPE     = "|"
	PERIOD   = "."
	COMMA    = ","
	COLON    = ":"
	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	IS         = "IS"
	IF         = "IF"
	ELSE       = "ELSE"
	LOOP       = "LOOP"
	FOR_EACH   = "FOR_EACH"
	BREAK_LOOP = "BREAK_LOOP"
	SAY        = "SAY"
	ASK        = "ASK"
	OPEN       = "OPEN"
	GET        = "GET"
	RUN        = "RUN"
	SCRAPE     = "SCRAPE"
	WAIT       = "WAIT"
	IN         = "IN"
	OTHERWISE  = "OTHERWISE"
	LIST       = "LIST"
	KEYS_OF    = "KEYS_OF"
	VALUES_OF  = "VALUES_OF"
	HAS_KEY    = "HAS_KEY"
	FUNCTION   = "FUNCTION"
	GIVE       = "GIVE"
	AND        = "AND"
	OR         = "OR"
	RANDOM     = "RANDOM"
	READ       = "READ"
	WRITE      = "WRITE"
	CLEAR      = "CLEAR"
	UP         = "UP"
	DOWN       = "DOWN"
	ATTEMPT    = "ATTEMPT"
	RESCUE     = "RESCUE"
	TRUE       = "TRUE"
	FALSE      = "FALSE"
)

// PartKind distinguishes the segments of an interpolated string.
type PartKind int

const (
	TextPart PartKind = iota
	VariablePart
	PathPart
)

// Part is one segment of an interpolated string. For a PathPart, Path holds
// the variable name followed by the property names (`~user.address.city`).
type Part struct {
	Kind PartKind
	Text string
	Path []string
}

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token

	IsFloat bool   // NUMBER only: a '.' appeared in the literal
	Parts   []Part // INTERP_STRING only
}

// End returns the src index just past the token's literal text.
func (t Token) End() int {
	switch t.Type {
	case VARIABLE:
		return t.Position + len(t.Literal) + 1
	case BLOCK:
		return t.Position + len(t.Literal) + 2
	default:
		return t.Position + len(t.Literal)
	}
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,

	// bindings
	"is":   IS,
	"up":   UP,
	"down": DOWN,

	// flow control
	"if":         IF,
	"else":       ELSE,
	"otherwise":  OTHERWISE,
	"loop":       LOOP,
	"for-each":   FOR_EACH,
	"in":         IN,
	"break-loop": BREAK_LOOP,
	"function":   FUNCTION,
	"give":       GIVE,
	"attempt":    ATTEMPT,
	"rescue":     RESCUE,

	// logic
	"and": AND,
	"or":  OR,

	// built in actions
	"say":       SAY,
	"ask":       ASK,
	"open":      OPEN,
	"get":       GET,
	"run":       RUN,
	"scrape":    SCRAPE,
	"wait":      WAIT,
	"list":      LIST,
	"keys-of":   KEYS_OF,
	"values-of": VALUES_OF,
	"has-key":   HAS_KEY,
	"random":    RANDOM,
	"read":      READ,
	"write":     WRITE,
	"clear":     CLEAR,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
