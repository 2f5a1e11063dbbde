package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"tails/internal/evaluator"
	"tails/internal/object"
	"tails/internal/parser"
	"tails/internal/util"
	"unicode"

	"github.com/peterh/liner"
)

const (
	PROMPT          = ">> "
	CONTINUE_PROMPT = ".. "
)

var historyPath = ""

// SetHistoryPath sets the file line history is loaded from and saved to.
// An empty path disables history.
func SetHistoryPath(path string) {
	historyPath = path
}

// Start runs the read-eval-print loop until end of input or `exit`. Every
// entry is evaluated against ev, so variables and functions carry over.
func Start(ev *evaluator.Evaluator, in io.Reader, out io.Writer) {
	s := &session{ev: ev, out: out}
	if f, ok := in.(*os.File); ok && isTerminal(f) && liner.TerminalSupported() {
		s.runLiner()
		return
	}
	s.runScanner(in)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

type session struct {
	ev   *evaluator.Evaluator
	out  io.Writer
	buf  strings.Builder
	held bool
}

func (s *session) prompt() string {
	if s.buf.Len() > 0 {
		return CONTINUE_PROMPT
	}
	return PROMPT
}

func (s *session) runScanner(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			s.flush()
			return
		}
		if !s.feed(scanner.Text()) {
			return
		}
	}
}

func (s *session) runLiner() {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(historyPath)
			if err != nil {
				slog.Warn("could not save repl history", slog.String("path", historyPath), slog.Any("error", err))
				return
			}
			_, _ = ln.WriteHistory(f)
			f.Close()
		}()
	}

	for {
		line, err := ln.Prompt(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			s.buf.Reset()
			s.held = false
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Error("repl input failed", slog.Any("error", err))
			}
			s.flush()
			return
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if !s.feed(line) {
			return
		}
	}
}

// feed adds a line to the pending input and evaluates it once every
// bracket is closed. A finished if or attempt block is held back until the
// next line shows whether an else or rescue follows. It returns false when
// the user typed exit.
func (s *session) feed(line string) bool {
	if s.held {
		s.held = false
		if !continuesBlock(line) {
			s.flush()
		}
	}
	if s.buf.Len() == 0 && strings.TrimSpace(line) == "exit" {
		return false
	}
	if s.buf.Len() > 0 {
		s.buf.WriteByte('\n')
	}
	s.buf.WriteString(line)
	if Depth(s.buf.String()) > 0 {
		return true
	}
	if opensBlock(s.buf.String()) {
		s.held = true
		return true
	}
	s.flush()
	return true
}

// opensBlock reports whether src starts a statement that may take an else
// or rescue clause on a later line.
func opensBlock(src string) bool {
	switch firstWord(src) {
	case "if", "attempt":
		return true
	}
	return false
}

// continuesBlock reports whether line is the else or rescue clause of a
// held block.
func continuesBlock(line string) bool {
	switch firstWord(line) {
	case "else", "otherwise", "rescue":
		return true
	}
	return false
}

func firstWord(src string) string {
	fields := strings.FieldsFunc(src, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("([{", r)
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (s *session) flush() {
	src := s.buf.String()
	s.buf.Reset()
	s.held = false
	if strings.TrimSpace(src) == "" {
		return
	}
	s.eval(src)
}

func (s *session) eval(src string) {
	program, err := parser.Parse(src, s.ev)
	if err != nil {
		printParserError(s.out, src, err)
		return
	}
	result, err := s.ev.EvalProgram(program)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %s\n", err)
		return
	}
	if result == nil {
		return
	}
	if _, isNull := result.(*object.Null); isNull {
		return
	}
	io.WriteString(s.out, result.Inspect())
	io.WriteString(s.out, "\n")
}

// complete offers builtin and user function names for the word under the
// cursor.
func (s *session) complete(line string) []string {
	start := strings.LastIndexAny(line, " \t([{,|") + 1
	prefix := line[start:]
	if prefix == "" || strings.HasPrefix(prefix, "~") {
		return nil
	}
	var names []string
	if r := s.ev.Registry(); r != nil {
		names = append(names, r.Names()...)
	}
	names = append(names, s.ev.FunctionNames()...)
	sort.Strings(names)

	var out []string
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

func printParserError(out io.Writer, src string, err error) {
	var perr *parser.Error
	if !errors.As(err, &perr) {
		fmt.Fprintf(out, "Parse error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "Parse error: %s\n", perr.Message)
	if lines := util.GetContextLines(src, perr.Line, perr.Column); lines != "" {
		io.WriteString(out, lines)
		io.WriteString(out, "\n")
	}
}

// Depth reports how many parentheses, braces and brackets are still open in
// src. Brackets inside strings and comments do not count.
func Depth(src string) int {
	depth := 0
	var quote rune
	escaped := false
	comment := false
	for _, r := range src {
		switch {
		case comment:
			if r == '\n' {
				comment = false
			}
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '"':
			quote = r
		case r == '#':
			comment = true
		case r == '(' || r == '{' || r == '[':
			depth++
		case r == ')' || r == '}' || r == ']':
			depth--
		}
	}
	return depth
}
