package kaleido

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type stateFunc func(l *Lexer) stateFunc

const EOF rune = -1

type Tokenizer interface {
	Get() Token
	GetFilename() string
}

// Lexer is a pull-driven state machine: Get runs states until one of them
// emits a token.
type Lexer struct {
	filename string
	reader   *bufio.Reader
	state    stateFunc
	pending  []Token

	line  int
	col   int
	start Location
	err   error
}

func NewLexer(reader io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(reader),
		state:  defaultState,
		line:   1,
		col:    1,
	}
}

func NewLexerFromFile(filename string) (*Lexer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}

	l := NewLexer(bytes.NewReader(data))
	l.filename = filename

	return l, nil
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

func (l *Lexer) Get() Token {
	for len(l.pending) == 0 {
		if l.state == nil {
			// Keep answering EOF once the input is exhausted
			return Token{Typ: TokenEOF, Loc: l.here()}
		}

		l.state = l.state(l)
	}

	tok := l.pending[0]
	l.pending = l.pending[1:]

	return tok
}

// RunBlocking scans the whole input. EOF is not included in the result.
func (l *Lexer) RunBlocking() ([]Token, error) {
	var tokens []Token
	for {
		t := l.Get()
		switch t.Typ {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, errors.New(t.Value)
		}

		tokens = append(tokens, t)
	}
}

func defaultState(l *Lexer) stateFunc {
	for {
		l.mark()

		switch r := l.peek(); {
		case r == EOF && l.err != nil:
			l.errorf("reading input: %v", l.err)
			return nil
		case r == EOF:
			l.emit(TokenEOF, "")
			return nil
		case r == utf8.RuneError:
			l.next()
			return l.errorf("invalid utf-8 encoding")
		case unicode.IsSpace(r):
			l.next()
			continue
		case r == '#':
			return lineCommentState
		case isDigit(r) || r == '.':
			return numberState
		case isLetter(r):
			return identifierState
		default:
			return charState
		}
	}
}

func numberState(l *Lexer) stateFunc {
	var num strings.Builder
	for r := l.peek(); isDigit(r) || r == '.'; r = l.peek() {
		num.WriteRune(l.next())
	}

	lexeme := num.String()
	l.pending = append(l.pending, Token{
		Typ:   TokenNumber,
		Value: lexeme,
		Num:   parseNumber(lexeme),
		Loc:   l.startLoc(),
	})

	return defaultState
}

// parseNumber converts the longest prefix of lexeme that is a valid float,
// so "1.2.3" reads as 1.2 and a lone "." as 0.
func parseNumber(lexeme string) float64 {
	for i := len(lexeme); i > 0; i-- {
		if v, err := strconv.ParseFloat(lexeme[:i], 64); err == nil {
			return v
		}
	}

	return 0
}

func identifierState(l *Lexer) stateFunc {
	var id strings.Builder
	for r := l.peek(); isLetter(r) || isDigit(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	if t, ok := keywordTable[id.String()]; ok {
		return l.emit(t, id.String())
	}

	return l.emit(TokenIdentifier, id.String())
}

func lineCommentState(l *Lexer) stateFunc {
	for r := l.peek(); r != '\n' && r != '\r' && r != EOF; r = l.peek() {
		l.next()
	}

	return defaultState
}

func charState(l *Lexer) stateFunc {
	return l.emit(TokenChar, string(l.next()))
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	return l.emit(TokenError, fmt.Sprintf(format, args...))
}

func (l *Lexer) emit(t TokenType, val string) stateFunc {
	l.pending = append(l.pending, Token{
		Typ:   t,
		Value: val,
		Loc:   l.startLoc(),
	})

	return defaultState
}

func (l *Lexer) mark() {
	l.start = Location{Filename: l.filename, Line: l.line, Col: l.col}
}

func (l *Lexer) startLoc() *Location {
	loc := l.start
	return &loc
}

func (l *Lexer) here() *Location {
	return &Location{Filename: l.filename, Line: l.line, Col: l.col}
}

func (l *Lexer) peek() rune {
	r := l.read()
	if r != EOF {
		// Cannot fail right after a successful ReadRune
		_ = l.reader.UnreadRune()
	}

	return r
}

func (l *Lexer) next() rune {
	r := l.read()
	if r == '\n' {
		l.line++
		l.col = 1
	} else if r != EOF {
		l.col++
	}

	return r
}

func (l *Lexer) read() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}

		return EOF
	}

	return r
}

// Identifiers are ASCII only; other letters lex as single characters.
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
