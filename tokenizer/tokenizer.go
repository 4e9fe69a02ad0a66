// Package tokenizer turns character input into the ordered token sequence
// that simpleparser and pql consume. Both callers share one scanning core
// (scan), with the same operator set and the same shared keyword table
// (token.Lookup); the two constructors differ only in their Options.
package tokenizer

import (
	"fmt"

	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/token"
)

// Options configures scanning behavior.
type Options struct {
	// AllowLeadingZeroes permits numeric literals like "007". Default false.
	AllowLeadingZeroes bool
	// ConsumeWhitespace skips spaces/tabs/newlines between tokens. Default true.
	ConsumeWhitespace bool
}

// DefaultOptions returns disallow-leading-zeroes, consume-whitespace scanning.
func DefaultOptions() Options {
	return Options{AllowLeadingZeroes: false, ConsumeWhitespace: true}
}

// Tokenizer scans SIMPLE source or PQL query text into token.Item values.
type Tokenizer struct {
	input   string
	start   int
	pos     int
	line    int
	linePos int
	opts    Options

	peeked    bool
	peekItem  token.Item
	peekErr   error
}

// NewSimple creates a Tokenizer for SIMPLE source text.
func NewSimple(src string, opts Options) *Tokenizer {
	return newTokenizer(src, opts)
}

// NewPQL creates a Tokenizer for PQL query text. PQL has no leading-zero
// restriction on its INTEGER stmtRefs, so leading zeroes are always allowed,
// unlike DefaultOptions.
func NewPQL(src string) *Tokenizer {
	return newTokenizer(src, Options{AllowLeadingZeroes: true, ConsumeWhitespace: true})
}

func newTokenizer(src string, opts Options) *Tokenizer {
	return &Tokenizer{input: src, line: 1, opts: opts}
}

// Next consumes and returns the next token.
func (t *Tokenizer) Next() (token.Item, error) {
	if t.peeked {
		t.peeked = false
		return t.peekItem, t.peekErr
	}
	return t.scan()
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (token.Item, error) {
	if !t.peeked {
		t.peekItem, t.peekErr = t.scan()
		t.peeked = true
	}
	return t.peekItem, t.peekErr
}

func (t *Tokenizer) scan() (token.Item, error) {
	if t.opts.ConsumeWhitespace {
		t.skipWhitespace()
	}
	t.start = t.pos

	if t.pos >= len(t.input) {
		return t.item(token.EOF, ""), nil
	}

	ch := t.input[t.pos]
	switch ch {
	case '(':
		t.pos++
		return t.item(token.LPAREN, "("), nil
	case ')':
		t.pos++
		return t.item(token.RPAREN, ")"), nil
	case '{':
		t.pos++
		return t.item(token.LBRACE, "{"), nil
	case '}':
		t.pos++
		return t.item(token.RBRACE, "}"), nil
	case ';':
		t.pos++
		return t.item(token.SEMICOLON, ";"), nil
	case ',':
		t.pos++
		return t.item(token.COMMA, ","), nil
	case '_':
		t.pos++
		return t.item(token.UNDERSCORE, "_"), nil
	case '"':
		return t.scanQuoted()
	case '.':
		t.pos++
		return t.item(token.DOT, "."), nil
	case '#':
		t.pos++
		return t.item(token.HASH, "#"), nil
	case '+':
		t.pos++
		return t.item(token.PLUS, "+"), nil
	case '-':
		t.pos++
		return t.item(token.MINUS, "-"), nil
	case '*':
		t.pos++
		return t.item(token.ASTERISK, "*"), nil
	case '/':
		t.pos++
		return t.item(token.SLASH, "/"), nil
	case '%':
		t.pos++
		return t.item(token.PERCENT, "%"), nil
	case '=':
		return t.scanTwoOrOne('=', token.EQ, "==", token.ASSIGN, "="), nil
	case '<':
		return t.scanTwoOrOne('=', token.LTE, "<=", token.LT, "<"), nil
	case '>':
		return t.scanTwoOrOne('=', token.GTE, ">=", token.GT, ">"), nil
	case '!':
		return t.scanBang()
	case '&':
		return t.scanDoubled('&', token.AND, "&&")
	case '|':
		return t.scanDoubled('|', token.OR, "||")
	}

	if isIdentStart(ch) {
		return t.scanIdent(), nil
	}
	if isDigit(ch) {
		return t.scanNumber()
	}

	t.pos++
	return t.item(token.ILLEGAL, string(ch)), spaerr.NewTokenizationError(
		t.line, fmt.Sprintf("illegal character %q", ch))
}

func (t *Tokenizer) item(typ token.Token, val string) token.Item {
	return token.Item{
		Type:  typ,
		Value: val,
		Pos: token.Pos{
			Offset: t.start,
			Line:   t.line,
			Column: t.start - t.linePos + 1,
		},
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case ' ', '\t', '\r':
			t.pos++
		case '\n':
			t.pos++
			t.line++
			t.linePos = t.pos
		default:
			return
		}
	}
}

func (t *Tokenizer) scanTwoOrOne(second byte, twoTok token.Token, twoVal string, oneTok token.Token, oneVal string) token.Item {
	t.pos++
	if t.pos < len(t.input) && t.input[t.pos] == second {
		t.pos++
		return t.item(twoTok, twoVal)
	}
	return t.item(oneTok, oneVal)
}

func (t *Tokenizer) scanDoubled(ch byte, tok token.Token, val string) (token.Item, error) {
	t.pos++
	if t.pos < len(t.input) && t.input[t.pos] == ch {
		t.pos++
		return t.item(tok, val), nil
	}
	t.pos++
	return t.item(token.ILLEGAL, string(ch)), spaerr.NewTokenizationError(
		t.line, fmt.Sprintf("unexpected lone %q, expected %q", ch, val))
}

func (t *Tokenizer) scanBang() (token.Item, error) {
	t.pos++
	if t.pos < len(t.input) && t.input[t.pos] == '=' {
		t.pos++
		return t.item(token.NEQ, "!="), nil
	}
	return t.item(token.NOT, "!"), nil
}

func (t *Tokenizer) scanIdent() token.Item {
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	val := t.input[t.start:t.pos]
	if tok, ok := token.Lookup(val); ok {
		return t.item(tok, val)
	}
	return t.item(token.IDENT, val)
}

func (t *Tokenizer) scanNumber() (token.Item, error) {
	for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
		t.pos++
	}
	val := t.input[t.start:t.pos]
	if !t.opts.AllowLeadingZeroes && len(val) > 1 && val[0] == '0' {
		return t.item(token.NUMBER, val), spaerr.NewTokenizationError(
			t.line, fmt.Sprintf("numeric literal %q has a leading zero", val))
	}
	return t.item(token.NUMBER, val), nil
}

func (t *Tokenizer) scanQuoted() (token.Item, error) {
	t.pos++ // opening quote
	contentStart := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '"' {
		if t.input[t.pos] == '\n' {
			t.line++
			t.linePos = t.pos + 1
		}
		t.pos++
	}
	if t.pos >= len(t.input) {
		return t.item(token.ILLEGAL, t.input[t.start:t.pos]), spaerr.NewTokenizationError(
			t.line, "unterminated quoted string")
	}
	val := t.input[contentStart:t.pos]
	t.pos++ // closing quote
	return t.item(token.STRING, val), nil
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
