package tokenizer

import (
	"testing"

	"github.com/darienchong/spa/token"
)

func scanAll(t *testing.T, tz *Tokenizer) ([]token.Item, error) {
	t.Helper()
	var items []token.Item
	for {
		it, err := tz.Next()
		if err != nil {
			return items, err
		}
		items = append(items, it)
		if it.Type == token.EOF {
			return items, nil
		}
	}
}

func TestSimpleBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{
			input:    "procedure p { x = 1; }",
			expected: []token.Token{token.PROCEDURE, token.IDENT, token.LBRACE, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON, token.RBRACE, token.EOF},
		},
		{
			input:    "while (x == 0) { call q; }",
			expected: []token.Token{token.WHILE, token.LPAREN, token.IDENT, token.EQ, token.NUMBER, token.RPAREN, token.LBRACE, token.CALL, token.IDENT, token.SEMICOLON, token.RBRACE, token.EOF},
		},
		{
			input:    "if (a != b) then { print a; } else { read a; }",
			expected: []token.Token{token.IF, token.LPAREN, token.IDENT, token.NEQ, token.IDENT, token.RPAREN, token.THEN, token.LBRACE, token.PRINT, token.IDENT, token.SEMICOLON, token.RBRACE, token.ELSE, token.LBRACE, token.READ, token.IDENT, token.SEMICOLON, token.RBRACE, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			items, err := scanAll(t, NewSimple(tt.input, DefaultOptions()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d", len(items), len(tt.expected))
			}
			for i, want := range tt.expected {
				if items[i].Type != want {
					t.Errorf("token %d: got %v, want %v", i, items[i].Type, want)
				}
			}
		})
	}
}

func TestSimpleLeadingZeroRejected(t *testing.T) {
	_, err := scanAll(t, NewSimple("x = 007;", DefaultOptions()))
	if err == nil {
		t.Fatal("expected leading-zero error")
	}
}

func TestSimpleLeadingZeroAllowedWhenConfigured(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowLeadingZeroes = true
	_, err := scanAll(t, NewSimple("x = 007;", opts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoneAmpersandIsIllegal(t *testing.T) {
	_, err := scanAll(t, NewSimple("if (a & b)", DefaultOptions()))
	if err == nil {
		t.Fatal("expected error for lone &")
	}
}

func TestQuotedStringForPQL(t *testing.T) {
	items, err := scanAll(t, NewPQL(`variable v; Select v such that Uses(1, "count")`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawString bool
	for _, it := range items {
		if it.Type == token.STRING && it.Value == "count" {
			sawString = true
		}
	}
	if !sawString {
		t.Fatal("expected to scan quoted string \"count\"")
	}
}

func TestPQLAllowsLeadingZero(t *testing.T) {
	items, err := scanAll(t, NewPQL(`Select s such that Follows(01, s)`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, it := range items {
		if it.Type == token.NUMBER && it.Value == "01" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected NUMBER token \"01\"")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	tz := NewSimple("x = 1;", DefaultOptions())
	first, _ := tz.Peek()
	second, _ := tz.Peek()
	if first != second {
		t.Fatalf("peek is not idempotent: %v != %v", first, second)
	}
	third, _ := tz.Next()
	if third != first {
		t.Fatalf("next after peek returned different token: %v != %v", third, first)
	}
}
