package simpleparser

import (
	"strings"

	"github.com/darienchong/spa/token"
)

// stream is the minimal token cursor shared by the live parser (reading
// straight off the tokenizer) and condParser (reading a pre-buffered slice
// bounded by a matched pair of parens). Factoring the shunting-yard
// algorithm over this interface lets both callers share one implementation
// instead of duplicating it.
type stream interface {
	current() token.Item
	next()
}

// Operator precedence levels for SIMPLE's arithmetic expressions, in the
// same "higher binds tighter" style as a conventional shunting-yard table.
const (
	exprPrecLowest = 0
	exprPrecAdd    = 1 // + -
	exprPrecMul    = 2 // * / %
)

func exprPrec(t token.Token) int {
	switch t {
	case token.PLUS, token.MINUS:
		return exprPrecAdd
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return exprPrecMul
	default:
		return exprPrecLowest
	}
}

func isExprOp(t token.Token) bool {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT:
		return true
	default:
		return false
	}
}

func opSymbol(t token.Token) string {
	switch t {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.ASTERISK:
		return "*"
	case token.SLASH:
		return "/"
	case token.PERCENT:
		return "%"
	default:
		return "?"
	}
}

// parseExprValue runs the shunting-yard algorithm over s until it reaches a
// token that cannot extend the expression (a statement terminator, an
// unmatched closing paren, a relational operator, EOF, ...), producing the
// postfix token string plus the distinct variable and constant leaves it
// referenced, in first-seen order.
func parseExprValue(s stream) (postfix string, vars []string, consts []string, err error) {
	var output []string
	var ops []token.Token
	depth := 0
	seenVar := map[string]bool{}
	seenConst := map[string]bool{}

	expectOperand := true
exprLoop:
	for {
		cur := s.current()
		switch {
		case cur.Type == token.LPAREN:
			if !expectOperand {
				break exprLoop
			}
			ops = append(ops, token.LPAREN)
			depth++
			s.next()
		case cur.Type == token.RPAREN:
			if depth == 0 || expectOperand {
				break exprLoop
			}
			depth--
			for len(ops) > 0 && ops[len(ops)-1] != token.LPAREN {
				output = append(output, opSymbol(ops[len(ops)-1]))
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return "", nil, nil, newSyntaxErr(cur, "unmatched )")
			}
			ops = ops[:len(ops)-1]
			s.next()
		case cur.Type == token.IDENT:
			if !expectOperand {
				break exprLoop
			}
			output = append(output, cur.Value)
			if !seenVar[cur.Value] {
				seenVar[cur.Value] = true
				vars = append(vars, cur.Value)
			}
			expectOperand = false
			s.next()
		case cur.Type == token.NUMBER:
			if !expectOperand {
				break exprLoop
			}
			output = append(output, cur.Value)
			if !seenConst[cur.Value] {
				seenConst[cur.Value] = true
				consts = append(consts, cur.Value)
			}
			expectOperand = false
			s.next()
		case isExprOp(cur.Type) && !expectOperand:
			for len(ops) > 0 && ops[len(ops)-1] != token.LPAREN && exprPrec(ops[len(ops)-1]) >= exprPrec(cur.Type) {
				output = append(output, opSymbol(ops[len(ops)-1]))
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, cur.Type)
			expectOperand = true
			s.next()
		default:
			break exprLoop
		}
	}

	if expectOperand {
		return "", nil, nil, newSyntaxErr(s.current(), "expected an operand")
	}
	if depth != 0 {
		return "", nil, nil, newSyntaxErr(s.current(), "unbalanced parentheses in expression")
	}
	for len(ops) > 0 {
		output = append(output, opSymbol(ops[len(ops)-1]))
		ops = ops[:len(ops)-1]
	}
	return strings.Join(output, " "), vars, consts, nil
}

func isRelOp(t token.Token) bool {
	switch t {
	case token.LT, token.GT, token.LTE, token.GTE, token.EQ, token.NEQ:
		return true
	default:
		return false
	}
}

func union(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// condParser re-parses a pre-buffered, paren-matched token slice for one
// SIMPLE cond_expr. Buffering the slice up front (rather than streaming
// straight off the tokenizer) lets it backtrack freely when deciding
// whether a leading '(' opens a boolean combination or an arithmetic
// rel_factor, which the grammar cannot distinguish with one token of
// lookahead.
type condParser struct {
	toks []token.Item
	pos  int
}

func (c *condParser) current() token.Item {
	if c.pos < len(c.toks) {
		return c.toks[c.pos]
	}
	return token.Item{Type: token.EOF}
}

func (c *condParser) next() { c.pos++ }

func (c *condParser) expect(t token.Token) error {
	if c.current().Type != t {
		return newSyntaxErr(c.current(), "expected "+t.String())
	}
	c.next()
	return nil
}

// parseCond parses a full cond_expr and returns the variables it mentions.
func (c *condParser) parseCond() ([]string, error) {
	if c.current().Type == token.NOT {
		c.next()
		if err := c.expect(token.LPAREN); err != nil {
			return nil, err
		}
		vars, err := c.parseCond()
		if err != nil {
			return nil, err
		}
		if err := c.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return vars, nil
	}

	if c.current().Type == token.LPAREN {
		save := c.pos
		c.next()
		if vars, err := c.parseCond(); err == nil && c.current().Type == token.RPAREN {
			after := c.pos + 1
			if after < len(c.toks) && (c.toks[after].Type == token.AND || c.toks[after].Type == token.OR) {
				c.pos = after + 1
				if err := c.expect(token.LPAREN); err != nil {
					return nil, err
				}
				rightVars, err := c.parseCond()
				if err != nil {
					return nil, err
				}
				if err := c.expect(token.RPAREN); err != nil {
					return nil, err
				}
				return union(vars, rightVars), nil
			}
		}
		c.pos = save
	}

	return c.parseRelExpr()
}

func (c *condParser) parseRelExpr() ([]string, error) {
	_, leftVars, _, err := parseExprValue(c)
	if err != nil {
		return nil, err
	}
	if !isRelOp(c.current().Type) {
		return nil, newSyntaxErr(c.current(), "expected a relational operator")
	}
	c.next()
	_, rightVars, _, err := parseExprValue(c)
	if err != nil {
		return nil, err
	}
	return union(leftVars, rightVars), nil
}
