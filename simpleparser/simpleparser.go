// Package simpleparser provides a recursive descent parser for SIMPLE
// source programs. It first builds an ast.Program and then, in a second walk
// over that tree, emits the direct facts (statement kinds, Follows, Parent,
// control-flow edges) into a pkb.PKB; extractor.Run takes over from there to
// compute every derived relation.
package simpleparser

import (
	"fmt"

	"github.com/darienchong/spa/ast"
	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/token"
	"github.com/darienchong/spa/tokenizer"
)

// Parser is a recursive descent parser over a SIMPLE source program.
type Parser struct {
	tz     *tokenizer.Tokenizer
	errors []error
	cur    token.Item

	nextStmtNum int
	procNames   map[string]bool
}

// New creates a parser for the given SIMPLE source.
func New(src string) *Parser {
	p := &Parser{
		tz:          tokenizer.NewSimple(src, tokenizer.DefaultOptions()),
		nextStmtNum: 1,
		procNames:   make(map[string]bool),
	}
	p.advance()
	return p
}

// current/next satisfy the stream interface shared with condParser.
func (p *Parser) current() token.Item { return p.cur }
func (p *Parser) next()               { p.advance() }

func (p *Parser) advance() {
	item, err := p.tz.Next()
	if err != nil {
		p.errors = append(p.errors, err)
		p.cur = token.Item{Type: token.EOF}
		return
	}
	p.cur = item
}

func (p *Parser) curIs(t token.Token) bool { return p.cur.Type == t }

func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errors = append(p.errors, newSyntaxErr(p.cur, fmt.Sprintf("expected %s, got %s", t, p.cur.Type)))
	return false
}

func newSyntaxErr(item token.Item, msg string) error {
	return spaerr.NewParseSyntaxError(item.Pos.Line, msg)
}

// Parse parses an entire SIMPLE program: one or more procedures, then
// wires the derived Follows/Parent/control-flow facts into a fresh PKB.
func (p *Parser) Parse() (*ast.Program, *pkb.PKB, error) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) && len(p.errors) == 0 {
		proc := p.parseProcedure()
		if proc == nil {
			break
		}
		prog.Procedures = append(prog.Procedures, proc)
	}
	if len(p.errors) > 0 {
		return nil, nil, p.errors[0]
	}
	if len(prog.Procedures) == 0 {
		return nil, nil, spaerr.NewParseSyntaxError(p.cur.Pos.Line, "a program must declare at least one procedure")
	}

	kb := pkb.New(p.nextStmtNum - 1)
	for _, proc := range prog.Procedures {
		if err := kb.AddProcedure(proc.Name); err != nil {
			return nil, nil, err
		}
	}
	for _, proc := range prog.Procedures {
		if err := wireBlock(kb, proc.Name, proc.Body, 0); err != nil {
			return nil, nil, err
		}
	}
	return prog, kb, nil
}

func (p *Parser) parseProcedure() *ast.Procedure {
	start := p.cur.Pos
	if !p.expect(token.PROCEDURE) {
		return nil
	}
	if !p.curIs(token.IDENT) {
		p.errors = append(p.errors, newSyntaxErr(p.cur, "expected a procedure name"))
		return nil
	}
	name := p.cur.Value
	if p.procNames[name] {
		p.errors = append(p.errors, spaerr.NewDesignSemanticError("duplicate procedure declaration: "+name))
		return nil
	}
	p.procNames[name] = true
	p.advance()

	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseStmtLst()
	if body == nil {
		return nil
	}
	end := p.cur.Pos
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.Procedure{StartPos: start, EndPos: end, Name: name, Body: body}
}

// parseStmtLst parses a non-empty sequence of statements.
func (p *Parser) parseStmtLst() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		s := p.parseStmt()
		if s == nil {
			return nil
		}
		stmts = append(stmts, s)
		if p.curIs(token.RBRACE) || p.curIs(token.EOF) || len(p.errors) > 0 {
			break
		}
	}
	if len(stmts) == 0 {
		p.errors = append(p.errors, newSyntaxErr(p.cur, "a statement list must not be empty"))
		return nil
	}
	return stmts
}

func (p *Parser) allocStmt() int {
	n := p.nextStmtNum
	p.nextStmtNum++
	return n
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case token.READ:
		return p.parseRead()
	case token.PRINT:
		return p.parsePrint()
	case token.CALL:
		return p.parseCall()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.IDENT:
		return p.parseAssign()
	default:
		p.errors = append(p.errors, newSyntaxErr(p.cur, "expected a statement"))
		return nil
	}
}

func (p *Parser) parseRead() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	p.advance() // 'read'
	if !p.curIs(token.IDENT) {
		p.errors = append(p.errors, newSyntaxErr(p.cur, "expected a variable name"))
		return nil
	}
	v := p.cur.Value
	p.advance()
	end := p.cur.Pos
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.ReadStmt{StartPos: start, EndPos: end, Num: num, Var: v}
}

func (p *Parser) parsePrint() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	p.advance() // 'print'
	if !p.curIs(token.IDENT) {
		p.errors = append(p.errors, newSyntaxErr(p.cur, "expected a variable name"))
		return nil
	}
	v := p.cur.Value
	p.advance()
	end := p.cur.Pos
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.PrintStmt{StartPos: start, EndPos: end, Num: num, Var: v}
}

func (p *Parser) parseCall() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	p.advance() // 'call'
	if !p.curIs(token.IDENT) {
		p.errors = append(p.errors, newSyntaxErr(p.cur, "expected a procedure name"))
		return nil
	}
	proc := p.cur.Value
	p.advance()
	end := p.cur.Pos
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.CallStmt{StartPos: start, EndPos: end, Num: num, Proc: proc}
}

func (p *Parser) parseAssign() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	lhs := p.cur.Value
	p.advance()
	if !p.expect(token.ASSIGN) {
		return nil
	}
	postfix, vars, consts, err := parseExprValue(p)
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	end := p.cur.Pos
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.AssignStmt{StartPos: start, EndPos: end, Num: num, LHS: lhs, Postfix: postfix, Vars: vars, Consts: consts}
}

// parseCondBuffered consumes the matching '(' ... ')' of an if/while
// condition, buffers its contents and runs condParser over them.
func (p *Parser) parseCondBuffered() ([]string, error) {
	if !p.expect(token.LPAREN) {
		return nil, p.errors[len(p.errors)-1]
	}
	depth := 1
	var toks []token.Item
	for {
		if p.curIs(token.EOF) {
			return nil, newSyntaxErr(p.cur, "unterminated condition")
		}
		if p.curIs(token.LPAREN) {
			depth++
		}
		if p.curIs(token.RPAREN) {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		toks = append(toks, p.cur)
		p.advance()
	}
	cp := &condParser{toks: toks}
	vars, err := cp.parseCond()
	if err != nil {
		return nil, err
	}
	if cp.pos != len(cp.toks) {
		return nil, spaerr.NewParseSyntaxError(p.cur.Pos.Line, "trailing tokens in condition")
	}
	return vars, nil
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	p.advance() // 'if'
	condVars, err := p.parseCondBuffered()
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	if !p.expect(token.THEN) {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	thenBody := p.parseStmtLst()
	if thenBody == nil {
		return nil
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	if !p.expect(token.ELSE) {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	elseBody := p.parseStmtLst()
	if elseBody == nil {
		return nil
	}
	end := p.cur.Pos
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.IfStmt{StartPos: start, EndPos: end, Num: num, CondVars: condVars, Then: thenBody, Else: elseBody}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.cur.Pos
	num := p.allocStmt()
	p.advance() // 'while'
	condVars, err := p.parseCondBuffered()
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseStmtLst()
	if body == nil {
		return nil
	}
	end := p.cur.Pos
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.WhileStmt{StartPos: start, EndPos: end, Num: num, CondVars: condVars, Body: body}
}

// ExprToPostfix converts a raw arithmetic expression (as it appears inside a
// PQL pattern clause's quoted expr-spec, e.g. `"x + y * 2"`) into the same
// postfix form AddAssign stores, reusing the statement parser's own
// shunting-yard so pattern matching compares like with like.
func ExprToPostfix(src string) (string, error) {
	p := &Parser{tz: tokenizer.NewSimple(src, tokenizer.DefaultOptions())}
	p.advance()
	postfix, _, _, err := parseExprValue(p)
	if err != nil {
		return "", err
	}
	if len(p.errors) > 0 {
		return "", p.errors[0]
	}
	if !p.curIs(token.EOF) {
		return "", newSyntaxErr(p.cur, "trailing tokens in expr-spec")
	}
	return postfix, nil
}

// wireBlock emits Follows facts between direct siblings of list and,
// through wireStmt, the control-flow edges that connect each statement's
// exit point(s) to whatever comes "after" the list (0 means nothing
// follows, i.e. the end of the enclosing procedure).
func wireBlock(kb *pkb.PKB, proc string, list []ast.Stmt, after int) error {
	for i, s := range list {
		next := after
		if i+1 < len(list) {
			next = list[i+1].StmtNum()
			if err := kb.AddFollows(s.StmtNum(), next); err != nil {
				return err
			}
		}
		if err := wireStmt(kb, proc, s, next); err != nil {
			return err
		}
	}
	return nil
}

// emitFacts records the direct facts for one statement's own kind. Called
// once per statement as wireBlock/wireStmt walk the tree.
func emitFacts(kb *pkb.PKB, proc string, s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.ReadStmt:
		return kb.AddRead(proc, st.Num, st.Var)
	case *ast.PrintStmt:
		return kb.AddPrint(proc, st.Num, st.Var)
	case *ast.CallStmt:
		return kb.AddCall(proc, st.Num, st.Proc)
	case *ast.AssignStmt:
		return kb.AddAssign(proc, st.Num, st.LHS, st.Vars, st.Consts, st.Postfix)
	case *ast.IfStmt:
		return kb.AddIf(proc, st.Num, st.CondVars)
	case *ast.WhileStmt:
		return kb.AddWhile(proc, st.Num, st.CondVars)
	default:
		return spaerr.NewInvariantViolation("unknown statement kind")
	}
}

// wireStmt wires s's own control-flow edges and, for container statements,
// recurses into their nested statement lists.
func wireStmt(kb *pkb.PKB, proc string, s ast.Stmt, next int) error {
	if err := emitFacts(kb, proc, s); err != nil {
		return err
	}
	switch st := s.(type) {
	case *ast.IfStmt:
		if err := kb.AddCFGEdge(st.Num, st.Then[0].StmtNum()); err != nil {
			return err
		}
		if err := kb.AddCFGEdge(st.Num, st.Else[0].StmtNum()); err != nil {
			return err
		}
		for _, c := range st.Then {
			if err := kb.AddParent(st.Num, c.StmtNum()); err != nil {
				return err
			}
		}
		for _, c := range st.Else {
			if err := kb.AddParent(st.Num, c.StmtNum()); err != nil {
				return err
			}
		}
		if err := wireBlock(kb, proc, st.Then, next); err != nil {
			return err
		}
		return wireBlock(kb, proc, st.Else, next)

	case *ast.WhileStmt:
		if err := kb.AddCFGEdge(st.Num, st.Body[0].StmtNum()); err != nil {
			return err
		}
		if next != 0 {
			if err := kb.AddCFGEdge(st.Num, next); err != nil {
				return err
			}
		}
		for _, c := range st.Body {
			if err := kb.AddParent(st.Num, c.StmtNum()); err != nil {
				return err
			}
		}
		return wireBlock(kb, proc, st.Body, st.Num)

	default:
		if next != 0 {
			return kb.AddCFGEdge(s.StmtNum(), next)
		}
		return nil
	}
}
