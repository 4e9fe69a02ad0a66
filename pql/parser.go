package pql

import (
	"fmt"

	"github.com/darienchong/spa/simpleparser"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/token"
	"github.com/darienchong/spa/tokenizer"
)

// entityTokens maps the keyword token a design-entity declaration starts
// with to the EntityKind it declares.
var entityTokens = map[token.Token]EntityKind{
	token.STMT:       KindStmt,
	token.READ:       KindRead,
	token.PRINT:      KindPrint,
	token.WHILE:      KindWhile,
	token.IF:         KindIf,
	token.ASSIGN_ENT: KindAssign,
	token.VARIABLE:   KindVariable,
	token.CONSTANT:   KindConstant,
	token.PROCEDURE:  KindProcedure,
	token.CALL:       KindCall,
	token.PROG_LINE:  KindProgLine,
}

// transitiveRelations is the set of relation names the grammar allows an
// optional trailing '*' on.
var transitiveRelations = map[token.Token]bool{
	token.FOLLOWS: true,
	token.PARENT:  true,
	token.CALLS:   true,
	token.NEXT:    true,
	token.AFFECTS: true,
}

// Parser is a recursive descent parser over PQL query text.
type Parser struct {
	tz     *tokenizer.Tokenizer
	cur    token.Item
	errors []error
	decls  map[string]EntityKind
}

// New creates a parser for the given PQL query text.
func New(src string) *Parser {
	p := &Parser{tz: tokenizer.NewPQL(src), decls: make(map[string]EntityKind)}
	p.advance()
	return p
}

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
	p.fail(fmt.Sprintf("expected %s, got %s", t, p.cur.Type))
	return false
}

func (p *Parser) fail(msg string) {
	p.errors = append(p.errors, spaerr.NewParseSyntaxError(p.cur.Pos.Line, msg))
}

func (p *Parser) failSemantic(msg string) {
	p.errors = append(p.errors, spaerr.NewParseSemanticError(msg))
}

// Parse parses one PQL query: zero or more declarations, a Select result
// spec, then zero or more such-that/pattern/with clauses.
func (p *Parser) Parse() (*Query, error) {
	for p.isDeclarationStart() {
		p.parseDeclaration()
		if len(p.errors) > 0 {
			return nil, p.errors[0]
		}
	}

	if !p.expect(token.SELECT) {
		return nil, p.errors[0]
	}
	result := p.parseResult()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	var clauses []Clause
	for !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.SUCH):
			p.advance()
			if !p.expect(token.THAT) {
				return nil, p.errors[0]
			}
			c := p.parseRelRef()
			if len(p.errors) > 0 {
				return nil, p.errors[0]
			}
			clauses = append(clauses, c)
		case p.curIs(token.PATTERN):
			c := p.parsePattern()
			if len(p.errors) > 0 {
				return nil, p.errors[0]
			}
			clauses = append(clauses, c)
		case p.curIs(token.WITH):
			c := p.parseWith()
			if len(p.errors) > 0 {
				return nil, p.errors[0]
			}
			clauses = append(clauses, c)
		default:
			p.fail("expected 'such that', 'pattern' or 'with'")
			return nil, p.errors[0]
		}
	}

	return &Query{Declarations: p.decls, Result: result, Clauses: clauses}, nil
}

// isDeclarationStart disambiguates a leading design-entity keyword (start of
// a declaration) from the identical keyword reused as a relation/entity
// reference once declarations end and Select begins; declarations always
// precede Select, so one token of lookahead at the top level is enough.
func (p *Parser) isDeclarationStart() bool {
	_, ok := entityTokens[p.cur.Type]
	return ok
}

func (p *Parser) parseDeclaration() {
	kind := entityTokens[p.cur.Type]
	p.advance()
	for {
		if !p.curIs(token.IDENT) {
			p.fail("expected a synonym name")
			return
		}
		name := p.cur.Value
		if _, dup := p.decls[name]; dup {
			p.failSemantic("duplicate synonym declaration: " + name)
			return
		}
		p.decls[name] = kind
		p.advance()
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.SEMICOLON)
}

func (p *Parser) parseResult() ResultSpec {
	if p.curIs(token.BOOLEAN) {
		p.advance()
		return ResultSpec{Boolean: true}
	}
	if p.curIs(token.LT) {
		p.advance()
		var syns []string
		for {
			name := p.expectDeclaredSynonym()
			if len(p.errors) > 0 {
				return ResultSpec{}
			}
			syns = append(syns, name)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.GT)
		return ResultSpec{Synonyms: syns}
	}
	name := p.expectDeclaredSynonym()
	return ResultSpec{Synonyms: []string{name}}
}

func (p *Parser) expectDeclaredSynonym() string {
	if !p.curIs(token.IDENT) {
		p.fail("expected a synonym")
		return ""
	}
	name := p.cur.Value
	if _, ok := p.decls[name]; !ok {
		p.failSemantic("undeclared synonym: " + name)
		return ""
	}
	p.advance()
	return name
}

// checkKind reports a mis-typed-synonym semantic error if name's declared
// kind is not among allowed.
func (p *Parser) checkKind(name string, allowed func(EntityKind) bool) {
	kind, ok := p.decls[name]
	if !ok {
		p.failSemantic("undeclared synonym: " + name)
		return
	}
	if !allowed(kind) {
		p.failSemantic(fmt.Sprintf("synonym %q of kind %s is not valid in this position", name, kind))
	}
}

// ---- such-that relRef ----

func (p *Parser) parseRelRef() Clause {
	switch {
	case transitiveRelations[p.cur.Type]:
		relTok := p.cur.Type
		name := p.cur.Type.String()
		p.advance()
		star := false
		if p.curIs(token.ASTERISK) {
			star = true
			p.advance()
		}
		if !p.expect(token.LPAREN) {
			return Clause{}
		}
		// Calls/Calls* relate procedures, not statements, despite sharing
		// stmtRef's '(' synonym ',' synonym ')' shape in the grammar.
		allowed := EntityKind.isStmtLike
		if relTok == token.CALLS {
			allowed = func(k EntityKind) bool { return k == KindProcedure }
		}
		a := p.parseStmtRef(allowed)
		if !p.expect(token.COMMA) {
			return Clause{}
		}
		b := p.parseStmtRef(allowed)
		if !p.expect(token.RPAREN) {
			return Clause{}
		}
		rel := Relation(name)
		if star {
			rel = Relation(name + "*")
		}
		return Clause{Relation: rel, Args: []Param{a, b}}

	case p.curIs(token.USES) || p.curIs(token.MODIFIES):
		name := p.cur.Type.String()
		p.advance()
		if !p.expect(token.LPAREN) {
			return Clause{}
		}
		a := p.parseStmtOrProcRef()
		if !p.expect(token.COMMA) {
			return Clause{}
		}
		b := p.parseVarRef()
		if !p.expect(token.RPAREN) {
			return Clause{}
		}
		return Clause{Relation: Relation(name), Args: []Param{a, b}}

	default:
		p.fail("expected a relation name")
		return Clause{}
	}
}

// parseStmtRef parses stmtRef ::= synonym | '_' | INTEGER, checking a
// synonym argument's declared kind against allowed.
func (p *Parser) parseStmtRef(allowed func(EntityKind) bool) Param {
	switch {
	case p.curIs(token.UNDERSCORE):
		p.advance()
		return Param{Kind: ParamWildcard}
	case p.curIs(token.NUMBER):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamInteger, Value: v}
	case p.curIs(token.IDENT):
		name := p.cur.Value
		p.checkKind(name, allowed)
		p.advance()
		return Param{Kind: ParamSynonym, Synonym: name}
	default:
		p.fail("expected a statement reference")
		return Param{}
	}
}

// parseVarRef parses entRef ::= synonym | '_' | '"' NAME '"' where the
// synonym must denote a variable.
func (p *Parser) parseVarRef() Param {
	switch {
	case p.curIs(token.UNDERSCORE):
		p.advance()
		return Param{Kind: ParamWildcard}
	case p.curIs(token.STRING):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamQuotedName, Value: v}
	case p.curIs(token.IDENT):
		name := p.cur.Value
		p.checkKind(name, func(k EntityKind) bool { return k == KindVariable })
		p.advance()
		return Param{Kind: ParamSynonym, Synonym: name}
	default:
		p.fail("expected a variable reference")
		return Param{}
	}
}

// parseStmtOrProcRef parses the first argument of Uses/Modifies, which the
// grammar allows to be either a stmtRef or a procedure entRef; an
// underscore is accepted, and the planner evaluates it against the
// statement-indexed Uses/Modifies table.
func (p *Parser) parseStmtOrProcRef() Param {
	switch {
	case p.curIs(token.UNDERSCORE):
		p.advance()
		return Param{Kind: ParamWildcard}
	case p.curIs(token.NUMBER):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamInteger, Value: v}
	case p.curIs(token.STRING):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamQuotedName, Value: v}
	case p.curIs(token.IDENT):
		name := p.cur.Value
		p.checkKind(name, func(k EntityKind) bool { return k.isStmtLike() || k == KindProcedure })
		p.advance()
		return Param{Kind: ParamSynonym, Synonym: name}
	default:
		p.fail("expected a statement or procedure reference")
		return Param{}
	}
}

// ---- pattern ----

func (p *Parser) parsePattern() Clause {
	p.advance() // 'pattern'
	if !p.curIs(token.IDENT) {
		p.fail("expected a pattern synonym")
		return Clause{}
	}
	synName := p.cur.Value
	kind, ok := p.decls[synName]
	if !ok {
		p.failSemantic("undeclared synonym: " + synName)
		return Clause{}
	}
	p.advance()
	if !p.expect(token.LPAREN) {
		return Clause{}
	}
	entArg := p.parseVarRef()
	if !p.expect(token.COMMA) {
		return Clause{}
	}

	synParam := Param{Kind: ParamSynonym, Synonym: synName}
	switch kind {
	case KindAssign:
		spec := p.parseExprSpec()
		if !p.expect(token.RPAREN) {
			return Clause{}
		}
		return Clause{Relation: RelPatternAssign, Args: []Param{synParam, entArg, spec}}
	case KindIf:
		if !p.expect(token.UNDERSCORE) || !p.expect(token.COMMA) || !p.expect(token.UNDERSCORE) {
			return Clause{}
		}
		if !p.expect(token.RPAREN) {
			return Clause{}
		}
		return Clause{Relation: RelPatternIf, Args: []Param{synParam, entArg}}
	case KindWhile:
		if !p.expect(token.UNDERSCORE) {
			return Clause{}
		}
		if !p.expect(token.RPAREN) {
			return Clause{}
		}
		return Clause{Relation: RelPatternWhile, Args: []Param{synParam, entArg}}
	default:
		p.failSemantic("pattern synonym " + synName + " must be declared assign, if or while")
		return Clause{}
	}
}

// parseExprSpec parses expr-spec ::= '_' | '_' '"' expr '"' '_' | '"' expr '"'.
func (p *Parser) parseExprSpec() Param {
	switch {
	case p.curIs(token.UNDERSCORE):
		p.advance()
		if !p.curIs(token.STRING) {
			return Param{Kind: ParamWildcard}
		}
		raw := p.cur.Value
		p.advance()
		if !p.expect(token.UNDERSCORE) {
			return Param{}
		}
		postfix, err := simpleparser.ExprToPostfix(raw)
		if err != nil {
			p.errors = append(p.errors, err)
			return Param{}
		}
		return Param{Kind: ParamExprSubexpr, Value: postfix}
	case p.curIs(token.STRING):
		raw := p.cur.Value
		p.advance()
		postfix, err := simpleparser.ExprToPostfix(raw)
		if err != nil {
			p.errors = append(p.errors, err)
			return Param{}
		}
		return Param{Kind: ParamExprExact, Value: postfix}
	default:
		p.fail("expected an expr-spec")
		return Param{}
	}
}

// ---- with ----

func (p *Parser) parseWith() Clause {
	p.advance() // 'with'
	left := p.parseAttrRef()
	if !p.expect(token.ASSIGN) {
		return Clause{}
	}
	right := p.parseAttrRef()
	return Clause{Relation: RelWith, Args: []Param{left, right}}
}

// parseAttrRef parses ref ::= synonym '.' attrName | INTEGER | '"' NAME '"'.
func (p *Parser) parseAttrRef() Param {
	switch {
	case p.curIs(token.NUMBER):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamInteger, Value: v}
	case p.curIs(token.STRING):
		v := p.cur.Value
		p.advance()
		return Param{Kind: ParamQuotedName, Value: v}
	case p.curIs(token.IDENT):
		name := p.cur.Value
		kind, ok := p.decls[name]
		if !ok {
			p.failSemantic("undeclared synonym: " + name)
			return Param{}
		}
		p.advance()
		if !p.expect(token.DOT) {
			return Param{}
		}
		attr := p.parseAttrName()
		if len(p.errors) > 0 {
			return Param{}
		}
		if err := checkAttrCompatible(attr, kind); err != nil {
			p.failSemantic(err.Error())
			return Param{}
		}
		return Param{Kind: ParamSynonym, Synonym: name, Attr: attr}
	default:
		p.fail("expected a synonym.attrName, an integer or a quoted name")
		return Param{}
	}
}

func (p *Parser) parseAttrName() string {
	if p.curIs(token.STMT) {
		p.advance()
		if !p.expect(token.HASH) {
			return ""
		}
		return "stmt#"
	}
	if p.curIs(token.IDENT) {
		switch p.cur.Value {
		case "procName", "varName", "value":
			name := p.cur.Value
			p.advance()
			return name
		}
	}
	p.fail("expected an attribute name (procName, varName, value, stmt#)")
	return ""
}

// checkAttrCompatible enforces which attrName each declared EntityKind may
// carry, per the with-clause grammar above.
func checkAttrCompatible(attr string, kind EntityKind) error {
	switch attr {
	case "procName":
		if kind == KindProcedure || kind == KindCall {
			return nil
		}
	case "varName":
		if kind == KindVariable || kind == KindRead || kind == KindPrint {
			return nil
		}
	case "value":
		if kind == KindConstant {
			return nil
		}
	case "stmt#":
		if kind.isStmtLike() {
			return nil
		}
	}
	return fmt.Errorf("attribute %q is not valid on a synonym of kind %s", attr, kind)
}
