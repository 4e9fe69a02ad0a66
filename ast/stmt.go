package ast

import "github.com/darienchong/spa/token"

// ReadStmt is "read VAR;".
type ReadStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	Var      string
}

func (*ReadStmt) stmtNode()         {}
func (s *ReadStmt) StmtNum() int    { return s.Num }
func (s *ReadStmt) Pos() token.Pos  { return s.StartPos }
func (s *ReadStmt) End() token.Pos  { return s.EndPos }

// PrintStmt is "print VAR;".
type PrintStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	Var      string
}

func (*PrintStmt) stmtNode()        {}
func (s *PrintStmt) StmtNum() int   { return s.Num }
func (s *PrintStmt) Pos() token.Pos { return s.StartPos }
func (s *PrintStmt) End() token.Pos { return s.EndPos }

// CallStmt is "call PROC;".
type CallStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	Proc     string
}

func (*CallStmt) stmtNode()        {}
func (s *CallStmt) StmtNum() int   { return s.Num }
func (s *CallStmt) Pos() token.Pos { return s.StartPos }
func (s *CallStmt) End() token.Pos { return s.EndPos }

// AssignStmt is "VAR = expr;". Postfix is the shunting-yard output for the
// right-hand side; Vars and Consts are the leaves it referenced.
type AssignStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	LHS      string
	Postfix  string
	Vars     []string
	Consts   []string
}

func (*AssignStmt) stmtNode()        {}
func (s *AssignStmt) StmtNum() int   { return s.Num }
func (s *AssignStmt) Pos() token.Pos { return s.StartPos }
func (s *AssignStmt) End() token.Pos { return s.EndPos }

// IfStmt is "if (cond) then { stmtlst } else { stmtlst }". CondVars holds
// the variables referenced in cond, for the PatternIf relation.
type IfStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	CondVars []string
	Then     []Stmt
	Else     []Stmt
}

func (*IfStmt) stmtNode()        {}
func (s *IfStmt) StmtNum() int   { return s.Num }
func (s *IfStmt) Pos() token.Pos { return s.StartPos }
func (s *IfStmt) End() token.Pos { return s.EndPos }

// WhileStmt is "while (cond) { stmtlst }".
type WhileStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Num      int
	CondVars []string
	Body     []Stmt
}

func (*WhileStmt) stmtNode()        {}
func (s *WhileStmt) StmtNum() int   { return s.Num }
func (s *WhileStmt) Pos() token.Pos { return s.StartPos }
func (s *WhileStmt) End() token.Pos { return s.EndPos }
