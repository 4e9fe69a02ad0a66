package ast

import "github.com/darienchong/spa/token"

// Program is the root of a parsed SIMPLE source file: one or more
// procedures in textual declaration order.
type Program struct {
	Procedures []*Procedure
}

// Procedure is one "procedure NAME { stmtlst }" declaration.
type Procedure struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
	Body     []Stmt
}

func (p *Procedure) Pos() token.Pos { return p.StartPos }
func (p *Procedure) End() token.Pos { return p.EndPos }
