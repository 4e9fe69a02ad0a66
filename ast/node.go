// Package ast defines the abstract syntax tree produced by simpleparser for
// SIMPLE source programs. Node and Stmt mirror the interface shapes of a
// conventional recursive-descent parser's AST (Pos-tracked nodes with a
// private marker method per node category); expressions are not nodes, an
// assignment keeps its right-hand side as a postfix string.
package ast

import "github.com/darienchong/spa/token"

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Stmt represents one SIMPLE statement. Every concrete statement kind
// additionally carries its assigned statement number.
type Stmt interface {
	Node
	stmtNode()
	StmtNum() int
}
