// Package spaerr defines the error taxonomy: one Go type per
// distinct kind, each carrying a message. Every kind except
// InvariantViolation prints a phase tag; none wraps an underlying cause.
package spaerr

import "fmt"

// Phase identifies which stage of the pipeline raised an error.
type Phase string

const (
	PhaseTokenize Phase = "tokenize"
	PhaseParse    Phase = "parse"
	PhaseExtract  Phase = "extract"
	PhaseQuery    Phase = "query"
)

// TokenizationError reports an illegal character, an unterminated operator,
// or a disallowed leading zero.
type TokenizationError struct {
	Line    int
	Message string
}

func NewTokenizationError(line int, msg string) *TokenizationError {
	return &TokenizationError{Line: line, Message: msg}
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("[%s] line %d: %s", PhaseTokenize, e.Line, e.Message)
}

// ParseSyntaxError reports a SIMPLE grammar violation.
type ParseSyntaxError struct {
	Line    int
	Message string
}

func NewParseSyntaxError(line int, msg string) *ParseSyntaxError {
	return &ParseSyntaxError{Line: line, Message: msg}
}

func (e *ParseSyntaxError) Error() string {
	return fmt.Sprintf("[%s] line %d: %s", PhaseParse, e.Line, e.Message)
}

// ParseSemanticError reports a PQL semantic violation: undeclared synonym,
// mis-typed synonym, or duplicate declaration.
type ParseSemanticError struct {
	Message string
}

func NewParseSemanticError(msg string) *ParseSemanticError {
	return &ParseSemanticError{Message: msg}
}

func (e *ParseSemanticError) Error() string {
	return fmt.Sprintf("[%s] %s", PhaseQuery, e.Message)
}

// DesignSemanticError reports a cyclic call graph or a call to an
// undeclared procedure.
type DesignSemanticError struct {
	Message string
}

func NewDesignSemanticError(msg string) *DesignSemanticError {
	return &DesignSemanticError{Message: msg}
}

func (e *DesignSemanticError) Error() string {
	return fmt.Sprintf("[%s] %s", PhaseExtract, e.Message)
}

// InvariantViolation reports a programming error by a caller of a lower
// layer: a wrong-arity row, or an out-of-order Follows/Parent pair.
type InvariantViolation struct {
	Message string
}

func NewInvariantViolation(msg string) *InvariantViolation {
	return &InvariantViolation{Message: msg}
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Message)
}

// QueryEvaluationError is never raised in normal operation; malformed
// queries are caught during PQL parsing. Kept for API completeness so that
// planner.Evaluator has a typed error to return if an invariant it assumes
// (e.g. a well-typed Clause) is ever violated by a caller outside pql.
type QueryEvaluationError struct {
	Message string
}

func NewQueryEvaluationError(msg string) *QueryEvaluationError {
	return &QueryEvaluationError{Message: msg}
}

func (e *QueryEvaluationError) Error() string {
	return fmt.Sprintf("[%s] %s", PhaseQuery, e.Message)
}
