// Package pkb implements the Program Knowledge Base: a
// named collection of table.Table relations keyed by relation kind, plus a
// per-program control-flow graph, with typed add/get accessors. The PKB is
// populated in two phases (simpleparser emits direct facts, extractor adds
// derived facts); once extractor finishes, callers should treat it as
// read-only, so it may be shared freely by readers.
package pkb

import (
	"strconv"

	"github.com/darienchong/spa/graphutil"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/table"
)

// PKB holds every fact table plus the intra-procedural control-flow graph.
type PKB struct {
	numStmts int
	stmtProc map[int]string // statement number -> owning procedure

	cfg         *graphutil.Graph
	nextCache   *table.Table
	nextStarHit bool
	nextStar    *table.Table

	stmt, read, print, call, assign, ifT, while *table.Table // header {"s"}
	variable, constant, procedure                *table.Table // header {"name"}

	follows, followsStar *table.Table // {"a","b"}
	parent, parentStar   *table.Table // {"a","b"}
	calls, callsStar     *table.Table // {"p","q"}
	usesS, modifiesS     *table.Table // {"s","v"}
	usesP, modifiesP     *table.Table // {"p","v"}
	affects, affectsStar *table.Table // {"a","b"}

	patternAssign *table.Table // {"s","lhs","rhs"}
	patternIf     *table.Table // {"s","v"}
	patternWhile  *table.Table // {"s","v"}

	readVar  *table.Table // {"s","v"}
	printVar *table.Table // {"s","v"}
	callProc *table.Table // {"s","q"}
}

func must(t *table.Table, err error) *table.Table {
	if err != nil {
		panic(err)
	}
	return t
}

// New creates an empty PKB sized for a program of numStmts statements.
func New(numStmts int) *PKB {
	return &PKB{
		numStmts: numStmts,
		stmtProc: make(map[int]string),
		cfg:      graphutil.New(numStmts),

		stmt:   must(table.New([]string{"s"})),
		read:   must(table.New([]string{"s"})),
		print:  must(table.New([]string{"s"})),
		call:   must(table.New([]string{"s"})),
		assign: must(table.New([]string{"s"})),
		ifT:    must(table.New([]string{"s"})),
		while:  must(table.New([]string{"s"})),

		variable:  must(table.New([]string{"name"})),
		constant:  must(table.New([]string{"name"})),
		procedure: must(table.New([]string{"name"})),

		follows:     must(table.New([]string{"a", "b"})),
		followsStar: must(table.New([]string{"a", "b"})),
		parent:      must(table.New([]string{"a", "b"})),
		parentStar:  must(table.New([]string{"a", "b"})),
		calls:       must(table.New([]string{"p", "q"})),
		callsStar:   must(table.New([]string{"p", "q"})),
		usesS:       must(table.New([]string{"s", "v"})),
		modifiesS:   must(table.New([]string{"s", "v"})),
		usesP:       must(table.New([]string{"p", "v"})),
		modifiesP:   must(table.New([]string{"p", "v"})),
		affects:     must(table.New([]string{"a", "b"})),
		affectsStar: must(table.New([]string{"a", "b"})),

		patternAssign: must(table.New([]string{"s", "lhs", "rhs"})),
		patternIf:     must(table.New([]string{"s", "v"})),
		patternWhile:  must(table.New([]string{"s", "v"})),

		readVar:  must(table.New([]string{"s", "v"})),
		printVar: must(table.New([]string{"s", "v"})),
		callProc: must(table.New([]string{"s", "q"})),
	}
}

// NumStmts returns the total number of statements in the program.
func (k *PKB) NumStmts() int { return k.numStmts }

func stmtID(s int) string { return strconv.Itoa(s) }

// StmtProcedure returns the procedure that owns statement s.
func (k *PKB) StmtProcedure(s int) string { return k.stmtProc[s] }

// ---- direct facts, added by simpleparser ----

// AddProcedure registers a declared procedure name.
func (k *PKB) AddProcedure(name string) error {
	return k.procedure.Insert(table.Row{name})
}

// AddRead records "read v;" as statement s of proc.
func (k *PKB) AddRead(proc string, s int, v string) error {
	k.stmtProc[s] = proc
	return firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.read.Insert(table.Row{stmtID(s)}),
		k.variable.Insert(table.Row{v}),
		k.modifiesS.Insert(table.Row{stmtID(s), v}),
		k.modifiesP.Insert(table.Row{proc, v}),
		k.readVar.Insert(table.Row{stmtID(s), v}),
	)
}

// AddPrint records "print v;" as statement s of proc.
func (k *PKB) AddPrint(proc string, s int, v string) error {
	k.stmtProc[s] = proc
	return firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.print.Insert(table.Row{stmtID(s)}),
		k.variable.Insert(table.Row{v}),
		k.usesS.Insert(table.Row{stmtID(s), v}),
		k.usesP.Insert(table.Row{proc, v}),
		k.printVar.Insert(table.Row{stmtID(s), v}),
	)
}

// AddCall records "call q;" as statement s of proc. Uses/Modifies for the
// call are resolved later by extractor (§4.4 phase 6).
func (k *PKB) AddCall(proc string, s int, callee string) error {
	k.stmtProc[s] = proc
	return firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.call.Insert(table.Row{stmtID(s)}),
		k.calls.Insert(table.Row{proc, callee}),
		k.callProc.Insert(table.Row{stmtID(s), callee}),
	)
}

// AddAssign records "lhs = expr;" as statement s of proc.
func (k *PKB) AddAssign(proc string, s int, lhs string, vars, consts []string, postfix string) error {
	k.stmtProc[s] = proc
	if err := firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.assign.Insert(table.Row{stmtID(s)}),
		k.variable.Insert(table.Row{lhs}),
		k.modifiesS.Insert(table.Row{stmtID(s), lhs}),
		k.modifiesP.Insert(table.Row{proc, lhs}),
		k.patternAssign.Insert(table.Row{stmtID(s), lhs, postfix}),
	); err != nil {
		return err
	}
	for _, v := range vars {
		if err := firstErr(
			k.variable.Insert(table.Row{v}),
			k.usesS.Insert(table.Row{stmtID(s), v}),
			k.usesP.Insert(table.Row{proc, v}),
		); err != nil {
			return err
		}
	}
	for _, c := range consts {
		if err := k.constant.Insert(table.Row{c}); err != nil {
			return err
		}
	}
	return nil
}

// AddIf records an "if" statement header s of proc; UsesS/UsesP for the
// condition variables are deferred to extractor.
func (k *PKB) AddIf(proc string, s int, condVars []string) error {
	k.stmtProc[s] = proc
	if err := firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.ifT.Insert(table.Row{stmtID(s)}),
	); err != nil {
		return err
	}
	for _, v := range condVars {
		if err := firstErr(
			k.variable.Insert(table.Row{v}),
			k.patternIf.Insert(table.Row{stmtID(s), v}),
		); err != nil {
			return err
		}
	}
	return nil
}

// AddWhile records a "while" statement header s of proc.
func (k *PKB) AddWhile(proc string, s int, condVars []string) error {
	k.stmtProc[s] = proc
	if err := firstErr(
		k.stmt.Insert(table.Row{stmtID(s)}),
		k.while.Insert(table.Row{stmtID(s)}),
	); err != nil {
		return err
	}
	for _, v := range condVars {
		if err := firstErr(
			k.variable.Insert(table.Row{v}),
			k.patternWhile.Insert(table.Row{stmtID(s), v}),
		); err != nil {
			return err
		}
	}
	return nil
}

// AddFollows records Follows(a,b); a must precede b.
func (k *PKB) AddFollows(a, b int) error {
	if a >= b {
		return spaerr.NewInvariantViolation("Follows(a,b) requires a<b")
	}
	return k.follows.Insert(table.Row{stmtID(a), stmtID(b)})
}

// AddParent records Parent(a,b); a must precede b.
func (k *PKB) AddParent(a, b int) error {
	if a >= b {
		return spaerr.NewInvariantViolation("Parent(a,b) requires a<b")
	}
	return k.parent.Insert(table.Row{stmtID(a), stmtID(b)})
}

// AddCFGEdge records a control-flow edge a->b, used by extractor to derive
// Next/Next* and Affects. Next edges are
// never stored as a string Table directly; the CFG is the source of truth.
func (k *PKB) AddCFGEdge(a, b int) error {
	return k.cfg.Insert(a, b)
}

// CFG returns the underlying control-flow graph, read-only by convention.
func (k *PKB) CFG() *graphutil.Graph { return k.cfg }

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// ---- derived facts, added by extractor ----

func (k *PKB) AddFollowsStar(a, b int) error { return k.followsStar.Insert(table.Row{stmtID(a), stmtID(b)}) }
func (k *PKB) AddParentStar(a, b int) error  { return k.parentStar.Insert(table.Row{stmtID(a), stmtID(b)}) }
func (k *PKB) AddCallsStar(p, q string) error { return k.callsStar.Insert(table.Row{p, q}) }
func (k *PKB) AddUsesS(s int, v string) error { return k.usesS.Insert(table.Row{stmtID(s), v}) }
func (k *PKB) AddUsesP(p, v string) error     { return k.usesP.Insert(table.Row{p, v}) }
func (k *PKB) AddModifiesS(s int, v string) error {
	return k.modifiesS.Insert(table.Row{stmtID(s), v})
}
func (k *PKB) AddModifiesP(p, v string) error { return k.modifiesP.Insert(table.Row{p, v}) }
func (k *PKB) AddAffects(a, b int) error      { return k.affects.Insert(table.Row{stmtID(a), stmtID(b)}) }
func (k *PKB) AddAffectsStar(a, b int) error {
	return k.affectsStar.Insert(table.Row{stmtID(a), stmtID(b)})
}

// ---- typed get accessors ----

func (k *PKB) StmtTable() *table.Table      { return k.stmt }
func (k *PKB) ReadTable() *table.Table      { return k.read }
func (k *PKB) PrintTable() *table.Table     { return k.print }
func (k *PKB) CallTable() *table.Table      { return k.call }
func (k *PKB) AssignTable() *table.Table    { return k.assign }
func (k *PKB) IfTable() *table.Table        { return k.ifT }
func (k *PKB) WhileTable() *table.Table     { return k.while }
func (k *PKB) VariableTable() *table.Table  { return k.variable }
func (k *PKB) ConstantTable() *table.Table  { return k.constant }
func (k *PKB) ProcedureTable() *table.Table { return k.procedure }

func (k *PKB) FollowsTable() *table.Table     { return k.follows }
func (k *PKB) FollowsStarTable() *table.Table { return k.followsStar }
func (k *PKB) ParentTable() *table.Table      { return k.parent }
func (k *PKB) ParentStarTable() *table.Table  { return k.parentStar }
func (k *PKB) CallsTable() *table.Table       { return k.calls }
func (k *PKB) CallsStarTable() *table.Table   { return k.callsStar }
func (k *PKB) UsesSTable() *table.Table       { return k.usesS }
func (k *PKB) UsesPTable() *table.Table       { return k.usesP }
func (k *PKB) ModifiesSTable() *table.Table   { return k.modifiesS }
func (k *PKB) ModifiesPTable() *table.Table   { return k.modifiesP }
func (k *PKB) AffectsTable() *table.Table     { return k.affects }
func (k *PKB) AffectsStarTable() *table.Table { return k.affectsStar }

func (k *PKB) PatternAssignTable() *table.Table { return k.patternAssign }
func (k *PKB) PatternIfTable() *table.Table     { return k.patternIf }
func (k *PKB) PatternWhileTable() *table.Table  { return k.patternWhile }

func (k *PKB) ReadVarTable() *table.Table  { return k.readVar }
func (k *PKB) PrintVarTable() *table.Table { return k.printVar }
func (k *PKB) CallProcTable() *table.Table { return k.callProc }

// NextTable lazily materializes the Next relation from the CFG. The CFG,
// not a stored Table, is the source of truth; this is computed once per
// PKB and cached.
func (k *PKB) NextTable() *table.Table {
	if k.nextCache != nil {
		return k.nextCache
	}
	out := must(table.New([]string{"a", "b"}))
	for i := 1; i <= k.numStmts; i++ {
		for _, j := range k.cfg.Successors(i) {
			must(out, out.Insert(table.Row{stmtID(i), stmtID(j)}))
		}
	}
	k.nextCache = out
	return out
}

// NextStarTable lazily materializes Next* via the CFG's transitive closure.
func (k *PKB) NextStarTable() *table.Table {
	if k.nextStarHit {
		return k.nextStar
	}
	closure := k.cfg.TransitiveClosure()
	out := must(table.New([]string{"a", "b"}))
	for i := 1; i <= k.numStmts; i++ {
		for _, j := range closure.Successors(i) {
			if err := out.Insert(table.Row{stmtID(i), stmtID(j)}); err != nil {
				panic(err)
			}
		}
	}
	k.nextStar = out
	k.nextStarHit = true
	return out
}
