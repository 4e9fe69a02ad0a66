// Package extractor implements the Design Extractor: the
// nine-phase pipeline that turns the direct facts simpleparser wrote into a
// PKB into every derived relation (the `*` closures, UsesP/ModifiesP
// through procedure calls, Next*, and the Affects data-flow relation).
package extractor

import (
	"sort"
	"strconv"

	"github.com/darienchong/spa/graphutil"
	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/table"
)

// Run executes all nine phases against kb in place. It is the sole public
// entry point; simpleparser.Parse and Run together take a SIMPLE source
// program to a fully-populated, query-ready PKB.
func Run(kb *pkb.PKB) error {
	seedConditionUses(kb) // UsesS/UsesP of if/while headers, deferred by simpleparser

	closeParentAndFollows(kb)
	propagateContainerUsesModifies(kb)

	procIDs, idProcs, procGraph, err := buildProcedureGraph(kb)
	if err != nil {
		return err
	}
	if err := validateCallGraph(kb, procIDs, procGraph); err != nil {
		return err
	}
	closeCallsStar(kb, idProcs, procGraph)

	propagateUsesPModifiesPThroughCalls(kb, idProcs, procGraph)
	propagateCallStatementUsesModifies(kb)
	propagateContainerUsesModifies(kb) // re-apply now that call statements carry Uses/Modifies

	kb.NextTable()     // materialize eagerly
	kb.NextStarTable() // materialize eagerly

	computeAffects(kb)
	closeAffectsStar(kb)
	return nil
}

func stmtID(s int) string { return strconv.Itoa(s) }

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// seedConditionUses adds UsesS(s,v)/UsesP(proc,v) for every variable v
// appearing in an if or while statement s's own condition; the source
// parser only records these in PatternIf/PatternWhile, leaving the Uses
// side to the extractor.
func seedConditionUses(kb *pkb.PKB) {
	for _, rel := range []*table.Table{kb.PatternIfTable(), kb.PatternWhileTable()} {
		for _, r := range rel.Rows() {
			s, v := atoi(r[0]), r[1]
			kb.AddUsesS(s, v)
			kb.AddUsesP(kb.StmtProcedure(s), v)
		}
	}
}

// ---- phase 1: Parent*, Follows* ----

func closeParentAndFollows(kb *pkb.PKB) {
	n := kb.NumStmts()
	closeRelation(n, kb.ParentTable(), kb.AddParentStar)
	closeRelation(n, kb.FollowsTable(), kb.AddFollowsStar)
}

func closeRelation(n int, direct *table.Table, add func(a, b int) error) {
	g := graphutil.New(n)
	for _, r := range direct.Rows() {
		g.Insert(atoi(r[0]), atoi(r[1]))
	}
	closure := g.TransitiveClosure()
	for i := 1; i <= n; i++ {
		for _, j := range closure.Successors(i) {
			add(i, j)
		}
	}
}

// ---- phase 2 (and its re-application in phase 6): container Uses/Modifies ----

// propagateContainerUsesModifies adds (s, v) to UsesS/ModifiesS for every
// ancestor s of a statement s' that already carries (s', v), via
// ParentStar. Implemented as a direct join over ParentStar rather than
// table.InnerJoin since both sides are read from and written to the same
// underlying table in one pass.
func propagateContainerUsesModifies(kb *pkb.PKB) {
	propagateOne(kb.ParentStarTable(), kb.UsesSTable(), kb.AddUsesS)
	propagateOne(kb.ParentStarTable(), kb.ModifiesSTable(), kb.AddModifiesS)
}

func propagateOne(parentStar, rel *table.Table, add func(s int, v string) error) {
	childVars := make(map[int][]string)
	for _, r := range rel.Rows() {
		s := atoi(r[0])
		childVars[s] = append(childVars[s], r[1])
	}
	for _, r := range parentStar.Rows() {
		ancestor, child := atoi(r[0]), atoi(r[1])
		for _, v := range childVars[child] {
			add(ancestor, v)
		}
	}
}

// ---- procedure graph shared by phases 3-5 ----

func buildProcedureGraph(kb *pkb.PKB) (procIDs map[string]int, idProcs []string, g *graphutil.Graph, err error) {
	names, gerr := kb.ProcedureTable().GetColumn("name")
	if gerr != nil {
		return nil, nil, nil, gerr
	}
	sort.Strings(names)
	procIDs = make(map[string]int, len(names))
	idProcs = make([]string, len(names)+1) // 1-indexed
	for i, name := range names {
		procIDs[name] = i + 1
		idProcs[i+1] = name
	}
	g = graphutil.New(len(names))
	for _, r := range kb.CallsTable().Rows() {
		p, q := procIDs[r[0]], procIDs[r[1]]
		if p == 0 || q == 0 {
			continue // unresolved callee, reported by validateCallGraph
		}
		if err := g.Insert(p, q); err != nil {
			return nil, nil, nil, err
		}
	}
	return procIDs, idProcs, g, nil
}

// ---- phase 3: validation ----

func validateCallGraph(kb *pkb.PKB, procIDs map[string]int, g *graphutil.Graph) error {
	if order := g.TopologicalOrder(); len(order) < len(procIDs) {
		return spaerr.NewDesignSemanticError("cyclic calls among procedures")
	}
	for _, r := range kb.CallProcTable().Rows() {
		callee := r[1]
		if _, ok := procIDs[callee]; !ok {
			return spaerr.NewDesignSemanticError("call to undefined procedure: " + callee)
		}
	}
	return nil
}

// ---- phase 4: Calls* ----

func closeCallsStar(kb *pkb.PKB, idProcs []string, g *graphutil.Graph) {
	closure := g.TransitiveClosure()
	for i := 1; i < len(idProcs); i++ {
		for _, j := range closure.Successors(i) {
			kb.AddCallsStar(idProcs[i], idProcs[j])
		}
	}
}

// ---- phase 5: UsesP/ModifiesP through call chains ----

// propagateUsesPModifiesPThroughCalls assumes the call graph was already
// validated acyclic by validateCallGraph.
func propagateUsesPModifiesPThroughCalls(kb *pkb.PKB, idProcs []string, g *graphutil.Graph) {
	order := g.TopologicalOrder()
	// Reverse-topological: callees are processed before their callers, so
	// one pass over each procedure's direct callees suffices.
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		for _, q := range g.Successors(p) {
			copyProcVars(kb.UsesPTable(), idProcs[p], idProcs[q], kb.AddUsesP)
			copyProcVars(kb.ModifiesPTable(), idProcs[p], idProcs[q], kb.AddModifiesP)
		}
	}
}

func copyProcVars(rel *table.Table, p, q string, add func(p, v string) error) {
	for _, r := range rel.Rows() {
		if r[0] == q {
			add(p, r[1])
		}
	}
}

// ---- phase 6: propagate call-statement Uses/Modifies ----

func propagateCallStatementUsesModifies(kb *pkb.PKB) {
	for _, r := range kb.CallProcTable().Rows() {
		s, q := r[0], r[1]
		for _, uv := range kb.UsesPTable().Rows() {
			if uv[0] == q {
				kb.AddUsesS(atoi(s), uv[1])
			}
		}
		for _, mv := range kb.ModifiesPTable().Rows() {
			if mv[0] == q {
				kb.AddModifiesS(atoi(s), mv[1])
			}
		}
	}
}

// ---- phase 8: Affects ----

func computeAffects(kb *pkb.PKB) {
	cfg := kb.CFG()
	for _, row := range kb.PatternAssignTable().Rows() {
		a, v := atoi(row[0]), row[1]
		visited := make(map[int]bool)
		queue := cfg.Successors(a)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if visited[n] {
				continue
			}
			visited[n] = true

			isAssign := kb.AssignTable().Contains(table.Row{stmtID(n)})
			if isAssign && kb.UsesSTable().Contains(table.Row{stmtID(n), v}) {
				kb.AddAffects(a, n)
			}

			killed := false
			if isAssign || kb.ReadTable().Contains(table.Row{stmtID(n)}) || kb.CallTable().Contains(table.Row{stmtID(n)}) {
				killed = kb.ModifiesSTable().Contains(table.Row{stmtID(n), v})
			}
			if !killed {
				queue = append(queue, cfg.Successors(n)...)
			}
		}
	}
}

// ---- phase 9: Affects* ----

func closeAffectsStar(kb *pkb.PKB) {
	n := kb.NumStmts()
	closeRelation(n, kb.AffectsTable(), kb.AddAffectsStar)
}
