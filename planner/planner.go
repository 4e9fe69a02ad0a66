// Package planner implements the Query Planner/Evaluator: it
// groups a parsed pql.Query's clauses by synonym co-occurrence, materializes
// each clause against a *pkb.PKB, joins connected groups in increasing-cost
// order, and projects the result synonyms into a final row set.
package planner

import (
	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/pql"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/table"
)

// Result is the outcome of evaluating one query: either a Boolean verdict
// or a set of result tuples (possibly empty, meaning "no witnesses").
type Result struct {
	Boolean   bool
	BoolValue bool
	Header    []string
	Rows      []table.Row
}

// Evaluator runs queries against one PKB. It holds no mutable state besides
// per-call scratch, so one Evaluator may be shared by many goroutines
// provided the PKB itself is only ever read.
type Evaluator struct {
	kb *pkb.PKB
}

// New creates an Evaluator bound to kb, which must not be mutated for the
// lifetime of any Evaluate call in flight.
func New(kb *pkb.PKB) *Evaluator {
	return &Evaluator{kb: kb}
}

// synonymsOf returns the distinct synonym names a clause's arguments bind.
func synonymsOf(c pql.Clause) []string {
	var out []string
	for _, a := range c.Args {
		if a.Kind == pql.ParamSynonym {
			out = append(out, a.Synonym)
		}
	}
	return out
}

// unionFind is a minimal disjoint-set structure over synonym names, used to
// build the co-occurrence graph's connected components.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(name string) {
	if _, ok := u.parent[name]; !ok {
		u.parent[name] = name
	}
}

func (u *unionFind) find(name string) string {
	root := name
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[name] != root {
		u.parent[name], name = root, u.parent[name]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Evaluate runs q against the Evaluator's PKB and returns its Result.
func (e *Evaluator) Evaluate(q *pql.Query) (Result, error) {
	uf := newUnionFind()
	for _, c := range q.Clauses {
		syns := synonymsOf(c)
		for _, s := range syns {
			uf.add(s)
		}
		for i := 1; i < len(syns); i++ {
			uf.union(syns[0], syns[i])
		}
	}
	for _, s := range q.Result.Synonyms {
		uf.add(s)
	}

	resultRoots := make(map[string]bool, len(q.Result.Synonyms))
	for _, s := range q.Result.Synonyms {
		resultRoots[uf.find(s)] = true
	}

	type bin3Group struct {
		clauses []pql.Clause
	}
	groups := make(map[string]*bin3Group)
	var standalone []pql.Clause // bins 1 and 2: evaluated as booleans

	for _, c := range q.Clauses {
		syns := synonymsOf(c)
		if len(syns) == 0 {
			standalone = append(standalone, c)
			continue
		}
		root := uf.find(syns[0])
		if resultRoots[root] {
			g, ok := groups[root]
			if !ok {
				g = &bin3Group{}
				groups[root] = g
			}
			g.clauses = append(g.clauses, c)
		} else {
			standalone = append(standalone, c)
		}
	}

	for _, c := range standalone {
		t, err := materializeClause(e.kb, q, c)
		if err != nil {
			return Result{}, err
		}
		if t.Empty() {
			return emptyResult(q), nil
		}
	}

	groupTables := make(map[string]*table.Table, len(groups))
	for root, g := range groups {
		t, err := contractGroup(e.kb, q, g.clauses)
		if err != nil {
			return Result{}, err
		}
		if t.Empty() {
			return emptyResult(q), nil
		}
		groupTables[root] = t
	}

	if q.Result.Boolean {
		return Result{Boolean: true, BoolValue: true}, nil
	}
	return e.project(q, uf, groupTables)
}

// emptyResult builds the short-circuited "no witnesses" Result for q.
func emptyResult(q *pql.Query) Result {
	if q.Result.Boolean {
		return Result{Boolean: true, BoolValue: false}
	}
	return Result{Header: append([]string(nil), q.Result.Synonyms...)}
}

// contractGroup materializes every clause in a connected group and repeatedly
// joins the pair with smallest estimated cost until one Table remains, per
// the ordering heuristic below.
func contractGroup(kb *pkb.PKB, q *pql.Query, clauses []pql.Clause) (*table.Table, error) {
	tables := make([]*table.Table, 0, len(clauses))
	for _, c := range clauses {
		t, err := materializeClause(kb, q, c)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, spaerr.NewInvariantViolation("contractGroup: empty clause group")
	}
	for len(tables) > 1 {
		bi, bj, bestCost := 0, 1, joinCost(tables[0], tables[1])
		for i := 0; i < len(tables); i++ {
			for j := i + 1; j < len(tables); j++ {
				cost := joinCost(tables[i], tables[j])
				if cost < bestCost {
					bi, bj, bestCost = i, j, cost
				}
			}
		}
		joined, err := tables[bi].NaturalJoin(tables[bj])
		if err != nil {
			return nil, err
		}
		next := make([]*table.Table, 0, len(tables)-1)
		for i, t := range tables {
			if i != bi && i != bj {
				next = append(next, t)
			}
		}
		next = append(next, joined)
		tables = next
	}
	return tables[0], nil
}

// joinCost estimates the cost of joining a and b: the product of their sizes
// when no column name is shared (a cross product), or their combined size
// scaled by the number of shared columns otherwise.
func joinCost(a, b *table.Table) int {
	shared := sharedColumnCount(a, b)
	if shared == 0 {
		return a.Size() * b.Size()
	}
	return (a.Size() + b.Size()) * shared
}

func sharedColumnCount(a, b *table.Table) int {
	count := 0
	for _, name := range a.Header() {
		if name == "" {
			continue
		}
		for _, oname := range b.Header() {
			if oname == name {
				count++
			}
		}
	}
	return count
}

// project builds the final tuple Result for a non-Boolean query: each
// result synonym is pulled from its connected group's contracted Table, or
// (when it never occurred in any clause) from the full domain of its
// declared kind.
func (e *Evaluator) project(q *pql.Query, uf *unionFind, groupTables map[string]*table.Table) (Result, error) {
	var componentTables []*table.Table
	seen := make(map[string]bool)

	for _, syn := range q.Result.Synonyms {
		if seen[syn] {
			continue
		}
		root := uf.find(syn)
		if gt, ok := groupTables[root]; ok {
			cols := sameComponentSynonyms(q.Result.Synonyms, uf, root, seen)
			projected, err := gt.Columns(cols)
			if err != nil {
				return Result{}, err
			}
			componentTables = append(componentTables, projected)
			continue
		}
		seen[syn] = true
		domainTable, err := fallbackDomainTable(e.kb, q.Declarations[syn], syn)
		if err != nil {
			return Result{}, err
		}
		componentTables = append(componentTables, domainTable)
	}

	final := componentTables[0]
	for _, t := range componentTables[1:] {
		joined, err := final.CrossJoin(t)
		if err != nil {
			return Result{}, err
		}
		final = joined
	}
	final, err := final.Columns(q.Result.Synonyms)
	if err != nil {
		return Result{}, err
	}
	return Result{Header: q.Result.Synonyms, Rows: final.Rows()}, nil
}

// sameComponentSynonyms returns every result synonym sharing root's
// component (in q.Result.Synonyms order), marking each as seen so project
// does not re-emit its owning table twice.
func sameComponentSynonyms(resultSyns []string, uf *unionFind, root string, seen map[string]bool) []string {
	var out []string
	for _, s := range resultSyns {
		if uf.find(s) == root {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}

// fallbackDomainTable returns every entity of kind kind, in a single-column
// Table named col, for a result synonym that never appeared in any clause.
func fallbackDomainTable(kb *pkb.PKB, kind pql.EntityKind, col string) (*table.Table, error) {
	var values []string
	if kind == pql.KindStmt || kind == pql.KindProgLine {
		nums, _, err := domainStmtNumbers(kb, kind)
		if err != nil {
			return nil, err
		}
		values = nums
	} else {
		domain, _, err := domainOf(kb, kind)
		if err != nil {
			return nil, err
		}
		for v := range domain {
			values = append(values, v)
		}
	}
	out, err := table.New([]string{col})
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := out.Insert(table.Row{v}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
