package planner

import (
	"strconv"
	"strings"

	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/pql"
	"github.com/darienchong/spa/spaerr"
	"github.com/darienchong/spa/table"
)

// baseRelationTable returns the PKB table backing a such-that relation, with
// its native two-column {"a","b"} (or {"p","q"} for Calls/Calls*) header.
func baseRelationTable(kb *pkb.PKB, rel pql.Relation) (*table.Table, error) {
	switch rel {
	case pql.RelFollows:
		return kb.FollowsTable(), nil
	case pql.RelFollowsT:
		return kb.FollowsStarTable(), nil
	case pql.RelParent:
		return kb.ParentTable(), nil
	case pql.RelParentT:
		return kb.ParentStarTable(), nil
	case pql.RelCalls:
		return kb.CallsTable(), nil
	case pql.RelCallsT:
		return kb.CallsStarTable(), nil
	case pql.RelNext:
		return kb.NextTable(), nil
	case pql.RelNextT:
		return kb.NextStarTable(), nil
	case pql.RelAffects:
		return kb.AffectsTable(), nil
	case pql.RelAffectsT:
		return kb.AffectsStarTable(), nil
	default:
		return nil, spaerr.NewInvariantViolation("no base table for relation " + string(rel))
	}
}

// usesOrModifiesTable picks the S- or P-indexed table for Uses/Modifies
// depending on the clause's first argument: a synonym declared procedure,
// or a quoted literal (which per PQL's grammar always names a procedure in
// this slot), selects the P table; a synonym declared stmt-like, or an
// integer literal, selects the S table.
func usesOrModifiesTable(kb *pkb.PKB, q *pql.Query, rel pql.Relation, first pql.Param) *table.Table {
	isProc := first.Kind == pql.ParamQuotedName
	if first.Kind == pql.ParamSynonym {
		isProc = q.Declarations[first.Synonym] == pql.KindProcedure
	}
	if isProc {
		if rel == pql.RelUses {
			return kb.UsesPTable()
		}
		return kb.ModifiesPTable()
	}
	if rel == pql.RelUses {
		return kb.UsesSTable()
	}
	return kb.ModifiesSTable()
}

// domainOf returns the set of values an EntityKind's synonym may legally
// take, or (nil, false) when the kind imposes no restriction beyond "is a
// statement" (KindStmt, KindProgLine), in which case the caller should skip
// filtering entirely and let the relation's own rows define the domain.
func domainOf(kb *pkb.PKB, kind pql.EntityKind) (map[string]bool, bool, error) {
	var col *table.Table
	var colName string
	switch kind {
	case pql.KindRead:
		col, colName = kb.ReadTable(), "s"
	case pql.KindPrint:
		col, colName = kb.PrintTable(), "s"
	case pql.KindWhile:
		col, colName = kb.WhileTable(), "s"
	case pql.KindIf:
		col, colName = kb.IfTable(), "s"
	case pql.KindAssign:
		col, colName = kb.AssignTable(), "s"
	case pql.KindCall:
		col, colName = kb.CallTable(), "s"
	case pql.KindVariable:
		col, colName = kb.VariableTable(), "name"
	case pql.KindConstant:
		col, colName = kb.ConstantTable(), "name"
	case pql.KindProcedure:
		col, colName = kb.ProcedureTable(), "name"
	default:
		return nil, false, nil
	}
	values, err := col.GetColumn(colName)
	if err != nil {
		return nil, false, err
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set, true, nil
}

// bindArgs applies every positional clause argument's filter against base,
// then projects down to one column per distinct synonym, renamed to the
// synonym's own name, in first-occurrence order. Wildcard and literal
// arguments are filtered (literals) or left alone (wildcards) and then
// dropped from the result; a synonym reused at more than one position in
// the same clause (e.g. Follows(s, s)) is handled by requiring the reused
// positions be equal before collapsing them into a single column.
func bindArgs(kb *pkb.PKB, base *table.Table, declKinds []pql.EntityKind, args []pql.Param) (*table.Table, error) {
	native := base.Header()
	cur := base
	var err error

	for i, arg := range args {
		switch arg.Kind {
		case pql.ParamWildcard:
			// no filter
		case pql.ParamInteger, pql.ParamQuotedName:
			cur, err = cur.FilterColumn(native[i], map[string]bool{arg.Value: true})
			if err != nil {
				return nil, err
			}
		case pql.ParamSynonym:
			if domain, restricted, derr := domainOf(kb, declKinds[i]); derr != nil {
				return nil, derr
			} else if restricted {
				cur, err = cur.FilterColumn(native[i], domain)
				if err != nil {
					return nil, err
				}
			}
		default:
			return nil, spaerr.NewInvariantViolation("unsupported clause argument kind")
		}
	}

	positions := make(map[string][]int)
	for i, arg := range args {
		if arg.Kind == pql.ParamSynonym {
			positions[arg.Synonym] = append(positions[arg.Synonym], i)
		}
	}
	for _, idxs := range positions {
		for k := 1; k < len(idxs); k++ {
			cur, err = filterColumnsEqual(cur, native[idxs[0]], native[idxs[k]])
			if err != nil {
				return nil, err
			}
		}
	}

	var keepNative, desired []string
	seen := make(map[string]bool)
	for i, arg := range args {
		if arg.Kind != pql.ParamSynonym || seen[arg.Synonym] {
			continue
		}
		seen[arg.Synonym] = true
		keepNative = append(keepNative, native[i])
		desired = append(desired, arg.Synonym)
	}
	if len(keepNative) == 0 {
		// Every argument was a literal or wildcard: this clause binds no
		// synonym and is only ever evaluated as a standalone boolean, so
		// the caller looks at row count, not column identity.
		return cur, nil
	}
	out, err := cur.Columns(keepNative)
	if err != nil {
		return nil, err
	}
	if err := out.SetHeader(desired); err != nil {
		return nil, err
	}
	return out, nil
}

// filterColumnsEqual keeps only rows where colA and colB carry equal values.
func filterColumnsEqual(t *table.Table, colA, colB string) (*table.Table, error) {
	ia, ib := indexOfHeader(t, colA), indexOfHeader(t, colB)
	if ia < 0 || ib < 0 {
		return nil, spaerr.NewInvariantViolation("filterColumnsEqual: column not found")
	}
	out, err := table.New(t.Header())
	if err != nil {
		return nil, err
	}
	for _, r := range t.Rows() {
		if r[ia] == r[ib] {
			if err := out.Insert(r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// materializeRelRef handles Follows/Parent/Calls/Next/Affects (with their
// '*' forms) and Uses/Modifies, each a binary relation over {"a","b"}-style
// native columns.
func materializeRelRef(kb *pkb.PKB, q *pql.Query, c pql.Clause) (*table.Table, error) {
	var base *table.Table
	var err error
	if c.Relation == pql.RelUses || c.Relation == pql.RelModifies {
		base = usesOrModifiesTable(kb, q, c.Relation, c.Args[0])
	} else {
		base, err = baseRelationTable(kb, c.Relation)
		if err != nil {
			return nil, err
		}
	}
	declKinds := make([]pql.EntityKind, len(c.Args))
	for i, arg := range c.Args {
		if arg.Kind == pql.ParamSynonym {
			declKinds[i] = q.Declarations[arg.Synonym]
		}
	}
	return bindArgs(kb, base, declKinds, c.Args)
}

// materializePattern handles pattern-assign/if/while clauses. Args[0] is
// always the pattern synonym itself (bound to the matching statement
// number); Args[1] is the entRef for the modified/referenced variable;
// pattern-assign additionally carries an expr-spec in Args[2].
func materializePattern(kb *pkb.PKB, q *pql.Query, c pql.Clause) (*table.Table, error) {
	var base *table.Table
	switch c.Relation {
	case pql.RelPatternAssign:
		base = kb.PatternAssignTable() // {"s","lhs","rhs"}
	case pql.RelPatternIf:
		base = kb.PatternIfTable() // {"s","v"}
	case pql.RelPatternWhile:
		base = kb.PatternWhileTable() // {"s","v"}
	default:
		return nil, spaerr.NewInvariantViolation("not a pattern relation: " + string(c.Relation))
	}

	cur := base
	var err error

	if c.Relation == pql.RelPatternAssign {
		exprArg := c.Args[2]
		switch exprArg.Kind {
		case pql.ParamWildcard:
			// no filter
		case pql.ParamExprExact:
			cur, err = filterExprColumn(cur, "rhs", func(rhs string) bool { return rhs == exprArg.Value })
			if err != nil {
				return nil, err
			}
		case pql.ParamExprSubexpr:
			cur, err = filterExprColumn(cur, "rhs", func(rhs string) bool { return containsPostfix(rhs, exprArg.Value) })
			if err != nil {
				return nil, err
			}
		}
		cur, err = cur.DropColumn("rhs")
		if err != nil {
			return nil, err
		}
	}

	entArgs := c.Args[:2]
	declKinds := make([]pql.EntityKind, len(entArgs))
	if entArgs[1].Kind == pql.ParamSynonym {
		declKinds[1] = q.Declarations[entArgs[1].Synonym]
	}
	return bindArgs(kb, cur, declKinds, entArgs)
}

func filterExprColumn(t *table.Table, col string, keep func(string) bool) (*table.Table, error) {
	values, err := t.GetColumn(col)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		if keep(v) {
			allowed[v] = true
		}
	}
	return t.FilterColumn(col, allowed)
}

// containsPostfix reports whether needle appears as a contiguous
// subsequence of haystack's space-separated postfix tokens, matching
// PQL's "appears as a sub-expression" semantics for pattern clauses.
func containsPostfix(haystack, needle string) bool {
	h := strings.Fields(haystack)
	n := strings.Fields(needle)
	if len(n) == 0 || len(n) > len(h) {
		return false
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if h[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// materializeWith handles a with-clause equality filter by resolving each
// side's attrRef into a per-statement/entity value table, then inner-joins
// the two sides on value equality.
func materializeWith(kb *pkb.PKB, q *pql.Query, c pql.Clause) (*table.Table, error) {
	left, err := attrValueTable(kb, q, c.Args[0], "__with_l")
	if err != nil {
		return nil, err
	}
	right, err := attrValueTable(kb, q, c.Args[1], "__with_r")
	if err != nil {
		return nil, err
	}
	joined, err := left.InnerJoin(right, []table.Pair{{Left: indexOfHeader(left, "__with_l_val"), Right: indexOfHeader(right, "__with_r_val")}})
	if err != nil {
		return nil, err
	}
	joined, err = joined.DropColumn("__with_l_val")
	if err != nil {
		return nil, err
	}
	if hasHeader(joined, "__with_r_val") {
		joined, err = joined.DropColumn("__with_r_val")
		if err != nil {
			return nil, err
		}
	}
	return joined, nil
}

func indexOfHeader(t *table.Table, name string) int {
	for i, h := range t.Header() {
		if h == name {
			return i
		}
	}
	return -1
}

func hasHeader(t *table.Table, name string) bool {
	return indexOfHeader(t, name) >= 0
}

// attrValueTable turns one with-clause ref into a two-column table: the
// synonym column (named after the synonym, or omitted for a bare literal)
// and a value column named prefix+"_val", used purely to drive the equi-join.
func attrValueTable(kb *pkb.PKB, q *pql.Query, arg pql.Param, prefix string) (*table.Table, error) {
	valCol := prefix + "_val"
	if arg.Kind != pql.ParamSynonym {
		t, err := table.New([]string{valCol})
		if err != nil {
			return nil, err
		}
		if err := t.Insert(table.Row{arg.Value}); err != nil {
			return nil, err
		}
		return t, nil
	}

	synCol := arg.Synonym
	kind := q.Declarations[arg.Synonym]
	var rows []table.Row
	switch arg.Attr {
	case "stmt#":
		domain, _, err := domainStmtNumbers(kb, kind)
		if err != nil {
			return nil, err
		}
		for _, s := range domain {
			rows = append(rows, table.Row{s, s})
		}
	case "varName":
		if kind == pql.KindRead || kind == pql.KindPrint {
			rel := kb.ReadVarTable()
			if kind == pql.KindPrint {
				rel = kb.PrintVarTable()
			}
			rows = rel.Rows() // {stmt, variable}
			break
		}
		domain, _, err := domainOf(kb, pql.KindVariable)
		if err != nil {
			return nil, err
		}
		for v := range domain {
			rows = append(rows, table.Row{v, v})
		}
	case "procName":
		if kind == pql.KindCall {
			rows = kb.CallProcTable().Rows() // {stmt, callee}
			break
		}
		domain, _, err := domainOf(kb, pql.KindProcedure)
		if err != nil {
			return nil, err
		}
		for v := range domain {
			rows = append(rows, table.Row{v, v})
		}
	case "value":
		domain, _, err := domainOf(kb, pql.KindConstant)
		if err != nil {
			return nil, err
		}
		for v := range domain {
			rows = append(rows, table.Row{v, v})
		}
	default:
		return nil, spaerr.NewInvariantViolation("unknown attrName " + arg.Attr)
	}

	t, err := table.New([]string{synCol, valCol})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := t.Insert(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func domainStmtNumbers(kb *pkb.PKB, kind pql.EntityKind) ([]string, bool, error) {
	if kind == pql.KindStmt || kind == pql.KindProgLine {
		nums := make([]string, kb.NumStmts())
		for i := 1; i <= kb.NumStmts(); i++ {
			nums[i-1] = strconv.Itoa(i)
		}
		return nums, false, nil
	}
	domain, _, err := domainOf(kb, kind)
	if err != nil {
		return nil, false, err
	}
	out := make([]string, 0, len(domain))
	for v := range domain {
		out = append(out, v)
	}
	return out, true, nil
}

// materializeClause dispatches one clause to its relation-family
// materializer.
func materializeClause(kb *pkb.PKB, q *pql.Query, c pql.Clause) (*table.Table, error) {
	switch c.Relation {
	case pql.RelPatternAssign, pql.RelPatternIf, pql.RelPatternWhile:
		return materializePattern(kb, q, c)
	case pql.RelWith:
		return materializeWith(kb, q, c)
	default:
		return materializeRelRef(kb, q, c)
	}
}
