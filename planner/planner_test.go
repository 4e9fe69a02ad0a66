package planner

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darienchong/spa/extractor"
	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/pql"
	"github.com/darienchong/spa/simpleparser"
	"github.com/darienchong/spa/table"
)

func mustBuild(t *testing.T, src string) *pkb.PKB {
	t.Helper()
	_, kb, err := simpleparser.New(src).Parse()
	require.NoError(t, err)
	require.NoError(t, extractor.Run(kb))
	return kb
}

func evalQuery(t *testing.T, kb *pkb.PKB, query string) Result {
	t.Helper()
	q, err := pql.New(query).Parse()
	require.NoError(t, err)
	res, err := New(kb).Evaluate(q)
	require.NoError(t, err)
	return res
}

func rowStrings(rows []table.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	sort.Strings(out)
	return out
}

func TestQueryRoundTripFollowsStarFromScenario2(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; b=2; c=3; d=4; }`)
	res := evalQuery(t, kb, `assign a; Select a such that Follows*(1, a)`)
	require.False(t, res.Boolean)
	require.ElementsMatch(t, []string{"2", "3", "4"}, rowStrings(res.Rows))
}

func TestQueryBooleanTrueWhenStandaloneClauseHolds(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; b=2; }`)
	res := evalQuery(t, kb, `Select BOOLEAN such that Follows(1, 2)`)
	require.True(t, res.Boolean)
	require.True(t, res.BoolValue)
}

func TestQueryBooleanFalseShortCircuits(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; b=2; }`)
	res := evalQuery(t, kb, `Select BOOLEAN such that Follows(2, 1)`)
	require.True(t, res.Boolean)
	require.False(t, res.BoolValue)
}

func TestQueryUnconstrainedSynonymFallsBackToFullDomain(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; b=2; }`)
	res := evalQuery(t, kb, `assign a; Select a`)
	require.ElementsMatch(t, []string{"1", "2"}, rowStrings(res.Rows))
}

func TestQueryPatternAssignExactMatch(t *testing.T) {
	kb := mustBuild(t, `procedure p { x = y + 1; z = y; }`)
	res := evalQuery(t, kb, `assign a; Select a pattern a(_, "y + 1")`)
	require.ElementsMatch(t, []string{"1"}, rowStrings(res.Rows))
}

func TestQueryUsesSWithContainerPropagation(t *testing.T) {
	kb := mustBuild(t, `procedure p { while (c==0) { x = y; } }`)
	res := evalQuery(t, kb, `stmt s; Select s such that Uses(s, "y")`)
	require.ElementsMatch(t, []string{"1", "2"}, rowStrings(res.Rows))
}

func TestQueryEmptyResultWhenNoWitnesses(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; }`)
	res := evalQuery(t, kb, `assign a; Select a such that Follows(a, a)`)
	require.Empty(t, res.Rows)
}

func TestQueryTupleResultJoinsDisjointComponents(t *testing.T) {
	kb := mustBuild(t, `procedure p { a=1; b=2; }`)
	res := evalQuery(t, kb, `assign a; variable v; Select <a, v>`)
	require.Equal(t, []string{"a", "v"}, res.Header)
	require.NotEmpty(t, res.Rows)
	for _, r := range res.Rows {
		require.Len(t, r, 2)
	}
}
