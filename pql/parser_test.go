package pql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarationAndSingleSynonymSelect(t *testing.T) {
	q, err := New(`stmt s; Select s`).Parse()
	require.NoError(t, err)
	require.Equal(t, KindStmt, q.Declarations["s"])
	require.Equal(t, ResultSpec{Synonyms: []string{"s"}}, q.Result)
	require.Empty(t, q.Clauses)
}

func TestParseBooleanResult(t *testing.T) {
	q, err := New(`assign a; Select BOOLEAN such that Follows(1, a)`).Parse()
	require.NoError(t, err)
	require.True(t, q.Result.Boolean)
}

func TestParseTupleResult(t *testing.T) {
	q, err := New(`assign a; variable v; Select <a, v>`).Parse()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "v"}, q.Result.Synonyms)
}

func TestParseSuchThatFollowsStarWithIntegerAndSynonym(t *testing.T) {
	q, err := New(`assign a; Select a such that Follows*(1, a)`).Parse()
	require.NoError(t, err)
	require.Len(t, q.Clauses, 1)
	c := q.Clauses[0]
	require.Equal(t, RelFollowsT, c.Relation)
	require.Equal(t, Param{Kind: ParamInteger, Value: "1"}, c.Args[0])
	require.Equal(t, Param{Kind: ParamSynonym, Synonym: "a"}, c.Args[1])
}

func TestParseUsesWithProcedureFirstArg(t *testing.T) {
	q, err := New(`procedure p; variable v; Select v such that Uses(p, v)`).Parse()
	require.NoError(t, err)
	require.Len(t, q.Clauses, 1)
	require.Equal(t, RelUses, q.Clauses[0].Relation)
	require.Equal(t, "p", q.Clauses[0].Args[0].Synonym)
}

func TestParseModifiesWithWildcardVariable(t *testing.T) {
	q, err := New(`stmt s; Select s such that Modifies(s, _)`).Parse()
	require.NoError(t, err)
	require.Equal(t, ParamWildcard, q.Clauses[0].Args[1].Kind)
}

func TestParsePatternAssignExactExpression(t *testing.T) {
	q, err := New(`assign a; variable v; Select a pattern a(v, "x + 1")`).Parse()
	require.NoError(t, err)
	require.Len(t, q.Clauses, 1)
	c := q.Clauses[0]
	require.Equal(t, RelPatternAssign, c.Relation)
	require.Equal(t, ParamExprExact, c.Args[2].Kind)
	require.Equal(t, "x 1 +", c.Args[2].Value)
}

func TestParsePatternAssignPartialExpression(t *testing.T) {
	q, err := New(`assign a; Select a pattern a(_, _"x"_)`).Parse()
	require.NoError(t, err)
	c := q.Clauses[0]
	require.Equal(t, ParamExprSubexpr, c.Args[2].Kind)
	require.Equal(t, "x", c.Args[2].Value)
}

func TestParsePatternAssignWildcardExpression(t *testing.T) {
	q, err := New(`assign a; Select a pattern a(_, _)`).Parse()
	require.NoError(t, err)
	c := q.Clauses[0]
	require.Equal(t, ParamWildcard, c.Args[2].Kind)
}

func TestParsePatternIfAndWhile(t *testing.T) {
	q, err := New(`if ifs; while w; variable v; Select v pattern ifs(v, _, _) pattern w(v, _)`).Parse()
	require.NoError(t, err)
	require.Len(t, q.Clauses, 2)
	require.Equal(t, RelPatternIf, q.Clauses[0].Relation)
	require.Equal(t, RelPatternWhile, q.Clauses[1].Relation)
}

func TestParseWithStmtNumberAttr(t *testing.T) {
	q, err := New(`call c; Select c with c.stmt# = 5`).Parse()
	require.NoError(t, err)
	c := q.Clauses[0]
	require.Equal(t, RelWith, c.Relation)
	require.Equal(t, "stmt#", c.Args[0].Attr)
	require.Equal(t, Param{Kind: ParamInteger, Value: "5"}, c.Args[1])
}

func TestParseWithProcNameAttr(t *testing.T) {
	q, err := New(`call c; Select c with c.procName = "helper"`).Parse()
	require.NoError(t, err)
	c := q.Clauses[0]
	require.Equal(t, "procName", c.Args[0].Attr)
	require.Equal(t, Param{Kind: ParamQuotedName, Value: "helper"}, c.Args[1])
}

func TestParseRejectsUndeclaredSynonym(t *testing.T) {
	_, err := New(`Select s`).Parse()
	require.Error(t, err)
}

func TestParseRejectsDuplicateDeclaration(t *testing.T) {
	_, err := New(`stmt s; assign s; Select s`).Parse()
	require.Error(t, err)
}

func TestParseRejectsMistypedSynonymInPattern(t *testing.T) {
	_, err := New(`stmt s; Select s pattern s(_, _)`).Parse()
	require.Error(t, err)
}

func TestParseRejectsAttrMismatch(t *testing.T) {
	_, err := New(`variable v; Select v with v.stmt# = 1`).Parse()
	require.Error(t, err)
}

func TestParseMultiClauseQueryProducesExpectedClauseSlice(t *testing.T) {
	q, err := New(`assign a; variable v; Select a such that Modifies(a, v) pattern a(v, _)`).Parse()
	require.NoError(t, err)

	want := []Clause{
		{
			Relation: RelModifies,
			Args: []Param{
				{Kind: ParamSynonym, Synonym: "a"},
				{Kind: ParamSynonym, Synonym: "v"},
			},
		},
		{
			Relation: RelPatternAssign,
			Args: []Param{
				{Kind: ParamSynonym, Synonym: "a"},
				{Kind: ParamSynonym, Synonym: "v"},
				{Kind: ParamWildcard},
			},
		},
	}
	if diff := cmp.Diff(want, q.Clauses); diff != "" {
		t.Fatalf("unexpected clause slice (-want +got):\n%s", diff)
	}
}
