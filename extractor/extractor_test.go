package extractor

import (
	"testing"

	"github.com/darienchong/spa/pkb"
	"github.com/darienchong/spa/simpleparser"
)

func mustRun(t *testing.T, src string) *pkb.PKB {
	t.Helper()
	_, kb, err := simpleparser.New(src).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := Run(kb); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return kb
}

func TestParentStarChainOfWhiles(t *testing.T) {
	kb := mustRun(t, `procedure p { while (x==0) { while (y==0) { while (z==0) { a = 1; } } } }`)
	want := [][2]string{{"1", "2"}, {"1", "3"}, {"1", "4"}, {"2", "3"}, {"2", "4"}, {"3", "4"}}
	for _, w := range want {
		if !kb.ParentStarTable().Contains([]string{w[0], w[1]}) {
			t.Errorf("expected Parent*(%s,%s)", w[0], w[1])
		}
	}
	if kb.ParentStarTable().Size() != 6 {
		t.Errorf("expected Parent* size 6, got %d", kb.ParentStarTable().Size())
	}
}

func TestFollowsStarChainOfAssigns(t *testing.T) {
	kb := mustRun(t, `procedure p { a=1; b=2; c=3; d=4; }`)
	want := [][2]string{{"1", "2"}, {"1", "3"}, {"1", "4"}, {"2", "3"}, {"2", "4"}, {"3", "4"}}
	for _, w := range want {
		if !kb.FollowsStarTable().Contains([]string{w[0], w[1]}) {
			t.Errorf("expected Follows*(%s,%s)", w[0], w[1])
		}
	}
	if kb.FollowsStarTable().Size() != 6 {
		t.Errorf("expected Follows* size 6, got %d", kb.FollowsStarTable().Size())
	}
}

func TestIndirectUsesPThroughCallsStar(t *testing.T) {
	kb := mustRun(t, `procedure p1 { call p2; } procedure p2 { call p3; } procedure p3 { print x; }`)
	for _, p := range []string{"p1", "p2", "p3"} {
		if !kb.UsesPTable().Contains([]string{p, "x"}) {
			t.Errorf("expected UsesP(%s,x)", p)
		}
	}
}

func TestContainerUsesPropagationWithCallInside(t *testing.T) {
	kb := mustRun(t, `procedure p1 { while (c==0) { call p2; } } procedure p2 { x = 5; read y; }`)
	wantModifiesS := [][2]string{{"1", "x"}, {"1", "y"}, {"2", "x"}, {"2", "y"}, {"3", "x"}, {"4", "y"}}
	for _, w := range wantModifiesS {
		if !kb.ModifiesSTable().Contains([]string{w[0], w[1]}) {
			t.Errorf("expected ModifiesS(%s,%s)", w[0], w[1])
		}
	}
	wantModifiesP := [][2]string{{"p1", "x"}, {"p1", "y"}, {"p2", "x"}, {"p2", "y"}}
	for _, w := range wantModifiesP {
		if !kb.ModifiesPTable().Contains([]string{w[0], w[1]}) {
			t.Errorf("expected ModifiesP(%s,%s)", w[0], w[1])
		}
	}
}

func TestCyclicCallsIsDesignSemanticError(t *testing.T) {
	_, kb, err := simpleparser.New(`procedure a { call b; } procedure b { call a; }`).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := Run(kb); err == nil {
		t.Fatal("expected a design-semantic error for a cyclic call graph")
	}
}

func TestCallToUndefinedProcedureIsDesignSemanticError(t *testing.T) {
	_, kb, err := simpleparser.New(`procedure a { call ghost; }`).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := Run(kb); err == nil {
		t.Fatal("expected a design-semantic error for a call to an undeclared procedure")
	}
}

// TestAffectsOnReferenceExample reconstructs the 14-statement fixture used
// to validate Affects extraction, built directly against the PKB rather
// than through simpleparser since it exercises the extractor in isolation
// from parsing.
func TestAffectsOnReferenceExample(t *testing.T) {
	kb := pkb.New(14)
	mustOK := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustOK(kb.AddProcedure("second"))
	mustOK(kb.AddProcedure("third"))

	mustOK(kb.AddAssign("second", 1, "x", nil, nil, ""))
	mustOK(kb.AddAssign("second", 2, "i", nil, nil, ""))
	mustOK(kb.AddWhile("second", 3, nil))
	mustOK(kb.AddAssign("second", 4, "x", []string{"x", "y"}, nil, "x y +"))
	mustOK(kb.AddCall("second", 5, "third"))
	mustOK(kb.AddAssign("second", 6, "i", []string{"i"}, nil, "i 1 +"))
	mustOK(kb.AddIf("second", 7, nil))
	mustOK(kb.AddAssign("second", 8, "x", []string{"x"}, nil, "x 1 +"))
	mustOK(kb.AddAssign("second", 9, "z", nil, nil, ""))
	mustOK(kb.AddAssign("second", 10, "z", []string{"i", "x", "z"}, nil, "i x z + +"))
	mustOK(kb.AddAssign("second", 11, "y", []string{"z"}, nil, "z"))
	mustOK(kb.AddAssign("second", 12, "x", []string{"x", "y", "z"}, nil, "x y z + +"))
	mustOK(kb.AddAssign("second", 13, "z", nil, nil, ""))
	mustOK(kb.AddAssign("second", 14, "v", []string{"z"}, nil, "z"))

	for _, e := range [][2]int{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 3}, {3, 7}, {7, 8}, {7, 9}, {8, 10}, {9, 10}, {10, 11}, {11, 12}, {13, 14}} {
		mustOK(kb.AddCFGEdge(e[0], e[1]))
	}

	if err := Run(kb); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := [][2]string{
		{"1", "4"}, {"1", "8"}, {"1", "10"}, {"1", "12"},
		{"2", "6"}, {"2", "10"},
		{"4", "4"}, {"4", "8"}, {"4", "10"}, {"4", "12"},
		{"6", "6"}, {"6", "10"},
		{"8", "10"}, {"8", "12"},
		{"9", "10"},
		{"10", "11"}, {"10", "12"},
		{"11", "12"},
		{"13", "14"},
	}
	for _, w := range want {
		if !kb.AffectsTable().Contains([]string{w[0], w[1]}) {
			t.Errorf("expected Affects(%s,%s)", w[0], w[1])
		}
	}
	if kb.AffectsTable().Size() != len(want) {
		t.Errorf("expected Affects size %d, got %d", len(want), kb.AffectsTable().Size())
	}
}
