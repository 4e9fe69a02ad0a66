package pkb

import "testing"

func TestAddReadPopulatesModifiesAndVariable(t *testing.T) {
	k := New(3)
	if err := k.AddProcedure("main"); err != nil {
		t.Fatal(err)
	}
	if err := k.AddRead("main", 1, "x"); err != nil {
		t.Fatal(err)
	}
	if !k.ReadTable().Contains([]string{"1"}) {
		t.Error("expected Read(1)")
	}
	if !k.VariableTable().Contains([]string{"x"}) {
		t.Error("expected Variable(x)")
	}
	if !k.ModifiesSTable().Contains([]string{"1", "x"}) {
		t.Error("expected ModifiesS(1,x)")
	}
	if !k.ModifiesPTable().Contains([]string{"main", "x"}) {
		t.Error("expected ModifiesP(main,x)")
	}
}

func TestAddFollowsRejectsOutOfOrderPair(t *testing.T) {
	k := New(3)
	if err := k.AddFollows(2, 1); err == nil {
		t.Fatal("expected invariant violation for Follows(2,1)")
	}
}

func TestNextTableMaterializesFromCFG(t *testing.T) {
	k := New(3)
	if err := k.AddCFGEdge(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := k.AddCFGEdge(2, 3); err != nil {
		t.Fatal(err)
	}
	if !k.NextTable().Contains([]string{"1", "2"}) {
		t.Error("expected Next(1,2)")
	}
	if !k.NextStarTable().Contains([]string{"1", "3"}) {
		t.Error("expected Next*(1,3) via transitive closure")
	}
}
