package simpleparser

import "testing"

const sampleProgram = `
procedure main {
  x = 1;
  read y;
  while (x < y) {
    x = x + 1;
    if (x == 2) then {
      print x;
    } else {
      call helper;
    }
  }
  print y;
}
procedure helper {
  z = x + y;
}
`

func TestParseAssignsStatementNumbersInTextualOrder(t *testing.T) {
	p := New(sampleProgram)
	prog, kb, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(prog.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(prog.Procedures))
	}
	if kb.NumStmts() != 9 {
		t.Fatalf("expected 9 statements total, got %d", kb.NumStmts())
	}
}

func TestParseFollowsAndParent(t *testing.T) {
	_, kb, err := New(sampleProgram).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	// stmt 1: x=1, 2: read y, 3: while, 4: x=x+1, 5: if, 6: print x, 7: call helper, 8: print y
	if !kb.FollowsTable().Contains([]string{"1", "2"}) {
		t.Error("expected Follows(1,2)")
	}
	if !kb.ParentTable().Contains([]string{"3", "4"}) {
		t.Error("expected Parent(3,4): while body statement")
	}
	if !kb.ParentTable().Contains([]string{"5", "6"}) {
		t.Error("expected Parent(5,6): if-then statement")
	}
	if !kb.ParentTable().Contains([]string{"5", "7"}) {
		t.Error("expected Parent(5,7): if-else statement")
	}
}

func TestParseControlFlowEdges(t *testing.T) {
	_, kb, err := New(sampleProgram).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cfg := kb.CFG()
	// while (3) branches into its body (4) and, on exit, into the trailing print (8)
	if !cfg.Get(3, 4) {
		t.Error("expected CFG edge 3->4 into while body")
	}
	if !cfg.Get(3, 8) {
		t.Error("expected CFG edge 3->8 on while exit")
	}
	// if (5) branches into then (6) and else (7); both rejoin the while header (3)
	if !cfg.Get(5, 6) || !cfg.Get(5, 7) {
		t.Error("expected CFG edges 5->6 and 5->7")
	}
	if !cfg.Get(6, 3) || !cfg.Get(7, 3) {
		t.Error("expected both branches of the if to loop back to the while header")
	}
}

func TestParseAssignPostfixExpression(t *testing.T) {
	_, kb, err := New(sampleProgram).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !kb.PatternAssignTable().Contains([]string{"4", "x", "x 1 +"}) {
		t.Error("expected postfix form of x = x + 1 to be 'x 1 +'")
	}
}

func TestParseRejectsNumberAtStatementStart(t *testing.T) {
	_, _, err := New("procedure p { 1 = 2; }").Parse()
	if err == nil {
		t.Fatal("expected a syntax error for an assignment starting with a number")
	}
}

func TestParseRejectsDuplicateProcedure(t *testing.T) {
	src := `procedure p { x = 1; } procedure p { y = 2; }`
	_, _, err := New(src).Parse()
	if err == nil {
		t.Fatal("expected a design-semantic error for duplicate procedure names")
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `procedure p { x = a + b * c - d; }`
	_, kb, err := New(src).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !kb.PatternAssignTable().Contains([]string{"1", "x", "a b c * + d -"}) {
		t.Error("expected * to bind tighter than + and -, left-to-right")
	}
}

func TestParseConditionWithBooleanCombination(t *testing.T) {
	src := `procedure p {
  while ((x < 1) && (!(y > 2))) {
    z = 1;
  }
}`
	_, kb, err := New(src).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !kb.PatternWhileTable().Contains([]string{"1", "x"}) {
		t.Error("expected while condition to reference x")
	}
	if !kb.PatternWhileTable().Contains([]string{"1", "y"}) {
		t.Error("expected while condition to reference y")
	}
}
