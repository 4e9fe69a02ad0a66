package table

import "testing"

func mustNew(t *testing.T, header []string) *Table {
	t.Helper()
	tb, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tb
}

func TestInsertAndContainsDeduplicates(t *testing.T) {
	tb := mustNew(t, []string{"a", "b"})
	for i := 0; i < 3; i++ {
		if err := tb.Insert(Row{"1", "2"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if !tb.Contains(Row{"1", "2"}) {
		t.Fatal("expected row to be present")
	}
	if tb.Size() != 1 {
		t.Fatalf("got size %d, want 1", tb.Size())
	}
}

func TestInsertWrongArityIsInvariantViolation(t *testing.T) {
	tb := mustNew(t, []string{"a", "b"})
	if err := tb.Insert(Row{"1"}); err == nil {
		t.Fatal("expected invariant violation for wrong arity")
	}
}

func TestNewRejectsDuplicateNonEmptyNames(t *testing.T) {
	if _, err := New([]string{"a", "a"}); err == nil {
		t.Fatal("expected error for duplicate column names")
	}
	if _, err := New([]string{"", ""}); err != nil {
		t.Fatalf("anonymous columns may repeat: %v", err)
	}
}

func TestNewRejectsNonPositiveArity(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty header")
	}
}

func TestDropColumnDeduplicates(t *testing.T) {
	tb := mustNew(t, []string{"a", "b"})
	tb.Insert(Row{"1", "x"})
	tb.Insert(Row{"1", "y"})
	out, err := tb.DropColumn("b")
	if err != nil {
		t.Fatalf("DropColumn: %v", err)
	}
	if out.Size() != 1 {
		t.Fatalf("got size %d, want 1 after dropping distinguishing column", out.Size())
	}
}

func TestFilterColumn(t *testing.T) {
	tb := mustNew(t, []string{"s"})
	tb.Insert(Row{"1"})
	tb.Insert(Row{"2"})
	tb.Insert(Row{"3"})
	out, err := tb.FilterColumn("s", map[string]bool{"1": true, "3": true})
	if err != nil {
		t.Fatalf("FilterColumn: %v", err)
	}
	if out.Size() != 2 || !out.Contains(Row{"1"}) || !out.Contains(Row{"3"}) {
		t.Fatalf("unexpected filtered rows: %v", out.Rows())
	}
}

func TestConcatenateRequiresMatchingArity(t *testing.T) {
	a := mustNew(t, []string{"x"})
	b := mustNew(t, []string{"x", "y"})
	if _, err := a.Concatenate(b); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestConcatenateUnionsRows(t *testing.T) {
	a := mustNew(t, []string{"x"})
	a.Insert(Row{"1"})
	b := mustNew(t, []string{"x"})
	b.Insert(Row{"1"})
	b.Insert(Row{"2"})
	out, err := a.Concatenate(b)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	if out.Size() != 2 {
		t.Fatalf("got size %d, want 2", out.Size())
	}
}

func TestInnerJoin(t *testing.T) {
	left := mustNew(t, []string{"a", "b"})
	left.Insert(Row{"1", "x"})
	left.Insert(Row{"2", "y"})
	right := mustNew(t, []string{"b", "c"})
	right.Insert(Row{"x", "p"})
	right.Insert(Row{"z", "q"})

	out, err := left.InnerJoin(right, []Pair{{Left: 1, Right: 0}})
	if err != nil {
		t.Fatalf("InnerJoin: %v", err)
	}
	want := []string{"a", "b", "c"}
	if got := out.Header(); !equalSlices(got, want) {
		t.Fatalf("got header %v, want %v", got, want)
	}
	if out.Size() != 1 || !out.Contains(Row{"1", "x", "p"}) {
		t.Fatalf("unexpected join result: %v", out.Rows())
	}
}

func TestNaturalJoinFallsBackToCrossProduct(t *testing.T) {
	a := mustNew(t, []string{"x"})
	a.Insert(Row{"1"})
	b := mustNew(t, []string{"y"})
	b.Insert(Row{"2"})
	b.Insert(Row{"3"})

	out, err := a.NaturalJoin(b)
	if err != nil {
		t.Fatalf("NaturalJoin: %v", err)
	}
	if out.Size() != 2 {
		t.Fatalf("cross product should have 2 rows, got %d", out.Size())
	}
}

func TestNaturalJoinOnSharedColumn(t *testing.T) {
	a := mustNew(t, []string{"s", "v"})
	a.Insert(Row{"1", "x"})
	b := mustNew(t, []string{"s", "p"})
	b.Insert(Row{"1", "foo"})
	b.Insert(Row{"2", "bar"})

	out, err := a.NaturalJoin(b)
	if err != nil {
		t.Fatalf("NaturalJoin: %v", err)
	}
	if out.Size() != 1 || !out.Contains(Row{"1", "x", "foo"}) {
		t.Fatalf("unexpected natural join result: %v", out.Rows())
	}
}

func TestDeleteRow(t *testing.T) {
	tb := mustNew(t, []string{"x"})
	tb.Insert(Row{"1"})
	tb.DeleteRow(Row{"1"})
	if tb.Contains(Row{"1"}) {
		t.Fatal("row should have been deleted")
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
