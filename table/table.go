// Package table implements the Table relation:
// an ordered header of column names over a set of fixed-length string rows.
// Every higher layer (pkb, extractor, planner) uses Table as its sole
// data-carrier, mirroring the single shared Table abstraction of the
// original source (Team26/Code26/src/spa/src/Table.cpp,
// Team26/Code26/src/spa/src/utils/Table.cpp).
package table

import (
	"sort"
	"strings"

	"github.com/darienchong/spa/spaerr"
)

// Row is one tuple of a Table. Its length always equals the arity of the
// Table's header.
type Row []string

func (r Row) key() string {
	return strings.Join(r, "\x00")
}

// Table is an in-memory relation: an ordered list of column names and a
// set of distinct rows. Column names may be empty ("") to mark an
// anonymous column, which does not participate in NaturalJoin.
type Table struct {
	header []string
	rows   map[string]Row
}

// New creates an empty Table with the given column header. Column names
// must not repeat unless they are empty (anonymous).
func New(header []string) (*Table, error) {
	if len(header) == 0 {
		return nil, spaerr.NewInvariantViolation("table header must have positive arity")
	}
	if err := checkDistinctNames(header); err != nil {
		return nil, err
	}
	hdr := make([]string, len(header))
	copy(hdr, header)
	return &Table{header: hdr, rows: make(map[string]Row)}, nil
}

func checkDistinctNames(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			continue
		}
		if seen[name] {
			return spaerr.NewInvariantViolation("duplicate column name " + name)
		}
		seen[name] = true
	}
	return nil
}

// Header returns a copy of the column names, in order.
func (t *Table) Header() []string {
	hdr := make([]string, len(t.header))
	copy(hdr, t.header)
	return hdr
}

// SetHeader replaces the column names in place. The new header must have
// the same arity as the current one and must not repeat a non-empty name.
func (t *Table) SetHeader(header []string) error {
	if len(header) != len(t.header) {
		return spaerr.NewInvariantViolation("SetHeader: arity mismatch")
	}
	if err := checkDistinctNames(header); err != nil {
		return err
	}
	hdr := make([]string, len(header))
	copy(hdr, header)
	t.header = hdr
	return nil
}

// Arity returns the number of columns.
func (t *Table) Arity() int { return len(t.header) }

// Insert adds row to the table. Duplicate rows collapse silently (rows
// form a set); wrong-arity rows are an invariant violation.
func (t *Table) Insert(row Row) error {
	if len(row) != len(t.header) {
		return spaerr.NewInvariantViolation("Insert: row arity does not match header arity")
	}
	t.rows[row.key()] = append(Row(nil), row...)
	return nil
}

// Contains reports whether row is present.
func (t *Table) Contains(row Row) bool {
	_, ok := t.rows[row.key()]
	return ok
}

// DeleteRow removes exactly the given row, if present.
func (t *Table) DeleteRow(row Row) {
	delete(t.rows, row.key())
}

// Size returns the number of distinct rows.
func (t *Table) Size() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns a defensive copy of every row, in unspecified order.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, append(Row(nil), r...))
	}
	return out
}

// indexOf returns the column index for name, or -1.
func (t *Table) indexOf(name string) int {
	for i, h := range t.header {
		if h == name {
			return i
		}
	}
	return -1
}

// GetColumn returns the set of distinct values in the named column.
func (t *Table) GetColumn(name string) ([]string, error) {
	i := t.indexOf(name)
	if i < 0 {
		return nil, spaerr.NewInvariantViolation("GetColumn: no such column " + name)
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		if !seen[r[i]] {
			seen[r[i]] = true
			out = append(out, r[i])
		}
	}
	return out, nil
}

// Columns projects onto the named columns, in the given order. A repeated
// non-empty name is rejected, as in New; projection collapses any rows that
// become identical.
func (t *Table) Columns(names []string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j := t.indexOf(name)
		if j < 0 {
			return nil, spaerr.NewInvariantViolation("Columns: no such column " + name)
		}
		idx[i] = j
	}
	out, err := New(names)
	if err != nil {
		return nil, err
	}
	for _, r := range t.rows {
		projected := make(Row, len(idx))
		for i, j := range idx {
			projected[i] = r[j]
		}
		if err := out.Insert(projected); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropColumn removes the named column; the remaining rows deduplicate.
func (t *Table) DropColumn(name string) (*Table, error) {
	i := t.indexOf(name)
	if i < 0 {
		return nil, spaerr.NewInvariantViolation("DropColumn: no such column " + name)
	}
	names := make([]string, 0, len(t.header)-1)
	for j, h := range t.header {
		if j != i {
			names = append(names, h)
		}
	}
	out, err := New(names)
	if err != nil {
		return nil, err
	}
	for _, r := range t.rows {
		projected := make(Row, 0, len(r)-1)
		for j, v := range r {
			if j != i {
				projected = append(projected, v)
			}
		}
		if err := out.Insert(projected); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FilterColumn keeps only rows whose value at the named column is in
// allowed.
func (t *Table) FilterColumn(name string, allowed map[string]bool) (*Table, error) {
	i := t.indexOf(name)
	if i < 0 {
		return nil, spaerr.NewInvariantViolation("FilterColumn: no such column " + name)
	}
	out, err := New(t.header)
	if err != nil {
		return nil, err
	}
	for _, r := range t.rows {
		if allowed[r[i]] {
			if err := out.Insert(r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Concatenate returns the set-union of two tables with identical arity.
func (t *Table) Concatenate(other *Table) (*Table, error) {
	if len(t.header) != len(other.header) {
		return nil, spaerr.NewInvariantViolation("Concatenate: arity mismatch")
	}
	out, err := New(t.header)
	if err != nil {
		return nil, err
	}
	for _, r := range t.rows {
		if err := out.Insert(r); err != nil {
			return nil, err
		}
	}
	for _, r := range other.rows {
		if err := out.Insert(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Pair is a (this-column-index, other-column-index) equi-join condition.
type Pair struct {
	Left  int
	Right int
}

// InnerJoin equi-joins t and other on the given index pairs. The result
// header is t's header followed by other's header with the paired
// right-hand columns dropped. The smaller side is used as the hash-table
// build side.
func (t *Table) InnerJoin(other *Table, pairs []Pair) (*Table, error) {
	for _, p := range pairs {
		if p.Left < 0 || p.Left >= len(t.header) || p.Right < 0 || p.Right >= len(other.header) {
			return nil, spaerr.NewInvariantViolation("InnerJoin: pair index out of range")
		}
	}

	dropRight := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		dropRight[p.Right] = true
	}
	rightKeep := make([]int, 0, len(other.header))
	for j := range other.header {
		if !dropRight[j] {
			rightKeep = append(rightKeep, j)
		}
	}

	header := make([]string, 0, len(t.header)+len(rightKeep))
	header = append(header, t.header...)
	for _, j := range rightKeep {
		header = append(header, other.header[j])
	}
	out, err := New(header)
	if err != nil {
		return nil, err
	}

	// Build the hash table over the smaller side.
	buildIsT := len(t.rows) <= len(other.rows)
	build, probe := t, other
	if !buildIsT {
		build, probe = other, t
	}

	index := make(map[string][]Row, build.Size())
	for _, r := range build.rows {
		index[joinKey(r, pairs, buildIsT)] = append(index[joinKey(r, pairs, buildIsT)], r)
	}

	for _, pr := range probe.rows {
		key := joinKey(pr, pairs, !buildIsT)
		for _, br := range index[key] {
			var tRow, oRow Row
			if buildIsT {
				tRow, oRow = br, pr
			} else {
				tRow, oRow = pr, br
			}
			merged := make(Row, 0, len(header))
			merged = append(merged, tRow...)
			for _, j := range rightKeep {
				merged = append(merged, oRow[j])
			}
			if err := out.Insert(merged); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// joinKey builds the composite key used for an equi-join hash lookup.
// leftSide selects whether to read the Pair.Left or Pair.Right index from
// row (true = this table's columns, i.e. Pair.Left).
func joinKey(row Row, pairs []Pair, leftSide bool) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		if leftSide {
			parts[i] = row[p.Left]
		} else {
			parts[i] = row[p.Right]
		}
	}
	return strings.Join(parts, "\x00")
}

// NaturalJoin joins on every pair of non-empty matching column names,
// falling back to a cross product when no names match.
func (t *Table) NaturalJoin(other *Table) (*Table, error) {
	var pairs []Pair
	for i, name := range t.header {
		if name == "" {
			continue
		}
		for j, oname := range other.header {
			if oname == name {
				pairs = append(pairs, Pair{Left: i, Right: j})
			}
		}
	}
	if len(pairs) == 0 {
		return t.CrossJoin(other)
	}
	return t.InnerJoin(other, pairs)
}

// CrossJoin returns the cross product of t and other.
func (t *Table) CrossJoin(other *Table) (*Table, error) {
	header := make([]string, 0, len(t.header)+len(other.header))
	header = append(header, t.header...)
	header = append(header, other.header...)
	out, err := New(header)
	if err != nil {
		return nil, err
	}
	for _, r := range t.rows {
		for _, or := range other.rows {
			merged := make(Row, 0, len(header))
			merged = append(merged, r...)
			merged = append(merged, or...)
			if err := out.Insert(merged); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// String renders the table deterministically for debugging and tests.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.header, "\t"))
	b.WriteByte('\n')
	rows := t.Rows()
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].key() < rows[j].key()
	})
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
