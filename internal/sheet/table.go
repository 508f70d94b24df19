package sheet

// Table is the shared-document container: an insertion-ordered set of typed
// columns, an authoritative row order, and the sparse cell values keyed by
// row then column. The zero Table is not ready to use (its maps are nil);
// construct one with New.
//
// Table itself never enforces cross-update invariants — that is each
// Update variant's job in internal/update, which mutates a Table only
// through the small methods below and only after its own precondition
// check passes.
type Table struct {
	columnOrder []ColumnID
	columnTypes map[ColumnID]CellType
	rowOrder    []RowID
	cells       map[RowID]map[ColumnID]Value
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		columnTypes: make(map[ColumnID]CellType),
		cells:       make(map[RowID]map[ColumnID]Value),
	}
}

// Clone returns a deep copy of t. CellType and Value are immutable so only
// the containing maps and slices need fresh backing storage.
func (t *Table) Clone() *Table {
	c := &Table{
		columnOrder: append([]ColumnID(nil), t.columnOrder...),
		columnTypes: make(map[ColumnID]CellType, len(t.columnTypes)),
		rowOrder:    append([]RowID(nil), t.rowOrder...),
		cells:       make(map[RowID]map[ColumnID]Value, len(t.cells)),
	}
	for id, ct := range t.columnTypes {
		c.columnTypes[id] = ct
	}
	for row, byCol := range t.cells {
		cp := make(map[ColumnID]Value, len(byCol))
		for col, v := range byCol {
			cp[col] = v
		}
		c.cells[row] = cp
	}
	return c
}

// HasRow reports whether id is present in rowOrder.
func (t *Table) HasRow(id RowID) bool {
	_, ok := t.RowIndex(id)
	return ok
}

// RowIndex returns id's current position in rowOrder, or false if absent.
func (t *Table) RowIndex(id RowID) (int, bool) {
	for i, r := range t.rowOrder {
		if r == id {
			return i, true
		}
	}
	return 0, false
}

// RowCount returns the number of rows currently in rowOrder.
func (t *Table) RowCount() int { return len(t.rowOrder) }

// RowAt returns the row id at position i.
func (t *Table) RowAt(i int) RowID { return t.rowOrder[i] }

// HasColumn reports whether id is a defined column.
func (t *Table) HasColumn(id ColumnID) bool {
	_, ok := t.columnTypes[id]
	return ok
}

// ColumnType returns id's CellType, or false if id is not a column.
func (t *Table) ColumnType(id ColumnID) (CellType, bool) {
	ct, ok := t.columnTypes[id]
	return ct, ok
}

// Columns returns the column ids in insertion order.
func (t *Table) Columns() []ColumnID {
	return append([]ColumnID(nil), t.columnOrder...)
}

// Cell returns the value stored for row/col, or false if unset.
func (t *Table) Cell(row RowID, col ColumnID) (Value, bool) {
	byCol, ok := t.cells[row]
	if !ok {
		return Value{}, false
	}
	v, ok := byCol[col]
	return v, ok
}

// AppendRow appends id to rowOrder and creates its cell map. Callers in
// internal/update must have already verified id is absent.
func (t *Table) AppendRow(id RowID) {
	t.rowOrder = append(t.rowOrder, id)
	t.cells[id] = make(map[ColumnID]Value)
}

// RemoveRowAt deletes the row at position i from rowOrder and drops its
// cell map.
func (t *Table) RemoveRowAt(i int) RowID {
	id := t.rowOrder[i]
	t.rowOrder = append(t.rowOrder[:i], t.rowOrder[i+1:]...)
	delete(t.cells, id)
	return id
}

// MoveRowTo removes the row at from and re-inserts it at to, where to is an
// index into the post-removal sequence.
func (t *Table) MoveRowTo(from, to int) {
	id := t.rowOrder[from]
	t.rowOrder = append(t.rowOrder[:from], t.rowOrder[from+1:]...)
	t.rowOrder = append(t.rowOrder, "")
	copy(t.rowOrder[to+1:], t.rowOrder[to:])
	t.rowOrder[to] = id
}

// AddColumn appends col with type ct. Callers must have verified col is
// absent.
func (t *Table) AddColumn(col ColumnID, ct CellType) {
	t.columnOrder = append(t.columnOrder, col)
	t.columnTypes[col] = ct
}

// RemoveColumn drops col from columnOrder, columnTypes, and every row's cell
// map.
func (t *Table) RemoveColumn(col ColumnID) {
	for i, id := range t.columnOrder {
		if id == col {
			t.columnOrder = append(t.columnOrder[:i], t.columnOrder[i+1:]...)
			break
		}
	}
	delete(t.columnTypes, col)
	for _, byCol := range t.cells {
		delete(byCol, col)
	}
}

// SetColumnType overwrites col's type. Callers must have verified col is
// present.
func (t *Table) SetColumnType(col ColumnID, ct CellType) {
	t.columnTypes[col] = ct
}

// SetCell stores v for row/col. Callers must have verified row is present
// and col has the matching type.
func (t *Table) SetCell(row RowID, col ColumnID, v Value) {
	t.cells[row][col] = v
}

// RowsWithColumn returns the row ids that currently have a stored value
// under col, in rowOrder order (deterministic iteration for
// UpdateColumnType's two-pass validate-then-mutate).
func (t *Table) RowsWithColumn(col ColumnID) []RowID {
	var out []RowID
	for _, id := range t.rowOrder {
		if _, ok := t.cells[id][col]; ok {
			out = append(out, id)
		}
	}
	return out
}
