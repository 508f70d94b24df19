package update

import "tablesync/internal/sheet"

// CreateColumn appends a new column of the given type. Column identity and
// order never depend on row positions, so this update never needs transform.
type CreateColumn struct {
	ColumnID sheet.ColumnID
	Type     sheet.CellType
}

func (u *CreateColumn) NeedsTransform() bool        { return false }
func (u *CreateColumn) Transform(ctx *ShiftContext) {}

func (u *CreateColumn) Apply(t *sheet.Table) (bool, Bookkeeping) {
	if t.HasColumn(u.ColumnID) {
		return false, Bookkeeping{}
	}
	t.AddColumn(u.ColumnID, u.Type)
	return true, Bookkeeping{}
}

func (u *CreateColumn) Shift(bk Bookkeeping, ctx *ShiftContext) {}

// DestroyColumn removes a column and every row's value under it.
type DestroyColumn struct {
	ColumnID sheet.ColumnID
}

func (u *DestroyColumn) NeedsTransform() bool        { return false }
func (u *DestroyColumn) Transform(ctx *ShiftContext) {}

func (u *DestroyColumn) Apply(t *sheet.Table) (bool, Bookkeeping) {
	if !t.HasColumn(u.ColumnID) {
		return false, Bookkeeping{}
	}
	t.RemoveColumn(u.ColumnID)
	return true, Bookkeeping{}
}

func (u *DestroyColumn) Shift(bk Bookkeeping, ctx *ShiftContext) {}

// UpdateColumnType retypes an existing column, re-coercing every row's
// existing value under it. Apply validates every affected value coerces
// successfully before mutating any of them, so a single uncoercible value
// fails the whole update atomically rather than leaving the table
// half-converted.
type UpdateColumnType struct {
	ColumnID sheet.ColumnID
	Type     sheet.CellType
}

func (u *UpdateColumnType) NeedsTransform() bool        { return false }
func (u *UpdateColumnType) Transform(ctx *ShiftContext) {}

func (u *UpdateColumnType) Apply(t *sheet.Table) (bool, Bookkeeping) {
	if !t.HasColumn(u.ColumnID) {
		return false, Bookkeeping{}
	}
	rows := t.RowsWithColumn(u.ColumnID)
	coerced := make([]sheet.Value, len(rows))
	for i, row := range rows {
		v, _ := t.Cell(row, u.ColumnID)
		cv, ok := u.Type.Coerce(v)
		if !ok {
			return false, Bookkeeping{}
		}
		coerced[i] = cv
	}
	t.SetColumnType(u.ColumnID, u.Type)
	for i, row := range rows {
		t.SetCell(row, u.ColumnID, coerced[i])
	}
	return true, Bookkeeping{}
}

func (u *UpdateColumnType) Shift(bk Bookkeeping, ctx *ShiftContext) {}
