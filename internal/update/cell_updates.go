package update

import "tablesync/internal/sheet"

// UpdateTextCellValue stores a text value in a cell. The column must exist
// and be typed Text; the row must exist. Neither precondition depends on a
// baseline position, so this update never needs transform.
type UpdateTextCellValue struct {
	RowID    sheet.RowID
	ColumnID sheet.ColumnID
	Value    string
}

func (u *UpdateTextCellValue) NeedsTransform() bool        { return false }
func (u *UpdateTextCellValue) Transform(ctx *ShiftContext) {}

func (u *UpdateTextCellValue) Apply(t *sheet.Table) (bool, Bookkeeping) {
	ct, ok := t.ColumnType(u.ColumnID)
	if !ok || ct != sheet.CellTypeText || !t.HasRow(u.RowID) {
		return false, Bookkeeping{}
	}
	t.SetCell(u.RowID, u.ColumnID, sheet.Text(u.Value))
	return true, Bookkeeping{}
}

func (u *UpdateTextCellValue) Shift(bk Bookkeeping, ctx *ShiftContext) {}

// UpdateNumberCellValue stores a number value in a cell. The column must
// exist and be typed Number, the row must exist, and the number must be
// finite.
type UpdateNumberCellValue struct {
	RowID    sheet.RowID
	ColumnID sheet.ColumnID
	Value    float64
}

func (u *UpdateNumberCellValue) NeedsTransform() bool        { return false }
func (u *UpdateNumberCellValue) Transform(ctx *ShiftContext) {}

func (u *UpdateNumberCellValue) Apply(t *sheet.Table) (bool, Bookkeeping) {
	ct, ok := t.ColumnType(u.ColumnID)
	if !ok || ct != sheet.CellTypeNumber || !t.HasRow(u.RowID) {
		return false, Bookkeeping{}
	}
	v := sheet.Number(u.Value)
	cv, ok := ct.Coerce(v)
	if !ok {
		return false, Bookkeeping{}
	}
	t.SetCell(u.RowID, u.ColumnID, cv)
	return true, Bookkeeping{}
}

func (u *UpdateNumberCellValue) Shift(bk Bookkeeping, ctx *ShiftContext) {}
