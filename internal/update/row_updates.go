package update

import "tablesync/internal/sheet"

// CreateRow appends a new, empty row. It never needs transform: a row id
// either already exists in rowOrder or it doesn't, regardless of how many
// updates have landed since the authoring baseline.
type CreateRow struct {
	RowID sheet.RowID
}

func (u *CreateRow) NeedsTransform() bool        { return false }
func (u *CreateRow) Transform(ctx *ShiftContext) {}

func (u *CreateRow) Apply(t *sheet.Table) (bool, Bookkeeping) {
	if t.HasRow(u.RowID) {
		return false, Bookkeeping{}
	}
	t.AppendRow(u.RowID)
	return true, Bookkeeping{}
}

func (u *CreateRow) Shift(bk Bookkeeping, ctx *ShiftContext) {}

// DestroyRow removes a row by id. Like CreateRow, the precondition is
// membership, not a position, so it never needs transform — but its
// position at apply time is exactly what downstream updates need shifted
// around, so Apply resolves and returns it.
type DestroyRow struct {
	RowID sheet.RowID
}

func (u *DestroyRow) NeedsTransform() bool        { return false }
func (u *DestroyRow) Transform(ctx *ShiftContext) {}

func (u *DestroyRow) Apply(t *sheet.Table) (bool, Bookkeeping) {
	idx, ok := t.RowIndex(u.RowID)
	if !ok {
		return false, Bookkeeping{}
	}
	t.RemoveRowAt(idx)
	return true, Bookkeeping{Index: idx}
}

func (u *DestroyRow) Shift(bk Bookkeeping, ctx *ShiftContext) {
	ctx.DeleteAt(bk.Index)
}

// MoveRow relocates a row to targetIndex. targetIndex is authored against
// the client's baseline table and must be transformed into the coordinator's
// present before Apply; the row's own current position, by contrast, is
// resolved directly against the live table at apply time, not transformed —
// if the row itself no longer exists (destroyed by an intervening update),
// Apply simply fails the membership check. Apply also fails when Transform
// found targetIndex itself tombstoned by an intervening delete.
type MoveRow struct {
	RowID       sheet.RowID
	TargetIndex int

	tombstoned bool
}

func (u *MoveRow) NeedsTransform() bool { return true }

func (u *MoveRow) Transform(ctx *ShiftContext) {
	idx, ok := ctx.Transform(u.TargetIndex)
	if !ok {
		u.tombstoned = true
		return
	}
	u.TargetIndex = idx
}

func (u *MoveRow) Apply(t *sheet.Table) (bool, Bookkeeping) {
	if u.tombstoned {
		return false, Bookkeeping{}
	}
	start, ok := t.RowIndex(u.RowID)
	if !ok {
		return false, Bookkeeping{}
	}
	preLen := t.RowCount()
	postLastValid := preLen - 2 // len(rowOrder)-1 after removal
	if u.TargetIndex < 0 || u.TargetIndex > postLastValid {
		return false, Bookkeeping{}
	}
	t.MoveRowTo(start, u.TargetIndex)
	return true, Bookkeeping{Start: start, End: u.TargetIndex}
}

func (u *MoveRow) Shift(bk Bookkeeping, ctx *ShiftContext) {
	ctx.Move(bk.Start, bk.End)
}
