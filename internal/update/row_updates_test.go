package update

import (
	"testing"

	"tablesync/internal/sheet"
)

func TestCreateRowRejectsDuplicate(t *testing.T) {
	tb := sheet.New()
	u := &CreateRow{RowID: "A"}
	if ok, _ := u.Apply(tb); !ok {
		t.Fatal("first CreateRow(A) should succeed")
	}
	if ok, _ := (&CreateRow{RowID: "A"}).Apply(tb); ok {
		t.Fatal("second CreateRow(A) should fail: row already exists")
	}
}

func TestDestroyRowBookkeeping(t *testing.T) {
	tb := sheet.New()
	tb.AppendRow("A")
	tb.AppendRow("B")
	tb.AppendRow("C")

	u := &DestroyRow{RowID: "B"}
	ok, bk := u.Apply(tb)
	if !ok || bk.Index != 1 {
		t.Fatalf("DestroyRow(B).Apply = (%v, %+v), want (true, Index:1)", ok, bk)
	}
	if tb.HasRow("B") {
		t.Fatal("B should have been removed")
	}

	ctx := &ShiftContext{}
	u.Shift(bk, ctx)
	if got, ok := ctx.Transform(1); ok {
		t.Fatalf("Transform(1) after destroying row at 1 should tombstone, got (%d, %v)", got, ok)
	}
}

func TestMoveRowAsyncScenario(t *testing.T) {
	// Worked example: rows A..F; A destroyRow + createRow G; B moveRow(C,5);
	// C moveRow(F,3). Online order A, B, C. Final rowOrder = [B F D E C G].
	tb := sheet.New()
	for _, id := range []sheet.RowID{"A", "B", "C", "D", "E", "F"} {
		tb.AppendRow(id)
	}

	ctx := &ShiftContext{}

	// A's messages apply first: destroyRow(A), createRow(G).
	destroyA := &DestroyRow{RowID: "A"}
	ok, bk := destroyA.Apply(tb)
	if !ok {
		t.Fatal("destroyRow(A) should succeed")
	}
	destroyA.Shift(bk, ctx)

	createG := &CreateRow{RowID: "G"}
	ok, bk = createG.Apply(tb)
	if !ok {
		t.Fatal("createRow(G) should succeed")
	}
	createG.Shift(bk, ctx)

	// B's message: moveRow(C, 5), transformed against ctx so far.
	moveC := &MoveRow{RowID: "C", TargetIndex: 5}
	moveC.Transform(ctx)
	ok, bk = moveC.Apply(tb)
	if !ok {
		t.Fatalf("moveRow(C,5) should succeed, transformed target=%d", moveC.TargetIndex)
	}
	moveC.Shift(bk, ctx)

	// C's message: moveRow(F, 3), transformed against the full ctx (including B's move).
	moveF := &MoveRow{RowID: "F", TargetIndex: 3}
	moveF.Transform(ctx)
	ok, _ = moveF.Apply(tb)
	if !ok {
		t.Fatalf("moveRow(F,3) should succeed, transformed target=%d", moveF.TargetIndex)
	}

	want := []sheet.RowID{"B", "F", "D", "E", "C", "G"}
	if tb.RowCount() != len(want) {
		t.Fatalf("RowCount() = %d, want %d", tb.RowCount(), len(want))
	}
	for i, id := range want {
		if tb.RowAt(i) != id {
			t.Fatalf("rowAt(%d) = %s, want %s (full order mismatch)", i, tb.RowAt(i), id)
		}
	}
}

func TestMoveRowOutOfRangeIsMergeConflict(t *testing.T) {
	tb := sheet.New()
	tb.AppendRow("A")
	tb.AppendRow("B")

	u := &MoveRow{RowID: "A", TargetIndex: 5}
	if ok, _ := u.Apply(tb); ok {
		t.Fatal("moving to an out-of-range target should fail, not clamp")
	}
}

func TestMoveRowTombstonedTargetFails(t *testing.T) {
	u := &MoveRow{RowID: "X", TargetIndex: 0}
	ctx := &ShiftContext{}
	ctx.DeleteAt(0)
	u.TargetIndex = 0
	u.Transform(ctx)
	tb := sheet.New()
	if ok, _ := u.Apply(tb); ok {
		t.Fatal("MoveRow with a tombstoned target should fail apply")
	}
}
