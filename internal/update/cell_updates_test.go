package update

import (
	"math"
	"testing"

	"tablesync/internal/sheet"
)

func TestUpdateTextCellValueRequiresTextColumn(t *testing.T) {
	tb := sheet.New()
	tb.AddColumn("c", sheet.CellTypeNumber)
	tb.AppendRow("r")

	u := &UpdateTextCellValue{RowID: "r", ColumnID: "c", Value: "x"}
	if ok, _ := u.Apply(tb); ok {
		t.Fatal("UpdateTextCellValue on a Number column should fail")
	}
}

func TestUpdateNumberCellValueRejectsNonFinite(t *testing.T) {
	tb := sheet.New()
	tb.AddColumn("c", sheet.CellTypeNumber)
	tb.AppendRow("r")

	u := &UpdateNumberCellValue{RowID: "r", ColumnID: "c", Value: math.NaN()}
	if ok, _ := u.Apply(tb); ok {
		t.Fatal("UpdateNumberCellValue with NaN should fail")
	}
}

func TestUpdateCellValueRoundTrip(t *testing.T) {
	tb := sheet.New()
	tb.AddColumn("123", sheet.CellTypeText)
	tb.AddColumn("456", sheet.CellTypeNumber)
	tb.AppendRow("ABC")

	if ok, _ := (&UpdateTextCellValue{RowID: "ABC", ColumnID: "123", Value: "foo"}).Apply(tb); !ok {
		t.Fatal("UpdateTextCellValue should succeed")
	}
	if ok, _ := (&UpdateNumberCellValue{RowID: "ABC", ColumnID: "456", Value: 1}).Apply(tb); !ok {
		t.Fatal("UpdateNumberCellValue should succeed")
	}

	v, _ := tb.Cell("ABC", "123")
	if v.String() != "foo" {
		t.Fatalf("ABC/123 = %q, want foo", v.String())
	}
	v, _ = tb.Cell("ABC", "456")
	if v.Float64() != 1 {
		t.Fatalf("ABC/456 = %v, want 1", v.Float64())
	}
}
