package coordinator

import (
	"testing"
	"time"

	"tablesync/internal/sheet"
	"tablesync/internal/update"
)

// fakeClient is a minimal coordinator.Client for tests that don't need a
// full internal/client.Client — it just records what it was told.
type fakeClient struct {
	id        sheet.ClientID
	syncs     []sheet.Version
	accepted  []update.Message
	rejected  []sheet.MessageID
	lastTable *sheet.Table
}

func newFakeClient(id sheet.ClientID) *fakeClient { return &fakeClient{id: id} }

func (f *fakeClient) ID() sheet.ClientID { return f.id }
func (f *fakeClient) Sync(table *sheet.Table, version sheet.Version) {
	f.lastTable = table
	f.syncs = append(f.syncs, version)
}
func (f *fakeClient) Accepted(msg update.Message) { f.accepted = append(f.accepted, msg) }
func (f *fakeClient) Rejected(messageID sheet.MessageID, groupID sheet.GroupID) {
	f.rejected = append(f.rejected, messageID)
}

func msg(id sheet.MessageID, group sheet.GroupID, version sheet.Version, u update.Update) update.Message {
	return update.Message{Version: version, GroupID: group, Update: u, MessageID: id}
}

func TestConnectDeliversSnapshotAndVersion(t *testing.T) {
	c := New()
	c.Receive(msg("m1", "g1", 0, &update.CreateRow{RowID: "A"}))

	cl := newFakeClient("alice")
	c.Connect(cl)

	if len(cl.syncs) != 1 || cl.syncs[0] != 1 {
		t.Fatalf("Sync called with version %v, want [1]", cl.syncs)
	}
	if !cl.lastTable.HasRow("A") {
		t.Fatal("snapshot delivered to Connect should contain the already-accepted row")
	}
}

func TestAcceptBroadcastsToAllConnected(t *testing.T) {
	c := New()
	a := newFakeClient("a")
	b := newFakeClient("b")
	c.Connect(a)
	c.Connect(b)

	c.Receive(msg("m1", "g1", 0, &update.CreateRow{RowID: "X"}))

	if len(a.accepted) != 1 || len(b.accepted) != 1 {
		t.Fatalf("both connected clients should receive the accepted broadcast: a=%d b=%d",
			len(a.accepted), len(b.accepted))
	}
	if a.accepted[0].Version != 1 {
		t.Fatalf("accepted message version = %d, want 1", a.accepted[0].Version)
	}
}

func TestDependentGroupRejection(t *testing.T) {
	c := New()
	a := newFakeClient("a")
	c.Connect(a)

	// The first three messages in group g1 create row ABC and a Text column, then set a value.
	c.Receive(msg("m1", "g1", 0, &update.CreateRow{RowID: "ABC"}))
	c.Receive(msg("m2", "g1", 1, &update.CreateColumn{ColumnID: "123", Type: sheet.CellTypeText}))
	c.Receive(msg("m3", "g1", 2, &update.UpdateTextCellValue{RowID: "ABC", ColumnID: "123", Value: "foo"}))

	// Now a failing UpdateColumnType and a dependent update in the same group.
	c.Receive(msg("m4", "g1", 3, &update.UpdateColumnType{ColumnID: "123", Type: sheet.CellTypeNumber}))
	c.Receive(msg("m5", "g1", 3, &update.UpdateTextCellValue{RowID: "ABC", ColumnID: "123", Value: "bar"}))

	if len(a.rejected) != 1 {
		t.Fatalf("exactly one rejection should be broadcast (the dependent is silently dropped), got %d", len(a.rejected))
	}
	if a.rejected[0] != "m4" {
		t.Fatalf("rejected messageID = %s, want m4", a.rejected[0])
	}

	v, _ := c.table.Cell("ABC", "123")
	if v.String() != "foo" {
		t.Fatalf("ABC/123 = %q, want foo (bar should have been dropped as dependent)", v.String())
	}
}

func TestShiftTransformAcrossIntermediateHistory(t *testing.T) {
	c := New()
	a := newFakeClient("a")
	c.Connect(a)

	for _, id := range []sheet.RowID{"A", "B", "C", "D", "E", "F"} {
		c.Receive(msg(sheet.MessageID(string(id)), "gSetup", 0, &update.CreateRow{RowID: id}))
	}
	baseline := c.CurrentVersion() // 6

	// A destroys A and creates G, accepted first.
	c.Receive(msg("destroyA", "gA", baseline, &update.DestroyRow{RowID: "A"}))
	c.Receive(msg("createG", "gA", baseline, &update.CreateRow{RowID: "G"}))

	// B authored moveRow(C,5) against baseline (before A's edits landed).
	c.Receive(msg("moveC", "gB", baseline, &update.MoveRow{RowID: "C", TargetIndex: 5}))

	// C authored moveRow(F,3) against the same baseline.
	c.Receive(msg("moveF", "gC", baseline, &update.MoveRow{RowID: "F", TargetIndex: 3}))

	want := []sheet.RowID{"B", "F", "D", "E", "C", "G"}
	if c.table.RowCount() != len(want) {
		t.Fatalf("RowCount() = %d, want %d", c.table.RowCount(), len(want))
	}
	for i, id := range want {
		if c.table.RowAt(i) != id {
			t.Fatalf("final rowOrder[%d] = %s, want %s", i, c.table.RowAt(i), id)
		}
	}
}

func TestScheduledDrainBatchesUntilTick(t *testing.T) {
	c := New()
	a := newFakeClient("a")
	c.Connect(a)

	stop := c.StartScheduledDrain(20 * time.Millisecond)
	defer stop()

	c.Receive(msg("m1", "g1", 0, &update.CreateRow{RowID: "A"}))
	c.Receive(msg("m2", "g1", 0, &update.CreateRow{RowID: "B"}))

	if c.CurrentVersion() != 0 {
		t.Fatal("Receive should not drain synchronously once scheduled")
	}

	deadline := time.After(2 * time.Second)
	for c.CurrentVersion() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduled drain never processed the queued messages")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if len(a.accepted) != 2 {
		t.Fatalf("both messages should eventually broadcast, got %d", len(a.accepted))
	}
}

func TestDisconnectStopsBroadcast(t *testing.T) {
	c := New()
	a := newFakeClient("a")
	c.Connect(a)
	c.Disconnect(a)

	c.Receive(msg("m1", "g1", 0, &update.CreateRow{RowID: "X"}))
	if len(a.accepted) != 0 {
		t.Fatal("a disconnected client should not receive broadcasts")
	}
}
