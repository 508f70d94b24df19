package snapshotstore

import (
	"context"
	"os"
	"testing"
)

// These exercise Store against a real MySQL instance: skipped unless a
// DSN is provided, since there's no in-memory gorm mysql driver to fall
// back to.
func testStore(t *testing.T) *Store {
	dsn := os.Getenv("TABLESYNC_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skip: TABLESYNC_TEST_MYSQL_DSN not set")
	}
	s, err := Open(dsn)
	if err != nil {
		t.Skipf("skip: mysql not available: %v", err)
	}
	return s
}

func TestSaveAndLatest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "coord-1", 1, `{"columns":[],"rows":[]}`); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "coord-1", 2, `{"columns":[],"rows":[{"id":"A","cellValuesByColumnId":{}}]}`); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, ok, err := s.Latest(ctx, "coord-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ok || rec.Version != 2 {
		t.Fatalf("Latest() = (%+v, %v), want version 2", rec, ok)
	}
}

func TestSaveDuplicateVersionIsNotAnError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "coord-dup", 1, "a"); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save(ctx, "coord-dup", 1, "a"); err != nil {
		t.Fatalf("duplicate Save should be swallowed as already-saved, got: %v", err)
	}
}

func TestLatestWithNoRowsReturnsFalse(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Latest(context.Background(), "coord-never-seen")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if ok {
		t.Fatal("Latest for an unknown coordinator should report ok=false")
	}
}
