package presence

import "testing"

func TestRoomKeyFormat(t *testing.T) {
	if got := roomKey("coord-1"); got != "tablesync:room:coord-1" {
		t.Fatalf("roomKey(coord-1) = %s", got)
	}
}

func TestNamesKeyFormat(t *testing.T) {
	if got := namesKey("coord-1"); got != "tablesync:room:groups:coord-1" {
		t.Fatalf("namesKey(coord-1) = %s", got)
	}
}
