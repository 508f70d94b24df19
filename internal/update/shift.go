// Package update implements the eight-variant update taxonomy, the shift
// context used to rewrite stale row indices across intervening accepted
// updates, and the Message envelope exchanged between client and
// coordinator.
package update

// recordKind tags one entry of a ShiftContext's record sequence.
type recordKind int

const (
	recordInsert recordKind = iota
	recordDelete
)

type record struct {
	kind recordKind
	idx  int
}

// ShiftContext accumulates inserts and deletions to a positional sequence
// across a span of accepted updates, so a stale index authored against an
// older baseline can be rewritten into the present.
//
// This is pre-image-to-post-image index rewriting under a known sequence of
// intervening ordered edits — the row-index analogue of the insert/delete
// position transform in asadovsky-goatee's server/ot/text.go, simplified
// from text offsets to row positions and from an OT diamond to a one-sided
// fold (the coordinator only ever rewrites the newer, not-yet-applied side).
type ShiftContext struct {
	records []record
}

// InsertAt records that a row was inserted at idx.
func (c *ShiftContext) InsertAt(idx int) {
	c.records = append(c.records, record{kind: recordInsert, idx: idx})
}

// DeleteAt records that the row at idx was removed.
func (c *ShiftContext) DeleteAt(idx int) {
	c.records = append(c.records, record{kind: recordDelete, idx: idx})
}

// Move records a row moving from start to end: a delete at start followed
// by an insert at end, applied in that order.
func (c *ShiftContext) Move(start, end int) {
	c.DeleteAt(start)
	c.InsertAt(end)
}

// Transform folds idx through the recorded sequence in order, returning the
// rewritten index and true, or (0, false) if some intervening delete
// tombstoned idx's referent.
func (c *ShiftContext) Transform(idx int) (int, bool) {
	for _, r := range c.records {
		switch r.kind {
		case recordInsert:
			if idx >= r.idx {
				idx++
			}
		case recordDelete:
			switch {
			case idx == r.idx:
				return 0, false
			case idx > r.idx:
				idx--
			}
		}
	}
	return idx, true
}
