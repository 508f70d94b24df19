package update

import "tablesync/internal/sheet"

// Bookkeeping carries the index facts an Update resolved during a
// successful Apply, for use by the matching Shift call. The source system
// mutated this straight into the update value (DestroyRow.index,
// MoveRow.start/end, set by apply and read by shift); this repo instead
// returns it from Apply and stores it alongside the message in the
// coordinator's history slot (see internal/coordinator), so "Shift called
// before Apply" has no value to operate on and is simply unrepresentable
// rather than a runtime check.
type Bookkeeping struct {
	// Index is the row position DestroyRow resolved at apply time.
	Index int
	// Start and End are the row positions MoveRow resolved at apply time.
	Start, End int
}

// Update is the closed, eight-variant taxonomy of mutations a Message can
// carry.
type Update interface {
	// NeedsTransform reports whether Transform must run before Apply: true
	// only for updates whose carried indices depend on the baseline table.
	NeedsTransform() bool

	// Transform rewrites the update's carried indices through ctx. Calling
	// it when NeedsTransform is false is a no-op.
	Transform(ctx *ShiftContext)

	// Apply mutates t and reports success. On failure t is left unchanged.
	Apply(t *sheet.Table) (bool, Bookkeeping)

	// Shift appends this update's contribution to ctx, using the
	// Bookkeeping a prior successful Apply produced.
	Shift(bk Bookkeeping, ctx *ShiftContext)
}
