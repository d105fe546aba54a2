package cell

import "fmt"

// ArrayFlag carries the per-array header bits spec §3 names.
type ArrayFlag uint16

const (
	FlagVarlist ArrayFlag = 1 << iota
	FlagDetails
	FlagPatch
	FlagFrozen
	FlagHold
	FlagManaged
	FlagFixedSize
	FlagParamlist
)

// Array is the heap-allocated vector of cells backing every block, group,
// context varlist, paramlist, and patch (spec §3).
//
// Link and Misc are the two sibling pointer fields the spec says carry
// per-kind meaning (e.g. a varlist's Link is its keylist; a paramlist's
// Misc is its details array; a patch's Link is the next link in its
// chain). They are typed interface{} here rather than split into one
// field per kind, matching the teacher's own habit of a handful of
// generically-named fields reused across call sites (EnhancedCallFrame's
// `function interface{}`).
type Array struct {
	Cells []Cell
	Flags ArrayFlag
	Link  interface{}
	Misc  interface{}

	// Binding is the array's own binding (relative action or virtual
	// patch chain) consulted by DeriveSpecifier when descending into this
	// array from a parent specifier (spec §4.3).
	Binding Binding
}

// New allocates an empty, unmanaged array.
func New() *Array { return &Array{} }

// NewWithCapacity allocates an empty array with spare capacity, the
// idiomatic Go analogue of the spec's "allocate or resize" phrasing.
func NewWithCapacity(n int) *Array { return &Array{Cells: make([]Cell, 0, n)} }

// Len returns the number of value cells (the end marker is implicit, not
// stored).
func (a *Array) Len() int { return len(a.Cells) }

// At returns the cell at index i, or the end marker if i is out of range —
// callers never need a separate bounds check before reading one cell past
// the end, matching the spec's "arrays terminate with an end-marker cell."
func (a *Array) At(i int) Cell {
	if i < 0 || i >= len(a.Cells) {
		return End()
	}
	return a.Cells[i]
}

// allowsNull reports whether this array's cells are variable slots rather
// than plain array/block content. Spec §3: "cells embedded in arrays never
// hold the null sentinel; null exists only in variable slots" — a varlist
// or paramlist IS the storage for variable slots, so it is exempted.
func (a *Array) allowsNull() bool {
	return a.Flags&(FlagVarlist|FlagParamlist) != 0
}

// Set overwrites the cell at index i. It panics on an out-of-range index
// and, for ordinary block/group arrays, on an attempt to store null.
func (a *Array) Set(i int, c Cell) {
	if c.IsNull() && !a.allowsNull() {
		panic("cell: null may not be stored in an array cell")
	}
	if a.IsFrozen() {
		panic("cell: array is frozen")
	}
	a.Cells[i] = c
}

// Push appends c, enforcing the same null prohibition as Set.
func (a *Array) Push(c Cell) {
	if c.IsNull() && !a.allowsNull() {
		panic("cell: null may not be stored in an array cell")
	}
	if a.IsFrozen() {
		panic("cell: array is frozen")
	}
	if a.Flags&FlagFixedSize != 0 {
		panic("cell: array is fixed-size")
	}
	a.Cells = append(a.Cells, c)
}

// Grow extends the array, if necessary, until it holds at least n cells,
// padding new slots with null (for varlists/paramlists, where an unset
// variable reads as null) or the end marker's zero value otherwise. It
// bypasses the fixed-size check: growth here backs a context's own
// derivation bookkeeping (AppendVar keeping the varlist in lockstep with
// the keylist), not end-user array mutation.
func (a *Array) Grow(n int) {
	if a.IsFrozen() {
		panic("cell: array is frozen")
	}
	fill := Cell{}
	if a.allowsNull() {
		fill = Null()
	}
	for len(a.Cells) < n {
		a.Cells = append(a.Cells, fill)
	}
}

func (a *Array) IsFrozen() bool  { return a.Flags&FlagFrozen != 0 }
func (a *Array) Freeze()         { a.Flags |= FlagFrozen }
func (a *Array) IsManaged() bool { return a.Flags&FlagManaged != 0 }
func (a *Array) Manage()         { a.Flags |= FlagManaged }

// Hold/Release implement the series-hold protection a feed applies while
// iterating an array (spec §4.4, §5): nested enumeration is permitted, so
// holds are counted, not boolean.
type holdCounter struct{ n int }

func (a *Array) Hold() {
	hc, _ := a.Misc.(*holdCounter)
	if hc == nil {
		hc = &holdCounter{}
	}
	hc.n++
	a.Flags |= FlagHold
	if _, ok := a.Misc.(*holdCounter); !ok {
		// Misc was repurposed for the hold counter only on arrays that
		// don't already use Misc for something else (blocks/groups never
		// do; varlists/paramlists/patches never get Hold called on them).
		a.Misc = hc
	}
}

func (a *Array) Release() {
	hc, _ := a.Misc.(*holdCounter)
	if hc == nil || hc.n == 0 {
		return
	}
	hc.n--
	if hc.n == 0 {
		a.Flags &^= FlagHold
	}
}

func (a *Array) IsHeld() bool { return a.Flags&FlagHold != 0 }

// ArrayVal returns an array-kind cell (block, group, or path family)
// wrapping arr as its payload.
func ArrayVal(kind Kind, arr *Array) Cell {
	return Cell{Kind: kind, Payload: arr}
}

// AsArray extracts the *Array payload of an array-kind cell.
func (c Cell) AsArray() (*Array, bool) {
	if !c.Kind.IsArrayKind() {
		return nil, false
	}
	a, ok := c.Payload.(*Array)
	return a, ok
}

func (a *Array) String() string {
	return fmt.Sprintf("#[array len=%d flags=%04b]", len(a.Cells), a.Flags)
}
