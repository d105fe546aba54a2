// Package frame implements call activation records and the cell feeds
// they iterate (spec §3 "Frame"/"Feed", §4.4, §4.8).
package frame

import (
	"revolt/internal/bind"
	"revolt/internal/cell"
)

// Feed walks one array of cells under a specifier, matching spec §4.4.
// Only the array-backed variant is implemented; the spec's variadic
// (host-argument) and end feeds are approximated by Array being nil.
type Feed struct {
	Array     *cell.Array
	Specifier bind.Specifier
	Index     int

	Value    cell.Cell // the cell fetch_next most recently loaded
	Pending  cell.Cell // looked-ahead cell not yet consumed
	Lookback cell.Cell // previous Value, captured by FetchNextKeepLookback
	Gotten   cell.Cell // cached variable lookup for a word Value

	NoLookahead bool // suppresses enfix lookahead for one step
	held        bool
}

// NewFeed creates a feed over arr under specifier spec and primes Value
// with the first cell.
func NewFeed(arr *cell.Array, spec bind.Specifier) *Feed {
	f := &Feed{Array: arr, Specifier: spec, Pending: cell.End()}
	f.hold()
	f.primeFirst()
	return f
}

func (f *Feed) hold() {
	if f.Array != nil {
		f.Array.Hold()
		f.held = true
	}
}

// Release drops this feed's hold on its backing array (spec §4.4:
// "dropping the feed releases it").
func (f *Feed) Release() {
	if f.held && f.Array != nil {
		f.Array.Release()
		f.held = false
	}
}

func (f *Feed) primeFirst() {
	if f.Array == nil || f.Index >= f.Array.Len() {
		f.Value = cell.End()
		return
	}
	f.Value = f.Array.At(f.Index)
	f.Index++
}

// IsEnd reports whether the feed has no current value.
func (f *Feed) IsEnd() bool { return f.Value.IsEnd() }

// FetchNext loads the next cell into Value (spec §4.4). The Pending slot
// is consulted first; array feeds never populate it (that machinery backs
// the variadic/splice feed kinds this port does not implement), so for an
// array-backed feed this simply advances Index.
func (f *Feed) FetchNext() {
	f.Gotten = cell.Cell{}
	if !f.Pending.IsEnd() {
		f.Value = f.Pending
		f.Pending = cell.End()
		return
	}
	if f.Array == nil || f.Index >= f.Array.Len() {
		f.Value = cell.End()
		return
	}
	f.Value = f.Array.At(f.Index)
	f.Index++
}

// FetchNextKeepLookback is FetchNext but first preserves the current Value
// in Lookback, so the caller may still refer to it (spec §4.4).
func (f *Feed) FetchNextKeepLookback() {
	f.Lookback = f.Value
	f.FetchNext()
}

// Peek returns the cell after Value without consuming it, caching it in
// Pending. Used by the enfix lookahead (spec §4.7).
func (f *Feed) Peek() cell.Cell {
	if !f.Pending.IsEnd() {
		return f.Pending
	}
	if f.Array == nil || f.Index >= f.Array.Len() {
		return cell.End()
	}
	f.Pending = f.Array.At(f.Index)
	f.Index++
	return f.Pending
}

// ClearGotten invalidates the gotten-cache (spec §4.4: any mutation that
// can invalidate it — binding change, action execution, variable
// assignment — must clear it).
func (f *Feed) ClearGotten() { f.Gotten = cell.Cell{} }
