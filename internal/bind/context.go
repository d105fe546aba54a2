// Package bind implements contexts, keylists, and the three binding
// mechanisms — specific, relative, and virtual — of spec §4.2-§4.3.
package bind

import (
	"revolt/internal/cell"
	"revolt/internal/symbol"
)

// Key is one entry of a Keylist: a symbol plus the per-class flags that
// travel with it (typesets live in package action, which layers on top of
// a Keylist for paramlists).
type Key struct {
	Sym    *symbol.Symbol
	Hidden bool
}

// Keylist is the symbol/type list shared across every instance derived
// from one context class (spec §4.2), or an action's parameter list when
// IsParamlist is set (spec: "a paramlist... first cell is archetype").
type Keylist struct {
	Keys        []Key
	Ancestor    *Keylist // derivation link; self for the root (spec §4.2)
	IsParamlist bool
	Managed     bool
}

// NewKeylist creates a root keylist (its own ancestor).
func NewKeylist() *Keylist {
	kl := &Keylist{}
	kl.Ancestor = kl
	return kl
}

// IndexOf returns the 1-based variable index for sym, or 0 if absent.
// Hidden keys are still indexable (hiding only affects bind-walk
// visibility, not lookup by index).
func (kl *Keylist) IndexOf(sym *symbol.Symbol) int {
	for i, k := range kl.Keys {
		if k.Sym == sym {
			return i + 1
		}
	}
	return 0
}

// Derive produces a child keylist that starts out identical to kl but may
// later diverge (e.g. gain extra keys via add-midstream binding),
// recording kl as its ancestor for IsOverriding.
func (kl *Keylist) Derive() *Keylist {
	child := &Keylist{Keys: append([]Key(nil), kl.Keys...), Ancestor: kl}
	return child
}

// Append adds a new key, returning its 1-based index.
func (kl *Keylist) Append(sym *symbol.Symbol) int {
	kl.Keys = append(kl.Keys, Key{Sym: sym})
	return len(kl.Keys)
}

// IsOverriding walks child's ancestor chain looking for parent (spec
// §4.2's derivation test). Per the Open Question in spec §9, this
// implementation picks the "frames never derive" resolution: a paramlist
// never overrides and is never overridden.
func IsOverriding(parent, child *Keylist) bool {
	if parent == nil || child == nil {
		return false
	}
	if parent.IsParamlist || child.IsParamlist {
		return false
	}
	for k := child; ; k = k.Ancestor {
		if k == parent {
			return true
		}
		if k.Ancestor == k {
			return false
		}
	}
}

// Context is a varlist+keylist pair (spec §3, §4.2): objects, modules,
// errors, and frames are all contexts. Varlist.Cells[0] is the archetype;
// variable i (1-based) lives at Varlist.Cells[i], mirroring Keylist.Keys[i-1].
type Context struct {
	Varlist   *cell.Array
	Keylist   *Keylist
	Archetype cell.Cell

	// variantRing anchors the circular ring of patches that overlay this
	// context and differ only in their Next link, so MakePatch can reuse
	// an existing patch instead of allocating a duplicate (spec §4.3).
	variantRing *Patch
}

// NewContext allocates a fresh context with an empty varlist/keylist pair
// and the given archetype cell stored at varlist[0].
func NewContext(archetype cell.Cell) *Context {
	kl := NewKeylist()
	va := cell.New()
	va.Flags |= cell.FlagVarlist
	va.Link = kl
	va.Push(archetype)
	return &Context{Varlist: va, Keylist: kl, Archetype: archetype}
}

// Len returns the number of variable slots (archetype excluded).
func (c *Context) Len() int { return c.Keylist.Len() }

func (kl *Keylist) Len() int { return len(kl.Keys) }

// Get returns the value at 1-based index i.
func (c *Context) Get(i int) cell.Cell {
	if i < 1 || i > c.Len() {
		return cell.End()
	}
	v := c.Varlist.At(i)
	if v.IsEnd() {
		return cell.Null()
	}
	return v
}

// Set stores value at 1-based index i, growing the varlist if this
// context's keylist has more keys than the varlist currently has slots for
// (the varlist is kept in lockstep with the keylist by AppendVar).
func (c *Context) Set(i int, v cell.Cell) {
	c.Varlist.Grow(i + 1)
	c.Varlist.Set(i, v)
}

// AppendVar appends both a new key and its initial value, keeping
// len(keylist) == len(varlist)-1 (spec §3 invariant). It returns the new
// variable's 1-based index.
func (c *Context) AppendVar(sym *symbol.Symbol, v cell.Cell) int {
	idx := c.Keylist.Append(sym)
	c.Varlist.Grow(idx + 1)
	c.Varlist.Set(idx, v)
	return idx
}

// Lookup finds sym among c's (non-hidden) keys, returning its 1-based
// index or 0.
func (c *Context) Lookup(sym *symbol.Symbol) int {
	return c.LookupBounded(sym, len(c.Keylist.Keys))
}

// LookupBounded finds sym among c's first maxLen (non-hidden) keys. A patch
// records the overriding context's length at the moment it was made
// (Patch.CachedLen); looking up through a stale patch after the context has
// grown must not see keys added after the patch was taken (spec §4.3: "a
// cached length captured at bind time").
func (c *Context) LookupBounded(sym *symbol.Symbol, maxLen int) int {
	if maxLen > len(c.Keylist.Keys) {
		maxLen = len(c.Keylist.Keys)
	}
	for i := 0; i < maxLen; i++ {
		k := c.Keylist.Keys[i]
		if !k.Hidden && k.Sym == sym {
			return i + 1
		}
	}
	return 0
}
