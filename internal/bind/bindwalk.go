package bind

import (
	"revolt/internal/cell"
	"revolt/internal/symbol"
)

// Modes configures one call to Bind (spec §4.3 "Bind-walk").
type Modes struct {
	// BindKinds selects which word kinds get bound at all.
	BindKinds []cell.Kind
	// Deep recurses the walk into nested arrays.
	Deep bool
	// AddMidstream selects which word kinds, on first encounter with no
	// existing key, append a new key to the context instead of being left
	// unbound.
	AddMidstream []cell.Kind
}

func kindIn(k cell.Kind, set []cell.Kind) bool {
	for _, s := range set {
		if s == k {
			return true
		}
	}
	return false
}

// Bind implements spec §4.3's bind-walk: it builds a transient binder over
// ctx's non-hidden keys in scratch slot `slot` (0 or 1 — two concurrent
// binders are permitted), walks arr rewriting matching words to specific
// bindings, and zeroes the binder entries again before returning.
func Bind(arr *cell.Array, ctx *Context, modes Modes, slot int) {
	for i, k := range ctx.Keylist.Keys {
		if !k.Hidden {
			k.Sym.SetBinderSlot(slot, i+1)
		}
	}
	bindWalk(arr, ctx, modes, slot)
	for _, k := range ctx.Keylist.Keys {
		if !k.Hidden {
			k.Sym.ClearBinderSlot(slot)
		}
	}
}

func bindWalk(arr *cell.Array, ctx *Context, modes Modes, slot int) {
	for i := 0; i < arr.Len(); i++ {
		c := arr.At(i)
		if kindIn(c.Kind, modes.BindKinds) {
			if sym, ok := c.Symbol().(*symbol.Symbol); ok {
				if idx, set := sym.BinderSlot(slot); set {
					arr.Set(i, rebind(c, sym, ctx, idx))
				} else if kindIn(c.Kind, modes.AddMidstream) {
					idx := ctx.AppendVar(sym, cell.Null())
					sym.SetBinderSlot(slot, idx)
					arr.Set(i, rebind(c, sym, ctx, idx))
				}
			}
		}
		if modes.Deep {
			if nested, ok := c.AsArray(); ok {
				bindWalk(nested, ctx, modes, slot)
			}
		}
	}
}

func rebind(c cell.Cell, sym *symbol.Symbol, ctx *Context, idx int) cell.Cell {
	bound := cell.Word(c.Kind, sym, &SpecificBinding{Ctx: ctx, Index: idx})
	bound.Quote = c.Quote
	return bound
}
