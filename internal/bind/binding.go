package bind

import "revolt/internal/cell"

// The four binding states a word or array cell's Extra field can hold
// (spec §4.3, §3's "Specifier" entry). BindUnbound is never represented by
// a concrete type — an unbound cell simply carries a nil cell.Binding.
const (
	BindUnbound = iota
	BindSpecific
	BindRelative
	BindPatch
)

// SpecificBinding is a word's direct reference to a varlist plus a 1-based
// primary index into it (spec §4.3a). Lookup through it is O(1).
type SpecificBinding struct {
	Ctx   *Context
	Index int
}

func (b *SpecificBinding) BindingKind() int { return BindSpecific }

// RelativeBinding is a word's reference to an action's paramlist plus an
// index into it (spec §4.3b). It is not resolvable by itself: the caller
// must supply a specifier — the running frame's varlist for that exact
// action — to turn it into a concrete variable. Paramlist is stored as a
// *Keylist rather than a full action so this package never needs to import
// package action (action imports bind, not the reverse).
type RelativeBinding struct {
	Paramlist *Keylist
	Index     int
}

func (b *RelativeBinding) BindingKind() int { return BindRelative }

// PatchBinding anchors a virtual-binding patch chain (spec §4.3c).
type PatchBinding struct {
	P *Patch
}

func (b *PatchBinding) BindingKind() int { return BindPatch }

// specifierFromBinding converts an array's own binding into the specifier a
// descent into that array should carry, per derive-specifier rule 2 (spec
// §4.3): "if the parent specifier is absent, return the array's binding."
func specifierFromBinding(b cell.Binding) Specifier {
	switch v := b.(type) {
	case *SpecificBinding:
		return Specifier{Frame: v.Ctx}
	case *PatchBinding:
		return Specifier{Patch: v.P}
	case *RelativeBinding:
		// A bare relative binding, with no frame yet supplying it, cannot
		// resolve anything on its own; the evaluator always supplies the
		// actual running frame as the specifier when it descends into a
		// function body, which then matches rule 3 below instead of ever
		// reaching this branch in practice.
		return Specifier{}
	default:
		return Specifier{}
	}
}
