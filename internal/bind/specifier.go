package bind

import (
	"revolt/internal/cell"
	"revolt/internal/symbol"
)

// Specifier is the binding-context reference attached to array cells and
// to relatively-bound words (spec §3 "Specifier"). Exactly one of Frame or
// Patch is set; both nil means unspecified.
type Specifier struct {
	Frame *Context
	Patch *Patch
}

// Unspecified is the zero specifier — no binding augmentation.
func Unspecified() Specifier { return Specifier{} }

// IsUnspecified reports whether s carries neither a frame nor a patch
// chain.
func (s Specifier) IsUnspecified() bool { return s.Frame == nil && s.Patch == nil }

// DeriveSpecifier computes the specifier a descent into arr should carry,
// given the specifier of the array arr was found within (spec §4.3):
//
//  1. arr carries no binding of its own: inherit parent unchanged.
//  2. parent is unspecified: adopt arr's own binding.
//  3. arr's binding is relative and parent resolves to a frame for the
//     same action (compatibility check): keep parent.
//  4. both are patch chains: merge, child's chain prepended to parent's.
func DeriveSpecifier(parent Specifier, arr *cell.Array) Specifier {
	if arr == nil || arr.Binding == nil {
		return parent
	}
	if parent.IsUnspecified() {
		return specifierFromBinding(arr.Binding)
	}
	if rb, ok := arr.Binding.(*RelativeBinding); ok {
		if parent.Frame != nil && parent.Frame.Keylist == rb.Paramlist {
			return parent
		}
		return specifierFromBinding(arr.Binding)
	}
	if pb, ok := arr.Binding.(*PatchBinding); ok && parent.Patch != nil {
		return Specifier{Patch: prependChain(pb.P, parent.Patch)}
	}
	return specifierFromBinding(arr.Binding)
}

// GetWordContext resolves word w under specifier spec to a concrete
// variable slot (spec §4.3 "Word lookup"). ok is false for an unbound word
// or one whose binding does not resolve under spec.
func GetWordContext(w cell.Cell, spec Specifier) (*Context, int, bool) {
	sym, _ := w.Symbol().(*symbol.Symbol)
	if spec.Patch != nil && sym != nil {
		for p := spec.Patch; p != nil; p = p.Next {
			if idx := p.Overriding.LookupBounded(sym, p.CachedLen); idx != 0 {
				return p.Overriding, idx, true
			}
		}
	}
	switch b := w.Extra.(type) {
	case *SpecificBinding:
		if spec.Frame != nil && sym != nil && IsOverriding(spec.Frame.Keylist, b.Ctx.Keylist) {
			if idx := spec.Frame.Lookup(sym); idx != 0 {
				return spec.Frame, idx, true
			}
		}
		return b.Ctx, b.Index, true
	case *RelativeBinding:
		if spec.Frame != nil && spec.Frame.Keylist == b.Paramlist {
			return spec.Frame, b.Index, true
		}
		return nil, 0, false
	default:
		return nil, 0, false
	}
}
