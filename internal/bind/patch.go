package bind

// Patch is a singleton virtual-binding overlay (spec §4.3c): one link
// naming an overriding context plus a length cached at the moment the
// patch was taken, and a Next link continuing the chain — either to
// another patch or to a terminating frame varlist (Bottom).
type Patch struct {
	Overriding *Context
	CachedLen  int
	Next       *Patch
	Bottom     *Context // valid only when Next == nil

	// variantNext links this patch into overriding's circular ring of
	// patches that share it but differ in Next/Bottom, letting MakePatch
	// reuse a patch instead of allocating a duplicate chain.
	variantNext *Patch
}

// MakePatch returns the patch overlaying overriding and continuing through
// next (or terminating at bottom if next is nil), reusing an existing
// variant when overriding already has one with the same continuation
// (spec §4.3: "merging is memoized via the variants ring to avoid
// exponential allocation").
func MakePatch(overriding *Context, next *Patch, bottom *Context) *Patch {
	if ring := overriding.variantRing; ring != nil {
		for p := ring; ; p = p.variantNext {
			if p.Next == next && p.Bottom == bottom {
				return p
			}
			if p.variantNext == ring {
				break
			}
		}
	}
	p := &Patch{Overriding: overriding, CachedLen: overriding.Len(), Next: next, Bottom: bottom}
	if overriding.variantRing == nil {
		p.variantNext = p
		overriding.variantRing = p
	} else {
		p.variantNext = overriding.variantRing.variantNext
		overriding.variantRing.variantNext = p
	}
	return p
}

// prependChain rebuilds child's patches in order ahead of parentPatch,
// substituting parentPatch for whatever child originally terminated at, so
// the merged chain ends at the same bottom as parent (spec §4.3 rule 4).
func prependChain(child, parentPatch *Patch) *Patch {
	if child == nil {
		return parentPatch
	}
	return MakePatch(child.Overriding, prependChain(child.Next, parentPatch), nil)
}
