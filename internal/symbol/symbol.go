// Package symbol implements interning of identifier spellings into shared
// canons with case-variant synonym rings (spec §4.1).
package symbol

// canonEntry is the case-folded representative of a set of case-variant
// spellings. The spec calls for "a frozen byte array containing the
// case-folded text"; a Go string is already immutable, so no separate
// freeze step is needed.
type canonEntry struct {
	folded string
	ring   *Symbol // any one member of the circular synonym ring
	refs   int     // live Symbol references handed out for this canon
}

// Symbol is one interned spelling. Equal byte sequences intern to an
// identical *Symbol; case-insensitically equal spellings share a canon and
// are linked into its ring.
type Symbol struct {
	Spelling  string
	canon     *canonEntry
	next      *Symbol // synonym ring link
	order     int     // 1-based order index within the ring, 0 for the canon's own folded spelling
	wellKnown int      // 0 if not a well-known id

	// binderSlot/binderSet implement the "two scratch fields (high/low
	// bits) permit two concurrent binders" mechanism package bind uses
	// for bind-walk (spec §4.3). Index 0 and 1 are the two slots.
	binderSlot [2]int
	binderSet  [2]bool
}

// BinderSlot returns the scratch index recorded in binder slot `which`
// (0 or 1), and whether it is currently set.
func (s *Symbol) BinderSlot(which int) (int, bool) {
	return s.binderSlot[which], s.binderSet[which]
}

// SetBinderSlot records index in binder slot `which`.
func (s *Symbol) SetBinderSlot(which, index int) {
	s.binderSlot[which] = index
	s.binderSet[which] = true
}

// ClearBinderSlot empties binder slot `which`.
func (s *Symbol) ClearBinderSlot(which int) {
	s.binderSet[which] = false
	s.binderSlot[which] = 0
}

// Canon returns the case-folded spelling all of s's case variants share.
func (s *Symbol) Canon() string { return s.canon.folded }

// Equal reports whether s and other are the same interned symbol
// (identical spelling, not merely case-equivalent).
func (s *Symbol) Equal(other *Symbol) bool { return s == other }

// SameCanon reports whether s and other are case-variant synonyms of the
// same canon.
func (s *Symbol) SameCanon(other *Symbol) bool {
	if s == nil || other == nil {
		return false
	}
	return s.canon == other.canon
}

// Order returns the 1-based synonym order index recorded for s, or 0 if s
// is the canon's own folded-case member.
func (s *Symbol) Order() int { return s.order }

// WellKnown returns s's bootstrap well-known id, or 0 if s is not a
// well-known symbol (see wellknown.go).
func (s *Symbol) WellKnown() int { return s.wellKnown }

// Synonyms returns every case-variant spelling sharing s's canon, in ring
// order starting from s.
func (s *Symbol) Synonyms() []*Symbol {
	if s == nil {
		return nil
	}
	out := []*Symbol{s}
	for n := s.next; n != s; n = n.next {
		out = append(out, n)
	}
	return out
}

func (s *Symbol) String() string { return s.Spelling }
