package symbol

import (
	"strings"

	"golang.org/x/crypto/blake2b"
)

// tombstone marks a deleted slot: distinct from nil (empty, terminates a
// probe) and reusable for insertion, per spec §4.1.
var tombstone = &canonEntry{folded: "\x00tombstone"}

// Table is the open-addressed, linear-probed (via a hash-derived skip)
// symbol intern table.
type Table struct {
	slots   []*canonEntry
	count   int // live canon entries
	deleted int // tombstones currently in the table

	wellKnownByName map[string]*Symbol
	wellKnownByID   []*Symbol
}

// NewTable creates an empty intern table with a small prime initial size.
func NewTable() *Table {
	t := &Table{
		slots:           make([]*canonEntry, 61),
		wellKnownByName: make(map[string]*Symbol),
	}
	t.bootstrapWellKnown()
	return t
}

func hashFold(folded string) uint64 {
	sum := blake2b.Sum512([]byte(folded))
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(sum[i])
	}
	return h
}

func (t *Table) probe(h uint64) (start, skip int) {
	size := uint64(len(t.slots))
	start = int(h % size)
	skip = int(1 + (h/size)%(size-1))
	return
}

// Intern returns the unique *Symbol for the exact byte sequence text,
// creating its canon (and, if text is not already all-lowercase, a new
// synonym entry in that canon's ring) as needed.
func (t *Table) Intern(text string) *Symbol {
	folded := strings.ToLower(text)
	if t.count+1 > len(t.slots)/2 {
		t.rehash()
	}
	h := hashFold(folded)
	idx, skip := t.probe(h)
	firstTombstone := -1
	for i := 0; i < len(t.slots); i++ {
		slot := t.slots[idx]
		switch {
		case slot == nil:
			return t.insertNew(folded, text, idx, firstTombstone)
		case slot == tombstone:
			if firstTombstone < 0 {
				firstTombstone = idx
			}
		case slot.folded == folded:
			slot.refs++
			return t.internSynonym(slot, text)
		}
		idx = (idx + skip) % len(t.slots)
	}
	// Table scanned fully without an empty slot (fully packed with live
	// entries and tombstones) — grow and retry.
	t.rehash()
	return t.Intern(text)
}

func (t *Table) insertNew(folded, text string, emptyIdx, tombstoneIdx int) *Symbol {
	at := emptyIdx
	if tombstoneIdx >= 0 {
		at = tombstoneIdx
		t.deleted--
	}
	ce := &canonEntry{folded: folded, refs: 1}
	canonSym := &Symbol{Spelling: folded, canon: ce, order: 0}
	canonSym.next = canonSym
	ce.ring = canonSym
	t.slots[at] = ce
	t.count++
	if folded == text {
		return canonSym
	}
	return t.addSynonym(ce, text)
}

func (t *Table) internSynonym(ce *canonEntry, text string) *Symbol {
	for s := ce.ring; ; s = s.next {
		if s.Spelling == text {
			return s
		}
		if s.next == ce.ring {
			break
		}
	}
	return t.addSynonym(ce, text)
}

// addSynonym inserts a new case-variant spelling into ce's ring, reusing
// the lowest unused order index (spec §4.1).
func (t *Table) addSynonym(ce *canonEntry, text string) *Symbol {
	used := map[int]bool{0: true}
	for s := ce.ring; ; s = s.next {
		used[s.order] = true
		if s.next == ce.ring {
			break
		}
	}
	order := 1
	for used[order] {
		order++
	}
	sym := &Symbol{Spelling: text, canon: ce, order: order}
	// insert right after ring head
	sym.next = ce.ring.next
	ce.ring.next = sym
	return sym
}

// Release drops one live reference to sym's canon. When a canon's
// reference count reaches zero the GC may reclaim it: its table slot
// becomes a tombstone and its ring is severed (spec §4.1, §8: "after n
// distinct interns followed by GC of all references, remaining_canons ==
// 0").
func (t *Table) Release(sym *Symbol) {
	if sym == nil || sym.wellKnown != 0 {
		return // well-known symbols are immortal
	}
	ce := sym.canon
	ce.refs--
	if ce.refs > 0 {
		return
	}
	for i, slot := range t.slots {
		if slot == ce {
			t.slots[i] = tombstone
			t.deleted++
			t.count--
			break
		}
	}
	// Collapse the ring so any stray reference sees an empty chain rather
	// than a dangling walk.
	for s := ce.ring; ; {
		next := s.next
		s.next = s
		if next == ce.ring {
			break
		}
		s = next
	}
}

// LiveCanons reports how many distinct canons currently have at least one
// live reference — the quantity spec §8's GC property measures.
func (t *Table) LiveCanons() int { return t.count }

func (t *Table) rehash() {
	old := t.slots
	newSize := nextOddSize(len(old)*2 + 1)
	t.slots = make([]*canonEntry, newSize)
	t.deleted = 0
	t.count = 0
	for _, ce := range old {
		if ce == nil || ce == tombstone {
			continue
		}
		h := hashFold(ce.folded)
		idx, skip := t.probe(h)
		for t.slots[idx] != nil {
			idx = (idx + skip) % len(t.slots)
		}
		t.slots[idx] = ce
		t.count++
	}
}

func nextOddSize(n int) int {
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
