// Package cell implements the core value representation: the tagged Cell
// slot and the Array it lives in (spec §3).
package cell

// Kind is the closed enumeration of cell kinds. Order matches the spec's
// listing; callers should not depend on numeric values surviving a
// reorder, only on the named constants.
type Kind uint8

const (
	KindNull Kind = iota
	KindBlank
	KindLogic
	KindInteger
	KindDecimal
	KindChar
	KindWord
	KindSetWord
	KindGetWord
	KindSymWord
	KindPath
	KindSetPath
	KindGetPath
	KindBlock
	KindGroup
	KindSymBlock
	KindSymGroup
	KindBinary
	KindText
	KindFile
	KindTag
	KindIssue
	KindBitset
	KindMap
	KindObject
	KindFrame
	KindModule
	KindError
	KindPort
	KindAction
	KindHandle
	KindDate
	KindTime
	KindPair
	KindTuple
	KindTypeset
	KindVarargs
	KindQuoted

	// kindEnd and kindTrash are not ordinary cell kinds; they mark the two
	// non-value cell states the spec allows (end-marker, debug-only trash).
	kindEnd
	kindTrash
)

var kindNames = [...]string{
	"null", "blank", "logic", "integer", "decimal", "char",
	"word", "set-word", "get-word", "sym-word",
	"path", "set-path", "get-path",
	"block", "group", "sym-block", "sym-group",
	"binary", "text", "file", "tag", "issue", "bitset",
	"map", "object", "frame", "module", "error", "port", "action", "handle",
	"date", "time", "pair", "tuple", "typeset", "varargs", "quoted",
	"end", "trash",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown-kind"
}

// IsWord reports whether k is one of the word-family kinds (word, set-word,
// get-word, sym-word) — the kinds §4.3 binding attaches to directly.
func (k Kind) IsWord() bool {
	switch k {
	case KindWord, KindSetWord, KindGetWord, KindSymWord:
		return true
	}
	return false
}

// IsPath reports whether k is one of the path-family kinds.
func (k Kind) IsPath() bool {
	switch k {
	case KindPath, KindSetPath, KindGetPath:
		return true
	}
	return false
}

// IsArrayKind reports whether k's payload is an *Array (block, group, and
// their sym- variants, plus path families which are arrays of path steps).
func (k Kind) IsArrayKind() bool {
	switch k {
	case KindBlock, KindGroup, KindSymBlock, KindSymGroup,
		KindPath, KindSetPath, KindGetPath:
		return true
	}
	return false
}

// IsBindable reports whether a cell of this kind ever carries a Binding in
// its Extra field: words resolve identifiers, arrays carry a specifier for
// the words nested within them.
func (k Kind) IsBindable() bool {
	return k.IsWord() || k.IsArrayKind()
}

// IsInert reports whether a value of this kind evaluates to itself with no
// further dispatch — the frame-workhorse executor's fast path (§4.5).
func (k Kind) IsInert() bool {
	switch k {
	case KindInteger, KindDecimal, KindLogic, KindBlank, KindChar,
		KindBinary, KindText, KindFile, KindTag, KindIssue, KindBitset,
		KindMap, KindDate, KindTime, KindPair, KindTuple, KindTypeset,
		KindBlock, KindSymBlock, KindSymGroup:
		return true
	}
	return false
}
