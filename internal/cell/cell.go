package cell

import "fmt"

// Binding is the abstract reference stored in a bindable cell's Extra
// field (spec §3, §4.3). Concrete implementations — an unbound symbol, a
// specific varlist+index, a relative paramlist+index, or a virtual patch
// chain — live in package bind, which avoids an import cycle by only
// depending on this interface, not on any bind type cell itself needs to
// know about.
type Binding interface {
	// BindingKind distinguishes the four binding states without a type
	// switch at every call site; package bind defines the concrete
	// constants it returns.
	BindingKind() int
}

// Cell is the fixed-size tagged value slot (spec §3). Go has no room for a
// literal "two machine words of payload plus one word of extra" layout
// that also stays type-safe, so Payload is an interface{} holding the
// kind-specific Go representation (int64, float64, *Array, *Symbol, ...);
// Extra carries the binding for bindable kinds and is nil otherwise.
type Cell struct {
	Kind    Kind
	Quote   uint8 // quoting depth, 0..63; see quote.go for reification at depth >= 4
	Payload interface{}
	Extra   Binding
}

// End returns the singleton end-marker cell terminating every Array.
func End() Cell { return Cell{Kind: kindEnd} }

// IsEnd reports whether c is an end-marker.
func (c Cell) IsEnd() bool { return c.Kind == kindEnd }

// Trash returns a debug-only cell value that must never be read; writing
// it over a slot before it is properly initialized lets debug builds catch
// reads of uninitialized storage, mirroring the spec's three-state cell
// invariant (end-marker, readable value, trash).
func Trash() Cell { return Cell{Kind: kindTrash} }

// IsTrash reports whether c is the debug trash sentinel.
func (c Cell) IsTrash() bool { return c.Kind == kindTrash }

// Null returns the null value. Spec: null never appears inside an Array
// cell slot, only in variable storage and a frame's output cell; Array.Push
// enforces this.
func Null() Cell { return Cell{Kind: KindNull} }

// IsNull reports whether c is the null sentinel.
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// Blank returns the blank (`_`) value — inert, distinct from null.
func Blank() Cell { return Cell{Kind: KindBlank} }

// Logic returns a logic cell.
func Logic(b bool) Cell { return Cell{Kind: KindLogic, Payload: b} }

// AsLogic extracts a logic payload; ok is false if c is not a logic cell.
func (c Cell) AsLogic() (v, ok bool) {
	if c.Kind != KindLogic {
		return false, false
	}
	b, _ := c.Payload.(bool)
	return b, true
}

// Integer returns an integer cell.
func Integer(i int64) Cell { return Cell{Kind: KindInteger, Payload: i} }

// AsInteger extracts an integer payload.
func (c Cell) AsInteger() (int64, bool) {
	if c.Kind != KindInteger {
		return 0, false
	}
	i, _ := c.Payload.(int64)
	return i, true
}

// Decimal returns a decimal (float) cell.
func Decimal(f float64) Cell { return Cell{Kind: KindDecimal, Payload: f} }

// AsDecimal extracts a decimal payload.
func (c Cell) AsDecimal() (float64, bool) {
	if c.Kind != KindDecimal {
		return 0, false
	}
	f, _ := c.Payload.(float64)
	return f, true
}

// Char returns a character cell.
func Char(r rune) Cell { return Cell{Kind: KindChar, Payload: r} }

// Text returns a string cell of the given kind (text/file/tag/issue all
// share a string payload; kind alone distinguishes them per spec §3).
func Text(kind Kind, s string) Cell { return Cell{Kind: kind, Payload: s} }

// AsText extracts a string payload regardless of which string-ish kind c is.
func (c Cell) AsText() (string, bool) {
	switch c.Kind {
	case KindText, KindFile, KindTag, KindIssue:
		s, _ := c.Payload.(string)
		return s, true
	}
	return "", false
}

// Word constructs a word-family cell carrying a symbol payload and an
// optional binding. The symbol type itself lives in package symbol; cell
// stores it as an opaque comparable value via an interface so this package
// never imports symbol (symbol does not need to import cell either, so
// there is no cycle either way — this keeps the dependency edge
// unidirectional: bind and action import both cell and symbol).
func Word(kind Kind, sym interface{}, binding Binding) Cell {
	return Cell{Kind: kind, Payload: sym, Extra: binding}
}

// Symbol returns the word's canon/synonym payload as stored (an opaque
// value owned by package symbol).
func (c Cell) Symbol() interface{} { return c.Payload }

func (c Cell) String() string {
	switch c.Kind {
	case kindEnd:
		return "#[end]"
	case kindTrash:
		return "#[trash]"
	case KindNull:
		return "#[null]"
	case KindBlank:
		return "_"
	case KindQuoted:
		return c.quotedString()
	default:
		return fmt.Sprintf("#[%s %v]", c.Kind, c.Payload)
	}
}
