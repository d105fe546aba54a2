package cell

import "fmt"

// maxQuote is the spec's 0..63 quoting-depth ceiling.
const maxQuote = 63

// reifyThreshold is the depth at which a quoted value is promoted to a
// heap wrapper (spec §3: "depths >= 4 reify into a heap wrapper") instead
// of living in the cell's own Quote field.
const reifyThreshold = 4

// quotedBox is the heap wrapper for quoting depths at or beyond
// reifyThreshold. Below that threshold, Quote itself tracks the depth and
// the cell otherwise looks exactly like its unquoted self.
type quotedBox struct {
	depth uint8
	inner Cell
}

// Quote returns c quoted one additional level.
func Quote(c Cell) Cell {
	if box, ok := c.Payload.(*quotedBox); ok && c.Kind == KindQuoted {
		if box.depth+1 > maxQuote {
			panic("cell: quoting depth exceeds maximum")
		}
		return Cell{Kind: KindQuoted, Payload: &quotedBox{depth: box.depth + 1, inner: box.inner}}
	}
	if c.Quote+1 >= reifyThreshold {
		return Cell{Kind: KindQuoted, Payload: &quotedBox{depth: c.Quote + 1, inner: unquotedCopy(c)}}
	}
	c.Quote++
	return c
}

// Unquote strips one level of quoting. ok is false if c was not quoted at
// all (quote depth 0).
func Unquote(c Cell) (Cell, bool) {
	if c.Kind == KindQuoted {
		box, _ := c.Payload.(*quotedBox)
		if box == nil {
			return c, false
		}
		if box.depth-1 < reifyThreshold {
			out := box.inner
			out.Quote = box.depth - 1
			return out, true
		}
		return Cell{Kind: KindQuoted, Payload: &quotedBox{depth: box.depth - 1, inner: box.inner}}, true
	}
	if c.Quote == 0 {
		return c, false
	}
	c.Quote--
	return c, true
}

// QuoteDepth reports the total quoting depth of c, whether tracked inline
// or reified into a heap wrapper.
func QuoteDepth(c Cell) uint8 {
	if c.Kind == KindQuoted {
		if box, ok := c.Payload.(*quotedBox); ok {
			return box.depth
		}
	}
	return c.Quote
}

// Underlying strips all quoting and returns the bare value plus its
// original depth.
func Underlying(c Cell) (Cell, uint8) {
	depth := QuoteDepth(c)
	if c.Kind == KindQuoted {
		box, _ := c.Payload.(*quotedBox)
		if box != nil {
			return box.inner, depth
		}
	}
	c.Quote = 0
	return c, depth
}

func unquotedCopy(c Cell) Cell {
	c.Quote = 0
	return c
}

func (c Cell) quotedString() string {
	if c.Kind != KindQuoted {
		return c.String()
	}
	inner, depth := Underlying(c)
	return fmt.Sprintf("%s(quoted x%d)", inner.String(), depth)
}
