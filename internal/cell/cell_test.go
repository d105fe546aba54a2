package cell

import "testing"

func TestArrayNeverStoresNull(t *testing.T) {
	a := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic pushing null into an array")
		}
	}()
	a.Push(Null())
}

func TestArrayEndMarkerPastBounds(t *testing.T) {
	a := New()
	a.Push(Integer(1))
	a.Push(Integer(2))
	if !a.At(2).IsEnd() {
		t.Fatalf("expected end marker at index len(a), got %v", a.At(2))
	}
	if !a.At(99).IsEnd() {
		t.Fatalf("expected end marker well past bounds")
	}
}

func TestArrayFrozenRejectsMutation(t *testing.T) {
	a := New()
	a.Push(Integer(1))
	a.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic pushing into a frozen array")
		}
	}()
	a.Push(Integer(2))
}

func TestHoldIsReentrant(t *testing.T) {
	a := New()
	a.Hold()
	a.Hold()
	if !a.IsHeld() {
		t.Fatal("expected array to be held")
	}
	a.Release()
	if !a.IsHeld() {
		t.Fatal("expected array still held after one of two releases")
	}
	a.Release()
	if a.IsHeld() {
		t.Fatal("expected array unheld after matching releases")
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	base := Integer(42)
	q := base
	for i := 0; i < 6; i++ {
		q = Quote(q)
		if QuoteDepth(q) != uint8(i+1) {
			t.Fatalf("depth after %d quotes = %d, want %d", i+1, QuoteDepth(q), i+1)
		}
	}
	for i := 6; i > 0; i-- {
		var ok bool
		q, ok = Unquote(q)
		if !ok {
			t.Fatalf("unquote failed at depth %d", i)
		}
	}
	if QuoteDepth(q) != 0 {
		t.Fatalf("expected depth 0 after fully unquoting, got %d", QuoteDepth(q))
	}
	got, ok := q.AsInteger()
	if !ok || got != 42 {
		t.Fatalf("expected underlying integer 42, got %v ok=%v", got, ok)
	}
}

func TestQuoteReifiesPastThreshold(t *testing.T) {
	c := Text(KindText, "hello")
	for i := 0; i < reifyThreshold; i++ {
		c = Quote(c)
	}
	if c.Kind != KindQuoted {
		t.Fatalf("expected reification into KindQuoted at depth %d, got %s", reifyThreshold, c.Kind)
	}
	under, depth := Underlying(c)
	if depth != reifyThreshold {
		t.Fatalf("depth = %d, want %d", depth, reifyThreshold)
	}
	s, ok := under.AsText()
	if !ok || s != "hello" {
		t.Fatalf("underlying text = %q ok=%v", s, ok)
	}
}

func TestKindClassification(t *testing.T) {
	if !KindWord.IsWord() || !KindSetWord.IsWord() {
		t.Fatal("word-family kinds should report IsWord")
	}
	if !KindPath.IsPath() || KindWord.IsPath() {
		t.Fatal("IsPath misclassified")
	}
	if !KindBlock.IsArrayKind() || !KindPath.IsArrayKind() {
		t.Fatal("block/path should be array kinds")
	}
	if !KindInteger.IsInert() || KindWord.IsInert() {
		t.Fatal("inert classification wrong")
	}
}
