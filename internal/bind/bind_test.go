package bind

import (
	"strings"
	"testing"

	"github.com/kr/pretty"

	"revolt/internal/cell"
	"revolt/internal/symbol"
)

func wordKinds() []cell.Kind { return []cell.Kind{cell.KindWord, cell.KindSetWord} }

func TestBindRoundTripsSpecificBinding(t *testing.T) {
	tbl := symbol.NewTable()
	xSym := tbl.Intern("x")

	ctx := NewContext(cell.Text(cell.KindText, "object!"))
	ctx.AppendVar(xSym, cell.Integer(10))

	body := cell.New()
	body.Push(cell.Word(cell.KindWord, xSym, nil))

	Bind(body, ctx, Modes{BindKinds: wordKinds()}, 0)

	word := body.At(0)
	sb, ok := word.Extra.(*SpecificBinding)
	if !ok {
		t.Fatalf("expected word to carry a SpecificBinding after bind, got %T", word.Extra)
	}
	if sb.Ctx != ctx {
		t.Fatalf("bound context does not match the binding context")
	}
	rctx, idx, ok := GetWordContext(word, Specifier{Frame: ctx})
	if !ok || rctx != ctx || idx != sb.Index {
		t.Fatalf("GetWordContext did not resolve the specifically-bound word")
	}
	if got := ctx.Get(idx); func() int64 { v, _ := got.AsInteger(); return v }() != 10 {
		t.Fatalf("expected variable value 10 at resolved index")
	}
}

func TestBindWalkClearsBinderSlots(t *testing.T) {
	tbl := symbol.NewTable()
	ySym := tbl.Intern("y")
	ctx := NewContext(cell.Blank())
	ctx.AppendVar(ySym, cell.Integer(1))

	body := cell.New()
	body.Push(cell.Word(cell.KindWord, ySym, nil))
	Bind(body, ctx, Modes{BindKinds: wordKinds()}, 0)

	if _, set := ySym.BinderSlot(0); set {
		t.Fatalf("expected binder slot 0 to be cleared after Bind returns")
	}
}

func TestBindAddMidstreamAppendsNewKey(t *testing.T) {
	tbl := symbol.NewTable()
	zSym := tbl.Intern("z")
	ctx := NewContext(cell.Blank())

	body := cell.New()
	body.Push(cell.Word(cell.KindSetWord, zSym, nil))
	Bind(body, ctx, Modes{BindKinds: wordKinds(), AddMidstream: []cell.Kind{cell.KindSetWord}}, 0)

	if ctx.Len() != 1 {
		t.Fatalf("expected add-midstream to append exactly one key, got len=%d", ctx.Len())
	}
	if ctx.Lookup(zSym) == 0 {
		t.Fatalf("expected z to now be a key of ctx")
	}
}

func TestDeriveSpecifierInheritsWhenArrayUnbound(t *testing.T) {
	parent := Specifier{Frame: NewContext(cell.Blank())}
	arr := cell.New()
	got := DeriveSpecifier(parent, arr)
	if got != parent {
		t.Fatalf("expected an array with no binding to inherit the parent specifier unchanged")
	}
}

func TestDeriveSpecifierAdoptsArrayBindingWhenParentUnspecified(t *testing.T) {
	ctx := NewContext(cell.Blank())
	arr := cell.New()
	arr.Binding = &SpecificBinding{Ctx: ctx, Index: 1}
	got := DeriveSpecifier(Unspecified(), arr)
	if got.Frame != ctx {
		t.Fatalf("expected the array's own binding to become the specifier")
	}
}

func TestVirtualBindMergeIsIdempotentViaVariantRing(t *testing.T) {
	overlay := NewContext(cell.Blank())
	bottom := NewContext(cell.Blank())
	bottomPatch := MakePatch(bottom, nil, bottom)

	child := MakePatch(overlay, nil, nil)
	merged1 := prependChain(child, bottomPatch)
	merged2 := prependChain(child, bottomPatch)

	if merged1 != merged2 {
		t.Fatalf("expected merging the same chain twice to reuse the memoized patch, got distinct patches")
	}
	if merged1.Overriding != overlay {
		t.Fatalf("expected merged chain head to overlay %v, got %v", overlay, merged1.Overriding)
	}
	if merged1.Next != bottomPatch {
		t.Fatalf("expected merged chain to terminate at the parent's patch (the bottom)")
	}
}

func TestGetWordContextPatchChainResolvesOverlay(t *testing.T) {
	tbl := symbol.NewTable()
	wSym := tbl.Intern("w")

	overlay := NewContext(cell.Blank())
	overlay.AppendVar(wSym, cell.Integer(42))
	patch := MakePatch(overlay, nil, nil)

	word := cell.Word(cell.KindWord, wSym, nil)
	rctx, idx, ok := GetWordContext(word, Specifier{Patch: patch})
	if !ok || rctx != overlay {
		t.Fatalf("expected patch-chain lookup to resolve through the overlay context")
	}
	if v, _ := overlay.Get(idx).AsInteger(); v != 42 {
		t.Fatalf("expected resolved value 42, got %v", overlay.Get(idx))
	}
}

// TestContextSnapshotStructurallyMatchesAfterAppend uses kr/pretty's
// structural diff (rather than reflect.DeepEqual's bare true/false) to
// compare two independently built contexts' variable snapshots, the same
// way a failing golden-conformance test renders a readable diff instead
// of an opaque mismatch.
func TestContextSnapshotStructurallyMatchesAfterAppend(t *testing.T) {
	tbl := symbol.NewTable()
	aSym := tbl.Intern("a")
	bSym := tbl.Intern("b")

	build := func() *Context {
		c := NewContext(cell.Blank())
		c.AppendVar(aSym, cell.Integer(1))
		c.AppendVar(bSym, cell.Integer(2))
		return c
	}

	snapshot := func(c *Context) []int64 {
		out := make([]int64, 0, 2)
		for _, sym := range []*symbol.Symbol{aSym, bSym} {
			v, _ := c.Get(c.Lookup(sym)).AsInteger()
			out = append(out, v)
		}
		return out
	}

	first, second := snapshot(build()), snapshot(build())
	if diff := pretty.Diff(first, second); len(diff) != 0 {
		t.Fatalf("expected identically-built contexts to produce the same variable snapshot:\n%s", strings.Join(diff, "\n"))
	}
}
