package action

import (
	"testing"

	"revolt/internal/bind"
	"revolt/internal/cell"
	"revolt/internal/symbol"
)

func TestNewNativeIdentityIsSelf(t *testing.T) {
	tbl := symbol.NewTable()
	a := NewNative(tbl.Intern("print"), nil)
	if a.Identity() != a {
		t.Fatalf("expected a native action's identity to be itself")
	}
	if a.Paramlist == nil || !a.Paramlist.IsParamlist {
		t.Fatalf("expected NewNative to build an IsParamlist keylist")
	}
}

func TestNewFuncParamlistIsNeverShared(t *testing.T) {
	tbl := symbol.NewTable()
	n := tbl.Intern("n")
	body := cell.New()
	body.Push(cell.Word(cell.KindWord, n, nil))

	first := NewFunc(tbl.Intern("double"), []Param{{Sym: n, Class: ParamNormal}}, body)
	second := NewFunc(tbl.Intern("triple"), []Param{{Sym: n, Class: ParamNormal}}, body)

	if first.Paramlist == second.Paramlist {
		t.Fatalf("expected each NewFunc call to allocate its own paramlist")
	}
	if first.Identity() != first || second.Identity() != second {
		t.Fatalf("expected each FUNC action's identity to be itself, not shared across calls")
	}
}

func TestFuncBodyRoundTrips(t *testing.T) {
	tbl := symbol.NewTable()
	body := cell.New()
	body.Push(cell.Integer(42))
	a := NewFunc(tbl.Intern("answer"), nil, body)

	got, ok := a.Body()
	if !ok || got != body {
		t.Fatalf("expected Body() to return the block passed to NewFunc")
	}
}

func TestAdaptSharesUnderlyingIdentity(t *testing.T) {
	tbl := symbol.NewTable()
	adaptee := NewFunc(tbl.Intern("f"), nil, cell.New())
	prelude := cell.New()

	adapted := NewAdapt(tbl.Intern("f-adapted"), adaptee, prelude)

	if adapted.Identity() != adaptee.Identity() {
		t.Fatalf("expected ADAPT to keep the adaptee's identity for definitional return matching")
	}
	if adapted.Paramlist != adaptee.Paramlist {
		t.Fatalf("expected ADAPT to reuse the adaptee's paramlist, not derive its own")
	}
	if adapted.Phase != PhaseAdapt {
		t.Fatalf("expected adapted action's phase to be PhaseAdapt, got %v", adapted.Phase)
	}
}

func TestEncloseExposesOuterDistinctFromUnderlying(t *testing.T) {
	tbl := symbol.NewTable()
	inner := NewFunc(tbl.Intern("inner"), nil, cell.New())
	outer := NewFunc(tbl.Intern("outer"), nil, cell.New())

	enc := NewEnclose(tbl.Intern("enclosed"), inner, outer)

	if enc.Underlying != inner {
		t.Fatalf("expected ENCLOSE's Underlying to be the inner action")
	}
	if enc.Outer() != outer {
		t.Fatalf("expected ENCLOSE's Outer() to be the outer action")
	}
	if enc.Identity() != enc {
		t.Fatalf("expected ENCLOSE to mint its own identity, distinct from either inner or outer")
	}
}

func TestSpecializeSharesUnderlyingIdentityAndParamlist(t *testing.T) {
	tbl := symbol.NewTable()
	nSym := tbl.Intern("n")
	underlying := NewFunc(tbl.Intern("f"), []Param{{Sym: nSym, Class: ParamNormal}}, cell.New())
	exemplar := bind.NewContext(cell.Blank())

	spec := NewSpecialize(tbl.Intern("f-10"), underlying, exemplar)

	if spec.Identity() != underlying.Identity() {
		t.Fatalf("expected SPECIALIZE to keep the underlying's identity")
	}
	if spec.Paramlist != underlying.Paramlist {
		t.Fatalf("expected SPECIALIZE to share the underlying's paramlist")
	}
	if spec.Exemplar != exemplar {
		t.Fatalf("expected SPECIALIZE to record the exemplar context")
	}
}

func TestParamAtAndNumParams(t *testing.T) {
	tbl := symbol.NewTable()
	params := []Param{
		{Sym: tbl.Intern("a"), Class: ParamNormal},
		{Sym: tbl.Intern("b"), Class: ParamHardQuoted},
	}
	a := NewFunc(tbl.Intern("f"), params, cell.New())

	if a.NumParams() != 2 {
		t.Fatalf("expected NumParams() == 2, got %d", a.NumParams())
	}
	if a.ParamAt(1).Class != ParamHardQuoted {
		t.Fatalf("expected ParamAt(1) to be hard-quoted")
	}
}
