package unwind

import (
	"testing"

	"revolt/internal/cell"
	"revolt/internal/errors"
)

func TestThrownMatchesNilLabelOnlyAgainstUnnamed(t *testing.T) {
	unnamed := &Thrown{Value: cell.Integer(1), Label: nil}
	if !unnamed.Matches(nil) {
		t.Fatalf("expected an unnamed throw to match a nil want-label")
	}
	if unnamed.Matches("loop") {
		t.Fatalf("expected an unnamed throw not to match a named want-label")
	}
}

func TestThrownMatchesIdentityLabel(t *testing.T) {
	identity := new(int)
	named := &Thrown{Value: cell.Integer(1), Label: identity}
	if !named.Matches(identity) {
		t.Fatalf("expected a throw to match the exact label identity it carries")
	}
	if named.Matches(new(int)) {
		t.Fatalf("expected a throw not to match a distinct identity, even of the same type")
	}
}

func TestAsThrownNarrowsErrorInterface(t *testing.T) {
	var err error = &Thrown{Value: cell.Integer(2), Label: "x"}
	th, ok := AsThrown(err)
	if !ok || th.Label != "x" {
		t.Fatalf("expected AsThrown to recover the *Thrown, got %#v, %v", th, ok)
	}
	if _, ok := AsThrown(errors.New(errors.User, "not a throw")); ok {
		t.Fatalf("expected AsThrown to reject an unrelated error")
	}
}

func TestRescueRecoversFail(t *testing.T) {
	err := Rescue(func() {
		Fail(errors.Newf(errors.User, "boom"))
	})
	if err == nil {
		t.Fatalf("expected Rescue to recover the failed CoreError")
	}
	if err.Type != errors.User || err.Message != "boom" {
		t.Fatalf("unexpected recovered error: %+v", err)
	}
}

func TestRescueReturnsNilWhenFnCompletesNormally(t *testing.T) {
	if err := Rescue(func() {}); err != nil {
		t.Fatalf("expected no error from a Rescue of a non-panicking fn, got %v", err)
	}
}

func TestRescueRepanicsThrownValues(t *testing.T) {
	defer func() {
		r := recover()
		th, ok := r.(*Thrown)
		if !ok {
			t.Fatalf("expected the panic to re-surface as *Thrown, got %#v", r)
		}
		if th.Label != "loop" {
			t.Fatalf("expected the re-panicked Thrown to keep its label, got %v", th.Label)
		}
	}()
	Rescue(func() {
		panic(&Thrown{Value: cell.Integer(3), Label: "loop"})
	})
	t.Fatalf("expected Rescue to re-panic a Thrown rather than return")
}

func TestRescueWrapsArbitraryPanicValues(t *testing.T) {
	err := Rescue(func() { panic("plain string panic") })
	if err == nil || err.Type != errors.User {
		t.Fatalf("expected an arbitrary panic to be wrapped into a User CoreError, got %+v", err)
	}
}
