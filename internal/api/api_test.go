package api

import (
	"testing"

	"revolt/internal/cell"
	coreerrors "revolt/internal/errors"
	"revolt/internal/unwind"
)

func program(cells ...cell.Cell) *cell.Array {
	arr := cell.NewWithCapacity(len(cells))
	for _, c := range cells {
		arr.Push(c)
	}
	return arr
}

func TestEvaluateReturnsRootedHandle(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	prog := program(cell.Integer(41), cell.Integer(1))
	h, err := r.Evaluate(prog)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	v, _ := h.Value.AsInteger()
	if v != 1 {
		t.Fatalf("got %d, want 1 (last value in the block)", v)
	}
}

func TestRescueConvertsFailIntoError(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	err := r.Rescue(func() {
		unwind.Fail(coreerrors.Newf(coreerrors.User, "boom"))
	})
	if err == nil {
		t.Fatalf("expected Rescue to convert a Fail into an error")
	}
}

func TestJumpsErrorsWhenProgReturnsNormally(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	prog := program(cell.Integer(1))
	if err := r.Jumps(prog); err == nil {
		t.Fatalf("expected Jumps to error when prog returns normally")
	}
}

func TestBoxUnboxRoundTrip(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	h := r.BoxInteger(7)
	v, err := Unbox(h.Value)
	if err != nil {
		t.Fatalf("Unbox: %v", err)
	}
	if v.(int64) != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestHandleLifecycle(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	freed := false
	h := r.NewHandle("payload", func() { freed = true })
	r.Release(h)
	if !freed {
		t.Fatalf("expected Release to run the cleanup callback")
	}
}

func TestAllocateResizeRepossess(t *testing.T) {
	r := Startup()
	defer r.Shutdown()

	h := r.Allocate(4)
	buf := h.Host.(*[]byte)
	copy(*buf, []byte{1, 2, 3, 4})

	if err := r.Resize(h, 8); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if len(*buf) != 8 || (*buf)[0] != 1 {
		t.Fatalf("resize did not preserve content: %v", *buf)
	}

	bin, err := r.Repossess(h)
	if err != nil {
		t.Fatalf("Repossess: %v", err)
	}
	got, err := Bytes(bin.Value)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d bytes, want 8", len(got))
	}
}
