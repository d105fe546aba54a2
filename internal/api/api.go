// Package api implements the embedding API of spec §6: the surface a host
// program or extension uses to drive the evaluator, box/unbox primitive
// values, and manage the lifetime of values it hands back across the
// boundary. Grounded on the teacher's cmd/sentra/main.go recover-wrapped
// parse/run pattern, generalized from "catch panics at the CLI boundary"
// into Rescue/RescueWith as reusable operations any host can call.
package api

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"revolt/internal/cell"
	coreerrors "revolt/internal/errors"
	"revolt/internal/eval"
	"revolt/internal/unwind"
)

// Root is one embedding instance: an evaluator plus its root scope plus
// the table of rooted handles this API hands back to a host (spec §6
// "Values returned by the API are rooted... anchored to the currently
// topmost action frame").
type Root struct {
	Engine *eval.Engine
	Scope  *eval.Scope

	mu      sync.Mutex
	handles map[string]*Handle
}

// Handle is a rooted value: either a plain cell.Cell (boxed primitive or
// evaluate result) or host-managed opaque data (spec §6 "handle...
// wrapping host-managed data plus optional cleanup callback").
type Handle struct {
	ID      string
	Value   cell.Cell
	Host    interface{}
	Cleanup func()
	managed bool
}

// Startup initializes a fresh embedding instance (spec §6 "startup /
// shutdown": symbol table and well-known symbols live inside eval.New).
func Startup() *Root {
	e, s := eval.New()
	return &Root{Engine: e, Scope: s, handles: make(map[string]*Handle)}
}

// Shutdown releases every handle this Root still owns. A host is expected
// to call Release for individual handles as it's done with them; Shutdown
// is the backstop that runs the remaining managed handles' cleanups at
// process exit. Handles passed to Unmanage are left for an explicit Release.
func (r *Root) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.handles {
		if !h.managed {
			continue
		}
		if h.Cleanup != nil {
			h.Cleanup()
		}
		delete(r.handles, id)
	}
}

// root registers v as a new handle, rooting it the way spec §6 describes.
func (r *Root) root(v cell.Cell) *Handle {
	h := &Handle{ID: uuid.NewString(), Value: v, managed: true}
	r.mu.Lock()
	r.handles[h.ID] = h
	r.mu.Unlock()
	return h
}

// Rescue runs fn inside a fresh trap scope, converting an abrupt Fail
// into a returned *errors.CoreError and re-raising any cooperative throw
// that escapes uncaught as errors.NoCatchForThrowErr (spec §6 "rescue").
func (r *Root) Rescue(fn func()) (err error) {
	ce := unwind.Rescue(func() {
		defer func() {
			if rec := recover(); rec != nil {
				if _, ok := rec.(*unwind.Thrown); ok {
					unwind.Fail(coreerrors.NoCatchForThrowErr())
				}
				panic(rec)
			}
		}()
		fn()
	})
	if ce != nil {
		return errors.WithStack(ce)
	}
	return nil
}

// RescueWith is Rescue for a callback that produces a value: on success
// out holds fn's result and err is nil; on failure out is the zero Cell
// and err describes what went wrong.
func (r *Root) RescueWith(fn func() (cell.Cell, error)) (out cell.Cell, err error) {
	rescueErr := r.Rescue(func() {
		v, ferr := fn()
		if ferr != nil {
			unwind.Fail(coreerrors.Newf(coreerrors.User, "%s", ferr))
		}
		out = v
	})
	if rescueErr != nil {
		return cell.Cell{}, rescueErr
	}
	return out, nil
}

// Evaluate runs prog to completion under r's root scope, returning a
// rooted handle for the result (spec §6 "evaluate (variadic)": this port
// takes an already-scanned *cell.Array since the scanner is an external
// collaborator per spec §1).
func (r *Root) Evaluate(prog *cell.Array) (*Handle, error) {
	out, err := r.RescueWith(func() (cell.Cell, error) { return r.Engine.Do(r.Scope, prog) })
	if err != nil {
		return nil, err
	}
	return r.root(out), nil
}

// EvaluateQuoted is Evaluate with one level of quote added to the result
// (spec §6 "evaluate-quoted").
func (r *Root) EvaluateQuoted(prog *cell.Array) (*Handle, error) {
	h, err := r.Evaluate(prog)
	if err != nil {
		return nil, err
	}
	h.Value = cell.Quote(h.Value)
	return h, nil
}

// Elide runs prog to completion and discards the result (spec §6 "elide").
func (r *Root) Elide(prog *cell.Array) error {
	_, err := r.RescueWith(func() (cell.Cell, error) { return r.Engine.Do(r.Scope, prog) })
	return err
}

// Jumps runs prog expecting it to throw, fail, or halt; it is itself an
// error if prog returns normally (spec §6 "jumps").
func (r *Root) Jumps(prog *cell.Array) error {
	err := r.Elide(prog)
	if err == nil {
		return errors.New("api: jumps expected prog to throw, fail, or halt, but it returned normally")
	}
	return nil
}

// Unbox extracts c's primitive Go representation (spec §6 "unbox... from
// integer, char, logic, string-ish, or binary values").
func Unbox(c cell.Cell) (interface{}, error) {
	switch c.Kind {
	case cell.KindInteger:
		v, _ := c.AsInteger()
		return v, nil
	case cell.KindDecimal:
		v, _ := c.AsDecimal()
		return v, nil
	case cell.KindLogic:
		v, _ := c.AsLogic()
		return v, nil
	case cell.KindText, cell.KindFile, cell.KindTag, cell.KindIssue:
		v, _ := c.AsText()
		return v, nil
	case cell.KindBinary:
		return Bytes(c)
	default:
		return nil, errors.Errorf("api: cannot unbox a %s value", c.Kind)
	}
}

// Spell extracts a word or string-ish cell's textual spelling (spec §6
// "spell").
func Spell(c cell.Cell) (string, error) {
	if c.Kind.IsWord() {
		if s, ok := c.Symbol().(fmt.Stringer); ok {
			return s.String(), nil
		}
	}
	if s, ok := c.AsText(); ok {
		return s, nil
	}
	return "", errors.Errorf("api: cannot spell a %s value", c.Kind)
}

// Bytes extracts a binary cell's raw byte representation (spec §6
// "bytes").
func Bytes(c cell.Cell) ([]byte, error) {
	if c.Kind != cell.KindBinary {
		return nil, errors.Errorf("api: %s is not a binary value", c.Kind)
	}
	b, ok := c.Payload.([]byte)
	if !ok {
		return nil, errors.New("api: malformed binary payload")
	}
	return b, nil
}

// BoxInteger, BoxDecimal, BoxChar, BoxLogic, BoxBlank, BoxVoid, BoxText,
// and BoxBinary construct rooted values (spec §6 "box").
func (r *Root) BoxInteger(v int64) *Handle      { return r.root(cell.Integer(v)) }
func (r *Root) BoxDecimal(v float64) *Handle    { return r.root(cell.Decimal(v)) }
func (r *Root) BoxChar(v rune) *Handle          { return r.root(cell.Cell{Kind: cell.KindChar, Payload: v}) }
func (r *Root) BoxLogic(v bool) *Handle         { return r.root(cell.Logic(v)) }
func (r *Root) BoxBlank() *Handle               { return r.root(cell.Blank()) }
func (r *Root) BoxVoid() *Handle                { return r.root(cell.Null()) }
func (r *Root) BoxText(v string) *Handle        { return r.root(cell.Text(cell.KindText, v)) }
func (r *Root) BoxBinary(v []byte) *Handle      { return r.root(cell.Cell{Kind: cell.KindBinary, Payload: v}) }

// NewHandle wraps host-managed data plus an optional cleanup callback,
// invoked once by Release (spec §6 "handle").
func (r *Root) NewHandle(host interface{}, cleanup func()) *Handle {
	h := &Handle{ID: uuid.NewString(), Host: host, Cleanup: cleanup, managed: true}
	r.mu.Lock()
	r.handles[h.ID] = h
	r.mu.Unlock()
	return h
}

// Manage transitions h from indefinite lifetime to frame-owned (spec §6
// "manage... transition the rooted cell between frame-owned and
// indefinite lifetime").
func (r *Root) Manage(h *Handle) { h.managed = true }

// Unmanage transitions h to indefinite lifetime: Shutdown's cleanup sweep
// will skip it, and only an explicit Release frees it.
func (r *Root) Unmanage(h *Handle) { h.managed = false }

// Release frees h immediately, running its cleanup callback if any (spec
// §6 "release... frees").
func (r *Root) Release(h *Handle) {
	r.mu.Lock()
	delete(r.handles, h.ID)
	r.mu.Unlock()
	if h.Cleanup != nil {
		h.Cleanup()
	}
}

// Halt sets r's cancellation signal (spec §6 "halt", spec §5
// "Cancellation").
func (r *Root) Halt() { r.Engine.Halt() }

// Allocate reserves n bytes backed by a binary series, handed back as a
// handle so the allocation participates in failure cleanup the same way
// any other rooted value does (spec §6 "allocate... so allocations
// participate in failure cleanup").
func (r *Root) Allocate(n int) *Handle {
	buf := make([]byte, n)
	return r.NewHandle(&buf, nil)
}

// Free releases an allocation made by Allocate.
func (r *Root) Free(h *Handle) { r.Release(h) }

// Resize grows or shrinks h's backing allocation in place, preserving its
// existing content up to the smaller of the two lengths.
func (r *Root) Resize(h *Handle, n int) error {
	buf, ok := h.Host.(*[]byte)
	if !ok {
		return errors.New("api: resize requires an allocate handle")
	}
	grown := make([]byte, n)
	copy(grown, *buf)
	*buf = grown
	return nil
}

// Repossess converts h's raw allocation back into a binary value (spec §6
// "repossess converts the raw pointer back into a binary value").
func (r *Root) Repossess(h *Handle) (*Handle, error) {
	buf, ok := h.Host.(*[]byte)
	if !ok {
		return nil, errors.New("api: repossess requires an allocate handle")
	}
	r.Release(h)
	return r.root(cell.Cell{Kind: cell.KindBinary, Payload: *buf}), nil
}
