// Package unwind implements the two non-local exit mechanisms of spec
// §4.9: a cooperative, catchable "throw" (RETURN, UNWIND, loop break/
// continue, and THROW/CATCH all reduce to this) and an abrupt "fail"/trap
// longjmp realized with panic/recover.
package unwind

import (
	"fmt"

	"revolt/internal/cell"
	"revolt/internal/errors"
)

// Thrown is the cooperative non-local exit value (spec §4.9's "thread-
// global thrown_arg cell plus a label", rendered here as an ordinary Go
// value carried as a panic payload instead of a side-channel global —
// this repo is single-threaded per evaluator the same way the spec
// prescribes, so a value is as safe as a global and costs nothing extra).
//
// Label identifies which catcher should intercept the throw:
//   - a *symbol.Symbol, for a named throw/catch pair (THROW/name, CATCH/name);
//   - nil, for an unnamed throw matched by the nearest unnamed catch;
//   - an opaque target identity (e.g. a function's action.Action.Identity())
//     for definitional RETURN/UNWIND, matched by the call running that action.
type Thrown struct {
	Value cell.Cell
	Label interface{}
}

func (t *Thrown) Error() string {
	return fmt.Sprintf("thrown value escaped uncaught: %s", t.Value.String())
}

// AsThrown reports whether err is a *Thrown, returning it if so.
func AsThrown(err error) (*Thrown, bool) {
	t, ok := err.(*Thrown)
	return t, ok
}

// Matches reports whether this thrown value should be caught by a catcher
// expecting the given label (nil label catches any unnamed throw).
func (t *Thrown) Matches(wantLabel interface{}) bool {
	if wantLabel == nil {
		return t.Label == nil
	}
	return t.Label == wantLabel
}

// Fail raises an abrupt trap (spec §4.9 "failure"): err is recorded and
// control longjmps to the nearest Rescue. Intermediate Go frames unwind via
// ordinary panic/recover, which is also how the trap handler "unwinds all
// frames above the saved one."
func Fail(err *errors.CoreError) {
	panic(err)
}

// Rescue runs fn inside a fresh trap scope (spec §4.9/§6 "rescue"):
// failures raised with Fail are recovered and converted into an ordinary
// *errors.CoreError return rather than propagating further as a Go panic.
// A *Thrown escaping fn is not a failure — it is re-panicked so an outer
// Rescue (or the evaluator root) can decide whether it is a catchable
// throw or an uncaught one.
func Rescue(fn func()) (err *errors.CoreError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if t, ok := r.(*Thrown); ok {
			panic(t)
		}
		if ce, ok := r.(*errors.CoreError); ok {
			err = ce
			return
		}
		if e, ok := r.(error); ok {
			err = errors.New(errors.User, e.Error())
			return
		}
		err = errors.Newf(errors.User, "%v", r)
	}()
	fn()
	return nil
}
