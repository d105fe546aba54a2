package frame

import (
	"sync"

	"github.com/google/uuid"

	"revolt/internal/action"
	"revolt/internal/bind"
	"revolt/internal/cell"
)

// ExecutorResultKind discriminates what a frame's executor did on one call
// (spec §4.5 step 3).
type ExecutorResultKind int

const (
	ResultContinuation ExecutorResultKind = iota // a subframe was pushed
	ResultValue                                  // this frame is finished
	ResultThrow                                  // propagate a throw upward
)

// ExecutorResult is the trampoline's per-step outcome.
type ExecutorResult struct {
	Kind ExecutorResultKind
}

// Executor is a continuation point (spec §9 "Executor functions as
// continuation points" and §4.5's named executors). It inspects and
// mutates f, returning what the trampoline should do next.
type Executor func(f *Frame) ExecutorResult

// Frame is one call activation record (spec §3 "Frame"). It is pooled:
// Acquire/Release reuse the backing struct the way the teacher's
// EnhancedVM pre-allocates a `frames []EnhancedCallFrame` array reused
// across calls, generalized here to a sync.Pool since frame lifetimes are
// not strictly nested with Go's own call stack once ENCLOSE detaches one.
type Frame struct {
	Executor Executor
	Parent   *Frame

	Feed *Feed

	Out   cell.Cell // the frame's result cell
	Spare cell.Cell // GC-safe scratch slot (spec §4.8)

	Specifier bind.Specifier

	// Ctx is set only for action-invocation frames: the varlist+keylist
	// pair backing this call's arguments (spec §4.6 "begin").
	Ctx            *Context
	OriginalAction *action.Action
	Phase          action.Phase
	Label          string

	State byte // first entry is 0; re-entries carry the sub-continuation index

	// Catching/WantLabel implement the "catching" continuation variant
	// (spec §4.8): a frame with Catching set gets first look at a
	// propagating throw.
	Catching  bool
	WantLabel interface{}

	// Delegate marks a frame the trampoline never re-enters after its
	// subframe's result lands (spec §4.8's "delegate" continuation
	// variant): the result flows straight to Parent.
	Delegate bool

	// NextArgFromOut is the enfix left-argument flag (spec §4.6): when
	// set, the first param fulfillment consumes Parent's Out cell instead
	// of evaluating a new expression.
	NextArgFromOut bool

	// KeepAlive, when set, tells the trampoline not to drop this frame
	// once it produces ResultValue — used while a frame is being reified
	// (see Reify) so a value-reference can still reach it.
	KeepAlive bool

	id       uuid.UUID
	reified  bool
}

// Context is a local alias of bind.Context kept for readability at call
// sites that talk about a frame's own varlist rather than an arbitrary
// object's.
type Context = bind.Context

var framePool = sync.Pool{New: func() interface{} { return &Frame{} }}

// Acquire returns a zeroed frame from the pool.
func Acquire() *Frame {
	f := framePool.Get().(*Frame)
	*f = Frame{}
	return f
}

// Release returns f to the pool. Reified frames must never be released:
// callers should check IsReified first.
func Release(f *Frame) {
	if f.reified {
		return
	}
	if f.Feed != nil {
		f.Feed.Release()
	}
	framePool.Put(f)
}

// Reify assigns f a process-unique identity id and marks it as escaped the
// pool permanently (spec §9: "frames hold an identity id"; a function
// value produced by ENCLOSE, or any other frame a native hands out as a
// first-class value, needs one so later equality checks and debugging
// output can refer to it stably).
func (f *Frame) Reify() uuid.UUID {
	if !f.reified {
		f.id = uuid.New()
		f.reified = true
	}
	return f.id
}

// IsReified reports whether Reify has been called on f.
func (f *Frame) IsReified() bool { return f.reified }

// ID returns f's identity id, valid only after Reify.
func (f *Frame) ID() uuid.UUID { return f.id }
