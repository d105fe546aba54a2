// Package eval implements the evaluator trampoline of spec §4.5/§4.7/§4.8:
// the executor-driven state machine that turns an array of cells into a
// result, including enfix lookahead, argument fulfillment, and the two
// non-local exit mechanisms package unwind provides.
//
// The named executors spec §4.5 enumerates (new-expression, frame-
// workhorse, post-switch, group-executor, action-executor, path-executor,
// just-use-out) are rendered here as the methods evalOne (whose group case
// runs the group through Do)/postSwitch/invokeAction/evalPath rather than
// as free-standing
// frame.Executor values threaded through an entirely flat manual stack:
// nested expression evaluation (a normal param's right-hand side, a
// group's body, a function's body block) recurses through Go's own call
// stack instead of pushing an explicit frame.Frame onto a slice the
// trampoline re-enters. This trades one of §9's design notes (host-
// language recursion is avoided so deep call trees don't blow the native
// stack) for tractable scope. frame.Feed (lookback, gotten-cache, holds)
// backs every Do call; frame.Frame models the spec's activation record
// but no evaluator path creates one — argument bindings live in a Scope.
// See DESIGN.md.
package eval

import (
	"revolt/internal/action"
	"revolt/internal/bind"
	"revolt/internal/cell"
	"revolt/internal/errors"
	"revolt/internal/frame"
	"revolt/internal/symbol"
	"revolt/internal/trace"
	"revolt/internal/unwind"
)

// Scope chains a bind.Context (the varlist/keylist pair backing one block
// of declarations) to its lexically enclosing Scope, the way a function
// call or a for-each iteration opens a fresh context without disturbing
// its parent's (spec §4.3's virtual-bind motivation, §8's "virtual bind"
// testable property).
type Scope struct {
	Ctx    *bind.Context
	Parent *Scope

	// FuncIdentity, when non-nil, is the enclosing function call's
	// action.Action.Identity(): the target a definitional RETURN/UNWIND
	// inside this scope (or a nested non-function scope within it) throws
	// against (spec §4.9).
	FuncIdentity interface{}
}

// NewScope opens a fresh child scope over a brand-new context.
func NewScope(parent *Scope) *Scope {
	s := &Scope{Ctx: bind.NewContext(cell.Blank()), Parent: parent}
	if parent != nil {
		s.FuncIdentity = parent.FuncIdentity
	}
	return s
}

// Lookup finds sym in s or an ancestor scope.
func (s *Scope) Lookup(sym *symbol.Symbol) (*bind.Context, int, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if idx := cur.Ctx.Lookup(sym); idx != 0 {
			return cur.Ctx, idx, true
		}
	}
	return nil, 0, false
}

// Define creates (or, if already present in this exact scope, overwrites)
// a binding for sym in s's own context.
func (s *Scope) Define(sym *symbol.Symbol, v cell.Cell) {
	if idx := s.Ctx.Lookup(sym); idx != 0 {
		s.Ctx.Set(idx, v)
		return
	}
	s.Ctx.AppendVar(sym, v)
}

// Engine is the process-wide evaluator state spec §9 allows as "a single
// global interpreter handle": the symbol table, well-known-symbol cache,
// and the halt signal bit (spec §5 "Cancellation").
type Engine struct {
	Table *symbol.Table
	halt  bool

	// Trace receives one event per step/action/throw/error; it defaults to
	// trace.NoopHook{} and is swapped by SetTrace (e.g. by cmd/revolt's
	// trace subcommand) for a trace.Sink.
	Trace trace.Hook
	depth int

	wellKnownEnfix map[*symbol.Symbol]func(l, r cell.Cell) (cell.Cell, error)
	specialForms   map[*symbol.Symbol]specialForm
}

// SetTrace installs hook as the engine's trace sink.
func (e *Engine) SetTrace(hook trace.Hook) { e.Trace = hook }

type specialForm func(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error)

// New builds an Engine and its root scope, bootstrapping the well-known
// arithmetic enfix operators and control-construct special forms.
func New() (*Engine, *Scope) {
	e := &Engine{Table: symbol.NewTable(), Trace: trace.NoopHook{}}
	e.wellKnownEnfix = make(map[*symbol.Symbol]func(l, r cell.Cell) (cell.Cell, error))
	e.specialForms = make(map[*symbol.Symbol]specialForm)
	e.installArithmetic()
	e.installSpecialForms()
	root := &Scope{Ctx: bind.NewContext(cell.Blank())}
	e.installNatives(root)
	return e, root
}

// Halt sets the cancellation signal (spec §5); sampled at the next
// new-expression boundary.
func (e *Engine) Halt() { e.halt = true }

// Do evaluates arr to completion under scope s, returning the last
// produced value (null if the block produced none), matching the
// embedding API's `evaluate` contract (spec §6) for an already-scanned
// block of cells.
func (e *Engine) Do(s *Scope, arr *cell.Array) (cell.Cell, error) {
	spec := bind.Unspecified()
	if arr.Binding != nil {
		spec = bind.DeriveSpecifier(spec, arr)
	}
	feed := frame.NewFeed(arr, spec)
	defer feed.Release()
	e.depth++
	defer func() { e.depth-- }()
	return e.runFeed(s, feed)
}

func (e *Engine) runFeed(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	last := cell.Null()
	for !feed.IsEnd() {
		if e.halt {
			return cell.Cell{}, errors.HaltErr()
		}
		v, err := e.evalStep(s, feed)
		if err != nil {
			e.Trace.OnError(err, e.depth)
			return cell.Cell{}, err
		}
		if !v.IsEnd() {
			last = v
		}
	}
	return last, nil
}

// evalStep is the new-expression + frame-workhorse + post-switch
// sequence for one full expression, including any enfix chain that
// follows it (spec §4.5, §4.7).
func (e *Engine) evalStep(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	if e.halt {
		return cell.Cell{}, errors.HaltErr()
	}
	e.Trace.OnStep(feed.Value.String(), e.depth)
	out, err := e.evalOne(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	return e.postSwitch(s, feed, out)
}

// postSwitch looks ahead for an enfix operator that wants to consume the
// just-produced value as its left argument, chaining for as long as more
// enfix operators follow (spec §4.7).
func (e *Engine) postSwitch(s *Scope, feed *frame.Feed, out cell.Cell) (cell.Cell, error) {
	for {
		if feed.IsEnd() || feed.NoLookahead {
			return out, nil
		}
		cur := feed.Value
		if cur.Kind != cell.KindWord {
			return out, nil
		}
		sym, _ := cur.Symbol().(*symbol.Symbol)
		op, ok := e.wellKnownEnfix[sym]
		if !ok {
			return out, nil
		}
		feed.FetchNext() // consume the operator word
		right, err := e.evalStep(s, feed)
		if err != nil {
			return cell.Cell{}, err
		}
		out, err = op(out, right)
		if err != nil {
			return cell.Cell{}, err
		}
	}
}

// evalOne is the frame-workhorse executor: consumes exactly one value (or
// one special form's full literal-argument list) from feed.
func (e *Engine) evalOne(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	c := feed.Value

	if depth := cell.QuoteDepth(c); depth > 0 {
		feed.FetchNext()
		peeled, _ := cell.Unquote(c)
		return peeled, nil
	}

	switch {
	case c.Kind == cell.KindWord:
		if sym, ok := c.Symbol().(*symbol.Symbol); ok {
			if form, ok := e.specialForms[sym]; ok {
				feed.FetchNext()
				return form(e, s, feed)
			}
		}
		return e.evalWord(s, feed)

	case c.Kind == cell.KindSetWord:
		return e.evalSetWord(s, feed)

	case c.Kind == cell.KindGetWord:
		feed.FetchNext()
		sym, _ := c.Symbol().(*symbol.Symbol)
		ctx, idx, ok := s.Lookup(sym)
		if !ok {
			return cell.Cell{}, errors.UnboundWord(symName(sym))
		}
		return ctx.Get(idx), nil

	case c.Kind == cell.KindGroup:
		feed.FetchNext()
		arr, _ := c.AsArray()
		return e.Do(s, arr)

	case c.Kind.IsPath():
		return e.evalPath(s, feed)

	default:
		feed.FetchNext()
		return c, nil
	}
}

func symName(sym *symbol.Symbol) string {
	if sym == nil {
		return "?"
	}
	return sym.String()
}

// evalWord resolves a word to its stored value; if that value is an
// action, the action-executor takes over and fulfills its arguments from
// the remainder of feed (spec §4.5 "word -> lookup then possibly action").
func (e *Engine) evalWord(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	c := feed.Value
	sym, _ := c.Symbol().(*symbol.Symbol)
	ctx, idx, ok := s.Lookup(sym)
	if !ok {
		return cell.Cell{}, errors.UnboundWord(symName(sym))
	}
	val := ctx.Get(idx)
	feed.FetchNext()
	if val.Kind == cell.KindAction {
		act, _ := val.Payload.(*action.Action)
		return e.invokeAction(s, feed, act)
	}
	if val.IsNull() {
		return cell.Cell{}, errors.NeedNonVoidVar(symName(sym))
	}
	return val, nil
}

// evalSetWord evaluates the right-hand side as one full expression, then
// assigns it (creating the variable on first use), returning the assigned
// value (spec §4.5 "set-word → evaluate-right-then-assign").
func (e *Engine) evalSetWord(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	c := feed.Value
	sym, _ := c.Symbol().(*symbol.Symbol)
	feed.FetchNext()
	val, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	s.Define(sym, val)
	return val, nil
}

// throwValue raises a cooperative non-local exit (spec §4.9). Unlike
// Fail, which panics with a *errors.CoreError the nearest Rescue converts
// back into an ordinary value, a thrown value's panic payload is a
// *unwind.Thrown: only a matching CATCH (or, for definitional return, the
// originating function call) may convert it to a value; otherwise it
// propagates all the way to the embedding API's rescue boundary, which
// turns an uncaught one into errors.NoCatchForThrowErr.
func (e *Engine) throwValue(val cell.Cell, label interface{}) {
	e.Trace.OnThrow(val.String(), e.depth)
	panic(&unwind.Thrown{Value: val, Label: label})
}
