// Package action implements callable function values: paramlists, param
// classes, the dispatcher-return protocol, and the composition phases
// (adapt/enclose/specialize/func) of spec §3/§4.6.
package action

import (
	"revolt/internal/bind"
	"revolt/internal/cell"
	"revolt/internal/symbol"
)

// ParamClass is one of the parameter-fulfillment disciplines spec §4.6
// names.
type ParamClass int

const (
	ParamNormal     ParamClass = iota // evaluate
	ParamHardQuoted                   // take literal
	ParamSoftQuoted                   // literal unless group/get-word/get-path
	ParamModal                        // soft unless a modal marker precedes
	ParamLocal                        // filled by dispatcher only
	ParamReturn                       // special local: the definitional return
)

// Param is one paramlist entry's fulfillment metadata, stored alongside
// (not instead of) the Keylist.Key the paramlist shares with ordinary
// contexts (spec §4.2: a paramlist "is a keylist" with IsParamlist set).
type Param struct {
	Sym        *symbol.Symbol
	Class      ParamClass
	Types      []cell.Kind // empty means "any type" (no typeset restriction)
	Refinement bool        // TS_REFINEMENT: may be supplied out of order via a path
}

// Phase names which composition layer is currently active for an action
// (spec §4.6 "Composition phases").
type Phase int

const (
	PhaseFunc Phase = iota
	PhaseAdapt
	PhaseEnclose
	PhaseSpecialize
	PhaseVoidDispatcher
	PhaseNullDispatcher
	PhaseUnchecked
	PhaseReturner
	PhaseCommenter
	PhaseNative
)

// DispatchKind is the dispatcher-return protocol (spec §4.6): a native
// dispatcher's single synchronous result, or a request for the caller
// (package eval, which owns the frame stack) to do more work before the
// call is complete.
type DispatchKind int

const (
	RValue         DispatchKind = iota // a(n ordinary) result
	RContinuation                      // push Body as a subframe, re-enter with state>0
	RThrown                            // a throw escaped the dispatcher
	RRedoChecked                       // re-run with the next phase, re-typecheck args
	RRedoUnchecked                     // re-run with the next phase, skip typecheck
	RInvisible                         // no change to the caller's out cell
)

// DispatchResult is what a Dispatcher (or package eval's phase interpreter)
// produces for one call step.
type DispatchResult struct {
	Kind DispatchKind

	Value cell.Cell // valid when Kind == RValue

	// Body/BodyCtx describe the subframe to push when Kind == RContinuation:
	// Body is evaluated under BodyCtx's specifier (nil BodyCtx means
	// "evaluate under the caller's own specifier," used by native control
	// constructs like IF that run an existing block rather than a fresh
	// function body).
	Body    *cell.Array
	BodyCtx *bind.Context

	// Catching marks the pushed subframe as wanting a look at throws
	// passing through it (spec §4.8's "catching" continuation variant).
	Catching bool
	// WantLabel, valid only when Catching, restricts which throw label
	// this frame intercepts; nil catches any unnamed throw.
	WantLabel interface{}

	ThrownValue cell.Cell   // valid when Kind == RThrown
	ThrownLabel interface{} // valid when Kind == RThrown
}

// Dispatcher is a native action body: a Go function computing a result (or
// a throw, or a request to run a block as a subframe) directly from its
// already-fulfilled argument cells. Paramlist-driven user actions (FUNC
// bodies, ADAPT preludes, ENCLOSE inner/outer calls) are not expressed as
// a Dispatcher — package eval interprets their Phase/Details directly,
// since only the trampoline can push and re-enter subframes across many
// steps.
type Dispatcher func(args []cell.Cell) DispatchResult

// Action is a callable value: paramlist + dispatcher + details + optional
// exemplar/underlying (spec §3 "Action", GLOSSARY).
type Action struct {
	Paramlist *bind.Keylist
	Params    []Param // parallel to Paramlist.Keys, index i <-> Params[i]
	Exemplar  *bind.Context

	Phase      Phase
	Dispatcher Dispatcher // set when Phase == PhaseNative
	Details    *cell.Array
	Underlying *Action // the un-composed action this one specializes/adapts/encloses

	Label *symbol.Symbol // bound name, for error messages and stack traces

	// outer holds ENCLOSE's second action — the one that receives the
	// built inner frame — distinct from Underlying (the inner action)
	// because both are needed simultaneously. Reached via Outer().
	outer *Action

	// identity distinguishes this *Action from any other for definitional
	// return/unwind matching (spec §4.9): RETURN's stored binding compares
	// against this, not against the paramlist pointer, so a specialized or
	// adapted action built atop the same underlying FUNC still matches the
	// frame that is actually running.
	identity *Action
}

// NewNative builds a phase-less builtin action directly from a Go
// dispatcher (e.g. ADD, APPEND, PRINT).
func NewNative(label *symbol.Symbol, params []Param) *Action {
	pl := bind.NewKeylist()
	pl.IsParamlist = true
	for _, p := range params {
		pl.Append(p.Sym)
	}
	a := &Action{Paramlist: pl, Params: params, Phase: PhaseNative, Label: label}
	a.identity = a
	return a
}

// WithDispatcher attaches d to a native action, returning a for chaining.
func (a *Action) WithDispatcher(d Dispatcher) *Action {
	a.Dispatcher = d
	return a
}

// NewFunc builds a FUNC action: phase = func, body stored as Details[0],
// and a fresh paramlist never shared with any other action (matching spec
// §4.2's "frames never derive" resolution of the paramlist-derivation
// question). Definitional RETURN (spec §4.9) is not a paramlist slot:
// package eval records this action's Identity() on each call's scope, and
// its RETURN special form throws against that identity — not wired here.
func NewFunc(label *symbol.Symbol, params []Param, body *cell.Array) *Action {
	pl := bind.NewKeylist()
	pl.IsParamlist = true
	for _, p := range params {
		pl.Append(p.Sym)
	}
	details := cell.New()
	details.Push(cell.ArrayVal(cell.KindBlock, body))
	a := &Action{Paramlist: pl, Params: params, Phase: PhaseFunc, Details: details, Label: label}
	a.identity = a
	return a
}

// Identity returns the value definitional RETURN/UNWIND compares against
// to decide whether a thrown value targets this exact action's frame.
func (a *Action) Identity() interface{} { return a.identity }

// Body returns the FUNC/ADAPT/ENCLOSE body block stored in Details[0].
func (a *Action) Body() (*cell.Array, bool) {
	if a.Details == nil || a.Details.Len() == 0 {
		return nil, false
	}
	return a.Details.At(0).AsArray()
}

// NewAdapt builds an ADAPT composition (spec §4.6): prelude runs first
// under the adaptee's own paramlist context, then phase becomes the
// adaptee (Underlying) with a redo-checked pass.
func NewAdapt(label *symbol.Symbol, adaptee *Action, prelude *cell.Array) *Action {
	details := cell.New()
	details.Push(cell.ArrayVal(cell.KindBlock, prelude))
	a := &Action{
		Paramlist:  adaptee.Paramlist,
		Params:     adaptee.Params,
		Phase:      PhaseAdapt,
		Details:    details,
		Underlying: adaptee,
		Label:      label,
	}
	a.identity = adaptee.identity
	return a
}

// NewEnclose builds an ENCLOSE composition: invoking it builds the inner
// action's frame normally, then passes that frame as a first-class value
// to outer, which decides whether and when to run it (spec §4.6).
func NewEnclose(label *symbol.Symbol, inner, outer *Action) *Action {
	details := cell.New()
	a := &Action{
		Paramlist:  inner.Paramlist,
		Params:     inner.Params,
		Phase:      PhaseEnclose,
		Details:    details,
		Underlying: inner,
		Label:      label,
	}
	a.identity = a
	// enclose keeps its own outer pointer distinct from Underlying (the
	// inner action) because both are needed simultaneously.
	a.outer = outer
	return a
}

// Outer returns the outer action of an ENCLOSE composition.
func (a *Action) Outer() *Action { return a.outer }

// NewSpecialize builds a SPECIALIZE composition: exemplar pre-fills some
// of the underlying action's args, which are then trusted and skipped
// during ordinary fulfillment (spec §4.6 "Specialized (exemplar) args are
// trusted and not rechecked").
func NewSpecialize(label *symbol.Symbol, underlying *Action, exemplar *bind.Context) *Action {
	a := &Action{
		Paramlist:  underlying.Paramlist,
		Params:     underlying.Params,
		Phase:      PhaseSpecialize,
		Exemplar:   exemplar,
		Underlying: underlying,
		Label:      label,
	}
	a.identity = underlying.identity
	return a
}

// NumParams returns the number of paramlist slots (archetype excluded).
func (a *Action) NumParams() int { return len(a.Params) }

// ParamAt returns the i'th (0-based) param's metadata.
func (a *Action) ParamAt(i int) Param { return a.Params[i] }
