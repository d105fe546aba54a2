package eval

import (
	"revolt/internal/action"
	"revolt/internal/cell"
	"revolt/internal/errors"
	"revolt/internal/frame"
	"revolt/internal/unwind"
)

// FrameValue is a first-class reference to an already-fulfilled-but-not-
// yet-run action call, produced by ENCLOSE and consumed by DO (spec §4.6
// "Encloser... passes that frame as a first-class value to an outer
// action which may or may not execute it"). Its scope holds the inner
// action's bound argument values, mutable via path set (`f/value1: ...`)
// before DO actually runs the body.
type FrameValue struct {
	Action *action.Action
	Scope  *Scope
	ran    bool
}

// invokeAction is the action-executor (spec §4.5/§4.6): it fulfills act's
// parameters by consuming cells from feed, then dispatches according to
// act's composition Phase.
func (e *Engine) invokeAction(s *Scope, feed *frame.Feed, act *action.Action) (cell.Cell, error) {
	e.Trace.OnAction(symName(act.Label), e.depth)
	args, err := e.fulfillArgs(s, feed, act)
	if err != nil {
		return cell.Cell{}, err
	}
	return e.dispatch(s, act, args)
}

// fulfillArgs walks act's params left to right, consuming one source
// value per param according to its ParamClass (spec §4.6): hard-quoted
// params take the next cell literally, normal params run a full evalStep
// (so an argument expression may itself chain enfix, which is exactly how
// "1 + 2 * 3" ends up grouping as "1 + (2 * 3)" — the right-hand argument
// of "+" is evaluated by the same enfix-aware step that "*" also uses).
// Local/return-class params are never fulfilled from feed.
func (e *Engine) fulfillArgs(s *Scope, feed *frame.Feed, act *action.Action) ([]cell.Cell, error) {
	args := make([]cell.Cell, len(act.Params))
	if act.Exemplar != nil {
		// Specialize: pre-filled args are trusted and skipped entirely.
		for i := range act.Params {
			if v := act.Exemplar.Get(i + 1); !v.IsNull() {
				args[i] = v
			}
		}
	}
	for i, p := range act.Params {
		if p.Class == action.ParamLocal || p.Class == action.ParamReturn {
			continue
		}
		if act.Exemplar != nil && !args[i].IsNull() {
			continue
		}
		switch p.Class {
		case action.ParamHardQuoted:
			if feed.IsEnd() {
				return nil, errors.Newf(errors.NeedNonEnd, "%s: missing argument", symName(p.Sym))
			}
			args[i] = feed.Value
			feed.FetchNext()
		default: // normal, soft-quoted, modal: evaluate (soft/modal nuance not modeled)
			v, err := e.evalStep(s, feed)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}
	return args, nil
}

// dispatch runs act's composition phase to completion, recursing through
// Underlying/Outer as needed (spec §4.6 "Composition phases").
func (e *Engine) dispatch(s *Scope, act *action.Action, args []cell.Cell) (cell.Cell, error) {
	switch act.Phase {
	case action.PhaseNative:
		return e.runNative(s, act, args)
	case action.PhaseFunc:
		return e.callFunc(s, act, args)
	case action.PhaseAdapt:
		return e.callAdapt(s, act, args)
	case action.PhaseEnclose:
		return e.callEnclose(s, act, args)
	case action.PhaseSpecialize:
		return e.dispatch(s, act.Underlying, args)
	default:
		return e.runNative(s, act, args)
	}
}

func (e *Engine) runNative(s *Scope, act *action.Action, args []cell.Cell) (out cell.Cell, err error) {
	if act.Dispatcher == nil {
		return cell.Cell{}, errors.Newf(errors.User, "%s has no dispatcher", symName(act.Label))
	}
	res := act.Dispatcher(args)
	return e.resolveDispatch(s, res)
}

// resolveDispatch interprets one action.DispatchResult, recursing into a
// requested subframe (RContinuation) and honoring a catching frame's
// thrown-value interception (spec §4.6 dispatch-loop, §4.8 "catching").
func (e *Engine) resolveDispatch(s *Scope, res action.DispatchResult) (out cell.Cell, err error) {
	switch res.Kind {
	case action.RValue:
		return res.Value, nil
	case action.RInvisible:
		// The end marker is skipped by runFeed, so the caller's last value
		// stands.
		return cell.End(), nil
	case action.RThrown:
		e.throwValue(res.ThrownValue, res.ThrownLabel)
		panic("unreachable")
	case action.RContinuation:
		child := s
		if res.BodyCtx != nil {
			child = &Scope{Ctx: res.BodyCtx, Parent: s, FuncIdentity: s.FuncIdentity}
		}
		if res.Catching {
			return e.runCatching(child, res.Body, res.WantLabel)
		}
		return e.Do(child, res.Body)
	default:
		return cell.Null(), nil
	}
}

// runCatching evaluates body, intercepting a *unwind.Thrown whose label
// matches wantLabel (nil matches an unnamed throw) and converting it into
// an ordinary return value; any other thrown value or failure propagates.
func (e *Engine) runCatching(s *Scope, body *cell.Array, wantLabel interface{}) (out cell.Cell, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		t, ok := r.(*unwind.Thrown)
		if ok && t.Matches(wantLabel) {
			out, err = t.Value, nil
			return
		}
		panic(r)
	}()
	return e.Do(s, body)
}

// callFunc invokes a FUNC action: a fresh scope binds its arguments and
// records act's identity as its FuncIdentity (the label the RETURN special
// form throws against), runs the body, and converts a matching thrown
// return value into act's result (spec §4.9 "definitional return").
func (e *Engine) callFunc(parent *Scope, act *action.Action, args []cell.Cell) (out cell.Cell, err error) {
	body, ok := act.Body()
	if !ok {
		return cell.Cell{}, errors.Newf(errors.User, "%s has no body", symName(act.Label))
	}
	child := NewScope(parent)
	child.FuncIdentity = act.Identity()
	for i, p := range act.Params {
		child.Define(p.Sym, args[i])
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if t, ok := r.(*unwind.Thrown); ok && t.Label == act.Identity() {
			out, err = t.Value, nil
			return
		}
		panic(r)
	}()
	return e.Do(child, body)
}

// callAdapt runs the prelude under the same argument bindings the adaptee
// will see, then invokes the adaptee with those (possibly prelude-
// mutated) values (spec §4.6 "Adapter").
func (e *Engine) callAdapt(parent *Scope, act *action.Action, args []cell.Cell) (cell.Cell, error) {
	prelude, _ := act.Body()
	child := NewScope(parent)
	for i, p := range act.Underlying.Params {
		child.Define(p.Sym, args[i])
	}
	if prelude != nil {
		if _, err := e.Do(child, prelude); err != nil {
			return cell.Cell{}, err
		}
	}
	mutated := make([]cell.Cell, len(act.Underlying.Params))
	for i, p := range act.Underlying.Params {
		if _, idx, ok := child.Lookup(p.Sym); ok {
			mutated[i] = child.Ctx.Get(idx)
		}
	}
	return e.dispatch(parent, act.Underlying, mutated)
}

// callEnclose builds the inner action's frame (argument bindings only —
// its body does not run yet), wraps it as a FrameValue, and passes that
// single value to the outer action, which decides whether/when to run it
// via DO (spec §4.6 "Encloser").
func (e *Engine) callEnclose(parent *Scope, act *action.Action, args []cell.Cell) (cell.Cell, error) {
	inner := act.Underlying
	innerScope := NewScope(parent)
	for i, p := range inner.Params {
		innerScope.Define(p.Sym, args[i])
	}
	fv := &FrameValue{Action: inner, Scope: innerScope}
	outer := act.Outer()
	frameCell := cell.Cell{Kind: cell.KindFrame, Payload: fv}
	return e.dispatch(parent, outer, []cell.Cell{frameCell})
}

// runFrameValue executes fv's body (spec §4.6 ENCLOSE's outer action
// invoking DO on the frame it was handed), using fv's current — possibly
// path-mutated via `f/value1: ...` before DO ran — argument bindings. A
// thrown definitional return matching fv's own action identity is caught
// here exactly as callFunc catches its own; any other thrown value
// propagates to whatever called DO.
func (e *Engine) runFrameValue(fv *FrameValue) (out cell.Cell, err error) {
	args := make([]cell.Cell, len(fv.Action.Params))
	for i, p := range fv.Action.Params {
		if _, idx, ok := fv.Scope.Lookup(p.Sym); ok {
			args[i] = fv.Scope.Ctx.Get(idx)
		}
	}
	body, ok := fv.Action.Body()
	if !ok {
		return e.runNative(fv.Scope, fv.Action, args)
	}
	fv.Scope.FuncIdentity = fv.Action.Identity()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if t, ok := r.(*unwind.Thrown); ok && t.Label == fv.Action.Identity() {
			out, err = t.Value, nil
			return
		}
		panic(r)
	}()
	return e.Do(fv.Scope, body)
}
