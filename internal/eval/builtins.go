package eval

import (
	"fmt"

	"revolt/internal/action"
	"revolt/internal/cell"
	"revolt/internal/errors"
	"revolt/internal/frame"
	"revolt/internal/port"
	"revolt/internal/symbol"
	"revolt/internal/unwind"
)

// installArithmetic registers the well-known enfix arithmetic operators
// (spec §8's testable enfix-precedence property: "1 + 2 * 3" must read
// back 7, which falls out of postSwitch recursing through evalStep for
// the right-hand side rather than from any explicit precedence table
// here).
func (e *Engine) installArithmetic() {
	reg := func(name string, op func(l, r cell.Cell) (cell.Cell, error)) {
		e.wellKnownEnfix[e.Table.Intern(name)] = op
	}
	reg("+", func(l, r cell.Cell) (cell.Cell, error) { return numOp(l, r, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b }) })
	reg("-", func(l, r cell.Cell) (cell.Cell, error) { return numOp(l, r, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }) })
	reg("*", func(l, r cell.Cell) (cell.Cell, error) { return numOp(l, r, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }) })
	reg("/", func(l, r cell.Cell) (cell.Cell, error) {
		if ri, ok := r.AsInteger(); ok && ri == 0 {
			return cell.Cell{}, errors.Newf(errors.User, "division by zero")
		}
		if rf, ok := r.AsDecimal(); ok && rf == 0 {
			return cell.Cell{}, errors.Newf(errors.User, "division by zero")
		}
		return numOp(l, r, func(a, b float64) float64 { return a / b }, func(a, b int64) int64 { return a / b })
	})
}

// numOp applies intOp when both operands are integers, else promotes both
// to decimal and applies floatOp.
func numOp(l, r cell.Cell, floatOp func(a, b float64) float64, intOp func(a, b int64) int64) (cell.Cell, error) {
	li, lok := l.AsInteger()
	ri, rok := r.AsInteger()
	if lok && rok {
		return cell.Integer(intOp(li, ri)), nil
	}
	lf, lok2 := asFloat(l)
	rf, rok2 := asFloat(r)
	if !lok2 || !rok2 {
		return cell.Cell{}, errors.Newf(errors.User, "arithmetic requires numeric operands")
	}
	return cell.Decimal(floatOp(lf, rf)), nil
}

func asFloat(c cell.Cell) (float64, bool) {
	if i, ok := c.AsInteger(); ok {
		return float64(i), true
	}
	if f, ok := c.AsDecimal(); ok {
		return f, true
	}
	return 0, false
}

// installSpecialForms registers the control-construct words that the
// frame-workhorse executor intercepts before treating a word as an
// ordinary variable lookup (spec §4.5/§4.6/§4.9 concrete scenarios).
func (e *Engine) installSpecialForms() {
	reg := func(name string, f specialForm) { e.specialForms[e.Table.Intern(name)] = f }

	reg("if", formIf)
	reg("let", formLet)
	reg("func", formFunc)
	reg("catch", formCatch)
	reg("throw", formThrow)
	reg("return", formReturn)
	reg("adapt", formAdapt)
	reg("enclose", formEnclose)
	reg("do", formDo)
	reg("comment", formComment)
	reg("for-each", formForEach)
}

// installNatives registers the handful of native (Go-dispatcher) actions
// this port ships as ordinary values in root — COPY, APPEND, and PRINT
// (spec §8 concrete scenarios reference mutation and output), found by
// evalWord like any user-defined variable rather than intercepted as a
// special form.
func (e *Engine) installNatives(root *Scope) {
	def := func(name string, params []action.Param, d action.Dispatcher) {
		sym := e.Table.Intern(name)
		act := action.NewNative(sym, params).WithDispatcher(d)
		root.Define(sym, cell.Cell{Kind: cell.KindAction, Payload: act})
	}

	def("print", []action.Param{{Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		fmt.Println(args[0].String())
		return action.DispatchResult{Kind: action.RInvisible}
	})

	def("copy", []action.Param{{Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		src := args[0]
		if arr, ok := src.AsArray(); ok {
			dup := cell.NewWithCapacity(arr.Len())
			for _, c := range arr.Cells {
				dup.Push(c)
			}
			return action.DispatchResult{Kind: action.RValue, Value: cell.ArrayVal(src.Kind, dup)}
		}
		return action.DispatchResult{Kind: action.RValue, Value: src}
	})

	def("append", []action.Param{{Class: action.ParamNormal}, {Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		arr, ok := args[0].AsArray()
		if !ok {
			unwind.Fail(errors.Newf(errors.User, "append requires a block"))
		}
		arr.Push(args[1])
		return action.DispatchResult{Kind: action.RValue, Value: args[0]}
	})

	e.installPortNatives(def)
}

// installPortNatives registers open-port/close-port/read-port/write-port
// as ordinary native actions dispatching into package port's scheme
// registry (SPEC_FULL.md's PORT supplement): opening, reading, and
// closing a port go through the same argument-fulfillment/typecheck path
// as any other native, with no special-cased evaluator logic.
func (e *Engine) installPortNatives(def func(string, []action.Param, action.Dispatcher)) {
	def("open-port", []action.Param{{Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		spec, ok := args[0].AsText()
		if !ok {
			unwind.Fail(errors.Newf(errors.User, "open-port requires a text spec"))
		}
		p, err := port.OpenPort(spec)
		if err != nil {
			unwind.Fail(errors.Newf(errors.User, "%s", err))
		}
		return action.DispatchResult{Kind: action.RValue, Value: cell.Cell{Kind: cell.KindPort, Payload: p}}
	})

	def("close-port", []action.Param{{Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		p := mustPort(args[0])
		if err := port.ClosePort(p); err != nil {
			unwind.Fail(errors.Newf(errors.User, "%s", err))
		}
		return action.DispatchResult{Kind: action.RInvisible}
	})

	def("read-port", []action.Param{{Class: action.ParamNormal}, {Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		p := mustPort(args[0])
		query, _ := args[1].AsText()
		rows, err := p.Conn.Read(query)
		if err != nil {
			unwind.Fail(errors.Newf(errors.User, "%s", err))
		}
		return action.DispatchResult{Kind: action.RValue, Value: e.rowsToBlock(rows)}
	})

	def("write-port", []action.Param{{Class: action.ParamNormal}, {Class: action.ParamNormal}}, func(args []cell.Cell) action.DispatchResult {
		p := mustPort(args[0])
		payload, _ := args[1].AsText()
		n, err := p.Conn.Write(payload)
		if err != nil {
			unwind.Fail(errors.Newf(errors.User, "%s", err))
		}
		return action.DispatchResult{Kind: action.RValue, Value: cell.Integer(n)}
	})
}

func mustPort(c cell.Cell) *port.Port {
	p, ok := c.Payload.(*port.Port)
	if c.Kind != cell.KindPort || !ok {
		unwind.Fail(errors.Newf(errors.User, "expected a port value"))
	}
	return p
}

// rowsToBlock renders port.Row results as a block of rows, each row a
// flat sequence of set-word/value pairs, since this port has no map or
// object literal constructor.
func (e *Engine) rowsToBlock(rows []port.Row) cell.Cell {
	out := cell.NewWithCapacity(len(rows))
	for _, row := range rows {
		rowArr := cell.NewWithCapacity(len(row) * 2)
		for k, v := range row {
			rowArr.Push(cell.Cell{Kind: cell.KindSetWord, Payload: e.Table.Intern(k)})
			rowArr.Push(goValueToCell(v))
		}
		out.Push(cell.ArrayVal(cell.KindBlock, rowArr))
	}
	return cell.ArrayVal(cell.KindBlock, out)
}

func goValueToCell(v interface{}) cell.Cell {
	switch t := v.(type) {
	case string:
		return cell.Text(cell.KindText, t)
	case int64:
		return cell.Integer(t)
	case int:
		return cell.Integer(int64(t))
	case float64:
		return cell.Decimal(t)
	case bool:
		return cell.Logic(t)
	case nil:
		return cell.Null()
	default:
		return cell.Text(cell.KindText, fmt.Sprintf("%v", t))
	}
}

func literalBlock(feed *frame.Feed) (*cell.Array, error) {
	c := feed.Value
	if c.Kind != cell.KindBlock {
		return nil, errors.Newf(errors.User, "expected a block, got %s", c.Kind)
	}
	feed.FetchNext()
	arr, _ := c.AsArray()
	return arr, nil
}

func literalWord(feed *frame.Feed) (*symbol.Symbol, error) {
	c := feed.Value
	if c.Kind != cell.KindWord {
		return nil, errors.Newf(errors.User, "expected a word, got %s", c.Kind)
	}
	feed.FetchNext()
	sym, _ := c.Symbol().(*symbol.Symbol)
	return sym, nil
}

// fetchActionLiteral resolves the next word in feed to an already-defined
// action value without invoking it — used by adapt/enclose, which name
// their constituent actions rather than calling them (spec §4.6).
func fetchActionLiteral(s *Scope, feed *frame.Feed) (*action.Action, error) {
	sym, err := literalWord(feed)
	if err != nil {
		return nil, err
	}
	ctx, idx, ok := s.Lookup(sym)
	if !ok {
		return nil, errors.UnboundWord(symName(sym))
	}
	val := ctx.Get(idx)
	act, ok := val.Payload.(*action.Action)
	if val.Kind != cell.KindAction || !ok {
		return nil, errors.Newf(errors.User, "%s is not an action", symName(sym))
	}
	return act, nil
}

// formIf implements `if condition [then-block]` with an optional
// `else [else-block]` tail (spec §8 concrete scenario: IF/ELSE control
// flow).
func formIf(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	cond, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	thenBlk, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	var elseBlk *cell.Array
	if !feed.IsEnd() && feed.Value.Kind == cell.KindWord {
		if sym, ok := feed.Value.Symbol().(*symbol.Symbol); ok && sym.Canon() == "else" {
			feed.FetchNext()
			elseBlk, err = literalBlock(feed)
			if err != nil {
				return cell.Cell{}, err
			}
		}
	}
	truthy := isTruthy(cond)
	if truthy {
		return e.Do(NewScope(s), thenBlk)
	}
	if elseBlk != nil {
		return e.Do(NewScope(s), elseBlk)
	}
	return cell.Null(), nil
}

func isTruthy(c cell.Cell) bool {
	if c.IsNull() || c.Kind == cell.KindBlank {
		return false
	}
	if b, ok := c.AsLogic(); ok {
		return b
	}
	return true
}

// formLet implements a minimal `let name value` local declaration: unlike
// a bare set-word (which overwrites a binding of the same name already in
// the current scope, and otherwise adds one there), let always appends a
// new variable to the current scope (spec
// §8's "virtual bind" property: a loop body's let-bound name must not
// leak into, or collide with, the same name in an outer scope).
func formLet(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	sym, err := literalWord(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	val, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	s.Ctx.AppendVar(sym, val)
	return val, nil
}

// formFunc implements `func [spec] [body]`, building a plain-normal-
// param FUNC action (spec §3/§4.6). Refinements and typed params are not
// modeled by this port's spec block grammar: every spec word becomes a
// ParamNormal.
func formFunc(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	specBlk, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	body, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	var params []action.Param
	for _, c := range specBlk.Cells {
		if c.Kind != cell.KindWord {
			continue
		}
		sym, _ := c.Symbol().(*symbol.Symbol)
		params = append(params, action.Param{Sym: sym, Class: action.ParamNormal})
	}
	act := action.NewFunc(nil, params, body)
	return cell.Cell{Kind: cell.KindAction, Payload: act}, nil
}

// formCatch implements `catch [body]`, intercepting any unnamed throw
// raised while evaluating body (spec §4.9, §8 concrete scenario).
func formCatch(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	body, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	return e.runCatching(NewScope(s), body, nil)
}

// formThrow implements `throw value`, an unnamed cooperative non-local
// exit (spec §4.9).
func formThrow(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	val, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	e.throwValue(val, nil)
	panic("unreachable")
}

// formReturn implements definitional RETURN: the thrown label is the
// enclosing function's action identity (Scope.FuncIdentity), not a global
// or named catcher (spec §4.9). Every call of one FUNC shares that label,
// so the innermost running call of that action is the one that catches it.
func formReturn(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	val, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	if s.FuncIdentity == nil {
		return cell.Cell{}, errors.Newf(errors.InvalidExit, "return used outside of a function call")
	}
	e.throwValue(val, s.FuncIdentity)
	panic("unreachable")
}

// formAdapt implements `adapt target-word [prelude-block]` (spec §4.6
// "Adapter").
func formAdapt(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	target, err := fetchActionLiteral(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	prelude, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	act := action.NewAdapt(target.Label, target, prelude)
	return cell.Cell{Kind: cell.KindAction, Payload: act}, nil
}

// formEnclose implements `enclose inner-word outer-word` (spec §4.6
// "Encloser").
func formEnclose(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	inner, err := fetchActionLiteral(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	outer, err := fetchActionLiteral(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	act := action.NewEnclose(inner.Label, inner, outer)
	return cell.Cell{Kind: cell.KindAction, Payload: act}, nil
}

// formDo implements `do value`: a block argument runs under a fresh child
// scope, a frame argument (ENCLOSE's built-but-unexecuted inner frame)
// runs exactly once, and anything else evaluates to itself (spec §4.6,
// §8 concrete scenario 5).
func formDo(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	val, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	switch val.Kind {
	case cell.KindBlock, cell.KindGroup:
		arr, _ := val.AsArray()
		return e.Do(NewScope(s), arr)
	case cell.KindFrame:
		fv, ok := val.Payload.(*FrameValue)
		if !ok {
			return val, nil
		}
		return e.runFrameValue(fv)
	default:
		return val, nil
	}
}

// formComment implements `comment [ignored]`: a no-op producing no
// visible result (spec GLOSSARY "invisible").
func formComment(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	if !feed.IsEnd() {
		feed.FetchNext()
	}
	return cell.End(), nil
}

// formForEach implements `for-each word [series] [body]` with virtual-
// bind-per-iteration semantics: each pass gets a fresh child scope, so the
// loop variable never leaks into, or persists past, the loop (spec §8
// "virtual bind" testable property).
func formForEach(e *Engine, s *Scope, feed *frame.Feed) (cell.Cell, error) {
	sym, err := literalWord(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	seriesVal, err := e.evalStep(s, feed)
	if err != nil {
		return cell.Cell{}, err
	}
	body, err := literalBlock(feed)
	if err != nil {
		return cell.Cell{}, err
	}
	arr, ok := seriesVal.AsArray()
	if !ok {
		return cell.Cell{}, errors.Newf(errors.User, "for-each requires a block series")
	}
	last := cell.Null()
	for _, item := range arr.Cells {
		iter := NewScope(s)
		iter.Ctx.AppendVar(sym, item)
		v, err := e.Do(iter, body)
		if err != nil {
			return cell.Cell{}, err
		}
		if !v.IsEnd() {
			last = v
		}
	}
	return last, nil
}

