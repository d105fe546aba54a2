package eval

import (
	"revolt/internal/action"
	"revolt/internal/bind"
	"revolt/internal/cell"
	"revolt/internal/errors"
	"revolt/internal/frame"
	"revolt/internal/symbol"
)

// evalPath is the path-executor (spec §4.5). Full Ren-C path dispatch
// covers refinements, ports, and PICK*/POKE* actions on arbitrary series;
// this port scopes it down to the two concrete forms the examples in
// §8's concrete scenarios actually exercise — positional indexing into a
// block (`blk/1`) and field access into a context (`obj/field`,
// `enclosed-frame/value1`) — and documents the cut rather than silently
// dropping the rest (see DESIGN.md).
func (e *Engine) evalPath(s *Scope, feed *frame.Feed) (cell.Cell, error) {
	c := feed.Value
	feed.FetchNext()
	arr, ok := c.AsArray()
	if !ok || arr.Len() == 0 {
		return cell.Cell{}, errors.Newf(errors.User, "invalid path")
	}
	steps := arr.Cells

	cur, err := e.resolvePathHead(s, steps[0])
	if err != nil {
		return cell.Cell{}, err
	}

	isSet := c.Kind == cell.KindSetPath
	last := len(steps) - 1
	for i := 1; i < len(steps); i++ {
		step := steps[i]
		atLast := i == last
		next, setter, err := stepInto(cur, step)
		if err != nil {
			return cell.Cell{}, err
		}
		if atLast && isSet {
			val, err := e.evalStep(s, feed)
			if err != nil {
				return cell.Cell{}, err
			}
			setter(val)
			return val, nil
		}
		cur = next
	}

	if c.Kind == cell.KindGetPath {
		return cur, nil
	}
	if cur.Kind == cell.KindAction {
		act, _ := cur.Payload.(*action.Action)
		return e.invokeAction(s, feed, act)
	}
	return cur, nil
}

func (e *Engine) resolvePathHead(s *Scope, head cell.Cell) (cell.Cell, error) {
	if head.Kind != cell.KindWord {
		return head, nil
	}
	sym, _ := head.Symbol().(*symbol.Symbol)
	ctx, idx, found := s.Lookup(sym)
	if !found {
		return cell.Cell{}, errors.UnboundWord(symName(sym))
	}
	return ctx.Get(idx), nil
}

// stepInto resolves one path step against cur, returning the next value
// and a setter closure usable only when this is the path's final step.
func stepInto(cur cell.Cell, step cell.Cell) (cell.Cell, func(cell.Cell), error) {
	switch step.Kind {
	case cell.KindInteger:
		n, _ := step.AsInteger()
		arr, ok := cur.AsArray()
		if !ok {
			return cell.Cell{}, nil, errors.Newf(errors.User, "path index into non-array value")
		}
		i := int(n) - 1
		return arr.At(i), func(v cell.Cell) { arr.Set(i, v) }, nil
	case cell.KindWord:
		sym, _ := step.Symbol().(*symbol.Symbol)
		ctx, ok := contextOf(cur)
		if !ok {
			return cell.Cell{}, nil, errors.Newf(errors.User, "path field into non-object value")
		}
		idx := ctx.Lookup(sym)
		if idx == 0 {
			return cell.Cell{}, nil, errors.UnboundWord(symName(sym))
		}
		return ctx.Get(idx), func(v cell.Cell) { ctx.Set(idx, v) }, nil
	default:
		return cell.Cell{}, nil, errors.Newf(errors.User, "unsupported path step kind %s", step.Kind)
	}
}

// contextOf extracts the bind.Context backing an object/module/error cell,
// or a FrameValue's own argument scope for enclose-produced frame values.
func contextOf(c cell.Cell) (*bind.Context, bool) {
	if c.Kind == cell.KindFrame {
		fv, ok := c.Payload.(*FrameValue)
		if !ok {
			return nil, false
		}
		return fv.Scope.Ctx, true
	}
	ctx, ok := c.Payload.(*bind.Context)
	return ctx, ok
}
