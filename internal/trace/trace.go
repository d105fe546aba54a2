// Package trace implements an ambient tracing sink for the evaluator: a
// callback interface invoked at executor-call granularity (generalizing
// the teacher's bytecode-instruction-granularity DebugHook, internal/vm's
// `OnInstruction`/`OnCall`/`OnReturn`/`OnError`), plus a human-readable
// writer that renders a trace stream to a terminal or log file.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
)

// Hook is the evaluator-side callback surface, mirroring the teacher's
// DebugHook shape but at the granularity this port's executors actually
// expose: one step per evalStep call, one action invocation, one thrown
// non-local exit, and one raised error.
type Hook interface {
	OnStep(label string, depth int)
	OnAction(label string, depth int)
	OnThrow(label string, depth int)
	OnError(err error, depth int)
}

// NoopHook implements Hook by discarding every event — the zero-overhead
// default when tracing is not requested (spec §5/ambient: tracing must
// never slow the non-debug path).
type NoopHook struct{}

func (NoopHook) OnStep(string, int)    {}
func (NoopHook) OnAction(string, int)  {}
func (NoopHook) OnThrow(string, int)   {}
func (NoopHook) OnError(error, int)    {}

// Sink renders trace events to w, timestamping each line and colorizing
// output when w is a terminal (spec ambient tracing, SPEC_FULL DOMAIN
// STACK).
type Sink struct {
	w       io.Writer
	color   bool
	started time.Time
}

// NewSink builds a Sink writing to w, auto-detecting whether w is an
// interactive terminal (via isatty) to decide whether to colorize.
func NewSink(w io.Writer) *Sink {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Sink{w: w, color: color, started: time.Now()}
}

const strftimeClock = "%H:%M:%S"

func (s *Sink) clock() string {
	out, err := strftime.Format(strftimeClock, time.Now())
	if err != nil {
		return time.Now().Format("15:04:05")
	}
	return out
}

func (s *Sink) line(kind, label string, depth int, extra string) {
	indent := strings.Repeat("  ", depth)
	elapsed := humanize.RelTime(s.started, time.Now(), "", "")
	msg := fmt.Sprintf("%s [%s] %s%s %s", s.clock(), elapsed, indent, kind, label)
	if extra != "" {
		msg += " " + extra
	}
	if s.color {
		msg = colorFor(kind) + msg + "\x1b[0m"
	}
	fmt.Fprintln(s.w, msg)
}

func colorFor(kind string) string {
	switch kind {
	case "error":
		return "\x1b[31m"
	case "throw":
		return "\x1b[33m"
	case "action":
		return "\x1b[36m"
	default:
		return "\x1b[0m"
	}
}

func (s *Sink) OnStep(label string, depth int)   { s.line("step", label, depth, "") }
func (s *Sink) OnAction(label string, depth int) { s.line("action", label, depth, "") }
func (s *Sink) OnThrow(label string, depth int)  { s.line("throw", label, depth, "") }
func (s *Sink) OnError(err error, depth int)     { s.line("error", err.Error(), depth, "") }
