package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNoopHookDiscardsEverything(t *testing.T) {
	var h Hook = NoopHook{}
	h.OnStep("do", 0)
	h.OnAction("print", 1)
	h.OnThrow("loop", 2)
	h.OnError(errors.New("boom"), 0)
}

func TestSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)

	s.OnStep("do", 0)
	s.OnAction("print", 1)
	s.OnThrow("loop", 0)
	s.OnError(errors.New("boom"), 2)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 trace lines, got %d: %q", len(lines), buf.String())
	}
	for i, want := range []string{"step", "action", "throw", "error"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, expected to contain %q", i, lines[i], want)
		}
	}
}

func TestSinkIndentsByDepth(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)
	s.OnAction("inner", 2)

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.Contains(line, "    action inner") {
		t.Fatalf("expected depth-2 indentation of 4 spaces before the kind, got %q", line)
	}
}

func TestSinkWithNonFileWriterIsUncolored(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)
	s.OnStep("do", 0)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no ANSI color codes when writing to a non-terminal io.Writer, got %q", buf.String())
	}
}
