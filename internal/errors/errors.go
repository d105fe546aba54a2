// Package errors implements the core error kinds of spec §7: the fixed
// vocabulary of evaluator-raised faults, each carrying a source location
// and an optional call-stack snapshot for rendering.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType enumerates spec §7's error kinds.
type ErrorType string

const (
	Unbound        ErrorType = "unbound"
	NeedNonVoid    ErrorType = "need-non-void"
	NeedNonEnd     ErrorType = "need-non-end"
	BadReturnType  ErrorType = "bad-return-type"
	NotBound       ErrorType = "not-bound"
	NoRelative     ErrorType = "no-relative"
	LiteralLeftPath ErrorType = "literal-left-path"
	AmbiguousInfix ErrorType = "ambiguous-infix"
	SizeLimit      ErrorType = "size-limit"
	Protected      ErrorType = "protected"
	InvalidExit    ErrorType = "invalid-exit"
	User           ErrorType = "user"
	Halted         ErrorType = "halt"
	NoCatchForThrow ErrorType = "no-catch-for-throw"
)

// SourceLocation names where in a program an error was raised. Line/Column
// are 1-based; zero means unknown (errors raised by native dispatchers
// rather than the scanner often have no location).
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one entry of an error's captured call stack.
type StackFrame struct {
	Label string // action label symbol spelling, or "" for an anonymous frame
	File   string
	Line   int
}

// CoreError is the concrete error type every evaluator fault uses. It is
// also the value `fail` stores and `trap` converts back into an ordinary
// value (spec §4.9).
type CoreError struct {
	Type      ErrorType
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
}

func (e *CoreError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Type, e.Message))
	if e.Location.File != "" || e.Location.Line != 0 {
		sb.WriteString(fmt.Sprintf(" (%s:%d:%d)", e.Location.File, e.Location.Line, e.Location.Column))
	}
	for _, f := range e.CallStack {
		if f.Label != "" {
			sb.WriteString(fmt.Sprintf("\n  at %s (%s:%d)", f.Label, f.File, f.Line))
		} else {
			sb.WriteString(fmt.Sprintf("\n  at %s:%d", f.File, f.Line))
		}
	}
	return sb.String()
}

// New constructs a bare CoreError of the given kind.
func New(kind ErrorType, message string) *CoreError {
	return &CoreError{Type: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind ErrorType, format string, args ...interface{}) *CoreError {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithSource attaches a source location, returning e for chaining.
func (e *CoreError) WithSource(loc SourceLocation) *CoreError {
	e.Location = loc
	return e
}

// WithStack attaches a captured call stack, returning e for chaining.
func (e *CoreError) WithStack(stack []StackFrame) *CoreError {
	e.CallStack = stack
	return e
}

// AddStackFrame pushes one more frame onto e's call stack, innermost last,
// used as the trap handler unwinds frames above a fail site.
func (e *CoreError) AddStackFrame(f StackFrame) *CoreError {
	e.CallStack = append(e.CallStack, f)
	return e
}

// UnboundWord builds the error raised when a word has no binding at lookup time.
func UnboundWord(spelling string) *CoreError {
	return Newf(Unbound, "%s has no value", spelling)
}

// NeedNonVoidVar builds the error raised when a variable read returns null
// where a value was required.
func NeedNonVoidVar(spelling string) *CoreError {
	return Newf(NeedNonVoid, "%s needs a value", spelling)
}

// BadReturnTypeErr builds the "action returned a value not in its return
// typeset" error.
func BadReturnTypeErr(label string) *CoreError {
	return Newf(BadReturnType, "%s did not return the correct type", label)
}

// NoCatchForThrowErr builds the error an uncaught throw is converted into at
// the evaluator root.
func NoCatchForThrowErr() *CoreError {
	return New(NoCatchForThrow, "no matching catch for thrown value")
}

// HaltErr builds the error produced when the halt signal is sampled.
func HaltErr() *CoreError {
	return New(Halted, "evaluation halted")
}
