// Command revolt is a minimal CLI exercising the embedding API of spec §6
// end to end. Grounded on the teacher's cmd/sentra/main.go command-
// dispatch table (a string switch plus an alias map), scaled down to the
// handful of subcommands this core's scope actually supports — there is
// no scanner (spec §1 excludes "the lexical scanner producing value
// trees from source text" as an external collaborator), so revolt drives
// the evaluator with small Go-built demo programs rather than parsing
// source text from the command line.
package main

import (
	"fmt"
	"os"

	"revolt/internal/api"
	"revolt/internal/cell"
	"revolt/internal/eval"
	"revolt/internal/trace"
)

var commandAliases = map[string]string{
	"e": "eval",
	"t": "trace",
	"v": "version",
	"h": "help",
}

const version = "0.1.0"

func main() { os.Exit(run(os.Args[1:])) }

// run is the dispatch table's body, split out from main so it returns an
// exit code instead of calling os.Exit directly — the shape
// testscript.RunMain's registered command functions expect (see
// revolt_test.go), grounded on the teacher's same string-switch-plus-
// alias-map dispatch in cmd/sentra/main.go.
func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 0
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "help", "--help", "-h":
		usage()
	case "version", "--version", "-v":
		fmt.Println("revolt " + version)
	case "eval":
		return runDemo(false)
	case "trace":
		return runDemo(true)
	default:
		fmt.Fprintf(os.Stderr, "revolt: unknown command %q\n", args[0])
		usage()
		return 1
	}
	return 0
}

func usage() {
	fmt.Println(`revolt — evaluator/binding-subsystem demo CLI

Usage:
  revolt eval     run the built-in demo program and print its result
  revolt trace    same, with a human-readable execution trace on stdout
  revolt version  print the version
  revolt help     print this message`)
}

// runDemo builds and evaluates a small program exercising enfix
// arithmetic, IF, and FUNC with definitional RETURN — properties eval's
// own test suite also checks (spec §8) — through
// the embedding API rather than eval.Engine directly, so the CLI is
// itself a consumer of package api like any other host program.
func runDemo(withTrace bool) int {
	root := api.Startup()
	defer root.Shutdown()

	if withTrace {
		root.Engine.SetTrace(trace.NewSink(os.Stdout))
	}

	prog := demoProgram(root.Engine)
	h, err := root.Evaluate(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "revolt: %v\n", err)
		return 1
	}
	fmt.Println(h.Value.String())
	return 0
}

func sym(e *eval.Engine, kind cell.Kind, name string) cell.Cell {
	return cell.Word(kind, e.Table.Intern(name), nil)
}

func blockOf(cells ...cell.Cell) cell.Cell {
	arr := cell.New()
	for _, c := range cells {
		arr.Push(c)
	}
	return cell.ArrayVal(cell.KindBlock, arr)
}

// demoProgram builds: `if 1 + 2 * 3 [print "seven"]` (IF's condition is a
// full enfix expression that reduces to 7; any truthy result runs the
// branch, so the output does not tell 7 apart from other integers) then a
// FUNC call returning via a definitional RETURN, matching the concrete
// scenarios spec §8 lists as testable properties.
func demoProgram(e *eval.Engine) *cell.Array {
	arr := cell.New()
	arr.Push(sym(e, cell.KindWord, "if"))
	arr.Push(cell.Integer(1))
	arr.Push(sym(e, cell.KindWord, "+"))
	arr.Push(cell.Integer(2))
	arr.Push(sym(e, cell.KindWord, "*"))
	arr.Push(cell.Integer(3))
	arr.Push(blockOf(sym(e, cell.KindWord, "print"), cell.Text(cell.KindText, "seven")))

	arr.Push(sym(e, cell.KindSetWord, "double"))
	arr.Push(sym(e, cell.KindWord, "func"))
	arr.Push(blockOf(sym(e, cell.KindWord, "n")))
	arr.Push(blockOf(
		sym(e, cell.KindWord, "return"),
		sym(e, cell.KindWord, "n"),
		sym(e, cell.KindWord, "+"),
		sym(e, cell.KindWord, "n"),
	))

	arr.Push(sym(e, cell.KindWord, "double"))
	arr.Push(cell.Integer(21))
	return arr
}
