package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"golang.org/x/tools/txtar"
)

// TestMain lets testscript scripts invoke "revolt" as an in-process
// subcommand rather than needing a separately built binary (the
// ecosystem-standard harness for CLI conformance testing, replacing the
// teacher's `*_test.sn` file discovery under cmd/sentra with script files
// under testdata/script).
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"revolt": func() int { return run(os.Args[1:]) },
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

// TestGoldenScriptsDocumentIntent parses each golden script directly with
// golang.org/x/tools/txtar (the archive format testscript's own script
// files use) to enforce that every fixture carries a "notes.txt" section
// explaining which spec §8 property it exercises — undocumented golden
// fixtures rot silently once they start passing.
func TestGoldenScriptsDocumentIntent(t *testing.T) {
	matches, err := filepath.Glob("testdata/script/*.txtar")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected at least one golden script under testdata/script")
	}
	for _, path := range matches {
		arc, err := txtar.ParseFile(path)
		if err != nil {
			t.Fatalf("txtar.ParseFile(%s): %v", path, err)
		}
		found := false
		for _, f := range arc.Files {
			if f.Name == "notes.txt" && len(f.Data) > 0 {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: missing a non-empty notes.txt section", path)
		}
	}
}
