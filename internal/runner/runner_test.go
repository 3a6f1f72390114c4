package runner_test

import (
	"bytes"
	"testing"

	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/runner"
	"github.com/gkampitakis/go-snaps/snaps"
)

// runScript lexes, compiles and runs source, returning captured stdout.
func runScript(t *testing.T, source string) string {
	t.Helper()

	mod := runner.Single("<test>", source)
	lr, cr := runner.Compile(mod, lexer.WarnIgnore, runner.Externals{})
	if lr.HasErrors() {
		t.Fatalf("lex errors: %v", lr.Errors)
	}
	if len(cr.Errors) > 0 {
		t.Fatalf("compile errors: %v", cr.Errors)
	}

	var buf bytes.Buffer
	_, err := runner.Run(cr.Program, runner.RunOptions{Output: &buf})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return buf.String()
}

func TestScenarioArithmeticAndPrint(t *testing.T) {
	out := runScript(t, `print(20 + (32 - 5) + 10/2, "\n");`)
	if out != "52\n" {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestScenarioCompoundAssign(t *testing.T) {
	out := runScript(t, `var myVariable = 10; var foo = 100; myVariable += foo; print("myVariable = ", myVariable, "\n");`)
	if out != "myVariable = 110\n" {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestScenarioLoopAndBreak(t *testing.T) {
	out := runScript(t, `var a = 0; while(a < 3) { a++; print(a, "\n"); }`)
	if out != "1\n2\n3\n" {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestScenarioForwardCall(t *testing.T) {
	out := runScript(t, `test(); var test() { print("Hello World\n"); }`)
	if out != "Hello World\n" {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestScenarioSwitchDefault(t *testing.T) {
	out := runScript(t, `var a = 3; switch(a) { case 1: print("one"); case 2: print("two"); default: print("other"); }`)
	if out != "other" {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestScenarioJSONRoundTrip(t *testing.T) {
	out := runScript(t, `var c = string.toCollection("{\"k\":1}"); print(string.fromCollection(c));`)
	if out != `{ "k":1 }` {
		t.Fatalf("got %q", out)
	}
	snaps.MatchSnapshot(t, out)
}
