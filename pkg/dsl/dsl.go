// Package dsl is the embeddable public facade: an Engine/Option/Result shape
// wrapping runner.Compile/Run so a host program can compile and run scripts,
// bind its own Go functions into the language as FFI built-ins, and capture
// output without touching the internal lexer/parser/vm packages directly.
package dsl

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/cwbudde/go-dsl/internal/builtins"
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/lexval"
	"github.com/cwbudde/go-dsl/internal/runner"
)

// Engine is a reusable compile/run context: registered functions and
// configured output persist across Eval/Compile/Run calls.
type Engine struct {
	output    io.Writer
	warnLevel lexer.WarnLevel
	host      *builtins.Host
	ext       runner.Externals
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithOutput redirects script output (print/printf) to w instead of the
// default in-memory buffer Result.Output is read back from.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithWarnLevel sets the `-w` warning policy (spec §6.4) new compiles use.
func WithWarnLevel(level lexer.WarnLevel) Option {
	return func(e *Engine) { e.warnLevel = level }
}

// New builds an Engine ready for Eval/Compile/Run.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		host: builtins.NewHost(),
		ext:  runner.Externals{Index: make(map[string]int)},
	}
	for _, o := range opts {
		o(e)
	}
	if e.output == nil {
		e.output = &bytes.Buffer{}
	}
	e.host.Stdout = e.output
	return e, nil
}

// SetOutput redirects output for all subsequent Eval/Run calls.
func (e *Engine) SetOutput(w io.Writer) {
	e.output = w
	e.host.Stdout = w
}

// Result is the outcome of running a script.
type Result struct {
	Output   string
	Success  bool
	ExitCode int
}

// RegisterFunction exposes a Go function to scripts under name, callable
// exactly like a built-in (spec §3.5's JBF dispatch, extended per
// DESIGN.md's host-FFI-table decision). fn's parameters may be any of
// int64/int/float64/string/bool/rune; it may return zero, one, or one value
// plus a trailing error.
func (e *Engine) RegisterFunction(name string, fn any) error {
	if fn == nil {
		return fmt.Errorf("dsl: RegisterFunction(%q): fn is nil", name)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("dsl: RegisterFunction(%q): fn is not a function", name)
	}
	rt := rv.Type()

	numOut := rt.NumOut()
	returnsError := numOut > 0 && rt.Out(numOut-1) == reflect.TypeOf((*error)(nil)).Elem()
	if numOut > 2 || (numOut == 2 && !returnsError) {
		return fmt.Errorf("dsl: RegisterFunction(%q): unsupported return signature %s", name, rt)
	}

	wrapped := func(args []lexval.Value) (lexval.Value, error) {
		if len(args) < rt.NumIn() {
			return lexval.Value{}, fmt.Errorf("%s: expected %d argument(s), got %d", name, rt.NumIn(), len(args))
		}
		in := make([]reflect.Value, rt.NumIn())
		for i := 0; i < rt.NumIn(); i++ {
			converted, err := toGoValue(args[i], rt.In(i))
			if err != nil {
				return lexval.Value{}, fmt.Errorf("%s: argument %d: %w", name, i, err)
			}
			in[i] = converted
		}
		out := rv.Call(in)
		if returnsError {
			if errVal := out[len(out)-1]; !errVal.IsNil() {
				return lexval.Value{}, errVal.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if len(out) == 0 {
			return lexval.Int(0), nil
		}
		return fromGoValue(out[0]), nil
	}

	idx := e.host.RegisterExternal(builtins.ExternalFunc{Name: name, Fn: wrapped})
	minArity := rt.NumIn()
	e.ext.Entries = append(e.ext.Entries, lexer.BuiltinEntry{Name: name, MinArity: minArity})
	e.ext.Index[name] = idx
	return nil
}

// toGoValue converts a script Value into the Go type a registered
// function's parameter expects.
func toGoValue(v lexval.Value, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Int64, reflect.Int:
		return reflect.ValueOf(lexval.Convert(v, lexval.Integer).I).Convert(t), nil
	case reflect.Float64, reflect.Float32:
		return reflect.ValueOf(lexval.Convert(v, lexval.Double).D).Convert(t), nil
	case reflect.String:
		return reflect.ValueOf(lexval.Convert(v, lexval.String).String()), nil
	case reflect.Bool:
		return reflect.ValueOf(lexval.Convert(v, lexval.Bool).B), nil
	case reflect.Int32: // rune
		return reflect.ValueOf(lexval.Convert(v, lexval.Char).C).Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// fromGoValue converts a registered function's Go return value back into a
// script Value.
func fromGoValue(rv reflect.Value) lexval.Value {
	switch rv.Kind() {
	case reflect.Int64, reflect.Int, reflect.Int32:
		return lexval.Int(rv.Int())
	case reflect.Float64, reflect.Float32:
		return lexval.Dbl(rv.Float())
	case reflect.String:
		return lexval.Str(rv.String())
	case reflect.Bool:
		return lexval.Boolean(rv.Bool())
	default:
		return lexval.Str(fmt.Sprint(rv.Interface()))
	}
}

// Compile lexes and parses source into a reusable *bytecode.Program.
func (e *Engine) Compile(source string) (*bytecode.Program, error) {
	_, cr := runner.Compile(runner.Single("<eval>", source), e.warnLevel, e.ext)
	if len(cr.Errors) > 0 {
		return nil, compileError(cr.Errors)
	}
	return cr.Program, nil
}

// Run executes a previously compiled program and returns its captured
// output and exit status.
func (e *Engine) Run(program *bytecode.Program) (*Result, error) {
	var buf bytes.Buffer
	out := io.MultiWriter(&buf, e.output)

	v, err := runner.Run(program, runner.RunOptions{Output: out, Host: e.host})
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:   buf.String(),
		Success:  v.ExitCode() == 0,
		ExitCode: v.ExitCode(),
	}, nil
}

// Eval compiles and runs source in one step.
func (e *Engine) Eval(source string) (*Result, error) {
	program, err := e.Compile(source)
	if err != nil {
		return nil, err
	}
	return e.Run(program)
}

func compileError(errs []*dslerrors.CompileError) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("dsl: %d compile error(s), first: %w", len(errs), errs[0])
}
