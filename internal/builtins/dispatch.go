package builtins

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/cwbudde/go-dsl/internal/jsoncodec"
	"github.com/cwbudde/go-dsl/internal/lexval"
)

// Host carries the side-effecting dependencies built-ins need: where print
// writes, where input reads from, and the RNG `random`/`seed` drive. This
// mirrors the teacher VM's io.Writer-carrying constructor
// (NewVMWithOutput) rather than built-ins reaching for os.Stdout directly,
// so a caller can capture output in tests.
type Host struct {
	Stdout io.Writer
	Stdin  *bufio.Reader
	Rand   *rand.Rand

	// externals holds host-registered FFI functions (pkg/dsl.Engine.
	// RegisterFunction), dispatched at JBF index len(Table)+i.
	externals []ExternalFunc
}

// ExternalFunc is one host-registered FFI function: an embedding
// pkg/dsl.Engine reflects a Go func into this shape once at registration
// time so Call's hot path never needs reflection.
type ExternalFunc struct {
	Name string
	Fn   func(args []lexval.Value) (lexval.Value, error)
}

// NewHost returns a Host wired to the process's real stdio and an RNG
// with the fixed seed 1 (the `seed` built-in reseeds it).
func NewHost() *Host {
	return &Host{
		Stdout: os.Stdout,
		Stdin:  bufio.NewReader(os.Stdin),
		Rand:   rand.New(rand.NewSource(1)),
	}
}

// RegisterExternal appends fn to this host's FFI table and returns its JBF
// dispatch index (len(Table) + its position), the index pkg/dsl's compile
// step must also hand the parser via runner.Externals.Index.
func (h *Host) RegisterExternal(fn ExternalFunc) int {
	h.externals = append(h.externals, fn)
	return len(Table) + len(h.externals) - 1
}

// Call dispatches built-in index idx (spec §4.4.2's JBF) against args,
// returning the single result value the VM pushes into A. Indices below
// len(Table) hit the fixed built-in table; indices at or above it hit this
// Host's registered externals, if any.
func (h *Host) Call(idx int, args []lexval.Value) (lexval.Value, error) {
	if idx < 0 {
		return lexval.Value{}, fmt.Errorf("builtins: dispatch index %d out of range", idx)
	}
	if idx < len(Table) {
		name := Table[idx].Name
		fn, ok := dispatchTable[name]
		if !ok {
			return lexval.Value{}, fmt.Errorf("builtins: %q has no implementation", name)
		}
		return fn(h, args)
	}
	extIdx := idx - len(Table)
	if extIdx >= len(h.externals) {
		return lexval.Value{}, fmt.Errorf("builtins: dispatch index %d out of range", idx)
	}
	return h.externals[extIdx].Fn(args)
}

type builtinFunc func(h *Host, args []lexval.Value) (lexval.Value, error)

var dispatchTable = map[string]builtinFunc{
	"string.find":           biStringFind,
	"string.len":            biStringLen,
	"string.sub":            biStringSub,
	"string.replace":        biStringReplace,
	"string.tolower":        biStringToLower,
	"string.toupper":        biStringToUpper,
	"string.trimEnd":        biStringTrimEnd,
	"string.trimStart":      biStringTrimStart,
	"string.toCollection":   biStringToCollection,
	"string.fromCollection": biStringFromCollection,
	"abs":                   mathUnary(math.Abs),
	"acos":                  mathUnary(math.Acos),
	"asin":                  mathUnary(math.Asin),
	"atan":                  mathUnary(math.Atan),
	"atan2":                 mathBinary(math.Atan2),
	"cos":                   mathUnary(math.Cos),
	"sin":                   mathUnary(math.Sin),
	"tan":                   mathUnary(math.Tan),
	"cosh":                  mathUnary(math.Cosh),
	"sinh":                  mathUnary(math.Sinh),
	"tanh":                  mathUnary(math.Tanh),
	"exp":                   mathUnary(math.Exp),
	"log":                   mathUnary(math.Log),
	"log10":                 mathUnary(math.Log10),
	"sqrt":                  mathUnary(math.Sqrt),
	"ceil":                  mathUnary(math.Ceil),
	"fabs":                  mathUnary(math.Abs),
	"floor":                 mathUnary(math.Floor),
	"fmod":                  mathBinary(math.Mod),
	"print":                 biPrint,
	"printf":                biPrintf,
	"input":                 biInput,
	"read":                  biRead,
	"write":                 biWrite,
	"files":                 biFiles,
	"delete":                biDelete,
	"random":                biRandom,
	"seed":                  biSeed,
}

func argString(args []lexval.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i].String()
}

func argFloat(args []lexval.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	v := args[i]
	if v.Kind == lexval.Double {
		return v.D
	}
	return float64(v.I)
}

func argInt(args []lexval.Value, i int) int64 {
	if i >= len(args) {
		return 0
	}
	return args[i].I
}

func mathUnary(f func(float64) float64) builtinFunc {
	return func(h *Host, args []lexval.Value) (lexval.Value, error) {
		return lexval.Dbl(f(argFloat(args, 0))), nil
	}
}

func mathBinary(f func(a, b float64) float64) builtinFunc {
	return func(h *Host, args []lexval.Value) (lexval.Value, error) {
		return lexval.Dbl(f(argFloat(args, 0), argFloat(args, 1))), nil
	}
}

func biStringFind(h *Host, args []lexval.Value) (lexval.Value, error) {
	s, sub := argString(args, 0), argString(args, 1)
	start := int(argInt(args, 2))
	if start < 0 || start > len(s) {
		start = 0
	}
	idx := strings.Index(s[start:], sub)
	if idx < 0 {
		return lexval.Int(-1), nil
	}
	return lexval.Int(int64(idx + start)), nil
}

func biStringLen(h *Host, args []lexval.Value) (lexval.Value, error) {
	return lexval.Int(int64(len([]rune(argString(args, 0))))), nil
}

func biStringSub(h *Host, args []lexval.Value) (lexval.Value, error) {
	r := []rune(argString(args, 0))
	start := int(argInt(args, 1))
	length := int(argInt(args, 2))
	if start < 0 {
		start = 0
	}
	if start > len(r) {
		start = len(r)
	}
	end := start + length
	if end > len(r) {
		end = len(r)
	}
	if end < start {
		end = start
	}
	return lexval.Str(string(r[start:end])), nil
}

func biStringReplace(h *Host, args []lexval.Value) (lexval.Value, error) {
	s, old, new := argString(args, 0), argString(args, 1), argString(args, 2)
	return lexval.Str(strings.ReplaceAll(s, old, new)), nil
}

func biStringToLower(h *Host, args []lexval.Value) (lexval.Value, error) {
	return lexval.Str(strings.ToLower(argString(args, 0))), nil
}

func biStringToUpper(h *Host, args []lexval.Value) (lexval.Value, error) {
	return lexval.Str(strings.ToUpper(argString(args, 0))), nil
}

func biStringTrimEnd(h *Host, args []lexval.Value) (lexval.Value, error) {
	return lexval.Str(strings.TrimRight(argString(args, 0), argString(args, 1))), nil
}

func biStringTrimStart(h *Host, args []lexval.Value) (lexval.Value, error) {
	return lexval.Str(strings.TrimLeft(argString(args, 0), argString(args, 1))), nil
}

func biStringToCollection(h *Host, args []lexval.Value) (lexval.Value, error) {
	v, err := jsoncodec.Parse(argString(args, 0))
	if err != nil {
		return lexval.Str(err.Error()), nil
	}
	return v, nil
}

func biStringFromCollection(h *Host, args []lexval.Value) (lexval.Value, error) {
	if len(args) == 0 {
		return lexval.Str(""), nil
	}
	return lexval.Str(jsoncodec.Serialize(args[0])), nil
}

func biPrint(h *Host, args []lexval.Value) (lexval.Value, error) {
	for _, a := range args {
		fmt.Fprint(h.Stdout, a.String())
	}
	return lexval.Int(0), nil
}

func biPrintf(h *Host, args []lexval.Value) (lexval.Value, error) {
	if len(args) == 0 {
		return lexval.Int(0), nil
	}
	rest := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		rest = append(rest, a.String())
	}
	fmt.Fprintf(h.Stdout, argString(args, 0), rest...)
	return lexval.Int(0), nil
}

func biInput(h *Host, args []lexval.Value) (lexval.Value, error) {
	line, err := h.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return lexval.Str(""), nil
	}
	return lexval.Str(strings.TrimRight(line, "\r\n")), nil
}

func biRead(h *Host, args []lexval.Value) (lexval.Value, error) {
	data, err := os.ReadFile(argString(args, 0))
	if err != nil {
		return lexval.Str(""), err
	}
	return lexval.Str(string(data)), nil
}

func biWrite(h *Host, args []lexval.Value) (lexval.Value, error) {
	err := os.WriteFile(argString(args, 0), []byte(argString(args, 1)), 0o644)
	if err != nil {
		return lexval.Boolean(false), err
	}
	return lexval.Boolean(true), nil
}

func biFiles(h *Host, args []lexval.Value) (lexval.Value, error) {
	entries, err := os.ReadDir(argString(args, 0))
	if err != nil {
		return lexval.Coll(lexval.NewCollection()), err
	}
	col := lexval.NewCollection()
	for i, e := range entries {
		col.Set(fmt.Sprintf("%d", i), lexval.Str(e.Name()))
	}
	return lexval.Coll(col), nil
}

func biDelete(h *Host, args []lexval.Value) (lexval.Value, error) {
	err := os.Remove(argString(args, 0))
	return lexval.Boolean(err == nil), err
}

func biRandom(h *Host, args []lexval.Value) (lexval.Value, error) {
	lo, hi := argInt(args, 0), argInt(args, 1)
	if hi <= lo {
		return lexval.Int(lo), nil
	}
	return lexval.Int(lo + h.Rand.Int63n(hi-lo)), nil
}

func biSeed(h *Host, args []lexval.Value) (lexval.Value, error) {
	h.Rand = rand.New(rand.NewSource(argInt(args, 0)))
	return lexval.Int(0), nil
}
