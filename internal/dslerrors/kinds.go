package dslerrors

import "fmt"

// Kind classifies an error raised anywhere in the lex/parse/VM pipeline.
// The grouping follows spec §7: Lexical, Scope, Syntactic, Static, Runtime,
// Fatal.
type Kind int

const (
	KindLexical Kind = iota
	KindScope
	KindSyntactic
	KindStatic
	KindRuntime
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical"
	case KindScope:
		return "scope"
	case KindSyntactic:
		return "syntactic"
	case KindStatic:
		return "static-evaluation"
	case KindRuntime:
		return "runtime"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code is a stable numeric error identifier. Codes are grouped by Kind in
// blocks of 100 so a reader can tell the category from the number alone.
type Code int

const (
	// Lexical, 1xx.
	CodeBadEscape Code = 100 + iota
	CodeUnterminatedString
	CodeBadUTF8
	CodeMalformedNumber
	CodeUnknownIdentifier
	CodeInvalidStaticExpr
	CodeDuplicateKey
	CodeUnbalancedDelimiters
)

const (
	// Scope/definition, 2xx.
	CodeWrongScope Code = 200 + iota
	CodeForbiddenDottedName
	CodeRedefinition
	CodeAssignToReadOnly
)

const (
	// Syntactic, 3xx.
	CodeMissingDelimiter Code = 300 + iota
	CodeCaseOutsideSwitch
	CodeReturnOutsideFunction
	CodeDanglingElse
	CodeFunctionInFunction
)

const (
	// Static-evaluation, 4xx.
	CodeStaticDivByZero Code = 400 + iota
	CodeNonPureCollectionLiteral
)

const (
	// Runtime, 5xx.
	CodeRuntimeDivByZero Code = 500 + iota
	CodeCollectionMismatch
	CodeMissingAddress
	CodeFileIOFailure
	CodeJSONParseFailure
	CodeNegateForbidden
)

const (
	// Fatal, 9xx.
	CodeOutOfMemory Code = 900 + iota
	CodeInternalInvariant
)

// CompileError is a single compile-time diagnostic: a Kind/Code pair plus
// the one-line message spec §7 requires every error to carry.
type CompileError struct {
	Kind    Kind
	Code    Code
	Message string
	*CompilerError
}

func (e *CompileError) Error() string {
	if e.CompilerError != nil {
		return fmt.Sprintf("[%s %d] %s", e.Kind, e.Code, e.CompilerError.Error())
	}
	return fmt.Sprintf("[%s %d] %s", e.Kind, e.Code, e.Message)
}

// NewCompileError builds a CompileError without source context; callers that
// have a token.Position and source text should prefer attaching a
// CompilerError via WithContext.
func NewCompileError(kind Kind, code Code, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithContext attaches source-line/caret context to a CompileError.
func (e *CompileError) WithContext(ce *CompilerError) *CompileError {
	e.CompilerError = ce
	return e
}

// RuntimeError is the process-global error state of spec §4.4.4: the VM
// sets Code/Message, the next step observes it, and dispatches to the
// current module's on-error handler.
type RuntimeError struct {
	Code    Code
	Message string
}

func (r *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error %d: %s", r.Code, r.Message)
}

// NewRuntimeError constructs a RuntimeError with a formatted message.
func NewRuntimeError(code Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}
