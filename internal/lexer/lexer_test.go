package lexer

import (
	"testing"

	"github.com/cwbudde/go-dsl/internal/token"
)

func tokenTypes(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func hasType(toks []token.Token, tt token.Type) bool {
	for _, t := range toks {
		if t.Type == tt {
			return true
		}
	}
	return false
}

func TestLexSimpleArithmeticDeclaration(t *testing.T) {
	ctx := NewCompileCtx(nil)
	l := New(ctx, "main", "var x = 3 + 4;", WarnIgnore)
	toks, errs := l.Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !hasType(toks, token.VARIABLE_DEF) {
		t.Fatalf("expected VARIABLE_DEF token, got %v", tokenTypes(toks))
	}
	if !hasType(toks, token.INT) {
		t.Fatalf("expected folded INT literal (3+4), got %v", tokenTypes(toks))
	}
}

func TestLexIfElseFraming(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `var x = 1; if (x > 0) { x = 2; } else { x = 3; }`
	l := New(ctx, "main", src, WarnIgnore)
	toks, errs := l.Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{
		token.IF_COND_BEGIN, token.IF_COND_END,
		token.IF_BLOCK_BEGIN, token.IF_BLOCK_END,
		token.ELSE_BLOCK_BEGIN, token.ELSE_BLOCK_END,
	}
	for _, w := range want {
		if !hasType(toks, w) {
			t.Fatalf("missing marker %s in %v", w, tokenTypes(toks))
		}
	}
}

func TestLexForLoopFraming(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `for (var i = 0; i < 10; i++) { print(i); }`
	l := New(ctx, "main", src, WarnIgnore)
	toks, _ := l.Lex()
	want := []token.Type{
		token.FOR_INIT_BEGIN, token.FOR_INIT_END,
		token.FOR_COND_BEGIN, token.FOR_COND_END,
		token.FOR_UPDATE_BEGIN, token.FOR_UPDATE_END,
		token.FOR_BLOCK_BEGIN, token.FOR_BLOCK_END,
	}
	for _, w := range want {
		if !hasType(toks, w) {
			t.Fatalf("missing marker %s in %v", w, tokenTypes(toks))
		}
	}
}

func TestLexForwardFunctionCall(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `test(); var test() { return; }`
	l := New(ctx, "main", src, WarnIgnore)
	_, errs := l.Lex()
	for _, e := range errs {
		t.Fatalf("forward call should resolve via pass 1, got error: %v", e)
	}
}

func TestLexMultiModuleForwardCallAcrossModules(t *testing.T) {
	ctx := NewCompileCtx(nil)
	modules := map[string]string{
		"caller": `helper();`,
		"helper": `var helper() { return; }`,
	}
	_, errsByModule := LexModules(ctx, modules, []string{"caller", "helper"}, WarnIgnore)
	if errs, ok := errsByModule["caller"]; ok {
		t.Fatalf("cross-module forward call should resolve: %v", errs)
	}
}

func TestLexSwitchCaseFallthrough(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `var x = 1; switch (x) { case 1: x = 10; case 2: x = 20; default: x = 0; }`
	l := New(ctx, "main", src, WarnIgnore)
	toks, errs := l.Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{
		token.SWITCH_BEGIN, token.SWITCH_END,
		token.CASE_COND_BEGIN, token.CASE_COND_END,
		token.CASE_BLOCK_BEGIN, token.CASE_BLOCK_END,
		token.DEFAULT_BLOCK_BEGIN, token.DEFAULT_BLOCK_END,
	}
	for _, w := range want {
		if !hasType(toks, w) {
			t.Fatalf("missing marker %s in %v", w, tokenTypes(toks))
		}
	}
}

func TestLexUnknownIdentifierIsLexicalError(t *testing.T) {
	ctx := NewCompileCtx(nil)
	l := New(ctx, "main", "x = 5;", WarnIgnore)
	_, errs := l.Lex()
	if len(errs) == 0 {
		t.Fatal("expected unknown identifier error")
	}
}

func TestLexLocalOutsideFunctionIsScopeError(t *testing.T) {
	ctx := NewCompileCtx(nil)
	l := New(ctx, "main", "local x = 1;", WarnIgnore)
	_, errs := l.Lex()
	if len(errs) == 0 {
		t.Fatal("expected scope error for 'local' outside a function body")
	}
}

func TestLexRawString(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `var x = $"raw \n not an escape"$;`
	l := New(ctx, "main", src, WarnIgnore)
	toks, errs := l.Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	found := false
	for _, tk := range toks {
		if tk.Type == token.STRING && tk.Value == `raw \n not an escape` {
			found = true
		}
	}
	if !found {
		t.Fatalf("raw string should not process escapes, got %v", toks)
	}
}

func TestLexCollectionStaticInitializer(t *testing.T) {
	ctx := NewCompileCtx(nil)
	src := `var x = { a: 1, b: 2 };`
	l := New(ctx, "main", src, WarnIgnore)
	_, errs := l.Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
