package jsoncodec

import (
	"testing"

	"github.com/cwbudde/go-dsl/internal/lexval"
)

func TestParseThenSerializeMatchesScenarioS6(t *testing.T) {
	v, err := Parse(`{"k":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Serialize(v)
	want := `{ "k":1 }`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestParseArrayBecomesIndexedCollection(t *testing.T) {
	v, err := Parse(`[10, 20, 30]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Col.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", v.Col.Len())
	}
	first, ok := v.Col.Get("0")
	if !ok || first.I != 10 {
		t.Fatalf("expected key \"0\"=10, got %+v ok=%v", first, ok)
	}
}

func TestParseNumberKindSelection(t *testing.T) {
	v, _ := Parse(`42`)
	if v.Kind.String() != "Integer" {
		t.Fatalf("expected Integer, got %v", v.Kind)
	}
	v2, _ := Parse(`4.2`)
	if v2.Kind.String() != "Double" {
		t.Fatalf("expected Double, got %v", v2.Kind)
	}
	v3, _ := Parse(`4e2`)
	if v3.Kind.String() != "Double" {
		t.Fatalf("expected Double for exponent form, got %v", v3.Kind)
	}
}

func TestParseMalformedReturnsDiagnosticString(t *testing.T) {
	_, err := Parse(`{"k": }`)
	if err == nil {
		t.Fatal("expected a diagnostic error for malformed JSON")
	}
}

func TestSerializeEscapesControlCharacters(t *testing.T) {
	out := Serialize(lexval.Str("a\nb"))
	if out != `"a\nb"` {
		t.Fatalf("got %q", out)
	}
}
