package sqgs

import (
	"strings"
	"testing"
)

func TestLexErrorUnwrap(t *testing.T) {
	lx := &lexer{}
	e := lx.newLexError(UnterminatedString, Range{Start: 3, End: 4}, "while scanning a string literal")
	if e.Unwrap() == nil {
		t.Fatal("Unwrap() = nil, want the juju/errors annotation chain")
	}
	if !strings.Contains(e.Error(), "unterminated string") {
		t.Errorf("Error() = %q, want it to mention %q", e.Error(), "unterminated string")
	}
}

func TestLexErrorKindString(t *testing.T) {
	cases := map[LexErrorKind]string{
		UnterminatedString:          "unterminated string",
		UnterminatedComment:         "unterminated comment",
		InvalidCharLiteral:          "invalid character literal",
		InvalidIntLiteral:           "invalid integer literal",
		InvalidFloatLiteral:         "invalid float literal",
		UnexpectedByte:              "unexpected byte",
		InvalidPreprocessorDirective: "invalid preprocessor directive",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

// TestParseErrorMergeMonotonicity locks in testable property 7: merging
// keeps the deepest index reached, ties favoring the first argument.
func TestParseErrorMergeMonotonicity(t *testing.T) {
	shallow := &ParseError{Kind: ErrExpectedExpression, DeepestIndex: 2}
	deep := &ParseError{Kind: ErrExpectedIdentifier, DeepestIndex: 5}

	if got := mergeParseErrors(shallow, deep); got != deep {
		t.Errorf("merge(shallow, deep) = %v, want deep to win", got.Kind)
	}
	if got := mergeParseErrors(deep, shallow); got != deep {
		t.Errorf("merge(deep, shallow) = %v, want deep to win regardless of argument order", got.Kind)
	}

	tieA := &ParseError{Kind: ErrExpectedExpression, DeepestIndex: 5}
	tieB := &ParseError{Kind: ErrExpectedIdentifier, DeepestIndex: 5}
	if got := mergeParseErrors(tieA, tieB); got != tieA {
		t.Error("merge on a tie must favor the first (earlier-tried) alternative")
	}

	if got := mergeParseErrors(nil, deep); got != deep {
		t.Error("merge(nil, b) must return b")
	}
	if got := mergeParseErrors(deep, nil); got != deep {
		t.Error("merge(a, nil) must return a")
	}
}

func TestParseErrorAsFatalDoesNotMutateOriginal(t *testing.T) {
	orig := &ParseError{Kind: ErrExpectedExpression, Fatal: false}
	fatal := orig.asFatal()
	if orig.Fatal {
		t.Error("asFatal mutated the receiver; it must return a copy")
	}
	if !fatal.Fatal {
		t.Error("asFatal() result has Fatal = false, want true")
	}
}

func TestParseErrorErrorMessageIncludesExpectedTerminal(t *testing.T) {
	e := &ParseError{Kind: ErrExpectedTerminal, ExpectedTerm: TermSemicolon, Found: "`}`", DeepestIndex: 7}
	msg := e.Error()
	if !strings.Contains(msg, TermSemicolon.String()) {
		t.Errorf("Error() = %q, want it to mention the expected terminal", msg)
	}
	if !strings.Contains(msg, "found") {
		t.Errorf("Error() = %q, want it to mention what was found", msg)
	}
}

func TestDiagnosticRenderIncludesUnclosedContextNote(t *testing.T) {
	src := "if (x) { y();"
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	_, perr := Parse(tokens)
	pe, ok := perr.(*ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *ParseError", perr)
	}
	d := pe.Diagnostic(tokens)
	rendered := d.Render(src, "test.nut")
	if !strings.Contains(rendered, "test.nut:") {
		t.Errorf("Render() = %q, want it to start with the filename", rendered)
	}
	if !strings.HasPrefix(d.Message, "unclosed") {
		t.Errorf("Message = %q, want it to start with \"unclosed\"", d.Message)
	}
	if len(d.Notes) == 0 {
		t.Fatal("Notes is empty, want at least one note pointing at the opener")
	}
}

func TestDiagnosticRenderWithoutFilename(t *testing.T) {
	d := &Diagnostic{Message: "expected an expression", Range: Range{Start: 4, End: 5}}
	rendered := d.Render("a = ;", "")
	if strings.Contains(rendered, ":") && strings.Index(rendered, ":") < strings.Index(rendered, "expected") {
		t.Errorf("Render() = %q, want no filename prefix when filename is empty", rendered)
	}
	if !strings.Contains(rendered, "^") {
		t.Errorf("Render() = %q, want a caret marker", rendered)
	}
}

func TestLineColAndSourceLine(t *testing.T) {
	src := "line one\nline two\nline three"
	line, col := lineCol(src, 0)
	if line != 1 || col != 1 {
		t.Errorf("lineCol(0) = (%d,%d), want (1,1)", line, col)
	}
	offsetIntoLineTwo := len("line one\n") + 5
	line, col = lineCol(src, offsetIntoLineTwo)
	if line != 2 {
		t.Errorf("lineCol(%d) line = %d, want 2", offsetIntoLineTwo, line)
	}
	if got := sourceLine(src, offsetIntoLineTwo); got != "line two" {
		t.Errorf("sourceLine(%d) = %q, want %q", offsetIntoLineTwo, got, "line two")
	}
}
